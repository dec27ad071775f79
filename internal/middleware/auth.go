package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/99JIWONDEV/X-Clone-TalktoJIWON/internal/identity"
	"github.com/99JIWONDEV/X-Clone-TalktoJIWON/internal/logs"
)

// NameResolver fills in a display name the token does not carry.
type NameResolver interface {
	DisplayName(ctx context.Context, accessToken string) (string, error)
}

var (
	errNoToken      = errors.New("Token requis")
	errInvalidToken = errors.New("Token invalide")
	errNoSubject    = errors.New("User ID manquant")
)

func AuthMiddleware(secret []byte, names NameResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := authenticate(c, secret, names)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		setActor(c, actor)
		c.Next()
	}
}

func setActor(c *gin.Context, actor identity.Actor) {
	c.Set("user_id", actor.ID)
	c.Set("display_name", actor.DisplayName)
	c.Request = c.Request.WithContext(identity.WithActor(c.Request.Context(), actor))
}

func authenticate(c *gin.Context, secret []byte, names NameResolver) (identity.Actor, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return identity.Actor{}, errNoToken
	}
	tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		// Supabase signe en HS256
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("signature invalide")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return identity.Actor{}, errInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return identity.Actor{}, errInvalidToken
	}
	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return identity.Actor{}, errNoSubject
	}

	actor := identity.Actor{ID: userID, DisplayName: nameFromClaims(claims)}
	if actor.DisplayName == "" && names != nil {
		name, err := names.DisplayName(c.Request.Context(), tokenStr)
		if err != nil {
			logs.LogJSON(logs.Warn, "Display name lookup failed", map[string]interface{}{
				"route":  c.FullPath(),
				"userID": userID,
				"error":  err.Error(),
			})
		}
		actor.DisplayName = name
	}
	return actor, nil
}

func nameFromClaims(claims jwt.MapClaims) string {
	meta, _ := claims["user_metadata"].(map[string]interface{})
	return identity.NameFromMetadata(meta)
}
