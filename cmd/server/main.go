package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/99JIWONDEV/X-Clone-TalktoJIWON/internal/config"
	"github.com/99JIWONDEV/X-Clone-TalktoJIWON/internal/database"
	"github.com/99JIWONDEV/X-Clone-TalktoJIWON/internal/identity"
	"github.com/99JIWONDEV/X-Clone-TalktoJIWON/internal/logs"
	"github.com/99JIWONDEV/X-Clone-TalktoJIWON/internal/middleware"
	"github.com/99JIWONDEV/X-Clone-TalktoJIWON/internal/storage"
	"github.com/99JIWONDEV/X-Clone-TalktoJIWON/internal/timeline"
	"github.com/99JIWONDEV/X-Clone-TalktoJIWON/internal/tweet"
)

func main() {
	if err := run(); err != nil {
		logs.LogJSON(logs.Fatal, "Server stopped", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	db, err := database.Connect(cfg.DBUrl, cfg.App.SQLLogLevel)
	if err != nil {
		return err
	}
	if err := database.Migrate(db, &tweet.Post{}); err != nil {
		return err
	}

	ctx := context.Background()
	bucket, err := storage.NewS3(ctx, storage.Options{
		Bucket:          cfg.AWSBucket,
		Region:          cfg.AWSRegion,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
	})
	if err != nil {
		return err
	}

	var names middleware.NameResolver
	if cfg.Supabase != "" {
		names = identity.NewDirectory(cfg.Supabase, cfg.SupabaseAnonKey)
	}
	secret := []byte(cfg.JWTSecret)
	requireAuth := middleware.AuthMiddleware(secret, names)
	optionalAuth := middleware.OptionalAuthMiddleware(secret)

	auth := identity.ContextProvider{}
	store := tweet.NewStore(db)
	hub := timeline.NewHub(auth, cfg.App.CorsOrigins)
	composers := tweet.NewComposers(func() *tweet.Form {
		return tweet.NewForm(auth, store, bucket,
			tweet.WithLanguage(cfg.App.Language),
			tweet.WithMediaPrefix(cfg.App.TweetsBasePath),
			tweet.WithPublisher(hub.Publish),
		)
	})

	r := gin.Default()
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	tweet.NewHandler(composers, store, auth, cfg.App.Language, cfg.App.TimelineLimit).
		Register(api, requireAuth, optionalAuth)
	api.GET("/tweets/stream", optionalAuth, hub.Stream)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           middleware.CORS(cfg.App.CorsOrigins)(r),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logs.LogJSON(logs.Info, "Server listening", map[string]interface{}{"port": cfg.App.Port})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logs.LogJSON(logs.Info, "Shutting down", map[string]interface{}{"signal": sig.String()})
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
