package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Directory looks up profile data on the Supabase auth service.
type Directory struct {
	client  *resty.Client
	baseURL string
	anonKey string
}

type authUser struct {
	ID           string                 `json:"id"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
}

func NewDirectory(baseURL, anonKey string) *Directory {
	return &Directory{
		client:  resty.New().SetTimeout(5 * time.Second),
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
	}
}

// DisplayName returns the name the user registered with, or "" when the
// profile has none.
func (d *Directory) DisplayName(ctx context.Context, accessToken string) (string, error) {
	var user authUser
	resp, err := d.client.R().
		SetContext(ctx).
		SetHeader("apikey", d.anonKey).
		SetHeader("Authorization", "Bearer "+accessToken).
		SetResult(&user).
		Get(d.baseURL + "/auth/v1/user")
	if err != nil {
		return "", fmt.Errorf("supabase auth: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("supabase auth: status %d", resp.StatusCode())
	}
	return NameFromMetadata(user.UserMetadata), nil
}

// NameFromMetadata picks the first non-empty display name key.
func NameFromMetadata(meta map[string]interface{}) string {
	for _, key := range []string{"display_name", "username", "full_name", "name"} {
		s, _ := meta[key].(string)
		if v := strings.TrimSpace(s); v != "" {
			return v
		}
	}
	return ""
}
