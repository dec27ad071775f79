package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DBUrl           string
	JWTSecret       string
	Supabase        string
	SupabaseAnonKey string

	AWSRegion          string
	AWSBucket          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	App App
}

// App holds the settings that can also come from the YAML file named by
// CONFIG_FILE. Environment variables win over the file.
type App struct {
	Port           string   `yaml:"port"`
	Language       string   `yaml:"language"`
	CorsOrigins    []string `yaml:"cors_origins"`
	TimelineLimit  int      `yaml:"timeline_limit"`
	SQLLogLevel    string   `yaml:"sql_log_level"`
	TweetsBasePath string   `yaml:"tweets_base_path"`
}

func defaultApp() App {
	return App{
		Port:           "8080",
		Language:       "ko",
		CorsOrigins:    []string{"*"},
		TimelineLimit:  25,
		SQLLogLevel:    "warn",
		TweetsBasePath: "tweets",
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		DBUrl:              os.Getenv("SUPABASE_DB_URL"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		Supabase:           os.Getenv("NEXT_PUBLIC_SUPABASE_URL"),
		SupabaseAnonKey:    os.Getenv("SUPABASE_ANON_KEY"),
		AWSRegion:          os.Getenv("AWS_REGION"),
		AWSBucket:          os.Getenv("AWS_BUCKET_NAME"),
		AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		App:                defaultApp(),
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.App.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.App.applyEnv(); err != nil {
		return nil, err
	}

	if cfg.DBUrl == "" {
		return nil, fmt.Errorf("SUPABASE_DB_URL manquant")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET manquant")
	}
	return cfg, nil
}

func (a *App) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	var file App
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	if file.Port != "" {
		a.Port = file.Port
	}
	if file.Language != "" {
		a.Language = file.Language
	}
	if len(file.CorsOrigins) > 0 {
		a.CorsOrigins = file.CorsOrigins
	}
	if file.TimelineLimit > 0 {
		a.TimelineLimit = file.TimelineLimit
	}
	if file.SQLLogLevel != "" {
		a.SQLLogLevel = file.SQLLogLevel
	}
	if file.TweetsBasePath != "" {
		a.TweetsBasePath = strings.Trim(file.TweetsBasePath, "/")
	}
	return nil
}

func (a *App) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		a.Port = v
	}
	if v := strings.TrimSpace(os.Getenv("APP_LANGUAGE")); v != "" {
		a.Language = v
	}
	if v := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); v != "" {
		a.CorsOrigins = splitCSV(v)
	}
	if v := strings.TrimSpace(os.Getenv("TIMELINE_LIMIT")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("TIMELINE_LIMIT invalide: %q", v)
		}
		a.TimelineLimit = n
	}
	return nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
