package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig
	DocService DocServiceConfig
	Auth       AuthConfig
	UI         UIConfig
	Cache      CacheConfig
	Tracing    TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DocServiceConfig struct {
	BaseURL string
	Timeout time.Duration
}

type AuthConfig struct {
	JWTSecret string
	LoginPath string
	// ProtectedPaths are route prefixes that redirect to LoginPath when the
	// caller is not signed in.
	ProtectedPaths []string

	OAuthClientID     string
	OAuthClientSecret string
	OAuthTokenURL     string
	OAuthRefreshToken string
}

type UIConfig struct {
	PanelAnimation time.Duration
}

type CacheConfig struct {
	PDFTTL     time.Duration
	SessionTTL time.Duration
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		DocService: DocServiceConfig{
			BaseURL: getEnv("DOC_SERVICE_URL", "http://localhost:8000"),
			Timeout: getEnvAsDuration("DOC_SERVICE_TIMEOUT", 30*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret:         getEnv("JWT_SECRET", ""),
			LoginPath:         getEnv("LOGIN_PATH", "/login"),
			ProtectedPaths:    getEnvAsList("PROTECTED_PATHS", []string{"/workspace", "/documents", "/projects"}),
			OAuthClientID:     getEnv("OAUTH_CLIENT_ID", ""),
			OAuthClientSecret: getEnv("OAUTH_CLIENT_SECRET", ""),
			OAuthTokenURL:     getEnv("OAUTH_TOKEN_URL", ""),
			OAuthRefreshToken: getEnv("OAUTH_REFRESH_TOKEN", ""),
		},
		UI: UIConfig{
			PanelAnimation: getEnvAsDuration("PANEL_ANIMATION", 300*time.Millisecond),
		},
		Cache: CacheConfig{
			PDFTTL:     getEnvAsDuration("PDF_CACHE_TTL", 5*time.Minute),
			SessionTTL: getEnvAsDuration("SESSION_TTL", time.Hour),
		},
		Tracing: TracingConfig{
			Enabled:     getEnv("OTEL_ENABLED", "") == "true",
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "docworkspace"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("300ms", "5m") or plain milliseconds.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	if ms := getEnvAsInt(key, -1); ms >= 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}

// getEnvAsList splits a comma separated value, dropping blanks.
func getEnvAsList(key string, fallback []string) []string {
	strValue, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(strValue, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
