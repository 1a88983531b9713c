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
	Port            string
	AllowOrigins    []string
	LogstashTCPAddr string

	GeminiAPIKey string
	GeminiModel  string

	JWTSecret  string
	SessionTTL time.Duration

	FavoritesNamespace string
	FavoritesDir       string

	MinIOEndpoint        string
	MinIOAccessKey       string
	MinIOSecretKey       string
	MinIOUseSSL          bool
	MinIOBucketFavorites string

	DiscoveryWindowDays int
	DiscoveryTimeout    time.Duration
	PastEventGrace      time.Duration
	RefreshCron         string
	CategoryRulesPath   string
	ShareBaseURL        string

	ElasticURL        string
	ElasticAPIKey     string
	DiscoveryLogIndex string
}

// UseMinIO reports whether favorites go to object storage instead of the
// local file store.
func (c Config) UseMinIO() bool {
	return c.MinIOEndpoint != ""
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	windowDays := 14
	if v, err := strconv.Atoi(getenv("DISCOVERY_WINDOW_DAYS", "14")); err == nil && v > 0 {
		windowDays = v
	}

	return Config{
		Port:            getenv("PORT", "8080"),
		AllowOrigins:    splitAndTrim(getenv("ALLOW_ORIGINS", "*")),
		LogstashTCPAddr: getenv("LOGSTASH_TCP_ADDR", ""),

		GeminiAPIKey: must("GEMINI_API_KEY"),
		GeminiModel:  getenv("GEMINI_MODEL", "gemini-3-flash-preview"),

		JWTSecret:  must("JWT_SECRET"),
		SessionTTL: duration("SESSION_TTL", 90*24*time.Hour),

		FavoritesNamespace: getenv("FAVORITES_NAMESPACE", "escale_favorites"),
		FavoritesDir:       getenv("FAVORITES_DIR", "data"),

		MinIOEndpoint:        getenv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:       getenv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:       getenv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:          getenv("MINIO_USE_SSL", "false") == "true",
		MinIOBucketFavorites: getenv("MINIO_BUCKET_FAVORITES", "escale-favorites"),

		DiscoveryWindowDays: windowDays,
		DiscoveryTimeout:    duration("DISCOVERY_TIMEOUT", 45*time.Second),
		PastEventGrace:      duration("PAST_EVENT_GRACE", 6*time.Hour),
		RefreshCron:         getenv("REFRESH_CRON", "*/5 * * * *"),
		CategoryRulesPath:   getenv("CATEGORY_RULES_PATH", ""),
		ShareBaseURL:        getenv("SHARE_BASE_URL", "https://escale.paris"),

		ElasticURL:        getenv("ELASTICSEARCH_URL", ""),
		ElasticAPIKey:     getenv("ELASTICSEARCH_API_KEY", ""),
		DiscoveryLogIndex: getenv("DISCOVERY_LOG_INDEX", "escale-discovery-logs"),
	}
}

func duration(k string, d time.Duration) time.Duration {
	if v, err := time.ParseDuration(getenv(k, "")); err == nil && v > 0 {
		return v
	}
	return d
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
