package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	DBMaxConns  int
	JWKSURL     string // Defaults to SUPABASE_URL + /auth/v1/.well-known/jwks.json
	DevUserID   string // dev only: authenticate every request as this user when JWKSURL is empty
	CORSOrigins string
	TablePrefix string
	LogDir      string
	LogMaxFiles int
	// Photo storage (S3 compatible). Empty bucket keeps photos in memory.
	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	ThumbnailBaseURL  string
	// AI enrichment
	AnthropicAPIKey  string
	AIModel          string
	TavilyAPIKey     string
	AIRatePerMinute  int
	AIRequestTimeout int // seconds
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	supabaseURL := strings.TrimRight(getEnv("SUPABASE_URL", ""), "/")

	jwksURL := getEnv("JWKS_URL", "")
	if jwksURL == "" && supabaseURL != "" {
		jwksURL = supabaseURL + "/auth/v1/.well-known/jwks.json"
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", getEnv("SUPABASE_DB_URL", "")),
		DBMaxConns:  getEnvInt("DB_MAX_CONNS", 10),
		JWKSURL:     jwksURL,
		DevUserID:   getEnv("DEV_USER_ID", ""),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix: getTablePrefix(env),
		LogDir:      getEnv("LOG_DIR", ""),
		LogMaxFiles: getEnvInt("LOG_MAX_FILES", 5),
		// Photo storage
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Region:          getEnv("S3_REGION", "auto"),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		ThumbnailBaseURL:  strings.TrimRight(getEnv("THUMBNAIL_BASE_URL", ""), "/"),
		// AI enrichment
		AnthropicAPIKey:  getEnv("ANTHROPIC_API_KEY", ""),
		AIModel:          getEnv("AI_MODEL", "claude-haiku-4-5-20251001"),
		TavilyAPIKey:     getEnv("TAVILY_API_KEY", ""),
		AIRatePerMinute:  getEnvInt("AI_RATE_PER_MINUTE", 10),
		AIRequestTimeout: getEnvInt("AI_REQUEST_TIMEOUT", 60),
	}
}

// AIEnabled reports whether the enrichment endpoints can reach a model.
func (c *Config) AIEnabled() bool {
	return c.AnthropicAPIKey != ""
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return defaultValue
	}
	return n
}
