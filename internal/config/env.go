package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	DatabaseURL  string
	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string
	JWTSecret    string

	AIAPIKey    string
	EmbedModel  string
	GenModel    string
	VisionModel string

	// Namespace is the logical vector-store partition all chunks go into.
	Namespace string
	// SignedURLTTL is the lifetime, in seconds, of staged-image URLs.
	SignedURLTTL int
	// Workers is the number of concurrent analyze workers.
	Workers int

	Port           string
	AllowedOrigins string
}

// LoadConfig loads the environment variables and returns the config.
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		AwsAccessKey:   getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey:   getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:      getEnv("AWS_REGION", "us-east-2"),
		BucketName:     getEnv("BUCKET_NAME", "paperdeck-docs"),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		AIAPIKey:       getEnv("GEMINI_API_KEY", ""),
		EmbedModel:     getEnv("EMBED_MODEL", "text-embedding-004"),
		GenModel:       getEnv("GEN_MODEL", "gemini-1.5-flash"),
		VisionModel:    getEnv("VISION_MODEL", "gemini-1.5-flash"),
		Namespace:      getEnv("VECTOR_NAMESPACE", "documents"),
		SignedURLTTL:   getEnvInt("SIGNED_URL_TTL_SECONDS", 60),
		Workers:        getEnvInt("ANALYZE_WORKERS", 2),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000"),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL not set")
	}
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Int("default", def).Msg("env var not an int, using default")
		return def
	}
	return n
}
