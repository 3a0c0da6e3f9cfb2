package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

const (
	defaultPaystackBaseURL = "https://api.paystack.co"
	defaultMinWithdrawal   = 10000
	defaultInterval        = time.Minute
	defaultStaleAfter      = 24 * time.Hour
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	// A helper function to get a required env var. It will fail if the env var is not set.
	getEnv := func(key string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		log.Fatalf("Error: Required environment variable %s is not set.", key)
		return "" // This line is never reached
	}

	return Config{
		DBName: getEnv("DB_NAME"),
		Port:   getEnv("PORT"),
		Turso: TursoConfig{
			PrimaryURL: os.Getenv("TURSO_PRIMARY_URL"),
			AuthToken:  os.Getenv("TURSO_AUTH_TOKEN"),
		},
		Paystack: PaystackConfig{
			SecretKey: getEnv("PAYSTACK_SECRET_KEY"),
			BaseURL:   getEnvOrDefault("PAYSTACK_BASE_URL", defaultPaystackBaseURL),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("AUTH_JWT_SECRET"),
		},
		Slack: SlackConfig{
			Token:         getEnv("SLACK_BOT_TOKEN"),
			ChannelID:     getEnv("SLACK_CHANNEL_ID"),
			SigningSecret: os.Getenv("SLACK_SIGNING_SECRET"),
		},
		Inngest: InngestConfig{
			AppID:      os.Getenv("INNGEST_APP_ID"),
			SigningKey: os.Getenv("INNGEST_SIGNING_KEY"),
			EventKey:   os.Getenv("INNGEST_EVENT_KEY"),
		},
		ProjectID:          getEnv("GCP_PROJECT"),
		RedisURL:           os.Getenv("REDIS_URL"),
		CORSAllowedOrigins: splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),
		Processor: ProcessorConfig{
			Interval:             parseDuration("PROCESSOR_INTERVAL", defaultInterval),
			StaleWithdrawalAfter: parseDuration("STALE_WITHDRAWAL_AFTER", defaultStaleAfter),
		},
		MinWithdrawal: parseInt("MIN_WITHDRAWAL_KOBO", defaultMinWithdrawal),
	}
}

func getEnvOrDefault(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func parseDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Warn("Invalid duration, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return d
}

func parseInt(key string, fallback int64) int64 {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		log.Warn("Invalid integer, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return n
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
