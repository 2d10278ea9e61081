package config

import (
	"strconv"
	"strings"
	"time"

	"os"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	DatabaseURL        string
	CORSAllowedOrigins []string

	// Shared secret checked against the x-api-key header on the bot webhook.
	BotWebhookAPIKey string

	// HMAC secret for admin JWTs. Empty disables the admin surface.
	AdminJWTSecret string

	// Rate limiting for the public webhook.
	WebhookRateLimit float64
	WebhookRateBurst int

	// Email configuration. Provider is one of "sendgrid", "ses", "stub".
	EmailProvider     string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	AWSRegion         string
	AWSAccessKeyID    string
	AWSSecretAccessKey string

	// Booking behaviour.
	SlotMatchTolerance    time.Duration
	DefaultSlotDuration   time.Duration
	DayStartHour          int
	DayEndHour            int
	MaxBookingHorizonDays int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS"),

		BotWebhookAPIKey: getEnv("BOT_WEBHOOK_API_KEY", ""),
		AdminJWTSecret:   getEnv("ADMIN_JWT_SECRET", ""),

		WebhookRateLimit: getEnvAsFloat("WEBHOOK_RATE_LIMIT", 5),
		WebhookRateBurst: getEnvAsInt("WEBHOOK_RATE_BURST", 10),

		EmailProvider:      strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "stub"))),
		SendGridAPIKey:     getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail:  getEnv("SENDGRID_FROM_EMAIL", "onboarding@doclinic.dev"),
		SendGridFromName:   getEnv("SENDGRID_FROM_NAME", "DoClinic"),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),

		SlotMatchTolerance:    getEnvAsDuration("SLOT_MATCH_TOLERANCE", 10*time.Minute),
		DefaultSlotDuration:   getEnvAsDuration("DEFAULT_SLOT_DURATION", time.Hour),
		DayStartHour:          getEnvAsInt("DAY_START_HOUR", 9),
		DayEndHour:            getEnvAsInt("DAY_END_HOUR", 17),
		MaxBookingHorizonDays: getEnvAsInt("MAX_BOOKING_HORIZON_DAYS", 7),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsSlice parses a comma-separated environment variable.
func getEnvAsSlice(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
