package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the service.
type AppConfig struct {
	HTTPAddr    string
	LogLevel    string
	Environment string

	MongoURL      string
	MongoDatabase string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	SMTPHost         string
	SMTPPort         int
	SMTPUsername     string
	SMTPPassword     string
	EmailFromName    string
	EmailFromAddress string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Cron specs for the two daily reminder passes.
	CronSpecMorning string
	CronSpecEvening string
	// Fixed pause between successive outbound SMS dispatches within a run.
	DispatchPause time.Duration
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.MongoURL = os.Getenv("MONGO_URL")
	if cfg.MongoURL == "" {
		return nil, fmt.Errorf("MONGO_URL is not set")
	}
	cfg.MongoDatabase = getenv("MONGO_DB", "subscribers")

	cfg.TwilioAccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	if cfg.TwilioAccountSID == "" {
		return nil, fmt.Errorf("TWILIO_ACCOUNT_SID is not set")
	}
	cfg.TwilioAuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	if cfg.TwilioAuthToken == "" {
		return nil, fmt.Errorf("TWILIO_AUTH_TOKEN is not set")
	}
	cfg.TwilioFromNumber = os.Getenv("TWILIO_FROM_NUMBER")
	if cfg.TwilioFromNumber == "" {
		return nil, fmt.Errorf("TWILIO_FROM_NUMBER is not set")
	}

	// Email is optional; when unset, email OTP is disabled at startup.
	cfg.SMTPHost = os.Getenv("SMTP_HOST")
	port, err := strconv.Atoi(getenv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}
	cfg.SMTPPort = port
	cfg.SMTPUsername = os.Getenv("SMTP_USERNAME")
	cfg.SMTPPassword = os.Getenv("SMTP_PASSWORD")
	cfg.EmailFromName = getenv("EMAIL_FROM_NAME", "TVNET")
	cfg.EmailFromAddress = os.Getenv("EMAIL_FROM_ADDRESS")

	cfg.RedisAddr = getenv("REDIS_ADDR", "127.0.0.1:6379")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	redisDB, err := strconv.Atoi(getenv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	cfg.RedisDB = redisDB

	cfg.HTTPAddr = getenv("HTTP_ADDR", ":3001")
	cfg.LogLevel = strings.ToLower(getenv("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(getenv("ENVIRONMENT", "development"))

	cfg.CronSpecMorning = getenv("CRON_SPEC_MORNING", "0 9 * * *")
	cfg.CronSpecEvening = getenv("CRON_SPEC_EVENING", "0 18 * * *")

	pause, err := time.ParseDuration(getenv("SMS_DISPATCH_PAUSE", "2s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMS_DISPATCH_PAUSE: %w", err)
	}
	cfg.DispatchPause = pause

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
