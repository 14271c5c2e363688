package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-autoresign/internal/pkg/validate"
)

// Storage backends selectable with STORAGE_TYPE.
const (
	StorageDynamo = "dynamo"
	StorageMemory = "memory"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppEnv     string
	LogLevel   string
	StatusPort string `validate:"required,numeric"`

	PollIntervalSeconds int `validate:"gt=0"`
	NotifyHours         int `validate:"gte=0"`
	ResolveHours        int `validate:"gte=0"`
	MinHistory          int `validate:"gte=0"`

	StorageType    string `validate:"oneof=dynamo memory"`
	AWSRegion      string `validate:"required_if=StorageType dynamo"`
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	SMTPHost     string `validate:"required"`
	SMTPPort     string `validate:"required,numeric"`
	SMTPFrom     string `validate:"required,email"`
	SMTPUsername string
	SMTPPassword string
	MailRate     float64
	MailBurst    int `validate:"gte=0"`

	DefaultLocale string `validate:"required"`
	GameURLBase   string `validate:"omitempty,url"`

	SNSTopicARN  string // optional, resolution events are not published when empty
	ReportBucket string // optional, tick reports are not archived when empty
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Games   string `validate:"required"`
	Players string `validate:"required"`
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppEnv:     getEnv("APP_ENV", "development"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		StatusPort: getEnv("STATUS_PORT", "8089"),

		PollIntervalSeconds: getEnvInt("POLL_INTERVAL_SECONDS", 60),
		NotifyHours:         getEnvInt("AUTO_RESIGN_NOTIFY_HOURS", 48),
		ResolveHours:        getEnvInt("AUTO_RESIGN_RESOLVE_HOURS", 24),
		MinHistory:          getEnvInt("AUTO_RESIGN_MIN_HISTORY", 4),

		StorageType:    getEnv("STORAGE_TYPE", StorageDynamo),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Games:   getEnv("DYNAMO_TABLE_GAMES", "games"),
			Players: getEnv("DYNAMO_TABLE_PLAYERS", "players"),
		},

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		MailRate:     getEnvFloat("MAIL_RATE_PER_SECOND", 5),
		MailBurst:    getEnvInt("MAIL_BURST", 10),

		DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),
		GameURLBase:   getEnv("GAME_URL_BASE", "https://example.com/game/"),

		SNSTopicARN:  getEnv("SNS_TOPIC_ARN", ""),
		ReportBucket: getEnv("REPORT_BUCKET", ""),
	}
}

// Validate rejects configurations the worker cannot run with.
// A missing connection setting must stop the process before the poll loop starts.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// PollInterval returns the tick period.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
