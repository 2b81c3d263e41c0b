package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// BackendBaseURL is pinged on startup to wake a scaled-to-zero backend.
	// Empty disables the wake ping.
	BackendBaseURL string `env:"BACKEND_BASE_URL"`

	Auth     AuthConfig
	Postgres PostgresConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	AI       AIConfig
	Email    EmailConfig
	Scan     ScanConfig
}

type AuthConfig struct {
	// Mode selects the provider implementation: "hosted" talks to the
	// external auth service, "local" issues tokens from the domain database.
	Mode       string `env:"AUTH_MODE,        default=hosted"`
	BaseURL    string `env:"AUTH_BASE_URL"`
	ServiceKey string `env:"AUTH_SERVICE_KEY"`
	JWTSecret  string `env:"JWT_SECRET"`
	TokenTTL   time.Duration `env:"AUTH_TOKEN_TTL, default=24h"`
}

type PostgresConfig struct {
	DSN string `env:"POSTGRES_DSN, default=postgres://localhost:5432/agency_crm?sslmode=disable"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=agency_crm"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type AIConfig struct {
	BaseURL string `env:"AI_BASE_URL, default=https://api.openai.com/v1"`
	APIKey  string `env:"AI_API_KEY"`
	Model   string `env:"AI_MODEL,    default=gpt-4o-mini"`
}

type EmailConfig struct {
	BaseURL string `env:"EMAIL_BASE_URL, default=https://api.resend.com"`
	APIKey  string `env:"EMAIL_API_KEY"`
	From    string `env:"EMAIL_FROM,     default=alerts@agency-crm.app"`
	// AlertRecipient receives threshold alert emails.
	AlertRecipient string `env:"EMAIL_ALERT_RECIPIENT"`
}

type ScanConfig struct {
	FeedbackInterval    time.Duration `env:"SCAN_FEEDBACK_INTERVAL,    default=60s"`
	UtilizationInterval time.Duration `env:"SCAN_UTILIZATION_INTERVAL, default=30s"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
