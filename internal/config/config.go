package config

import (
	"fmt"
	"time"

	env "github.com/caarlos0/env/v11"
)

type Config struct {
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv   string `env:"APP_ENV" envDefault:"production"`

	EventStoreCapacity  int   `env:"EVENT_STORE_CAPACITY" envDefault:"100"`
	WebhookMaxBodyBytes int64 `env:"WEBHOOK_MAX_BODY_BYTES" envDefault:"1048576"`
	BroadcastBuffer     int64 `env:"BROADCAST_BUFFER" envDefault:"64"`

	// Empty disables signature verification on the webhook endpoint.
	WebhookSecret      string `env:"VERIFF_WEBHOOK_SECRET"`
	InspectorJWTSecret string `env:"INSPECTOR_JWT_SECRET,required,notEmpty"`

	VeriffAPIKey      string        `env:"VERIFF_API_KEY"`
	VeriffBaseURL     string        `env:"VERIFF_BASE_URL" envDefault:"https://stationapi.veriff.com"`
	VeriffCallbackURL string        `env:"VERIFF_CALLBACK_URL"`
	VeriffTimeout     time.Duration `env:"VERIFF_TIMEOUT" envDefault:"10s"`

	SessionRateLimit  int           `env:"SESSION_RATE_LIMIT" envDefault:"20"`
	SessionRateWindow time.Duration `env:"SESSION_RATE_WINDOW" envDefault:"1m"`
	RedisURL          string        `env:"REDIS_URL"`

	OTelEnabled     bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	OTelSampleRatio float64 `env:"OTEL_SAMPLING_RATIO" envDefault:"1"`
}

// MockProviderConfig configures cmd/mock-provider.
type MockProviderConfig struct {
	Port          int    `env:"MOCK_PORT" envDefault:"8081"`
	PublicURL     string `env:"MOCK_PUBLIC_URL" envDefault:"http://localhost:8081"`
	AppURL        string `env:"APP_URL" envDefault:"http://localhost:8080"`
	CallbackURL   string `env:"MOCK_CALLBACK_URL" envDefault:"http://localhost:8080/api/veriff/webhook"`
	WebhookSecret string `env:"VERIFF_WEBHOOK_SECRET"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv        string `env:"APP_ENV" envDefault:"development"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

func LoadMockProvider() (*MockProviderConfig, error) {
	cfg, err := env.ParseAs[MockProviderConfig]()
	if err != nil {
		return nil, fmt.Errorf("config.LoadMockProvider: %w", err)
	}
	return &cfg, nil
}

func (c Config) validate() error {
	if c.EventStoreCapacity <= 0 {
		return fmt.Errorf("EVENT_STORE_CAPACITY must be positive, got %d", c.EventStoreCapacity)
	}
	if c.WebhookMaxBodyBytes <= 0 {
		return fmt.Errorf("WEBHOOK_MAX_BODY_BYTES must be positive, got %d", c.WebhookMaxBodyBytes)
	}
	if c.OTelSampleRatio < 0 || c.OTelSampleRatio > 1 {
		return fmt.Errorf("OTEL_SAMPLING_RATIO must be within [0,1], got %g", c.OTelSampleRatio)
	}
	return nil
}

func (c Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}
