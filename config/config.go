// Package config loads process configuration from the environment, after
// merging a local .env file when one exists.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// DefaultJWTSecret is the development signing secret. It is refused when a
// database is configured.
const DefaultJWTSecret = "change-me"

type Config struct {
	Port  string `env:"PORT" envDefault:"8080"`
	DBURL string `env:"DB_URL"`

	JWTSecret string        `env:"JWT_SECRET" envDefault:"change-me"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"168h"`

	SessionTTL         time.Duration   `env:"SESSION_TTL" envDefault:"1h"`
	SettlementDelay    time.Duration   `env:"SETTLEMENT_DELAY" envDefault:"5s"`
	SettlementSchedule string          `env:"SETTLEMENT_SCHEDULE" envDefault:"@every 1s"`
	SettlementSecret   string          `env:"SETTLEMENT_SECRET"`
	PlatformFeeRate    decimal.Decimal `env:"PLATFORM_FEE_RATE" envDefault:"0.10"`

	RateLimitPerMinute int      `env:"RATE_LIMIT_PER_MINUTE" envDefault:"100"`
	MaxUploadBytes     int64    `env:"MAX_UPLOAD_BYTES" envDefault:"524288000"`
	CORSOrigins        []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`

	Cloudinary CloudinaryConfig
}

type CloudinaryConfig struct {
	CloudName string `env:"CLOUDINARY_CLOUD_NAME"`
	APIKey    string `env:"CLOUDINARY_API_KEY"`
	APISecret string `env:"CLOUDINARY_API_SECRET"`
	Folder    string `env:"CLOUDINARY_FOLDER" envDefault:"xecret"`
}

// Enabled reports whether all Cloudinary credentials are present.
func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// Load reads .env when present, then parses the environment.
func Load() (Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()
	return Parse()
}

// Parse reads configuration from the current environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.DBURL != "" && c.JWTSecret == DefaultJWTSecret {
		return fmt.Errorf("JWT_SECRET must be set when DB_URL is set")
	}
	if c.PlatformFeeRate.IsNegative() || c.PlatformFeeRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("PLATFORM_FEE_RATE must be in [0, 1), got %s", c.PlatformFeeRate)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}
