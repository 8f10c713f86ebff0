package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	Port        string `env:"PORT" env-default:"8080"`
	GoEnv       string `env:"GO_ENV" env-default:"development"`
	LogLevel    string `env:"LOG_LEVEL" env-default:"info"`

	// Clerk session tokens are verified either through the issuer's JWKS
	// (CLERK_ISSUER_URL) or with a shared HS256 template key (CLERK_JWT_KEY).
	ClerkIssuerURL string `env:"CLERK_ISSUER_URL"`
	ClerkAudience  string `env:"CLERK_AUDIENCE"`
	ClerkJWTKey    string `env:"CLERK_JWT_KEY"`

	AWSRegion          string        `env:"AWS_REGION" env-default:"us-east-1"`
	AWSS3Bucket        string        `env:"AWS_S3_BUCKET"`
	AWSAccessKeyID     string        `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string        `env:"AWS_SECRET_ACCESS_KEY"`
	UploadURLTTL       time.Duration `env:"UPLOAD_URL_TTL" env-default:"15m"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" env-default:"20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" env-default:"40"`

	// AdminSecretHash is the bcrypt hash of the admin bootstrap secret.
	AdminSecretHash string `env:"ADMIN_SECRET_HASH"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-default:"*"`
}

var appConfig *Config

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Environment-specific file first, then the plain .env. Hosted
	// deployments set variables directly, so a missing file is fine.
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		if err := godotenv.Load(); err != nil {
			slog.Debug("no .env file found, using system environment variables")
		}
	} else {
		slog.Debug("loaded configuration file", slog.String("file", envFile))
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	appConfig = &cfg
	return &cfg, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative")
	}
	if c.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must not be negative")
	}
	// Tokens are always checked against an issuer and an audience.
	if c.AuthEnabled() && (c.ClerkIssuerURL == "" || c.ClerkAudience == "") {
		return fmt.Errorf("CLERK_ISSUER_URL and CLERK_AUDIENCE are required when token verification is enabled")
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// AuthEnabled reports whether bearer tokens are verified on API routes.
func (c *Config) AuthEnabled() bool {
	return c.ClerkIssuerURL != "" || c.ClerkJWTKey != ""
}

// StorageEnabled reports whether an S3 bucket is configured for inspection photos.
func (c *Config) StorageEnabled() bool {
	return c.AWSS3Bucket != ""
}

// BootstrapEnabled reports whether the first admin can be promoted with a shared secret.
func (c *Config) BootstrapEnabled() bool {
	return c.AdminSecretHash != ""
}

// GetConfig returns the configuration loaded by Load or installed with SetConfig
func GetConfig() *Config {
	return appConfig
}

// SetConfig sets the configuration instance (primarily for testing)
func SetConfig(cfg *Config) {
	appConfig = cfg
}
