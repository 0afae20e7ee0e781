package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// It is parsed once at process start and passed into the services that need
// it, so business logic never reads the environment directly.
type Config struct {
	// Server Configuration
	Environment string `env:"ENV" envDefault:"development"`
	Port        string `env:"API_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile     string `env:"LOG_FILE"`

	// Client Configuration
	AllowedOrigins string `env:"ALLOWED_ORIGINS"`

	// Email Provider Configuration (Resend-compatible HTTP API)
	EmailAPIKey  string `env:"RESEND_API_KEY"`
	EmailBaseURL string `env:"EMAIL_API_URL" envDefault:"https://api.resend.com"`
	FromEmail    string `env:"FROM_EMAIL"`
	SalesEmail   string `env:"SALES_TO"`

	// CAPTCHA Configuration (Cloudflare Turnstile)
	TurnstileSecret    string `env:"TURNSTILE_SECRET"`
	TurnstileVerifyURL string `env:"TURNSTILE_VERIFY_URL" envDefault:"https://challenges.cloudflare.com/turnstile/v0/siteverify"`

	// Geolocation gate. Empty AllowedCountry disables the gate entirely.
	AllowedCountry string `env:"ALLOWED_COUNTRY" envDefault:"US"`
	GeoLookupURL   string `env:"GEO_LOOKUP_URL" envDefault:"http://ip-api.com/json"`

	// Bot heuristics
	MinFillTime time.Duration `env:"MIN_FILL_TIME" envDefault:"1500ms"`

	// Outbound call policy
	CaptchaTimeout time.Duration `env:"CAPTCHA_TIMEOUT" envDefault:"5s"`
	GeoTimeout     time.Duration `env:"GEO_TIMEOUT" envDefault:"3s"`
	EmailTimeout   time.Duration `env:"EMAIL_TIMEOUT" envDefault:"10s"`
	EmailRetryMax  int           `env:"EMAIL_RETRY_MAX" envDefault:"1"`

	// Rate limiting
	RateLimitRPS   int `env:"RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst int `env:"RATE_LIMIT_BURST" envDefault:"20"`
}

// Load loads the configuration from environment variables and .env files
func Load() (*Config, error) {
	// Try multiple locations for .env file. godotenv.Load does not overwrite
	// variables that are already set, so the process environment wins.
	envLocations := []string{".env"}
	if envName := os.Getenv("ENV"); envName != "" {
		envLocations = append([]string{fmt.Sprintf(".env.%s", envName)}, envLocations...)
	}

	for _, loc := range envLocations {
		if err := godotenv.Load(loc); err == nil {
			break
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Set default log file if not set
	if cfg.LogFile == "" {
		if cfg.Environment == "production" {
			cfg.LogFile = "/app/logs/api.log"
		} else {
			cfg.LogFile = "./logs/api.log"
		}
	}

	// Ensure log directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	return cfg, nil
}

// Validate checks that the secrets and addresses required for handling
// submissions are present. Called from the CLI check command and at server
// startup so a misconfigured deployment fails fast instead of at the first
// submission.
func (c *Config) Validate() error {
	missing := []string{}
	if c.EmailAPIKey == "" {
		missing = append(missing, "RESEND_API_KEY")
	}
	if c.TurnstileSecret == "" {
		missing = append(missing, "TURNSTILE_SECRET")
	}
	if c.FromEmail == "" {
		missing = append(missing, "FROM_EMAIL")
	}
	if c.SalesEmail == "" {
		missing = append(missing, "SALES_TO")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v", missing)
	}
	return nil
}

// GeoGateEnabled reports whether the country policy gate should run.
func (c *Config) GeoGateEnabled() bool {
	return c.AllowedCountry != ""
}
