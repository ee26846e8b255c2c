// Package config loads runtime settings for the notepad server.
//
// Values are layered: built-in defaults, then an optional YAML file named by
// CONFIG_FILE, then environment variables (with .env.local loaded first so
// local development does not need exported variables).
package config

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// minSessionKeyLen is the recommended length for SESSION_KEY.
const minSessionKeyLen = 32

type Config struct {
	Env            string
	Port           string
	DatabaseDriver string
	DatabaseURL    string

	// SessionKey signs the session_id cookie and the flash cookie; the CSRF
	// key is derived from it.
	SessionKey   string
	SessionTTL   time.Duration
	CookieSecure bool

	BcryptCost     int
	AllowedOrigins []string
}

// fileConfig mirrors Config for the YAML overlay. Durations are strings
// ("6h", "30m") and pointers distinguish "unset" from zero values.
type fileConfig struct {
	Env            string   `yaml:"env"`
	Port           string   `yaml:"port"`
	DatabaseDriver string   `yaml:"database_driver"`
	DatabaseURL    string   `yaml:"database_url"`
	SessionKey     string   `yaml:"session_key"`
	SessionTTL     string   `yaml:"session_ttl"`
	CookieSecure   *bool    `yaml:"cookie_secure"`
	BcryptCost     *int     `yaml:"bcrypt_cost"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns development defaults. They are not suitable for production.
func Default() *Config {
	return &Config{
		Env:            "development",
		Port:           "5050",
		DatabaseDriver: DriverPostgres,
		SessionTTL:     6 * time.Hour,
		BcryptCost:     bcrypt.DefaultCost,
		AllowedOrigins: []string{"http://localhost:5173"},
	}
}

// Load builds a Config from defaults, the optional YAML file and the
// environment, then validates it.
func Load() (*Config, error) {
	_ = godotenv.Load(".env.local")

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.ApplyFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyFile overlays the values present in the YAML file at path.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&c.Env, fc.Env)
	setString(&c.Port, fc.Port)
	setString(&c.DatabaseDriver, fc.DatabaseDriver)
	setString(&c.DatabaseURL, fc.DatabaseURL)
	setString(&c.SessionKey, fc.SessionKey)
	if fc.SessionTTL != "" {
		ttl, err := time.ParseDuration(fc.SessionTTL)
		if err != nil {
			return fmt.Errorf("session_ttl: %w", err)
		}
		c.SessionTTL = ttl
	}
	if fc.CookieSecure != nil {
		c.CookieSecure = *fc.CookieSecure
	}
	if fc.BcryptCost != nil {
		c.BcryptCost = *fc.BcryptCost
	}
	if len(fc.AllowedOrigins) > 0 {
		c.AllowedOrigins = fc.AllowedOrigins
	}
	return nil
}

// ApplyEnv overlays environment variables read through getenv.
//
// Environment variables:
//   - APP_ENV: "development" or "production"
//   - PORT: listen port (default 5050)
//   - DATABASE_DRIVER: "postgres" or "sqlite"
//   - DATABASE_URL: DSN for the selected driver
//   - SESSION_KEY: secret for signed cookies (32+ chars)
//   - SESSION_TTL: session lifetime, e.g. "6h"
//   - COOKIE_SECURE: "true" to mark cookies Secure (HTTPS deployments)
//   - BCRYPT_COST: bcrypt work factor
//   - ALLOWED_ORIGINS: comma-separated CORS origins
func (c *Config) ApplyEnv(getenv func(string) string) error {
	setString(&c.Env, getenv("APP_ENV"))
	setString(&c.Port, getenv("PORT"))
	setString(&c.DatabaseDriver, strings.ToLower(getenv("DATABASE_DRIVER")))
	setString(&c.DatabaseURL, getenv("DATABASE_URL"))
	setString(&c.SessionKey, getenv("SESSION_KEY"))

	if v := strings.TrimSpace(getenv("SESSION_TTL")); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SESSION_TTL: %w", err)
		}
		c.SessionTTL = ttl
	}
	if v := strings.TrimSpace(getenv("COOKIE_SECURE")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("COOKIE_SECURE: %w", err)
		}
		c.CookieSecure = b
	}
	if v := strings.TrimSpace(getenv("BCRYPT_COST")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BCRYPT_COST: %w", err)
		}
		c.BcryptCost = n
	}
	if v := strings.TrimSpace(getenv("ALLOWED_ORIGINS")); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.AllowedOrigins = origins
	}
	return nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	var problems []string

	switch c.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
	default:
		problems = append(problems, fmt.Sprintf("unknown DATABASE_DRIVER %q", c.DatabaseDriver))
	}
	if c.DatabaseURL == "" {
		problems = append(problems, "DATABASE_URL is empty")
	}
	if c.SessionKey == "" {
		problems = append(problems, "SESSION_KEY is empty")
	}
	if c.SessionTTL <= 0 {
		problems = append(problems, "SESSION_TTL must be positive")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		problems = append(problems, fmt.Sprintf("BCRYPT_COST must be within %d..%d", bcrypt.MinCost, bcrypt.MaxCost))
	}

	if len(problems) > 0 {
		return errors.New("invalid config: " + strings.Join(problems, "; "))
	}
	return nil
}

// Warnings lists settings that work but should be fixed before production.
func (c *Config) Warnings() []string {
	var w []string
	if len(c.SessionKey) < minSessionKeyLen {
		w = append(w, fmt.Sprintf("SESSION_KEY is short (%d chars); %d+ recommended", len(c.SessionKey), minSessionKeyLen))
	}
	if !c.IsDevelopment() && !c.CookieSecure {
		w = append(w, "COOKIE_SECURE is off outside development")
	}
	return w
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "" || c.Env == "development"
}

// CSRFKey derives the 32-byte gorilla/csrf key from SessionKey.
func (c *Config) CSRFKey() []byte {
	sum := sha256.Sum256([]byte("csrf:" + c.SessionKey))
	return sum[:]
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return "0.0.0.0:" + c.Port
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}
