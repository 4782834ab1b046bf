// ABOUTME: Configuration loader for the companion client
// ABOUTME: Loads settings from .env and environment variables with defaults

package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/markalston/companion/internal/credstore"
)

const (
	DefaultAPIURL      = "http://127.0.0.1:8000/api"
	DefaultHTTPTimeout = 30 * time.Second
	DefaultSendTimeout = 60 * time.Second
)

type Config struct {
	// Backend
	APIURL      string
	HTTPTimeout time.Duration
	SendTimeout time.Duration // per chat send, covers model latency

	// Local state
	ConfigDir       string
	CredentialStore credstore.Kind // file or sqlite

	// Session
	LogoutOnUnauthorized bool // expire the session when a protected call returns 401

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads .env when present, then the environment. Variables already set
// in the environment take precedence over .env. The result is not validated;
// callers apply their overrides and then call Validate.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Debug("Ignoring unreadable .env", "error", err)
	}

	cfg := &Config{
		APIURL:      getEnv("COMPANION_API_URL", DefaultAPIURL),
		HTTPTimeout: getEnvDuration("COMPANION_HTTP_TIMEOUT", DefaultHTTPTimeout),
		SendTimeout: getEnvDuration("COMPANION_SEND_TIMEOUT", DefaultSendTimeout),

		ConfigDir:       getEnv("COMPANION_CONFIG_DIR", credstore.DefaultConfigDir()),
		CredentialStore: credstore.Kind(strings.ToLower(getEnv("COMPANION_CREDENTIAL_STORE", string(credstore.KindFile)))),

		LogoutOnUnauthorized: getEnvBool("COMPANION_LOGOUT_ON_UNAUTHORIZED", true),

		LogLevel:  getEnv("LOG_LEVEL", "warn"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	return cfg, nil
}

// Validate checks values that would otherwise fail later and less clearly
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("COMPANION_API_URL must be an http(s) URL, got %q", c.APIURL)
	}

	switch c.CredentialStore {
	case credstore.KindFile, credstore.KindSQLite:
	default:
		return fmt.Errorf("COMPANION_CREDENTIAL_STORE must be file or sqlite, got %q", c.CredentialStore)
	}

	for _, d := range []struct {
		name  string
		value time.Duration
	}{
		{"COMPANION_HTTP_TIMEOUT", c.HTTPTimeout},
		{"COMPANION_SEND_TIMEOUT", c.SendTimeout},
	} {
		if d.value <= 0 {
			return fmt.Errorf("%s must be positive, got %s", d.name, d.value)
		}
	}

	if c.ConfigDir == "" {
		return fmt.Errorf("COMPANION_CONFIG_DIR could not be determined")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("45s") or bare seconds ("45")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
