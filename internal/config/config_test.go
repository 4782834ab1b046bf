// ABOUTME: Tests for configuration loading
// ABOUTME: Covers defaults, environment and .env precedence, and validation

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/markalston/companion/internal/credstore"
)

func TestLoadConfig_Defaults(t *testing.T) {
	chdirTemp(t)
	t.Cleanup(withCleanEnv(t, nil))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("Expected default API URL %s, got %s", DefaultAPIURL, cfg.APIURL)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("Expected default HTTP timeout 30s, got %s", cfg.HTTPTimeout)
	}
	if cfg.SendTimeout != 60*time.Second {
		t.Errorf("Expected default send timeout 60s, got %s", cfg.SendTimeout)
	}
	if cfg.CredentialStore != credstore.KindFile {
		t.Errorf("Expected file credential store, got %s", cfg.CredentialStore)
	}
	if !cfg.LogoutOnUnauthorized {
		t.Error("Expected LogoutOnUnauthorized to default to true")
	}
	if cfg.LogLevel != "warn" || cfg.LogFormat != "text" {
		t.Errorf("Expected warn/text logging, got %s/%s", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestLoadConfig_FromEnv(t *testing.T) {
	chdirTemp(t)
	t.Cleanup(withCleanEnv(t, map[string]string{
		"COMPANION_API_URL":                "https://companion.example.com/api",
		"COMPANION_CREDENTIAL_STORE":       "SQLite",
		"COMPANION_HTTP_TIMEOUT":           "5s",
		"COMPANION_SEND_TIMEOUT":           "90",
		"COMPANION_LOGOUT_ON_UNAUTHORIZED": "false",
		"LOG_LEVEL":                        "debug",
	}))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.APIURL != "https://companion.example.com/api" {
		t.Errorf("Unexpected API URL %s", cfg.APIURL)
	}
	if cfg.CredentialStore != credstore.KindSQLite {
		t.Errorf("Expected sqlite credential store, got %s", cfg.CredentialStore)
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Errorf("Expected 5s, got %s", cfg.HTTPTimeout)
	}
	if cfg.SendTimeout != 90*time.Second {
		t.Errorf("Expected bare seconds to parse as 90s, got %s", cfg.SendTimeout)
	}
	if cfg.LogoutOnUnauthorized {
		t.Error("Expected LogoutOnUnauthorized false")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected debug, got %s", cfg.LogLevel)
	}
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := chdirTemp(t)
	t.Cleanup(withCleanEnv(t, map[string]string{
		"COMPANION_SEND_TIMEOUT": "15s",
	}))

	dotenv := "COMPANION_API_URL=http://10.0.0.5:8000/api\nCOMPANION_SEND_TIMEOUT=99s\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(dotenv), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.APIURL != "http://10.0.0.5:8000/api" {
		t.Errorf("Expected API URL from .env, got %s", cfg.APIURL)
	}
	if cfg.SendTimeout != 15*time.Second {
		t.Errorf("Expected environment to win over .env, got %s", cfg.SendTimeout)
	}
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	chdirTemp(t)
	t.Cleanup(withCleanEnv(t, map[string]string{
		"COMPANION_HTTP_TIMEOUT":           "soon",
		"COMPANION_LOGOUT_ON_UNAUTHORIZED": "maybe",
	}))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.HTTPTimeout != DefaultHTTPTimeout {
		t.Errorf("Expected default timeout for unparseable value, got %s", cfg.HTTPTimeout)
	}
	if !cfg.LogoutOnUnauthorized {
		t.Error("Expected default true for unparseable bool")
	}
}

func TestLoadConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "relative API URL",
			env:     map[string]string{"COMPANION_API_URL": "localhost:8000"},
			wantErr: "COMPANION_API_URL",
		},
		{
			name:    "unsupported scheme",
			env:     map[string]string{"COMPANION_API_URL": "ftp://example.com/api"},
			wantErr: "COMPANION_API_URL",
		},
		{
			name:    "unknown credential store",
			env:     map[string]string{"COMPANION_CREDENTIAL_STORE": "keychain"},
			wantErr: "COMPANION_CREDENTIAL_STORE",
		},
		{
			name:    "non-positive send timeout",
			env:     map[string]string{"COMPANION_SEND_TIMEOUT": "-1s"},
			wantErr: "COMPANION_SEND_TIMEOUT",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			chdirTemp(t)
			t.Cleanup(withCleanEnv(t, tc.env))

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load should not validate, got %v", err)
			}
			err = cfg.Validate()
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Expected error mentioning %s, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Cleanup(withCleanEnv(t, nil))

	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", 7 * time.Second},
		{"250ms", 250 * time.Millisecond},
		{"2m", 2 * time.Minute},
		{"12", 12 * time.Second},
		{"garbage", 7 * time.Second},
	}

	for _, tc := range tests {
		os.Setenv("TEST_DURATION", tc.value)
		if got := getEnvDuration("TEST_DURATION", 7*time.Second); got != tc.want {
			t.Errorf("getEnvDuration(%q) = %s, want %s", tc.value, got, tc.want)
		}
	}
}
