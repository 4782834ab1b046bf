// ABOUTME: Durable storage for the session credential
// ABOUTME: A single key holds the raw bearer token; absence means unauthenticated

package credstore

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store persists the credential across process restarts
type Store interface {
	// Load returns the stored credential, or "" when none is stored
	Load() (string, error)
	// Save replaces the stored credential
	Save(token string) error
	// Clear removes the stored credential. Clearing an empty store is not an error.
	Clear() error
}

// Kind selects a Store implementation
type Kind string

const (
	KindFile   Kind = "file"
	KindSQLite Kind = "sqlite"
)

// TokenKey is the single key the credential is stored under
const TokenKey = "token"

// DefaultConfigDir returns the default config directory following XDG spec
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "companion")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "companion")
}

// Open returns the store of the given kind rooted at configDir
func Open(kind Kind, configDir string) (Store, error) {
	if configDir == "" {
		return nil, fmt.Errorf("credential store: no config directory")
	}
	switch kind {
	case KindFile, "":
		return NewFileStore(configDir), nil
	case KindSQLite:
		return NewSQLiteStore(filepath.Join(configDir, "companion.db"))
	default:
		return nil, fmt.Errorf("credential store: unknown kind %q", kind)
	}
}

// Memory is an in-process Store, used when nothing should touch disk
type Memory struct {
	token string
}

// Load implements Store
func (m *Memory) Load() (string, error) { return m.token, nil }

// Save implements Store
func (m *Memory) Save(token string) error {
	m.token = token
	return nil
}

// Clear implements Store
func (m *Memory) Clear() error {
	m.token = ""
	return nil
}
