// ABOUTME: File-backed credential store in the XDG config directory
// ABOUTME: Writes the token as JSON with owner-only permissions

package credstore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// FileStore keeps the credential in <configDir>/credentials.json
type FileStore struct {
	configDir string
}

type credentialData struct {
	Token string `json:"token"`
}

// NewFileStore creates a file store rooted at configDir
func NewFileStore(configDir string) *FileStore {
	return &FileStore{configDir: configDir}
}

// Path returns the credentials file path
func (fs *FileStore) Path() string {
	return filepath.Join(fs.configDir, "credentials.json")
}

// Load reads the credential from disk
func (fs *FileStore) Load() (string, error) {
	data, err := os.ReadFile(fs.Path())
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	var cred credentialData
	if err := json.Unmarshal(data, &cred); err != nil {
		// Corrupt file, treat as logged out
		return "", nil
	}
	return cred.Token, nil
}

// Save writes the credential to disk, replacing any previous one
func (fs *FileStore) Save(token string) error {
	if err := os.MkdirAll(fs.configDir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(credentialData{Token: token}, "", "  ")
	if err != nil {
		return err
	}

	// Atomic replace via rename
	tmp, err := os.CreateTemp(fs.configDir, ".credentials-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), fs.Path())
}

// Clear deletes the credentials file
func (fs *FileStore) Clear() error {
	err := os.Remove(fs.Path())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
