// ABOUTME: Remembers recently used login emails for the TUI login form
// ABOUTME: Stores the list as JSON in the companion config directory

package recentlogins

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// MaxRecent is the maximum number of emails to keep
const MaxRecent = 5

// RecentLogins manages the list of recently used login emails
type RecentLogins struct {
	configDir string
	emails    []string
}

type recentData struct {
	Emails []string `json:"emails"`
}

// New creates a RecentLogins manager with the given config directory
func New(configDir string) *RecentLogins {
	return &RecentLogins{
		configDir: configDir,
		emails:    nil,
	}
}

// configFile returns the path to the recent logins JSON
func (r *RecentLogins) configFile() string {
	return filepath.Join(r.configDir, "recent.json")
}

// Load reads the recent emails from disk.
// A missing or corrupt file yields an empty list.
func (r *RecentLogins) Load() ([]string, error) {
	data, err := os.ReadFile(r.configFile())
	if os.IsNotExist(err) {
		r.emails = []string{}
		return r.emails, nil
	}
	if err != nil {
		return nil, err
	}

	var recent recentData
	if err := json.Unmarshal(data, &recent); err != nil {
		r.emails = []string{}
		return r.emails, nil
	}

	r.emails = make([]string, 0, len(recent.Emails))
	for _, email := range recent.Emails {
		if email = strings.TrimSpace(email); email != "" {
			r.emails = append(r.emails, email)
		}
	}

	return r.emails, nil
}

// Save writes the recent emails to disk
func (r *RecentLogins) Save(emails []string) error {
	if err := os.MkdirAll(r.configDir, 0700); err != nil {
		return err
	}

	if len(emails) > MaxRecent {
		emails = emails[:MaxRecent]
	}

	r.emails = emails

	data, err := json.MarshalIndent(recentData{Emails: emails}, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(r.configFile(), data, 0600)
}

// Add records an email, moving it to the front if already present.
// Emails compare case-insensitively.
func (r *RecentLogins) Add(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}

	if r.emails == nil {
		if _, err := r.Load(); err != nil {
			r.emails = []string{}
		}
	}

	next := make([]string, 0, len(r.emails)+1)
	next = append(next, email)
	for _, e := range r.emails {
		if !strings.EqualFold(e, email) {
			next = append(next, e)
		}
	}

	return r.Save(next)
}

// Latest returns the most recent email, or "" when none is stored
func (r *RecentLogins) Latest() string {
	emails := r.List()
	if len(emails) == 0 {
		return ""
	}
	return emails[0]
}

// List returns the current list of recent emails
func (r *RecentLogins) List() []string {
	if r.emails == nil {
		r.Load()
	}
	return r.emails
}
