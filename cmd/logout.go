// ABOUTME: Logout and whoami commands for the companion CLI
// ABOUTME: Drops the stored credential or reports whether one is held

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session credential",
	Long:  `Forget the stored session credential. The server is not contacted.`,
	Run: func(cmd *cobra.Command, args []string) {
		exitCode := runLogout(os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show whether a session credential is stored",
	Long: `Show whether a session credential is stored. Exit codes:
  0  Logged in
  1  Not logged in
  2  Error`,
	Run: func(cmd *cobra.Command, args []string) {
		exitCode := runWhoami(os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}

func runLogout(w io.Writer) int {
	d, closeFn, ok := setup(w)
	if !ok {
		return 2
	}
	defer closeFn()

	d.session.Logout()
	d.chat.Reset()
	fmt.Fprintln(w, "Logged out.")
	return 0
}

// SessionStatus is reported by whoami
type SessionStatus struct {
	Authenticated bool   `json:"authenticated"`
	Email         string `json:"email,omitempty"`
	APIURL        string `json:"api_url"`
	Store         string `json:"credential_store"`
}

func runWhoami(w io.Writer) int {
	d, closeFn, ok := setup(w)
	if !ok {
		return 2
	}
	defer closeFn()

	status := SessionStatus{
		Authenticated: d.session.Authenticated(),
		APIURL:        d.cfg.APIURL,
		Store:         string(d.cfg.CredentialStore),
	}
	if status.Authenticated {
		status.Email = d.recent.Latest()
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatWhoamiJSON(status))
	} else {
		fmt.Fprintln(w, formatWhoamiHuman(status))
	}

	if !status.Authenticated {
		return 1
	}
	return 0
}

func formatWhoamiHuman(s SessionStatus) string {
	state := "not logged in"
	if s.Authenticated {
		state = "logged in"
		if s.Email != "" {
			state += " as " + s.Email
		}
	}
	return fmt.Sprintf(`Backend:  %s
Session:  %s
Store:    %s`, s.APIURL, state, s.Store)
}

func formatWhoamiJSON(s SessionStatus) string {
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}
