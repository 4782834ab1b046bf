// ABOUTME: Login command for the companion CLI
// ABOUTME: Exchanges email and password for a stored session credential

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/markalston/companion/internal/route"
	"github.com/markalston/companion/internal/session"
)

var (
	loginEmail         string
	loginPasswordStdin bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session credential",
	Long: `Sign in to the Companion server.

Without --password-stdin the password is prompted for. Exit codes:
  0  Logged in
  1  Credentials rejected
  2  Error (server unreachable, bad input)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runLogin(ctx, os.Stdout, os.Stdin)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email (defaults to the last one used)")
	loginCmd.Flags().BoolVar(&loginPasswordStdin, "password-stdin", false, "Read the password from the first line of stdin")
	rootCmd.AddCommand(loginCmd)
}

// LoginResult is the outcome reported by login
type LoginResult struct {
	Email         string `json:"email"`
	Authenticated bool   `json:"authenticated"`
	Route         string `json:"route"`
	Notice        string `json:"notice,omitempty"`
}

// runLogin executes the login and returns exit code
func runLogin(ctx context.Context, w io.Writer, in io.Reader) int {
	d, closeFn, ok := setup(w)
	if !ok {
		return 2
	}
	defer closeFn()

	email := strings.TrimSpace(loginEmail)
	var password string

	if loginPasswordStdin {
		if email == "" {
			fmt.Fprintln(w, "Error: --email is required with --password-stdin")
			return 2
		}
		lines, err := readLines(in, 1)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
		password = lines[0]
	} else {
		if email == "" {
			email = d.recent.Latest()
		}
		if err := promptLogin(ctx, &email, &password); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
		email = strings.TrimSpace(email)
	}

	out, err := d.session.Login(ctx, email, password)
	if err != nil {
		return reportSessionError(w, err)
	}

	if err := d.recent.Add(email); err != nil {
		slog.Warn("Could not remember login email", "error", err)
	}

	result := LoginResult{Email: email, Authenticated: true, Route: out.Route.String()}
	if IsJSONOutput() {
		fmt.Fprintln(w, formatLoginJSON(result))
	} else {
		fmt.Fprintln(w, formatLoginHuman(result))
	}
	return 0
}

func formatLoginHuman(r LoginResult) string {
	return fmt.Sprintf("Logged in as %s.", r.Email)
}

func formatLoginJSON(r LoginResult) string {
	data, _ := json.MarshalIndent(r, "", "  ")
	return string(data)
}

// reportSessionError prints a session failure and maps it to an exit code.
// Rejections exit 1; unreachable servers and local faults exit 2.
func reportSessionError(w io.Writer, err error) int {
	var valErr *session.ValidationError
	if errors.As(err, &valErr) {
		fmt.Fprintln(w, valErr.Message)
		return 1
	}

	var authErr *session.AuthError
	if errors.As(err, &authErr) {
		fmt.Fprintln(w, authErr.Message)
		if authErr.Unreachable {
			return 2
		}
		return 1
	}

	fmt.Fprintf(w, "Error: %v\n", err)
	return 2
}

// requireSession applies the route guard for a protected command
func requireSession(w io.Writer, d *deps) bool {
	if route.Guard(d.session, route.Chat) != route.Chat {
		fmt.Fprintln(w, "Error: not logged in (run 'companion login')")
		return false
	}
	return true
}
