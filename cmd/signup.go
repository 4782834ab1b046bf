// ABOUTME: Signup command for the companion CLI
// ABOUTME: Creates an account; the user logs in separately afterwards

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/markalston/companion/internal/session"
)

var (
	signupFirstName     string
	signupLastName      string
	signupEmail         string
	signupPasswordStdin bool
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account",
	Long: `Create an account on the Companion server. Signing up does not log you in.

With --password-stdin the password and its confirmation are read from the
first two lines of stdin. Exit codes:
  0  Account created
  1  Rejected (passwords differ, email already registered)
  2  Error (server unreachable, bad input)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runSignup(ctx, os.Stdout, os.Stdin)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	signupCmd.Flags().StringVar(&signupFirstName, "first-name", "", "First name")
	signupCmd.Flags().StringVar(&signupLastName, "last-name", "", "Last name")
	signupCmd.Flags().StringVar(&signupEmail, "email", "", "Account email")
	signupCmd.Flags().BoolVar(&signupPasswordStdin, "password-stdin", false, "Read password and confirmation from stdin")
	_ = signupCmd.MarkFlagRequired("first-name")
	_ = signupCmd.MarkFlagRequired("last-name")
	_ = signupCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(signupCmd)
}

// runSignup executes the signup and returns exit code
func runSignup(ctx context.Context, w io.Writer, in io.Reader) int {
	req := session.SignupRequest{
		FirstName: strings.TrimSpace(signupFirstName),
		LastName:  strings.TrimSpace(signupLastName),
		Email:     strings.TrimSpace(signupEmail),
	}
	for flag, v := range map[string]string{"--first-name": req.FirstName, "--last-name": req.LastName, "--email": req.Email} {
		if v == "" {
			fmt.Fprintf(w, "Error: %s is required\n", flag)
			return 2
		}
	}

	d, closeFn, ok := setup(w)
	if !ok {
		return 2
	}
	defer closeFn()

	if signupPasswordStdin {
		lines, err := readLines(in, 2)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
		req.Password, req.ConfirmPassword = lines[0], lines[1]
	} else if err := promptPasswords(ctx, &req.Password, &req.ConfirmPassword); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	out, err := d.session.Signup(ctx, req)
	if err != nil {
		return reportSessionError(w, err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatSignupJSON(req.Email, out))
	} else {
		fmt.Fprintln(w, out.Notice)
	}
	return 0
}

func formatSignupJSON(email string, out session.Outcome) string {
	data, _ := json.MarshalIndent(map[string]string{
		"email":  email,
		"route":  out.Route.String(),
		"notice": out.Notice,
	}, "", "  ")
	return string(data)
}
