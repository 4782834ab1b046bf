// ABOUTME: Credential input for non-TUI commands
// ABOUTME: Reads secrets from stdin for scripts or prompts with huh in a terminal

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/markalston/companion/internal/tui/styles"
)

// readLines reads exactly n lines from r, trimming line endings
func readLines(r io.Reader, n int) ([]string, error) {
	scanner := bufio.NewScanner(r)
	lines := make([]string, 0, n)
	for len(lines) < n && scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	if len(lines) < n {
		return nil, fmt.Errorf("expected %d line(s) on stdin, got %d", n, len(lines))
	}
	return lines, nil
}

func notBlank(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

// promptLogin asks for whichever of email and password is still empty.
// Replaced in tests.
var promptLogin = func(ctx context.Context, email, password *string) error {
	var fields []huh.Field
	if *email == "" {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Value(email).
			Validate(notBlank("email")))
	}
	fields = append(fields, huh.NewInput().
		Title("Password").
		EchoMode(huh.EchoModePassword).
		Value(password).
		Validate(notBlank("password")))

	return huh.NewForm(huh.NewGroup(fields...)).
		WithTheme(styles.FormTheme()).
		RunWithContext(ctx)
}

// promptPasswords asks for a new password twice. Replaced in tests.
var promptPasswords = func(ctx context.Context, password, confirm *string) error {
	return huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(password).
			Validate(notBlank("password")),
		huh.NewInput().
			Title("Confirm Password").
			EchoMode(huh.EchoModePassword).
			Value(confirm),
	)).WithTheme(styles.FormTheme()).RunWithContext(ctx)
}

// promptConfirm asks a yes/no question. Replaced in tests.
var promptConfirm = func(ctx context.Context, question string) (bool, error) {
	var ok bool
	err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(question).
			Affirmative("Yes").
			Negative("No").
			Value(&ok),
	)).WithTheme(styles.FormTheme()).RunWithContext(ctx)
	return ok, err
}
