// ABOUTME: Send command for the companion CLI
// ABOUTME: Sends one chat message and prints the companion's reply

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

var sendCmd = &cobra.Command{
	Use:   "send [message...]",
	Short: "Send a message and print the reply",
	Long: `Send a message to your companion and print the reply.

With no arguments, or "-", the message is read from stdin. Exit codes:
  0  Reply received
  1  The send failed and the fallback reply was shown
  2  Error (not logged in, empty message)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runSend(ctx, os.Stdout, os.Stdin, args)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
}

// SendResult is the JSON shape of a send
type SendResult struct {
	Content string `json:"content"`
	Reply   string `json:"reply"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
}

// runSend executes one send and returns exit code
func runSend(ctx context.Context, w io.Writer, in io.Reader, args []string) int {
	content := strings.Join(args, " ")
	if content == "" || content == "-" {
		data, err := io.ReadAll(in)
		if err != nil {
			fmt.Fprintf(w, "Error: reading stdin: %v\n", err)
			return 2
		}
		content = strings.TrimRight(string(data), "\r\n")
	}

	d, closeFn, ok := setup(w)
	if !ok {
		return 2
	}
	defer closeFn()

	if !requireSession(w, d) {
		return 2
	}

	attempt, ok := d.chat.Send(ctx, content)
	if !ok {
		fmt.Fprintln(w, "Error: message is empty")
		return 2
	}

	result := SendResult{Content: attempt.Content, Reply: attempt.Reply.Content, OK: attempt.Succeeded()}
	if attempt.Err != nil {
		result.Error = attempt.Err.Error()
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatSendJSON(result))
	} else {
		fmt.Fprintln(w, result.Reply)
	}

	if !result.OK {
		reportExpiry(w, d)
		return 1
	}
	return 0
}

func formatSendJSON(r SendResult) string {
	data, _ := json.MarshalIndent(r, "", "  ")
	return string(data)
}

// reportExpiry tells the user when a rejected token ended the session
func reportExpiry(w io.Writer, d *deps) {
	if d.cfg.LogoutOnUnauthorized && !d.session.Authenticated() {
		fmt.Fprintln(w, session.NoticeSessionExpired)
	}
}

