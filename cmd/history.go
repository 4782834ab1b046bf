// ABOUTME: History commands for the companion CLI
// ABOUTME: Prints the stored conversation and clears it after confirmation

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/markalston/companion/internal/chat"
	"github.com/markalston/companion/internal/tui"
)

var clearYes bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the chat history",
	Long: `Print the conversation stored on the server, oldest first. Exit codes:
  0  History printed
  2  Error (not logged in, server failure)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runHistory(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the chat history",
	Long: `Delete the conversation stored on the server.

Asks for confirmation in a terminal; scripts must pass --yes. Exit codes:
  0  History cleared
  1  Not confirmed
  2  Error (not logged in, server failure)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runHistoryClear(ctx, os.Stdout, isInteractive())
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	historyClearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "Skip the confirmation prompt")
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

// runHistory loads and prints the transcript, returning exit code
func runHistory(ctx context.Context, w io.Writer) int {
	d, closeFn, ok := setup(w)
	if !ok {
		return 2
	}
	defer closeFn()

	if !requireSession(w, d) {
		return 2
	}

	if err := d.chat.LoadHistory(ctx); err != nil {
		fmt.Fprintln(w, chat.NoticeHistoryFailed)
		reportExpiry(w, d)
		return 2
	}

	msgs := d.chat.Transcript()
	if IsJSONOutput() {
		fmt.Fprintln(w, formatHistoryJSON(msgs))
	} else {
		fmt.Fprintln(w, formatHistoryHuman(msgs))
	}
	return 0
}

// runHistoryClear deletes the history once confirmed, returning exit code
func runHistoryClear(ctx context.Context, w io.Writer, interactive bool) int {
	d, closeFn, ok := setup(w)
	if !ok {
		return 2
	}
	defer closeFn()

	if !requireSession(w, d) {
		return 2
	}

	confirmed := clearYes
	if !confirmed {
		if !interactive {
			fmt.Fprintln(w, "Error: refusing to clear history without --yes")
			return 2
		}
		var err error
		confirmed, err = promptConfirm(ctx, tui.ClearQuestion)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
	}

	err := d.chat.ClearHistory(ctx, confirmed)
	switch {
	case errors.Is(err, chat.ErrNotConfirmed):
		fmt.Fprintln(w, "History kept.")
		return 1
	case err != nil:
		fmt.Fprintln(w, chat.NoticeClearFailed)
		reportExpiry(w, d)
		return 2
	}

	fmt.Fprintln(w, "History cleared.")
	return 0
}

// formatHistoryHuman renders the transcript as speaker-labelled blocks
func formatHistoryHuman(msgs []chat.Message) string {
	if len(msgs) == 0 {
		return "No messages yet."
	}

	var b strings.Builder
	for i, m := range msgs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		speaker := "You"
		if m.Role == chat.RoleModel {
			speaker = "Companion"
		}
		fmt.Fprintf(&b, "%s:\n%s", speaker, m.Content)
	}
	return b.String()
}

func formatHistoryJSON(msgs []chat.Message) string {
	if msgs == nil {
		msgs = []chat.Message{}
	}
	data, _ := json.MarshalIndent(msgs, "", "  ")
	return string(data)
}
