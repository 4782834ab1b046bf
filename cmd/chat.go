// ABOUTME: Chat command for the companion CLI
// ABOUTME: Opens the interactive terminal app with logs redirected to a file

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/markalston/companion/internal/logger"
	"github.com/markalston/companion/internal/tui"
)

var markdownStyle string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive app",
	Long: `Open the interactive app. Signed-in users land in the chat; everyone
else starts at the menu. Logs are written to debug.log in the config directory.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runChat(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&markdownStyle, "markdown-style", "dark", "Glamour style for replies (dark, light, notty)")
	rootCmd.AddCommand(chatCmd)
}

// runChat runs the TUI until the user quits and returns exit code
func runChat(ctx context.Context, w io.Writer) int {
	d, closeFn, ok := setup(w)
	if !ok {
		return 2
	}
	defer closeFn()

	// Logs go to a file while the alternate screen is active
	logFile, err := logger.OpenFile(d.cfg.ConfigDir)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer logFile.Close()
	logger.Init(logFile, d.cfg.LogLevel, d.cfg.LogFormat)
	slog.Info("Starting companion", "api_url", d.cfg.APIURL, "authenticated", d.session.Authenticated())

	err = tui.Run(ctx, tui.Config{
		Session:       d.session,
		Chat:          d.chat,
		Recent:        d.recent,
		APIURL:        d.cfg.APIURL,
		MarkdownStyle: markdownStyle,
	})
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	return 0
}
