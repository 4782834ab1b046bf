// ABOUTME: Root command for the companion CLI
// ABOUTME: Handles global flags, configuration and wiring of the session and chat layers

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/markalston/companion/internal/chat"
	"github.com/markalston/companion/internal/client"
	"github.com/markalston/companion/internal/config"
	"github.com/markalston/companion/internal/credstore"
	"github.com/markalston/companion/internal/logger"
	"github.com/markalston/companion/internal/session"
	"github.com/markalston/companion/internal/tui/recentlogins"
)

var (
	apiURL     string
	configDir  string
	jsonOutput bool
	verbose    bool
)

// logOutput receives CLI logs; the chat command redirects logs to a file
var logOutput io.Writer = os.Stderr

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "companion",
	Short: "Terminal client for the Companion chat service",
	Long: `companion signs you in to a Companion server and lets you chat with your companion.

Run without a subcommand in a terminal to open the interactive app.

Environment Variables:
  COMPANION_API_URL                 Backend API URL (default: http://127.0.0.1:8000/api)
  COMPANION_CONFIG_DIR              Where credentials and recent logins are kept
  COMPANION_CREDENTIAL_STORE        file or sqlite (default: file)
  COMPANION_HTTP_TIMEOUT            Timeout for auth and history calls (default: 30s)
  COMPANION_SEND_TIMEOUT            Timeout for a chat reply (default: 60s)
  COMPANION_LOGOUT_ON_UNAUTHORIZED  Sign out when the server rejects the token (default: true)
  LOG_LEVEL, LOG_FORMAT             Logging (default: warn, text)`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		if !isInteractive() {
			_ = cmd.Help()
			return
		}

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runChat(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides COMPANION_API_URL)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Config directory (overrides COMPANION_CONFIG_DIR)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// isInteractive reports whether stdin is a terminal
func isInteractive() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// loadConfig reads the environment, applies flag overrides and sets up logging
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if apiURL != "" {
		cfg.APIURL = apiURL
	}
	if configDir != "" {
		cfg.ConfigDir = configDir
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Init(logOutput, cfg.LogLevel, cfg.LogFormat)
	return cfg, nil
}

// deps is the wired client stack shared by every command
type deps struct {
	cfg     *config.Config
	store   credstore.Store
	session *session.Manager
	client  *client.Client
	chat    *chat.Controller
	recent  *recentlogins.RecentLogins
}

// newDeps opens the credential store and builds the session, API client and
// chat controller. The returned close func releases the store.
func newDeps(cfg *config.Config) (*deps, func(), error) {
	store, err := credstore.Open(cfg.CredentialStore, cfg.ConfigDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening credential store: %w", err)
	}

	mgr := session.New(store, nil)
	c := client.New(cfg.APIURL, mgr, client.WithTimeout(cfg.HTTPTimeout))
	mgr.SetAPI(c)

	opts := []chat.Option{chat.WithSendTimeout(cfg.SendTimeout)}
	if cfg.LogoutOnUnauthorized {
		opts = append(opts, chat.WithUnauthorizedHandler(func() { mgr.Expire() }))
	}

	d := &deps{
		cfg:     cfg,
		store:   store,
		session: mgr,
		client:  c,
		chat:    chat.New(c, opts...),
		recent:  recentlogins.New(cfg.ConfigDir),
	}

	closeFn := func() {
		if closer, ok := store.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				slog.Warn("Closing credential store failed", "error", err)
			}
		}
	}
	return d, closeFn, nil
}

// setup loads configuration and wires dependencies, reporting failures to w
func setup(w io.Writer) (*deps, func(), bool) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return nil, nil, false
	}
	d, closeFn, err := newDeps(cfg)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return nil, nil, false
	}
	return d, closeFn, true
}
