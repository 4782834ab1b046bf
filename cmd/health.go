// ABOUTME: Health command for the companion CLI
// ABOUTME: Checks that the Companion server answers at its root

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/markalston/companion/internal/client"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check backend connectivity",
	Long:  `Check connectivity to the Companion server. No login is needed.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runHealth(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

// runHealth executes the health check and returns exit code
func runHealth(ctx context.Context, w io.Writer) int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	c := client.New(cfg.APIURL, nil, client.WithTimeout(cfg.HTTPTimeout))

	resp, err := c.Health(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatHealthJSON(cfg.APIURL, resp))
	} else {
		fmt.Fprintln(w, formatHealthHuman(cfg.APIURL, resp))
	}

	return 0
}

// formatHealthHuman formats health response for human readability
func formatHealthHuman(url string, resp *client.HealthResponse) string {
	return fmt.Sprintf(`Backend:  %s
Status:   ok
Message:  %s`, url, resp.Message)
}

// formatHealthJSON formats health response as JSON
func formatHealthJSON(url string, resp *client.HealthResponse) string {
	output := map[string]interface{}{
		"backend": url,
		"status":  "ok",
		"message": resp.Message,
	}
	data, _ := json.MarshalIndent(output, "", "  ")
	return string(data)
}
