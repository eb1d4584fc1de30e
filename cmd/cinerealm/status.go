package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Server status",
	Long: `Show the server dashboard: version, uptime, registered embed
providers, history size, and the current playback state.`,
	Args: cobra.NoArgs,
	RunE: runStatusCmd,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatusCmd(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)

	status, err := client.Status()
	if err != nil {
		return fmt.Errorf("status check failed: %w", err)
	}

	if jsonOutput {
		printJSON(status)
		return nil
	}

	fmt.Printf("cinerealm v%s | Server: %s | Status: %s\n\n", status.Version, serverURL, status.Status)
	fmt.Printf("  Uptime:     %s\n", status.Uptime)
	fmt.Printf("  Providers:  %d\n", status.Providers)
	fmt.Printf("  History:    %d records\n", status.HistorySize)
	fmt.Printf("  Playback:   %s\n", status.PlayingState)
	return nil
}
