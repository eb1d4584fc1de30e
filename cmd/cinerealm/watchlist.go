package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var watchlistCmd = &cobra.Command{
	Use:   "watchlist",
	Short: "Saved titles",
	Args:  cobra.NoArgs,
	RunE:  runWatchlistCmd,
}

func init() {
	rootCmd.AddCommand(watchlistCmd)
}

func runWatchlistCmd(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)

	entries, err := client.Watchlist()
	if err != nil {
		return fmt.Errorf("watchlist fetch failed: %w", err)
	}

	if jsonOutput {
		printJSON(entries)
		return nil
	}

	if len(entries) == 0 {
		fmt.Println("Watchlist is empty.")
		return nil
	}

	fmt.Printf("%-10s %-8s %-40s %s\n", "ID", "TYPE", "TITLE", "ADDED")
	for _, e := range entries {
		fmt.Printf("%-10d %-8s %-40s %s\n", e.ID, e.Type, e.Title, formatTimeAgo(e.AddedAt))
	}
	return nil
}
