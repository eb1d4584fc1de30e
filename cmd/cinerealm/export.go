package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Export server state to a JSON file",
	Long: `Write the server's history, watchlist, and preferences to a JSON
file on the server host. The write is atomic: an existing file is only
replaced once the new snapshot is complete.`,
	Args: cobra.ExactArgs(1),
	RunE: runExportCmd,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExportCmd(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)

	if err := client.Export(args[0]); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if jsonOutput {
		printJSON(map[string]string{"path": args[0]})
		return nil
	}
	fmt.Printf("State exported to %s\n", args[0])
	return nil
}
