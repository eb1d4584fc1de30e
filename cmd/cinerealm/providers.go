package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List embed providers",
	Long: `List the registered embed providers and the media types each one
can serve.

Examples:
  cinerealm providers               # All providers
  cinerealm providers --type anime  # Only providers that can play anime`,
	Args: cobra.NoArgs,
	RunE: runProvidersCmd,
}

func init() {
	rootCmd.AddCommand(providersCmd)
	providersCmd.Flags().String("type", "", "Filter by media type (movie, tv, anime)")
}

func runProvidersCmd(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)
	mediaType, _ := cmd.Flags().GetString("type")

	providers, err := client.Providers(mediaType)
	if err != nil {
		return fmt.Errorf("list providers failed: %w", err)
	}

	if jsonOutput {
		printJSON(providers)
		return nil
	}

	fmt.Printf("%-12s %-12s %s\n", "NAME", "KEY", "SUPPORTS")
	for _, p := range providers {
		var types []string
		for t, ok := range p.Supports {
			if ok {
				types = append(types, t)
			}
		}
		sort.Strings(types)
		fmt.Printf("%-12s %-12s %s\n", p.Name, p.Key, strings.Join(types, ", "))
	}
	return nil
}
