package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var continueCmd = &cobra.Command{
	Use:   "continue",
	Short: "Continue-watching queue",
	Long:  `Show the continue-watching queue: the latest partially watched entry per title, most recent first.`,
	Args:  cobra.NoArgs,
	RunE:  runContinueCmd,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Full watch history",
	Args:  cobra.NoArgs,
	RunE:  runHistoryCmd,
}

var resumeCmd = &cobra.Command{
	Use:   "resume <id>",
	Short: "Stored resume position for one title",
	Long: `Look up the stored resume position for a media identity.

Examples:
  cinerealm resume 603 --type movie
  cinerealm resume 1399 --type tv --season 1 --episode 2`,
	Args: cobra.ExactArgs(1),
	RunE: runResumeCmd,
}

func init() {
	rootCmd.AddCommand(continueCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(resumeCmd)

	resumeCmd.Flags().String("type", "movie", "Media type (movie, tv, anime)")
	resumeCmd.Flags().Int("season", 0, "Season number")
	resumeCmd.Flags().Int("episode", 0, "Episode number")
}

func runContinueCmd(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)

	entries, err := client.ContinueWatching()
	if err != nil {
		return fmt.Errorf("continue-watching fetch failed: %w", err)
	}
	return printHistoryEntries(entries)
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)

	entries, err := client.History()
	if err != nil {
		return fmt.Errorf("history fetch failed: %w", err)
	}
	return printHistoryEntries(entries)
}

func printHistoryEntries(entries []HistoryEntry) error {
	if jsonOutput {
		printJSON(entries)
		return nil
	}

	if len(entries) == 0 {
		fmt.Println("No entries.")
		return nil
	}

	fmt.Printf("%-10s %-8s %-10s %-12s %s\n", "ID", "TYPE", "EPISODE", "POSITION", "UPDATED")
	for _, e := range entries {
		id := e.MediaID
		if id == "" {
			id = strconv.Itoa(e.TMDBID)
		}
		episode := "-"
		if e.Season > 0 {
			episode = fmt.Sprintf("S%02dE%02d", e.Season, e.Episode)
		}
		fmt.Printf("%-10s %-8s %-10s %-12s %s\n",
			id, e.Type, episode, formatPosition(e.Progress, e.Duration), formatTimeAgo(e.AddedAt))
	}
	return nil
}

func runResumeCmd(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid media ID: %s", args[0])
	}
	mediaType, _ := cmd.Flags().GetString("type")
	season, _ := cmd.Flags().GetInt("season")
	episode, _ := cmd.Flags().GetInt("episode")

	client := NewClient(serverURL)
	position, err := client.Resume(id, mediaType, season, episode)
	if err != nil {
		return fmt.Errorf("resume lookup failed: %w", err)
	}

	if jsonOutput {
		printJSON(map[string]float64{"position": position})
		return nil
	}

	if position == 0 {
		fmt.Println("No saved position, starts from the beginning.")
		return nil
	}
	fmt.Printf("Resumes at %s\n", formatSeconds(position))
	return nil
}

func formatPosition(progress, duration float64) string {
	if duration > 0 {
		return fmt.Sprintf("%s/%s", formatSeconds(progress), formatSeconds(duration))
	}
	return formatSeconds(progress)
}

func formatSeconds(s float64) string {
	d := time.Duration(s) * time.Second
	if d >= time.Hour {
		return fmt.Sprintf("%d:%02d:%02d", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
	}
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

func formatTimeAgo(unixMillis int64) string {
	if unixMillis == 0 {
		return "never"
	}

	t := time.UnixMilli(unixMillis)
	ago := time.Since(t)

	switch {
	case ago < time.Minute:
		return "just now"
	case ago < time.Hour:
		return fmt.Sprintf("%dm ago", int(ago.Minutes()))
	case ago < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(ago.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(ago.Hours()/24))
	}
}
