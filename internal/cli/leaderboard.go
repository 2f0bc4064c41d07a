package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var leaderboardJSON string

// leaderboardCmd represents the leaderboard command
var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the blended leaderboard",
	Long: `Leaderboard ranks every submission by its blended score: 30% AI
review average, 70% human judge average. Submissions with no judge scores
stand on their AI score alone. Ties break by submission age, oldest first.

Example:
  arbiter leaderboard
  arbiter leaderboard --json leaderboard.json`,
	RunE: runLeaderboard,
}

func init() {
	rootCmd.AddCommand(leaderboardCmd)

	leaderboardCmd.Flags().StringVar(&leaderboardJSON, "json", "", "write the leaderboard as JSON to this path")

	addEngineFlags(leaderboardCmd)
}

func runLeaderboard(cmd *cobra.Command, args []string) error {
	engine, err := openEngine()
	if err != nil {
		return err
	}
	defer func() { _ = engine.Close() }()

	entries, err := engine.Store().Leaderboard(context.Background())
	if err != nil {
		return fmt.Errorf("building leaderboard: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No submissions yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tSCORE\tAI\tHUMAN\tTITLE")
	for _, e := range entries {
		human := "-"
		if e.HasHuman {
			human = fmt.Sprintf("%.1f", e.HumanScore)
		}
		fmt.Fprintf(w, "%d\t%d\t%.1f\t%s\t%s\n", e.Rank, e.BlendedScore, e.AIScore, human, e.Title)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if leaderboardJSON != "" {
		if err := writeJSON(leaderboardJSON, entries); err != nil {
			return fmt.Errorf("writing JSON: %w", err)
		}
	}

	return nil
}
