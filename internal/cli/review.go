package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mkravets/arbiter/internal/model"
	"github.com/spf13/cobra"
)

var (
	reviewTimeout time.Duration
	reviewJSON    string
)

// reviewCmd represents the review command
var reviewCmd = &cobra.Command{
	Use:   "review <submission-id>",
	Short: "Score a submission and synthesize an AI critique",
	Long: `Review runs the full scoring pipeline for one submission:
- Embed the submission text into a concept vector
- Score novelty against every previously scored submission
- Synthesize a structured critique (overall, feasibility, impact, reasoning)
- Persist the review for the leaderboard

The locally computed novelty score is authoritative. Without an oracle the
review is a deterministic fallback built around the novelty score.

Example:
  arbiter review 7f3c... --oracle groq
  arbiter review 7f3c... --json review.json`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)

	reviewCmd.Flags().DurationVar(&reviewTimeout, "timeout", 2*time.Minute, "overall review timeout")
	reviewCmd.Flags().StringVar(&reviewJSON, "json", "", "write the review as JSON to this path")

	addEngineFlags(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	submissionID := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), reviewTimeout)
	defer cancel()

	engine, err := openEngine()
	if err != nil {
		return err
	}
	defer func() { _ = engine.Close() }()

	r, err := engine.ReviewSubmission(ctx, submissionID)
	if err != nil {
		return fmt.Errorf("review failed: %w", err)
	}

	printReview(r)

	if reviewJSON != "" {
		if err := writeJSON(reviewJSON, r); err != nil {
			return fmt.Errorf("writing JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", reviewJSON)
		}
	}

	return nil
}

func printReview(r model.Review) {
	fmt.Printf("Review %s by %s\n", r.ID, r.AgentLabel)
	fmt.Printf("  Overall:     %d/100\n", r.OverallScore)
	fmt.Printf("  Novelty:     %d/100\n", r.NoveltyScore)
	fmt.Printf("  Feasibility: %d/100\n", r.FeasibilityScore)
	fmt.Printf("  Impact:      %d/100\n", r.ImpactScore)
	fmt.Println()
	fmt.Println(r.Reasoning)
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
