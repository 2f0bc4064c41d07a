package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	debateTimeout time.Duration
	debateJSON    string
)

// debateCmd represents the debate command
var debateCmd = &cobra.Command{
	Use:   "debate <submission-id>",
	Short: "Simulate a panel debate over a submission",
	Long: `Debate generates a short exchange between three fixed perspectives
(Visionary, Skeptic, Architect) over the submission's merits. Turns are
presentation content; they never influence scores.

Without an oracle, a canned script is returned.

Example:
  arbiter debate 7f3c... --oracle groq`,
	Args: cobra.ExactArgs(1),
	RunE: runDebate,
}

func init() {
	rootCmd.AddCommand(debateCmd)

	debateCmd.Flags().DurationVar(&debateTimeout, "timeout", 2*time.Minute, "debate generation timeout")
	debateCmd.Flags().StringVar(&debateJSON, "json", "", "write the debate as JSON to this path")

	addEngineFlags(debateCmd)
}

func runDebate(cmd *cobra.Command, args []string) error {
	submissionID := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), debateTimeout)
	defer cancel()

	engine, err := openEngine()
	if err != nil {
		return err
	}
	defer func() { _ = engine.Close() }()

	turns, err := engine.Debate(ctx, submissionID)
	if err != nil {
		return fmt.Errorf("debate failed: %w", err)
	}

	for i, turn := range turns {
		fmt.Printf("%d. %s [%s]\n", i+1, turn.Speaker, turn.Sentiment)
		fmt.Printf("   %s\n\n", turn.Content)
	}

	if debateJSON != "" {
		if err := writeJSON(debateJSON, turns); err != nil {
			return fmt.Errorf("writing JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", debateJSON)
		}
	}

	return nil
}
