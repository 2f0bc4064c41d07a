package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var riskDeadline string

// riskCmd represents the risk command
var riskCmd = &cobra.Command{
	Use:   "risk <submission-id>",
	Short: "Assess a submission's failure risk against a deadline",
	Long: `Risk applies a deterministic heuristic over the submission's recent
activity, its status, and the time remaining until the deadline. It needs no
oracle and always produces the same result for the same inputs.

Example:
  arbiter risk 7f3c... --deadline 2026-09-15T18:00:00Z`,
	Args: cobra.ExactArgs(1),
	RunE: runRisk,
}

func init() {
	rootCmd.AddCommand(riskCmd)

	riskCmd.Flags().StringVar(&riskDeadline, "deadline", "", "hackathon deadline (RFC 3339)")
	_ = riskCmd.MarkFlagRequired("deadline")

	addEngineFlags(riskCmd)
}

func runRisk(cmd *cobra.Command, args []string) error {
	submissionID := args[0]

	deadline, err := time.Parse(time.RFC3339, riskDeadline)
	if err != nil {
		return fmt.Errorf("parsing deadline: %w", err)
	}

	engine, err := openEngine()
	if err != nil {
		return err
	}
	defer func() { _ = engine.Close() }()

	assessment, err := engine.Risk(context.Background(), submissionID, deadline)
	if err != nil {
		return fmt.Errorf("risk assessment failed: %w", err)
	}

	fmt.Printf("Failure probability: %d%%\n", assessment.Probability)
	fmt.Printf("Risk level:          %s\n", assessment.RiskLevel)
	if assessment.PredictedFailureDate != nil {
		fmt.Printf("Predicted failure:   %s\n", assessment.PredictedFailureDate.Format(time.RFC3339))
	}
	if len(assessment.Recommendations) > 0 {
		fmt.Println("\nRecommendations:")
		for _, rec := range assessment.Recommendations {
			fmt.Printf("  - %s\n", rec)
		}
	}

	return nil
}
