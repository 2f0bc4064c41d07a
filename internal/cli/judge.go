package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mkravets/arbiter/internal/model"
	"github.com/spf13/cobra"
)

var (
	scoreItems    []string
	scoreFeedback string
)

// judgeCmd represents the judge command
var judgeCmd = &cobra.Command{
	Use:   "judge",
	Short: "Manage judge assignments and scores",
	Long: `Judge manages the human side of scoring: assigning judges to
submissions, listing pending work, and submitting rubric scorecards.

A judge scores each assigned submission exactly once; the scorecard is
locked on creation. Completed scores feed the leaderboard's human half.`,
}

var judgeAssignCmd = &cobra.Command{
	Use:   "assign <judge-id> <submission-id>",
	Short: "Assign a judge to a submission",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine()
		if err != nil {
			return err
		}
		defer func() { _ = engine.Close() }()

		assignment, err := engine.Store().AssignJudge(context.Background(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("assign failed: %w", err)
		}

		fmt.Printf("✓ Assigned %s to %s (%s)\n", assignment.JudgeID, assignment.SubmissionID, assignment.Status)
		return nil
	},
}

var judgePendingCmd = &cobra.Command{
	Use:   "pending <judge-id>",
	Short: "List a judge's pending assignments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine()
		if err != nil {
			return err
		}
		defer func() { _ = engine.Close() }()

		assignments, err := engine.Store().PendingAssignments(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("listing assignments: %w", err)
		}

		if len(assignments) == 0 {
			fmt.Println("No pending assignments.")
			return nil
		}
		for _, a := range assignments {
			fmt.Printf("%s  %s\n", a.ID, a.SubmissionID)
		}
		return nil
	},
}

var judgeScoreCmd = &cobra.Command{
	Use:   "score <judge-id> <submission-id>",
	Short: "Submit a judge's rubric scorecard",
	Long: `Score submits a complete scorecard for an assigned submission.

Each --item is a rubric item ID and the points awarded, joined by '='.
The whole scorecard is validated before anything is written; a judge who
already scored this submission is rejected.

Example:
  arbiter judge score judge-1 7f3c... \
    --item technical=28 --item design=17 --item impact=22 \
    --feedback "Strong prototype, weak go-to-market."`,
	Args: cobra.ExactArgs(2),
	RunE: runJudgeScore,
}

func init() {
	rootCmd.AddCommand(judgeCmd)
	judgeCmd.AddCommand(judgeAssignCmd)
	judgeCmd.AddCommand(judgePendingCmd)
	judgeCmd.AddCommand(judgeScoreCmd)

	judgeScoreCmd.Flags().StringArrayVar(&scoreItems, "item", nil, "rubric item score as id=points (repeatable)")
	judgeScoreCmd.Flags().StringVar(&scoreFeedback, "feedback", "", "free-form feedback for the team")

	addEngineFlags(judgeAssignCmd)
	addEngineFlags(judgePendingCmd)
	addEngineFlags(judgeScoreCmd)
}

func runJudgeScore(cmd *cobra.Command, args []string) error {
	judgeID, submissionID := args[0], args[1]

	items, err := parseItemScores(scoreItems)
	if err != nil {
		return err
	}

	engine, err := openEngine()
	if err != nil {
		return err
	}
	defer func() { _ = engine.Close() }()

	score, err := engine.Store().SubmitScore(context.Background(), judgeID, submissionID, items, scoreFeedback)
	if err != nil {
		return fmt.Errorf("score rejected: %w", err)
	}

	fmt.Printf("✓ Scorecard %s recorded (total: %d, locked at %s)\n",
		score.ID, score.Total(), score.CreatedAt.Format(time.RFC3339))
	return nil
}

func parseItemScores(raw []string) ([]model.RubricItemScore, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("at least one --item is required")
	}

	items := make([]model.RubricItemScore, 0, len(raw))
	for _, entry := range raw {
		id, points, found := strings.Cut(entry, "=")
		if !found || id == "" {
			return nil, fmt.Errorf("invalid --item %q: expected id=points", entry)
		}
		n, err := strconv.Atoi(points)
		if err != nil {
			return nil, fmt.Errorf("invalid --item %q: %w", entry, err)
		}
		items = append(items, model.RubricItemScore{RubricItemID: id, Score: n})
	}
	return items, nil
}
