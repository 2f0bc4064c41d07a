package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/mkravets/arbiter/internal/model"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	submitTitle       string
	submitDescription string
	submitStatus      string
	submitFile        string
)

// submitCmd represents the submit command
var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Register submissions in the store",
	Long: `Submit registers one or more submissions so they can be reviewed,
debated, risk-assessed, and judged.

A single submission is given inline:
  arbiter submit --title "Neural Garden" --description "..." --status Idea

Or several at once from a YAML file:
  arbiter submit --file submissions.yaml

The file holds a list of submissions; IDs are generated when omitted.`,
	RunE: runSubmit,
}

func init() {
	rootCmd.AddCommand(submitCmd)

	submitCmd.Flags().StringVar(&submitTitle, "title", "", "submission title")
	submitCmd.Flags().StringVar(&submitDescription, "description", "", "submission description")
	submitCmd.Flags().StringVar(&submitStatus, "status", string(model.StatusIdea), "submission status (Idea, Draft, Submitted)")
	submitCmd.Flags().StringVar(&submitFile, "file", "", "YAML file with a list of submissions")

	addEngineFlags(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	subs, err := collectSubmissions()
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		return fmt.Errorf("nothing to submit: provide --title or --file")
	}

	engine, err := openEngine()
	if err != nil {
		return err
	}
	defer func() { _ = engine.Close() }()

	ctx := context.Background()
	for _, sub := range subs {
		if err := engine.Store().AddSubmission(ctx, sub); err != nil {
			return fmt.Errorf("storing %q: %w", sub.Title, err)
		}
		fmt.Printf("✓ %s  %s\n", sub.ID, sub.Title)
	}

	return nil
}

func collectSubmissions() ([]model.Submission, error) {
	now := time.Now().UTC()

	if submitFile != "" {
		data, err := os.ReadFile(submitFile)
		if err != nil {
			return nil, fmt.Errorf("reading submissions file: %w", err)
		}

		var subs []model.Submission
		if err := yaml.Unmarshal(data, &subs); err != nil {
			return nil, fmt.Errorf("parsing submissions file: %w", err)
		}

		for i := range subs {
			normalizeSubmission(&subs[i], now)
			if err := checkSubmission(subs[i]); err != nil {
				return nil, fmt.Errorf("submission %d: %w", i+1, err)
			}
		}
		return subs, nil
	}

	if submitTitle == "" {
		return nil, nil
	}

	sub := model.Submission{
		Title:       submitTitle,
		Description: submitDescription,
		Status:      model.SubmissionStatus(submitStatus),
	}
	normalizeSubmission(&sub, now)
	if err := checkSubmission(sub); err != nil {
		return nil, err
	}
	return []model.Submission{sub}, nil
}

func normalizeSubmission(sub *model.Submission, now time.Time) {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.Status == "" {
		sub.Status = model.StatusIdea
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
}

func checkSubmission(sub model.Submission) error {
	if sub.Title == "" {
		return fmt.Errorf("title is required")
	}
	switch sub.Status {
	case model.StatusIdea, model.StatusDraft, model.StatusSubmitted:
		return nil
	default:
		return fmt.Errorf("unknown status %q", sub.Status)
	}
}
