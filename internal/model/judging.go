package model

import (
	"fmt"
	"time"
)

// RubricItem is a single weighted judging criterion. The engine treats the
// identity as an opaque key; weight and max points are interpreted by the
// rubric's owner, not here.
type RubricItem struct {
	ID        string  `json:"id" yaml:"id"`
	Label     string  `json:"label" yaml:"label"`
	Weight    float64 `json:"weight" yaml:"weight"`
	MaxPoints int     `json:"max_points" yaml:"max_points"`
}

// RubricItemScore is one judge's score against one rubric item.
type RubricItemScore struct {
	RubricItemID string `json:"rubric_item_id" yaml:"rubric_item_id"`
	Score        int    `json:"score" yaml:"score"`
}

// Validate rejects malformed item scores before any write occurs.
func (s RubricItemScore) Validate() error {
	if s.RubricItemID == "" {
		return fmt.Errorf("rubric_item_id: empty")
	}
	if s.Score < 0 {
		return fmt.Errorf("score: %d is negative", s.Score)
	}
	return nil
}

// JudgeScore is one judge's complete scorecard for one submission. Exactly
// one exists per (judge, submission) pair; it is locked on creation and
// never modified.
type JudgeScore struct {
	ID           string            `json:"id"`
	JudgeID      string            `json:"judge_id"`
	SubmissionID string            `json:"submission_id"`
	Items        []RubricItemScore `json:"items"`
	Feedback     string            `json:"feedback"`
	Locked       bool              `json:"locked"`
	CreatedAt    time.Time         `json:"created_at"`
}

// Total sums the item scores on the card.
func (s JudgeScore) Total() int {
	total := 0
	for _, item := range s.Items {
		total += item.Score
	}
	return total
}

// AssignmentStatus tracks the lifecycle of a judge assignment.
type AssignmentStatus string

const (
	AssignmentPending   AssignmentStatus = "PENDING"
	AssignmentCompleted AssignmentStatus = "COMPLETED"
)

// JudgeAssignment records that a judge is expected to score a submission.
// Status moves PENDING to COMPLETED exactly once, when the score lands.
type JudgeAssignment struct {
	ID           string           `json:"id"`
	JudgeID      string           `json:"judge_id"`
	SubmissionID string           `json:"submission_id"`
	Status       AssignmentStatus `json:"status"`
	CompletedAt  *time.Time       `json:"completed_at,omitempty"`
}

// LeaderboardEntry is a derived ranking row. Rank is a view over the current
// review and judge-score sets, never an authoritative stored field.
type LeaderboardEntry struct {
	SubmissionID string  `json:"submission_id"`
	Title        string  `json:"title"`
	AIScore      float64 `json:"ai_score"`
	HumanScore   float64 `json:"human_score"`
	HasHuman     bool    `json:"has_human"`
	BlendedScore int     `json:"blended_score"`
	Rank         int     `json:"rank"`
}
