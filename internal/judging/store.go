// Package judging persists the human side of scoring: judge assignments,
// locked judge scorecards, AI reviews, and the blended leaderboard over
// both. SQLite is the system of record; the one-score-per-judge invariant
// is a unique constraint, so concurrent submissions race safely.
package judging

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/mkravets/arbiter/internal/model"
)

// Store manages the scoring database.
type Store struct {
	db      *sql.DB
	nowFunc func() time.Time
}

// NewStore opens or creates the SQLite database at path and ensures the
// schema exists.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, nowFunc: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// DB exposes the underlying handle so other stores (novelty vectors) can
// share the database file.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS submissions (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT,
			status TEXT NOT NULL,
			created_at TEXT NOT NULL,
			last_activity TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS reviews (
			id TEXT PRIMARY KEY,
			submission_id TEXT NOT NULL REFERENCES submissions(id),
			agent_label TEXT NOT NULL,
			overall_score INTEGER NOT NULL,
			novelty_score INTEGER NOT NULL,
			feasibility_score INTEGER NOT NULL,
			impact_score INTEGER NOT NULL,
			reasoning TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_submission ON reviews(submission_id)`,
		`CREATE TABLE IF NOT EXISTS judge_assignments (
			id TEXT PRIMARY KEY,
			judge_id TEXT NOT NULL,
			submission_id TEXT NOT NULL REFERENCES submissions(id),
			status TEXT NOT NULL,
			completed_at TEXT,
			UNIQUE(judge_id, submission_id)
		)`,
		`CREATE TABLE IF NOT EXISTS judge_scores (
			id TEXT PRIMARY KEY,
			judge_id TEXT NOT NULL,
			submission_id TEXT NOT NULL REFERENCES submissions(id),
			feedback TEXT,
			locked INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			UNIQUE(judge_id, submission_id)
		)`,
		`CREATE TABLE IF NOT EXISTS score_items (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			score_id TEXT NOT NULL REFERENCES judge_scores(id),
			rubric_item_id TEXT NOT NULL,
			score INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_score_items_score ON score_items(score_id)`,
		`CREATE TABLE IF NOT EXISTS leaderboard_cache (
			submission_id TEXT PRIMARY KEY REFERENCES submissions(id),
			ai_score REAL NOT NULL,
			human_score REAL NOT NULL,
			has_human INTEGER NOT NULL,
			blended_score INTEGER NOT NULL,
			updated_at TEXT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// AddSubmission records a submission from the seed file or intake form.
// Inserting an existing ID updates the mutable fields and keeps created_at.
func (s *Store) AddSubmission(ctx context.Context, sub model.Submission) error {
	if sub.ID == "" {
		return &ValidationError{Field: "id", Reason: "empty"}
	}
	if sub.Title == "" {
		return &ValidationError{Field: "title", Reason: "empty"}
	}

	createdAt := sub.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.nowFunc().UTC()
	}

	var lastActivity any
	if sub.LastActivity != nil {
		lastActivity = sub.LastActivity.UTC().Format(time.RFC3339Nano)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO submissions (id, title, description, status, created_at, last_activity)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, description=excluded.description,
			status=excluded.status, last_activity=excluded.last_activity`,
		sub.ID, sub.Title, sub.Description, string(sub.Status),
		createdAt.UTC().Format(time.RFC3339Nano), lastActivity,
	)
	if err != nil {
		return fmt.Errorf("inserting submission: %w", err)
	}
	return nil
}

// GetSubmission loads one submission by ID.
func (s *Store) GetSubmission(ctx context.Context, id string) (model.Submission, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, status, created_at, last_activity
		 FROM submissions WHERE id = ?`, id)

	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Submission{}, fmt.Errorf("submission %s: %w", id, ErrNotFound)
	}
	return sub, err
}

// ListSubmissions returns all submissions in creation order.
func (s *Store) ListSubmissions(ctx context.Context) ([]model.Submission, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, status, created_at, last_activity
		 FROM submissions ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("querying submissions: %w", err)
	}
	defer rows.Close()

	var subs []model.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (model.Submission, error) {
	var sub model.Submission
	var status, createdAt string
	var lastActivity sql.NullString

	if err := row.Scan(&sub.ID, &sub.Title, &sub.Description, &status, &createdAt, &lastActivity); err != nil {
		return model.Submission{}, err
	}

	sub.Status = model.SubmissionStatus(status)

	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return model.Submission{}, fmt.Errorf("parsing created_at for %s: %w", sub.ID, err)
	}
	sub.CreatedAt = t

	if lastActivity.Valid {
		la, err := time.Parse(time.RFC3339Nano, lastActivity.String)
		if err != nil {
			return model.Submission{}, fmt.Errorf("parsing last_activity for %s: %w", sub.ID, err)
		}
		sub.LastActivity = &la
	}
	return sub, nil
}

// AddReview persists an AI review. Reviews accumulate; there is no
// uniqueness constraint per submission.
func (s *Store) AddReview(ctx context.Context, r model.Review) error {
	if err := r.Validate(); err != nil {
		return &ValidationError{Field: "review", Reason: err.Error()}
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reviews (id, submission_id, agent_label, overall_score,
			novelty_score, feasibility_score, impact_score, reasoning, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.SubmissionID, r.AgentLabel, r.OverallScore,
		r.NoveltyScore, r.FeasibilityScore, r.ImpactScore, r.Reasoning,
		r.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting review: %w", err)
	}

	// New reviews move the AI half of the blend.
	return s.RecalculateSubmission(ctx, r.SubmissionID)
}

// ReviewsFor returns all reviews for a submission, oldest first.
func (s *Store) ReviewsFor(ctx context.Context, submissionID string) ([]model.Review, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, submission_id, agent_label, overall_score, novelty_score,
			feasibility_score, impact_score, reasoning, created_at
		 FROM reviews WHERE submission_id = ? ORDER BY created_at, id`, submissionID)
	if err != nil {
		return nil, fmt.Errorf("querying reviews: %w", err)
	}
	defer rows.Close()

	var reviews []model.Review
	for rows.Next() {
		var r model.Review
		var createdAt string
		if err := rows.Scan(&r.ID, &r.SubmissionID, &r.AgentLabel, &r.OverallScore,
			&r.NoveltyScore, &r.FeasibilityScore, &r.ImpactScore, &r.Reasoning, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning review: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing review created_at: %w", err)
		}
		r.CreatedAt = t
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// AssignJudge creates a PENDING assignment for the pair. A second
// assignment for the same pair is rejected.
func (s *Store) AssignJudge(ctx context.Context, judgeID, submissionID string) (model.JudgeAssignment, error) {
	if judgeID == "" {
		return model.JudgeAssignment{}, &ValidationError{Field: "judge_id", Reason: "empty"}
	}
	if _, err := s.GetSubmission(ctx, submissionID); err != nil {
		return model.JudgeAssignment{}, err
	}

	a := model.JudgeAssignment{
		ID:           uuid.NewString(),
		JudgeID:      judgeID,
		SubmissionID: submissionID,
		Status:       model.AssignmentPending,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO judge_assignments (id, judge_id, submission_id, status) VALUES (?, ?, ?, ?)`,
		a.ID, a.JudgeID, a.SubmissionID, string(a.Status),
	)
	if isUniqueViolation(err) {
		return model.JudgeAssignment{}, ErrAlreadyAssigned
	}
	if err != nil {
		return model.JudgeAssignment{}, fmt.Errorf("inserting assignment: %w", err)
	}
	return a, nil
}

// PendingAssignments lists a judge's open assignments.
func (s *Store) PendingAssignments(ctx context.Context, judgeID string) ([]model.JudgeAssignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, judge_id, submission_id, status, completed_at
		 FROM judge_assignments WHERE judge_id = ? AND status = ?`,
		judgeID, string(model.AssignmentPending))
	if err != nil {
		return nil, fmt.Errorf("querying assignments: %w", err)
	}
	defer rows.Close()

	var out []model.JudgeAssignment
	for rows.Next() {
		var a model.JudgeAssignment
		var status string
		var completedAt sql.NullString
		if err := rows.Scan(&a.ID, &a.JudgeID, &a.SubmissionID, &status, &completedAt); err != nil {
			return nil, fmt.Errorf("scanning assignment: %w", err)
		}
		a.Status = model.AssignmentStatus(status)
		out = append(out, a)
	}
	return out, rows.Err()
}

// SubmitScore records a judge's locked scorecard for a submission. The
// operation is atomic: the score, its rubric items, and the assignment's
// PENDING to COMPLETED transition land together or not at all. Fails with
// ErrNotAssigned without a pending assignment, ErrDuplicateScore if a score
// for the pair already exists, or a ValidationError before any write.
func (s *Store) SubmitScore(ctx context.Context, judgeID, submissionID string, items []model.RubricItemScore, feedback string) (model.JudgeScore, error) {
	if len(items) == 0 {
		return model.JudgeScore{}, &ValidationError{Field: "items", Reason: "empty"}
	}
	for i, item := range items {
		if err := item.Validate(); err != nil {
			return model.JudgeScore{}, &ValidationError{Field: fmt.Sprintf("items[%d]", i), Reason: err.Error()}
		}
	}

	now := s.nowFunc().UTC()
	score := model.JudgeScore{
		ID:           uuid.NewString(),
		JudgeID:      judgeID,
		SubmissionID: submissionID,
		Items:        items,
		Feedback:     feedback,
		Locked:       true,
		CreatedAt:    now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.JudgeScore{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var assignmentID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM judge_assignments
		 WHERE judge_id = ? AND submission_id = ? AND status = ?`,
		judgeID, submissionID, string(model.AssignmentPending),
	).Scan(&assignmentID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.JudgeScore{}, ErrNotAssigned
	}
	if err != nil {
		return model.JudgeScore{}, fmt.Errorf("looking up assignment: %w", err)
	}

	// The unique constraint is the arbiter under concurrency: of two racing
	// inserts for the same pair exactly one commits.
	_, err = tx.ExecContext(ctx,
		`INSERT INTO judge_scores (id, judge_id, submission_id, feedback, locked, created_at)
		 VALUES (?, ?, ?, ?, 1, ?)`,
		score.ID, judgeID, submissionID, feedback, now.Format(time.RFC3339Nano),
	)
	if isUniqueViolation(err) {
		return model.JudgeScore{}, ErrDuplicateScore
	}
	if err != nil {
		return model.JudgeScore{}, fmt.Errorf("inserting score: %w", err)
	}

	for _, item := range items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO score_items (score_id, rubric_item_id, score) VALUES (?, ?, ?)`,
			score.ID, item.RubricItemID, item.Score,
		); err != nil {
			return model.JudgeScore{}, fmt.Errorf("inserting score item: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE judge_assignments SET status = ?, completed_at = ? WHERE id = ?`,
		string(model.AssignmentCompleted), now.Format(time.RFC3339Nano), assignmentID,
	); err != nil {
		return model.JudgeScore{}, fmt.Errorf("completing assignment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return model.JudgeScore{}, ErrDuplicateScore
		}
		return model.JudgeScore{}, fmt.Errorf("committing score: %w", err)
	}

	// Last write wins; safe to re-run, and the leaderboard itself is
	// recomputed from source data anyway.
	if err := s.RecalculateSubmission(ctx, submissionID); err != nil {
		return score, fmt.Errorf("recalculating leaderboard: %w", err)
	}

	return score, nil
}

// ScoresFor returns all judge scorecards for a submission, items included.
func (s *Store) ScoresFor(ctx context.Context, submissionID string) ([]model.JudgeScore, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, judge_id, submission_id, feedback, locked, created_at
		 FROM judge_scores WHERE submission_id = ? ORDER BY created_at, id`, submissionID)
	if err != nil {
		return nil, fmt.Errorf("querying scores: %w", err)
	}
	defer rows.Close()

	var scores []model.JudgeScore
	for rows.Next() {
		var sc model.JudgeScore
		var locked int
		var createdAt string
		if err := rows.Scan(&sc.ID, &sc.JudgeID, &sc.SubmissionID, &sc.Feedback, &locked, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning score: %w", err)
		}
		sc.Locked = locked != 0
		t, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing score created_at: %w", err)
		}
		sc.CreatedAt = t
		scores = append(scores, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range scores {
		items, err := s.itemsFor(ctx, scores[i].ID)
		if err != nil {
			return nil, err
		}
		scores[i].Items = items
	}
	return scores, nil
}

func (s *Store) itemsFor(ctx context.Context, scoreID string) ([]model.RubricItemScore, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT rubric_item_id, score FROM score_items WHERE score_id = ? ORDER BY rowid`, scoreID)
	if err != nil {
		return nil, fmt.Errorf("querying score items: %w", err)
	}
	defer rows.Close()

	var items []model.RubricItemScore
	for rows.Next() {
		var item model.RubricItemScore
		if err := rows.Scan(&item.RubricItemID, &item.Score); err != nil {
			return nil, fmt.Errorf("scanning score item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// RecalculateSubmission refreshes the cached leaderboard entry for one
// submission from the source rows. Idempotent, last write wins.
func (s *Store) RecalculateSubmission(ctx context.Context, submissionID string) error {
	sub, err := s.GetSubmission(ctx, submissionID)
	if err != nil {
		return err
	}

	reviews, err := s.ReviewsFor(ctx, submissionID)
	if err != nil {
		return err
	}
	scores, err := s.ScoresFor(ctx, submissionID)
	if err != nil {
		return err
	}

	entry := blend(sub, reviews, scores)

	hasHuman := 0
	if entry.HasHuman {
		hasHuman = 1
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO leaderboard_cache (submission_id, ai_score, human_score,
			has_human, blended_score, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(submission_id) DO UPDATE SET
			ai_score=excluded.ai_score, human_score=excluded.human_score,
			has_human=excluded.has_human, blended_score=excluded.blended_score,
			updated_at=excluded.updated_at`,
		submissionID, entry.AIScore, entry.HumanScore, hasHuman,
		entry.BlendedScore, s.nowFunc().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("updating leaderboard cache: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a SQLite unique constraint
// failure.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
