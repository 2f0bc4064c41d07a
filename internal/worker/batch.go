package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mkravets/arbiter/internal/model"
)

// Reviewer runs the review pipeline for one submission.
type Reviewer interface {
	ReviewSubmission(ctx context.Context, submissionID string) (model.Review, error)
}

// ReviewJob reviews a single submission.
type ReviewJob struct {
	SubmissionID string
	Reviewer     Reviewer
	Limiter      *OracleLimiter // optional
}

// Execute runs the review, honoring the shared rate limit.
func (j *ReviewJob) Execute(ctx context.Context) Result {
	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx); err != nil {
			return &ReviewResult{SubmissionID: j.SubmissionID, Err: err}
		}
	}

	review, err := j.Reviewer.ReviewSubmission(ctx, j.SubmissionID)
	return &ReviewResult{SubmissionID: j.SubmissionID, Review: review, Err: err}
}

// ReviewResult is the outcome of one review job.
type ReviewResult struct {
	SubmissionID string
	Review       model.Review
	Err          error
}

// GetError returns the job error, if any.
func (r *ReviewResult) GetError() error {
	return r.Err
}

// BatchReviewer reviews many submissions concurrently.
type BatchReviewer struct {
	reviewer    Reviewer
	concurrency int
	limiter     *OracleLimiter
}

// NewBatchReviewer creates a batch reviewer with bounded concurrency and a
// shared oracle rate limit.
func NewBatchReviewer(reviewer Reviewer, concurrency int, limiter *OracleLimiter) *BatchReviewer {
	return &BatchReviewer{
		reviewer:    reviewer,
		concurrency: concurrency,
		limiter:     limiter,
	}
}

// Process reviews the given submission IDs concurrently and returns one
// result per ID, in completion order.
func (b *BatchReviewer) Process(ctx context.Context, ids []string) []*ReviewResult {
	if len(ids) == 0 {
		return []*ReviewResult{}
	}

	pool := NewPool(b.concurrency, len(ids))
	pool.Start()

	for _, id := range ids {
		pool.Submit(&ReviewJob{
			SubmissionID: id,
			Reviewer:     b.reviewer,
			Limiter:      b.limiter,
		})
	}

	results := pool.Wait()

	out := make([]*ReviewResult, len(results))
	for i, result := range results {
		out[i] = result.(*ReviewResult)
	}
	return out
}

// ProcessFile reads submission IDs from a file (one per line, # comments
// and blanks skipped, duplicates dropped) and reviews them concurrently.
func (b *BatchReviewer) ProcessFile(ctx context.Context, path string) ([]*ReviewResult, error) {
	ids, err := ReadIDsFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("read submission IDs: %w", err)
	}
	return b.Process(ctx, ids), nil
}

// ReadIDsFromFile reads submission IDs from a file, one per line.
func ReadIDsFromFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var ids []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			ids = append(ids, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return ids, nil
}
