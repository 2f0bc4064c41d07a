package novelty

import (
	"context"
	"math"
	"sync"

	"github.com/mkravets/arbiter/internal/embed"
	"github.com/mkravets/arbiter/internal/model"
)

// Result is the outcome of a novelty check.
type Result struct {
	// NoveltyScore is 0-100: the inverse of the highest cosine similarity
	// against prior submissions. The first submission ever scored gets 100.
	NoveltyScore int `json:"novelty_score"`

	// ComparedCount is the memory size after this submission was recorded.
	ComparedCount int `json:"compared_count"`
}

// Scorer computes novelty scores against a vector memory.
//
// ScoreNovelty is serialized per scorer: the compare-then-append sequence is
// one critical section. Without it, two near-duplicate submissions scored
// concurrently would each compare against a snapshot that excludes the
// other and both come out maximally novel.
type Scorer struct {
	mu        sync.Mutex
	store     Store
	generator *embed.Generator
}

// NewScorer creates a scorer over the given store and embedding generator.
func NewScorer(store Store, generator *embed.Generator) *Scorer {
	return &Scorer{
		store:     store,
		generator: generator,
	}
}

// ScoreNovelty embeds text, compares the vector against every other
// submission in memory, records it, and returns the score. Re-scoring the
// same submission ID excludes its own earlier record from the comparison
// and replaces that record instead of duplicating it.
func (s *Scorer) ScoreNovelty(ctx context.Context, submissionID, text string) (Result, error) {
	v := s.generator.Embed(ctx, text)

	s.mu.Lock()
	defer s.mu.Unlock()

	others, err := s.store.AllExcept(submissionID)
	if err != nil {
		return Result{}, err
	}

	maxSim := 0.0
	for _, rec := range others {
		if sim := v.CosineSimilarity(rec.Vector); sim > maxSim {
			maxSim = sim
		}
	}

	if err := s.store.Insert(model.MemoryRecord{
		SubmissionID: submissionID,
		Vector:       v,
		Text:         text,
	}); err != nil {
		return Result{}, err
	}

	size, err := s.store.Len()
	if err != nil {
		return Result{}, err
	}

	return Result{
		NoveltyScore:  scoreFromSimilarity(maxSim),
		ComparedCount: size,
	}, nil
}

// scoreFromSimilarity maps max similarity to the 0-100 novelty scale.
func scoreFromSimilarity(maxSim float64) int {
	score := (1 - maxSim) * 100
	score = math.Max(0, math.Min(100, score))
	return int(math.Round(score))
}
