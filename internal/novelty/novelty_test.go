package novelty

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/mkravets/arbiter/internal/embed"
	"github.com/mkravets/arbiter/internal/model"
)

// fixedOracle always returns the same vector, so any two texts embed as
// identical concepts.
type fixedOracle struct {
	response string
}

func (f *fixedOracle) Name() string { return "fixed" }

func (f *fixedOracle) Infer(ctx context.Context, systemPrompt, userContent string) (string, error) {
	return f.response, nil
}

func (f *fixedOracle) IsAvailable(ctx context.Context) bool { return true }

func newTestScorer(response string) *Scorer {
	return NewScorer(NewMemoryStore(), embed.NewGenerator(&fixedOracle{response: response}))
}

func TestScoreNovelty_FirstSubmissionIsFullyNovel(t *testing.T) {
	s := newTestScorer(`[0.5, 0.5, 0.5, 0.5, 0.5]`)

	res, err := s.ScoreNovelty(context.Background(), "sub-1", "a brand new idea")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if res.NoveltyScore != 100 {
		t.Errorf("Expected novelty 100 for first submission, got %d", res.NoveltyScore)
	}
	if res.ComparedCount != 1 {
		t.Errorf("Expected memory size 1 after insertion, got %d", res.ComparedCount)
	}
}

func TestScoreNovelty_DuplicateConceptScoresZero(t *testing.T) {
	s := newTestScorer(`[0.5, 0.5, 0.5, 0.5, 0.5]`)
	ctx := context.Background()

	if _, err := s.ScoreNovelty(ctx, "sub-1", "idea one"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	res, err := s.ScoreNovelty(ctx, "sub-2", "idea two, same concept")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if res.NoveltyScore != 0 {
		t.Errorf("Expected novelty 0 for identical vector, got %d", res.NoveltyScore)
	}
	if res.ComparedCount != 2 {
		t.Errorf("Expected memory size 2, got %d", res.ComparedCount)
	}
}

func TestScoreNovelty_RescoringIsIdempotent(t *testing.T) {
	s := newTestScorer(`[0.9, 0.1, 0.8, 0.2, 0.7]`)
	ctx := context.Background()

	first, err := s.ScoreNovelty(ctx, "sub-1", "same idea")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	second, err := s.ScoreNovelty(ctx, "sub-1", "same idea")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// The earlier record must not count against its own re-score.
	if second.NoveltyScore != 100 {
		t.Errorf("Expected re-score to exclude own record (novelty 100), got %d", second.NoveltyScore)
	}

	if first.ComparedCount != 1 || second.ComparedCount != 1 {
		t.Errorf("Expected memory to hold one record after re-score, got %d then %d",
			first.ComparedCount, second.ComparedCount)
	}
}

func TestScoreNovelty_ConcurrentDuplicatesAreSerialized(t *testing.T) {
	// Two near-duplicate submissions scored concurrently: the critical
	// section guarantees one of them sees the other and scores 0.
	for run := 0; run < 20; run++ {
		s := newTestScorer(`[0.5, 0.5, 0.5, 0.5, 0.5]`)
		ctx := context.Background()

		var wg sync.WaitGroup
		scores := make([]int, 2)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				res, err := s.ScoreNovelty(ctx, fmt.Sprintf("sub-%d", i), "duplicate idea")
				if err != nil {
					t.Errorf("ScoreNovelty: %v", err)
					return
				}
				scores[i] = res.NoveltyScore
			}(i)
		}
		wg.Wait()

		high, low := scores[0], scores[1]
		if low > high {
			high, low = low, high
		}
		if high != 100 || low != 0 {
			t.Fatalf("run %d: expected exactly one fully novel and one duplicate, got %v", run, scores)
		}
	}
}

func TestMemoryStore_InsertReplaces(t *testing.T) {
	s := NewMemoryStore()

	if err := s.Insert(recordFor("sub-1", 0.1)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := s.Insert(recordFor("sub-1", 0.9)); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	n, err := s.Len()
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected one record per submission ID, got %d", n)
	}

	recs, err := s.AllExcept("other")
	if err != nil {
		t.Fatalf("AllExcept: %v", err)
	}
	if len(recs) != 1 || recs[0].Vector[0] != 0.9 {
		t.Errorf("Expected replaced vector, got %+v", recs)
	}
}

func TestMemoryStore_AllExceptExcludesSelf(t *testing.T) {
	s := NewMemoryStore()
	_ = s.Insert(recordFor("sub-1", 0.1))
	_ = s.Insert(recordFor("sub-2", 0.2))
	_ = s.Insert(recordFor("sub-3", 0.3))

	recs, err := s.AllExcept("sub-2")
	if err != nil {
		t.Fatalf("AllExcept: %v", err)
	}

	if len(recs) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(recs))
	}
	for _, rec := range recs {
		if rec.SubmissionID == "sub-2" {
			t.Error("Expected sub-2 to be excluded")
		}
	}
}

func recordFor(id string, fill float64) model.MemoryRecord {
	rec := model.MemoryRecord{SubmissionID: id, Text: "text for " + id}
	for i := range rec.Vector {
		rec.Vector[i] = fill
	}
	return rec
}
