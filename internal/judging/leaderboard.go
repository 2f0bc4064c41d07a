package judging

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/mkravets/arbiter/internal/model"
)

const (
	aiWeight    = 0.3
	humanWeight = 0.7
)

// Leaderboard returns the ranked leaderboard over all submissions. Entries
// come from the cache maintained by AddReview and SubmitScore; submissions
// without a cache row are recomputed from the source rows. Rank is always
// assigned at read time. Pure read-side aggregation: it takes no locks and
// may run concurrently with score submission.
func (s *Store) Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	subs, err := s.ListSubmissions(ctx)
	if err != nil {
		return nil, err
	}

	cached, err := s.cachedEntries(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]model.LeaderboardEntry, 0, len(subs))
	for _, sub := range subs {
		if entry, ok := cached[sub.ID]; ok {
			entry.Title = sub.Title
			entries = append(entries, entry)
			continue
		}

		reviews, err := s.ReviewsFor(ctx, sub.ID)
		if err != nil {
			return nil, err
		}
		scores, err := s.ScoresFor(ctx, sub.ID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, blend(sub, reviews, scores))
	}

	return Rank(subs, entries), nil
}

// cachedEntries loads the leaderboard cache keyed by submission ID.
func (s *Store) cachedEntries(ctx context.Context) (map[string]model.LeaderboardEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT submission_id, ai_score, human_score, has_human, blended_score
		 FROM leaderboard_cache`)
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard cache: %w", err)
	}
	defer rows.Close()

	cached := make(map[string]model.LeaderboardEntry)
	for rows.Next() {
		var entry model.LeaderboardEntry
		var hasHuman int
		if err := rows.Scan(&entry.SubmissionID, &entry.AIScore,
			&entry.HumanScore, &hasHuman, &entry.BlendedScore); err != nil {
			return nil, fmt.Errorf("scanning leaderboard cache: %w", err)
		}
		entry.HasHuman = hasHuman != 0
		cached[entry.SubmissionID] = entry
	}
	return cached, rows.Err()
}

// blend combines AI reviews and judge scorecards into one entry.
//
// aiScore is the mean overall review score, 0 with no reviews. humanScore
// is the mean of per-judge rubric totals, undefined with no scorecards.
// With a humanScore the blend is 30% AI / 70% human; without one the AI
// score stands alone.
func blend(sub model.Submission, reviews []model.Review, scores []model.JudgeScore) model.LeaderboardEntry {
	aiScore := 0.0
	if len(reviews) > 0 {
		total := 0
		for _, r := range reviews {
			total += r.OverallScore
		}
		aiScore = float64(total) / float64(len(reviews))
	}

	entry := model.LeaderboardEntry{
		SubmissionID: sub.ID,
		Title:        sub.Title,
		AIScore:      aiScore,
	}

	if len(scores) > 0 {
		total := 0
		for _, sc := range scores {
			total += sc.Total()
		}
		entry.HumanScore = float64(total) / float64(len(scores))
		entry.HasHuman = true
		entry.BlendedScore = int(math.Round(aiScore*aiWeight + entry.HumanScore*humanWeight))
	} else {
		entry.BlendedScore = int(math.Round(aiScore))
	}

	return entry
}

// Rank orders entries descending by blended score. Ties break by submission
// creation order, earlier first, so identical inputs always produce the
// same ranking.
func Rank(subs []model.Submission, entries []model.LeaderboardEntry) []model.LeaderboardEntry {
	createdOrder := make(map[string]int, len(subs))
	for i, sub := range subs {
		createdOrder[sub.ID] = i
	}

	ranked := make([]model.LeaderboardEntry, len(entries))
	copy(ranked, entries)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].BlendedScore != ranked[j].BlendedScore {
			return ranked[i].BlendedScore > ranked[j].BlendedScore
		}
		return createdOrder[ranked[i].SubmissionID] < createdOrder[ranked[j].SubmissionID]
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
