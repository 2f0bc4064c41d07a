// Demo program that runs the full scoring pipeline on sample submissions.
// It uses no oracle, so every result comes from the deterministic fallbacks.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mkravets/arbiter/internal/model"
	"github.com/mkravets/arbiter/internal/pipeline"
)

func main() {
	fmt.Println("=== Arbiter Pipeline Demo (no oracle) ===")
	fmt.Println()

	dir, err := os.MkdirTemp("", "arbiter-demo")
	if err != nil {
		fmt.Fprintf(os.Stderr, "temp dir: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	cfg := model.DefaultConfig()
	cfg.Store.Path = filepath.Join(dir, "demo.db")

	engine, err := pipeline.NewEngine(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = engine.Close() }()

	ctx := context.Background()
	now := time.Now().UTC()
	stale := now.Add(-8 * 24 * time.Hour)

	subs := []model.Submission{
		{ID: "demo-1", Title: "Neural Garden", Description: "An AI system that composes generative soundscapes from greenhouse sensor data.", Status: model.StatusSubmitted, CreatedAt: now, LastActivity: &now},
		{ID: "demo-2", Title: "Sound Garden", Description: "An AI system that composes generative soundscapes from greenhouse sensor data.", Status: model.StatusIdea, CreatedAt: now.Add(time.Minute), LastActivity: &stale},
	}

	for _, sub := range subs {
		if err := engine.Store().AddSubmission(ctx, sub); err != nil {
			fmt.Fprintf(os.Stderr, "store: %v\n", err)
			os.Exit(1)
		}
	}

	// Near-identical descriptions: the first review scores high novelty,
	// the second collapses to a duplicate.
	for _, sub := range subs {
		r, err := engine.ReviewSubmission(ctx, sub.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "review: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Review %s (%s)\n", sub.ID, sub.Title)
		fmt.Printf("  novelty %d/100, overall %d/100\n\n", r.NoveltyScore, r.OverallScore)
	}

	fmt.Println("Panel debate for demo-1:")
	turns, err := engine.Debate(ctx, "demo-1")
	if err != nil {
		fmt.Fprintf(os.Stderr, "debate: %v\n", err)
		os.Exit(1)
	}
	for i, turn := range turns {
		fmt.Printf("  %d. %s [%s]: %s\n", i+1, turn.Speaker, turn.Sentiment, turn.Content)
	}
	fmt.Println()

	deadline := now.Add(3 * 24 * time.Hour)
	for _, sub := range subs {
		assessment, err := engine.Risk(ctx, sub.ID, deadline)
		if err != nil {
			fmt.Fprintf(os.Stderr, "risk: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Risk %s: %d%% (%s)\n", sub.ID, assessment.Probability, assessment.RiskLevel)
	}
	fmt.Println()

	// One human scorecard to show blending.
	if _, err := engine.Store().AssignJudge(ctx, "judge-1", "demo-1"); err != nil {
		fmt.Fprintf(os.Stderr, "assign: %v\n", err)
		os.Exit(1)
	}
	items := []model.RubricItemScore{
		{RubricItemID: "technical", Score: 30},
		{RubricItemID: "design", Score: 25},
		{RubricItemID: "impact", Score: 30},
	}
	if _, err := engine.Store().SubmitScore(ctx, "judge-1", "demo-1", items, "Polished demo."); err != nil {
		fmt.Fprintf(os.Stderr, "score: %v\n", err)
		os.Exit(1)
	}

	entries, err := engine.Store().Leaderboard(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "leaderboard: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Leaderboard:")
	for _, e := range entries {
		fmt.Printf("  #%d %s blended=%d ai=%.1f human=%.1f\n",
			e.Rank, e.Title, e.BlendedScore, e.AIScore, e.HumanScore)
	}
}
