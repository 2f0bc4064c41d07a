// Package pipeline wires the scoring engine together: submission store,
// oracle, embedding, novelty memory, review synthesis, debate, and risk.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mkravets/arbiter/internal/cache"
	"github.com/mkravets/arbiter/internal/debate"
	"github.com/mkravets/arbiter/internal/embed"
	"github.com/mkravets/arbiter/internal/judging"
	"github.com/mkravets/arbiter/internal/model"
	"github.com/mkravets/arbiter/internal/novelty"
	"github.com/mkravets/arbiter/internal/oracle"
	"github.com/mkravets/arbiter/internal/review"
	"github.com/mkravets/arbiter/internal/risk"
)

// Engine is the assembled scoring engine.
type Engine struct {
	store       *judging.Store
	synthesizer *review.Synthesizer
	simulator   *debate.Simulator
	predictor   *risk.Predictor
	config      *model.Config
}

// NewEngine opens the submission store and assembles the review pipeline
// from configuration. A misconfigured oracle is downgraded to disabled with
// a warning rather than failing startup; every component has a fallback.
func NewEngine(cfg *model.Config) (*Engine, error) {
	store, err := judging.NewStore(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	o, err := oracle.New(oracle.ConfigFromModel(cfg.Oracle))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: oracle disabled: %v\n", err)
		o = nil
	}

	if o != nil && cfg.Cache.Enabled {
		ttl := time.Duration(cfg.Cache.TTLMinutes) * time.Minute
		var c cache.Cache
		if cfg.Cache.Dir != "" {
			c = cache.NewLayeredCache(ttl, cfg.Cache.Dir, ttl)
		} else {
			c = cache.NewMemoryCache(ttl, 2*ttl)
		}
		o = oracle.NewCachedOracle(o, c, ttl)
	}

	vectors, err := novelty.NewSQLiteStore(store.DB())
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("opening vector memory: %w", err)
	}

	scorer := novelty.NewScorer(vectors, embed.NewGenerator(o))

	return &Engine{
		store:       store,
		synthesizer: review.NewSynthesizer(o, scorer),
		simulator:   debate.NewSimulator(o),
		predictor:   risk.NewPredictor(),
		config:      cfg,
	}, nil
}

// Store exposes the submission store for judging and leaderboard commands.
func (e *Engine) Store() *judging.Store {
	return e.store
}

// Close releases the store.
func (e *Engine) Close() error {
	return e.store.Close()
}

// ReviewSubmission runs the full review pipeline for one submission: embed,
// score novelty, synthesize the critique, persist the review.
func (e *Engine) ReviewSubmission(ctx context.Context, submissionID string) (model.Review, error) {
	sub, err := e.store.GetSubmission(ctx, submissionID)
	if err != nil {
		return model.Review{}, err
	}

	r, err := e.synthesizer.Synthesize(ctx, sub)
	if err != nil {
		return model.Review{}, fmt.Errorf("synthesizing review: %w", err)
	}

	if err := e.store.AddReview(ctx, r); err != nil {
		return model.Review{}, fmt.Errorf("persisting review: %w", err)
	}

	return r, nil
}

// Debate generates a fresh panel debate over a stored submission.
func (e *Engine) Debate(ctx context.Context, submissionID string) ([]model.DebateTurn, error) {
	sub, err := e.store.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	return e.simulator.Generate(ctx, sub.Description), nil
}

// Risk assesses failure risk for a stored submission against a deadline.
func (e *Engine) Risk(ctx context.Context, submissionID string, deadline time.Time) (model.RiskAssessment, error) {
	sub, err := e.store.GetSubmission(ctx, submissionID)
	if err != nil {
		return model.RiskAssessment{}, err
	}
	return e.predictor.Predict(sub.LastActivity, sub.Status, deadline), nil
}
