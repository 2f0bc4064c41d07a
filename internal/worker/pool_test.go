package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingJob struct {
	counter *int64
	err     error
}

func (j *countingJob) Execute(ctx context.Context) Result {
	atomic.AddInt64(j.counter, 1)
	return &ReviewResult{Err: j.err}
}

type slowJob struct {
	started *int64
}

func (j *slowJob) Execute(ctx context.Context) Result {
	atomic.AddInt64(j.started, 1)
	select {
	case <-ctx.Done():
		return &ReviewResult{Err: ctx.Err()}
	case <-time.After(10 * time.Second):
		return &ReviewResult{}
	}
}

func TestPool_ExecutesAllJobs(t *testing.T) {
	var counter int64
	pool := NewPool(3, 10)
	pool.Start()

	for i := 0; i < 10; i++ {
		pool.Submit(&countingJob{counter: &counter})
	}

	results := pool.Wait()

	if got := atomic.LoadInt64(&counter); got != 10 {
		t.Errorf("Expected 10 executions, got %d", got)
	}
	if len(results) != 10 {
		t.Errorf("Expected 10 results, got %d", len(results))
	}
}

func TestPool_LargeBatchDoesNotBlock(t *testing.T) {
	var counter int64
	const jobs = 200

	pool := NewPool(2, jobs)
	pool.Start()

	// Submitting far more jobs than workers must not deadlock even though
	// nobody reads results until Wait.
	done := make(chan []Result)
	go func() {
		for i := 0; i < jobs; i++ {
			pool.Submit(&countingJob{counter: &counter})
		}
		done <- pool.Wait()
	}()

	select {
	case results := <-done:
		if len(results) != jobs {
			t.Errorf("Expected %d results, got %d", jobs, len(results))
		}
	case <-time.After(30 * time.Second):
		t.Fatal("Pool deadlocked on large batch")
	}
}

func TestPool_PropagatesErrors(t *testing.T) {
	var counter int64
	pool := NewPool(2, 4)
	pool.Start()

	pool.Submit(&countingJob{counter: &counter})
	pool.Submit(&countingJob{counter: &counter, err: errors.New("boom")})

	results := pool.Wait()

	var failed int
	for _, r := range results {
		if r.GetError() != nil {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("Expected 1 failed result, got %d", failed)
	}
}

func TestPool_ZeroWorkersDefaultsToOne(t *testing.T) {
	var counter int64
	pool := NewPool(0, 2)
	pool.Start()
	pool.Submit(&countingJob{counter: &counter})

	results := pool.Wait()
	if len(results) != 1 {
		t.Errorf("Expected 1 result, got %d", len(results))
	}
}

func TestPool_ShutdownCancelsRunningJobs(t *testing.T) {
	var started int64
	pool := NewPool(2, 4)
	pool.Start()

	pool.Submit(&slowJob{started: &started})
	pool.Submit(&slowJob{started: &started})

	// Let the workers pick the jobs up.
	deadline := time.Now().Add(5 * time.Second)
	for atomic.LoadInt64(&started) < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	finished := make(chan struct{})
	go func() {
		pool.Shutdown()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("Shutdown did not cancel running jobs")
	}
}

func TestOracleLimiter_AllowRespectsBurst(t *testing.T) {
	limiter := NewOracleLimiter(1, 2)

	if !limiter.Allow() {
		t.Error("First call within burst should be allowed")
	}
	if !limiter.Allow() {
		t.Error("Second call within burst should be allowed")
	}
	if limiter.Allow() {
		t.Error("Third call should exceed the burst")
	}
}

func TestOracleLimiter_WaitHonorsContext(t *testing.T) {
	limiter := NewOracleLimiter(0.001, 1)
	limiter.Allow() // drain the burst

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx); err == nil {
		t.Error("Expected context deadline error from Wait")
	}
}
