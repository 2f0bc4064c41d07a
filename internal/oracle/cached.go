package oracle

import (
	"context"
	"time"

	"github.com/mkravets/arbiter/internal/cache"
)

// CachedOracle memoizes successful Infer results in a cache keyed by the
// prompt pair. Failures are never cached, so a recovered oracle is retried
// on the next identical request.
type CachedOracle struct {
	inner Oracle
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedOracle wraps an oracle with response caching. Wrapping a nil
// oracle returns nil so disabled stays disabled.
func NewCachedOracle(inner Oracle, c cache.Cache, ttl time.Duration) Oracle {
	if inner == nil {
		return nil
	}
	return &CachedOracle{inner: inner, cache: c, ttl: ttl}
}

// Name returns the wrapped provider's name.
func (o *CachedOracle) Name() string {
	return o.inner.Name()
}

// IsAvailable delegates to the wrapped provider.
func (o *CachedOracle) IsAvailable(ctx context.Context) bool {
	return o.inner.IsAvailable(ctx)
}

// Infer returns a cached response when one exists, otherwise calls through
// and caches the result.
func (o *CachedOracle) Infer(ctx context.Context, systemPrompt, userContent string) (string, error) {
	key := cache.Key(systemPrompt, userContent)

	if cached, found := o.cache.Get(key); found {
		return string(cached), nil
	}

	text, err := o.inner.Infer(ctx, systemPrompt, userContent)
	if err != nil {
		return "", err
	}

	_ = o.cache.Set(key, []byte(text), o.ttl)
	return text, nil
}
