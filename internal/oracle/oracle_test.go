package oracle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mkravets/arbiter/internal/cache"
)

// MockOracle implements the Oracle interface for testing.
type MockOracle struct {
	name      string
	available bool
	response  string
	err       error
	calls     int
}

func (m *MockOracle) Name() string {
	return m.name
}

func (m *MockOracle) Infer(ctx context.Context, systemPrompt, userContent string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *MockOracle) IsAvailable(ctx context.Context) bool {
	return m.available
}

func TestNew_Disabled(t *testing.T) {
	o, err := New(Config{Provider: ""})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if o != nil {
		t.Error("Expected nil oracle when no provider is configured")
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(Config{Provider: "carrier-pigeon"})
	if err == nil {
		t.Fatal("Expected error for unknown provider")
	}
}

func TestNew_MissingAPIKey(t *testing.T) {
	_, err := New(Config{Provider: "openai"})
	if err == nil {
		t.Fatal("Expected error when API key is missing")
	}
}

func TestCachedOracle_NilInner(t *testing.T) {
	c := cache.NewMemoryCache(time.Minute, time.Minute)
	if wrapped := NewCachedOracle(nil, c, time.Minute); wrapped != nil {
		t.Error("Expected nil when wrapping a nil oracle")
	}
}

func TestCachedOracle_CachesSuccess(t *testing.T) {
	mock := &MockOracle{name: "mock", available: true, response: `{"ok":true}`}
	c := cache.NewMemoryCache(time.Minute, time.Minute)
	wrapped := NewCachedOracle(mock, c, time.Minute)

	for i := 0; i < 3; i++ {
		text, err := wrapped.Infer(context.Background(), "system", "user")
		if err != nil {
			t.Fatalf("Infer %d: expected no error, got %v", i, err)
		}
		if text != `{"ok":true}` {
			t.Errorf("Infer %d: unexpected response %q", i, text)
		}
	}

	if mock.calls != 1 {
		t.Errorf("Expected 1 call to inner oracle, got %d", mock.calls)
	}
}

func TestCachedOracle_DoesNotCacheFailure(t *testing.T) {
	mock := &MockOracle{name: "mock", err: errors.New("rate limited")}
	c := cache.NewMemoryCache(time.Minute, time.Minute)
	wrapped := NewCachedOracle(mock, c, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := wrapped.Infer(context.Background(), "system", "user"); err == nil {
			t.Fatalf("Infer %d: expected error", i)
		}
	}

	if mock.calls != 2 {
		t.Errorf("Expected 2 calls to inner oracle (failures are not cached), got %d", mock.calls)
	}
}

func TestCacheKey_DistinguishesPrompts(t *testing.T) {
	a := cache.Key("system", "user")
	b := cache.Key("system", "other user")
	c := cache.Key("systemu", "ser")

	if a == b {
		t.Error("Expected different keys for different user content")
	}
	if a == c {
		t.Error("Expected boundary between system and user content to affect the key")
	}
}
