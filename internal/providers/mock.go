package providers

import (
	"context"
	"sync/atomic"
	"time"
)

const MockName = "mock"

// MockBackend is a Backend for testing.
type MockBackend struct {
	// Configurable behavior
	Latency      time.Duration
	ResponseText string
	FailText     string // Returned instead of ResponseText when non-empty

	// State
	requestCount atomic.Int64
}

// NewMockBackend creates a mock backend with sensible defaults.
func NewMockBackend() *MockBackend {
	return &MockBackend{
		ResponseText: "mock analysis",
	}
}

// Name returns the backend identifier.
func (b *MockBackend) Name() string { return MockName }

// Analyze returns the configured response after the configured latency.
func (b *MockBackend) Analyze(ctx context.Context, prompt string) string {
	b.requestCount.Add(1)

	if b.Latency > 0 {
		select {
		case <-time.After(b.Latency):
		case <-ctx.Done():
			return "AI analysis failed: " + ctx.Err().Error()
		}
	}
	if b.FailText != "" {
		return b.FailText
	}
	return b.ResponseText
}

// RequestCount returns the number of Analyze calls made.
func (b *MockBackend) RequestCount() int64 {
	return b.requestCount.Load()
}

// Reset resets the request counter.
func (b *MockBackend) Reset() {
	b.requestCount.Store(0)
}

var _ Backend = (*MockBackend)(nil)
