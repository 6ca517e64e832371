package tts

import (
	"context"
	"sync"
	"time"
)

// Mock implements Provider for tests. Behaviour is set through the function
// fields; every call is recorded.
type Mock struct {
	// SynthesizeFunc answers Synthesize. If nil, Synthesize fails with
	// ErrProviderUnavailable.
	SynthesizeFunc func(ctx context.Context, text string) (*AudioResult, error)

	// HealthFunc answers Health. If nil, the mock is healthy.
	HealthFunc func(ctx context.Context) error

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records one method invocation.
type MockCall struct {
	Method string
	Text   string
}

// NewMock creates a mock that returns silent 16 kHz PCM, 20 ms per character.
func NewMock() *Mock {
	return &Mock{SynthesizeFunc: silence}
}

func silence(_ context.Context, text string) (*AudioResult, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	format := PCMFormat(EncodingPCM16)
	pcm := make([]byte, len(text)*640)
	return &AudioResult{
		Audio:     pcm,
		Format:    format,
		CharCount: len(text),
		LatencyMs: 5,
		Duration:  PCMDuration(pcm, format.SampleRate),
	}, nil
}

// Synthesize records the call and delegates to SynthesizeFunc.
func (m *Mock) Synthesize(ctx context.Context, text string) (*AudioResult, error) {
	m.record("Synthesize", text)
	m.mu.Lock()
	fn := m.SynthesizeFunc
	m.mu.Unlock()
	if fn == nil {
		return nil, WrapError("mock", ErrProviderUnavailable)
	}
	return fn(ctx, text)
}

// Health records the call and delegates to HealthFunc.
func (m *Mock) Health(ctx context.Context) error {
	m.record("Health", "")
	if m.HealthFunc != nil {
		return m.HealthFunc(ctx)
	}
	return nil
}

// Close records the call.
func (m *Mock) Close() error {
	m.record("Close", "")
	return nil
}

func (m *Mock) record(method, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockCall{Method: method, Text: text})
}

// Calls returns every recorded call.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

// CallCount returns how many times method was called.
func (m *Mock) CallCount(method string) int {
	n := 0
	for _, c := range m.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Texts returns the text of every Synthesize call in order.
func (m *Mock) Texts() []string {
	var out []string
	for _, c := range m.Calls() {
		if c.Method == "Synthesize" {
			out = append(out, c.Text)
		}
	}
	return out
}

// Reset forgets recorded calls.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// WithError returns a mock whose every call fails with err.
func WithError(err error) *Mock {
	fail := func(context.Context) error { return err }
	return &Mock{
		SynthesizeFunc: func(context.Context, string) (*AudioResult, error) { return nil, err },
		HealthFunc:     fail,
	}
}

// WithLatency delays m's synthesis by delay, returning early if ctx ends.
func WithLatency(m *Mock, delay time.Duration) *Mock {
	next := m.SynthesizeFunc
	if next == nil {
		next = silence
	}
	m.SynthesizeFunc = func(ctx context.Context, text string) (*AudioResult, error) {
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-t.C:
			return next(ctx, text)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m
}

var _ Provider = (*Mock)(nil)
