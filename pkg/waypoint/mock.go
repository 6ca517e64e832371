package waypoint

import (
	"fmt"
	"sync"

	"github.com/A-smalluser/Scene-Nav/pkg/geom"
)

// MockCall records a renderer invocation.
type MockCall struct {
	Method string
	Handle Handle
	Point  geom.Vec
}

// MockRenderer implements Renderer for testing. It hands out sequential
// handles and records every call in order.
type MockRenderer struct {
	// SpawnErr, when set, is returned from every Spawn.
	SpawnErr error

	mu    sync.Mutex
	next  int
	calls []MockCall
}

// NewMockRenderer creates an empty mock renderer.
func NewMockRenderer() *MockRenderer {
	return &MockRenderer{}
}

// Spawn records the call and returns a new handle.
func (m *MockRenderer) Spawn(point geom.Vec) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SpawnErr != nil {
		return "", m.SpawnErr
	}
	m.next++
	h := Handle(fmt.Sprintf("marker-%d", m.next))
	m.calls = append(m.calls, MockCall{Method: "Spawn", Handle: h, Point: point})
	return h, nil
}

// Despawn records the call.
func (m *MockRenderer) Despawn(h Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockCall{Method: "Despawn", Handle: h})
	return nil
}

// Calls returns all recorded calls.
func (m *MockRenderer) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times method was called.
func (m *MockRenderer) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Reset clears recorded calls.
func (m *MockRenderer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// Verify MockRenderer implements Renderer at compile time.
var _ Renderer = (*MockRenderer)(nil)
