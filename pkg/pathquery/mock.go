package pathquery

import (
	"context"
	"sync"

	"github.com/A-smalluser/Scene-Nav/pkg/geom"
)

// MockCall records a query.
type MockCall struct {
	From, To geom.Vec
}

// Mock implements Service for testing.
type Mock struct {
	// QueryFunc answers queries. If nil, a straight two-corner route is returned.
	QueryFunc func(ctx context.Context, from, to geom.Vec) (Result, error)

	mu    sync.Mutex
	calls []MockCall
}

// NewMock creates a mock that answers with straight complete routes.
func NewMock() *Mock {
	return &Mock{}
}

// Query records the call and delegates to QueryFunc.
func (m *Mock) Query(ctx context.Context, from, to geom.Vec) (Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{From: from, To: to})
	fn := m.QueryFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, from, to)
	}
	return Result{Corners: []geom.Vec{from, to}, Status: StatusComplete}, nil
}

// SetQueryFunc swaps the answer function safely.
func (m *Mock) SetQueryFunc(fn func(ctx context.Context, from, to geom.Vec) (Result, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueryFunc = fn
}

// Calls returns recorded queries.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// Respond returns a QueryFunc that always yields res.
func Respond(res Result, err error) func(context.Context, geom.Vec, geom.Vec) (Result, error) {
	return func(context.Context, geom.Vec, geom.Vec) (Result, error) {
		return res, err
	}
}

// Verify Mock implements Service at compile time.
var _ Service = (*Mock)(nil)
