// Package waypoint spawns and removes the visual markers placed on route
// corners. Rendering itself is done by an external Renderer.
package waypoint

import (
	"log/slog"
	"sync"

	"github.com/A-smalluser/Scene-Nav/pkg/geom"
	"github.com/A-smalluser/Scene-Nav/pkg/pathseg"
)

// Handle identifies a spawned marker.
type Handle string

// Renderer places markers in the scene.
type Renderer interface {
	Spawn(point geom.Vec) (Handle, error)
	Despawn(h Handle) error
}

// Manager tracks which markers are live so removal is idempotent.
type Manager struct {
	renderer Renderer
	logger   *slog.Logger

	mu   sync.Mutex
	live map[Handle]struct{}
}

// NewManager creates a manager. A nil renderer makes every call a no-op.
func NewManager(renderer Renderer, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		renderer: renderer,
		logger:   logger.With("component", "waypoint"),
		live:     make(map[Handle]struct{}),
	}
}

// Corners returns the route corners the segments were built from.
func Corners(segments []pathseg.Segment) []geom.Vec {
	if len(segments) == 0 {
		return nil
	}
	corners := make([]geom.Vec, 0, len(segments)+1)
	corners = append(corners, segments[0].Start)
	for _, s := range segments {
		corners = append(corners, s.End)
	}
	return corners
}

// Create spawns one marker per corner and returns the handles in corner order.
// Corners the renderer fails to spawn are logged and skipped.
func (m *Manager) Create(segments []pathseg.Segment) []Handle {
	if m.renderer == nil {
		return nil
	}
	corners := Corners(segments)
	handles := make([]Handle, 0, len(corners))

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range corners {
		h, err := m.renderer.Spawn(c)
		if err != nil {
			m.logger.Warn("marker spawn failed", "corner", i, "error", err)
			continue
		}
		m.live[h] = struct{}{}
		handles = append(handles, h)
	}
	m.logger.Debug("markers spawned", "count", len(handles))
	return handles
}

// DestroyAll removes the given markers. Handles that are unknown or already
// removed are ignored, so it is safe to call repeatedly.
func (m *Manager) DestroyAll(handles []Handle) {
	if m.renderer == nil || len(handles) == 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for _, h := range handles {
		if _, ok := m.live[h]; !ok {
			continue
		}
		delete(m.live, h)
		if err := m.renderer.Despawn(h); err != nil {
			m.logger.Warn("marker despawn failed", "handle", h, "error", err)
			continue
		}
		removed++
	}
	if removed > 0 {
		m.logger.Debug("markers removed", "count", removed)
	}
}

// Live returns how many markers are currently spawned.
func (m *Manager) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}
