// Package pose holds the walker's tracked position and facing.
package pose

import (
	"sync"
	"time"

	"github.com/A-smalluser/Scene-Nav/pkg/geom"
)

// Pose is a tracked position with a horizontal unit heading.
type Pose struct {
	Position geom.Vec `json:"position"`
	Heading  geom.Vec `json:"heading"`
}

// New builds a Pose, projecting forward onto the horizontal plane.
func New(position, forward geom.Vec) Pose {
	return Pose{Position: position, Heading: geom.HorizontalDir(forward)}
}

// HasHeading reports whether the heading has a usable horizontal direction.
func (p Pose) HasHeading() bool {
	return !geom.IsZero(p.Heading)
}

// Source supplies the latest pose. ok is false until a pose is known.
type Source interface {
	Current() (p Pose, ok bool)
}

// Store keeps the most recent pose reported by the external tracker.
// It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	pose    Pose
	updated time.Time
	known   bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Update records a new tracker sample.
func (s *Store) Update(position, forward geom.Vec) {
	s.Set(New(position, forward))
}

// Set records an already-normalized pose.
func (s *Store) Set(p Pose) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pose = p
	s.updated = time.Now()
	s.known = true
}

// Current returns the latest pose.
func (s *Store) Current() (Pose, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pose, s.known
}

// LastUpdate returns when the pose was last set.
func (s *Store) LastUpdate() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updated
}

// Verify Store implements Source at compile time.
var _ Source = (*Store)(nil)
