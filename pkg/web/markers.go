package web

import (
	"github.com/google/uuid"

	"github.com/A-smalluser/Scene-Nav/pkg/geom"
	"github.com/A-smalluser/Scene-Nav/pkg/hub"
	"github.com/A-smalluser/Scene-Nav/pkg/waypoint"
)

// MarkerEvent is the payload of marker spawn and despawn events.
type MarkerEvent struct {
	Handle   waypoint.Handle `json:"handle"`
	Position *geom.Vec       `json:"position,omitempty"`
}

// Markers renders waypoint markers by publishing them to scene clients on
// /ws/events. The client owns the actual scene objects.
type Markers struct {
	hub *hub.Hub
}

// Markers returns a renderer that publishes on the events hub.
func (s *Server) Markers() *Markers {
	return &Markers{hub: s.eventsHub}
}

// Spawn announces a marker at point.
func (m *Markers) Spawn(point geom.Vec) (waypoint.Handle, error) {
	h := waypoint.Handle(uuid.NewString())
	if err := m.hub.BroadcastEvent(hub.EventMarkerSpawn, MarkerEvent{Handle: h, Position: &point}); err != nil {
		return "", err
	}
	return h, nil
}

// Despawn announces that h is gone.
func (m *Markers) Despawn(h waypoint.Handle) error {
	return m.hub.BroadcastEvent(hub.EventMarkerDespawn, MarkerEvent{Handle: h})
}

var _ waypoint.Renderer = (*Markers)(nil)
