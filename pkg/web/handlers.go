package web

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/A-smalluser/Scene-Nav/pkg/geom"
	"github.com/A-smalluser/Scene-Nav/pkg/navigation"
	"github.com/A-smalluser/Scene-Nav/pkg/pose"
)

// PoseRequest is the body of POST /api/pose.
type PoseRequest struct {
	Position geom.Vec `json:"position"`
	Forward  geom.Vec `json:"forward"`
}

// Status is the body of GET /api/status.
type Status struct {
	navigation.Snapshot
	Pose    *pose.Pose `json:"pose,omitempty"`
	PoseAge string     `json:"pose_age,omitempty"`
	Clients Clients    `json:"clients"`
}

// Clients counts the connected websocket clients per stream.
type Clients struct {
	Events int `json:"events"`
	Audio  int `json:"audio"`
}

// handleNavigate queues a navigate request for the next tick.
func (s *Server) handleNavigate(c *fiber.Ctx) error {
	var req navigation.NavigateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid navigate request: " + err.Error(),
		})
	}
	if !geom.Finite(req.Target) || !geom.Finite(req.Heading) || !geom.Finite(req.SurfaceNormal) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "coordinates must be finite",
		})
	}

	nav := s.navigator()
	if nav == nil {
		return errNotReady(c)
	}
	nav.RequestNavigate(req)
	s.logger.Info("navigate request accepted", "target", req.Target)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status": "accepted",
		"target": req.Target,
	})
}

// handlePose records the walker's latest pose.
func (s *Server) handlePose(c *fiber.Ctx) error {
	var req PoseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid pose: " + err.Error(),
		})
	}
	if !geom.Finite(req.Position) || !geom.Finite(req.Forward) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "coordinates must be finite",
		})
	}
	s.poses.Update(req.Position, req.Forward)
	return c.SendStatus(fiber.StatusNoContent)
}

// handleStatus returns the latest engine snapshot and pose.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	nav := s.navigator()
	if nav == nil {
		return errNotReady(c)
	}
	return c.JSON(s.status(nav))
}

// handleInstructions returns recent instructions, oldest first.
func (s *Server) handleInstructions(c *fiber.Ctx) error {
	return c.JSON(s.Instructions())
}

func (s *Server) status(nav Navigator) Status {
	st := Status{
		Snapshot: nav.Snapshot(),
		Clients: Clients{
			Events: s.eventsHub.ClientCount(),
			Audio:  s.audioHub.ClientCount(),
		},
	}
	if p, ok := s.poses.Current(); ok {
		st.Pose = &p
		st.PoseAge = time.Since(s.poses.LastUpdate()).Round(time.Millisecond).String()
	}
	return st
}

func errNotReady(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": "guidance engine not attached",
	})
}
