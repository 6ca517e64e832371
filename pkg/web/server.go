// Package web serves the guidance HTTP API and websocket feeds.
package web

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/A-smalluser/Scene-Nav/pkg/guidance"
	"github.com/A-smalluser/Scene-Nav/pkg/hub"
	"github.com/A-smalluser/Scene-Nav/pkg/navigation"
	"github.com/A-smalluser/Scene-Nav/pkg/pose"
)

// historySize is how many instructions GET /api/instructions returns.
const historySize = 100

// Navigator is the part of the engine the server drives.
type Navigator interface {
	RequestNavigate(req navigation.NavigateRequest)
	Snapshot() navigation.Snapshot
}

// Server is the guidance web server.
type Server struct {
	app    *fiber.App
	addr   string
	logger *slog.Logger

	nav   atomic.Pointer[navigatorRef]
	poses *pose.Store

	// Instruction history, oldest first
	history   []guidance.Instruction
	historyMu sync.RWMutex

	eventsHub *hub.Hub
	audioHub  *hub.Hub

	// StatusInterval is how often status is pushed on /ws/events. Zero disables it.
	StatusInterval time.Duration
}

type navigatorRef struct{ Navigator }

// NewServer creates a server listening on addr. The navigator is attached
// separately with Attach since the engine itself needs the server's marker
// renderer and instruction sink.
func NewServer(addr string, poses *pose.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "web")
	s := &Server{
		addr:           addr,
		logger:         logger,
		poses:          poses,
		history:        make([]guidance.Instruction, 0, historySize),
		eventsHub:      hub.New("events", logger),
		audioHub:       hub.New("audio", logger),
		StatusInterval: time.Second,
	}

	app := fiber.New(fiber.Config{
		AppName:               "Scene-Nav",
		DisableStartupMessage: true,
	})

	app.Use(cors.New())

	api := app.Group("/api")
	api.Post("/navigate", s.handleNavigate)
	api.Post("/pose", s.handlePose)
	api.Get("/status", s.handleStatus)
	api.Get("/instructions", s.handleInstructions)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/events", websocket.New(s.serveHub(s.eventsHub)))
	app.Get("/ws/audio", websocket.New(s.serveHub(s.audioHub)))

	s.app = app
	return s
}

// Attach sets the engine the API drives. Until it is called navigate and
// status requests answer 503.
func (s *Server) Attach(nav Navigator) {
	s.nav.Store(&navigatorRef{nav})
}

func (s *Server) navigator() Navigator {
	if ref := s.nav.Load(); ref != nil {
		return ref.Navigator
	}
	return nil
}

// App exposes the fiber app, mainly for app.Test in tests.
func (s *Server) App() *fiber.App { return s.app }

// Start runs the hubs and serves until the listener fails or ctx is done.
func (s *Server) Start(ctx context.Context) error {
	go s.eventsHub.Run(ctx)
	go s.audioHub.Run(ctx)
	if s.StatusInterval > 0 {
		go s.statusLoop(ctx)
	}

	go func() {
		<-ctx.Done()
		if err := s.app.Shutdown(); err != nil {
			s.logger.Warn("shutdown failed", "error", err)
		}
	}()

	s.logger.Info("web server listening", "addr", s.addr)
	return s.app.Listen(s.addr)
}

// StartAsync starts the web server in a goroutine.
func (s *Server) StartAsync(ctx context.Context) {
	go func() {
		if err := s.Start(ctx); err != nil {
			s.logger.Error("web server stopped", "error", err)
		}
	}()
}

// RecordInstruction appends in to the history and publishes it. It has the
// signature of navigation.InstructionSink.
func (s *Server) RecordInstruction(in guidance.Instruction) {
	s.historyMu.Lock()
	s.history = append(s.history, in)
	if len(s.history) > historySize {
		s.history = s.history[1:]
	}
	s.historyMu.Unlock()

	if err := s.eventsHub.BroadcastEvent(hub.EventInstruction, in); err != nil {
		s.logger.Warn("instruction event failed", "error", err)
	}
}

// Instructions returns a copy of the recent instruction history.
func (s *Server) Instructions() []guidance.Instruction {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()
	out := make([]guidance.Instruction, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Server) statusLoop(ctx context.Context) {
	ticker := time.NewTicker(s.StatusInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			nav := s.navigator()
			if nav == nil || s.eventsHub.ClientCount() == 0 {
				continue
			}
			if err := s.eventsHub.BroadcastEvent(hub.EventStatus, s.status(nav)); err != nil {
				s.logger.Warn("status event failed", "error", err)
			}
		}
	}
}

func (s *Server) serveHub(h *hub.Hub) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		hub.NewClient(h, c).Run()
	}
}
