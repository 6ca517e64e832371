// Package navigation runs turn-by-turn walking guidance.
//
// The Engine is driven by explicit Tick calls. Each tick it:
//
//  1. Applies queued navigate requests, discarding the current session.
//  2. Consumes finished path queries and swaps in the resulting session.
//  3. Fires due recovery deadlines (re-plan after grace, re-arm after cooldown).
//  4. Runs the deviation monitor and the guidance state machine on the
//     active session.
//
// Path queries run asynchronously and report back through a result queue
// drained by the next tick, so pose evaluation never waits on the network.
// Only the tick goroutine mutates session state. Observers read an immutable
// Snapshot published at the end of every tick.
package navigation

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/A-smalluser/Scene-Nav/pkg/deviation"
	"github.com/A-smalluser/Scene-Nav/pkg/geom"
	"github.com/A-smalluser/Scene-Nav/pkg/guidance"
	"github.com/A-smalluser/Scene-Nav/pkg/pathquery"
	"github.com/A-smalluser/Scene-Nav/pkg/pathseg"
	"github.com/A-smalluser/Scene-Nav/pkg/pose"
	"github.com/A-smalluser/Scene-Nav/pkg/recovery"
	"github.com/A-smalluser/Scene-Nav/pkg/waypoint"
)

// NavigateRequest asks for guidance to a target point.
type NavigateRequest struct {
	Target geom.Vec `json:"target"`

	// Heading is the requester's facing when the request was made. It is the
	// reference for the first turn. A zero heading uses the tick pose.
	Heading geom.Vec `json:"heading"`

	// SurfaceNormal, when set, is the normal of the gazed surface; the target
	// is backed off along it by Config.TargetStandoff.
	SurfaceNormal geom.Vec `json:"surface_normal"`
}

// Announcer speaks instruction text, superseding anything still playing.
type Announcer interface {
	Submit(text string) error
}

// InstructionSink observes every emitted instruction (display, history).
type InstructionSink func(guidance.Instruction)

// Executor runs a path query off the tick goroutine.
type Executor func(task func())

// Go runs each task in its own goroutine. It is the default Executor.
func Go(task func()) { go task() }

// Inline runs tasks synchronously, so a result is handled in the same tick that
// dispatched it. Every dispatch makes earlier results stale and drops them, so
// the results buffer holds at most one entry and the tick never blocks on it.
func Inline(task func()) { task() }

type purpose int

const (
	purposeNavigate purpose = iota
	purposeReroute
)

func (p purpose) String() string {
	if p == purposeReroute {
		return "reroute"
	}
	return "navigate"
}

type queryJob struct {
	gen     uint64
	purpose purpose
	from    geom.Vec
	to      geom.Vec
	heading geom.Vec
}

type queryResult struct {
	job queryJob
	res pathquery.Result
	err error
}

// Engine owns the active guidance session.
type Engine struct {
	cfg       Config
	paths     pathquery.Service
	machine   *guidance.Machine
	monitor   *deviation.Monitor
	recovery  *recovery.Coordinator
	markers   *waypoint.Manager
	renderer  waypoint.Renderer
	announcer Announcer
	sinks     []InstructionSink
	exec      Executor
	logger    *slog.Logger

	commands chan NavigateRequest
	results  chan queryResult

	active   atomic.Pointer[guidance.Session]
	snapshot atomic.Pointer[Snapshot]

	// Tick-goroutine state.
	pose         pose.Pose
	generation   uint64
	pending      bool
	cancelQuery  context.CancelFunc
	last         *guidance.Instruction
	lastErr      error
	speechWarned bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithAnnouncer sets the speech output.
func WithAnnouncer(a Announcer) Option {
	return func(e *Engine) { e.announcer = a }
}

// WithRenderer sets the waypoint marker renderer.
func WithRenderer(r waypoint.Renderer) Option {
	return func(e *Engine) { e.renderer = r }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithExecutor sets how path queries are run.
func WithExecutor(x Executor) Option {
	return func(e *Engine) { e.exec = x }
}

// WithInstructionSink adds an observer for emitted instructions.
func WithInstructionSink(fn InstructionSink) Option {
	return func(e *Engine) { e.sinks = append(e.sinks, fn) }
}

// New creates an engine. paths may be nil, in which case every request fails
// with ErrAgentUnavailable.
func New(cfg Config, paths pathquery.Service, opts ...Option) *Engine {
	e := &Engine{
		cfg:      cfg,
		paths:    paths,
		machine:  guidance.NewMachine(cfg.guidance()),
		monitor:  deviation.NewMonitor(cfg.deviation()),
		recovery: recovery.New(cfg.recovery()),
		exec:     Go,
		logger:   slog.Default(),
		commands: make(chan NavigateRequest, 8),
		results:  make(chan queryResult, 8),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "navigation")
	e.markers = waypoint.NewManager(e.renderer, e.logger)
	e.snapshot.Store(&Snapshot{})
	return e
}

// RequestNavigate queues a navigate request for the next tick. It is safe to
// call from any goroutine. If requests pile up the oldest are dropped.
func (e *Engine) RequestNavigate(req NavigateRequest) {
	for {
		select {
		case e.commands <- req:
			return
		default:
		}
		select {
		case old := <-e.commands:
			e.logger.Debug("dropping superseded request", "target", old.Target)
		default:
		}
	}
}

// Tick evaluates p at time now and returns the instructions emitted.
func (e *Engine) Tick(p pose.Pose, now time.Time) []guidance.Instruction {
	e.pose = p
	var out []guidance.Instruction

	e.drainCommands(now, &out)
	e.drainResults(now, &out)
	e.runRecovery(now, &out)

	// One load per tick: everything below sees the same session.
	if s := e.active.Load(); s != nil {
		if res := e.monitor.Check(s, p, now); res.Checked {
			e.logger.Debug("deviation check", "session", s.ID, "segment", s.Index, "distance", res.Distance)
			if res.Triggered {
				e.beginRecovery(s, res.Distance, now, &out)
			}
		}
		out = append(out, e.machine.Tick(s, p, now)...)
		if s.Done() {
			e.finish(s, now)
		}
	}

	e.emit(out)
	e.publish(now)
	return out
}

func (e *Engine) drainCommands(now time.Time, out *[]guidance.Instruction) {
	for {
		select {
		case req := <-e.commands:
			e.navigate(req, now, out)
		default:
			return
		}
	}
}

func (e *Engine) drainResults(now time.Time, out *[]guidance.Instruction) {
	for {
		select {
		case r := <-e.results:
			e.handleResult(r, now, out)
		default:
			return
		}
	}
}

// navigate discards the current session and any recovery, then plans anew.
func (e *Engine) navigate(req NavigateRequest, now time.Time, out *[]guidance.Instruction) {
	e.recovery.Cancel()
	if old := e.active.Swap(nil); old != nil {
		e.markers.DestroyAll(old.Markers)
		old.Markers = nil
		e.logger.Info("session superseded", "session", old.ID)
	}

	target := req.Target
	if e.cfg.TargetStandoff > 0 && !geom.IsZero(req.SurfaceNormal) {
		target = geom.Offset(target, req.SurfaceNormal, e.cfg.TargetStandoff)
	}
	e.logger.Info("navigate requested", "from", e.pose.Position, "target", target)

	e.dispatch(queryJob{
		purpose: purposeNavigate,
		from:    e.pose.Position,
		to:      target,
		heading: geom.HorizontalDir(req.Heading),
	}, now, out)
}

// invalidate makes every in-flight query stale and drops queued results.
func (e *Engine) invalidate() {
	e.generation++
	e.pending = false
	if e.cancelQuery != nil {
		e.cancelQuery()
		e.cancelQuery = nil
	}
	for {
		select {
		case r := <-e.results:
			e.logger.Debug("discarding stale path result", "purpose", r.job.purpose)
		default:
			return
		}
	}
}

func (e *Engine) dispatch(job queryJob, now time.Time, out *[]guidance.Instruction) {
	e.invalidate()
	job.gen = e.generation
	if e.paths == nil {
		e.handleResult(queryResult{job: job, err: ErrAgentUnavailable}, now, out)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.queryTimeout())
	e.cancelQuery = cancel
	e.pending = true

	paths, results := e.paths, e.results
	e.exec(func() {
		defer cancel()
		res, err := paths.Query(ctx, job.from, job.to)
		results <- queryResult{job: job, res: res, err: err}
	})
}

func (e *Engine) handleResult(r queryResult, now time.Time, out *[]guidance.Instruction) {
	if r.job.gen != e.generation {
		e.logger.Debug("discarding stale path result", "purpose", r.job.purpose)
		return
	}
	e.pending = false
	reroute := r.job.purpose == purposeReroute

	fail := func(err error, announce bool) {
		e.lastErr = err
		if announce {
			*out = append(*out, guidance.Instruction{
				Kind:    guidance.KindNoRoute,
				Text:    pathseg.NoRouteText,
				Segment: -1,
				At:      now,
			})
		}
		if reroute {
			// Let the monitor try again on its next interval.
			e.recovery.Abort()
			if s := e.active.Load(); s != nil {
				s.DeviationWarned = false
				// The re-plan tore the markers down; the old route is live again.
				if len(s.Markers) == 0 {
					s.Markers = e.markers.Create(s.Segments)
				}
			}
		}
	}

	switch {
	case errors.Is(r.err, ErrAgentUnavailable):
		e.logger.Error("navigation agent unavailable", "purpose", r.job.purpose, "error", r.err)
		fail(r.err, false)
		return
	case r.err != nil:
		e.logger.Error("path query failed", "purpose", r.job.purpose, "error", r.err)
		fail(r.err, true)
		return
	case r.res.Status != pathquery.StatusComplete:
		err := &PathIncompleteError{Status: r.res.Status}
		e.logger.Warn("no complete route", "purpose", r.job.purpose, "status", r.res.Status, "corners", len(r.res.Corners))
		fail(err, true)
		return
	}

	heading := r.job.heading
	if reroute || geom.IsZero(heading) {
		heading = e.pose.Heading
	}
	segs, err := pathseg.BuildWithOptions(r.res.Corners, heading, e.cfg.segmentOptions())
	if err != nil {
		e.logger.Error("route rejected", "purpose", r.job.purpose, "error", err)
		fail(err, false)
		return
	}
	e.logRoute(r.res.Corners, segs)

	s := guidance.NewSession(segs, r.job.to, now)
	started := e.machine.Start(s, now)

	if old := e.active.Load(); old != nil {
		e.markers.DestroyAll(old.Markers)
		old.Markers = nil
	}
	s.Markers = e.markers.Create(segs)
	if reroute {
		s.DeviationWarned = true
		e.recovery.Rerouted(now)
	}

	e.active.Store(s)
	e.lastErr = nil
	e.logger.Info("session started", "session", s.ID, "purpose", r.job.purpose, "segments", len(segs))
	*out = append(*out, started...)
}

func (e *Engine) beginRecovery(s *guidance.Session, distance float64, now time.Time, out *[]guidance.Instruction) {
	if !e.recovery.Begin(s.Target, now) {
		return
	}
	e.logger.Warn("walker off track",
		"session", s.ID,
		"segment", s.Index,
		"distance", distance,
		"replan_at", e.recovery.Deadline(),
	)
	*out = append(*out, guidance.Instruction{
		Kind:    guidance.KindDeviation,
		Text:    pathseg.DeviationText,
		Segment: s.Index,
		At:      now,
	})
}

func (e *Engine) runRecovery(now time.Time, out *[]guidance.Instruction) {
	switch e.recovery.Due(now) {
	case recovery.ActionReroute:
		if s := e.active.Load(); s != nil {
			e.markers.DestroyAll(s.Markers)
			s.Markers = nil
		}
		e.logger.Info("replanning", "target", e.recovery.Target())
		e.dispatch(queryJob{
			purpose: purposeReroute,
			from:    e.pose.Position,
			to:      e.recovery.Target(),
		}, now, out)
	case recovery.ActionClearWarning:
		if s := e.active.Load(); s != nil {
			s.DeviationWarned = false
		}
		e.logger.Debug("recovery cooldown over")
	}
}

// finish ends an arrived session.
func (e *Engine) finish(s *guidance.Session, now time.Time) {
	e.markers.DestroyAll(s.Markers)
	s.Markers = nil
	e.active.CompareAndSwap(s, nil)
	e.recovery.Cancel()
	e.invalidate()
	e.logger.Info("destination reached", "session", s.ID, "elapsed", now.Sub(s.StartedAt).Round(time.Second))
}

func (e *Engine) emit(out []guidance.Instruction) {
	for i := range out {
		in := out[i]
		e.last = &in
		e.logger.Info("instruction", "kind", in.Kind, "text", in.Text, "segment", in.Segment)
		for _, sink := range e.sinks {
			sink(in)
		}

		if e.announcer == nil {
			e.warnSpeech(ErrSpeechUnavailable)
			continue
		}
		if err := e.announcer.Submit(in.Text); err != nil {
			if errors.Is(err, ErrSpeechUnavailable) {
				e.warnSpeech(err)
				continue
			}
			e.logger.Warn("speech submit failed", "error", err)
		}
	}
}

func (e *Engine) warnSpeech(err error) {
	if e.speechWarned {
		return
	}
	e.speechWarned = true
	e.logger.Warn("speech unavailable, instructions are display only", "error", err)
}

func (e *Engine) logRoute(corners []geom.Vec, segs []pathseg.Segment) {
	e.logger.Info("route accepted",
		"corners", len(corners),
		"segments", len(segs),
		"total_distance", pathseg.TotalDistance(segs),
	)
	for i, c := range corners {
		e.logger.Debug("route corner", "index", i+1, "position", c, "height", c.Y)
	}
}

// Run ticks the engine at Config.TickInterval with poses from src until ctx
// is done. Ticks are skipped until src has a pose.
func (e *Engine) Run(ctx context.Context, src pose.Source) error {
	interval := e.cfg.TickInterval
	if interval <= 0 {
		interval = DefaultConfig().TickInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.logger.Info("guidance loop started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			e.shutdown()
			return ctx.Err()
		case now := <-ticker.C:
			p, ok := src.Current()
			if !ok {
				continue
			}
			e.Tick(p, now)
		}
	}
}

func (e *Engine) shutdown() {
	e.invalidate()
	if s := e.active.Swap(nil); s != nil {
		e.markers.DestroyAll(s.Markers)
		s.Markers = nil
	}
	e.logger.Info("guidance loop stopped")
}
