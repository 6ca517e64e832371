// Package pathquery is the boundary to the external navigation-mesh service
// that turns a start and a target into route corners.
package pathquery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/A-smalluser/Scene-Nav/pkg/geom"
)

// ErrAgentUnavailable is returned when no navigation agent can serve the query.
var ErrAgentUnavailable = errors.New("pathquery: navigation agent unavailable")

// Status is the completeness of a computed route.
type Status int

const (
	StatusInvalid Status = iota
	StatusPartial
	StatusComplete
)

func (s Status) String() string {
	switch s {
	case StatusComplete:
		return "complete"
	case StatusPartial:
		return "partial"
	default:
		return "invalid"
	}
}

// MarshalText renders the status name in JSON.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a status name.
func (s *Status) UnmarshalText(b []byte) error {
	v, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseStatus parses "complete", "partial" or "invalid" (case-insensitive).
func ParseStatus(v string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "complete", "pathcomplete":
		return StatusComplete, nil
	case "partial", "pathpartial":
		return StatusPartial, nil
	case "invalid", "pathinvalid":
		return StatusInvalid, nil
	}
	return StatusInvalid, fmt.Errorf("pathquery: unknown status %q", v)
}

// Result is a computed route.
type Result struct {
	Corners []geom.Vec `json:"corners"`
	Status  Status     `json:"status"`
}

// Service computes routes. Implementations may block; callers run them off
// the guidance loop.
type Service interface {
	Query(ctx context.Context, from, to geom.Vec) (Result, error)
}

// Func adapts a function to Service.
type Func func(ctx context.Context, from, to geom.Vec) (Result, error)

// Query calls f.
func (f Func) Query(ctx context.Context, from, to geom.Vec) (Result, error) {
	return f(ctx, from, to)
}

// Static routes through a fixed list of intermediate corners. It is used for
// offline runs and demos where no mesh service is available.
type Static struct {
	Via []geom.Vec
}

// Query returns from, the Via corners, then to, always complete.
func (s Static) Query(ctx context.Context, from, to geom.Vec) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	corners := make([]geom.Vec, 0, len(s.Via)+2)
	corners = append(corners, from)
	corners = append(corners, s.Via...)
	corners = append(corners, to)
	return Result{Corners: corners, Status: StatusComplete}, nil
}

// Verify implementations satisfy Service at compile time.
var (
	_ Service = Func(nil)
	_ Service = Static{}
)
