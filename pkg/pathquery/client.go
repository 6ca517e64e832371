package pathquery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/A-smalluser/Scene-Nav/internal/httpc"
	"github.com/A-smalluser/Scene-Nav/pkg/geom"
)

// Client queries a navigation-mesh service over HTTP.
//
// Request:  POST {BaseURL}/v1/path {"from":{"x":..},"to":{..}}
// Response: {"status":"complete","corners":[{"x":..,"y":..,"z":..},...]}
//
// 404 and 503 mean the service has no agent to plan with and map to
// ErrAgentUnavailable.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a client for baseURL. timeout bounds each request.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpc.NewClient(timeout),
		logger:  logger.With("component", "pathquery"),
	}
}

type wirePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func toWire(v geom.Vec) wirePoint { return wirePoint{X: v.X, Y: v.Y, Z: v.Z} }

type pathRequest struct {
	From wirePoint `json:"from"`
	To   wirePoint `json:"to"`
}

type pathResponse struct {
	Status  string      `json:"status"`
	Corners []wirePoint `json:"corners"`
}

// Query asks the service for a route from one point to another.
func (c *Client) Query(ctx context.Context, from, to geom.Vec) (Result, error) {
	start := time.Now()
	var resp pathResponse
	err := httpc.PostJSON(ctx, c.http, c.baseURL+"/v1/path", pathRequest{From: toWire(from), To: toWire(to)}, &resp)
	if err != nil {
		var se *httpc.StatusError
		if errors.As(err, &se) && (se.StatusCode == http.StatusNotFound || se.StatusCode == http.StatusServiceUnavailable) {
			return Result{}, fmt.Errorf("%w: %v", ErrAgentUnavailable, err)
		}
		return Result{}, fmt.Errorf("pathquery: %w", err)
	}

	status, err := ParseStatus(resp.Status)
	if err != nil {
		return Result{}, err
	}
	corners := make([]geom.Vec, len(resp.Corners))
	for i, p := range resp.Corners {
		corners[i] = geom.Vec{X: p.X, Y: p.Y, Z: p.Z}
	}

	c.logger.Debug("path query complete",
		"status", status,
		"corners", len(corners),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return Result{Corners: corners, Status: status}, nil
}

// Verify Client implements Service at compile time.
var _ Service = (*Client)(nil)
