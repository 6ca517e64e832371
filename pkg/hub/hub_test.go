package hub_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/A-smalluser/Scene-Nav/pkg/hub"
)

type frame struct {
	kind int
	data []byte
}

// fakeConn blocks reads until closed and records writes.
type fakeConn struct {
	mu     sync.Mutex
	writes []frame
	closed chan struct{}
	once   sync.Once
}

func newFakeConn() *fakeConn { return &fakeConn{closed: make(chan struct{})} }

func (c *fakeConn) SetReadLimit(int64)                {}
func (c *fakeConn) SetReadDeadline(time.Time) error   { return nil }
func (c *fakeConn) SetWriteDeadline(time.Time) error  { return nil }
func (c *fakeConn) SetPongHandler(func(string) error) {}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	<-c.closed
	return 0, nil, errors.New("closed")
}

func (c *fakeConn) WriteMessage(kind int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = append(c.writes, frame{kind: kind, data: append([]byte(nil), data...)})
	return nil
}

func (c *fakeConn) frames(kind int) []frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []frame
	for _, f := range c.writes {
		if f.kind == kind {
			out = append(out, f)
		}
	}
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBroadcastEvent(t *testing.T) {
	h := hub.New("events", slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)
	waitFor(t, h.IsRunning)

	conn := newFakeConn()
	client := hub.NewClient(h, conn)
	go client.Run()
	waitFor(t, func() bool { return h.ClientCount() == 1 })

	if err := h.BroadcastEvent(hub.EventInstruction, map[string]string{"text": "go straight, 4 steps"}); err != nil {
		t.Fatalf("BroadcastEvent: %v", err)
	}
	h.BroadcastBinary([]byte{1, 2, 3})

	waitFor(t, func() bool {
		return len(conn.frames(websocket.TextMessage)) == 1 && len(conn.frames(websocket.BinaryMessage)) == 1
	})

	var ev hub.Event
	if err := json.Unmarshal(conn.frames(websocket.TextMessage)[0].data, &ev); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if ev.Type != hub.EventInstruction {
		t.Errorf("Type = %q, want %q", ev.Type, hub.EventInstruction)
	}
	if string(ev.Data) != `{"text":"go straight, 4 steps"}` {
		t.Errorf("Data = %s", ev.Data)
	}
	if got := conn.frames(websocket.BinaryMessage)[0].data; len(got) != 3 {
		t.Errorf("binary frame = %v", got)
	}

	conn.Close()
	waitFor(t, func() bool { return h.ClientCount() == 0 })
}

func TestRunStopsOnCancel(t *testing.T) {
	h := hub.New("audio", nil)
	if h.IsRunning() {
		t.Fatal("hub reports running before Run")
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()
	waitFor(t, h.IsRunning)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestBroadcastJSONRejectsUnencodable(t *testing.T) {
	h := hub.New("events", nil)
	if err := h.BroadcastJSON(make(chan int)); err == nil {
		t.Error("expected encode error")
	}
}
