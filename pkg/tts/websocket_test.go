package tts_test

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/A-smalluser/Scene-Nav/pkg/tts"
)

type fakeService struct {
	t      *testing.T
	frames []map[string]any

	mu       sync.Mutex
	lastText string
	lastAuth string
}

func (f *fakeService) received() (text, auth string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastText, f.lastAuth
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.lastAuth = r.URL.Query().Get("authorization")
	f.mu.Unlock()
	upgrader := websocket.Upgrader{}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.t.Errorf("upgrade: %v", err)
		return
	}
	defer conn.Close()

	var req struct {
		Common struct {
			AppID string `json:"app_id"`
		} `json:"common"`
		Data struct {
			Text string `json:"text"`
		} `json:"data"`
	}
	if err := conn.ReadJSON(&req); err != nil {
		f.t.Errorf("read request: %v", err)
		return
	}
	text, _ := base64.StdEncoding.DecodeString(req.Data.Text)
	f.mu.Lock()
	f.lastText = string(text)
	f.mu.Unlock()

	for _, frame := range f.frames {
		if err := conn.WriteJSON(frame); err != nil {
			return
		}
	}
}

func newProvider(t *testing.T, srv *httptest.Server) *tts.WebSocket {
	t.Helper()
	p, err := tts.NewWebSocket(
		tts.WithAppID("app"),
		tts.WithAPIKey("key"),
		tts.WithAPISecret("secret"),
		tts.WithBaseURL("ws"+strings.TrimPrefix(srv.URL, "http")+"/v2/tts"),
		tts.WithTimeout(2*time.Second),
	)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	return p
}

func audioFrame(b []byte, status int) map[string]any {
	return map[string]any{
		"code": 0,
		"sid":  "tts-test",
		"data": map[string]any{"audio": base64.StdEncoding.EncodeToString(b), "status": status},
	}
}

func TestWebSocketSynthesize(t *testing.T) {
	svc := &fakeService{t: t, frames: []map[string]any{
		audioFrame([]byte{1, 2, 3, 4}, 1),
		audioFrame([]byte{5, 6}, 2),
	}}
	srv := httptest.NewServer(svc)
	defer srv.Close()

	result, err := newProvider(t, srv).Synthesize(context.Background(), "destination reached")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(result.Audio) != string([]byte{1, 2, 3, 4, 5, 6}) {
		t.Errorf("audio = %v", result.Audio)
	}
	text, rawAuth := svc.received()
	if text != "destination reached" {
		t.Errorf("service received %q", text)
	}

	auth, err := base64.StdEncoding.DecodeString(rawAuth)
	if err != nil {
		t.Fatalf("authorization not base64: %v", err)
	}
	if !strings.Contains(string(auth), `api_key="key"`) || !strings.Contains(string(auth), `algorithm="hmac-sha256"`) {
		t.Errorf("unexpected authorization %q", auth)
	}
}

func TestWebSocketServiceError(t *testing.T) {
	svc := &fakeService{t: t, frames: []map[string]any{
		{"code": 10313, "message": "invalid appid", "sid": "abc"},
	}}
	srv := httptest.NewServer(svc)
	defer srv.Close()

	_, err := newProvider(t, srv).Synthesize(context.Background(), "hello")
	var apiErr *tts.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != 10313 {
		t.Fatalf("expected APIError 10313, got %v", err)
	}
}

func TestWebSocketRejectsEmptyText(t *testing.T) {
	srv := httptest.NewServer(&fakeService{t: t})
	defer srv.Close()

	if _, err := newProvider(t, srv).Synthesize(context.Background(), ""); !errors.Is(err, tts.ErrEmptyText) {
		t.Errorf("expected ErrEmptyText, got %v", err)
	}
}

func TestNewWebSocketRequiresCredentials(t *testing.T) {
	if _, err := tts.NewWebSocket(tts.WithAPIKey("only-key")); !errors.Is(err, tts.ErrNoCredentials) {
		t.Errorf("expected ErrNoCredentials, got %v", err)
	}
}
