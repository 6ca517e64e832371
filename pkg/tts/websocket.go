package tts

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

const providerName = "websocket"

// Frame status values used by the service.
const (
	frameStatusFinal = 2
)

// WebSocket synthesizes speech over a signed-URL WebSocket session.
// Each utterance opens its own connection: one request frame carrying the
// base64 text, then audio frames until a frame with status 2.
type WebSocket struct {
	config *Config
	logger *slog.Logger
	dialer websocket.Dialer
	now    func() time.Time
}

// NewWebSocket creates a WebSocket TTS provider.
func NewWebSocket(opts ...Option) (*WebSocket, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &WebSocket{
		config: cfg,
		logger: cfg.Logger.With("component", "tts.websocket"),
		dialer: websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout},
		now:    time.Now,
	}, nil
}

// SignedURL builds the authenticated connection URL. The signature is an
// HMAC-SHA256 over the host, date and request line.
func (w *WebSocket) SignedURL() (string, error) {
	u, err := url.Parse(w.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	date := w.now().UTC().Format(http.TimeFormat)

	origin := fmt.Sprintf("host: %s\ndate: %s\nGET %s HTTP/1.1", u.Host, date, u.Path)
	mac := hmac.New(sha256.New, []byte(w.config.APISecret))
	mac.Write([]byte(origin))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	auth := fmt.Sprintf(`api_key="%s", algorithm="hmac-sha256", headers="host date request-line", signature="%s"`,
		w.config.APIKey, signature)

	q := u.Query()
	q.Set("authorization", base64.StdEncoding.EncodeToString([]byte(auth)))
	q.Set("date", date)
	q.Set("host", u.Host)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

type wsRequest struct {
	Common   wsCommon   `json:"common"`
	Business wsBusiness `json:"business"`
	Data     wsData     `json:"data"`
}

type wsCommon struct {
	AppID string `json:"app_id"`
}

type wsBusiness struct {
	AUE string `json:"aue"`
	AUF string `json:"auf"`
	VCN string `json:"vcn"`
	TTE string `json:"tte"`
}

type wsData struct {
	Status int    `json:"status"`
	Text   string `json:"text"`
}

type wsResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	SID     string `json:"sid"`
	Data    *struct {
		Audio  string `json:"audio"`
		Status int    `json:"status"`
	} `json:"data"`
}

// Synthesize converts text to raw PCM audio.
func (w *WebSocket) Synthesize(ctx context.Context, text string) (*AudioResult, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	if w.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	conn, err := w.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	// Unblock ReadJSON when the caller gives up.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	req := wsRequest{
		Common: wsCommon{AppID: w.config.AppID},
		Business: wsBusiness{
			AUE: "raw",
			AUF: string(w.config.OutputFormat),
			VCN: w.config.Voice,
			TTE: "utf8",
		},
		Data: wsData{
			Status: frameStatusFinal,
			Text:   base64.StdEncoding.EncodeToString([]byte(text)),
		},
	}
	if err := conn.WriteJSON(req); err != nil {
		return nil, WrapError(providerName, fmt.Errorf("send request: %w", err))
	}

	var audio []byte
	var firstFrame time.Duration
	for {
		var resp wsResponse
		if err := conn.ReadJSON(&resp); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, WrapError(providerName, fmt.Errorf("read frame: %w", err))
		}
		if resp.Code != 0 {
			return nil, &APIError{Code: resp.Code, Message: resp.Message, SID: resp.SID, Provider: providerName}
		}
		if resp.Data == nil {
			continue
		}
		if resp.Data.Audio != "" {
			chunk, err := base64.StdEncoding.DecodeString(resp.Data.Audio)
			if err != nil {
				return nil, WrapError(providerName, fmt.Errorf("decode audio: %w", err))
			}
			if firstFrame == 0 {
				firstFrame = time.Since(start)
			}
			audio = append(audio, chunk...)
		}
		if resp.Data.Status == frameStatusFinal {
			break
		}
	}

	if len(audio) == 0 {
		return nil, WrapError(providerName, ErrNoAudio)
	}

	format := PCMFormat(w.config.OutputFormat)
	result := &AudioResult{
		Audio:     audio,
		Format:    format,
		Duration:  PCMDuration(audio, format.SampleRate),
		CharCount: len([]rune(text)),
		LatencyMs: firstFrame.Milliseconds(),
	}
	w.logger.Debug("synthesized",
		"chars", result.CharCount,
		"bytes", len(audio),
		"latency_ms", result.LatencyMs,
	)
	return result, nil
}

func (w *WebSocket) dial(ctx context.Context) (*websocket.Conn, error) {
	u, err := w.SignedURL()
	if err != nil {
		return nil, WrapError(providerName, err)
	}
	conn, resp, err := w.dialer.DialContext(ctx, u, nil)
	if err != nil {
		if resp != nil {
			return nil, WrapError(providerName, fmt.Errorf("websocket dial failed (status %d): %w", resp.StatusCode, err))
		}
		return nil, WrapError(providerName, fmt.Errorf("websocket dial failed: %w", err))
	}
	return conn, nil
}

// Health verifies the service accepts a signed connection.
func (w *WebSocket) Health(ctx context.Context) error {
	conn, err := w.dial(ctx)
	if err != nil {
		return err
	}
	return conn.Close()
}

// Close is a no-op; connections are per utterance.
func (w *WebSocket) Close() error {
	return nil
}

// Verify WebSocket implements Provider at compile time.
var _ Provider = (*WebSocket)(nil)
