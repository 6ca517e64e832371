package web

import (
	"context"
	"time"

	"github.com/A-smalluser/Scene-Nav/pkg/hub"
	"github.com/A-smalluser/Scene-Nav/pkg/speech"
	"github.com/A-smalluser/Scene-Nav/pkg/tts"
)

// audioChunk is the playback time carried by one binary frame.
const audioChunk = 100 * time.Millisecond

// AudioOutput streams synthesized PCM to /ws/audio clients in real time.
// A cancelled Play stops mid-utterance and tells clients to flush.
type AudioOutput struct {
	audio  *hub.Hub
	events *hub.Hub

	// Pace is the delay between frames. Defaults to audioChunk.
	Pace time.Duration
}

// SpeechEvent is the payload of speech start and stop events.
type SpeechEvent struct {
	Format      tts.AudioFormat `json:"format"`
	DurationMS  int64           `json:"duration_ms"`
	Interrupted bool            `json:"interrupted,omitempty"`
}

// AudioOutput returns a speech output backed by the server's hubs.
func (s *Server) AudioOutput() *AudioOutput {
	return &AudioOutput{audio: s.audioHub, events: s.eventsHub, Pace: audioChunk}
}

// Play implements speech.Output.
func (o *AudioOutput) Play(ctx context.Context, res *tts.AudioResult) error {
	ev := SpeechEvent{Format: res.Format, DurationMS: res.Duration.Milliseconds()}
	if err := o.events.BroadcastEvent(hub.EventSpeechStart, ev); err != nil {
		return err
	}

	chunk := chunkSize(res.Format)
	ticker := time.NewTicker(max(o.Pace, time.Millisecond))
	defer ticker.Stop()

	for off := 0; off < len(res.Audio); off += chunk {
		if ctx.Err() != nil {
			break
		}
		end := min(off+chunk, len(res.Audio))
		o.audio.BroadcastBinary(res.Audio[off:end])
		if end == len(res.Audio) {
			break
		}
		select {
		case <-ctx.Done():
		case <-ticker.C:
		}
	}

	if err := ctx.Err(); err != nil {
		ev.Interrupted = true
		_ = o.events.BroadcastEvent(hub.EventSpeechStop, ev)
		return err
	}
	return o.events.BroadcastEvent(hub.EventSpeechStop, ev)
}

// chunkSize is the byte length of audioChunk of audio in format f.
func chunkSize(f tts.AudioFormat) int {
	rate, channels, depth := f.SampleRate, f.Channels, f.BitDepth
	if rate <= 0 {
		rate = 16000
	}
	if channels <= 0 {
		channels = 1
	}
	if depth <= 0 {
		depth = 16
	}
	n := rate * channels * (depth / 8) * int(audioChunk/time.Millisecond) / 1000
	return max(n, 1)
}

var _ speech.Output = (*AudioOutput)(nil)
