// Package speech speaks guidance prompts. It holds a single pending
// utterance: submitting new text drops anything queued and interrupts what
// is currently being synthesized or played.
package speech

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/A-smalluser/Scene-Nav/pkg/tts"
)

// ErrSpeechUnavailable is returned by Submit when no TTS provider is configured.
var ErrSpeechUnavailable = errors.New("speech: no speech provider available")

// Output plays synthesized audio. Play should return promptly when ctx is
// cancelled.
type Output interface {
	Play(ctx context.Context, audio *tts.AudioResult) error
}

// OutputFunc adapts a function to Output.
type OutputFunc func(ctx context.Context, audio *tts.AudioResult) error

// Play calls f.
func (f OutputFunc) Play(ctx context.Context, audio *tts.AudioResult) error {
	return f(ctx, audio)
}

type utterance struct {
	text string
	gen  uint64
}

// Stats counts speaker activity.
type Stats struct {
	Submitted   int64 `json:"submitted"`
	Spoken      int64 `json:"spoken"`
	Superseded  int64 `json:"superseded"`
	Failed      int64 `json:"failed"`
	Unavailable int64 `json:"unavailable"`
}

// Speaker serializes utterances onto one provider and output.
type Speaker struct {
	provider tts.Provider
	output   Output
	logger   *slog.Logger

	slot chan utterance

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc

	submitted, spoken, superseded, failed, unavailable atomic.Int64
}

// New creates a speaker. provider may be nil, in which case Submit reports
// ErrSpeechUnavailable and nothing is played. A nil output discards audio.
func New(provider tts.Provider, output Output, logger *slog.Logger) *Speaker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Speaker{
		provider: provider,
		output:   output,
		logger:   logger.With("component", "speech"),
		slot:     make(chan utterance, 1),
	}
}

// Submit replaces any queued or in-flight utterance with text. It never
// blocks on synthesis.
func (s *Speaker) Submit(text string) error {
	if s.provider == nil {
		s.unavailable.Add(1)
		return ErrSpeechUnavailable
	}
	if text == "" {
		return nil
	}
	s.submitted.Add(1)

	s.mu.Lock()
	s.gen++
	u := utterance{text: text, gen: s.gen}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
		s.superseded.Add(1)
	}
	s.mu.Unlock()

	// Single slot: drop whatever is waiting, then queue the new text.
	for {
		select {
		case old := <-s.slot:
			s.logger.Debug("dropped queued utterance", "text", old.text)
			s.superseded.Add(1)
			continue
		default:
		}
		select {
		case s.slot <- u:
			return nil
		default:
			// Run took or another Submit filled the slot between the two
			// selects; go round again.
		}
	}
}

// Run speaks queued utterances until ctx is done.
func (s *Speaker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			if s.cancel != nil {
				s.cancel()
				s.cancel = nil
			}
			s.mu.Unlock()
			return
		case u := <-s.slot:
			s.speak(ctx, u)
		}
	}
}

func (s *Speaker) speak(parent context.Context, u utterance) {
	s.mu.Lock()
	if u.gen != s.gen {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if u.gen == s.gen {
			s.cancel = nil
		}
		s.mu.Unlock()
		cancel()
	}()

	audio, err := s.provider.Synthesize(ctx, u.text)
	if err != nil {
		if ctx.Err() == nil {
			s.failed.Add(1)
			s.logger.Warn("synthesis failed", "text", u.text, "error", err)
		}
		return
	}
	if s.output != nil {
		if err := s.output.Play(ctx, audio); err != nil && ctx.Err() == nil {
			s.failed.Add(1)
			s.logger.Warn("playback failed", "text", u.text, "error", err)
			return
		}
	}
	if ctx.Err() == nil {
		s.spoken.Add(1)
		s.logger.Debug("spoke", "text", u.text, "duration", audio.Duration)
	}
}

// Stats returns a snapshot of the counters.
func (s *Speaker) Stats() Stats {
	return Stats{
		Submitted:   s.submitted.Load(),
		Spoken:      s.spoken.Load(),
		Superseded:  s.superseded.Load(),
		Failed:      s.failed.Load(),
		Unavailable: s.unavailable.Load(),
	}
}
