package speech_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/A-smalluser/Scene-Nav/pkg/speech"
	"github.com/A-smalluser/Scene-Nav/pkg/tts"
)

type recorder struct {
	mu     sync.Mutex
	played []int
}

func (r *recorder) Play(ctx context.Context, audio *tts.AudioResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.played = append(r.played, len(audio.Audio))
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.played)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestSubmitWithoutProvider(t *testing.T) {
	s := speech.New(nil, nil, nil)
	if err := s.Submit("turn left 90.0 degrees"); !errors.Is(err, speech.ErrSpeechUnavailable) {
		t.Errorf("expected ErrSpeechUnavailable, got %v", err)
	}
	if s.Stats().Unavailable != 1 {
		t.Errorf("expected unavailable count 1, got %+v", s.Stats())
	}
}

func TestSpeaksSubmittedText(t *testing.T) {
	mock := tts.NewMock()
	out := &recorder{}
	s := speech.New(mock, out, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	if err := s.Submit("go straight, 4 steps"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitFor(t, func() bool { return out.count() == 1 })
	waitFor(t, func() bool { return s.Stats().Spoken == 1 })

	if texts := mock.Texts(); len(texts) != 1 || texts[0] != "go straight, 4 steps" {
		t.Errorf("synthesized %q", texts)
	}
}

func TestNewTextSupersedesInFlight(t *testing.T) {
	started := make(chan string, 4)
	mock := &tts.Mock{
		SynthesizeFunc: func(ctx context.Context, text string) (*tts.AudioResult, error) {
			started <- text
			if text == "first" {
				<-ctx.Done()
				return nil, ctx.Err()
			}
			return &tts.AudioResult{Audio: []byte{0, 0}}, nil
		},
	}
	out := &recorder{}
	s := speech.New(mock, out, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	s.Submit("first")
	if got := <-started; got != "first" {
		t.Fatalf("expected first to start, got %q", got)
	}
	s.Submit("second")

	select {
	case got := <-started:
		if got != "second" {
			t.Fatalf("expected second, got %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight utterance was not interrupted")
	}
	waitFor(t, func() bool { return out.count() == 1 })

	stats := s.Stats()
	if stats.Spoken != 1 || stats.Superseded < 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestQueuedTextIsReplaced(t *testing.T) {
	mock := tts.NewMock()
	out := &recorder{}
	s := speech.New(mock, out, nil)

	// Not running yet: both submits land in the single slot.
	s.Submit("one")
	s.Submit("two")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	waitFor(t, func() bool { return out.count() == 1 })
	time.Sleep(20 * time.Millisecond)
	if texts := mock.Texts(); len(texts) != 1 || texts[0] != "two" {
		t.Errorf("expected only the latest text, got %q", texts)
	}
}
