// Package tts provides a unified interface for text-to-speech providers.
//
// Guidance prompts are short, so providers synthesize a whole utterance at
// once. The bundled WebSocket provider talks to a signed-URL streaming TTS
// service; Chain adds fallback and Mock serves tests.
//
// Example usage:
//
//	provider, _ := tts.NewWebSocket(
//	    tts.WithAppID(os.Getenv("TTS_APP_ID")),
//	    tts.WithAPIKey(os.Getenv("TTS_API_KEY")),
//	    tts.WithAPISecret(os.Getenv("TTS_API_SECRET")),
//	)
//	defer provider.Close()
//
//	result, _ := provider.Synthesize(ctx, "turn left 90.0 degrees")
//	// result.Audio contains raw PCM16 audio
package tts

import (
	"context"
	"time"
)

// Provider defines the TTS provider interface.
type Provider interface {
	// Synthesize converts text to audio, returning the complete audio buffer.
	Synthesize(ctx context.Context, text string) (*AudioResult, error)

	// Health checks provider connectivity and credentials.
	Health(ctx context.Context) error

	// Close releases any resources held by the provider.
	Close() error
}

// AudioResult represents a complete audio synthesis result.
type AudioResult struct {
	// Audio contains the raw audio data in the specified format.
	Audio []byte

	// Format describes the audio encoding and sample rate.
	Format AudioFormat

	// Duration is the estimated audio playback duration.
	Duration time.Duration

	// CharCount is the number of characters synthesized.
	CharCount int

	// LatencyMs is the time to first audio frame in milliseconds.
	LatencyMs int64
}

// AudioFormat describes the audio encoding parameters.
type AudioFormat struct {
	Encoding   Encoding
	SampleRate int
	Channels   int
	BitDepth   int
}

// Encoding represents audio encoding types.
type Encoding string

const (
	EncodingPCM8  Encoding = "audio/L16;rate=8000"
	EncodingPCM16 Encoding = "audio/L16;rate=16000"
)

// SampleRateFromEncoding extracts the sample rate from an encoding type.
func SampleRateFromEncoding(enc Encoding) int {
	switch enc {
	case EncodingPCM8:
		return 8000
	default:
		return 16000
	}
}

// PCMFormat returns the mono 16-bit format for enc.
func PCMFormat(enc Encoding) AudioFormat {
	return AudioFormat{
		Encoding:   enc,
		SampleRate: SampleRateFromEncoding(enc),
		Channels:   1,
		BitDepth:   16,
	}
}

// PCMDuration estimates playback time of mono PCM16 audio.
func PCMDuration(audio []byte, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	samples := len(audio) / 2
	return time.Duration(samples) * time.Second / time.Duration(sampleRate)
}
