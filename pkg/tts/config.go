package tts

import (
	"log/slog"
	"time"
)

// DefaultBaseURL is the streaming TTS endpoint.
const DefaultBaseURL = "wss://tts-api.xfyun.cn/v2/tts"

// Config holds TTS provider configuration.
// Use functional options (WithXxx) to set these values.
type Config struct {
	// Provider credentials
	AppID     string
	APIKey    string
	APISecret string
	BaseURL   string

	// Voice configuration
	Voice string

	// Audio output
	OutputFormat Encoding

	// Timeouts
	Timeout          time.Duration
	HandshakeTimeout time.Duration

	// Observability
	Logger *slog.Logger
}

// Option is a functional option for configuring TTS providers.
type Option func(*Config)

// WithAppID sets the application ID.
func WithAppID(id string) Option {
	return func(c *Config) {
		c.AppID = id
	}
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithAPISecret sets the secret used to sign the connection URL.
func WithAPISecret(secret string) Option {
	return func(c *Config) {
		c.APISecret = secret
	}
}

// WithBaseURL overrides the default endpoint.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithVoice sets the speaker voice name.
func WithVoice(voice string) Option {
	return func(c *Config) {
		c.Voice = voice
	}
}

// WithOutputFormat sets the audio output format.
func WithOutputFormat(format Encoding) Option {
	return func(c *Config) {
		c.OutputFormat = format
	}
}

// WithTimeout bounds a whole synthesis request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithLogger sets the structured logger for the provider.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:          DefaultBaseURL,
		Voice:            "xiaoyan",
		OutputFormat:     EncodingPCM16,
		Timeout:          15 * time.Second,
		HandshakeTimeout: 5 * time.Second,
		Logger:           slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.AppID == "" || c.APIKey == "" || c.APISecret == "" {
		return ErrNoCredentials
	}
	return nil
}
