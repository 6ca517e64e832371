package tts

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	// ErrNoCredentials is returned when app ID, key or secret is missing.
	ErrNoCredentials = errors.New("tts: app id, api key and api secret required")

	// ErrEmptyText is returned when asked to synthesize nothing.
	ErrEmptyText = errors.New("tts: empty text")

	// ErrProviderUnavailable is returned when no providers are available.
	ErrProviderUnavailable = errors.New("tts: no providers available")

	// ErrNoAudio is returned when the service finished without audio.
	ErrNoAudio = errors.New("tts: no audio received")
)

// APIError represents an error frame from the TTS service.
type APIError struct {
	// Code is the service error code (non-zero).
	Code int

	// Message is the error message from the service.
	Message string

	// SID is the service session ID, useful when reporting issues.
	SID string

	// Provider identifies which provider returned the error.
	Provider string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.SID != "" {
		return fmt.Sprintf("tts [%s]: error %d (sid %s): %s", e.Provider, e.Code, e.SID, e.Message)
	}
	return fmt.Sprintf("tts [%s]: error %d: %s", e.Provider, e.Code, e.Message)
}

// IsAuthError reports whether the service rejected the credentials.
// 10313 and 11200 are the service's app-id and licence rejections.
func (e *APIError) IsAuthError() bool {
	return e.Code == 401 || e.Code == 403 || e.Code == 10313 || e.Code == 11200
}

// ProviderError wraps an error with provider context.
type ProviderError struct {
	Provider string
	Err      error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("tts [%s]: %v", e.Provider, e.Err)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// WrapError wraps an error with provider context.
func WrapError(provider string, err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Provider: provider, Err: err}
}
