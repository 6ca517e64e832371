package tts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
)

// Chain is a Provider that falls back across voices. It starts each request
// with the provider that last succeeded, so a dead primary voice costs one
// failed attempt rather than one per instruction.
//
// Credentials are shared by every voice, so an auth rejection ends the
// attempt immediately instead of trying the rest.
type Chain struct {
	providers []Provider
	preferred atomic.Int32
	logger    *slog.Logger
}

// NewChain creates a chain over providers, tried in order.
func NewChain(providers ...Provider) (*Chain, error) {
	return NewChainWithLogger(slog.Default(), providers...)
}

// NewChainWithLogger creates a chain with a custom logger.
func NewChainWithLogger(logger *slog.Logger, providers ...Provider) (*Chain, error) {
	if len(providers) == 0 {
		return nil, ErrProviderUnavailable
	}
	return &Chain{
		providers: providers,
		logger:    logger.With("component", "tts.chain"),
	}, nil
}

// Synthesize tries the preferred provider, then the others in order.
func (c *Chain) Synthesize(ctx context.Context, text string) (*AudioResult, error) {
	start := int(c.preferred.Load())
	var errs []error

	for n := range c.providers {
		i := (start + n) % len(c.providers)
		result, err := c.providers[i].Synthesize(ctx, text)
		if err == nil {
			if i != start {
				c.preferred.Store(int32(i))
				c.logger.Info("switched voice", "provider_index", i, "chars", len(text))
			}
			return result, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		errs = append(errs, err)
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.IsAuthError() {
			c.logger.Error("credentials rejected", "provider_index", i, "error", err)
			break
		}
		c.logger.Warn("voice failed, trying next", "provider_index", i, "error", err)
	}

	return nil, &ChainError{Errors: errs}
}

// Health is nil while at least one provider is healthy.
func (c *Chain) Health(ctx context.Context) error {
	var errs []error
	for _, p := range c.providers {
		if err := p.Health(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == len(c.providers) {
		return fmt.Errorf("all %d providers unhealthy: %w", len(c.providers), errors.Join(errs...))
	}
	return nil
}

// Close closes every provider.
func (c *Chain) Close() error {
	var errs []error
	for _, p := range c.providers {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ChainError collects the failures of one Synthesize call, in attempt order.
type ChainError struct {
	Errors []error
}

// Error implements the error interface.
func (e *ChainError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "tts chain: no attempts"
	case 1:
		return fmt.Sprintf("tts chain: %v", e.Errors[0])
	}
	return fmt.Sprintf("tts chain: %d voices failed, last: %v", len(e.Errors), e.Errors[len(e.Errors)-1])
}

// Unwrap exposes every attempt to errors.Is and errors.As.
func (e *ChainError) Unwrap() []error {
	return e.Errors
}

var _ Provider = (*Chain)(nil)
