package llm

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// RetryConfig controls bounded retries around a Client
type RetryConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryConfig retries twice with a short exponential backoff
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      2,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
}

// RetryClient retries retryable generation failures with exponential backoff.
// Auth and invalid-request failures are returned immediately.
type RetryClient struct {
	Client
	cfg    RetryConfig
	logger zerolog.Logger
}

// WithRetry wraps c; with MaxRetries <= 0 it returns c unchanged.
func WithRetry(c Client, cfg RetryConfig, logger zerolog.Logger) Client {
	if cfg.MaxRetries <= 0 {
		return c
	}
	return &RetryClient{Client: c, cfg: cfg, logger: logger}
}

// Generate calls the wrapped client, retrying up to MaxRetries times
func (r *RetryClient) Generate(ctx context.Context, req Request) (string, error) {
	b := backoff.NewExponentialBackOff()
	if r.cfg.InitialInterval > 0 {
		b.InitialInterval = r.cfg.InitialInterval
	}
	if r.cfg.MaxInterval > 0 {
		b.MaxInterval = r.cfg.MaxInterval
	}
	b.MaxElapsedTime = 0

	var text string
	attempt := 0
	operation := func() error {
		attempt++
		out, err := r.Client.Generate(ctx, req)
		if err == nil {
			text = out
			return nil
		}
		var genErr *GenerationError
		if errors.As(err, &genErr) && !genErr.Retryable() {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		r.logger.Debug().Err(err).Int("attempt", attempt).Dur("wait", wait).Msg("retrying generation")
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(r.cfg.MaxRetries)), ctx)
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return "", err
	}
	return text, nil
}
