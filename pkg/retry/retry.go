package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultMaxAttempts = 3
	DefaultInterval    = 500 * time.Millisecond
)

type Operation func() error

type ExponentialConfig struct {
	InitialInterval time.Duration
	MaxElapsedTime  time.Duration
	// MaxAttempts caps retries on top of MaxElapsedTime; 0 means no cap.
	MaxAttempts uint64
	OnRetry     func(error, time.Duration)
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

func Exponential(fn Operation, cfg ExponentialConfig) error {
	return ExponentialContext(context.Background(), fn, cfg)
}

// ExponentialContext stops retrying once ctx is done.
func ExponentialContext(ctx context.Context, fn Operation, cfg ExponentialConfig) error {
	if cfg.InitialInterval <= 0 {
		return errors.New("initial interval must be > 0")
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.InitialInterval
	if cfg.MaxElapsedTime > 0 {
		bo.MaxElapsedTime = cfg.MaxElapsedTime
	}

	var b backoff.BackOff = bo
	if cfg.MaxAttempts > 0 {
		b = backoff.WithMaxRetries(b, cfg.MaxAttempts)
	}

	return backoff.RetryNotify(backoff.Operation(fn), backoff.WithContext(b, ctx), func(err error, next time.Duration) {
		if cfg.OnRetry != nil {
			cfg.OnRetry(err, next)
		}
	})
}

func Constant(fn Operation, interval time.Duration, attempts int) error {
	if attempts <= 0 {
		attempts = 1
	}

	var err error
	for i := 1; i <= attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts {
			time.Sleep(interval)
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, err)
}
