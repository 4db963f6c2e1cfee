package resilience

import (
	"context"
	"errors"
	"time"
)

// RetryConfig bounds a retry loop. Retries is the number of extra attempts after the first.
type RetryConfig struct {
	Retries  int
	Base     time.Duration // delay before retry n is Base*2^n
	MaxDelay time.Duration
}

// DefaultRetryConfig matches the classifier call: 2 retries after 300ms then 600ms.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{Retries: 2, Base: 300 * time.Millisecond, MaxDelay: 2 * time.Second}
}

// Delay returns the wait before the retry following attempt (0-based).
func (c RetryConfig) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := c.Base
	for i := 0; i < attempt; i++ {
		d *= 2
		if c.MaxDelay > 0 && d > c.MaxDelay {
			break
		}
	}
	if c.MaxDelay > 0 && d > c.MaxDelay {
		d = c.MaxDelay
	}
	return d
}

// permanent marks an error that must not be retried.
type permanent struct{ err error }

func (p *permanent) Error() string { return p.err.Error() }
func (p *permanent) Unwrap() error { return p.err }

// Permanent wraps err so Retry returns it immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanent{err: err}
}

// Retry calls fn until it succeeds, returns a permanent error, or the attempts run out.
// The last error is returned. Waiting stops early when ctx is done.
func Retry(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	var err error
	for attempt := 0; attempt <= cfg.Retries; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		var p *permanent
		if errors.As(err, &p) {
			return p.err
		}
		if attempt == cfg.Retries {
			break
		}

		timer := time.NewTimer(cfg.Delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(err, ctx.Err())
		case <-timer.C:
		}
	}
	return err
}
