package retry

import (
	"context"
	"math"
	"time"
)

// Backoff computes the delay after a failed attempt.
type Backoff interface {
	Next(attempt int) time.Duration
}

// Exponential doubles the base delay on every attempt: base × 2^attempt,
// capped at Max when Max is set.
type Exponential struct {
	Base time.Duration
	Max  time.Duration
}

func (b Exponential) Next(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := float64(b.Base) * math.Pow(2, float64(attempt))
	if b.Max > 0 && time.Duration(d) > b.Max {
		return b.Max
	}
	return time.Duration(d)
}

// Policy parameterizes Do: attempt bound, backoff schedule and which errors
// are worth retrying.
type Policy struct {
	Name      string
	Attempts  int
	Backoff   Backoff
	Retryable func(error) bool
	OnAttempt func(attempt int, err error)
	OnExhaust func(lastErr error)
}

// Do runs fn until it succeeds, the attempt bound is reached, the error is
// non-retryable, or the context is canceled. The returned error is the last
// underlying cause.
func Do(ctx context.Context, fn func() error, p Policy) error {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	isRetryable := p.Retryable
	if isRetryable == nil {
		isRetryable = func(err error) bool { return err != nil }
	}

	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil {
			return nil
		}
		if p.OnAttempt != nil {
			p.OnAttempt(i, err)
		}
		if !isRetryable(err) || i == attempts-1 {
			if p.OnExhaust != nil {
				p.OnExhaust(err)
			}
			return err
		}

		wait := time.Duration(0)
		if p.Backoff != nil {
			wait = p.Backoff.Next(i)
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return err
}
