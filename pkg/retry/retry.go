package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Backoff describes how long to wait between attempts of a connection or
// bootstrap step
type Backoff struct {
	// Attempts is the total number of tries, including the first one
	Attempts int
	// Initial is the wait before the second attempt
	Initial time.Duration
	// Max caps every wait
	Max time.Duration
	// Multiplier grows the wait after each failure
	Multiplier float64
	// Jitter spreads each wait by up to this fraction in either direction
	Jitter float64
}

// ConnectBackoff suits startup connections: 4 attempts, 1s doubling up to 5s
func ConnectBackoff() Backoff {
	return Backoff{
		Attempts:   4,
		Initial:    time.Second,
		Max:        5 * time.Second,
		Multiplier: 2,
		Jitter:     0.1,
	}
}

// Fixed waits the same interval between a fixed number of attempts
func Fixed(attempts int, interval time.Duration) Backoff {
	return Backoff{Attempts: attempts, Initial: interval, Max: interval, Multiplier: 1}
}

func (b Backoff) normalized() Backoff {
	if b.Attempts < 1 {
		b.Attempts = 1
	}
	if b.Initial < 0 {
		b.Initial = 0
	}
	if b.Max < b.Initial {
		b.Max = b.Initial
	}
	if b.Multiplier < 1 {
		b.Multiplier = 1
	}
	b.Jitter = math.Min(math.Max(b.Jitter, 0), 1)
	return b
}

// Delay returns the wait after the given failed attempt (1-based), before
// jitter is applied
func (b Backoff) Delay(attempt int) time.Duration {
	b = b.normalized()
	if attempt < 1 {
		attempt = 1
	}
	d := float64(b.Initial) * math.Pow(b.Multiplier, float64(attempt-1))
	if d > float64(b.Max) {
		d = float64(b.Max)
	}
	return time.Duration(d)
}

func (b Backoff) jittered(attempt int) time.Duration {
	d := float64(b.Delay(attempt))
	if b.Jitter > 0 {
		d += (rand.Float64()*2 - 1) * d * b.Jitter
	}
	return time.Duration(d)
}

// Notify is called after a failed attempt that will be retried
type Notify func(attempt int, err error, wait time.Duration)

type stopError struct{ err error }

func (e *stopError) Error() string { return e.err.Error() }
func (e *stopError) Unwrap() error { return e.err }

// Stop marks err as final so Do returns it without further attempts
func Stop(err error) error {
	if err == nil {
		return nil
	}
	return &stopError{err: err}
}

// ExhaustedError is returned once every attempt has failed
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// Do runs op until it succeeds, returns a Stop error, the attempts run out or
// ctx is done. The returned error wraps the last failure.
func Do(ctx context.Context, b Backoff, op func(ctx context.Context) error, notify Notify) error {
	b = b.normalized()

	var lastErr error
	for attempt := 1; attempt <= b.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return fmt.Errorf("%w (last error: %v)", err, lastErr)
			}
			return err
		}

		err := op(ctx)
		if err == nil {
			return nil
		}

		var stop *stopError
		if errors.As(err, &stop) {
			return stop.err
		}
		lastErr = err

		if attempt == b.Attempts {
			break
		}

		wait := b.jittered(attempt)
		if notify != nil {
			notify(attempt, err, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w (last error: %v)", ctx.Err(), lastErr)
		case <-timer.C:
		}
	}

	return &ExhaustedError{Attempts: b.Attempts, Err: lastErr}
}
