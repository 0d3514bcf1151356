package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errDown = errors.New("connection refused")

func fastBackoff(attempts int) Backoff {
	return Backoff{Attempts: attempts, Initial: time.Millisecond, Max: 4 * time.Millisecond, Multiplier: 2}
}

func TestConnectBackoff(t *testing.T) {
	b := ConnectBackoff()

	if b.Attempts != 4 {
		t.Errorf("Attempts = %d, want 4", b.Attempts)
	}
	if b.Initial != time.Second || b.Max != 5*time.Second {
		t.Errorf("Initial/Max = %v/%v, want 1s/5s", b.Initial, b.Max)
	}
}

func TestBackoff_Delay(t *testing.T) {
	b := Backoff{Attempts: 6, Initial: time.Second, Max: 5 * time.Second, Multiplier: 2}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 5 * time.Second},
		{10, 5 * time.Second},
	}

	for _, tt := range tests {
		if got := b.Delay(tt.attempt); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestBackoff_Normalized(t *testing.T) {
	b := Backoff{Attempts: -1, Initial: 2 * time.Second, Max: time.Second, Multiplier: 0.5, Jitter: 3}.normalized()

	if b.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", b.Attempts)
	}
	if b.Max != 2*time.Second {
		t.Errorf("Max = %v, want raised to Initial", b.Max)
	}
	if b.Multiplier != 1 {
		t.Errorf("Multiplier = %v, want 1", b.Multiplier)
	}
	if b.Jitter != 1 {
		t.Errorf("Jitter = %v, want clamped to 1", b.Jitter)
	}
}

func TestFixed(t *testing.T) {
	b := Fixed(3, 50*time.Millisecond)

	for attempt := 1; attempt <= 3; attempt++ {
		if got := b.Delay(attempt); got != 50*time.Millisecond {
			t.Errorf("Delay(%d) = %v, want 50ms", attempt, got)
		}
	}
}

func TestDo_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastBackoff(3), func(ctx context.Context) error {
		calls++
		return nil
	}, nil)

	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDo_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	var notified []int
	err := Do(context.Background(), fastBackoff(5), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errDown
		}
		return nil
	}, func(attempt int, err error, wait time.Duration) {
		notified = append(notified, attempt)
		if !errors.Is(err, errDown) {
			t.Errorf("notify err = %v, want %v", err, errDown)
		}
	})

	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if len(notified) != 2 || notified[0] != 1 || notified[1] != 2 {
		t.Errorf("notified = %v, want [1 2]", notified)
	}
}

func TestDo_Exhausted(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastBackoff(3), func(ctx context.Context) error {
		calls++
		return errDown
	}, nil)

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("Do() error = %v, want ExhaustedError", err)
	}
	if exhausted.Attempts != 3 || calls != 3 {
		t.Errorf("Attempts = %d, calls = %d, want 3", exhausted.Attempts, calls)
	}
	if !errors.Is(err, errDown) {
		t.Errorf("Do() error should wrap the last failure, got %v", err)
	}
}

func TestDo_Stop(t *testing.T) {
	calls := 0
	invalid := errors.New("invalid credentials")
	err := Do(context.Background(), fastBackoff(5), func(ctx context.Context) error {
		calls++
		return Stop(invalid)
	}, nil)

	if err != invalid {
		t.Errorf("Do() error = %v, want %v", err, invalid)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if Stop(nil) != nil {
		t.Error("Stop(nil) should be nil")
	}
}

func TestDo_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Do(ctx, fastBackoff(3), func(ctx context.Context) error {
		calls++
		return nil
	}, nil)

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() error = %v, want context.Canceled", err)
	}
	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
}

func TestDo_ContextCanceledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b := Backoff{Attempts: 3, Initial: time.Hour, Max: time.Hour, Multiplier: 1}

	err := Do(ctx, b, func(ctx context.Context) error {
		return errDown
	}, func(int, error, time.Duration) { cancel() })

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() error = %v, want context.Canceled", err)
	}
}
