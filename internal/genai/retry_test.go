package genai

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCalculateBackoff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		attempt int
		initial time.Duration
		max     time.Duration
		// We test ranges since Full Jitter is random
		minExpected time.Duration
		maxExpected time.Duration
	}{
		{
			name:        "first attempt (no delay)",
			attempt:     0,
			initial:     time.Second,
			max:         10 * time.Second,
			minExpected: 0,
			maxExpected: 0,
		},
		{
			name:        "second attempt",
			attempt:     1,
			initial:     time.Second,
			max:         10 * time.Second,
			minExpected: 0,
			maxExpected: time.Second, // random(0, 1s)
		},
		{
			name:        "third attempt",
			attempt:     2,
			initial:     time.Second,
			max:         10 * time.Second,
			minExpected: 0,
			maxExpected: 2 * time.Second, // random(0, 2s)
		},
		{
			name:        "capped at max",
			attempt:     10,
			initial:     time.Second,
			max:         5 * time.Second,
			minExpected: 0,
			maxExpected: 5 * time.Second, // random(0, cap=5s)
		},
		{
			name:        "negative attempt",
			attempt:     -1,
			initial:     time.Second,
			max:         10 * time.Second,
			minExpected: 0,
			maxExpected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			for range 20 {
				got := CalculateBackoff(tt.attempt, tt.initial, tt.max)
				if got < tt.minExpected || got > tt.maxExpected {
					t.Errorf("CalculateBackoff(%d) = %v, want in [%v, %v]",
						tt.attempt, got, tt.minExpected, tt.maxExpected)
				}
			}
		})
	}
}

func TestSleepRespectsContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := Sleep(ctx, 5*time.Second)
	elapsed := time.Since(start)

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if elapsed > time.Second {
		t.Errorf("Sleep did not return promptly on cancellation: %v", elapsed)
	}
}

func TestSleepZeroDuration(t *testing.T) {
	t.Parallel()

	if err := Sleep(context.Background(), 0); err != nil {
		t.Errorf("Sleep(0) = %v, want nil", err)
	}
}

func TestHasSufficientBudget(t *testing.T) {
	t.Parallel()

	// No deadline: always sufficient
	if !HasSufficientBudget(context.Background(), time.Minute) {
		t.Error("expected sufficient budget without deadline")
	}

	// Generous deadline
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if !HasSufficientBudget(ctx, time.Second) {
		t.Error("expected sufficient budget with 10s remaining")
	}

	// Tight deadline
	tightCtx, tightCancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer tightCancel()
	if HasSufficientBudget(tightCtx, time.Second) {
		t.Error("expected insufficient budget with 500ms remaining")
	}
}
