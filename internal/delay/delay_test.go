package delay

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"slices"
	"sync"
	"testing"
	"time"
)

func instantSleep(ctx context.Context, d time.Duration) error {
	return ctx.Err()
}

// scaledSleep sleeps a thousandth of d so completion order follows the
// drawn delays without slowing the suite down.
func scaledSleep(ctx context.Context, d time.Duration) error {
	return Sleep(ctx, d/1000)
}

func newTestWaiter(seed uint64, sleep SleepFunc) *Waiter {
	return New(WithSleep(sleep), WithRand(rand.New(rand.NewPCG(seed, seed))))
}

func TestWaitRandomWithinBounds(t *testing.T) {
	w := newTestWaiter(1, instantSleep)

	for i := 0; i < 100; i++ {
		d, err := w.WaitRandom(context.Background(), 10*time.Second)
		if err != nil {
			t.Fatalf("WaitRandom() error = %v", err)
		}
		if d < 0 || d > 10*time.Second {
			t.Fatalf("WaitRandom() = %v, want within [0, 10s]", d)
		}
	}
}

func TestWaitRandomZeroMax(t *testing.T) {
	w := newTestWaiter(1, instantSleep)

	d, err := w.WaitRandom(context.Background(), 0)
	if err != nil {
		t.Fatalf("WaitRandom() error = %v", err)
	}
	if d != 0 {
		t.Fatalf("WaitRandom() = %v, want 0", d)
	}
}

func TestWaitRandomBounds(t *testing.T) {
	tests := []struct {
		name string
		max  time.Duration
	}{
		{name: "one nanosecond", max: 1},
		{name: "one hour", max: time.Hour},
		{name: "largest duration", max: time.Duration(math.MaxInt64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, w := range []*Waiter{newTestWaiter(3, instantSleep), New(WithSleep(instantSleep))} {
				for i := 0; i < 20; i++ {
					d, err := w.WaitRandom(context.Background(), tt.max)
					if err != nil {
						t.Fatalf("WaitRandom(%v) error = %v", tt.max, err)
					}
					if d < 0 || d > tt.max {
						t.Fatalf("WaitRandom(%v) = %v, want within [0, max]", tt.max, d)
					}
				}
			}
		})
	}
}

func TestWaitRandomSleepsDrawnDelay(t *testing.T) {
	var slept time.Duration
	w := newTestWaiter(7, func(ctx context.Context, d time.Duration) error {
		slept = d
		return nil
	})

	d, err := w.WaitRandom(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("WaitRandom() error = %v", err)
	}
	if d != slept {
		t.Fatalf("WaitRandom() = %v, slept %v", d, slept)
	}
}

func TestNegativeMax(t *testing.T) {
	w := newTestWaiter(1, instantSleep)
	ctx := context.Background()

	if _, err := w.WaitRandom(ctx, -time.Second); !errors.Is(err, ErrNegativeDelay) {
		t.Fatalf("WaitRandom() error = %v, want ErrNegativeDelay", err)
	}
	if _, err := w.WaitN(ctx, 3, -time.Second); !errors.Is(err, ErrNegativeDelay) {
		t.Fatalf("WaitN() error = %v, want ErrNegativeDelay", err)
	}
	if _, err := w.TaskWaitN(ctx, 3, -time.Second); !errors.Is(err, ErrNegativeDelay) {
		t.Fatalf("TaskWaitN() error = %v, want ErrNegativeDelay", err)
	}
}

func TestWaitNReturnsAscendingDelays(t *testing.T) {
	for _, n := range []int{0, 1, 5, 10, 50} {
		w := newTestWaiter(uint64(n)+3, scaledSleep)

		delays, err := w.WaitN(context.Background(), n, 5*time.Second)
		if err != nil {
			t.Fatalf("WaitN(%d) error = %v", n, err)
		}
		if len(delays) != n {
			t.Fatalf("len(WaitN(%d)) = %d", n, len(delays))
		}
		if !slices.IsSorted(delays) {
			t.Fatalf("WaitN(%d) = %v, want ascending", n, delays)
		}
	}
}

func TestWaitNSortsRegardlessOfCompletionOrder(t *testing.T) {
	// Longer draws finish first here, the reverse of real sleeping.
	w := newTestWaiter(11, func(ctx context.Context, d time.Duration) error {
		return Sleep(ctx, (10*time.Second-d)/1000)
	})

	delays, err := w.WaitN(context.Background(), 20, 10*time.Second)
	if err != nil {
		t.Fatalf("WaitN() error = %v", err)
	}
	if !slices.IsSorted(delays) {
		t.Fatalf("WaitN() = %v, want ascending", delays)
	}
}

func TestWaitNNegativeCount(t *testing.T) {
	w := newTestWaiter(1, instantSleep)

	delays, err := w.WaitN(context.Background(), -4, time.Second)
	if err != nil {
		t.Fatalf("WaitN() error = %v", err)
	}
	if len(delays) != 0 {
		t.Fatalf("WaitN() = %v, want empty", delays)
	}
}

func TestWaitNPropagatesSleepError(t *testing.T) {
	boom := errors.New("boom")
	var mu sync.Mutex
	calls := 0
	w := newTestWaiter(1, func(ctx context.Context, d time.Duration) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 2 {
			return boom
		}
		return nil
	})

	if _, err := w.WaitN(context.Background(), 5, time.Second); !errors.Is(err, boom) {
		t.Fatalf("WaitN() error = %v, want boom", err)
	}
}

func TestWaitNCanceled(t *testing.T) {
	w := New()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := w.WaitN(ctx, 3, time.Hour)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("WaitN() error = %v, want deadline exceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("WaitN() took %v after cancel", elapsed)
	}
}

func TestTaskWaitRandom(t *testing.T) {
	w := newTestWaiter(5, scaledSleep)

	task := w.TaskWaitRandom(context.Background(), time.Second)
	d, err := task.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if d < 0 || d > time.Second {
		t.Fatalf("Wait() = %v, want within [0, 1s]", d)
	}

	select {
	case <-task.Done():
	default:
		t.Fatal("Done() not closed after Wait returned")
	}
}

func TestTaskWaitCanceledContext(t *testing.T) {
	w := New()
	task := w.TaskWaitRandom(context.Background(), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := task.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Wait() error = %v, want canceled", err)
	}
}

func TestTaskWaitN(t *testing.T) {
	for _, n := range []int{0, 1, 7, 25} {
		w := newTestWaiter(uint64(n)+100, scaledSleep)

		delays, err := w.TaskWaitN(context.Background(), n, 3*time.Second)
		if err != nil {
			t.Fatalf("TaskWaitN(%d) error = %v", n, err)
		}
		if len(delays) != n {
			t.Fatalf("len(TaskWaitN(%d)) = %d", n, len(delays))
		}
		if !slices.IsSorted(delays) {
			t.Fatalf("TaskWaitN(%d) = %v, want ascending", n, delays)
		}
	}
}

func TestWaitNAndTaskWaitNAgree(t *testing.T) {
	a, err := newTestWaiter(42, instantSleep).WaitN(context.Background(), 10, time.Second)
	if err != nil {
		t.Fatalf("WaitN() error = %v", err)
	}
	b, err := newTestWaiter(42, instantSleep).TaskWaitN(context.Background(), 10, time.Second)
	if err != nil {
		t.Fatalf("TaskWaitN() error = %v", err)
	}

	// Same seed draws the same multiset of delays.
	if !slices.Equal(a, b) {
		t.Fatalf("WaitN() = %v, TaskWaitN() = %v", a, b)
	}
}

func TestMeasureTime(t *testing.T) {
	w := newTestWaiter(9, scaledSleep)

	avg, err := w.MeasureTime(context.Background(), 5, 2*time.Second)
	if err != nil {
		t.Fatalf("MeasureTime() error = %v", err)
	}
	if avg < 0 || avg > time.Second {
		t.Fatalf("MeasureTime() = %v, want a small positive average", avg)
	}
}

func TestMeasureTimeNoRoutines(t *testing.T) {
	w := newTestWaiter(1, instantSleep)

	for _, n := range []int{0, -1} {
		if _, err := w.MeasureTime(context.Background(), n, time.Second); !errors.Is(err, ErrNoRoutines) {
			t.Fatalf("MeasureTime(%d) error = %v, want ErrNoRoutines", n, err)
		}
	}
}

func TestSleepHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("Sleep() error = %v, want canceled", err)
	}
	if err := Sleep(context.Background(), 0); err != nil {
		t.Fatalf("Sleep(0) error = %v", err)
	}
}
