// Package delay runs randomly delayed waits concurrently and gathers how
// long each one slept.
package delay

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/b97tsk/async"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNegativeDelay = errors.New("max delay must not be negative")
	ErrNoRoutines    = errors.New("routine count must be positive")
)

// SleepFunc blocks for d or until ctx ends.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc backed by a real timer.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type Waiter struct {
	sleep SleepFunc
	// random returns a value in [0, max].
	random func(max time.Duration) time.Duration
}

type Option func(*Waiter)

func WithSleep(f SleepFunc) Option {
	return func(w *Waiter) {
		w.sleep = f
	}
}

// WithRand draws delays from r. r is shared by concurrent waits and is
// guarded internally.
func WithRand(r *rand.Rand) Option {
	return func(w *Waiter) {
		var mu sync.Mutex
		w.random = func(max time.Duration) time.Duration {
			mu.Lock()
			defer mu.Unlock()
			return drawDelay(r.Uint64N, max)
		}
	}
}

func New(opts ...Option) *Waiter {
	w := &Waiter{
		sleep: Sleep,
		random: func(max time.Duration) time.Duration {
			return drawDelay(rand.Uint64N, max)
		},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WaitRandom sleeps a uniformly random duration in [0, max] and returns it.
func (w *Waiter) WaitRandom(ctx context.Context, max time.Duration) (time.Duration, error) {
	if max < 0 {
		return 0, ErrNegativeDelay
	}

	d := w.random(max)
	if err := w.sleep(ctx, d); err != nil {
		return 0, err
	}
	return d, nil
}

// WaitN runs n WaitRandom calls at once. Each result is handed to a
// single-threaded executor as it completes and inserted in order, so the
// returned delays are ascending.
func (w *Waiter) WaitN(ctx context.Context, n int, max time.Duration) ([]time.Duration, error) {
	if max < 0 {
		return nil, ErrNegativeDelay
	}
	n = max0(n)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var goroutines sync.WaitGroup

	var executor async.Executor
	executor.Autorun(func() {
		goroutines.Add(1)
		go func() {
			defer goroutines.Done()
			executor.Run()
		}()
	})

	// Owned by the executor.
	var (
		pending  async.WaitGroup
		delays   = make([]time.Duration, 0, n)
		firstErr error
	)
	pending.Add(n)

	done := make(chan struct{})
	executor.Spawn(pending.Await().Then(async.Do(func() { close(done) })))

	for i := 0; i < n; i++ {
		goroutines.Add(1)
		go func() {
			defer goroutines.Done()

			d, err := w.WaitRandom(ctx, max)
			executor.Spawn(async.Do(func() {
				defer pending.Done()
				if err != nil {
					if firstErr == nil {
						firstErr = err
						cancel()
					}
					return
				}
				pos, _ := slices.BinarySearch(delays, d)
				delays = slices.Insert(delays, pos, d)
			}))
		}()
	}

	<-done
	goroutines.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	log.WithFields(log.Fields{"n": n, "max": max.String()}).Debug("wait_n complete")
	return delays, nil
}

// Task is a WaitRandom call running in the background.
type Task struct {
	done  chan struct{}
	delay time.Duration
	err   error
}

// TaskWaitRandom starts WaitRandom and returns immediately.
func (w *Waiter) TaskWaitRandom(ctx context.Context, max time.Duration) *Task {
	t := &Task{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		t.delay, t.err = w.WaitRandom(ctx, max)
	}()
	return t
}

// Done is closed once the task has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finishes or ctx ends.
func (t *Task) Wait(ctx context.Context) (time.Duration, error) {
	select {
	case <-t.done:
		return t.delay, t.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// TaskWaitN starts n tasks, awaits all of them and returns the delays in
// ascending order.
func (w *Waiter) TaskWaitN(ctx context.Context, n int, max time.Duration) ([]time.Duration, error) {
	if max < 0 {
		return nil, ErrNegativeDelay
	}
	n = max0(n)

	g, gctx := errgroup.WithContext(ctx)

	tasks := make([]*Task, n)
	for i := range tasks {
		tasks[i] = w.TaskWaitRandom(gctx, max)
	}

	delays := make([]time.Duration, n)
	for i, t := range tasks {
		g.Go(func() error {
			d, err := t.Wait(gctx)
			if err != nil {
				return err
			}
			delays[i] = d
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.Sort(delays)
	return delays, nil
}

// MeasureTime runs WaitN and returns the elapsed time divided by n.
func (w *Waiter) MeasureTime(ctx context.Context, n int, max time.Duration) (time.Duration, error) {
	if n <= 0 {
		return 0, fmt.Errorf("%w: got %d", ErrNoRoutines, n)
	}

	start := time.Now()
	if _, err := w.WaitN(ctx, n, max); err != nil {
		return 0, err
	}
	total := time.Since(start)

	return total / time.Duration(n), nil
}

// drawDelay picks a value in [0, max]. The bound is computed in uint64 so
// max may be math.MaxInt64.
func drawDelay(uint64N func(uint64) uint64, max time.Duration) time.Duration {
	return time.Duration(uint64N(uint64(max) + 1))
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
