// Package stream produces a short paced sequence of random numbers and
// collects it, alone or several sequences at once.
package stream

import (
	"context"
	"iter"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/kirksw/ghorg/internal/delay"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultCount    = 10
	DefaultInterval = time.Second
	DefaultMax      = 10.0
	DefaultParallel = 4
)

// Generator yields Count values in [0, Max), waiting Interval before each.
type Generator struct {
	Count    int
	Interval time.Duration
	Max      float64

	sleep delay.SleepFunc
	mu    sync.Mutex
	rng   *rand.Rand
}

type Option func(*Generator)

func WithSleep(f delay.SleepFunc) Option {
	return func(g *Generator) {
		g.sleep = f
	}
}

func WithRand(r *rand.Rand) Option {
	return func(g *Generator) {
		g.rng = r
	}
}

func New(opts ...Option) *Generator {
	g := &Generator{
		Count:    DefaultCount,
		Interval: DefaultInterval,
		Max:      DefaultMax,
		sleep:    delay.Sleep,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Values yields until Count values were produced or ctx ends.
func (g *Generator) Values(ctx context.Context) iter.Seq[float64] {
	return func(yield func(float64) bool) {
		for i := 0; i < g.Count; i++ {
			if err := g.sleep(ctx, g.Interval); err != nil {
				return
			}
			if !yield(g.next()) {
				return
			}
		}
	}
}

// Collect gathers every value of one sequence.
func (g *Generator) Collect(ctx context.Context) ([]float64, error) {
	values := make([]float64, 0, max(g.Count, 0))
	for v := range g.Values(ctx) {
		values = append(values, v)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

// CollectParallel runs parallel Collect calls at once.
func (g *Generator) CollectParallel(ctx context.Context, parallel int) ([][]float64, error) {
	eg, egctx := errgroup.WithContext(ctx)

	results := make([][]float64, max(parallel, 0))
	for i := range results {
		eg.Go(func() error {
			values, err := g.Collect(egctx)
			if err != nil {
				return err
			}
			results[i] = values
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// MeasureRuntime returns the wall time of CollectParallel. Because the
// sequences run concurrently it stays close to Count*Interval.
func (g *Generator) MeasureRuntime(ctx context.Context, parallel int) (time.Duration, error) {
	start := time.Now()
	if _, err := g.CollectParallel(ctx, parallel); err != nil {
		return 0, err
	}
	elapsed := time.Since(start)

	log.WithFields(log.Fields{"parallel": parallel, "elapsed": elapsed.String()}).Debug("measured runtime")
	return elapsed, nil
}

func (g *Generator) next() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.rng != nil {
		return g.rng.Float64() * g.Max
	}
	return rand.Float64() * g.Max
}
