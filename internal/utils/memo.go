package utils

import (
	"context"
	"sync"
)

// Memo caches the result of a zero-argument computation for the lifetime of
// the value holding it. Failed computations are not stored.
type Memo[T any] struct {
	mu      sync.Mutex
	compute func(context.Context) (T, error)
	value   T
	done    bool
}

func NewMemo[T any](compute func(context.Context) (T, error)) *Memo[T] {
	return &Memo[T]{compute: compute}
}

// Get returns the stored value, computing it on the first successful call.
func (m *Memo[T]) Get(ctx context.Context) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.done {
		return m.value, nil
	}

	v, err := m.compute(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	m.value = v
	m.done = true
	return v, nil
}

// Cached reports whether a value is stored.
func (m *Memo[T]) Cached() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.done
}

// Reset drops the stored value so the next Get recomputes.
func (m *Memo[T]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero T
	m.value = zero
	m.done = false
}
