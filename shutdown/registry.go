// Package shutdown runs the process's cleanup handlers in priority order
// once the first interrupt arrives.
package shutdown

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Func is a cleanup handler. It should respect ctx and return promptly once
// it is cancelled.
type Func func(ctx context.Context) error

type entry struct {
	name     string
	fn       Func
	priority int // lower = earlier execution
}

// Registry holds cleanup handlers ordered by priority. Handlers with equal
// priority run in registration order.
//
// Typical priority ranges:
//   - 0-9: stop accepting work (HTTP server)
//   - 10-19: drain background writers (audit log)
//   - 20-29: close resources (database)
//   - 90+: flush logs
type Registry struct {
	mu      sync.Mutex
	entries []entry
	closed  bool
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds fn under name. Registration after Run is a no-op.
func (r *Registry) Register(name string, priority int, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.entries = append(r.entries, entry{name: name, fn: fn, priority: priority})
}

// Run calls every handler in priority order, even when earlier ones fail.
// The returned error joins each failure, prefixed with the handler name.
// Run only executes once; later calls return nil.
func (r *Registry) Run(ctx context.Context, observe func(name string, took time.Duration, err error)) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	sorted := r.sortedLocked()
	r.mu.Unlock()

	var errs []error
	for _, e := range sorted {
		start := time.Now()
		err := e.fn(ctx)
		if observe != nil {
			observe(e.name, time.Since(start), err)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.name, err))
		}
	}
	return errors.Join(errs...)
}

// Names returns handler names in execution order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	sorted := r.sortedLocked()
	names := make([]string, len(sorted))
	for i, e := range sorted {
		names[i] = e.name
	}
	return names
}

// Count returns the number of registered handlers.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) sortedLocked() []entry {
	sorted := make([]entry, len(r.entries))
	copy(sorted, r.entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].priority < sorted[j].priority
	})
	return sorted
}
