// Package watch reloads the pattern library when its workspace files change.
package watch

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid triggers into one callback carrying the value
// of the last trigger.
type Debouncer[T any] struct {
	window   time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	gen      uint64
	last     T
	callback func(T)
}

func NewDebouncer[T any](window time.Duration, callback func(T)) *Debouncer[T] {
	return &Debouncer[T]{
		window:   window,
		callback: callback,
	}
}

// Trigger records v and restarts the window.
func (d *Debouncer[T]) Trigger(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.last = v
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.window, func() { d.fire(gen) })
}

// fire runs the callback unless a later Trigger or Stop superseded the
// timer that called it.
func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	v := d.last
	d.timer = nil
	d.mu.Unlock()
	d.callback(v)
}

// Stop cancels any pending callback.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
