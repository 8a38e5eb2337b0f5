package worker

import (
	"context"
	"sync"
	"time"
)

// Debouncer runs at most one pending task after a quiet period.
// Every Trigger or Cancel advances a generation counter; a task can ask
// whether its generation is still the latest before publishing results.
type Debouncer struct {
	delay time.Duration

	mu     sync.Mutex
	gen    uint64
	timer  *time.Timer
	cancel context.CancelFunc
	closed bool
	wg     sync.WaitGroup
}

// NewDebouncer creates a debouncer with the given quiet period
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger cancels any pending or running task and schedules fn after the delay.
// fn receives a context that is cancelled when a newer cycle starts.
// After Close, Trigger does nothing.
func (d *Debouncer) Trigger(fn func(ctx context.Context, gen uint64)) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return d.gen
	}
	d.stopLocked()
	d.gen++
	gen := d.gen

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.wg.Add(1)
	d.timer = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		defer cancel()
		if ctx.Err() != nil {
			return
		}
		fn(ctx, gen)
	})

	return gen
}

// Cancel stops the pending task and invalidates any in-flight one
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.gen++
}

// IsCurrent reports whether gen belongs to the latest cycle
func (d *Debouncer) IsCurrent(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return gen == d.gen
}

// Generation returns the latest cycle number
func (d *Debouncer) Generation() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gen
}

// Close cancels the pending task, invalidates any in-flight one and blocks
// until every started task has returned.
func (d *Debouncer) Close() {
	d.mu.Lock()
	d.closed = true
	d.stopLocked()
	d.gen++
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil && d.timer.Stop() {
		// The callback will never run, so release its slot here.
		d.wg.Done()
	}
	if d.cancel != nil {
		d.cancel()
	}
	d.timer = nil
	d.cancel = nil
}
