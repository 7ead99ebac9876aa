package listing

import (
	"sync"
	"time"
)

// Debouncer delays a fast-changing value until it has been stable for a
// fixed interval, then hands it to the emit callback. Values equal to the
// last emitted one are not re-emitted.
type Debouncer[T comparable] struct {
	mu      sync.Mutex
	clock   Clock
	delay   time.Duration
	emit    func(T)
	timer   Timer
	gen     uint64
	last    T
	stopped bool
}

// NewDebouncer returns a Debouncer that starts out having emitted initial.
func NewDebouncer[T comparable](clock Clock, delay time.Duration, initial T, emit func(T)) *Debouncer[T] {
	if clock == nil {
		clock = WallClock()
	}
	return &Debouncer[T]{
		clock: clock,
		delay: delay,
		emit:  emit,
		last:  initial,
	}
}

// Set records a new raw value and restarts the quiet period.
func (d *Debouncer[T]) Set(v T) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	gen := d.gen

	if d.delay <= 0 {
		d.mu.Unlock()
		d.fire(gen, v)
		return
	}
	d.timer = d.clock.AfterFunc(d.delay, func() { d.fire(gen, v) })
	d.mu.Unlock()
}

// Flush emits a pending value immediately, if there is one.
func (d *Debouncer[T]) Flush(v T) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	gen := d.gen
	d.mu.Unlock()
	d.fire(gen, v)
}

// Pending reports whether a value is waiting for its quiet period.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Value returns the last emitted value.
func (d *Debouncer[T]) Value() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

// Stop cancels any pending emission. The Debouncer is unusable afterwards.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer[T]) fire(gen uint64, v T) {
	d.mu.Lock()
	// A timer that lost the race with Set or Stop still runs; gen tells.
	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	if v == d.last {
		d.mu.Unlock()
		return
	}
	d.last = v
	emit := d.emit
	d.mu.Unlock()

	if emit != nil {
		emit(v)
	}
}
