// Package debounce coalesces bursts of events into a single delivery,
// driven by caller-supplied timestamps rather than timers.
package debounce

import "time"

// DefaultQuiet is the quiet period used when Quiet is zero.
const DefaultQuiet = 100 * time.Millisecond

// Debouncer holds the latest value of a burst and releases it once no new
// value has arrived for Quiet.
type Debouncer[T any] struct {
	Quiet time.Duration

	value   T
	last    time.Time
	pending bool
}

// New returns a debouncer with the given quiet period.
func New[T any](quiet time.Duration) *Debouncer[T] {
	return &Debouncer[T]{Quiet: quiet}
}

// Trigger records v as the latest value at time now and restarts the quiet
// period.
func (d *Debouncer[T]) Trigger(now time.Time, v T) {
	d.value = v
	d.last = now
	d.pending = true
}

// Poll returns the pending value once the quiet period has elapsed since
// the last Trigger. Each burst fires at most once.
func (d *Debouncer[T]) Poll(now time.Time) (T, bool) {
	var zero T
	if !d.pending || now.Sub(d.last) < d.quiet() {
		return zero, false
	}
	d.pending = false
	v := d.value
	d.value = zero
	return v, true
}

func (d *Debouncer[T]) quiet() time.Duration {
	if d.Quiet <= 0 {
		return DefaultQuiet
	}
	return d.Quiet
}
