// Package loop paces the render loop against a tick source.
package loop

import "time"

// FrameLimiter accepts at most one tick per Interval cell of a grid
// anchored at the first tick. Rejected ticks keep the previous reference;
// accepted ticks snap the reference back onto the grid so drift does not
// accumulate. A late tick may therefore be followed closely by the next
// on-grid one, and a window of length T holds at most ceil(T/Interval)+1
// accepts.
type FrameLimiter struct {
	Interval time.Duration

	last   time.Time
	primed bool
}

// NewFrameLimiter returns a limiter for fps frames per second. A
// non-positive fps accepts every tick.
func NewFrameLimiter(fps int) *FrameLimiter {
	if fps <= 0 {
		return &FrameLimiter{}
	}
	return &FrameLimiter{Interval: time.Second / time.Duration(fps)}
}

// Accept reports whether a tick at now should render.
func (l *FrameLimiter) Accept(now time.Time) bool {
	if !l.primed {
		l.primed = true
		l.last = now
		return true
	}
	if l.Interval <= 0 {
		l.last = now
		return true
	}
	elapsed := now.Sub(l.last)
	if elapsed < l.Interval {
		return false
	}
	l.last = now.Add(-(elapsed % l.Interval))
	return true
}

// Reset forgets the reference so the next tick is accepted.
func (l *FrameLimiter) Reset() {
	l.primed = false
}
