package loop

import (
	"context"
	"errors"
	"time"
)

// ErrStop may be returned by a TickFunc to end Run without error.
var ErrStop = errors.New("loop: stop")

// TickSource yields frame timestamps, typically one per display refresh.
type TickSource interface {
	Next(ctx context.Context) (time.Time, error)
}

// TickFunc runs work for an accepted tick. dt is the time since the
// previous accepted tick, zero on the first.
type TickFunc func(now time.Time, dt time.Duration) error

// Stats counts what Run did.
type Stats struct {
	Ticks    int
	Accepted int
}

// Run pulls ticks from src until ctx is done, src fails, or fn returns an
// error. fn is called only for ticks the limiter accepts; other ticks are
// dropped and polling continues.
func Run(ctx context.Context, src TickSource, limiter *FrameLimiter, fn TickFunc) (Stats, error) {
	var (
		stats Stats
		prev  time.Time
	)
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		now, err := src.Next(ctx)
		if err != nil {
			return stats, err
		}
		stats.Ticks++
		if !limiter.Accept(now) {
			continue
		}
		stats.Accepted++

		var dt time.Duration
		if !prev.IsZero() {
			dt = now.Sub(prev)
		}
		prev = now

		if err := fn(now, dt); err != nil {
			if errors.Is(err, ErrStop) {
				return stats, nil
			}
			return stats, err
		}
	}
}

// SliceTicks replays fixed timestamps and then returns ErrExhausted.
type SliceTicks struct {
	Times []time.Time
	i     int
}

// ErrExhausted is returned by SliceTicks once every timestamp was used.
var ErrExhausted = errors.New("loop: tick source exhausted")

// Next returns the next recorded timestamp.
func (s *SliceTicks) Next(ctx context.Context) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	if s.i >= len(s.Times) {
		return time.Time{}, ErrExhausted
	}
	t := s.Times[s.i]
	s.i++
	return t, nil
}

// Uniform returns n timestamps spaced step apart from start.
func Uniform(start time.Time, step time.Duration, n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.Add(time.Duration(i) * step)
	}
	return out
}
