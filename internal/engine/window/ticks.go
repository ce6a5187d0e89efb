package window

import (
	"context"
	"time"
)

// Swapper is the part of a window VSyncTicks needs.
type Swapper interface {
	SwapBuffers()
}

// VSyncTicks produces one timestamp per display refresh. Each call to Next
// runs BeforeSwap (event pumping and presenting the last frame), swaps,
// and reports the time the swap returned.
type VSyncTicks struct {
	Window     Swapper
	BeforeSwap func() error
	Now        func() time.Time
}

// Next implements loop.TickSource.
func (v *VSyncTicks) Next(ctx context.Context) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	if v.BeforeSwap != nil {
		if err := v.BeforeSwap(); err != nil {
			return time.Time{}, err
		}
	}
	v.Window.SwapBuffers()
	if v.Now != nil {
		return v.Now(), nil
	}
	return time.Now(), nil
}
