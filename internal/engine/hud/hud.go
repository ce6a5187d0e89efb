// Package hud draws the viewer's on-screen controls: preset and capture
// buttons, the recording timer, and load progress or errors.
package hud

import "fmt"

// HUD is an immediate-mode overlay. Each frame it lays out from the
// current status, reacts to the mouse and draws.
type HUD struct {
	renderer *Renderer
	input    *InputState
	metrics  Metrics
	layout   Layout

	width, height int
	active        ButtonID
}

// New creates the HUD and its GL resources.
func New(width, height int, pixelScale float32) (*HUD, error) {
	r, err := NewRenderer(width, height, NewFont())
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}
	return &HUD{
		renderer: r,
		input:    &InputState{},
		metrics:  DefaultMetrics(pixelScale),
		width:    width,
		height:   height,
	}, nil
}

// Close releases resources.
func (h *HUD) Close() {
	if h.renderer != nil {
		h.renderer.Close()
	}
}

// Resize updates the drawable size and pixel scale.
func (h *HUD) Resize(width, height int, pixelScale float32) {
	h.width, h.height = width, height
	h.metrics = DefaultMetrics(pixelScale)
	h.renderer.Resize(width, height)
}

// Input returns the input state for event processing to fill.
func (h *HUD) Input() *InputState {
	return h.input
}

// Covers reports whether (x, y) in drawable pixels is over a control, as
// laid out in the last frame.
func (h *HUD) Covers(x, y float32) bool {
	return h.layout.Covers(x, y)
}

// Frame draws the scene texture and the overlay for st and returns the
// button clicked this frame, if any.
func (h *HUD) Frame(st Status, sceneTex uint32) (ButtonID, bool) {
	h.input.Update()
	defer h.input.EndFrame()

	h.layout = NewLayout(h.width, h.height, h.metrics, st)

	var clicked ButtonID
	var ok bool
	if h.input.Clicked() {
		clicked, ok = h.layout.HitTest(h.input.MouseX, h.input.MouseY)
		if ok {
			h.active = clicked
		}
	}
	if h.input.MouseLeftReleased {
		h.active = ButtonNone
	}

	h.renderer.DrawSceneTexture(0, 0, float32(h.width), float32(h.height), sceneTex)
	h.draw(st)
	return clicked, ok
}

func (h *HUD) draw(st Status) {
	r := h.renderer
	m := h.metrics
	l := h.layout

	r.Begin()
	for _, b := range l.Buttons {
		bg, fg := ColorButtonNormal, ColorText
		switch {
		case !b.Enabled:
			bg, fg = ColorButtonNormal.Darken(0.3), ColorTextDim
		case b.ID == h.active:
			bg = ColorButtonActive
		case b.ID == ButtonRecord && st.Recording:
			bg = ColorRecording
		case b.Rect.Contains(h.input.MouseX, h.input.MouseY):
			bg = ColorButtonHover
		}
		r.DrawRect(b.Rect, bg)
		r.DrawRectOutline(b.Rect, 1, ColorPanelBorder)

		tw, th := r.font.MeasureText(b.Label, m.TextScale)
		r.DrawText(b.Rect.X+(b.Rect.W-tw)/2, b.Rect.Y+(b.Rect.H-th)/2, b.Label, m.TextScale, fg)
	}

	if l.TimerText != "" {
		r.DrawRect(l.Timer, ColorPanelBg)
		th := m.GlyphH * m.TextScale
		r.DrawText(l.Timer.X+m.Padding, l.Timer.Y+(l.Timer.H-th)/2, l.TimerText, m.TextScale, ColorRecording)
	}

	if l.StatusText != "" {
		fg := ColorText
		if l.StatusError {
			fg = ColorError
		}
		r.DrawText(l.StatusLine.X, l.StatusLine.Y, l.StatusText, m.TextScale, fg)
	}

	if l.ProgressBar.W > 0 {
		bar := l.ProgressBar
		r.DrawRect(bar, ColorPanelBg)
		fill := bar
		fill.W = bar.W * float32(l.Progress)
		r.DrawRect(fill, ColorHighlight)
		r.DrawRectOutline(bar, 1, ColorPanelBorder)
	}
	r.End()
}
