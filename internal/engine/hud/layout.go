package hud

import (
	"fmt"
	"math"
)

// Rect is an axis-aligned rectangle in drawable pixels.
type Rect struct {
	X, Y, W, H float32
}

// Contains reports whether (x, y) lies inside r.
func (r Rect) Contains(x, y float32) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// ButtonID names a HUD button.
type ButtonID int

const (
	ButtonNone ButtonID = iota
	ButtonTop
	ButtonSide
	ButtonDriver
	ButtonScreenshot
	ButtonRecord
)

// Button is one laid-out button.
type Button struct {
	ID      ButtonID
	Label   string
	Rect    Rect
	Enabled bool
}

// Status is what the HUD shows besides the buttons.
type Status struct {
	Loading  bool
	Progress float64
	Error    string

	// Message is a transient line such as the last saved path.
	Message   string
	Ready     bool
	Recording bool
	Encoding  bool
	Timer     string
}

// Metrics are the sizes the layout is computed from.
type Metrics struct {
	GlyphW, GlyphH float32
	TextScale      float32
	Margin         float32
	Padding        float32
	Gap            float32
	ButtonH        float32
}

// DefaultMetrics returns metrics for the 7x13 font at a given pixel scale.
func DefaultMetrics(pixelScale float32) Metrics {
	if pixelScale <= 0 {
		pixelScale = 1
	}
	return Metrics{
		GlyphW:    7,
		GlyphH:    13,
		TextScale: 2 * pixelScale,
		Margin:    12 * pixelScale,
		Padding:   10 * pixelScale,
		Gap:       6 * pixelScale,
		ButtonH:   36 * pixelScale,
	}
}

func (m Metrics) textWidth(s string) float32 {
	return float32(len(s)) * m.GlyphW * m.TextScale
}

// Layout places every HUD element for one frame.
type Layout struct {
	Buttons     []Button
	Timer       Rect
	TimerText   string
	StatusLine  Rect
	StatusText  string
	StatusError bool
	ProgressBar Rect
	Progress    float64
}

// NewLayout arranges the button row along the bottom edge with the status
// line above it and the timer at the end of the row.
func NewLayout(width, height int, m Metrics, st Status) Layout {
	var l Layout

	recordLabel := "Record"
	switch {
	case st.Encoding:
		recordLabel = "Encoding..."
	case st.Recording:
		recordLabel = "Stop"
	}

	specs := []struct {
		id      ButtonID
		label   string
		enabled bool
	}{
		{ButtonTop, "Top", st.Ready},
		{ButtonSide, "Side", st.Ready},
		{ButtonDriver, "Driver", st.Ready},
		{ButtonScreenshot, "Screenshot", !st.Encoding},
		{ButtonRecord, recordLabel, !st.Encoding},
	}

	x := m.Margin
	y := float32(height) - m.Margin - m.ButtonH
	for _, s := range specs {
		w := m.textWidth(s.label) + 2*m.Padding
		l.Buttons = append(l.Buttons, Button{
			ID:      s.id,
			Label:   s.label,
			Rect:    Rect{x, y, w, m.ButtonH},
			Enabled: s.enabled,
		})
		x += w + m.Gap
	}

	if st.Recording && st.Timer != "" {
		l.TimerText = "REC " + st.Timer
		l.Timer = Rect{x + m.Gap, y, m.textWidth(l.TimerText) + 2*m.Padding, m.ButtonH}
	}

	lineH := m.GlyphH * m.TextScale
	statusY := y - m.Gap - lineH
	switch {
	case st.Error != "":
		l.StatusText = st.Error
		l.StatusError = true
	case st.Loading:
		l.StatusText = ProgressText(st.Progress)
		l.Progress = clamp01(st.Progress)
		barW := min(float32(width)-2*m.Margin, 320*m.TextScale/2)
		l.ProgressBar = Rect{m.Margin, statusY - m.Gap - 6*m.TextScale/2, barW, 6 * m.TextScale / 2}
	case st.Message != "":
		l.StatusText = st.Message
	}
	if l.StatusText != "" {
		l.StatusLine = Rect{m.Margin, statusY, m.textWidth(l.StatusText), lineH}
	}
	return l
}

// HitTest returns the enabled button under (x, y).
func (l Layout) HitTest(x, y float32) (ButtonID, bool) {
	for _, b := range l.Buttons {
		if b.Enabled && b.Rect.Contains(x, y) {
			return b.ID, true
		}
	}
	return ButtonNone, false
}

// Covers reports whether (x, y) is over any button, enabled or not, so
// drags that start there do not orbit the camera.
func (l Layout) Covers(x, y float32) bool {
	for _, b := range l.Buttons {
		if b.Rect.Contains(x, y) {
			return true
		}
	}
	return false
}

// ProgressText formats a load ratio as "Loading 42%".
func ProgressText(ratio float64) string {
	return fmt.Sprintf("Loading %d%%", int(math.Floor(clamp01(ratio)*100)))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
