package hud

// InputState holds the mouse state the HUD reacts to.
type InputState struct {
	MouseX float32
	MouseY float32

	MouseLeftDown bool

	// MouseLeftClicked is set by event processing for presses that begin
	// and end between two frames, which edge detection alone would miss.
	MouseLeftClicked bool

	MouseLeftPressed  bool
	MouseLeftReleased bool

	prevMouseLeft bool
}

// Update prepares input state for a new frame.
// Call this at the start of each frame after updating raw input values.
func (i *InputState) Update() {
	i.MouseLeftPressed = i.MouseLeftDown && !i.prevMouseLeft
	i.MouseLeftReleased = !i.MouseLeftDown && i.prevMouseLeft
	i.prevMouseLeft = i.MouseLeftDown
}

// EndFrame clears per-frame input state.
func (i *InputState) EndFrame() {
	i.MouseLeftClicked = false
}

// Clicked reports a press this frame, consuming it.
func (i *InputState) Clicked() bool {
	c := i.MouseLeftPressed || i.MouseLeftClicked
	i.MouseLeftClicked = false
	i.MouseLeftPressed = false
	return c
}
