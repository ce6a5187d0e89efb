package input

import "github.com/veandco/go-sdl2/sdl"

// Action is a viewer command bound to a key.
type Action int

const (
	ActionNone Action = iota
	ActionPresetTop
	ActionPresetSide
	ActionPresetDriver
	ActionScreenshot
	ActionToggleRecording
	ActionQuit
)

var keyActions = map[sdl.Scancode]Action{
	sdl.SCANCODE_1:      ActionPresetTop,
	sdl.SCANCODE_KP_1:   ActionPresetTop,
	sdl.SCANCODE_2:      ActionPresetSide,
	sdl.SCANCODE_KP_2:   ActionPresetSide,
	sdl.SCANCODE_3:      ActionPresetDriver,
	sdl.SCANCODE_KP_3:   ActionPresetDriver,
	sdl.SCANCODE_P:      ActionScreenshot,
	sdl.SCANCODE_F12:    ActionScreenshot,
	sdl.SCANCODE_R:      ActionToggleRecording,
	sdl.SCANCODE_ESCAPE: ActionQuit,
}

// ActionFor maps a key press to its action. Auto-repeat presses map to
// nothing so holding R does not flip recording on and off.
func ActionFor(e Event) Action {
	if e.Type != EventKeyDown || e.Repeat {
		return ActionNone
	}
	return keyActions[e.Key]
}
