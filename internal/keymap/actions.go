// Package keymap maps keyboard keys to TV remote buttons and app actions.
package keymap

import "github.com/llehouerou/wavestv/internal/lifecycle"

// Action represents a user-triggerable action.
type Action string

const (
	// App actions
	ActionQuit       Action = "quit"
	ActionHelp       Action = "help"
	ActionBackground Action = "background" // simulate leaving and returning to the app
	ActionShuffle    Action = "shuffle"

	// Remote directional pad
	ActionUp     Action = "up"
	ActionDown   Action = "down"
	ActionLeft   Action = "left"
	ActionRight  Action = "right"
	ActionSelect Action = "select"
	ActionMenu   Action = "menu"
	ActionBack   Action = "back"

	// Remote transport buttons
	ActionPlayPause    Action = "play_pause"
	ActionSkipBackward Action = "skip_backward"
	ActionSkipForward  Action = "skip_forward"
	ActionPageLeft     Action = "page_left"
	ActionPageRight    Action = "page_right"
)

// remoteButtons maps actions to the remote button they emulate.
var remoteButtons = map[Action]lifecycle.Button{
	ActionUp:           lifecycle.ButtonUp,
	ActionDown:         lifecycle.ButtonDown,
	ActionLeft:         lifecycle.ButtonLeft,
	ActionRight:        lifecycle.ButtonRight,
	ActionSelect:       lifecycle.ButtonSelect,
	ActionMenu:         lifecycle.ButtonMenu,
	ActionBack:         lifecycle.ButtonBack,
	ActionPlayPause:    lifecycle.ButtonPlayPause,
	ActionSkipBackward: lifecycle.ButtonSkipBackward,
	ActionSkipForward:  lifecycle.ButtonSkipForward,
	ActionPageLeft:     lifecycle.ButtonPageLeft,
	ActionPageRight:    lifecycle.ButtonPageRight,
}

// Button returns the remote button an action emulates.
func (a Action) Button() (lifecycle.Button, bool) {
	b, ok := remoteButtons[a]
	return b, ok
}
