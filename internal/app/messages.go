package app

import (
	"time"

	"github.com/llehouerou/wavestv/internal/lifecycle"
	"github.com/llehouerou/wavestv/internal/playback"
	"github.com/llehouerou/wavestv/internal/sequencer"
	"github.com/llehouerou/wavestv/internal/state"
)

// tickMsg refreshes time-dependent parts of the view.
type tickMsg time.Time

// trackChangedMsg is a playback.TrackChange of the player controller.
type trackChangedMsg playback.TrackChange

// stateChangedMsg is a playback.StateChange of the player controller.
type stateChangedMsg playback.StateChange

// playbackErrorMsg is a playback.ErrorEvent of the player controller.
type playbackErrorMsg playback.ErrorEvent

// playbackClosedMsg is sent when the player subscription is closed.
type playbackClosedMsg struct{}

// exitMsg is a sequencer exit: leave the player screen.
type exitMsg sequencer.ExitReason

// openDetailMsg opens the detail screen after the selection delay. Stale
// tokens are ignored.
type openDetailMsg struct {
	token   int
	albumID int
}

// keyUpMsg releases an emulated remote button.
type keyUpMsg lifecycle.Button

// startedMsg reports the result of starting the player queue.
type startedMsg struct {
	err error
}

// coverMsg carries the resolved artwork of a session.
type coverMsg struct {
	sessionID string
	path      string
}

// recentMsg carries the play history for the home screen.
type recentMsg []state.Play

// closedMsg is sent once the services are shut down.
type closedMsg struct {
	err error
}
