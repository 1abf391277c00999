package playback

import (
	"time"

	"github.com/llehouerou/wavestv/internal/catalog"
	"github.com/llehouerou/wavestv/internal/errmsg"
)

// StateChange is emitted on every session state transition.
type StateChange struct {
	SessionID string
	Previous  State
	Current   State
}

// TrackChange is emitted once per session, when it first reaches Playing.
//
// The app handles track-related side effects (notifications, play history,
// media-control metadata) in response to this event.
type TrackChange struct {
	SessionID string
	Track     catalog.Track
	Thumbnail string
}

// EndReason tells why a session ended.
type EndReason int

const (
	// EndCompleted is a natural end of the media.
	EndCompleted EndReason = iota
	// EndError is an engine error event, handled like a natural end.
	EndError
	// EndRequested is an explicit EndCurrentSong call.
	EndRequested
)

// String returns the reason name.
func (r EndReason) String() string {
	switch r {
	case EndCompleted:
		return "completed"
	case EndError:
		return "error"
	case EndRequested:
		return "requested"
	default:
		return "unknown"
	}
}

// Ended is emitted when a session reaches Ended.
type Ended struct {
	SessionID string
	TrackID   int
	Reason    EndReason
}

// BufferingChange is emitted when the buffering indicator flips.
type BufferingChange struct {
	Buffering bool
}

// PositionChange is emitted when the sampled progress changes.
type PositionChange struct {
	Position time.Duration
	Duration time.Duration
}

// ErrorEvent is emitted when an operation fails. Errors never propagate to
// the caller as panics or returned engine errors.
type ErrorEvent struct {
	Operation errmsg.Op
	SessionID string
	TrackID   int
	Err       error
}
