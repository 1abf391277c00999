// internal/playback/state.go
package playback

// State is the lifecycle state of a playback session.
//
//	Idle ──Start──▶ Initializing ──loadedmetadata──▶ Ready ──playing──▶ Playing
//	                     │                                          ▲    │
//	                     │ init/load failure                  play │    │ pause, seek
//	                     ▼                                          │    ▼
//	                  Errored                                 Paused, Buffering
//
// Ready, Playing, Paused and Buffering reach Ended on ended/error events or
// EndCurrentSong. Ended can be restarted (Playing). Every state except
// Destroyed reaches Destroyed on Destroy; Destroyed is terminal. The full
// table is in transitions.
type State int

const (
	StateIdle State = iota
	StateInitializing
	StateReady
	StatePlaying
	StatePaused
	StateBuffering
	StateEnded
	StateErrored
	StateDestroyed
)

var transitions = map[State][]State{
	StateIdle:         {StateInitializing, StateDestroyed},
	StateInitializing: {StateReady, StateErrored, StateDestroyed},
	StateReady:        {StatePlaying, StatePaused, StateBuffering, StateEnded, StateErrored, StateDestroyed},
	StatePlaying:      {StatePaused, StateBuffering, StateEnded, StateErrored, StateDestroyed},
	StatePaused:       {StatePlaying, StateBuffering, StateEnded, StateErrored, StateDestroyed},
	StateBuffering:    {StatePlaying, StatePaused, StateEnded, StateErrored, StateDestroyed},
	StateEnded:        {StatePlaying, StateDestroyed},
	StateErrored:      {StateDestroyed},
	StateDestroyed:    nil,
}

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateInitializing:
		return "Initializing"
	case StateReady:
		return "Ready"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	case StateBuffering:
		return "Buffering"
	case StateEnded:
		return "Ended"
	case StateErrored:
		return "Errored"
	case StateDestroyed:
		return "Destroyed"
	default:
		return "Unknown"
	}
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s State) CanTransitionTo(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsActive returns true if the session owns a loaded engine that can play.
func (s State) IsActive() bool {
	return s == StateReady || s == StatePlaying || s == StatePaused || s == StateBuffering
}

// IsTerminal returns true for Destroyed.
func (s State) IsTerminal() bool {
	return s == StateDestroyed
}
