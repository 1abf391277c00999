// internal/playback/state_test.go
package playback

import "testing"

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateIdle, "Idle"},
		{StateInitializing, "Initializing"},
		{StateReady, "Ready"},
		{StatePlaying, "Playing"},
		{StatePaused, "Paused"},
		{StateBuffering, "Buffering"},
		{StateEnded, "Ended"},
		{StateErrored, "Errored"},
		{StateDestroyed, "Destroyed"},
		{State(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestState_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{StateIdle, StateInitializing, true},
		{StateIdle, StatePlaying, false},
		{StateInitializing, StateReady, true},
		{StateInitializing, StateErrored, true},
		{StateInitializing, StatePlaying, false},
		{StateReady, StatePlaying, true},
		{StatePlaying, StateBuffering, true},
		{StateBuffering, StatePlaying, true},
		{StatePaused, StateEnded, true},
		{StateEnded, StatePlaying, true},
		{StateEnded, StateBuffering, false},
		{StateErrored, StatePlaying, false},
		{StateErrored, StateDestroyed, true},
		{StateDestroyed, StateInitializing, false},
		{StateDestroyed, StateIdle, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%v -> %v = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestState_EveryStateButDestroyedCanBeDestroyed(t *testing.T) {
	for s := StateIdle; s < StateDestroyed; s++ {
		if !s.CanTransitionTo(StateDestroyed) {
			t.Errorf("%v cannot reach Destroyed", s)
		}
	}
	if len(transitions[StateDestroyed]) != 0 {
		t.Error("Destroyed must be terminal")
	}
}

func TestState_IsActive(t *testing.T) {
	tests := []struct {
		state State
		want  bool
	}{
		{StateIdle, false},
		{StateInitializing, false},
		{StateReady, true},
		{StatePlaying, true},
		{StatePaused, true},
		{StateBuffering, true},
		{StateEnded, false},
		{StateErrored, false},
		{StateDestroyed, false},
	}
	for _, tt := range tests {
		if got := tt.state.IsActive(); got != tt.want {
			t.Errorf("%v.IsActive() = %v, want %v", tt.state, got, tt.want)
		}
	}
}
