package engine

import (
	"testing"
)

func TestListeners_EmitByType(t *testing.T) {
	var l Listeners
	var playing, ended int
	l.Add(EventPlaying, func(Event) { playing++ })
	l.Add(EventEnded, func(Event) { ended++ })

	l.Emit(Event{Type: EventPlaying})
	l.Emit(Event{Type: EventPlaying})
	l.Emit(Event{Type: EventEnded})
	l.Emit(Event{Type: EventSeeking})

	if playing != 2 {
		t.Errorf("playing = %d, want 2", playing)
	}
	if ended != 1 {
		t.Errorf("ended = %d, want 1", ended)
	}
}

func TestListeners_Remove(t *testing.T) {
	var l Listeners
	calls := 0
	id := l.Add(EventEnded, func(Event) { calls++ })
	l.Add(EventEnded, func(Event) {})

	l.Remove(id)
	l.Remove(id) // unknown id is ignored
	l.Emit(Event{Type: EventEnded})

	if calls != 0 {
		t.Errorf("removed listener called %d times", calls)
	}
	if l.Count() != 1 {
		t.Errorf("Count() = %d, want 1", l.Count())
	}
}

func TestListeners_ListenerCanReenter(t *testing.T) {
	var l Listeners
	var id ListenerID
	id = l.Add(EventEnded, func(Event) {
		l.Remove(id)
		l.Add(EventPlaying, func(Event) {})
	})

	l.Emit(Event{Type: EventEnded})

	if l.Count() != 1 {
		t.Errorf("Count() = %d, want 1", l.Count())
	}
}

func TestListeners_Clear(t *testing.T) {
	var l Listeners
	l.Add(EventEnded, func(Event) {})
	l.Add(EventError, func(Event) {})
	l.Clear()
	if l.Count() != 0 {
		t.Errorf("Count() = %d after Clear, want 0", l.Count())
	}
}
