package engine

import "sync"

// EventType names an engine event.
type EventType string

const (
	EventLoadedMetadata EventType = "loadedmetadata"
	EventPlaying        EventType = "playing"
	EventEnded          EventType = "ended"
	EventError          EventType = "error"
	EventSeeking        EventType = "seeking"
)

// Event is delivered to listeners. Err is set for EventError.
type Event struct {
	Type EventType
	Err  error
}

// Listener receives engine events. Listeners may be called from any
// goroutine, including synchronously from inside an engine call.
type Listener func(Event)

// ListenerID identifies a registered listener.
type ListenerID uint64

type listenerEntry struct {
	id  ListenerID
	typ EventType
	fn  Listener
}

// Listeners is a registry of event listeners shared by element
// implementations.
type Listeners struct {
	mu      sync.Mutex
	nextID  ListenerID
	entries []listenerEntry
}

// Add registers fn for events of type t.
func (l *Listeners) Add(t EventType, fn Listener) ListenerID {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	l.entries = append(l.entries, listenerEntry{id: l.nextID, typ: t, fn: fn})
	return l.nextID
}

// Remove unregisters a listener. Unknown ids are ignored.
func (l *Listeners) Remove(id ListenerID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, e := range l.entries {
		if e.id == id {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return
		}
	}
}

// Emit calls every listener registered for e.Type. The registry lock is not
// held while listeners run.
func (l *Listeners) Emit(e Event) {
	l.mu.Lock()
	var fns []Listener
	for _, entry := range l.entries {
		if entry.typ == e.Type {
			fns = append(fns, entry.fn)
		}
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}

// Count returns the number of registered listeners.
func (l *Listeners) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Clear drops every listener.
func (l *Listeners) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}
