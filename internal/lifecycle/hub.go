package lifecycle

import "sync"

// Hub is an in-process AppStateNotifier and RemoteNotifier. The shell
// publishes terminal focus reports and key presses into it.
type Hub struct {
	mu      sync.Mutex
	nextID  uint64
	apps    map[uint64]func(AppState)
	remotes map[uint64]func(RemoteEvent)
}

var (
	_ AppStateNotifier = (*Hub)(nil)
	_ RemoteNotifier   = (*Hub)(nil)
)

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		apps:    make(map[uint64]func(AppState)),
		remotes: make(map[uint64]func(RemoteEvent)),
	}
}

// OnAppStateChange registers fn for app-state changes.
func (h *Hub) OnAppStateChange(fn func(AppState)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := h.nextID
	h.apps[id] = fn
	return func() {
		h.mu.Lock()
		delete(h.apps, id)
		h.mu.Unlock()
	}
}

// OnRemoteEvent registers fn for remote events.
func (h *Hub) OnRemoteEvent(fn func(RemoteEvent)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := h.nextID
	h.remotes[id] = fn
	return func() {
		h.mu.Lock()
		delete(h.remotes, id)
		h.mu.Unlock()
	}
}

// PublishAppState calls every app-state subscriber outside the lock.
func (h *Hub) PublishAppState(s AppState) {
	h.mu.Lock()
	fns := make([]func(AppState), 0, len(h.apps))
	for _, fn := range h.apps {
		fns = append(fns, fn)
	}
	h.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}

// PublishRemote calls every remote subscriber outside the lock.
func (h *Hub) PublishRemote(e RemoteEvent) {
	h.mu.Lock()
	fns := make([]func(RemoteEvent), 0, len(h.remotes))
	for _, fn := range h.remotes {
		fns = append(fns, fn)
	}
	h.mu.Unlock()
	for _, fn := range fns {
		fn(e)
	}
}
