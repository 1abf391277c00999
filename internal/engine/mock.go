package engine

import (
	"context"
	"io"
	"sync"
	"time"
)

// Mock is a test double for Element. Events are emitted synchronously from
// the calling goroutine, like a media element firing inside a call.
type Mock struct {
	mu sync.Mutex

	listeners Listeners

	initErr   error
	deinitErr error
	openErr   error
	playErr   error
	initGate  chan struct{}

	initialized bool
	paused      bool
	ended       bool
	ready       ReadyState
	position    time.Duration
	duration    time.Duration

	calls []string
	opens []string

	listenersAtDeinit int
}

var _ Element = (*Mock)(nil)

// NewMock creates a paused mock element.
func NewMock() *Mock {
	return &Mock{paused: true}
}

// SetInitError makes Initialize fail.
func (m *Mock) SetInitError(err error) { m.mu.Lock(); m.initErr = err; m.mu.Unlock() }

// SetDeinitError makes Deinitialize fail.
func (m *Mock) SetDeinitError(err error) { m.mu.Lock(); m.deinitErr = err; m.mu.Unlock() }

// SetOpenError makes Open fail.
func (m *Mock) SetOpenError(err error) { m.mu.Lock(); m.openErr = err; m.mu.Unlock() }

// SetPlayError makes Play fail.
func (m *Mock) SetPlayError(err error) { m.mu.Lock(); m.playErr = err; m.mu.Unlock() }

// BlockInitialize makes Initialize wait until gate is closed or ctx is done.
func (m *Mock) BlockInitialize(gate chan struct{}) { m.mu.Lock(); m.initGate = gate; m.mu.Unlock() }

// SetPosition sets the current time without emitting events.
func (m *Mock) SetPosition(d time.Duration) { m.mu.Lock(); m.position = d; m.mu.Unlock() }

// SetDuration sets the media duration.
func (m *Mock) SetDuration(d time.Duration) { m.mu.Lock(); m.duration = d; m.mu.Unlock() }

// SetReadyState sets the ready state.
func (m *Mock) SetReadyState(r ReadyState) { m.mu.Lock(); m.ready = r; m.mu.Unlock() }

// SetPaused sets the paused flag without emitting events.
func (m *Mock) SetPaused(p bool) { m.mu.Lock(); m.paused = p; m.mu.Unlock() }

// SetEnded sets the ended flag.
func (m *Mock) SetEnded(e bool) { m.mu.Lock(); m.ended = e; m.mu.Unlock() }

// Emit fires an event to the registered listeners.
func (m *Mock) Emit(t EventType) { m.listeners.Emit(Event{Type: t}) }

// EmitError fires an error event.
func (m *Mock) EmitError(err error) { m.listeners.Emit(Event{Type: EventError, Err: err}) }

// ListenerCount returns the number of registered listeners.
func (m *Mock) ListenerCount() int { return m.listeners.Count() }

// Calls returns the recorded method calls in order.
func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// CallCount returns how many times name was called.
func (m *Mock) CallCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == name {
			n++
		}
	}
	return n
}

// Opens returns the URLs passed to Open.
func (m *Mock) Opens() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.opens...)
}

// ListenersAtDeinit returns the listener count seen by the last Deinitialize.
func (m *Mock) ListenersAtDeinit() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listenersAtDeinit
}

// Initialized reports whether the element is initialized.
func (m *Mock) Initialized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initialized
}

func (m *Mock) record(name string) {
	m.calls = append(m.calls, name)
}

func (m *Mock) Initialize(ctx context.Context) error {
	m.mu.Lock()
	m.record("Initialize")
	gate := m.initGate
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.initErr != nil {
		return m.initErr
	}
	m.initialized = true
	return nil
}

func (m *Mock) Deinitialize(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Deinitialize")
	m.listenersAtDeinit = m.listeners.Count()
	m.initialized = false
	m.paused = true
	m.ready = HaveNothing
	return m.deinitErr
}

func (m *Mock) Open(_ context.Context, url, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Open")
	m.opens = append(m.opens, url)
	if m.openErr != nil {
		return m.openErr
	}
	if !m.initialized {
		return ErrNotInitialized
	}
	m.ended = false
	return nil
}

func (m *Mock) Attach(rc io.ReadCloser, offset, duration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Attach")
	if rc != nil {
		_ = rc.Close()
	}
	m.position = offset
	if duration > 0 {
		m.duration = duration
	}
	return nil
}

func (m *Mock) Play() error {
	m.mu.Lock()
	m.record("Play")
	if m.playErr != nil {
		err := m.playErr
		m.mu.Unlock()
		return err
	}
	m.paused = false
	m.ended = false
	m.mu.Unlock()
	m.Emit(EventPlaying)
	return nil
}

func (m *Mock) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Pause")
	m.paused = true
}

func (m *Mock) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

func (m *Mock) Ended() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ended
}

func (m *Mock) ReadyState() ReadyState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

func (m *Mock) CurrentTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *Mock) SetCurrentTime(t time.Duration) error {
	m.mu.Lock()
	m.record("SetCurrentTime")
	m.position = t
	m.mu.Unlock()
	m.Emit(EventSeeking)
	return nil
}

func (m *Mock) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *Mock) AddEventListener(t EventType, fn Listener) ListenerID {
	return m.listeners.Add(t, fn)
}

func (m *Mock) RemoveEventListener(id ListenerID) {
	m.listeners.Remove(id)
}

// MockStreamer is a test double for Streamer.
type MockStreamer struct {
	mu        sync.Mutex
	loadErr   error
	unloadErr error
	loadHook  func(context.Context) error
	loads     []Content
	unloads   int
}

var _ Streamer = (*MockStreamer)(nil)

// NewMockStreamer creates a mock streamer.
func NewMockStreamer() *MockStreamer { return &MockStreamer{} }

// SetLoadError makes Load fail.
func (s *MockStreamer) SetLoadError(err error) { s.mu.Lock(); s.loadErr = err; s.mu.Unlock() }

// SetUnloadError makes Unload fail.
func (s *MockStreamer) SetUnloadError(err error) { s.mu.Lock(); s.unloadErr = err; s.mu.Unlock() }

// SetLoadHook runs fn inside Load before it records the call. A non-nil
// result fails the load.
func (s *MockStreamer) SetLoadHook(fn func(context.Context) error) {
	s.mu.Lock()
	s.loadHook = fn
	s.mu.Unlock()
}

// Loads returns the content descriptors passed to Load.
func (s *MockStreamer) Loads() []Content {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Content(nil), s.loads...)
}

// Unloads returns how many times Unload was called.
func (s *MockStreamer) Unloads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unloads
}

func (s *MockStreamer) Load(ctx context.Context, c Content, _ bool) error {
	s.mu.Lock()
	hook := s.loadHook
	s.mu.Unlock()
	if hook != nil {
		if err := hook(ctx); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads = append(s.loads, c)
	return s.loadErr
}

func (s *MockStreamer) Unload(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unloads++
	return s.unloadErr
}

// MockFactory builds engines over mocks and keeps every mock it created.
type MockFactory struct {
	mu        sync.Mutex
	elements  []*Mock
	streamers []*MockStreamer

	// Configure, when set, is applied to each new element before use.
	Configure func(*Mock)
	// ConfigureStreamer is the same for streamers.
	ConfigureStreamer func(*MockStreamer)
}

// Factory returns an engine factory backed by f.
func (f *MockFactory) Factory() Factory {
	return Factory{
		NewElement: func() Element {
			m := NewMock()
			f.mu.Lock()
			configure := f.Configure
			f.elements = append(f.elements, m)
			f.mu.Unlock()
			if configure != nil {
				configure(m)
			}
			return m
		},
		NewStreamer: func(Element) Streamer {
			s := NewMockStreamer()
			f.mu.Lock()
			configure := f.ConfigureStreamer
			f.streamers = append(f.streamers, s)
			f.mu.Unlock()
			if configure != nil {
				configure(s)
			}
			return s
		},
	}
}

// Count returns how many elements were constructed.
func (f *MockFactory) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.elements)
}

// Element returns the i-th constructed element.
func (f *MockFactory) Element(i int) *Mock {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.elements[i]
}

// Last returns the most recently constructed element, or nil.
func (f *MockFactory) Last() *Mock {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.elements) == 0 {
		return nil
	}
	return f.elements[len(f.elements)-1]
}

// Streamers returns the constructed streamers.
func (f *MockFactory) Streamers() []*MockStreamer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*MockStreamer(nil), f.streamers...)
}
