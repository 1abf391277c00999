package mediactl

import (
	"context"
	"sync"
)

// MockHost is a test double for Host that records focus changes.
type MockHost struct {
	mu       sync.Mutex
	focused  Handler
	setErr   error
	clearErr error
	hook     func()
	sets     int
	clears   int
}

var _ Host = (*MockHost)(nil)

// NewMockHost creates a mock host without focus.
func NewMockHost() *MockHost { return &MockHost{} }

// SetFocusError makes SetMediaControlFocus fail.
func (h *MockHost) SetFocusError(err error) { h.mu.Lock(); h.setErr = err; h.mu.Unlock() }

// SetClearError makes ClearMediaControlFocus fail.
func (h *MockHost) SetClearError(err error) { h.mu.Lock(); h.clearErr = err; h.mu.Unlock() }

// SetFocusHook runs fn inside SetMediaControlFocus before the handler is
// recorded.
func (h *MockHost) SetFocusHook(fn func()) { h.mu.Lock(); h.hook = fn; h.mu.Unlock() }

// Focused returns the handler holding focus, or nil.
func (h *MockHost) Focused() Handler {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.focused
}

// Counts returns how many times focus was set and cleared.
func (h *MockHost) Counts() (sets, clears int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sets, h.clears
}

func (h *MockHost) SetMediaControlFocus(_ context.Context, handler Handler) error {
	h.mu.Lock()
	hook := h.hook
	h.mu.Unlock()
	if hook != nil {
		hook()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.sets++
	if h.setErr != nil {
		return h.setErr
	}
	h.focused = handler
	return nil
}

func (h *MockHost) ClearMediaControlFocus(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clears++
	h.focused = nil
	return h.clearErr
}
