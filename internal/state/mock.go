// internal/state/mock.go
package state

import (
	"context"
	"database/sql"
	"sync"
)

// Mock is a test double for Manager.
type Mock struct {
	mu         sync.Mutex
	navState   *NavigationState
	saved      []NavigationState
	queueState *QueueState
	plays      []Play
	recordErr  error
	closed     bool
}

// NewMock creates a new mock state manager for testing.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) DB() *sql.DB { return nil }

func (m *Mock) SaveNavigation(state NavigationState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, state)
	m.navState = &state
}

func (m *Mock) GetNavigation() (*NavigationState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.navState, nil
}

func (m *Mock) SaveQueue(_ context.Context, state QueueState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queueState = &state
	return nil
}

func (m *Mock) GetQueue() (*QueueState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.queueState == nil {
		return &QueueState{CurrentIndex: -1}, nil
	}
	return m.queueState, nil
}

func (m *Mock) RecordPlay(_ context.Context, p Play) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recordErr != nil {
		return m.recordErr
	}
	m.plays = append([]Play{p}, m.plays...)
	return nil
}

func (m *Mock) RecentPlays(_ context.Context, limit int) ([]Play, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit > len(m.plays) {
		limit = len(m.plays)
	}
	return append([]Play(nil), m.plays[:limit]...), nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Test helpers

func (m *Mock) SetNavigation(state *NavigationState) { m.navState = state }

func (m *Mock) SetQueue(state *QueueState) { m.queueState = state }

func (m *Mock) SetRecordError(err error) { m.recordErr = err }

// SavedNavigation returns every state passed to SaveNavigation.
func (m *Mock) SavedNavigation() []NavigationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]NavigationState(nil), m.saved...)
}

func (m *Mock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
