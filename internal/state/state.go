// Package state persists the shell's navigation, the last player queue
// and the play history in a SQLite database.
package state

import (
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite"

	"github.com/llehouerou/wavestv/internal/errmsg"
)

const (
	dbPath       = "wavestv/wavestv.db"
	memoryPath   = ":memory:"
	filePragmas  = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	saveDebounce = 500 * time.Millisecond
)

// Manager is the SQLite-backed Interface.
type Manager struct {
	db     *sql.DB
	logger *slog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending *NavigationState
}

// Open opens the database in the xdg data dir.
func Open(logger *slog.Logger) (*Manager, error) {
	path, err := xdg.DataFile(dbPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return OpenPath(path, logger)
}

// OpenPath opens the database at path. ":memory:" gives a private
// in-memory database.
func OpenPath(path string, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dsn := path
	if path != memoryPath {
		dsn = "file:" + path + filePragmas
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One connection shares in-memory databases and serializes writers.
	db.SetMaxOpenConns(1)
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Manager{db: db, logger: logger.With("component", "state")}, nil
}

// DB exposes the connection for maintenance tooling.
func (m *Manager) DB() *sql.DB { return m.db }

// GetNavigation returns the saved navigation, or nil when none was saved.
func (m *Manager) GetNavigation() (*NavigationState, error) {
	return getNavigation(m.db)
}

// SaveNavigation stores state once saves pause for the debounce delay.
// Focus moves come in bursts; only the last state of a burst is written.
func (m *Manager) SaveNavigation(state NavigationState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = &state
	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = time.AfterFunc(saveDebounce, m.Flush)
}

// Flush writes the pending navigation now.
func (m *Manager) Flush() {
	m.mu.Lock()
	pending := m.pending
	m.pending = nil
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.mu.Unlock()
	if pending == nil {
		return
	}
	if err := saveNavigation(m.db, *pending); err != nil {
		m.logger.Warn(errmsg.Format(errmsg.OpStateSave, err))
	}
}

// Close flushes pending navigation and closes the database.
func (m *Manager) Close() error {
	m.Flush()
	return m.db.Close()
}
