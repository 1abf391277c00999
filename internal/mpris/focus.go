// Package mpris exposes the playback session on the MPRIS D-Bus interface,
// the desktop counterpart of a TV's media-control service.
package mpris

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/llehouerou/wavestv/internal/catalog"
	"github.com/llehouerou/wavestv/internal/mediactl"
	"github.com/llehouerou/wavestv/internal/playback"
	"github.com/llehouerou/wavestv/internal/sequencer"
)

// Status reports the engine of the current session.
type Status interface {
	Media() playback.MediaStatus
}

// Navigator moves through the queue.
type Navigator interface {
	Advance(ctx context.Context) (sequencer.Result, error)
	Retreat(ctx context.Context) (sequencer.Result, error)
	Queue() ([]catalog.Track, int)
}

// NowPlaying is the metadata published for the current track.
type NowPlaying struct {
	Track   catalog.Track
	Album   string
	Artist  string
	ArtPath string
}

// Options configures an Adapter.
type Options struct {
	Status    Status
	Navigator Navigator
	Logger    *slog.Logger
}

// focus holds the media-control handler of the current session and the
// metadata of its track.
type focus struct {
	logger *slog.Logger

	mu      sync.Mutex
	handler mediactl.Handler
	now     NowPlaying
	hasNow  bool
	status  Status
	nav     Navigator
}

func newFocus(opts Options) *focus {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &focus{
		logger: logger.With("component", "mpris"),
		status: opts.Status,
		nav:    opts.Navigator,
	}
}

// Bind sets the status and navigator after construction, for callers that
// build the adapter before the player it reports on.
func (f *focus) Bind(s Status, nav Navigator) {
	f.mu.Lock()
	f.status = s
	f.nav = nav
	f.mu.Unlock()
}

func (f *focus) sources() (Status, Navigator) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status, f.nav
}

func (f *focus) SetMediaControlFocus(_ context.Context, h mediactl.Handler) error {
	f.mu.Lock()
	f.handler = h
	f.mu.Unlock()
	f.logger.Debug("media control focus set")
	return nil
}

func (f *focus) ClearMediaControlFocus(_ context.Context) error {
	f.mu.Lock()
	f.handler = nil
	f.hasNow = false
	f.mu.Unlock()
	f.logger.Debug("media control focus cleared")
	return nil
}

// Handler returns the focused handler, or Noop.
func (f *focus) Handler() mediactl.Handler {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.handler == nil {
		return mediactl.Noop{}
	}
	return f.handler
}

// Focused reports whether a session holds media-control focus.
func (f *focus) Focused() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.handler != nil
}

// SetNowPlaying publishes the metadata of the current track.
func (f *focus) SetNowPlaying(np NowPlaying) {
	f.mu.Lock()
	f.now = np
	f.hasNow = true
	f.mu.Unlock()
}

func (f *focus) nowPlaying() (NowPlaying, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now, f.hasNow
}

// seekTarget turns a relative MPRIS seek into an absolute position.
func seekTarget(pos, dur, offset time.Duration) time.Duration {
	t := max(pos+offset, 0)
	if dur > 0 {
		t = min(t, dur)
	}
	return t
}
