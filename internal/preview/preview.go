// Package preview plays a short sample of the album tile that has focus on
// the browsing screen.
package preview

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/llehouerou/wavestv/internal/catalog"
	"github.com/llehouerou/wavestv/internal/metrics"
	"github.com/llehouerou/wavestv/internal/playback"
)

// Defaults used when Config fields are zero.
const (
	DefaultStartDelay  = time.Second
	DefaultMaxDuration = 10 * time.Second
)

// Player is the playback surface a preview drives.
type Player interface {
	Start(ctx context.Context, track catalog.Track, thumbnail string) error
	Destroy(ctx context.Context) error
	SetAutoplayGate(g playback.AutoplayGate)
}

// Config holds the preview timings.
type Config struct {
	StartDelay  time.Duration
	MaxDuration time.Duration
}

// Previewer starts a preview once a tile has held focus for the start delay
// and stops it after the max duration.
type Previewer struct {
	ctx     context.Context
	player  Player
	cfg     Config
	metrics *metrics.Recorder
	logger  *slog.Logger

	mu         sync.Mutex
	gen        uint64
	focused    bool
	albumID    int
	closed     bool
	startTimer *time.Timer
	endTimer   *time.Timer
}

// New creates a previewer. Sessions started by it only auto-play while a
// tile has focus.
func New(ctx context.Context, p Player, cfg Config, m *metrics.Recorder, logger *slog.Logger) *Previewer {
	if cfg.StartDelay <= 0 {
		cfg.StartDelay = DefaultStartDelay
	}
	if cfg.MaxDuration <= 0 {
		cfg.MaxDuration = DefaultMaxDuration
	}
	if logger == nil {
		logger = slog.Default()
	}
	pv := &Previewer{
		ctx:     ctx,
		player:  p,
		cfg:     cfg,
		metrics: m,
		logger:  logger.With("component", "preview"),
	}
	p.SetAutoplayGate(pv.Focused)
	return pv
}

// Focused reports whether a tile currently has focus.
func (p *Previewer) Focused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.focused
}

// AlbumID returns the album of the focused tile.
func (p *Previewer) AlbumID() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.albumID
}

// Focus arms the start delay for album. Albums without tracks only take
// focus.
func (p *Previewer) Focus(album catalog.Album) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.clearTimersLocked()
	p.gen++
	p.focused = true
	p.albumID = album.ID
	if len(album.Tracks) == 0 {
		return
	}
	gen := p.gen
	track, thumb := album.Tracks[0], album.Thumbnail
	p.startTimer = time.AfterFunc(p.cfg.StartDelay, func() {
		p.start(gen, track, thumb)
	})
}

func (p *Previewer) start(gen uint64, track catalog.Track, thumbnail string) {
	p.mu.Lock()
	if p.gen != gen {
		p.mu.Unlock()
		return
	}
	p.startTimer = nil
	p.mu.Unlock()

	if err := p.player.Start(p.ctx, track, thumbnail); err != nil {
		p.logger.Warn("preview start", "track", track.ID, "err", err)
		return
	}

	p.mu.Lock()
	if p.gen != gen {
		// Blurred while the session was starting.
		p.mu.Unlock()
		_ = p.player.Destroy(p.ctx)
		return
	}
	p.endTimer = time.AfterFunc(p.cfg.MaxDuration, func() {
		p.expire(gen)
	})
	p.mu.Unlock()

	p.metrics.PreviewStarted()
	p.logger.Debug("preview started", "track", track.ID)
}

func (p *Previewer) expire(gen uint64) {
	p.mu.Lock()
	if p.gen != gen {
		p.mu.Unlock()
		return
	}
	p.endTimer = nil
	p.mu.Unlock()
	_ = p.player.Destroy(p.ctx)
}

// Blur clears both timers and stops the preview.
func (p *Previewer) Blur() {
	p.mu.Lock()
	p.clearTimersLocked()
	p.gen++
	p.focused = false
	p.albumID = 0
	p.mu.Unlock()
	_ = p.player.Destroy(p.ctx)
}

// Close blurs and ignores later focus.
func (p *Previewer) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.Blur()
}

// Pending reports whether a start or expiry timer is armed.
func (p *Previewer) Pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.startTimer != nil || p.endTimer != nil
}

func (p *Previewer) clearTimersLocked() {
	if p.startTimer != nil {
		p.startTimer.Stop()
		p.startTimer = nil
	}
	if p.endTimer != nil {
		p.endTimer.Stop()
		p.endTimer = nil
	}
}
