// Package player is the beep-backed media element behind both engines: it
// plays local or cached files directly, and decodes the WAV pipe the stream
// package attaches for adaptive sources.
package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/wav"

	"github.com/llehouerou/wavestv/internal/engine"
)

var (
	// ErrNoSource is returned by Play before anything was opened.
	ErrNoSource = errors.New("no media source")
	// ErrNotSeekable is returned when seeking a piped source.
	ErrNotSeekable = errors.New("media source is not seekable")
)

// Resolver turns a source URL into a local file path.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// source is the decoded media currently loaded in a Player.
type source struct {
	stream   beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	handle   *handle
	seekable bool
	codec    string
	drained  bool
}

// Player is an engine.Element playing through a shared Output.
type Player struct {
	out       Output
	resolver  Resolver
	logger    *slog.Logger
	listeners engine.Listeners

	mu          sync.Mutex
	initialized bool
	handles     uint64
	src         *source
	paused      bool
	ended       bool
	ready       engine.ReadyState
	duration    time.Duration
	offset      time.Duration
}

var _ engine.Element = (*Player)(nil)

// New creates a player. A nil out uses the speaker; a nil resolver only
// accepts local paths.
func New(out Output, resolver Resolver, logger *slog.Logger) *Player {
	if out == nil {
		out = Speaker()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Player{
		out:      out,
		resolver: resolver,
		logger:   logger.With("component", "player"),
		paused:   true,
	}
}

func (p *Player) Initialize(_ context.Context) error {
	if err := p.out.Init(); err != nil {
		return fmt.Errorf("audio output: %w", err)
	}
	p.mu.Lock()
	p.initialized = true
	p.mu.Unlock()
	return nil
}

func (p *Player) Deinitialize(_ context.Context) error {
	p.mu.Lock()
	src := p.src
	p.src = nil
	p.initialized = false
	p.resetLocked()
	p.mu.Unlock()

	if src != nil {
		return p.stop(src)
	}
	return nil
}

// Open loads url, a local path or a remote file fetched through the
// resolver, and emits loadedmetadata.
func (p *Player) Open(ctx context.Context, url, format string) error {
	p.mu.Lock()
	ok := p.initialized
	p.mu.Unlock()
	if !ok {
		return engine.ErrNotInitialized
	}

	path := url
	if p.resolver != nil {
		var err error
		if path, err = p.resolver.Resolve(ctx, url); err != nil {
			return err
		}
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	d, err := decode(ctx, f, FormatOf(format, path))
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	dur := d.format.SampleRate.D(d.stream.Len())
	if err := p.load(d, true, 0, dur); err != nil {
		return err
	}
	p.logger.Debug("opened", "path", path, "codec", d.codec, "duration", dur)
	p.listeners.Emit(engine.Event{Type: engine.EventLoadedMetadata})
	return nil
}

// Attach plays a WAV stream that starts at offset within a source of the
// given duration. The first attach emits loadedmetadata, later ones (seeks)
// emit seeking.
func (p *Player) Attach(rc io.ReadCloser, offset, duration time.Duration) error {
	p.mu.Lock()
	ok := p.initialized
	p.mu.Unlock()
	if !ok {
		rc.Close()
		return engine.ErrNotInitialized
	}

	stream, format, err := wav.Decode(rc)
	if err != nil {
		rc.Close()
		return fmt.Errorf("decode pipe: %w", err)
	}
	d := decoded{stream: stream, format: format, codec: "WAV"}
	if err := p.load(d, false, offset, duration); err != nil {
		return err
	}
	if offset > 0 {
		p.listeners.Emit(engine.Event{Type: engine.EventSeeking})
	} else {
		p.listeners.Emit(engine.Event{Type: engine.EventLoadedMetadata})
	}
	return nil
}

// load replaces the current source with d. A replaced source keeps its
// paused state so a seek restart does not resume a paused element.
func (p *Player) load(d decoded, seekable bool, offset, duration time.Duration) error {
	p.mu.Lock()
	old := p.src
	paused := true
	if old != nil && !p.ended {
		paused = p.paused
	}
	p.handles++
	src := p.newSourceLocked(d, seekable, paused)
	p.src = src
	p.paused = paused
	p.ended = false
	p.ready = engine.HaveEnoughData
	p.offset = offset
	p.duration = duration
	p.mu.Unlock()

	if old != nil {
		if err := p.stop(old); err != nil {
			p.logger.Debug("close previous source", "err", err)
		}
	}
	p.out.Play(src.handle)
	return nil
}

func (p *Player) newSourceLocked(d decoded, seekable, paused bool) *source {
	var s beep.Streamer = d.stream
	if d.format.SampleRate != SampleRate {
		s = beep.Resample(4, d.format.SampleRate, SampleRate, s)
	}
	src := &source{
		stream:   d.stream,
		format:   d.format,
		seekable: seekable,
		codec:    d.codec,
	}
	src.ctrl = &beep.Ctrl{Streamer: s, Paused: paused}
	src.volume = &effects.Volume{Streamer: src.ctrl, Base: 2}
	src.handle = p.handleLocked(src)
	return src
}

func (p *Player) handleLocked(src *source) *handle {
	id := p.handles
	return &handle{
		id: id,
		s: beep.Seq(src.volume, beep.Callback(func() {
			// Runs on the mixer goroutine with the output locked.
			go p.finish(id)
		})),
	}
}

// stop removes src from the mixer and closes it.
func (p *Player) stop(src *source) error {
	p.out.Lock()
	src.handle.stopped = true
	p.out.Unlock()
	return src.stream.Close()
}

func (p *Player) finish(id uint64) {
	p.mu.Lock()
	if p.src == nil || p.src.handle.id != id {
		p.mu.Unlock()
		return
	}
	p.src.drained = true
	p.ended = true
	p.paused = true
	p.mu.Unlock()
	p.listeners.Emit(engine.Event{Type: engine.EventEnded})
}

func (p *Player) resetLocked() {
	p.paused = true
	p.ended = false
	p.ready = engine.HaveNothing
	p.duration = 0
	p.offset = 0
}

func (p *Player) Play() error {
	p.mu.Lock()
	src := p.src
	if src == nil {
		p.mu.Unlock()
		return ErrNoSource
	}
	if src.drained {
		// The mixer dropped the finished source: queue it again.
		p.handles++
		src.handle = p.handleLocked(src)
		src.drained = false
		p.out.Play(src.handle)
	}
	p.paused = false
	p.ended = false
	p.mu.Unlock()

	p.out.Lock()
	src.ctrl.Paused = false
	p.out.Unlock()

	p.listeners.Emit(engine.Event{Type: engine.EventPlaying})
	return nil
}

func (p *Player) Pause() {
	p.mu.Lock()
	src := p.src
	p.paused = true
	p.mu.Unlock()
	if src == nil {
		return
	}
	p.out.Lock()
	src.ctrl.Paused = true
	p.out.Unlock()
}

func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

func (p *Player) Ended() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ended
}

func (p *Player) ReadyState() engine.ReadyState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ready
}

func (p *Player) CurrentTime() time.Duration {
	p.mu.Lock()
	src, offset, ended, dur := p.src, p.offset, p.ended, p.duration
	p.mu.Unlock()
	if src == nil {
		return 0
	}
	if ended {
		return dur
	}
	p.out.Lock()
	pos := src.format.SampleRate.D(src.stream.Position())
	p.out.Unlock()
	return offset + pos
}

// SetCurrentTime seeks a file source and emits seeking.
func (p *Player) SetCurrentTime(t time.Duration) error {
	p.mu.Lock()
	src, dur := p.src, p.duration
	if src == nil {
		p.mu.Unlock()
		return ErrNoSource
	}
	if !src.seekable {
		p.mu.Unlock()
		return ErrNotSeekable
	}
	t = min(max(t, 0), dur)
	if t < dur {
		p.ended = false
	}
	p.mu.Unlock()

	p.out.Lock()
	err := src.stream.Seek(src.format.SampleRate.N(t))
	p.out.Unlock()
	if err != nil {
		return err
	}
	p.listeners.Emit(engine.Event{Type: engine.EventSeeking})
	return nil
}

func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duration
}

// Codec returns the codec name of the loaded source.
func (p *Player) Codec() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.src == nil {
		return ""
	}
	return p.src.codec
}

func (p *Player) AddEventListener(t engine.EventType, fn engine.Listener) engine.ListenerID {
	return p.listeners.Add(t, fn)
}

func (p *Player) RemoveEventListener(id engine.ListenerID) {
	p.listeners.Remove(id)
}
