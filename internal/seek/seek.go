// Package seek coalesces relative seek requests into one applied seek per
// debounce window and applies the near-end policy.
package seek

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/llehouerou/wavestv/internal/metrics"
)

// Defaults used when Config fields are zero.
const (
	DefaultDebounce        = 300 * time.Millisecond
	DefaultRefuseWindow    = 10 * time.Second
	DefaultForceEndWindow  = 3 * time.Second
	DefaultMinimumPosition = time.Second
)

// Outcome is the result of a seek request.
type Outcome int

const (
	// Scheduled means the seek will be applied when the debounce timer fires.
	Scheduled Outcome = iota
	// Advanced means the target was past the end and the sequencer moved on.
	Advanced
	// ForcedEnd means the position was in the force-end window and the track
	// was ended instead.
	ForcedEnd
	// Refused means the position was in the refuse window.
	Refused
	// RejectedAdvancing means a track change is in flight.
	RejectedAdvancing
	// RejectedNoSession means no session accepts seeks.
	RejectedNoSession
	// RejectedTooEarly means playback has barely started.
	RejectedTooEarly
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Scheduled:
		return "scheduled"
	case Advanced:
		return "advanced"
	case ForcedEnd:
		return "forced_end"
	case Refused:
		return "refused"
	case RejectedAdvancing:
		return "rejected_advancing"
	case RejectedNoSession:
		return "rejected_no_session"
	case RejectedTooEarly:
		return "rejected_too_early"
	default:
		return "unknown"
	}
}

// Player is the playback controller side of a seek.
type Player interface {
	// SeekPosition returns position and duration when seeks are accepted.
	SeekPosition() (pos, dur time.Duration, ok bool)
	BeginSeek()
	FinishSeek(target time.Duration, apply bool)
	EndCurrentSong()
}

// Sequencer is the track-change side of a seek.
type Sequencer interface {
	Advancing() bool
	SeekPastEnd(ctx context.Context) error
}

// Config holds the debounce window and the near-end thresholds.
type Config struct {
	Debounce        time.Duration
	RefuseWindow    time.Duration
	ForceEndWindow  time.Duration
	MinimumPosition time.Duration
}

func (c Config) withDefaults() Config {
	if c.Debounce <= 0 {
		c.Debounce = DefaultDebounce
	}
	if c.RefuseWindow <= 0 {
		c.RefuseWindow = DefaultRefuseWindow
	}
	if c.ForceEndWindow <= 0 {
		c.ForceEndWindow = DefaultForceEndWindow
	}
	switch {
	case c.MinimumPosition == 0:
		c.MinimumPosition = DefaultMinimumPosition
	case c.MinimumPosition < 0:
		c.MinimumPosition = 0 // disabled
	}
	return c
}

// Request is one relative seek.
type Request struct {
	Delta    time.Duration
	IssuedAt time.Time
}

// Debouncer owns the seek timer. Only the latest request within a window is
// applied; earlier ones are discarded.
type Debouncer struct {
	player  Player
	seq     Sequencer
	cfg     Config
	metrics *metrics.Recorder
	logger  *slog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	pending *Request
	target  time.Duration
}

// New creates a debouncer. seq may be nil when no sequencer exists (preview).
func New(p Player, seq Sequencer, cfg Config, m *metrics.Recorder, logger *slog.Logger) *Debouncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Debouncer{
		player:  p,
		seq:     seq,
		cfg:     cfg.withDefaults(),
		metrics: m,
		logger:  logger.With("component", "seek"),
	}
}

// SetSequencer binds the sequencer after construction.
func (d *Debouncer) SetSequencer(seq Sequencer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq = seq
}

// Request asks for a relative seek of delta.
func (d *Debouncer) Request(ctx context.Context, delta time.Duration) Outcome {
	out := d.request(ctx, delta)
	switch out {
	case Scheduled, Advanced:
	default:
		d.metrics.SeekRejected(out.String())
	}
	d.logger.Debug("seek request", "delta", delta, "outcome", out.String())
	return out
}

func (d *Debouncer) request(ctx context.Context, delta time.Duration) Outcome {
	d.mu.Lock()
	seq := d.seq
	d.mu.Unlock()

	if seq != nil && seq.Advancing() {
		return RejectedAdvancing
	}
	pos, dur, ok := d.player.SeekPosition()
	if !ok {
		return RejectedNoSession
	}

	// Windows are judged on the live position; successive presses
	// accumulate from the target not yet applied.
	base := pos
	d.mu.Lock()
	if d.pending != nil {
		base = d.target
	}
	d.mu.Unlock()

	if pos < d.cfg.MinimumPosition {
		return RejectedTooEarly
	}
	if dur > 0 && pos >= dur-d.cfg.ForceEndWindow {
		d.Cancel()
		d.player.EndCurrentSong()
		return ForcedEnd
	}

	target := base + delta
	if dur > 0 && target >= dur {
		d.Cancel()
		if seq == nil {
			d.player.EndCurrentSong()
			return ForcedEnd
		}
		if err := seq.SeekPastEnd(ctx); err != nil {
			d.logger.Warn("seek past end", "err", err)
		}
		return Advanced
	}
	if dur > 0 && pos >= dur-d.cfg.RefuseWindow {
		return Refused
	}
	target = max(target, 0)

	req := Request{Delta: delta, IssuedAt: time.Now()}
	d.mu.Lock()
	if d.pending != nil {
		d.metrics.SeekCoalesced()
	}
	d.pending = &req
	d.target = target
	d.armLocked(true)
	d.mu.Unlock()

	d.player.BeginSeek()
	return Scheduled
}

// Settle handles a seek the engine performed on its own (media controls).
// The engine is paused and buffering asserted until the debounce timer fires;
// no new target is applied.
func (d *Debouncer) Settle() {
	pos, dur, ok := d.player.SeekPosition()
	if !ok {
		return
	}
	if dur > 0 && pos >= dur-d.cfg.ForceEndWindow {
		d.Cancel()
		d.player.EndCurrentSong()
		return
	}
	if dur > 0 && pos >= dur-d.cfg.RefuseWindow {
		return
	}

	d.mu.Lock()
	d.armLocked(d.pending != nil)
	d.mu.Unlock()
	d.player.BeginSeek()
}

// Cancel drops any pending request.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
}

// Pending returns the request waiting for the timer, if any.
func (d *Debouncer) Pending() (Request, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending == nil {
		return Request{}, false
	}
	return *d.pending, true
}

// armLocked (re)starts the timer. apply tells whether the pending target is
// applied when it fires. Must be called with d.mu held.
func (d *Debouncer) armLocked(apply bool) {
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.cfg.Debounce, func() {
		d.fire(gen, apply)
	})
}

func (d *Debouncer) fire(gen uint64, apply bool) {
	d.mu.Lock()
	if d.gen != gen {
		d.mu.Unlock()
		return
	}
	target := d.target
	apply = apply && d.pending != nil
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	if apply {
		d.metrics.SeekApplied()
	}
	d.player.FinishSeek(target, apply)
}
