// Package lifecycle connects host app-state changes and remote-control key
// events to the player screen.
package lifecycle

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/llehouerou/wavestv/internal/engine"
	"github.com/llehouerou/wavestv/internal/playback"
	"github.com/llehouerou/wavestv/internal/seek"
	"github.com/llehouerou/wavestv/internal/sequencer"
)

// DefaultSeekStep is the seek distance of one remote press.
const DefaultSeekStep = 10 * time.Second

// AppState is the host application state.
type AppState int

const (
	Foreground AppState = iota
	Background
)

// String returns the state name.
func (s AppState) String() string {
	if s == Background {
		return "background"
	}
	return "foreground"
}

// Button identifies a remote-control button.
type Button string

const (
	ButtonUp           Button = "up"
	ButtonDown         Button = "down"
	ButtonLeft         Button = "left"
	ButtonRight        Button = "right"
	ButtonSelect       Button = "select"
	ButtonMenu         Button = "menu"
	ButtonBack         Button = "back"
	ButtonPlayPause    Button = "playpause"
	ButtonSkipBackward Button = "skip_backward"
	ButtonSkipForward  Button = "skip_forward"
	ButtonPageLeft     Button = "page_left"
	ButtonPageRight    Button = "page_right"
)

// KeyAction is the press phase of a remote event.
type KeyAction int

const (
	KeyDown KeyAction = iota
	KeyUp
)

// RemoteEvent is one remote-control key event.
type RemoteEvent struct {
	Button Button
	Action KeyAction
}

// Control is an on-screen playback control that can be highlighted.
type Control int

const (
	ControlNone Control = iota
	ControlSkipBackward
	ControlPlayPause
	ControlSkipForward
)

// AppStateNotifier delivers host app-state changes. The returned func
// unsubscribes.
type AppStateNotifier interface {
	OnAppStateChange(fn func(AppState)) func()
}

// RemoteNotifier delivers remote-control key events. The returned func
// unsubscribes.
type RemoteNotifier interface {
	OnRemoteEvent(fn func(RemoteEvent)) func()
}

// Player is the playback surface the bridge acts on.
type Player interface {
	Media() playback.MediaStatus
	Progress() time.Duration
	Pause()
	TogglePlayPause() error
}

// Seeker accepts relative seek requests.
type Seeker interface {
	Request(ctx context.Context, delta time.Duration) seek.Outcome
}

// Navigator moves between tracks and leaves the player.
type Navigator interface {
	Advance(ctx context.Context) (sequencer.Result, error)
	Retreat(ctx context.Context) (sequencer.Result, error)
	Back()
}

// Bridge routes lifecycle and remote events to the player screen.
type Bridge struct {
	player Player
	seeker Seeker
	nav    Navigator
	step   time.Duration
	logger *slog.Logger

	mu             sync.Mutex
	focused        bool
	seekbarFocused bool
	highlight      Control
}

// New creates a bridge. A zero step uses DefaultSeekStep. s and nav may be
// nil for a player without a queue, such as a preview; seek and track
// buttons are then ignored.
func New(p Player, s Seeker, nav Navigator, step time.Duration, logger *slog.Logger) *Bridge {
	if step <= 0 {
		step = DefaultSeekStep
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		player: p,
		seeker: s,
		nav:    nav,
		step:   step,
		logger: logger.With("component", "lifecycle"),
	}
}

// SetFocused records whether the player screen has focus. Losing focus
// clears the highlight.
func (b *Bridge) SetFocused(focused bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.focused = focused
	if !focused {
		b.highlight = ControlNone
	}
}

// SetSeekbarFocused records whether the seek bar has focus.
func (b *Bridge) SetSeekbarFocused(focused bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seekbarFocused = focused
}

// SeekbarFocused reports whether the seek bar has focus.
func (b *Bridge) SeekbarFocused() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.seekbarFocused
}

// Highlight returns the control highlighted by the last key press.
func (b *Bridge) Highlight() Control {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.highlight
}

// HandleAppState pauses playback when the app goes to the background while
// audio is actually playing.
func (b *Bridge) HandleAppState(state AppState) {
	if state != Background {
		return
	}
	st := b.player.Media()
	if st.Position <= 0 || st.Paused || st.Ended || st.ReadyState <= engine.HaveCurrentData {
		return
	}
	b.logger.Debug("pausing for background", "session", st.SessionID)
	b.player.Pause()
}

// HandleRemote applies one remote event. Events are ignored while the player
// screen is not focused.
func (b *Bridge) HandleRemote(ctx context.Context, evt RemoteEvent) {
	b.mu.Lock()
	if !b.focused {
		b.mu.Unlock()
		return
	}
	seekbar := b.seekbarFocused
	if evt.Action == KeyUp {
		b.highlight = ControlNone
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	if c := controlFor(evt.Button); c != ControlNone && b.player.Media().Position != 0 {
		b.mu.Lock()
		b.highlight = c
		b.mu.Unlock()
	}

	switch evt.Button {
	case ButtonPlayPause:
		if err := b.player.TogglePlayPause(); err != nil {
			b.logger.Warn("toggle play/pause", "err", err)
		}
	case ButtonSkipForward:
		b.seek(ctx, b.step)
	case ButtonSkipBackward:
		b.seek(ctx, -b.step)
	case ButtonLeft:
		if seekbar {
			b.seek(ctx, -b.step)
		}
	case ButtonRight:
		if seekbar && b.player.Progress() > 0 {
			b.seek(ctx, b.step)
		}
	case ButtonPageRight:
		if b.nav != nil {
			b.move(ctx, b.nav.Advance)
		}
	case ButtonPageLeft:
		if b.nav != nil {
			b.move(ctx, b.nav.Retreat)
		}
	case ButtonBack:
		if b.nav != nil {
			b.nav.Back()
		}
	}
}

func (b *Bridge) seek(ctx context.Context, delta time.Duration) {
	if b.seeker == nil {
		b.logger.Debug("seek ignored, no seeker", "delta", delta)
		return
	}
	out := b.seeker.Request(ctx, delta)
	b.logger.Debug("seek", "delta", delta, "outcome", out)
}

func (b *Bridge) move(ctx context.Context, fn func(context.Context) (sequencer.Result, error)) {
	res, err := fn(ctx)
	if err != nil {
		b.logger.Warn("track change", "result", res, "err", err)
	}
}

func controlFor(btn Button) Control {
	switch btn {
	case ButtonSkipBackward:
		return ControlSkipBackward
	case ButtonPlayPause:
		return ControlPlayPause
	case ButtonSkipForward:
		return ControlSkipForward
	default:
		return ControlNone
	}
}

// Attach subscribes the bridge to both notifiers. The returned func detaches
// it again.
func (b *Bridge) Attach(ctx context.Context, apps AppStateNotifier, remotes RemoteNotifier) func() {
	var undo []func()
	if apps != nil {
		undo = append(undo, apps.OnAppStateChange(b.HandleAppState))
	}
	if remotes != nil {
		undo = append(undo, remotes.OnRemoteEvent(func(e RemoteEvent) {
			b.HandleRemote(ctx, e)
		}))
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			for _, fn := range undo {
				fn()
			}
		})
	}
}
