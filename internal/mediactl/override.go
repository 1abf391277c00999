package mediactl

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSeekStep is the fast-forward and rewind distance.
const DefaultSeekStep = 10 * time.Second

// Media is the part of a playback engine the override handler drives.
type Media interface {
	Play() error
	Pause()
	Paused() bool
	CurrentTime() time.Duration
	SetCurrentTime(t time.Duration) error
	Duration() time.Duration
}

// Override operates directly on a session's engine when Enabled, and
// forwards every command to Default otherwise.
type Override struct {
	Media   Media
	Enabled bool
	Default Handler
	Step    time.Duration
	Logger  *slog.Logger
}

var _ Handler = (*Override)(nil)

// NewOverride creates an override handler for m. A nil fallback means Noop.
func NewOverride(m Media, enabled bool, fallback Handler, logger *slog.Logger) *Override {
	if fallback == nil {
		fallback = Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Override{
		Media:   m,
		Enabled: enabled,
		Default: fallback,
		Step:    DefaultSeekStep,
		Logger:  logger.With("component", "mediactl"),
	}
}

func (o *Override) step() time.Duration {
	if o.Step <= 0 {
		return DefaultSeekStep
	}
	return o.Step
}

func (o *Override) HandlePlay(ctx context.Context) error {
	if !o.Enabled {
		return o.Default.HandlePlay(ctx)
	}
	o.Logger.Debug("media control", "cmd", "play")
	return o.Media.Play()
}

func (o *Override) HandlePause(ctx context.Context) error {
	if !o.Enabled {
		return o.Default.HandlePause(ctx)
	}
	o.Logger.Debug("media control", "cmd", "pause")
	o.Media.Pause()
	return nil
}

// HandleStop pauses; a TV session is never stopped from the remote.
func (o *Override) HandleStop(ctx context.Context) error {
	if !o.Enabled {
		return o.Default.HandleStop(ctx)
	}
	o.Logger.Debug("media control", "cmd", "stop")
	o.Media.Pause()
	return nil
}

func (o *Override) HandleTogglePlayPause(ctx context.Context) error {
	if !o.Enabled {
		return o.Default.HandleTogglePlayPause(ctx)
	}
	o.Logger.Debug("media control", "cmd", "toggle")
	if o.Media.Paused() {
		return o.Media.Play()
	}
	o.Media.Pause()
	return nil
}

func (o *Override) HandleStartOver(ctx context.Context) error {
	if !o.Enabled {
		return o.Default.HandleStartOver(ctx)
	}
	o.Logger.Debug("media control", "cmd", "start over")
	if err := o.Media.SetCurrentTime(0); err != nil {
		return err
	}
	return o.Media.Play()
}

// HandleFastForward moves forward one step, clamped to the duration.
func (o *Override) HandleFastForward(ctx context.Context) error {
	if !o.Enabled {
		return o.Default.HandleFastForward(ctx)
	}
	pos, dur := o.Media.CurrentTime(), o.Media.Duration()
	if dur <= 0 {
		o.Logger.Warn("could not seek forward", "step", o.step(), "position", pos, "duration", dur)
		return nil
	}
	return o.Media.SetCurrentTime(min(pos+o.step(), dur))
}

// HandleRewind moves back one step, clamped to zero.
func (o *Override) HandleRewind(ctx context.Context) error {
	if !o.Enabled {
		return o.Default.HandleRewind(ctx)
	}
	pos := o.Media.CurrentTime()
	return o.Media.SetCurrentTime(max(pos-o.step(), 0))
}

func (o *Override) HandleSeek(ctx context.Context, position time.Duration) error {
	if !o.Enabled {
		return o.Default.HandleSeek(ctx, position)
	}
	o.Logger.Debug("media control", "cmd", "seek", "position", position)
	return o.Media.SetCurrentTime(max(position, 0))
}
