// Package mediactl defines the host media-control contract: the handler a
// playback session registers so system transport controls reach it.
package mediactl

import (
	"context"
	"time"
)

// Handler receives transport commands from the host.
type Handler interface {
	HandlePlay(ctx context.Context) error
	HandlePause(ctx context.Context) error
	HandleStop(ctx context.Context) error
	HandleTogglePlayPause(ctx context.Context) error
	HandleStartOver(ctx context.Context) error
	HandleFastForward(ctx context.Context) error
	HandleRewind(ctx context.Context) error
	// HandleSeek moves to an absolute position.
	HandleSeek(ctx context.Context, position time.Duration) error
}

// Host is the platform media-control integration. At most one handler has
// focus at a time.
type Host interface {
	SetMediaControlFocus(ctx context.Context, h Handler) error
	ClearMediaControlFocus(ctx context.Context) error
}

// Noop ignores every command. It is the default handler when the host has
// no platform behaviour of its own.
type Noop struct{}

var _ Handler = Noop{}

func (Noop) HandlePlay(context.Context) error { return nil }
func (Noop) HandlePause(context.Context) error { return nil }
func (Noop) HandleStop(context.Context) error { return nil }
func (Noop) HandleTogglePlayPause(context.Context) error { return nil }
func (Noop) HandleStartOver(context.Context) error { return nil }
func (Noop) HandleFastForward(context.Context) error { return nil }
func (Noop) HandleRewind(context.Context) error { return nil }
func (Noop) HandleSeek(context.Context, time.Duration) error { return nil }
