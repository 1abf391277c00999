// internal/engine/engine.go
package engine

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

// ErrNotInitialized is returned when an engine is used before Initialize.
var ErrNotInitialized = errors.New("engine not initialized")

// Kind selects the engine implementation for a track.
type Kind int

const (
	// KindDirect plays a resolved file URL with a plain media element.
	KindDirect Kind = iota
	// KindAdaptive hands a manifest to an external streaming collaborator.
	KindAdaptive
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindDirect:
		return "direct"
	case KindAdaptive:
		return "adaptive"
	default:
		return "unknown"
	}
}

// KindFor returns the engine kind for a track type. Only mp3 and mp4 files are
// played directly; every other type is treated as a streaming manifest.
func KindFor(trackType string) Kind {
	switch strings.ToLower(strings.TrimSpace(trackType)) {
	case "mp3", "mp4":
		return KindDirect
	default:
		return KindAdaptive
	}
}

// ReadyState mirrors the media element readiness levels.
type ReadyState int

const (
	HaveNothing ReadyState = iota
	HaveMetadata
	HaveCurrentData
	HaveFutureData
	HaveEnoughData
)

// String returns the ready state name.
func (r ReadyState) String() string {
	switch r {
	case HaveNothing:
		return "HaveNothing"
	case HaveMetadata:
		return "HaveMetadata"
	case HaveCurrentData:
		return "HaveCurrentData"
	case HaveFutureData:
		return "HaveFutureData"
	case HaveEnoughData:
		return "HaveEnoughData"
	default:
		return "Unknown"
	}
}

// Source is what the controller asks an engine to load.
type Source struct {
	URL  string
	Type string
}

// Content is the descriptor handed to a streaming collaborator.
type Content struct {
	URI    string
	Secure bool
	UHD    bool
}

// Element is a media element: the part of an engine that decodes and outputs
// audio. Direct engines feed it a URL; adaptive engines let a Streamer attach a
// decoded stream to it.
type Element interface {
	Initialize(ctx context.Context) error
	Deinitialize(ctx context.Context) error

	// Open loads a file or URL of the given format ("mp3", "m4a", ...).
	Open(ctx context.Context, url, format string) error
	// Attach plays an already decoded WAV stream that starts at offset.
	// A zero duration means unknown.
	Attach(rc io.ReadCloser, offset, duration time.Duration) error

	Play() error
	Pause()
	Paused() bool
	Ended() bool
	ReadyState() ReadyState
	CurrentTime() time.Duration
	SetCurrentTime(t time.Duration) error
	Duration() time.Duration

	AddEventListener(t EventType, fn Listener) ListenerID
	RemoveEventListener(id ListenerID)
}

// Streamer is the adaptive-streaming collaborator bound to one Element.
type Streamer interface {
	Load(ctx context.Context, c Content, autoplay bool) error
	Unload(ctx context.Context) error
}

// Seeker is implemented by streamers that seek by restarting the stream.
type Seeker interface {
	Seek(pos time.Duration) error
}

// Engine is the uniform capability set the session controller programs
// against. The controller never inspects the concrete variant.
type Engine interface {
	Kind() Kind
	Initialize(ctx context.Context) error
	Load(ctx context.Context, src Source) error

	Play() error
	Pause()
	Paused() bool
	Ended() bool
	ReadyState() ReadyState
	CurrentTime() time.Duration
	SetCurrentTime(t time.Duration) error
	Duration() time.Duration

	AddEventListener(t EventType, fn Listener) ListenerID
	RemoveEventListener(id ListenerID)

	// Release tears the engine down. It must be called exactly once, after
	// every listener has been removed.
	Release(ctx context.Context) error
}

// Factory constructs engines. NewStreamer is only needed for adaptive
// engines.
type Factory struct {
	NewElement  func() Element
	NewStreamer func(Element) Streamer
}

// New builds the engine variant for kind.
func (f Factory) New(kind Kind) (Engine, error) {
	if f.NewElement == nil {
		return nil, errors.New("engine factory: no element constructor")
	}
	el := f.NewElement()
	switch kind {
	case KindDirect:
		return &Direct{Element: el}, nil
	case KindAdaptive:
		if f.NewStreamer == nil {
			return nil, errors.New("engine factory: no streamer constructor")
		}
		return &Adaptive{Element: el, Streamer: f.NewStreamer(el)}, nil
	default:
		return nil, errors.New("engine factory: unknown kind " + kind.String())
	}
}
