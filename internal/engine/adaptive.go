package engine

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Adaptive hands the source manifest to a Streamer that decodes it into the
// element.
type Adaptive struct {
	Element
	Streamer Streamer
}

var _ Engine = (*Adaptive)(nil)

// Kind returns KindAdaptive.
func (a *Adaptive) Kind() Kind { return KindAdaptive }

// Load passes the manifest to the streamer without autoplay; playback starts
// when the controller calls Play after metadata is loaded.
func (a *Adaptive) Load(ctx context.Context, src Source) error {
	return a.Streamer.Load(ctx, Content{URI: src.URL}, false)
}

// SetCurrentTime seeks through the streamer when it can restart the stream,
// otherwise on the element.
func (a *Adaptive) SetCurrentTime(t time.Duration) error {
	if s, ok := a.Streamer.(Seeker); ok {
		return s.Seek(t)
	}
	return a.Element.SetCurrentTime(t)
}

// Release unloads the streamer, then deinitializes the element. An unload
// failure never skips deinitialization.
func (a *Adaptive) Release(ctx context.Context) error {
	var unloadErr error
	if err := a.Streamer.Unload(ctx); err != nil {
		unloadErr = fmt.Errorf("unload stream: %w", err)
	}
	var deinitErr error
	if err := a.Element.Deinitialize(ctx); err != nil {
		deinitErr = fmt.Errorf("deinitialize element: %w", err)
	}
	return errors.Join(unloadErr, deinitErr)
}
