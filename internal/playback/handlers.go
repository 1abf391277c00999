package playback

import (
	"github.com/llehouerou/wavestv/internal/engine"
	"github.com/llehouerou/wavestv/internal/errmsg"
)

// listen registers the controller's handlers on eng. Every handler ignores
// events once session gen is no longer current.
func (c *Controller) listen(gen uint64, eng engine.Engine) []engine.ListenerID {
	handlers := []struct {
		typ engine.EventType
		fn  func(uint64, engine.Event)
	}{
		{engine.EventLoadedMetadata, c.onLoadedMetadata},
		{engine.EventPlaying, c.onPlaying},
		{engine.EventEnded, c.onEnded},
		{engine.EventError, c.onError},
		{engine.EventSeeking, c.onSeeking},
	}
	ids := make([]engine.ListenerID, 0, len(handlers))
	for _, h := range handlers {
		ids = append(ids, eng.AddEventListener(h.typ, func(e engine.Event) {
			h.fn(gen, e)
		}))
	}
	return ids
}

func (c *Controller) onLoadedMetadata(gen uint64, _ engine.Event) {
	c.mu.Lock()
	if c.gen != gen || c.engine == nil {
		c.mu.Unlock()
		return
	}
	c.transitionLocked(StateReady)
	eng, gate := c.engine, c.autoplay
	sid := c.session.ID
	c.mu.Unlock()

	if gate != nil && !gate() {
		c.logger.Debug("autoplay suppressed", "session", sid)
		return
	}
	if err := eng.Play(); err != nil {
		c.report(gen, errmsg.OpPlaybackPlay, err)
	}
}

func (c *Controller) onPlaying(gen uint64, _ engine.Event) {
	c.mu.Lock()
	if c.gen != gen || !c.transitionLocked(StatePlaying) {
		c.mu.Unlock()
		return
	}
	c.loading = false
	sess := *c.session
	announce := !c.announced
	c.announced = true
	c.mu.Unlock()

	c.state.Started(sess.ID, sess.Kind.String(), sess.Thumbnail)
	if announce {
		c.broadcast(func(s *Subscription) {
			s.sendTrack(TrackChange{SessionID: sess.ID, Track: sess.Track, Thumbnail: sess.Thumbnail})
		})
	}
}

func (c *Controller) onEnded(gen uint64, _ engine.Event) {
	c.end(gen, EndCompleted)
}

// onError treats a playback error as the end of the track, so the sequencer
// advances the same way it does on natural completion.
func (c *Controller) onError(gen uint64, e engine.Event) {
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.metrics.PlaybackError()
	c.report(gen, errmsg.OpPlaybackError, e.Err)
	c.state.ResetThumbnail()
	c.end(gen, EndError)
}

func (c *Controller) onSeeking(gen uint64, _ engine.Event) {
	c.mu.Lock()
	if c.gen != gen || c.quiet {
		c.mu.Unlock()
		return
	}
	obs := c.observer
	c.mu.Unlock()

	if obs != nil {
		obs.Settle()
	}
}

// report logs err and publishes it for session gen.
func (c *Controller) report(gen uint64, op errmsg.Op, err error) {
	c.mu.Lock()
	if c.gen != gen || c.session == nil {
		c.mu.Unlock()
		return
	}
	sess := *c.session
	c.mu.Unlock()

	c.logger.Warn(errmsg.Format(op, err), "session", sess.ID, "track", sess.Track.ID)
	c.broadcast(func(s *Subscription) {
		s.sendError(ErrorEvent{Operation: op, SessionID: sess.ID, TrackID: sess.Track.ID, Err: err})
	})
}
