package playback

import (
	"time"

	"github.com/llehouerou/wavestv/internal/catalog"
	"github.com/llehouerou/wavestv/internal/engine"
	"github.com/llehouerou/wavestv/internal/errmsg"
)

// Session returns a snapshot of the current session. Without one the
// snapshot is in StateIdle.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return Session{State: StateIdle}
	}
	return *c.session
}

// NowPlaying returns the track of the current session while it is live.
func (c *Controller) NowPlaying() (catalog.Track, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil || !c.session.State.IsActive() {
		return catalog.Track{}, false
	}
	return c.session.Track, true
}

// Media reads the engine of the current session.
func (c *Controller) Media() MediaStatus {
	c.mu.Lock()
	eng := c.engine
	st := MediaStatus{State: StateIdle}
	if c.session != nil {
		st.SessionID = c.session.ID
		st.State = c.session.State
	}
	c.mu.Unlock()

	if eng == nil {
		return st
	}
	st.Position = eng.CurrentTime()
	st.Duration = eng.Duration()
	st.Paused = eng.Paused()
	st.Ended = eng.Ended()
	st.ReadyState = eng.ReadyState()
	return st
}

// Sample reads the engine and updates the progress value. Progress is left
// alone while a seek is buffering.
func (c *Controller) Sample() MediaStatus {
	st := c.Media()

	c.mu.Lock()
	changed := false
	if st.SessionID != "" && c.session != nil && st.SessionID == c.session.ID &&
		c.engine != nil && !c.buffering && st.Position != c.progress {
		c.progress = st.Position
		changed = true
	}
	c.mu.Unlock()

	if changed {
		c.broadcast(func(s *Subscription) { s.sendPosition(st.Position, st.Duration) })
	}
	return st
}

// ResetProgress sets the progress value to zero.
func (c *Controller) ResetProgress() {
	c.mu.Lock()
	c.progress = 0
	c.mu.Unlock()
	c.broadcast(func(s *Subscription) { s.sendPosition(0, 0) })
}

// Progress returns the last sampled position.
func (c *Controller) Progress() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress
}

// IsBuffering reports whether a seek is in flight.
func (c *Controller) IsBuffering() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buffering
}

// IsLoading reports whether the current session has not started playing yet.
func (c *Controller) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// MediaType returns the engine kind of the current session.
func (c *Controller) MediaType() engine.Kind {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return engine.KindDirect
	}
	return c.session.Kind
}

// SeekPosition returns the engine position and duration when the session
// accepts seeks.
func (c *Controller) SeekPosition() (pos, dur time.Duration, ok bool) {
	c.mu.Lock()
	eng := c.engine
	ok = eng != nil && c.session != nil && c.session.State.IsActive()
	c.mu.Unlock()
	if !ok {
		return 0, 0, false
	}
	return eng.CurrentTime(), eng.Duration(), true
}

// BeginSeek pauses the engine and asserts buffering until FinishSeek.
func (c *Controller) BeginSeek() {
	c.mu.Lock()
	eng := c.engine
	if eng == nil || c.session == nil || !c.session.State.IsActive() {
		c.mu.Unlock()
		return
	}
	was := c.buffering
	c.buffering = true
	c.transitionLocked(StateBuffering)
	c.mu.Unlock()

	eng.Pause()
	if !was {
		c.broadcast(func(s *Subscription) { s.sendBuffering(true) })
	}
}

// FinishSeek applies target when apply is set, clears buffering, updates the
// progress value and resumes playback.
func (c *Controller) FinishSeek(target time.Duration, apply bool) {
	c.mu.Lock()
	eng, gen := c.engine, c.gen
	c.mu.Unlock()
	if eng == nil {
		return
	}

	if apply {
		if err := c.setTimeQuietly(eng, target); err != nil {
			c.report(gen, errmsg.OpPlaybackSeek, err)
		}
	}
	pos, dur := eng.CurrentTime(), eng.Duration()

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return
	}
	was := c.buffering
	c.buffering = false
	c.progress = pos
	c.mu.Unlock()

	if was {
		c.broadcast(func(s *Subscription) { s.sendBuffering(false) })
	}
	c.broadcast(func(s *Subscription) { s.sendPosition(pos, dur) })
	if err := eng.Play(); err != nil {
		c.report(gen, errmsg.OpPlaybackPlay, err)
	}
}
