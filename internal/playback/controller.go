// internal/playback/controller.go
package playback

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/llehouerou/wavestv/internal/catalog"
	"github.com/llehouerou/wavestv/internal/engine"
	"github.com/llehouerou/wavestv/internal/errmsg"
	"github.com/llehouerou/wavestv/internal/mediactl"
	"github.com/llehouerou/wavestv/internal/metrics"
	"github.com/llehouerou/wavestv/internal/playstate"
)

// ErrClosed is returned by Start after Close.
var ErrClosed = errors.New("playback controller closed")

// AutoplayGate decides whether a session starts playing once its metadata is
// loaded.
type AutoplayGate func() bool

// SeekObserver is told about engine seeks the controller did not issue
// itself, and about sessions going away.
type SeekObserver interface {
	Settle()
	Cancel()
}

// Options configures a Controller.
type Options struct {
	Engines engine.Factory

	// Host receives the media-control handler of each session. Optional.
	Host                  mediactl.Host
	OverrideMediaControls bool
	DefaultHandler        mediactl.Handler

	// State is the shared now-playing writer. A private one is created when nil.
	State   *playstate.Writer
	Metrics *metrics.Recorder
	Logger  *slog.Logger

	// Name identifies the controller in logs ("player", "preview").
	Name string
}

// Session is a snapshot of the current playback session.
type Session struct {
	ID        string
	Track     catalog.Track
	Kind      engine.Kind
	Thumbnail string
	State     State
}

// MediaStatus is a snapshot of the engine of the current session.
type MediaStatus struct {
	SessionID  string
	State      State
	Position   time.Duration
	Duration   time.Duration
	Paused     bool
	Ended      bool
	ReadyState engine.ReadyState
}

// Controller owns at most one playback session and its engine.
//
// The mutex is never held while calling into the engine: engines may emit
// events synchronously from inside a call, and handlers take the mutex.
type Controller struct {
	engines        engine.Factory
	host           mediactl.Host
	override       bool
	defaultHandler mediactl.Handler
	state          *playstate.Writer
	metrics        *metrics.Recorder
	logger         *slog.Logger

	mu           sync.Mutex
	session      *Session
	announced    bool
	engine       engine.Engine
	listeners    []engine.ListenerID
	gen          uint64
	cancel       context.CancelFunc // cancels the engine calls of the session
	initializing bool
	loading      bool
	buffering    bool
	quiet        bool // suppresses seeking events caused by the controller
	progress     time.Duration
	autoplay     AutoplayGate
	observer     SeekObserver
	closed       bool

	subs       []*Subscription
	subsClosed bool
	subsMu     sync.RWMutex
}

// New creates a controller.
func New(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	name := opts.Name
	if name == "" {
		name = "player"
	}
	w := opts.State
	if w == nil {
		_, w = playstate.New(catalog.MusicIcon)
	}
	return &Controller{
		engines:        opts.Engines,
		host:           opts.Host,
		override:       opts.OverrideMediaControls,
		defaultHandler: opts.DefaultHandler,
		state:          w,
		metrics:        opts.Metrics,
		logger:         logger.With("component", "playback", "controller", name),
	}
}

// SetAutoplayGate installs the gate consulted when metadata is loaded.
// A nil gate always autoplays.
func (c *Controller) SetAutoplayGate(g AutoplayGate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoplay = g
}

// SetSeekObserver installs the observer notified of external seeks.
func (c *Controller) SetSeekObserver(o SeekObserver) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observer = o
}

// Start tears down the current session, then creates, initializes and loads
// an engine for track. thumbnail overrides the track thumbnail when set.
//
// Engine failures never reach the caller: the session lands in Errored, the
// shared active flag is reset and an ErrorEvent is published. A Start issued
// while another is initializing is ignored. Start only returns ErrClosed.
func (c *Controller) Start(ctx context.Context, track catalog.Track, thumbnail string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.initializing {
		c.mu.Unlock()
		c.logger.Debug("start ignored, initialization in flight", "track", track.ID)
		return nil
	}
	c.initializing = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.initializing = false
		c.mu.Unlock()
	}()

	kind := engine.KindFor(track.Type)
	c.destroy(ctx)

	if thumbnail == "" {
		thumbnail = track.Thumbnail
	}
	sess := &Session{
		ID:        uuid.NewString(),
		Track:     track,
		Kind:      kind,
		Thumbnail: thumbnail,
		State:     StateIdle,
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.gen++
	gen := c.gen
	var sctx context.Context
	sctx, c.cancel = context.WithCancel(ctx)
	c.session = sess
	c.announced = false
	c.loading = true
	c.progress = 0
	c.transitionLocked(StateInitializing)
	c.mu.Unlock()

	log := c.logger.With("session", sess.ID, "track", track.ID, "kind", kind.String())

	eng, err := c.engines.New(kind)
	if err != nil {
		c.fail(ctx, gen, nil, errmsg.OpEngineCreate, err)
		return nil
	}
	if err := eng.Initialize(sctx); err != nil {
		c.fail(ctx, gen, eng, errmsg.OpEngineInitialize, err)
		return nil
	}

	// Listeners go on before the engine is published so that no event can
	// fire against a handle the controller does not know about.
	ids := c.listen(gen, eng)

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		log.Debug("session superseded during initialization")
		c.release(ctx, eng, ids, false)
		return nil
	}
	c.engine, c.listeners = eng, ids
	c.mu.Unlock()
	c.metrics.SessionStarted(kind.String())

	// A Destroy may run from here on; it takes the published engine and
	// releases it, so each step below checks that gen is still current.
	if c.host != nil {
		h := mediactl.NewOverride(eng, c.override, c.defaultHandler, c.logger)
		if err := c.host.SetMediaControlFocus(sctx, h); err != nil {
			c.fail(ctx, gen, nil, errmsg.OpMediaControl, err)
			return nil
		}
		if !c.current(gen) {
			// The release cleared focus before the handler was set.
			if err := c.host.ClearMediaControlFocus(ctx); err != nil {
				c.logger.Warn("clear media control focus", "err", err)
			}
			log.Debug("session destroyed during media control registration")
			return nil
		}
	}
	if !c.current(gen) {
		log.Debug("session destroyed before load")
		return nil
	}

	if err := eng.Load(sctx, engine.Source{URL: track.AudioURL, Type: track.Type}); err != nil {
		c.fail(ctx, gen, nil, errmsg.OpEngineLoad, err)
		return nil
	}
	if !c.current(gen) {
		// Whatever the load acquired after the release is dropped here.
		if err := eng.Release(ctx); err != nil {
			c.logger.Debug("release after superseded load", "err", err)
		}
		log.Debug("session destroyed during load")
		return nil
	}
	log.Info("session started", "url", track.AudioURL)
	return nil
}

// current reports whether gen is still the live session.
func (c *Controller) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen == gen
}

// OnNextPreviousClick starts track with its own thumbnail.
func (c *Controller) OnNextPreviousClick(ctx context.Context, track catalog.Track) error {
	return c.Start(ctx, track, "")
}

// Destroy releases the current session. It is a no-op when there is no live
// session and never returns an engine error.
func (c *Controller) Destroy(ctx context.Context) error {
	c.destroy(ctx)
	return nil
}

func (c *Controller) destroy(ctx context.Context) {
	c.mu.Lock()
	if c.session == nil || c.session.State.IsTerminal() {
		c.mu.Unlock()
		return
	}
	c.gen++
	eng, ids := c.engine, c.listeners
	c.engine, c.listeners = nil, nil
	cancel := c.cancel
	c.cancel = nil
	obs := c.observer
	wasBuffering := c.buffering
	c.buffering, c.loading, c.quiet = false, false, false
	c.progress = 0
	sid := c.session.ID
	c.transitionLocked(StateDestroyed)
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if obs != nil {
		obs.Cancel()
	}
	if wasBuffering {
		c.broadcast(func(s *Subscription) { s.sendBuffering(false) })
	}
	if eng != nil {
		c.release(ctx, eng, ids, true)
	}
	c.state.Reset()
	c.logger.Debug("session destroyed", "session", sid)
}

// release detaches listeners and tears eng down. Errors are logged and
// swallowed. published is true once the engine was handed to c.engine.
func (c *Controller) release(ctx context.Context, eng engine.Engine, ids []engine.ListenerID, published bool) {
	for _, id := range ids {
		eng.RemoveEventListener(id)
	}
	eng.Pause()
	if published {
		if c.host != nil {
			if err := c.host.ClearMediaControlFocus(ctx); err != nil {
				c.logger.Warn("clear media control focus", "err", err)
			}
		}
		c.metrics.SessionEnded()
	}
	if err := eng.Release(ctx); err != nil {
		c.logger.Warn(errmsg.Format(errmsg.OpEngineRelease, err), "kind", eng.Kind().String())
		c.metrics.TeardownFailure()
	}
}

// fail handles an initialization failure of session gen. owned is the engine
// when it has not been published yet.
func (c *Controller) fail(ctx context.Context, gen uint64, owned engine.Engine, op errmsg.Op, err error) {
	eng := owned
	var ids []engine.ListenerID
	published := false

	c.mu.Lock()
	current := c.gen == gen
	if owned == nil && current {
		eng, ids = c.engine, c.listeners
		c.engine, c.listeners = nil, nil
		published = eng != nil
	}
	var sess Session
	if current {
		c.transitionLocked(StateErrored)
		c.loading, c.buffering = false, false
		sess = *c.session
	}
	c.mu.Unlock()

	if eng != nil {
		c.release(ctx, eng, ids, published)
	}
	if !current {
		c.logger.Debug("superseded session failed", "op", op, "err", err)
		return
	}

	c.state.Deactivate()
	c.metrics.InitFailure()
	c.logger.Error(errmsg.Format(op, err), "session", sess.ID, "track", sess.Track.ID)
	c.broadcast(func(s *Subscription) {
		s.sendError(ErrorEvent{Operation: op, SessionID: sess.ID, TrackID: sess.Track.ID, Err: err})
	})
}

// EndCurrentSong rewinds the engine, marks the song ended and moves the
// session to Ended. Without a session only the shared flags change.
func (c *Controller) EndCurrentSong() {
	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()
	c.end(gen, EndRequested)
}

func (c *Controller) end(gen uint64, reason EndReason) {
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return
	}
	if c.session != nil && c.session.State == StateInitializing && reason == EndError {
		// An error before metadata fails the session but still counts as an
		// end of track for auto-advance.
		c.transitionLocked(StateErrored)
		c.loading = false
		sess := *c.session
		c.mu.Unlock()
		c.state.Ended()
		c.broadcast(func(s *Subscription) {
			s.sendEnded(Ended{SessionID: sess.ID, TrackID: sess.Track.ID, Reason: reason})
		})
		return
	}
	if c.session == nil || !c.session.State.CanTransitionTo(StateEnded) {
		ended := c.session != nil && c.session.State == StateEnded
		c.mu.Unlock()
		if !ended {
			c.state.Ended()
		}
		return
	}
	eng := c.engine
	c.mu.Unlock()

	if eng != nil {
		if err := c.setTimeQuietly(eng, 0); err != nil {
			c.logger.Debug("rewind on end", "err", err)
		}
	}

	c.mu.Lock()
	if c.gen != gen || !c.transitionLocked(StateEnded) {
		c.mu.Unlock()
		return
	}
	wasBuffering := c.buffering
	c.buffering, c.loading = false, false
	obs := c.observer
	sess := *c.session
	c.mu.Unlock()

	if obs != nil {
		obs.Cancel()
	}
	c.state.Ended()
	if wasBuffering {
		c.broadcast(func(s *Subscription) { s.sendBuffering(false) })
	}
	c.logger.Debug("session ended", "session", sess.ID, "reason", reason.String())
	c.broadcast(func(s *Subscription) {
		s.sendEnded(Ended{SessionID: sess.ID, TrackID: sess.Track.ID, Reason: reason})
	})
}

func (c *Controller) setTimeQuietly(eng engine.Engine, t time.Duration) error {
	c.mu.Lock()
	c.quiet = true
	c.mu.Unlock()
	err := eng.SetCurrentTime(t)
	c.mu.Lock()
	c.quiet = false
	c.mu.Unlock()
	return err
}

// Play resumes the current session.
func (c *Controller) Play() error {
	c.mu.Lock()
	eng := c.engine
	c.mu.Unlock()
	if eng == nil {
		return nil
	}
	return eng.Play()
}

// Pause pauses the current session.
func (c *Controller) Pause() {
	c.mu.Lock()
	eng, gen := c.engine, c.gen
	c.mu.Unlock()
	if eng == nil {
		return
	}
	eng.Pause()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen == gen && c.session.State == StatePlaying {
		c.transitionLocked(StatePaused)
	}
}

// TogglePlayPause plays a paused session and pauses a playing one.
func (c *Controller) TogglePlayPause() error {
	c.mu.Lock()
	eng := c.engine
	c.mu.Unlock()
	if eng == nil {
		return nil
	}
	if eng.Paused() {
		return c.Play()
	}
	c.Pause()
	return nil
}

// Close destroys the session and closes every subscription.
func (c *Controller) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.destroy(ctx)

	c.subsMu.Lock()
	for _, sub := range c.subs {
		sub.close()
	}
	c.subs = nil
	c.subsClosed = true
	c.subsMu.Unlock()
	return nil
}

// Subscribe creates a new event subscription.
func (c *Controller) Subscribe() *Subscription {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	sub := newSubscription()
	if c.subsClosed {
		sub.close()
		return sub
	}
	c.subs = append(c.subs, sub)
	return sub
}

func (c *Controller) broadcast(send func(*Subscription)) {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, sub := range c.subs {
		send(sub)
	}
}

// transitionLocked moves the session to next if the table allows it.
// Must be called with c.mu held.
func (c *Controller) transitionLocked(next State) bool {
	if c.session == nil {
		return false
	}
	prev := c.session.State
	if prev == next {
		return true
	}
	if !prev.CanTransitionTo(next) {
		c.logger.Warn("rejected session transition",
			"session", c.session.ID, "from", prev.String(), "to", next.String())
		return false
	}
	c.session.State = next
	c.logger.Debug("session transition",
		"session", c.session.ID, "from", prev.String(), "to", next.String())
	e := StateChange{SessionID: c.session.ID, Previous: prev, Current: next}
	c.broadcast(func(s *Subscription) { s.sendState(e) })
	return true
}
