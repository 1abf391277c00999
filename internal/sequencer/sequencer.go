// Package sequencer moves the player through its track queue: explicit
// next/previous, auto-advance at end of track, and the boundary exit.
package sequencer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/llehouerou/wavestv/internal/catalog"
	"github.com/llehouerou/wavestv/internal/errmsg"
	"github.com/llehouerou/wavestv/internal/metrics"
	"github.com/llehouerou/wavestv/internal/playback"
	"github.com/llehouerou/wavestv/internal/playlist"
)

// Defaults used when Config fields are zero.
const (
	DefaultSettle       = 300 * time.Millisecond
	DefaultPollInterval = time.Second
)

// ErrEmptyQueue is returned when the sequencer has no track to play.
var ErrEmptyQueue = errors.New("queue is empty")

const handledSessionsLimit = 64

// Result is the outcome of Advance and Retreat.
type Result int

const (
	// Moved means the queue moved and the new track was started.
	Moved Result = iota
	// Busy means a previous move is still settling.
	Busy
	// Exit means the queue boundary was reached; the player should close.
	Exit
)

// String returns the result name.
func (r Result) String() string {
	switch r {
	case Moved:
		return "moved"
	case Busy:
		return "busy"
	case Exit:
		return "exit"
	default:
		return "unknown"
	}
}

// ExitReason tells why the player should close.
type ExitReason int

const (
	ExitEnd   ExitReason = iota // advanced past the last track
	ExitStart                   // retreated before the first track
	ExitBack                    // the user asked to leave
)

// Player is the controller surface the sequencer drives.
type Player interface {
	Session() playback.Session
	Sample() playback.MediaStatus
	EndCurrentSong()
	ResetProgress()
	Pause()
	Start(ctx context.Context, track catalog.Track, thumbnail string) error
	OnNextPreviousClick(ctx context.Context, track catalog.Track) error
	Subscribe() *playback.Subscription
}

// Config holds the settle window and the progress poll interval.
type Config struct {
	Settle       time.Duration
	PollInterval time.Duration
}

// Sequencer owns the queue of the player screen.
type Sequencer struct {
	player  Player
	cfg     Config
	metrics *metrics.Recorder
	logger  *slog.Logger

	mu            sync.Mutex
	queue         *playlist.Queue
	advancing     bool
	progressReset bool
	settleTimer   *time.Timer
	handled       map[string]struct{}
	handledOrder  []string

	exits chan ExitReason
}

// New creates a sequencer over queue.
func New(p Player, queue *playlist.Queue, cfg Config, m *metrics.Recorder, logger *slog.Logger) *Sequencer {
	if cfg.Settle <= 0 {
		cfg.Settle = DefaultSettle
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sequencer{
		player:  p,
		queue:   queue,
		cfg:     cfg,
		metrics: m,
		logger:  logger.With("component", "sequencer"),
		handled: make(map[string]struct{}),
		exits:   make(chan ExitReason, 1),
	}
}

// Exits delivers boundary and back signals to the shell.
func (s *Sequencer) Exits() <-chan ExitReason {
	return s.exits
}

// Advancing reports whether a move is still settling.
func (s *Sequencer) Advancing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advancing
}

// Index returns the current queue index.
func (s *Sequencer) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.CurrentIndex()
}

// Queue returns a copy of the queued tracks and the current index.
func (s *Sequencer) Queue() ([]catalog.Track, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Tracks(), s.queue.CurrentIndex()
}

// PlayCurrent starts the track at the current index with thumbnail.
func (s *Sequencer) PlayCurrent(ctx context.Context, thumbnail string) error {
	s.mu.Lock()
	t := s.queue.Current()
	s.mu.Unlock()
	if t == nil {
		return ErrEmptyQueue
	}
	return s.player.Start(ctx, *t, thumbnail)
}

// Advance ends the current song and starts the next one. At the last track it
// signals Exit instead.
func (s *Sequencer) Advance(ctx context.Context) (Result, error) {
	return s.move(ctx, true)
}

// Retreat ends the current song and starts the previous one. At the first
// track it signals Exit instead.
func (s *Sequencer) Retreat(ctx context.Context) (Result, error) {
	return s.move(ctx, false)
}

func (s *Sequencer) move(ctx context.Context, forward bool) (Result, error) {
	s.mu.Lock()
	if s.advancing {
		s.mu.Unlock()
		return Busy, nil
	}
	var next *catalog.Track
	if forward {
		next = s.queue.Next()
	} else {
		next = s.queue.Previous()
	}
	if next == nil {
		s.mu.Unlock()
		reason := ExitEnd
		if !forward {
			reason = ExitStart
		}
		s.exit(reason)
		return Exit, nil
	}
	s.advancing = true
	s.progressReset = true
	s.markHandledLocked(s.player.Session().ID)
	index := s.queue.CurrentIndex()
	s.mu.Unlock()

	s.player.EndCurrentSong()
	s.player.ResetProgress()
	err := s.player.OnNextPreviousClick(ctx, *next)
	s.armSettle()

	op := errmsg.OpTrackNext
	if !forward {
		op = errmsg.OpTrackPrevious
	}
	if err != nil {
		s.logger.Warn(errmsg.Format(op, err), "index", index)
		return Moved, err
	}
	s.logger.Debug("moved", "index", index, "track", next.ID)
	return Moved, nil
}

// armSettle releases the advancing latch and the progress-reset guard after
// the settle window.
func (s *Sequencer) armSettle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settleTimer != nil {
		s.settleTimer.Stop()
	}
	s.settleTimer = time.AfterFunc(s.cfg.Settle, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.advancing = false
		s.progressReset = false
		s.settleTimer = nil
	})
}

// SeekPastEnd handles a forward seek beyond the duration: the next track
// starts, or on the last track playback pauses and the player exits.
func (s *Sequencer) SeekPastEnd(ctx context.Context) error {
	s.mu.Lock()
	hasNext := s.queue.HasNext()
	s.mu.Unlock()

	if hasNext {
		_, err := s.Advance(ctx)
		return err
	}
	s.player.Pause()
	s.exit(ExitEnd)
	return nil
}

// Back asks the shell to leave the player.
func (s *Sequencer) Back() {
	s.exit(ExitBack)
}

// Poll samples progress and auto-advances once when the position reaches the
// duration. Nothing happens while a move is settling.
func (s *Sequencer) Poll(ctx context.Context) {
	s.mu.Lock()
	reset := s.progressReset
	s.mu.Unlock()
	if reset {
		return
	}

	st := s.player.Sample()
	if st.Duration > 0 && st.Position >= st.Duration {
		s.autoAdvance(ctx, st.SessionID, "poll")
	}
}

// autoAdvance ends sessionID and advances, at most once per session.
func (s *Sequencer) autoAdvance(ctx context.Context, sessionID, trigger string) {
	if sessionID == "" {
		return
	}
	s.mu.Lock()
	if _, done := s.handled[sessionID]; done {
		s.mu.Unlock()
		return
	}
	if sessionID != s.player.Session().ID {
		s.mu.Unlock()
		return
	}
	s.markHandledLocked(sessionID)
	s.mu.Unlock()

	s.metrics.AutoAdvance(trigger)
	s.logger.Debug("auto advance", "session", sessionID, "trigger", trigger)
	s.player.EndCurrentSong()
	if _, err := s.Advance(ctx); err != nil {
		s.logger.Warn("auto advance", "err", err)
	}
}

func (s *Sequencer) markHandledLocked(id string) {
	if id == "" {
		return
	}
	if _, ok := s.handled[id]; ok {
		return
	}
	s.handled[id] = struct{}{}
	s.handledOrder = append(s.handledOrder, id)
	if len(s.handledOrder) > handledSessionsLimit {
		delete(s.handled, s.handledOrder[0])
		s.handledOrder = s.handledOrder[1:]
	}
}

// Run polls progress and routes session end events into auto-advance until
// ctx is done or the player subscription closes.
func (s *Sequencer) Run(ctx context.Context) {
	sub := s.player.Subscribe()
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Done:
			return
		case <-ticker.C:
			s.Poll(ctx)
		case e := <-sub.Ended:
			// Ends issued by a move are already marked handled.
			s.autoAdvance(ctx, e.SessionID, e.Reason.String())
		}
	}
}

// Replace swaps the queue wholesale.
func (s *Sequencer) Replace(q *playlist.Queue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = q
}

// Shuffle replaces the queue with a shuffled copy positioned at its first
// track, and returns that track.
func (s *Sequencer) Shuffle() (catalog.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queue.IsEmpty() {
		return catalog.Track{}, ErrEmptyQueue
	}
	s.queue = s.queue.Shuffled()
	return *s.queue.Current(), nil
}

// Stop cancels the settle timer and releases the latch.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settleTimer != nil {
		s.settleTimer.Stop()
		s.settleTimer = nil
	}
	s.advancing = false
	s.progressReset = false
}

func (s *Sequencer) exit(reason ExitReason) {
	select {
	case s.exits <- reason:
	default:
	}
}
