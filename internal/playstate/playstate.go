// Package playstate holds the process-wide "now playing" flags read by the
// presentation layer.
//
// Only a playback controller writes them, through the Writer returned by
// New. Everything else reads through Store.
package playstate

import (
	"sync"
)

const subscriberBufferSize = 16

// Snapshot is a copy of the shared playback flags.
type Snapshot struct {
	AudioActive bool   // a session is playing
	SongEnded   bool   // the last session ended or was destroyed
	Thumbnail   string // thumbnail of the playing track, or the default
	SessionID   string // active session, empty when none
	MediaType   string // engine kind of the active session
}

// Store is the read side of the shared playback flags.
type Store struct {
	mu               sync.RWMutex
	snap             Snapshot
	defaultThumbnail string
	subs             []chan Snapshot
	closed           bool
}

// Writer mutates the shared flags. It is only handed to controllers.
type Writer struct {
	s *Store
}

// New creates a store and its writer.
func New(defaultThumbnail string) (*Store, *Writer) {
	s := &Store{
		defaultThumbnail: defaultThumbnail,
		snap: Snapshot{
			SongEnded: true,
			Thumbnail: defaultThumbnail,
		},
	}
	return s, &Writer{s: s}
}

// Snapshot returns the current flags.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// DefaultThumbnail returns the thumbnail used when nothing plays.
func (s *Store) DefaultThumbnail() string {
	return s.defaultThumbnail
}

// Subscribe returns a channel that receives every change. Slow readers miss
// intermediate snapshots. The channel is closed by Close.
func (s *Store) Subscribe() <-chan Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan Snapshot, subscriberBufferSize)
	if s.closed {
		close(ch)
		return ch
	}
	s.subs = append(s.subs, ch)
	return ch
}

// Close closes every subscriber channel.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for _, ch := range s.subs {
		close(ch)
	}
	s.subs = nil
}

func (s *Store) update(fn func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.snap
	fn(&s.snap)
	if s.snap == prev || s.closed {
		return
	}
	for _, ch := range s.subs {
		select {
		case ch <- s.snap:
		default:
			// Drop if buffer full
		}
	}
}

// Store returns the store this writer mutates.
func (w *Writer) Store() *Store { return w.s }

// Started records that a session began playing.
func (w *Writer) Started(sessionID, mediaType, thumbnail string) {
	w.s.update(func(s *Snapshot) {
		s.AudioActive = true
		s.SongEnded = false
		s.SessionID = sessionID
		s.MediaType = mediaType
		if thumbnail != "" {
			s.Thumbnail = thumbnail
		}
	})
}

// Ended records that the current song finished.
func (w *Writer) Ended() {
	w.s.update(func(s *Snapshot) {
		s.AudioActive = false
		s.SongEnded = true
	})
}

// Deactivate clears the active flag only.
func (w *Writer) Deactivate() {
	w.s.update(func(s *Snapshot) {
		s.AudioActive = false
	})
}

// ResetThumbnail restores the default thumbnail.
func (w *Writer) ResetThumbnail() {
	w.s.update(func(s *Snapshot) {
		s.Thumbnail = w.s.defaultThumbnail
	})
}

// Reset restores every flag to its idle value.
func (w *Writer) Reset() {
	w.s.update(func(s *Snapshot) {
		*s = Snapshot{SongEnded: true, Thumbnail: w.s.defaultThumbnail}
	})
}
