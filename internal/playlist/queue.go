// Package playlist holds the ordered track queue of the player screen.
package playlist

import (
	"github.com/samber/lo"

	"github.com/llehouerou/wavestv/internal/catalog"
)

// Queue is an ordered list of tracks with a current index.
// Moving past either end never wraps.
type Queue struct {
	tracks       []catalog.Track
	currentIndex int // -1 if empty
}

// NewQueue creates a queue positioned at start. An out of range start is
// clamped; an empty queue has index -1.
func NewQueue(tracks []catalog.Track, start int) *Queue {
	q := &Queue{
		tracks:       append([]catalog.Track(nil), tracks...),
		currentIndex: -1,
	}
	if len(q.tracks) > 0 {
		q.currentIndex = min(max(start, 0), len(q.tracks)-1)
	}
	return q
}

// Len returns the number of tracks.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// IsEmpty returns true if the queue has no tracks.
func (q *Queue) IsEmpty() bool {
	return len(q.tracks) == 0
}

// CurrentIndex returns the index of the current track (-1 if empty).
func (q *Queue) CurrentIndex() int {
	return q.currentIndex
}

// Current returns the current track, or nil if empty.
func (q *Queue) Current() *catalog.Track {
	if q.currentIndex < 0 || q.currentIndex >= len(q.tracks) {
		return nil
	}
	t := q.tracks[q.currentIndex]
	return &t
}

// HasNext returns true if there's a track after the current one.
func (q *Queue) HasNext() bool {
	return q.currentIndex >= 0 && q.currentIndex < len(q.tracks)-1
}

// HasPrevious returns true if there's a track before the current one.
func (q *Queue) HasPrevious() bool {
	return q.currentIndex > 0
}

// Next advances to the next track and returns it.
// Returns nil at the last track; the index is unchanged.
func (q *Queue) Next() *catalog.Track {
	if !q.HasNext() {
		return nil
	}
	q.currentIndex++
	return q.Current()
}

// Previous moves to the previous track and returns it.
// Returns nil at the first track; the index is unchanged.
func (q *Queue) Previous() *catalog.Track {
	if !q.HasPrevious() {
		return nil
	}
	q.currentIndex--
	return q.Current()
}

// JumpTo sets the current index. Returns nil if index is out of range.
func (q *Queue) JumpTo(index int) *catalog.Track {
	if index < 0 || index >= len(q.tracks) {
		return nil
	}
	q.currentIndex = index
	return q.Current()
}

// Tracks returns a copy of the tracks.
func (q *Queue) Tracks() []catalog.Track {
	return append([]catalog.Track(nil), q.tracks...)
}

// Shuffled returns a new queue holding a shuffled copy of the tracks,
// positioned at its first track. The receiver is not modified.
func (q *Queue) Shuffled() *Queue {
	return NewQueue(lo.Shuffle(q.Tracks()), 0)
}
