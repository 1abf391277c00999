package playback

import "time"

const eventBufferSize = 16

// Subscription provides event channels for a subscriber.
type Subscription struct {
	StateChanged     <-chan StateChange
	TrackChanged     <-chan TrackChange
	Ended            <-chan Ended
	BufferingChanged <-chan BufferingChange
	PositionChanged  <-chan PositionChange
	Error            <-chan ErrorEvent
	Done             <-chan struct{}

	// Internal write channels
	stateCh     chan StateChange
	trackCh     chan TrackChange
	endedCh     chan Ended
	bufferingCh chan BufferingChange
	positionCh  chan PositionChange
	errorCh     chan ErrorEvent
	doneCh      chan struct{}
}

// newSubscription creates a new subscription with buffered channels.
func newSubscription() *Subscription {
	s := &Subscription{
		stateCh:     make(chan StateChange, eventBufferSize),
		trackCh:     make(chan TrackChange, eventBufferSize),
		endedCh:     make(chan Ended, eventBufferSize),
		bufferingCh: make(chan BufferingChange, eventBufferSize),
		positionCh:  make(chan PositionChange, eventBufferSize),
		errorCh:     make(chan ErrorEvent, eventBufferSize),
		doneCh:      make(chan struct{}),
	}
	s.StateChanged = s.stateCh
	s.TrackChanged = s.trackCh
	s.Ended = s.endedCh
	s.BufferingChanged = s.bufferingCh
	s.PositionChanged = s.positionCh
	s.Error = s.errorCh
	s.Done = s.doneCh
	return s
}

// close signals subscribers to stop by closing doneCh.
func (s *Subscription) close() {
	close(s.doneCh)
}

// sendState sends a state change event (non-blocking).
func (s *Subscription) sendState(e StateChange) {
	select {
	case s.stateCh <- e:
	default:
		// Drop if buffer full
	}
}

// sendTrack sends a track change event (non-blocking).
func (s *Subscription) sendTrack(e TrackChange) {
	select {
	case s.trackCh <- e:
	default:
	}
}

// sendEnded sends an ended event (non-blocking).
func (s *Subscription) sendEnded(e Ended) {
	select {
	case s.endedCh <- e:
	default:
	}
}

// sendBuffering sends a buffering change event (non-blocking).
func (s *Subscription) sendBuffering(buffering bool) {
	select {
	case s.bufferingCh <- BufferingChange{Buffering: buffering}:
	default:
	}
}

// sendPosition sends a position change event (non-blocking).
func (s *Subscription) sendPosition(pos, dur time.Duration) {
	select {
	case s.positionCh <- PositionChange{Position: pos, Duration: dur}:
	default:
	}
}

// sendError sends an error event (non-blocking).
func (s *Subscription) sendError(e ErrorEvent) {
	select {
	case s.errorCh <- e:
	default:
	}
}
