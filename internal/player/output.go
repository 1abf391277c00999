package player

import (
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// SampleRate is the rate of the shared speaker. Sources with another rate
// are resampled.
const SampleRate = beep.SampleRate(44100)

// Output is where players send audio. Every player of the process shares one.
type Output interface {
	Init() error
	Play(s beep.Streamer)
	Lock()
	Unlock()
}

// Speaker returns the process-wide speaker output.
func Speaker() Output { return defaultSpeaker }

var defaultSpeaker = &speakerOutput{}

type speakerOutput struct {
	once sync.Once
	err  error
}

func (s *speakerOutput) Init() error {
	s.once.Do(func() {
		s.err = speaker.Init(SampleRate, SampleRate.N(time.Second/10))
	})
	return s.err
}

func (s *speakerOutput) Play(st beep.Streamer) { speaker.Play(st) }
func (s *speakerOutput) Lock()                { speaker.Lock() }
func (s *speakerOutput) Unlock()              { speaker.Unlock() }

// handle lets one source leave the shared mixer without clearing the others.
// stopped is guarded by the output lock.
type handle struct {
	id      uint64
	s       beep.Streamer
	stopped bool
}

func (h *handle) Stream(samples [][2]float64) (int, bool) {
	if h.stopped {
		return 0, false
	}
	return h.s.Stream(samples)
}

func (h *handle) Err() error { return h.s.Err() }
