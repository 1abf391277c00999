package player

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/llehouerou/alac"
	"github.com/llehouerou/go-faad2"
	"github.com/llehouerou/go-m4a"
)

// m4aStream reads samples from an MP4 container and decodes them with faad2
// (AAC) or alac. Decoded frames not yet consumed wait in pending.
type m4aStream struct {
	ctx      context.Context
	box      *m4a.Reader
	src      io.Closer
	codec    m4a.CodecType
	aac      *faad2.Decoder
	alac     *alac.Alac
	channels int
	depth    int
	frames   int
	next     int
	pending  [][2]float64
	err      error
}

func decodeM4A(ctx context.Context, rc io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, string, error) {
	box, err := m4a.Open(rc)
	if err != nil {
		return nil, beep.Format{}, "", err
	}
	// The decoder outlives the call that opened it.
	ctx = context.WithoutCancel(ctx)

	rate := box.SampleRate()
	s := &m4aStream{
		ctx:      ctx,
		box:      box,
		src:      rc,
		codec:    box.Codec(),
		channels: int(box.Channels()),
		depth:    int(box.SampleSize()),
		frames:   int(box.Duration().Seconds() * float64(rate)),
	}
	format := beep.Format{SampleRate: beep.SampleRate(rate), NumChannels: 2, Precision: 2}

	switch s.codec {
	case m4a.CodecAAC:
		dec, err := faad2.NewDecoder(ctx)
		if err != nil {
			return nil, beep.Format{}, "", err
		}
		if err := dec.Init(ctx, box.CodecConfig()); err != nil {
			dec.Close(ctx)
			return nil, beep.Format{}, "", err
		}
		s.aac = dec
	case m4a.CodecALAC:
		dec, err := alac.NewWithConfig(alac.Config{
			SampleRate:  int(rate),
			SampleSize:  s.depth,
			NumChannels: s.channels,
			FrameSize:   4096,
		})
		if err != nil {
			return nil, beep.Format{}, "", err
		}
		s.alac = dec
		if s.depth == 24 {
			format.Precision = 3
		}
	case m4a.CodecUnknown:
		return nil, beep.Format{}, "", errors.New("m4a: unsupported codec")
	}

	return s, format, s.codec.String(), nil
}

func (s *m4aStream) Stream(samples [][2]float64) (int, bool) {
	if s.err != nil {
		return 0, false
	}
	n := 0
	for n < len(samples) {
		if len(s.pending) > 0 {
			c := copy(samples[n:], s.pending)
			s.pending = s.pending[c:]
			n += c
			continue
		}
		if s.next >= s.box.SampleCount() {
			break
		}
		if err := s.decodeNext(); err != nil {
			s.err = err
			break
		}
	}
	return n, n > 0
}

func (s *m4aStream) decodeNext() error {
	data, err := s.box.ReadSample(s.next)
	if err != nil {
		return err
	}
	s.next++

	switch s.codec {
	case m4a.CodecAAC:
		pcm, err := s.aac.Decode(s.ctx, data)
		if err != nil {
			return err
		}
		s.pending = int16Frames(pcm, s.channels)
	case m4a.CodecALAC:
		s.pending = alacFrames(s.alac.Decode(data), s.channels, s.depth)
	case m4a.CodecUnknown:
		return errors.New("m4a: unsupported codec")
	}
	return nil
}

// int16Frames converts interleaved PCM to stereo frames; mono is duplicated.
func int16Frames(pcm []int16, channels int) [][2]float64 {
	channels = max(channels, 1)
	frames := make([][2]float64, len(pcm)/channels)
	for i := range frames {
		l := float64(pcm[i*channels]) / 32768
		r := l
		if channels > 1 {
			r = float64(pcm[i*channels+1]) / 32768
		}
		frames[i] = [2]float64{l, r}
	}
	return frames
}

// alacFrames converts little-endian 16 or 24-bit PCM bytes to stereo frames.
func alacFrames(data []byte, channels, depth int) [][2]float64 {
	channels = max(channels, 1)
	width := 2
	scale := 32768.0
	if depth == 24 {
		width = 3
		scale = 8388608
	}
	sample := func(off int) float64 {
		if width == 3 {
			v := int32(data[off]) | int32(data[off+1])<<8 | int32(data[off+2])<<16
			if v&0x800000 != 0 {
				v |= ^0xFFFFFF
			}
			return float64(v) / scale
		}
		return float64(int16(data[off])|int16(data[off+1])<<8) / scale
	}

	stride := width * channels
	frames := make([][2]float64, len(data)/stride)
	for i := range frames {
		off := i * stride
		l := sample(off)
		r := l
		if channels > 1 {
			r = sample(off + width)
		}
		frames[i] = [2]float64{l, r}
	}
	return frames
}

func (s *m4aStream) Err() error { return s.err }

func (s *m4aStream) Len() int { return s.frames }

func (s *m4aStream) Position() int {
	return int(s.box.SampleTime(s.next).Seconds() * float64(s.box.SampleRate()))
}

func (s *m4aStream) Seek(p int) error {
	p = min(max(p, 0), s.frames)
	at := time.Duration(float64(p) / float64(s.box.SampleRate()) * float64(time.Second))
	s.next = s.box.SeekToTime(at)
	s.pending = nil
	s.err = nil
	return nil
}

func (s *m4aStream) Close() error {
	if s.aac != nil {
		s.aac.Close(s.ctx)
	}
	return s.src.Close()
}
