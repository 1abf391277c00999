package player

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/wav"
	"github.com/llehouerou/go-mp3"
)

// ErrUnsupportedFormat is returned for formats no decoder handles.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// FormatOf normalizes an explicit format or, when empty, the extension of
// path: "mp3", "mp4", "flac" or "wav".
func FormatOf(format, path string) string {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "" {
		f = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch f {
	case "m4a", "aac", "alac":
		return "mp4"
	case "wave":
		return "wav"
	}
	return f
}

// decoded is a source ready for the mixer.
type decoded struct {
	stream beep.StreamSeekCloser
	format beep.Format
	codec  string
}

// decode takes ownership of rs: it is closed with the stream, or right away
// when decoding fails.
func decode(ctx context.Context, rs io.ReadSeekCloser, format string) (decoded, error) {
	var (
		d   decoded
		err error
	)
	switch format {
	case "mp3":
		d.stream, d.format, err = decodeMP3(rs)
		d.codec = "MP3"
	case "mp4":
		d.stream, d.format, d.codec, err = decodeM4A(ctx, rs)
	case "flac":
		if err = skipID3v2(rs); err == nil {
			d.stream, d.format, err = flac.Decode(rs)
		}
		d.codec = "FLAC"
	case "wav":
		d.stream, d.format, err = wav.Decode(rs)
		d.codec = "WAV"
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		rs.Close()
		return decoded{}, err
	}
	return d, nil
}

// skipID3v2 skips an ID3v2 tag some taggers prepend to FLAC files.
func skipID3v2(r io.ReadSeeker) error {
	header := make([]byte, 10)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return err
	}
	if n < len(header) || string(header[:3]) != "ID3" {
		_, err = r.Seek(0, io.SeekStart)
		return err
	}
	// Syncsafe size: 7 bits per byte
	size := int64(header[6])<<21 | int64(header[7])<<14 | int64(header[8])<<7 | int64(header[9])
	_, err = r.Seek(int64(len(header))+size, io.SeekStart)
	return err
}

// mp3Stream adapts go-mp3, which yields 16-bit little-endian stereo PCM.
type mp3Stream struct {
	dec *mp3.Decoder
	src io.Closer
	buf []byte
	err error
}

func decodeMP3(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
	dec, err := mp3.NewDecoder(rc)
	if err != nil {
		return nil, beep.Format{}, err
	}
	if dec.SampleRate() == 0 {
		return nil, beep.Format{}, errors.New("mp3: invalid sample rate")
	}
	format := beep.Format{SampleRate: beep.SampleRate(dec.SampleRate()), NumChannels: 2, Precision: 2}
	return &mp3Stream{dec: dec, src: rc}, format, nil
}

func (s *mp3Stream) Stream(samples [][2]float64) (int, bool) {
	if s.err != nil {
		return 0, false
	}
	want := len(samples) * 4
	if cap(s.buf) < want {
		s.buf = make([]byte, want)
	}
	got, err := io.ReadFull(s.dec, s.buf[:want])
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		s.err = err
		return 0, false
	}
	n := pcm16Stereo(samples, s.buf[:got-got%4])
	return n, n > 0
}

func (s *mp3Stream) Err() error { return s.err }

func (s *mp3Stream) Len() int {
	return max(int(s.dec.SampleCount()), 0)
}

func (s *mp3Stream) Position() int { return int(s.dec.SamplePosition()) }

func (s *mp3Stream) Seek(p int) error {
	p = min(max(p, 0), s.Len())
	if err := s.dec.SeekToSample(int64(p)); err != nil {
		return err
	}
	s.err = nil
	return nil
}

func (s *mp3Stream) Close() error { return s.src.Close() }

// pcm16Stereo fills samples from interleaved 16-bit little-endian stereo
// bytes and returns the number of frames written.
func pcm16Stereo(samples [][2]float64, data []byte) int {
	n := min(len(data)/4, len(samples))
	for i := range n {
		l := int16(binary.LittleEndian.Uint16(data[i*4:]))   //nolint:gosec // PCM sample
		r := int16(binary.LittleEndian.Uint16(data[i*4+2:])) //nolint:gosec // PCM sample
		samples[i] = [2]float64{float64(l) / 32768, float64(r) / 32768}
	}
	return n
}
