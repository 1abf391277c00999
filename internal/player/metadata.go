package player

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"
)

// ErrNoCover is returned by CoverArt when a file has no embedded picture.
var ErrNoCover = errors.New("no embedded cover")

// Info describes a local audio file.
type Info struct {
	Path     string
	Title    string
	Artist   string
	Album    string
	Track    int
	Codec    string
	Duration time.Duration
}

// Probe reads the tags of a local file and decodes its header for the
// duration. Files without tags are named after the file.
func Probe(ctx context.Context, path string) (Info, error) {
	info := Info{
		Path:  path,
		Title: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	}

	f, err := os.Open(path)
	if err != nil {
		return info, err
	}
	if m, err := tag.ReadFrom(f); err == nil {
		if t := m.Title(); t != "" {
			info.Title = t
		}
		info.Artist = m.AlbumArtist()
		if info.Artist == "" {
			info.Artist = m.Artist()
		}
		info.Album = m.Album()
		info.Track, _ = m.Track()
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return info, err
	}

	d, err := decode(ctx, f, FormatOf("", path))
	if err != nil {
		return info, err
	}
	defer d.stream.Close()
	info.Codec = d.codec
	info.Duration = d.format.SampleRate.D(d.stream.Len())
	return info, nil
}

// CoverArt returns the embedded picture of a local file and its MIME type.
func CoverArt(path string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, "", err
	}
	pic := m.Picture()
	if pic == nil || len(pic.Data) == 0 {
		return nil, "", ErrNoCover
	}
	return pic.Data, pic.MIMEType, nil
}
