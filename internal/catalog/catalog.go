// Package catalog holds the browsable album catalog.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// MusicIcon is the fallback thumbnail shown when no track is playing.
const MusicIcon = "music-note.png"

// ErrAlbumNotFound is returned by Catalog.Album for an unknown id.
var ErrAlbumNotFound = errors.New("album not found")

// Track is a playable catalog entry.
type Track struct {
	ID          int    `koanf:"id"`
	Title       string `koanf:"title"`
	Description string `koanf:"description"`
	DurationMS  int64  `koanf:"duration_ms"`
	Type        string `koanf:"type"` // "mp3", "mp4", or a streaming manifest type
	AudioURL    string `koanf:"audio_url"`
	Thumbnail   string `koanf:"thumbnail"`
}

// Duration returns the catalog duration of the track.
func (t Track) Duration() time.Duration {
	return time.Duration(t.DurationMS) * time.Millisecond
}

// Album is a list of tracks shown as one tile.
type Album struct {
	ID          int     `koanf:"id"`
	CategoryID  int     `koanf:"category_id"`
	Title       string  `koanf:"title"`
	Artist      string  `koanf:"artist"`
	Description string  `koanf:"description"`
	Thumbnail   string  `koanf:"thumbnail"`
	Tracks      []Track `koanf:"tracks"`
}

// Category groups albums in one row of the home screen.
type Category struct {
	ID    int    `koanf:"id"`
	Title string `koanf:"title"`
}

// Catalog is the full browsable catalog.
type Catalog struct {
	Categories []Category `koanf:"categories"`
	Albums     []Album    `koanf:"albums"`
}

// Load reads a catalog from a TOML file.
func Load(path string) (*Catalog, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("catalog file: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}

	var c Catalog
	if err := k.Unmarshal("", &c); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.inheritThumbnails()
	return &c, nil
}

// LoadOrDefault loads path, or returns the built-in catalog when path is empty.
func LoadOrDefault(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks that albums have tracks and that track URLs are set.
func (c *Catalog) Validate() error {
	if len(c.Albums) == 0 {
		return errors.New("catalog has no albums")
	}
	for _, a := range c.Albums {
		if len(a.Tracks) == 0 {
			return fmt.Errorf("album %d (%s) has no tracks", a.ID, a.Title)
		}
		for _, t := range a.Tracks {
			if t.AudioURL == "" {
				return fmt.Errorf("album %d track %d has no audio_url", a.ID, t.ID)
			}
		}
	}
	return nil
}

// Tracks without their own thumbnail use the album cover.
func (c *Catalog) inheritThumbnails() {
	for i := range c.Albums {
		a := &c.Albums[i]
		for j := range a.Tracks {
			if a.Tracks[j].Thumbnail == "" {
				a.Tracks[j].Thumbnail = a.Thumbnail
			}
		}
	}
}

// Album returns the album with the given id.
func (c *Catalog) Album(id int) (Album, error) {
	for _, a := range c.Albums {
		if a.ID == id {
			return a, nil
		}
	}
	return Album{}, fmt.Errorf("%w: %d", ErrAlbumNotFound, id)
}

// AlbumsIn returns the albums of a category in catalog order.
func (c *Catalog) AlbumsIn(categoryID int) []Album {
	var out []Album
	for _, a := range c.Albums {
		if a.CategoryID == categoryID {
			out = append(out, a)
		}
	}
	return out
}

// Rows returns the non-empty categories in catalog order.
func (c *Catalog) Rows() []Category {
	var out []Category
	for _, cat := range c.Categories {
		if len(c.AlbumsIn(cat.ID)) > 0 {
			out = append(out, cat)
		}
	}
	return out
}
