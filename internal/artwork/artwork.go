// Package artwork turns album thumbnails and embedded covers into small PNG
// files that desktop integrations (notifications, MPRIS) can point at.
package artwork

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // JPEG covers
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp" // catalog thumbnails

	"github.com/llehouerou/wavestv/internal/player"
)

// DefaultSize is the edge of generated covers in pixels.
const DefaultSize = 256

// ErrNoArtwork is returned when neither the thumbnail nor the audio file
// yields an image.
var ErrNoArtwork = errors.New("no artwork")

// Resolver turns a remote reference into a local file.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// Store renders covers into dir and remembers the result per source.
type Store struct {
	resolver Resolver
	dir      string
	size     uint
	logger   *slog.Logger

	mu    sync.Mutex
	cache map[string]string
}

// New creates a store writing into dir. A zero size uses DefaultSize.
func New(resolver Resolver, dir string, size uint, logger *slog.Logger) *Store {
	if size == 0 {
		size = DefaultSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		resolver: resolver,
		dir:      dir,
		size:     size,
		logger:   logger.With("component", "artwork"),
		cache:    make(map[string]string),
	}
}

// Cover returns the path of a PNG cover for a track. The thumbnail is tried
// first, then the picture embedded in the audio file, then a cover file next
// to a local audio file.
func (s *Store) Cover(ctx context.Context, thumbnail, audio string) (string, error) {
	key := thumbnail + "\x00" + audio
	s.mu.Lock()
	if p, ok := s.cache[key]; ok {
		s.mu.Unlock()
		if p == "" {
			return "", ErrNoArtwork
		}
		return p, nil
	}
	s.mu.Unlock()

	img, err := s.load(ctx, thumbnail, audio)
	var out string
	if err == nil {
		out, err = s.write(key, img)
	}
	if err != nil {
		s.logger.Debug("no cover", "thumbnail", thumbnail, "audio", audio, "err", err)
	}

	// Failures are remembered too so a missing cover is not fetched on
	// every track change.
	s.mu.Lock()
	s.cache[key] = out
	s.mu.Unlock()
	if out == "" {
		return "", ErrNoArtwork
	}
	return out, nil
}

func (s *Store) load(ctx context.Context, thumbnail, audio string) (image.Image, error) {
	var errs []error
	if thumbnail != "" {
		img, err := s.decodeFile(ctx, thumbnail)
		if err == nil {
			return img, nil
		}
		errs = append(errs, err)
	}
	if audio != "" {
		img, err := s.decodeEmbedded(ctx, audio)
		if err == nil {
			return img, nil
		}
		errs = append(errs, err)
		if !isRemote(audio) {
			if sib := SiblingCover(audio); sib != "" {
				if img, err := s.decodeFile(ctx, sib); err == nil {
					return img, nil
				}
			}
		}
	}
	if len(errs) == 0 {
		return nil, ErrNoArtwork
	}
	return nil, errors.Join(errs...)
}

func isRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

func (s *Store) localPath(ctx context.Context, ref string) (string, error) {
	if s.resolver == nil {
		return ref, nil
	}
	return s.resolver.Resolve(ctx, ref)
}

func (s *Store) decodeFile(ctx context.Context, ref string) (image.Image, error) {
	path, err := s.localPath(ctx, ref)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func (s *Store) decodeEmbedded(ctx context.Context, ref string) (image.Image, error) {
	path, err := s.localPath(ctx, ref)
	if err != nil {
		return nil, err
	}
	data, _, err := player.CoverArt(path)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

func (s *Store) write(key string, img image.Image) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(key))
	out := filepath.Join(s.dir, hex.EncodeToString(sum[:8])+".png")

	thumb := resize.Thumbnail(s.size, s.size, img, resize.Lanczos3)
	f, err := os.CreateTemp(s.dir, ".cover-*")
	if err != nil {
		return "", err
	}
	if err := png.Encode(f, thumb); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	if err := os.Rename(f.Name(), out); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return out, nil
}

// Forget drops remembered results, so covers are looked up again.
func (s *Store) Forget() {
	s.mu.Lock()
	clear(s.cache)
	s.mu.Unlock()
}
