package artwork

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		for y := range h {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

type countingResolver struct {
	mu    sync.Mutex
	paths map[string]string
	calls int
}

func (r *countingResolver) Resolve(_ context.Context, ref string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if p, ok := r.paths[ref]; ok {
		return p, nil
	}
	return "", errors.New("not found")
}

func TestCover_ResizesThumbnail(t *testing.T) {
	src := filepath.Join(t.TempDir(), "big.png")
	writePNG(t, src, 1024, 512)
	s := New(nil, t.TempDir(), 128, nil)

	out, err := s.Cover(context.Background(), src, "")
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 128, cfg.Width)
	assert.Equal(t, 64, cfg.Height)
}

func TestCover_RemembersResults(t *testing.T) {
	src := filepath.Join(t.TempDir(), "a.png")
	writePNG(t, src, 32, 32)
	r := &countingResolver{paths: map[string]string{"https://cdn/a.png": src}}
	s := New(r, t.TempDir(), 0, nil)

	first, err := s.Cover(context.Background(), "https://cdn/a.png", "")
	require.NoError(t, err)
	second, err := s.Cover(context.Background(), "https://cdn/a.png", "")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, r.calls)

	_, err = s.Cover(context.Background(), "https://cdn/missing.png", "")
	assert.ErrorIs(t, err, ErrNoArtwork)
	_, err = s.Cover(context.Background(), "https://cdn/missing.png", "")
	assert.ErrorIs(t, err, ErrNoArtwork)
	assert.Equal(t, 2, r.calls, "failure is remembered")

	s.Forget()
	_, err = s.Cover(context.Background(), "https://cdn/a.png", "")
	require.NoError(t, err)
	assert.Equal(t, 3, r.calls)
}

func TestCover_NothingToTry(t *testing.T) {
	s := New(nil, t.TempDir(), 0, nil)
	_, err := s.Cover(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrNoArtwork)
}

func TestCover_NotAnImage(t *testing.T) {
	src := filepath.Join(t.TempDir(), "cover.png")
	require.NoError(t, os.WriteFile(src, []byte("not an image"), 0o600))
	audio := filepath.Join(t.TempDir(), "song.mp3")
	require.NoError(t, os.WriteFile(audio, []byte("ID3"), 0o600))

	s := New(nil, t.TempDir(), 0, nil)
	_, err := s.Cover(context.Background(), src, audio)
	assert.ErrorIs(t, err, ErrNoArtwork)
}

func TestCover_SiblingFile(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "cover.png"), 64, 64)
	audio := filepath.Join(dir, "song.mp3")
	require.NoError(t, os.WriteFile(audio, []byte("ID3"), 0o600))

	s := New(nil, t.TempDir(), 0, nil)
	out, err := s.Cover(context.Background(), "covers/missing.webp", audio)
	require.NoError(t, err)
	assert.FileExists(t, out)
}
