package albumart

import (
	"bytes"
	"fmt"
	"image"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/mattn/go-sixel"
)

// Sixel has no terminal-side image store: each placement re-sends the
// encoded image.
type Sixel struct {
	cellW, cellH int

	mu     sync.RWMutex
	images map[uint32]string
	placed atomic.Uint64
}

var _ Protocol = (*Sixel)(nil)

// NewSixel creates a Sixel protocol sized to the terminal's cells.
func NewSixel() *Sixel {
	w, h := cellSize()
	return &Sixel{cellW: w, cellH: h, images: make(map[uint32]string)}
}

// Prepare encodes img and keeps it for later placements.
func (s *Sixel) Prepare(img image.Image, id uint32) (string, error) {
	var buf bytes.Buffer
	enc := sixel.NewEncoder(&buf)
	enc.Dither = true
	if err := enc.Encode(img); err != nil {
		return "", fmt.Errorf("encode sixel: %w", err)
	}
	s.mu.Lock()
	s.images[id] = buf.String()
	s.mu.Unlock()
	return "", nil
}

// Place emits the image data at (row, col). A counter in a no-op SGR keeps
// every placement distinct, so the renderer never skips an unchanged one.
func (s *Sixel) Place(id uint32, row, col, _, _ int) string {
	s.mu.RLock()
	data, ok := s.images[id]
	s.mu.RUnlock()
	if !ok {
		return ""
	}
	n := s.placed.Add(1)
	var sb strings.Builder
	fmt.Fprintf(&sb, "\x1b[s\x1b[%d;%dH", row, col)
	sb.WriteString(data)
	fmt.Fprintf(&sb, "\x1b[u\x1b[%dm\x1b[0m", n%255+1)
	return sb.String()
}

// Delete forgets image id.
func (s *Sixel) Delete(id uint32) string {
	s.mu.Lock()
	delete(s.images, id)
	s.mu.Unlock()
	return ""
}

// PixelSize uses the measured cell size, leaving one row free so the image
// never scrolls the screen.
func (s *Sixel) PixelSize(cols, rows int) (width, height int) {
	return cols * s.cellW, max(rows-1, 1) * s.cellH
}
