// Package albumart draws the cover of the current track in the terminal,
// using the Kitty or Sixel graphics protocol.
package albumart

import (
	"image"
	_ "image/jpeg" // covers from the artwork store are PNG, sibling files may be JPEG
	_ "image/png"
	"os"
	"sync"
	"sync/atomic"

	"github.com/nfnt/resize"
)

var lastID atomic.Uint32

// Renderer keeps one cover transmitted at a time.
type Renderer struct {
	proto Protocol

	mu   sync.Mutex
	path string
	id   uint32
	cols int
	rows int
}

// New creates a renderer. A nil protocol renders nothing.
func New(proto Protocol) *Renderer {
	return &Renderer{proto: proto}
}

// Enabled reports whether the terminal can show images.
func (r *Renderer) Enabled() bool { return r.proto != nil }

// SetSize sets the cover size in cells. A change forces the next Prepare
// to re-encode.
func (r *Renderer) SetSize(cols, rows int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cols != cols || r.rows != rows {
		r.cols, r.rows = cols, rows
		r.path = ""
	}
}

// Prepare loads the image at path and returns the commands to write before
// placing it: the deletion of the previous cover and the transmission of
// the new one. It returns "" when path is already prepared.
func (r *Renderer) Prepare(path string) string {
	if r.proto == nil {
		return ""
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if path == r.path {
		return ""
	}

	cmd := r.dropLocked()
	r.path = path
	if path == "" || r.cols <= 0 || r.rows <= 0 {
		return cmd
	}
	img, err := load(path)
	if err != nil {
		return cmd
	}
	w, h := r.proto.PixelSize(r.cols, r.rows)
	img = resize.Thumbnail(uint(w), uint(h), img, resize.Lanczos3) //nolint:gosec // cell counts are small

	id := lastID.Add(1)
	transmit, err := r.proto.Prepare(img, id)
	if err != nil {
		return cmd
	}
	r.id = id
	return cmd + transmit
}

func load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

// Place returns the sequence drawing the prepared cover at the 1-based
// cell (row, col), or "" when there is none.
func (r *Renderer) Place(row, col int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.id == 0 {
		return ""
	}
	return r.proto.Place(r.id, row, col, r.cols, r.rows)
}

// HasImage reports whether a cover is prepared.
func (r *Renderer) HasImage() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.id != 0
}

// Blank returns the layout placeholder for the cover area.
func (r *Renderer) Blank() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Blank(r.cols, r.rows)
}

// Clear frees the current cover and returns the command doing so.
func (r *Renderer) Clear() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	cmd := r.dropLocked()
	r.path = ""
	return cmd
}

func (r *Renderer) dropLocked() string {
	if r.id == 0 {
		return ""
	}
	cmd := r.proto.Delete(r.id)
	r.id = 0
	return cmd
}
