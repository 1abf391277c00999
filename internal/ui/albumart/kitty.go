package albumart

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"strings"
)

const (
	escStart  = "\x1b_G"
	escEnd    = "\x1b\\"
	chunkSize = 4096
)

// Kitty transmits images once and places them by id.
type Kitty struct{}

var _ Protocol = Kitty{}

// Prepare transmits img as PNG without displaying it.
func (Kitty) Prepare(img image.Image, id uint32) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return transmit(buf.Bytes(), id), nil
}

func transmit(data []byte, id uint32) string {
	encoded := base64.StdEncoding.EncodeToString(data)
	var sb strings.Builder
	for i := 0; i < len(encoded); i += chunkSize {
		end := min(i+chunkSize, len(encoded))
		more := 0
		if end < len(encoded) {
			more = 1
		}
		sb.WriteString(escStart)
		if i == 0 {
			fmt.Fprintf(&sb, "a=t,f=100,i=%d,q=2,m=%d;", id, more)
		} else {
			fmt.Fprintf(&sb, "m=%d;", more)
		}
		sb.WriteString(encoded[i:end])
		sb.WriteString(escEnd)
	}
	return sb.String()
}

// Place draws image id under a fixed placement id, so a new placement
// replaces the previous one.
func (Kitty) Place(id uint32, row, col, width, height int) string {
	return fmt.Sprintf("\x1b[s\x1b[%d;%dH%sa=p,i=%d,p=1,c=%d,r=%d,C=1,q=2;%s\x1b[u",
		row, col, escStart, id, width, height, escEnd)
}

// Delete frees image id and its placements.
func (Kitty) Delete(id uint32) string {
	return fmt.Sprintf("%sa=d,d=i,i=%d,q=2;%s", escStart, id, escEnd)
}

// PixelSize assumes 8x16 pixel cells.
func (Kitty) PixelSize(cols, rows int) (width, height int) {
	return max(cols*8, 64), max(rows*16, 64)
}
