package albumart

import (
	"image"
	"strings"
)

// Protocol is a terminal graphics protocol.
type Protocol interface {
	// Prepare encodes img under id and returns the one-time command to
	// write to the terminal, if the protocol needs one.
	Prepare(img image.Image, id uint32) (string, error)

	// Place returns the sequence that draws image id with its top-left
	// corner at the 1-based terminal cell (row, col).
	Place(id uint32, row, col, width, height int) string

	// Delete returns the sequence that frees image id.
	Delete(id uint32) string

	// PixelSize is the resize target for an image shown in the given cells.
	PixelSize(cols, rows int) (width, height int)
}

// Blank is the space the image covers, for layout measurement.
func Blank(cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}
	line := strings.Repeat(" ", cols)
	return strings.TrimSuffix(strings.Repeat(line+"\n", rows), "\n")
}
