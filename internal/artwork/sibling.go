package artwork

import (
	"os"
	"path/filepath"
)

// coverNames lists cover filenames next to local tracks, by priority.
var coverNames = []string{
	"cover.jpg", "cover.png", "cover.jpeg", "cover.webp",
	"folder.jpg", "folder.png", "folder.jpeg",
	"front.jpg", "front.png", "front.jpeg",
}

// SiblingCover looks for a cover file in the directory of a local track.
// It returns an empty string when there is none.
func SiblingCover(trackPath string) string {
	dir := filepath.Dir(trackPath)
	for _, name := range coverNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
