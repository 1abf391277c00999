//go:build !unix

package albumart

func cellSize() (w, h int) { return 8, 16 }
