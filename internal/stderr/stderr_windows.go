//go:build windows

// Package stderr is a no-op on Windows, whose audio stack does not write to
// the console.
package stderr

import (
	"log/slog"
	"os"
)

// Start is a no-op on Windows.
func Start(_ *slog.Logger) error {
	return nil
}

// WriteOriginal writes to stderr.
func WriteOriginal(msg string) {
	_, _ = os.Stderr.WriteString(msg)
}

// Stop is a no-op on Windows.
func Stop() {}
