// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Session lifecycle
	OpEngineCreate     Op = "create playback engine"
	OpEngineInitialize Op = "initialize playback engine"
	OpEngineLoad       Op = "load track"
	OpEngineRelease    Op = "release playback engine"
	OpMediaControl     Op = "register media controls"

	// Playback operations
	OpPlaybackStart Op = "start playback"
	OpPlaybackPlay  Op = "resume playback"
	OpPlaybackSeek  Op = "seek"
	OpPlaybackError Op = "play track"

	// Navigation
	OpTrackNext     Op = "skip to next track"
	OpTrackPrevious Op = "go back to previous track"

	// Catalog
	OpCatalogLoad Op = "load catalog"

	// State
	OpStateSave    Op = "save navigation state"
	OpHistoryWrite Op = "record play history"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
