package albumart

import (
	"os"
	"strings"
)

// ProtocolEnv overrides detection: "kitty", "sixel" or "none".
const ProtocolEnv = "WAVESTV_IMAGE_PROTOCOL"

// Detect returns the graphics protocol of the current terminal, or nil.
func Detect() Protocol {
	switch os.Getenv(ProtocolEnv) {
	case "kitty":
		return Kitty{}
	case "sixel":
		return NewSixel()
	case "none":
		return nil
	}
	switch {
	case kittySupported():
		return Kitty{}
	case sixelSupported():
		return NewSixel()
	default:
		return nil
	}
}

func kittySupported() bool {
	// Contour inherits the variables of the terminal that launched it.
	if os.Getenv("CONTOUR_PROFILE") != "" {
		return false
	}
	if os.Getenv("KITTY_WINDOW_ID") != "" || os.Getenv("GHOSTTY_RESOURCES_DIR") != "" {
		return true
	}
	if os.Getenv("TERM_PROGRAM") == "WezTerm" {
		return true
	}
	if v := os.Getenv("KONSOLE_VERSION"); len(v) >= 4 && v[:4] >= "2204" {
		return true
	}
	return strings.Contains(os.Getenv("TERM"), "kitty")
}

func sixelSupported() bool {
	term := os.Getenv("TERM")
	switch os.Getenv("TERM_PROGRAM") {
	case "vscode", "mintty", "iTerm.app", "contour":
		return true
	}
	if term == "foot" || term == "foot-extra" || os.Getenv("CONTOUR_PROFILE") != "" {
		return true
	}
	return term == "xterm" || strings.HasPrefix(term, "xterm-")
}
