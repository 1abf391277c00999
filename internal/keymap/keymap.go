package keymap

// Binding describes a key binding.
type Binding struct {
	Action      Action
	Keys        []string
	Description string
	Context     string // "global", "remote", "playback"
}

// Bindings contains all key bindings.
var Bindings = []Binding{
	// Global
	{ActionQuit, []string{"q", "ctrl+c"}, "Quit", "global"},
	{ActionHelp, []string{"?"}, "Show help", "global"},
	{ActionBackground, []string{"ctrl+b"}, "Send app to background", "global"},

	// Remote
	{ActionUp, []string{"k", "up"}, "Up", "remote"},
	{ActionDown, []string{"j", "down"}, "Down", "remote"},
	{ActionLeft, []string{"h", "left"}, "Left", "remote"},
	{ActionRight, []string{"l", "right"}, "Right", "remote"},
	{ActionSelect, []string{"enter"}, "Select", "remote"},
	{ActionMenu, []string{"m"}, "Menu", "remote"},
	{ActionBack, []string{"esc", "backspace"}, "Back", "remote"},

	// Playback
	{ActionPlayPause, []string{" ", "p"}, "Play/pause", "playback"},
	{ActionSkipBackward, []string{",", "shift+left"}, "Skip backward 10s", "playback"},
	{ActionSkipForward, []string{".", "shift+right"}, "Skip forward 10s", "playback"},
	{ActionPageLeft, []string{"pgup", "["}, "Previous track", "playback"},
	{ActionPageRight, []string{"pgdown", "]"}, "Next track", "playback"},
	{ActionShuffle, []string{"S"}, "Shuffle queue", "playback"},
}

// ByContext returns key bindings filtered by context.
func ByContext(context string) []Binding {
	var result []Binding
	for _, kb := range Bindings {
		if kb.Context == context {
			result = append(result, kb)
		}
	}
	return result
}
