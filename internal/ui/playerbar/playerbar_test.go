package playerbar

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"

	"github.com/llehouerou/wavestv/internal/lifecycle"
)

func plain(s string) string { return ansi.Strip(s) }

func TestSeekbar(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  string
	}{
		{
			name:  "half way",
			state: State{Position: time.Minute, Duration: 2 * time.Minute},
			want:  "1:00 ━━━━━━─────── 2:00",
		},
		{
			name:  "pending seek shows target",
			state: State{Position: time.Minute, Duration: 2 * time.Minute, Seeking: true, Target: 2 * time.Minute},
			want:  "2:00 ━━━━━━━━━━━━━ 2:00",
		},
		{
			name:  "unknown duration",
			state: State{Position: 5 * time.Second},
			want:  "0:05 ────────────── --:--",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := plain(Seekbar(tt.state, lipgloss.Width(tt.want)))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSeekbar_Narrow(t *testing.T) {
	got := plain(Seekbar(State{Position: time.Second, Duration: time.Minute}, 10))
	assert.Equal(t, "0:01 / 1:00", got)
}

func TestControls(t *testing.T) {
	tests := []struct {
		name   string
		state  State
		symbol string
	}{
		{"playing shows pause", State{}, pauseSymbol},
		{"paused shows play", State{Paused: true}, playSymbol},
		{"buffering", State{Buffering: true}, bufferSymbol},
		{"loading", State{Loading: true, Paused: true}, bufferSymbol},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := plain(Controls(tt.state, 40))
			assert.Contains(t, got, tt.symbol)
			assert.Contains(t, got, "⏪ 10s")
			assert.Contains(t, got, "10s ⏩")
		})
	}
}

func TestControls_HighlightKeepsLayout(t *testing.T) {
	base := plain(Controls(State{StepSeconds: 15}, 40))
	lit := plain(Controls(State{StepSeconds: 15, Highlight: lifecycle.ControlSkipForward}, 40))
	assert.Contains(t, lit, "15s ⏩")
	assert.Equal(t, base, lit)
}

func TestRender(t *testing.T) {
	got := plain(Render(State{
		Title:    "Rise Up",
		Album:    "Echoes of Albion",
		Artist:   "Joyful Riot",
		Index:    1,
		Total:    5,
		Position: 30 * time.Second,
		Duration: 185 * time.Second,
	}, 60))
	lines := strings.Split(got, "\n")
	assert.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "Rise Up"))
	assert.True(t, strings.HasSuffix(lines[0], "2/5"))
	assert.Equal(t, "Joyful Riot · Echoes of Albion", strings.TrimSpace(lines[1]))
	assert.True(t, strings.HasPrefix(lines[3], "0:30 "))
	assert.True(t, strings.HasSuffix(lines[3], " 3:05"))
}
