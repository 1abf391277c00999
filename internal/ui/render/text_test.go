package render

import (
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"clean", "Echoes of Albion", "Echoes of Albion"},
		{"control chars", "Rise\x00 Up\x1b", "Rise Up"},
		{"tab kept", "a\tb", "a\tb"},
		{"nbsp", "Lunar\u00a0Echoes", "Lunar Echoes"},
		{"invalid utf8", "Mel\xfflow", "Mellow"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.input))
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  string
	}{
		{"fits", "Mellow", 10, "Mellow"},
		{"exact", "Mellow", 6, "Mellow"},
		{"cut", "Epic Adventure Action", 8, "Epic Ad…"},
		{"zero width", "Mellow", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.input, tt.width))
		})
	}
}

func TestFit(t *testing.T) {
	assert.Equal(t, "Rise Up   ", Fit("Rise Up", 10))
	assert.Equal(t, 5, lipgloss.Width(Fit("ThroneKing", 5)))
}

func TestRow(t *testing.T) {
	got := Row("Rise Up", "3:05", 20)
	assert.Equal(t, 20, lipgloss.Width(got))
	assert.Equal(t, "Rise Up 3:05", Row("Rise Up", "3:05", 4), "keeps one space")
}

func TestSeparator(t *testing.T) {
	assert.Equal(t, "─────", Separator(5))
	assert.Empty(t, Separator(-1))
}

func TestClock(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0:00"},
		{-time.Second, "0:00"},
		{1500 * time.Millisecond, "0:01"},
		{185 * time.Second, "3:05"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Clock(tt.in))
		})
	}
}

func TestBar(t *testing.T) {
	assert.Equal(t, "##--", Bar(time.Minute, 2*time.Minute, 4, "#", "-"))
	assert.Equal(t, "----", Bar(time.Minute, 0, 4, "#", "-"), "unknown duration")
	assert.Equal(t, "####", Bar(5*time.Minute, 2*time.Minute, 4, "#", "-"), "clamped")
	assert.Empty(t, Bar(time.Minute, time.Minute, 0, "#", "-"))
}
