package styles

import (
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

// Brand renders the app title with the theme's accent gradient.
func (t *Theme) Brand(text string) string {
	return Gradient(text, true, t.Primary, t.Secondary)
}

// Gradient colors text from one color to the other, one grapheme cluster
// at a time.
func Gradient(text string, bold bool, from, to lipgloss.Color) string {
	if text == "" {
		return ""
	}

	var clusters []string
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		clusters = append(clusters, gr.Str())
	}

	colors := blend(len(clusters), from, to)
	var b strings.Builder
	for i, cluster := range clusters {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(hexOf(colors[i]))).Bold(bold)
		b.WriteString(style.Render(cluster))
	}
	return b.String()
}

// blend returns size colors from one to the other, interpolated in HCL.
func blend(size int, from, to lipgloss.Color) []color.Color {
	if size < 2 {
		return []color.Color{from}
	}

	c1, _ := colorful.MakeColor(parse(from))
	c2, _ := colorful.MakeColor(parse(to))

	colors := make([]color.Color, size)
	for i := range size {
		t := float64(i) / float64(size-1)
		colors[i] = c1.BlendHcl(c2, t)
	}

	return colors
}

// parse reads a #rrggbb color. ANSI palette colors become gray.
func parse(c lipgloss.Color) color.Color {
	if col, err := colorful.Hex(string(c)); err == nil {
		return col
	}
	return color.RGBA{R: 128, G: 128, B: 128, A: 255}
}

func hexOf(c color.Color) string {
	cf, ok := c.(colorful.Color)
	if ok {
		return cf.Hex()
	}
	r, g, b, _ := c.RGBA()
	return colorful.Color{
		R: float64(r) / 65535.0,
		G: float64(g) / 65535.0,
		B: float64(b) / 65535.0,
	}.Hex()
}
