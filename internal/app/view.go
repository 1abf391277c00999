package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/wavestv/internal/keymap"
	"github.com/llehouerou/wavestv/internal/ui/headerbar"
	"github.com/llehouerou/wavestv/internal/ui/popup"
	"github.com/llehouerou/wavestv/internal/ui/render"
	"github.com/llehouerou/wavestv/internal/ui/styles"
)

const (
	headerHeight = headerbar.Height + 1 // separator
	footerHeight = 2                    // status, hints
	appName      = "wavestv"
)

// helpKeys adapts keymap bindings to the help bubble.
type helpKeys struct {
	groups [][]key.Binding
	short  []key.Binding
}

func newHelpKeys(screen screen) helpKeys {
	toKey := func(b keymap.Binding) key.Binding {
		return key.NewBinding(key.WithKeys(b.Keys...), key.WithHelp(displayKeys(b.Keys), b.Description))
	}
	var h helpKeys
	contexts := []string{"remote", "global"}
	if screen == screenPlayer {
		contexts = []string{"remote", "playback", "global"}
	}
	for _, c := range contexts {
		var group []key.Binding
		for _, b := range keymap.ByContext(c) {
			group = append(group, toKey(b))
		}
		h.groups = append(h.groups, group)
	}
	for _, b := range keymap.Bindings {
		switch b.Action {
		case keymap.ActionSelect, keymap.ActionBack, keymap.ActionHelp, keymap.ActionQuit:
			h.short = append(h.short, toKey(b))
		}
	}
	return h
}

func (h helpKeys) ShortHelp() []key.Binding  { return h.short }
func (h helpKeys) FullHelp() [][]key.Binding { return h.groups }

func displayKeys(keys []string) string {
	out := make([]string, len(keys))
	for i, k := range keys {
		if k == " " {
			k = "space"
		}
		out[i] = k
	}
	return strings.Join(out, "/")
}

// View renders the shell.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	st := styles.T().S()

	var body string
	switch m.screen {
	case screenDetail:
		body = m.viewDetail()
	case screenPlayer:
		body = m.viewPlayer()
	default:
		body = m.viewHome()
	}
	bodyHeight := max(m.height-headerHeight-footerHeight, 1)
	content := lipgloss.NewStyle().PaddingLeft(1).
		Height(bodyHeight).MaxHeight(bodyHeight).Render(body)

	var right string
	if m.background {
		right = st.Muted.Render("background")
	}
	status := st.Subtle.Render("cache " + m.svc.Cache.UsageString())
	if m.status != "" {
		status = st.Error.Render(render.Truncate(m.status, max(m.width-20, 10)))
	}
	hints := m.help.ShortHelpView(newHelpKeys(m.screen).ShortHelp())

	view := strings.Join([]string{
		headerbar.Render(appName, m.breadcrumb(), right, m.width),
		render.Separator(m.width),
		content,
		status,
		hints,
	}, "\n")

	modal := ""
	switch {
	case m.exit.Active():
		modal = m.exit.View(m.width)
	case m.showHelp:
		modal = popup.Dialog{
			Title:  "Keys",
			Body:   m.help.FullHelpView(newHelpKeys(m.screen).FullHelp()),
			Footer: "any key to close",
		}.Render(m.width)
	}
	if modal != "" {
		view = popup.Overlay(view, modal, m.width, m.height)
	}

	// Image commands go around the frame so they never shift its layout.
	prefix := m.artPending
	suffix := ""
	if m.screen == screenPlayer && modal == "" {
		suffix = m.art.Place(headerHeight+1, 2)
	}
	return prefix + view + suffix
}

func (m Model) breadcrumb() []string {
	switch m.screen {
	case screenDetail:
		return []string{"Home", m.album.Title}
	case screenPlayer:
		return []string{"Home", m.album.Title, m.now.track.Title}
	default:
		return []string{"Home"}
	}
}
