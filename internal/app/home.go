package app

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/samber/lo"

	"github.com/llehouerou/wavestv/internal/catalog"
	"github.com/llehouerou/wavestv/internal/keymap"
	"github.com/llehouerou/wavestv/internal/state"
	"github.com/llehouerou/wavestv/internal/ui/render"
	"github.com/llehouerou/wavestv/internal/ui/styles"
)

const (
	tileWidth   = 24 // including border
	tileHeight  = 5  // including border
	tileMargin  = 1
	rowHeight   = tileHeight + 1
	recentTitle = "Recently Played"
)

// buildRows lays out the home screen: recently played albums first, then
// one row per non-empty category.
func buildRows(cat *catalog.Catalog, plays []state.Play) []homeRow {
	var rows []homeRow
	recent := lo.FilterMap(lo.UniqBy(plays, func(p state.Play) int { return p.AlbumID }),
		func(p state.Play, _ int) (catalog.Album, bool) {
			a, err := cat.Album(p.AlbumID)
			return a, err == nil
		})
	if len(recent) > 0 {
		rows = append(rows, homeRow{title: recentTitle, albums: recent, recent: true})
	}
	for _, c := range cat.Rows() {
		rows = append(rows, homeRow{title: c.Title, albums: cat.AlbumsIn(c.ID)})
	}
	return rows
}

func rowLengths(rows []homeRow) []int {
	return lo.Map(rows, func(r homeRow, _ int) int { return len(r.albums) })
}

// focusedAlbum returns the album under the home focus.
func (m Model) focusedAlbum() (catalog.Album, bool) {
	row, col := m.home.Pos()
	if row >= len(m.rows) || col >= len(m.rows[row].albums) {
		return catalog.Album{}, false
	}
	return m.rows[row].albums[col], true
}

// focusTile arms the preview of the focused tile.
func (m Model) focusTile() tea.Cmd {
	if a, ok := m.focusedAlbum(); ok && !m.background {
		m.svc.Previewer.Focus(a)
	}
	return nil
}

func (m Model) visibleTiles() int {
	return max((m.width-2)/tileWidth, 1)
}

func (m Model) visibleRows() int {
	return max((m.height-headerHeight-footerHeight)/rowHeight, 1)
}

func (m Model) updateHome(a keymap.Action) (Model, tea.Cmd) {
	var dRow, dCol int
	switch a {
	case keymap.ActionUp:
		dRow = -1
	case keymap.ActionDown:
		dRow = 1
	case keymap.ActionLeft:
		dCol = -1
	case keymap.ActionRight:
		dCol = 1
	case keymap.ActionSelect:
		album, ok := m.focusedAlbum()
		if !ok {
			return m, nil
		}
		m.svc.Previewer.Blur()
		m.navToken++
		return m, openDetailCmd(m.navToken, album.ID)
	case keymap.ActionBack:
		m.navToken++
		m.exit.Show("Exit "+appName, "Stop browsing and close the app?", "Exit", "Cancel")
		return m, nil
	default:
		return m, nil
	}
	if !m.home.Move(dRow, dCol, m.visibleRows(), m.visibleTiles()) {
		return m, nil
	}
	m.navToken++ // a pending selection no longer applies
	m.svc.Previewer.Blur()
	m.saveNavigation()
	return m, m.focusTile()
}

func (m Model) viewHome() string {
	st := styles.T().S()
	var b strings.Builder
	start, end := m.home.VisibleRows(m.visibleRows())
	focusRow, focusCol := m.home.Pos()
	for r := start; r < end; r++ {
		row := m.rows[r]
		b.WriteString(st.RowTitle.Render(row.title))
		b.WriteString("\n")
		first, last := m.home.VisibleCols(r, m.visibleTiles())
		tiles := make([]string, 0, last-first)
		for c := first; c < last; c++ {
			focused := r == focusRow && c == focusCol
			tiles = append(tiles, m.renderTile(row, row.albums[c], focused))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tiles...))
		if r < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderTile(row homeRow, a catalog.Album, focused bool) string {
	st := styles.T().S()
	inner := tileWidth - 4
	title := render.Fit(a.Title, inner)
	sub := a.Artist
	if row.recent {
		if p, ok := lo.Find(m.recent, func(p state.Play) bool { return p.AlbumID == a.ID }); ok {
			sub = humanize.Time(p.StartedAt)
		}
	}
	if sub == "" {
		sub = fmt.Sprintf("%d tracks", len(a.Tracks))
	}
	sub = st.Muted.Render(render.Fit(sub, inner))

	marker := " "
	if focused && m.svc.Previewer.AlbumID() == a.ID && m.previewPlaying() {
		marker = "♪"
	}
	body := title + "\n" + sub + "\n" + render.Row("", marker, inner)
	if focused {
		return st.TileFocused.Render(body)
	}
	return st.Tile.Render(body)
}

func (m Model) previewPlaying() bool {
	return m.svc.Preview.Session().State.IsActive()
}
