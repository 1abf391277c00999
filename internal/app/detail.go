package app

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/wavestv/internal/catalog"
	"github.com/llehouerou/wavestv/internal/keymap"
	"github.com/llehouerou/wavestv/internal/playlist"
	"github.com/llehouerou/wavestv/internal/state"
	"github.com/llehouerou/wavestv/internal/ui/grid"
	"github.com/llehouerou/wavestv/internal/ui/render"
	"github.com/llehouerou/wavestv/internal/ui/styles"
)

const detailHeader = 4 // title, artist, description, blank

func trackGrid(album catalog.Album) grid.Grid {
	lengths := make([]int, len(album.Tracks))
	for i := range lengths {
		lengths[i] = 1
	}
	return grid.New(lengths, 2)
}

// openDetail shows album, focusing index.
func (m Model) openDetail(album catalog.Album, index int) Model {
	m.screen = screenDetail
	m.album = album
	m.tracks = trackGrid(album)
	m.tracks.Jump(index, 0, m.visibleTracks(), 1)
	m.resume = m.savedQueue(album.ID)
	m.saveNavigation()
	return m
}

// savedQueue returns the saved queue of album, if it still matches the
// catalog.
func (m Model) savedQueue(albumID int) *state.QueueState {
	q, err := m.svc.State.GetQueue()
	if err != nil || q == nil || q.AlbumID != albumID || q.CurrentIndex < 0 || q.CurrentIndex >= len(q.TrackIDs) {
		return nil
	}
	return q
}

func (m Model) visibleTracks() int {
	return max(m.height-headerHeight-footerHeight-detailHeader, 1)
}

func (m Model) updateDetail(a keymap.Action) (Model, tea.Cmd) {
	switch a {
	case keymap.ActionUp:
		m.tracks.Move(-1, 0, m.visibleTracks(), 1)
		m.saveNavigation()
	case keymap.ActionDown:
		m.tracks.Move(1, 0, m.visibleTracks(), 1)
		m.saveNavigation()
	case keymap.ActionSelect:
		row, _ := m.tracks.Pos()
		return m.enterPlayer(playlist.NewQueue(m.album.Tracks, row))
	case keymap.ActionPlayPause:
		if q := m.resumeQueue(); q != nil {
			return m.enterPlayer(q)
		}
		row, _ := m.tracks.Pos()
		return m.enterPlayer(playlist.NewQueue(m.album.Tracks, row))
	case keymap.ActionBack:
		m.screen = screenHome
		m.saveNavigation()
		return m, m.focusTile()
	}
	return m, nil
}

// resumeQueue rebuilds the saved queue in its saved order.
func (m Model) resumeQueue() *playlist.Queue {
	if m.resume == nil {
		return nil
	}
	byID := make(map[int]catalog.Track, len(m.album.Tracks))
	for _, t := range m.album.Tracks {
		byID[t.ID] = t
	}
	tracks := make([]catalog.Track, 0, len(m.resume.TrackIDs))
	for _, id := range m.resume.TrackIDs {
		t, ok := byID[id]
		if !ok {
			return nil
		}
		tracks = append(tracks, t)
	}
	return playlist.NewQueue(tracks, m.resume.CurrentIndex)
}

func (m Model) viewDetail() string {
	st := styles.T().S()
	w := max(m.width-2, 10)
	var b strings.Builder
	b.WriteString(st.Title.Render(render.Truncate(m.album.Title, w)))
	b.WriteString("\n")
	b.WriteString(st.Muted.Render(render.Truncate(m.album.Artist, w)))
	b.WriteString("\n")
	b.WriteString(st.Subtle.Render(render.Truncate(m.album.Description, w)))
	b.WriteString("\n\n")

	row, _ := m.tracks.Pos()
	start, end := m.tracks.VisibleRows(m.visibleTracks())
	for i := start; i < end; i++ {
		t := m.album.Tracks[i]
		left := fmt.Sprintf("%2d. %s", i+1, render.Sanitize(t.Title))
		if m.resume != nil && m.resume.TrackIDs[m.resume.CurrentIndex] == t.ID {
			left += "  ↺"
		}
		line := render.Row(render.Truncate(left, w-8), render.Clock(t.Duration()), w)
		if i == row {
			line = st.Focus.Render(line)
		}
		b.WriteString(line)
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
