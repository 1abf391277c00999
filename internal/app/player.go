package app

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/wavestv/internal/keymap"
	"github.com/llehouerou/wavestv/internal/lifecycle"
	"github.com/llehouerou/wavestv/internal/playback"
	"github.com/llehouerou/wavestv/internal/playlist"
	"github.com/llehouerou/wavestv/internal/sequencer"
	"github.com/llehouerou/wavestv/internal/ui/playerbar"
	"github.com/llehouerou/wavestv/internal/ui/render"
	"github.com/llehouerou/wavestv/internal/ui/styles"
)

const (
	coverCols = 20
	coverRows = 10
)

// enterPlayer replaces the sequencer queue and starts its current track.
func (m Model) enterPlayer(q *playlist.Queue) (Model, tea.Cmd) {
	if q.IsEmpty() {
		return m, nil
	}
	m.svc.Previewer.Blur()
	m.svc.Sequencer.Replace(q)
	m.svc.Bridge.SetSeekbarFocused(false)
	m.svc.Bridge.SetFocused(true)
	m.screen = screenPlayer
	m.now = nowPlaying{track: *q.Current()}
	m.status = ""
	m.saveNavigation()
	return m, playCurrentCmd(m.svc, m.album.Thumbnail)
}

// leavePlayer destroys the session and returns to the album.
func (m Model) leavePlayer(reason sequencer.ExitReason) (Model, tea.Cmd) {
	if m.screen != screenPlayer {
		return m, nil
	}
	m.svc.Logger.Debug("leaving player", "reason", reason)
	m.svc.Bridge.SetFocused(false)
	m.svc.Bridge.SetSeekbarFocused(false)
	m.svc.Seek.Cancel()
	m.svc.Sequencer.Stop()
	m.artPending = m.art.Clear()
	m.artTicks = 0

	index := 0
	if tracks, idx := m.svc.Sequencer.Queue(); idx >= 0 && idx < len(tracks) {
		index = m.albumIndex(tracks[idx].ID)
	}
	m.now = nowPlaying{}
	m = m.openDetail(m.album, index)
	return m, destroyCmd(m.svc)
}

// albumIndex is the position of track id in the current album.
func (m Model) albumIndex(id int) int {
	for i, t := range m.album.Tracks {
		if t.ID == id {
			return i
		}
	}
	return 0
}

func (m Model) updatePlayer(a keymap.Action) (Model, tea.Cmd) {
	switch a {
	case keymap.ActionUp:
		m.svc.Bridge.SetSeekbarFocused(true)
	case keymap.ActionDown:
		m.svc.Bridge.SetSeekbarFocused(false)
	case keymap.ActionShuffle:
		if _, err := m.svc.Sequencer.Shuffle(); err != nil {
			return m, nil
		}
		return m, playCurrentCmd(m.svc, m.album.Thumbnail)
	case keymap.ActionSelect:
		// The play/pause control has focus unless the seekbar does.
		if !m.svc.Bridge.SeekbarFocused() {
			a = keymap.ActionPlayPause
		}
	}
	btn, ok := a.Button()
	if !ok {
		return m, nil
	}
	m.svc.Remote(lifecycle.RemoteEvent{Button: btn, Action: lifecycle.KeyDown})
	return m, keyUpCmd(btn)
}

func (m Model) playerState() playerbar.State {
	media := m.svc.Player.Media()
	tracks, idx := m.svc.Sequencer.Queue()
	s := playerbar.State{
		Title:          m.now.track.Title,
		Album:          m.album.Title,
		Artist:         m.album.Artist,
		Index:          idx,
		Total:          len(tracks),
		Position:       m.svc.Player.Progress(),
		Duration:       media.Duration,
		Paused:         media.Paused,
		Loading:        m.svc.Player.IsLoading() || media.State == playback.StateInitializing,
		Buffering:      m.svc.Player.IsBuffering(),
		SeekbarFocused: m.svc.Bridge.SeekbarFocused(),
		Highlight:      m.svc.Bridge.Highlight(),
		StepSeconds:    int(m.svc.Config.Timings().SeekStep.Seconds()),
	}
	if s.Duration <= 0 {
		s.Duration = m.now.track.Duration()
	}
	if req, ok := m.svc.Seek.Pending(); ok {
		s.Seeking = true
		s.Target = min(max(s.Position+req.Delta, 0), s.Duration)
	}
	return s
}

func (m Model) viewPlayer() string {
	st := styles.T().S()
	width := max(m.width-2, 20)
	ps := m.playerState()

	var info strings.Builder
	info.WriteString(st.Title.Render(render.Truncate(m.album.Title, width-coverCols-3)))
	info.WriteString("\n")
	info.WriteString(st.Muted.Render(render.Truncate(m.album.Artist, width-coverCols-3)))
	info.WriteString("\n\n")
	switch {
	case ps.Loading || ps.Buffering:
		info.WriteString(m.spinner.View() + " " + st.Muted.Render("Loading"))
	case ps.Paused:
		info.WriteString(st.Muted.Render("Paused"))
	default:
		info.WriteString(st.Playing.Render("Now playing"))
	}

	cover := m.art.Blank()
	if !m.art.HasImage() {
		cover = st.Tile.Width(coverCols - 2).Height(coverRows - 2).
			Align(lipgloss.Center, lipgloss.Center).Render("♪")
	}
	top := lipgloss.JoinHorizontal(lipgloss.Top, cover, "  ", info.String())
	return top + "\n\n" + playerbar.Render(ps, width)
}
