package app

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/wavestv/internal/errmsg"
	"github.com/llehouerou/wavestv/internal/keymap"
	"github.com/llehouerou/wavestv/internal/lifecycle"
	"github.com/llehouerou/wavestv/internal/sequencer"
)

// artHoldTicks is how many ticks a pending image command stays in the
// view before it is dropped.
const artHoldTicks = 2

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		row, col := m.home.Pos()
		m.home.Jump(row, col, m.visibleRows(), m.visibleTiles())
		track, _ := m.tracks.Pos()
		m.tracks.Jump(track, 0, m.visibleTracks(), 1)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.FocusMsg:
		return m.setBackground(false)

	case tea.BlurMsg:
		return m.setBackground(true)

	case tickMsg:
		if m.artPending != "" {
			m.artTicks++
			if m.artTicks > artHoldTicks {
				m.artPending = ""
				m.artTicks = 0
			}
		}
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case openDetailMsg:
		if msg.token != m.navToken || m.screen != screenHome {
			return m, nil
		}
		album, err := m.svc.Catalog.Album(msg.albumID)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		return m.openDetail(album, 0), nil

	case keyUpMsg:
		m.svc.Remote(lifecycle.RemoteEvent{Button: lifecycle.Button(msg), Action: lifecycle.KeyUp})
		return m, nil

	case startedMsg:
		if msg.err != nil {
			m.status = errmsg.Format(errmsg.OpPlaybackStart, msg.err)
		}
		return m, nil

	case trackChangedMsg:
		cmd := waitForPlayback(m.sub)
		if m.screen != screenPlayer {
			return m, cmd
		}
		m.now = nowPlaying{sessionID: msg.SessionID, track: msg.Track}
		m.status = ""
		return m, tea.Batch(cmd, trackSideEffectsCmd(m.svc, msg, m.album))

	case stateChangedMsg:
		return m, waitForPlayback(m.sub)

	case playbackErrorMsg:
		if m.screen == screenPlayer {
			m.status = errmsg.Format(msg.Operation, msg.Err)
			m.svc.Announcer.Error(m.status)
		}
		return m, waitForPlayback(m.sub)

	case playbackClosedMsg:
		return m, nil

	case coverMsg:
		if m.screen != screenPlayer || msg.sessionID != m.now.sessionID {
			return m, nil
		}
		m.now.cover = msg.path
		m.art.SetSize(coverCols, coverRows)
		m.artPending = m.art.Prepare(msg.path)
		m.artTicks = 0
		return m, nil

	case exitMsg:
		var cmd tea.Cmd
		m, cmd = m.leavePlayer(sequencer.ExitReason(msg))
		return m, tea.Batch(cmd, waitForExit(m.svc), loadRecentCmd(m.svc))

	case recentMsg:
		m.recent = msg
		m.rows = buildRows(m.svc.Catalog, m.recent)
		m.home.SetLengths(rowLengths(m.rows))
		return m, nil

	case closedMsg:
		if msg.err != nil {
			m.svc.Logger.Warn("shutdown", "err", msg.err)
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, nil
	}
	a := m.keys.Resolve(msg.String())
	if m.exit.Active() && a != keymap.ActionQuit {
		if res, done := m.exit.Handle(a); done && !res.Cancelled {
			return m.quit()
		}
		return m, nil
	}
	if m.showHelp && a != keymap.ActionQuit {
		m.showHelp = false
		return m, nil
	}
	switch a {
	case keymap.ActionQuit:
		return m.quit()
	case keymap.ActionHelp:
		m.showHelp = true
		return m, nil
	case keymap.ActionBackground:
		return m.setBackground(!m.background)
	case "":
		return m, nil
	}

	var cmd tea.Cmd
	switch m.screen {
	case screenHome:
		m, cmd = m.updateHome(a)
	case screenDetail:
		m, cmd = m.updateDetail(a)
	case screenPlayer:
		m, cmd = m.updatePlayer(a)
	}
	return m, cmd
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.svc.Previewer.Blur()
	return m, closeCmd(m.svc)
}

// setBackground publishes the app state. Leaving the foreground also
// drops the home preview.
func (m Model) setBackground(bg bool) (tea.Model, tea.Cmd) {
	if bg == m.background {
		return m, nil
	}
	m.background = bg
	if bg {
		m.svc.Previewer.Blur()
		m.svc.Hub.PublishAppState(lifecycle.Background)
		return m, nil
	}
	m.svc.Hub.PublishAppState(lifecycle.Foreground)
	if m.screen == screenHome {
		return m, m.focusTile()
	}
	return m, nil
}
