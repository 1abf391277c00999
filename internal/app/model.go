// Package app is the TV shell: the album grid, the album detail and the
// full-screen player, driven by keys translated to remote buttons.
package app

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/wavestv/internal/catalog"
	"github.com/llehouerou/wavestv/internal/keymap"
	"github.com/llehouerou/wavestv/internal/playback"
	"github.com/llehouerou/wavestv/internal/state"
	"github.com/llehouerou/wavestv/internal/ui/albumart"
	"github.com/llehouerou/wavestv/internal/ui/confirm"
	"github.com/llehouerou/wavestv/internal/ui/grid"
	"github.com/llehouerou/wavestv/internal/ui/styles"
)

type screen int

const (
	screenHome screen = iota
	screenDetail
	screenPlayer
)

func (s screen) String() string {
	switch s {
	case screenDetail:
		return state.ScreenDetail
	case screenPlayer:
		return state.ScreenPlayer
	default:
		return state.ScreenHome
	}
}

// homeRow is one row of album tiles.
type homeRow struct {
	title  string
	albums []catalog.Album
	recent bool
}

// nowPlaying is what the player screen shows.
type nowPlaying struct {
	sessionID string
	track     catalog.Track
	cover     string
}

// Model is the bubbletea model of the shell.
type Model struct {
	svc     *Services
	keys    *keymap.Resolver
	sub     *playback.Subscription
	help    help.Model
	spinner spinner.Model
	art     *albumart.Renderer

	width, height int
	screen        screen
	showHelp      bool
	exit          confirm.Model
	background    bool

	rows   []homeRow
	recent []state.Play
	home   grid.Grid

	album  catalog.Album
	tracks grid.Grid
	resume *state.QueueState

	now        nowPlaying
	status     string
	navToken   int
	artPending string
	artTicks   int
	quitting   bool
}

// New creates the shell over built services. art may be nil when the
// terminal cannot show images.
func New(svc *Services, art *albumart.Renderer) Model {
	if art == nil {
		art = albumart.New(nil)
	}
	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot))
	sp.Style = styles.T().S().Playing
	m := Model{
		svc:     svc,
		keys:    keymap.NewResolver(keymap.Bindings),
		sub:     svc.Player.Subscribe(),
		help:    help.New(),
		spinner: sp,
		art:     art,
	}
	m.rows = buildRows(svc.Catalog, nil)
	m.home = grid.New(rowLengths(m.rows), tileMargin)
	m.restore()
	return m
}

// Init starts the background commands.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tickCmd(),
		waitForPlayback(m.sub),
		waitForExit(m.svc),
		loadRecentCmd(m.svc),
		m.spinner.Tick,
	}
	if m.screen == screenHome {
		cmds = append(cmds, m.focusTile())
	}
	return tea.Batch(cmds...)
}
