package app

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/wavestv/internal/catalog"
	"github.com/llehouerou/wavestv/internal/config"
	"github.com/llehouerou/wavestv/internal/engine"
	"github.com/llehouerou/wavestv/internal/mediactl"
	"github.com/llehouerou/wavestv/internal/mpris"
	"github.com/llehouerou/wavestv/internal/notify"
	"github.com/llehouerou/wavestv/internal/sequencer"
	"github.com/llehouerou/wavestv/internal/state"
)

type fakeHost struct {
	*mediactl.MockHost
	mu     sync.Mutex
	bound  bool
	now    []mpris.NowPlaying
	closed bool
}

func (h *fakeHost) Bind(mpris.Status, mpris.Navigator) {
	h.mu.Lock()
	h.bound = true
	h.mu.Unlock()
}

func (h *fakeHost) SetNowPlaying(np mpris.NowPlaying) {
	h.mu.Lock()
	h.now = append(h.now, np)
	h.mu.Unlock()
}

func (h *fakeHost) Close() error {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	return nil
}

type testEnv struct {
	svc     *Services
	state   *state.Mock
	host    *fakeHost
	engines *engine.MockFactory
}

func newTestEnv(t *testing.T, st *state.Mock) *testEnv {
	t.Helper()
	if st == nil {
		st = state.NewMock()
	}
	env := &testEnv{
		state:   st,
		host:    &fakeHost{MockHost: mediactl.NewMockHost()},
		engines: &engine.MockFactory{},
	}
	engines := env.engines.Factory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := Build(context.Background(), &config.Config{CacheDir: t.TempDir()},
		catalog.Default(), st, logger, Options{
			Engines:  &engines,
			Host:     env.host,
			Notifier: notify.Discard{},
		})
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = svc.Close(ctx)
	})
	env.svc = svc
	return env
}

func (e *testEnv) model() Model {
	m := New(e.svc, nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model)
}

func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

var (
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyQuit  = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}
	keyHelp  = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")}
	keyBg    = tea.KeyMsg{Type: tea.KeyCtrlB}
)

func TestBuild_BindsHost(t *testing.T) {
	env := newTestEnv(t, nil)
	assert.True(t, env.host.bound)
	assert.NotNil(t, env.svc.Player)
	assert.NotNil(t, env.svc.Preview)
	assert.NotSame(t, env.svc.Player, env.svc.Preview)
}

func TestServices_CloseIsIdempotent(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	require.NoError(t, env.svc.Close(ctx))
	require.NoError(t, env.svc.Close(ctx))
	assert.True(t, env.host.closed)
	assert.Error(t, env.svc.Context().Err())
}

func TestBuildRows(t *testing.T) {
	cat := catalog.Default()
	now := time.Now()

	tests := []struct {
		name       string
		plays      []state.Play
		wantTitles []string
		wantRecent []int
	}{
		{
			name:       "no history",
			wantTitles: []string{"Most Watched", "Top Rated", "Rock Music"},
		},
		{
			name: "recent albums first, deduplicated",
			plays: []state.Play{
				{AlbumID: 3, StartedAt: now},
				{AlbumID: 1, StartedAt: now.Add(-time.Minute)},
				{AlbumID: 3, StartedAt: now.Add(-time.Hour)},
			},
			wantTitles: []string{recentTitle, "Most Watched", "Top Rated", "Rock Music"},
			wantRecent: []int{3, 1},
		},
		{
			name:       "unknown albums skipped",
			plays:      []state.Play{{AlbumID: 99}},
			wantTitles: []string{"Most Watched", "Top Rated", "Rock Music"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := buildRows(cat, tt.plays)
			titles := make([]string, len(rows))
			for i, r := range rows {
				titles[i] = r.title
			}
			assert.Equal(t, tt.wantTitles, titles)
			if tt.wantRecent != nil {
				require.True(t, rows[0].recent)
				ids := make([]int, len(rows[0].albums))
				for i, a := range rows[0].albums {
					ids[i] = a.ID
				}
				assert.Equal(t, tt.wantRecent, ids)
			}
		})
	}
}

func TestHome_MoveFocusesPreview(t *testing.T) {
	env := newTestEnv(t, nil)
	m := env.model()

	m, _ = press(t, m, keyDown) // Top Rated
	assert.Equal(t, 2, env.svc.Previewer.AlbumID())
	m, _ = press(t, m, keyRight)
	assert.Equal(t, 3, env.svc.Previewer.AlbumID())
	assert.True(t, env.svc.Previewer.Focused())

	saved := env.state.SavedNavigation()
	require.NotEmpty(t, saved)
	last := saved[len(saved)-1]
	assert.Equal(t, state.ScreenHome, last.Screen)
	assert.Equal(t, 1, last.FocusedRow)
	assert.Equal(t, 1, last.FocusedTile)
	_ = m
}

func TestHome_MoveAtEdgeKeepsPreview(t *testing.T) {
	env := newTestEnv(t, nil)
	m := env.model()
	m, _ = press(t, m, keyDown)
	before := len(env.state.SavedNavigation())

	// Most Watched has one album: moving up then right stays put.
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m, cmd := press(t, m, keyRight)
	assert.Nil(t, cmd)
	assert.Equal(t, 1, env.svc.Previewer.AlbumID())
	assert.Len(t, env.state.SavedNavigation(), before+1)
}

func TestHome_SelectOpensDetailAfterDelay(t *testing.T) {
	env := newTestEnv(t, nil)
	m := env.model()

	m, cmd := press(t, m, keyEnter)
	require.NotNil(t, cmd)
	assert.Equal(t, screenHome, m.screen)
	assert.False(t, env.svc.Previewer.Focused())

	next, _ := m.Update(openDetailMsg{token: m.navToken, albumID: 1})
	m = next.(Model)
	assert.Equal(t, screenDetail, m.screen)
	assert.Equal(t, 1, m.album.ID)
}

func TestHome_StaleSelectionIgnored(t *testing.T) {
	env := newTestEnv(t, nil)
	m := env.model()

	m, _ = press(t, m, keyEnter)
	token := m.navToken
	m, _ = press(t, m, keyDown)

	next, _ := m.Update(openDetailMsg{token: token, albumID: 1})
	assert.Equal(t, screenHome, next.(Model).screen)
}

func TestDetail_BackReturnsHome(t *testing.T) {
	env := newTestEnv(t, nil)
	m := env.model()
	album, err := env.svc.Catalog.Album(2)
	require.NoError(t, err)
	m = m.openDetail(album, 0)

	m, _ = press(t, m, keyDown)
	row, _ := m.tracks.Pos()
	assert.Equal(t, 1, row)

	m, _ = press(t, m, keyEsc)
	assert.Equal(t, screenHome, m.screen)
	assert.True(t, env.svc.Previewer.Focused())
}

func TestDetail_SelectEntersPlayer(t *testing.T) {
	env := newTestEnv(t, nil)
	m := env.model()
	album, err := env.svc.Catalog.Album(1)
	require.NoError(t, err)
	m = m.openDetail(album, 0)
	m, _ = press(t, m, keyDown)

	m, cmd := press(t, m, keyEnter)
	require.NotNil(t, cmd)
	assert.Equal(t, screenPlayer, m.screen)
	tracks, idx := env.svc.Sequencer.Queue()
	assert.Len(t, tracks, len(album.Tracks))
	assert.Equal(t, 1, idx)
	assert.Equal(t, album.Tracks[1].ID, m.now.track.ID)
}

func TestPlayer_ExitReturnsToDetail(t *testing.T) {
	env := newTestEnv(t, nil)
	m := env.model()
	album, err := env.svc.Catalog.Album(1)
	require.NoError(t, err)
	m = m.openDetail(album, 2)
	m, _ = press(t, m, keyEnter)
	require.Equal(t, screenPlayer, m.screen)

	next, cmd := m.Update(exitMsg(sequencer.ExitBack))
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.Equal(t, screenDetail, m.screen)
	row, _ := m.tracks.Pos()
	assert.Equal(t, 2, row)
}

func TestPlayer_UpFocusesSeekbar(t *testing.T) {
	env := newTestEnv(t, nil)
	m := env.model()
	album, err := env.svc.Catalog.Album(1)
	require.NoError(t, err)
	m = m.openDetail(album, 0)
	m, _ = press(t, m, keyEnter)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.True(t, env.svc.Bridge.SeekbarFocused())
	_, _ = press(t, m, keyDown)
	assert.False(t, env.svc.Bridge.SeekbarFocused())
}

func TestRestore(t *testing.T) {
	tests := []struct {
		name       string
		nav        *state.NavigationState
		wantScreen screen
		wantAlbum  int
	}{
		{"nothing saved", nil, screenHome, 0},
		{"home", &state.NavigationState{Screen: state.ScreenHome, FocusedRow: 1, FocusedTile: 2}, screenHome, 0},
		{"detail", &state.NavigationState{Screen: state.ScreenDetail, AlbumID: 5, TrackIndex: 1}, screenDetail, 5},
		{"player restores as detail", &state.NavigationState{Screen: state.ScreenPlayer, AlbumID: 2}, screenDetail, 2},
		{"missing album", &state.NavigationState{Screen: state.ScreenDetail, AlbumID: 99}, screenHome, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := state.NewMock()
			st.SetNavigation(tt.nav)
			env := newTestEnv(t, st)
			m := New(env.svc, nil)
			assert.Equal(t, tt.wantScreen, m.screen)
			assert.Equal(t, tt.wantAlbum, m.album.ID)
		})
	}
}

func TestRestore_ResumeHint(t *testing.T) {
	st := state.NewMock()
	st.SetNavigation(&state.NavigationState{Screen: state.ScreenDetail, AlbumID: 2})
	st.SetQueue(&state.QueueState{AlbumID: 2, CurrentIndex: 1, Shuffled: true, TrackIDs: []int{3, 1, 2}})
	env := newTestEnv(t, st)

	m := New(env.svc, nil)
	require.NotNil(t, m.resume)
	q := m.resumeQueue()
	require.NotNil(t, q)
	assert.Equal(t, 1, q.Current().ID)
	assert.Equal(t, 3, q.Tracks()[0].ID)
}

func TestBackgroundToggle(t *testing.T) {
	env := newTestEnv(t, nil)
	m := env.model()
	m.focusTile()
	require.True(t, env.svc.Previewer.Focused())

	m, _ = press(t, m, keyBg)
	assert.True(t, m.background)
	assert.False(t, env.svc.Previewer.Focused())

	m, _ = press(t, m, keyBg)
	assert.False(t, m.background)
	assert.True(t, env.svc.Previewer.Focused())
}

func TestHelpDismissedByAnyKey(t *testing.T) {
	env := newTestEnv(t, nil)
	m := env.model()

	m, _ = press(t, m, keyHelp)
	assert.True(t, m.showHelp)
	m, _ = press(t, m, keyDown)
	assert.False(t, m.showHelp)
	row, _ := m.home.Pos()
	assert.Equal(t, 0, row)
}

func TestQuit(t *testing.T) {
	env := newTestEnv(t, nil)
	m := env.model()

	m, cmd := press(t, m, keyQuit)
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)

	msg := cmd()
	require.IsType(t, closedMsg{}, msg)
	_, cmd = m.Update(msg)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestRecentMsgAddsRow(t *testing.T) {
	env := newTestEnv(t, nil)
	m := env.model()

	next, _ := m.Update(recentMsg{{AlbumID: 4, StartedAt: time.Now()}})
	m = next.(Model)
	require.Len(t, m.rows, 4)
	assert.True(t, m.rows[0].recent)
	assert.Contains(t, m.View(), recentTitle)
}

func TestHome_BackAsksToExit(t *testing.T) {
	env := newTestEnv(t, nil)
	m := env.model()

	m, _ = press(t, m, keyEsc)
	require.True(t, m.exit.Active())
	assert.Contains(t, m.View(), "close the app?")

	// Keys go to the dialog, not the grid.
	m, _ = press(t, m, keyDown)
	assert.Equal(t, 1, m.exit.Selected())
	row, _ := m.home.Pos()
	assert.Equal(t, 0, row)

	m, cmd := press(t, m, keyEnter)
	assert.Nil(t, cmd)
	assert.False(t, m.exit.Active())
	assert.False(t, m.quitting)

	m, _ = press(t, m, keyEsc)
	m, cmd = press(t, m, keyEnter)
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
}
