package app

import (
	"github.com/llehouerou/wavestv/internal/state"
)

// saveNavigation persists where the user is. The player screen is saved
// as such but restored as the album detail: playback never resumes on its
// own.
func (m Model) saveNavigation() {
	row, col := m.home.Pos()
	track, _ := m.tracks.Pos()
	nav := state.NavigationState{
		Screen:      m.screen.String(),
		FocusedRow:  row,
		FocusedTile: col,
	}
	if m.screen != screenHome {
		nav.AlbumID = m.album.ID
		nav.TrackIndex = track
	}
	m.svc.State.SaveNavigation(nav)
}

// restore applies the saved navigation state.
func (m *Model) restore() {
	nav, err := m.svc.State.GetNavigation()
	if err != nil || nav == nil {
		return
	}
	if nav.FocusedRow < m.home.Rows() {
		m.home.Jump(nav.FocusedRow, nav.FocusedTile, m.visibleRows(), m.visibleTiles())
	}
	if nav.Screen == state.ScreenHome {
		return
	}
	album, err := m.svc.Catalog.Album(nav.AlbumID)
	if err != nil {
		m.svc.Logger.Debug("saved album no longer in catalog", "album", nav.AlbumID)
		return
	}
	m.screen = screenDetail
	m.album = album
	m.tracks = trackGrid(album)
	m.tracks.Jump(nav.TrackIndex, 0, m.visibleTracks(), 1)
	m.resume = m.savedQueue(album.ID)
}
