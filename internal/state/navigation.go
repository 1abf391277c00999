package state

import (
	"database/sql"
	"errors"

	dbutil "github.com/llehouerou/wavestv/internal/db"
)

// Screens stored in NavigationState.Screen.
const (
	ScreenHome   = "home"
	ScreenDetail = "detail"
	ScreenPlayer = "player"
)

type NavigationState struct {
	Screen      string // ScreenHome, ScreenDetail or ScreenPlayer
	AlbumID     int    // album of the detail or player screen
	FocusedRow  int    // home screen category row
	FocusedTile int    // album tile within the row
	TrackIndex  int    // focused track on the detail screen
}

func getNavigation(db *sql.DB) (*NavigationState, error) {
	row := db.QueryRow(`
		SELECT screen, album_id, focused_row, focused_tile, track_index
		FROM navigation_state WHERE id = 1
	`)

	var state NavigationState
	var albumID sql.NullInt64

	err := row.Scan(&state.Screen, &albumID, &state.FocusedRow, &state.FocusedTile, &state.TrackIndex)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // no saved state is valid on first run
	}
	if err != nil {
		return nil, err
	}

	state.AlbumID = int(dbutil.NullInt64Value(albumID))
	return &state, nil
}

func saveNavigation(db *sql.DB, state NavigationState) error {
	if state.Screen == "" {
		state.Screen = ScreenHome
	}
	_, err := db.Exec(`
		INSERT INTO navigation_state (id, screen, album_id, focused_row, focused_tile, track_index)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			screen = excluded.screen,
			album_id = excluded.album_id,
			focused_row = excluded.focused_row,
			focused_tile = excluded.focused_tile,
			track_index = excluded.track_index
	`, state.Screen, dbutil.NullInt64(int64(state.AlbumID)), state.FocusedRow, state.FocusedTile, state.TrackIndex)

	return err
}
