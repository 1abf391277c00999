package state

import (
	"context"
	"database/sql"
	"errors"

	dbutil "github.com/llehouerou/wavestv/internal/db"
)

// QueueState is the player queue saved for resuming: the album, the track
// order (which differs from the album after a shuffle) and the position.
type QueueState struct {
	AlbumID      int
	CurrentIndex int
	Shuffled     bool
	TrackIDs     []int
}

func getQueue(db *sql.DB) (*QueueState, error) {
	var state QueueState
	var albumID sql.NullInt64
	row := db.QueryRow(`SELECT album_id, current_index, shuffled FROM queue_state WHERE id = 1`)
	err := row.Scan(&albumID, &state.CurrentIndex, &state.Shuffled)
	if errors.Is(err, sql.ErrNoRows) {
		return &QueueState{CurrentIndex: -1}, nil
	}
	if err != nil {
		return nil, err
	}
	state.AlbumID = int(dbutil.NullInt64Value(albumID))

	rows, err := db.Query(`SELECT track_id FROM queue_tracks ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		state.TrackIDs = append(state.TrackIDs, id)
	}
	return &state, rows.Err()
}

func saveQueue(ctx context.Context, sqlDB *sql.DB, state QueueState) error {
	return dbutil.WithTx(ctx, sqlDB, func(tx *sql.Tx) error {
		// Clear existing queue
		if _, err := tx.Exec(`DELETE FROM queue_tracks`); err != nil {
			return err
		}

		_, err := tx.Exec(`
			INSERT INTO queue_state (id, album_id, current_index, shuffled)
			VALUES (1, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				album_id = excluded.album_id,
				current_index = excluded.current_index,
				shuffled = excluded.shuffled
		`, dbutil.NullInt64(int64(state.AlbumID)), state.CurrentIndex, state.Shuffled)
		if err != nil {
			return err
		}

		stmt, err := tx.Prepare(`INSERT INTO queue_tracks (position, track_id) VALUES (?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, id := range state.TrackIDs {
			if _, err := stmt.Exec(i, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveQueue replaces the saved queue.
func (m *Manager) SaveQueue(ctx context.Context, state QueueState) error {
	return saveQueue(ctx, m.db, state)
}

// GetQueue returns the saved queue. An empty queue has CurrentIndex -1.
func (m *Manager) GetQueue() (*QueueState, error) {
	return getQueue(m.db)
}
