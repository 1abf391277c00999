package state

import (
	"context"
	"database/sql"
	"time"

	dbutil "github.com/llehouerou/wavestv/internal/db"
)

// historyLimit is the number of plays kept in play_history.
const historyLimit = 200

// Play is one entry of the play history.
type Play struct {
	TrackID   int
	AlbumID   int
	Title     string
	SessionID string
	StartedAt time.Time
}

// RecordPlay appends p to the history and prunes the oldest entries.
func (m *Manager) RecordPlay(ctx context.Context, p Play) error {
	if p.StartedAt.IsZero() {
		p.StartedAt = time.Now()
	}
	return dbutil.WithTx(ctx, m.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO play_history (track_id, album_id, title, session_id, started_at)
			VALUES (?, ?, ?, ?, ?)
		`, p.TrackID, dbutil.NullInt64(int64(p.AlbumID)), p.Title, dbutil.NullString(p.SessionID), p.StartedAt.UnixMilli())
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			DELETE FROM play_history WHERE id NOT IN (
				SELECT id FROM play_history ORDER BY started_at DESC, id DESC LIMIT ?
			)
		`, historyLimit)
		return err
	})
}

// RecentPlays returns up to limit plays, most recent first.
func (m *Manager) RecentPlays(ctx context.Context, limit int) ([]Play, error) {
	if limit <= 0 {
		limit = historyLimit
	}
	rows, err := m.db.QueryContext(ctx, `
		SELECT track_id, album_id, title, session_id, started_at
		FROM play_history
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plays []Play
	for rows.Next() {
		var p Play
		var albumID sql.NullInt64
		var sessionID sql.NullString
		var startedAt int64
		if err := rows.Scan(&p.TrackID, &albumID, &p.Title, &sessionID, &startedAt); err != nil {
			return nil, err
		}
		p.AlbumID = int(dbutil.NullInt64Value(albumID))
		p.SessionID = dbutil.NullStringValue(sessionID)
		p.StartedAt = time.UnixMilli(startedAt)
		plays = append(plays, p)
	}
	return plays, rows.Err()
}
