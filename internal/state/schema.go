package state

import (
	"database/sql"
)

const currentSchemaVersion = 1

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS navigation_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			screen TEXT NOT NULL DEFAULT 'home',
			album_id INTEGER,
			focused_row INTEGER NOT NULL DEFAULT 0,
			focused_tile INTEGER NOT NULL DEFAULT 0,
			track_index INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS queue_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			album_id INTEGER,
			current_index INTEGER NOT NULL DEFAULT -1,
			shuffled INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS queue_tracks (
			position INTEGER PRIMARY KEY,
			track_id INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS play_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			track_id INTEGER NOT NULL,
			album_id INTEGER,
			title TEXT NOT NULL,
			session_id TEXT,
			started_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_play_history_started_at ON play_history(started_at DESC);
	`)
	if err != nil {
		return err
	}

	// Set initial version if not exists
	_, err = db.Exec(`
		INSERT OR IGNORE INTO schema_version (version) VALUES (?)
	`, currentSchemaVersion)
	return err
}
