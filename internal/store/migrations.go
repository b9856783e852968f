package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Gallery items: encoded stills are stored inline, recordings by file path
		`CREATE TABLE IF NOT EXISTS photos (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL CHECK(kind IN ('photo', 'video')),
			filter TEXT NOT NULL DEFAULT 'none',
			mime TEXT NOT NULL,
			data BLOB,
			path TEXT NOT NULL DEFAULT '',
			size INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - studio settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Every dispatched action, manual or gesture-driven
		`CREATE TABLE IF NOT EXISTS action_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			action TEXT NOT NULL,
			label TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT 'gesture',
			message TEXT NOT NULL DEFAULT '',
			fired_at DATETIME NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_photos_created_at ON photos(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_action_log_action ON action_log(action)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
