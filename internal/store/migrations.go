package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Events table - one row per announced pipeline outcome
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			generation INTEGER NOT NULL,
			kind TEXT NOT NULL CHECK(kind IN ('directive', 'detection', 'text', 'mode')),
			label TEXT NOT NULL DEFAULT '',
			score REAL NOT NULL DEFAULT 0,
			distance_mm INTEGER NOT NULL DEFAULT 0,
			directive TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_events_created_at ON events(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
