package progress

// migration is a single versioned schema change.
type migration struct {
	version int
	sql     string
}

// migrations are applied in order; each entry must also bump the
// recorded schema version inside its own statement batch.
var migrations = []migration{
	{
		version: 1,
		sql: `
			CREATE TABLE IF NOT EXISTS schema_version (
				version INTEGER PRIMARY KEY
			);

			CREATE TABLE IF NOT EXISTS imported_threads (
				thread_key TEXT PRIMARY KEY
			);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`,
	},
}
