package storage

// Schema is the SQLite schema of the snapshot store.
const Schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	atom_count INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_name ON snapshots(name, created_at);

CREATE TABLE IF NOT EXISTS snapshot_atoms (
	snapshot_id TEXT NOT NULL,
	ordinal INTEGER NOT NULL,
	atom TEXT NOT NULL,
	PRIMARY KEY (snapshot_id, ordinal)
);
`
