package store

const Schema = `
CREATE TABLE IF NOT EXISTS artist_status (
	artist_name TEXT PRIMARY KEY COLLATE NOCASE,
	imported_tracks INTEGER NOT NULL DEFAULT 0,
	matched_tracks INTEGER NOT NULL DEFAULT 0,
	unmatched_tracks INTEGER NOT NULL DEFAULT 0,
	downloaded_shows INTEGER NOT NULL DEFAULT 0,
	total_duration_seconds REAL NOT NULL DEFAULT 0,
	match_rate REAL NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS import_runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	uuid TEXT NOT NULL,
	correlation_id TEXT UNIQUE NOT NULL,
	artist_name TEXT NOT NULL COLLATE NOCASE,
	status TEXT NOT NULL,
	started_at DATETIME NOT NULL,
	completed_at DATETIME,
	shows_processed INTEGER NOT NULL DEFAULT 0,
	tracks_processed INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_import_runs_status ON import_runs(status);
CREATE INDEX IF NOT EXISTS idx_import_runs_completed_at ON import_runs(completed_at);
CREATE INDEX IF NOT EXISTS idx_import_runs_artist ON import_runs(artist_name);

CREATE TABLE IF NOT EXISTS songs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	artist_name TEXT NOT NULL COLLATE NOCASE,
	title TEXT NOT NULL,
	normalized_title TEXT NOT NULL,
	UNIQUE(artist_name, normalized_title)
);

CREATE INDEX IF NOT EXISTS idx_songs_artist ON songs(artist_name);

CREATE TABLE IF NOT EXISTS song_aliases (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	artist_name TEXT NOT NULL COLLATE NOCASE,
	alias TEXT NOT NULL,
	normalized_alias TEXT NOT NULL,
	canonical_title TEXT NOT NULL,
	UNIQUE(artist_name, normalized_alias)
);

CREATE INDEX IF NOT EXISTS idx_song_aliases_artist ON song_aliases(artist_name);

CREATE TABLE IF NOT EXISTS unmatched_tracks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	artist_name TEXT NOT NULL COLLATE NOCASE,
	track_title TEXT NOT NULL,
	occurrence_count INTEGER NOT NULL DEFAULT 1,
	first_seen_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	last_seen_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(artist_name, track_title)
);

-- date PRIMARY KEY guards against double aggregation
CREATE TABLE IF NOT EXISTS daily_metrics (
	date TEXT PRIMARY KEY,
	imports_count INTEGER NOT NULL DEFAULT 0,
	shows_imported INTEGER NOT NULL DEFAULT 0,
	tracks_imported INTEGER NOT NULL DEFAULT 0,
	avg_import_duration_seconds INTEGER NOT NULL DEFAULT 0,
	tracks_matched INTEGER NOT NULL DEFAULT 0,
	tracks_unmatched INTEGER NOT NULL DEFAULT 0,
	match_rate REAL NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS cache (
	key TEXT PRIMARY KEY,
	data BLOB,
	expires_at DATETIME
);
`
