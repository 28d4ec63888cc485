package store

import (
	"database/sql"

	"archivesync/internal/domain"
)

func (db *DB) AddSong(song *domain.Song) error {
	query := `INSERT OR IGNORE INTO songs (artist_name, title, normalized_title)
		VALUES (:artist_name, :title, :normalized_title)`

	_, err := db.NamedExec(query, song)
	return err
}

func (db *DB) ListSongsByArtist(artistName string) ([]*domain.Song, error) {
	query := `SELECT id, artist_name, title, normalized_title FROM songs
		WHERE artist_name = ? ORDER BY title ASC`

	var songs []*domain.Song
	err := db.Select(&songs, query, artistName)
	return songs, err
}

func (db *DB) GetSongByNormalizedTitle(artistName, normalizedTitle string) (*domain.Song, error) {
	query := `SELECT id, artist_name, title, normalized_title FROM songs
		WHERE artist_name = ? AND normalized_title = ?`

	song := &domain.Song{}
	err := db.Get(song, query, artistName, normalizedTitle)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return song, nil
}

func (db *DB) AddAlias(alias *domain.SongAlias) error {
	query := `INSERT OR IGNORE INTO song_aliases (artist_name, alias, normalized_alias, canonical_title)
		VALUES (:artist_name, :alias, :normalized_alias, :canonical_title)`

	_, err := db.NamedExec(query, alias)
	return err
}

func (db *DB) ListAliasesByArtist(artistName string) ([]*domain.SongAlias, error) {
	query := `SELECT id, artist_name, alias, normalized_alias, canonical_title FROM song_aliases
		WHERE artist_name = ? ORDER BY alias ASC`

	var aliases []*domain.SongAlias
	err := db.Select(&aliases, query, artistName)
	return aliases, err
}
