package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"setlist-sync/internal/domain"

	_ "github.com/go-sql-driver/mysql"
)

type MySQLSongRepository struct {
	db *sql.DB
}

func NewMySQLSongRepository(db *sql.DB) *MySQLSongRepository {
	return &MySQLSongRepository{db: db}
}

const songColumns = `id, title, artist, owner_id, band_id, is_public, duration,
       song_key, bpm, time_signature, tags, lyrics, chords, notes, created_at, updated_at`

func (r *MySQLSongRepository) Create(ctx context.Context, song *domain.Song) error {
	tags, err := json.Marshal(song.Tags)
	if err != nil {
		return err
	}
	query := `
        INSERT INTO songs (` + songColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err = r.db.ExecContext(ctx, query,
		song.ID, song.Title, song.Artist, song.OwnerID, nullable(song.BandID),
		song.IsPublic, song.Duration, song.Key, song.BPM, song.TimeSignature,
		string(tags), song.Lyrics, song.Chords, song.Notes,
		song.CreatedAt, song.UpdatedAt)
	return err
}

func (r *MySQLSongRepository) GetByID(ctx context.Context, songID string) (*domain.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE id = ?`
	song, err := scanSong(r.db.QueryRowContext(ctx, query, songID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return song, nil
}

func (r *MySQLSongRepository) List(ctx context.Context, filter domain.SongFilter) ([]*domain.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE 1=1`
	var args []interface{}

	if filter.OwnerID != "" {
		query += ` AND owner_id = ?`
		args = append(args, filter.OwnerID)
	}
	if filter.BandID != "" {
		query += ` AND band_id = ?`
		args = append(args, filter.BandID)
	}
	if filter.Search != "" {
		query += ` AND (title LIKE ? OR artist LIKE ?)`
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}
	query += ` ORDER BY title`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var songs []*domain.Song
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}
	return songs, rows.Err()
}

func (r *MySQLSongRepository) Update(ctx context.Context, song *domain.Song) error {
	tags, err := json.Marshal(song.Tags)
	if err != nil {
		return err
	}
	query := `
        UPDATE songs SET title = ?, artist = ?, is_public = ?, duration = ?,
               song_key = ?, bpm = ?, time_signature = ?, tags = ?,
               lyrics = ?, chords = ?, notes = ?, updated_at = ?
        WHERE id = ?
    `
	_, err = r.db.ExecContext(ctx, query,
		song.Title, song.Artist, song.IsPublic, song.Duration,
		song.Key, song.BPM, song.TimeSignature, string(tags),
		song.Lyrics, song.Chords, song.Notes, song.UpdatedAt, song.ID)
	return err
}

func (r *MySQLSongRepository) Delete(ctx context.Context, songID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM songs WHERE id = ?`, songID)
	return err
}

func scanSong(row rowScanner) (*domain.Song, error) {
	var song domain.Song
	var bandID sql.NullString
	var tags string

	err := row.Scan(&song.ID, &song.Title, &song.Artist, &song.OwnerID, &bandID,
		&song.IsPublic, &song.Duration, &song.Key, &song.BPM, &song.TimeSignature,
		&tags, &song.Lyrics, &song.Chords, &song.Notes,
		&song.CreatedAt, &song.UpdatedAt)
	if err != nil {
		return nil, err
	}

	song.BandID = bandID.String
	if tags != "" {
		if err := json.Unmarshal([]byte(tags), &song.Tags); err != nil {
			return nil, err
		}
	}
	return &song, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
