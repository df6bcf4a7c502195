package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"setlist-sync/internal/domain"

	_ "github.com/go-sql-driver/mysql"
)

type MySQLSetlistRepository struct {
	db *sql.DB
}

func NewMySQLSetlistRepository(db *sql.DB) *MySQLSetlistRepository {
	return &MySQLSetlistRepository{db: db}
}

const setlistColumns = `id, name, description, owner_id, band_id, is_public, venue,
       show_date, tags, notes, total_duration, version, last_modified_by, created_at, updated_at`

func (r *MySQLSetlistRepository) Create(ctx context.Context, setlist *domain.Setlist) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	tags, err := json.Marshal(setlist.Tags)
	if err != nil {
		return err
	}
	query := `
        INSERT INTO setlists (` + setlistColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	if _, err := tx.ExecContext(ctx, query,
		setlist.ID, setlist.Name, setlist.Description, setlist.OwnerID,
		nullable(setlist.BandID), setlist.IsPublic, setlist.Venue, setlist.Date,
		string(tags), setlist.Notes, setlist.TotalDuration, setlist.Version,
		setlist.LastModifiedBy, setlist.CreatedAt, setlist.UpdatedAt); err != nil {
		return err
	}

	if err := replaceEntries(ctx, tx, setlist); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *MySQLSetlistRepository) GetByID(ctx context.Context, setlistID string) (*domain.Setlist, error) {
	query := `SELECT ` + setlistColumns + ` FROM setlists WHERE id = ?`
	setlist, err := scanSetlist(r.db.QueryRowContext(ctx, query, setlistID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadEntries(ctx, setlist); err != nil {
		return nil, err
	}
	return setlist, nil
}

func (r *MySQLSetlistRepository) ListForUser(ctx context.Context, userID string, bandIDs []string) ([]*domain.Setlist, error) {
	query := `SELECT ` + setlistColumns + ` FROM setlists WHERE owner_id = ?`
	args := []interface{}{userID}

	if len(bandIDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(bandIDs)), ",")
		query += ` OR band_id IN (` + placeholders + `)`
		for _, id := range bandIDs {
			args = append(args, id)
		}
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var setlists []*domain.Setlist
	for rows.Next() {
		setlist, err := scanSetlist(rows)
		if err != nil {
			return nil, err
		}
		setlists = append(setlists, setlist)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, setlist := range setlists {
		if err := r.loadEntries(ctx, setlist); err != nil {
			return nil, err
		}
	}
	return setlists, nil
}

func (r *MySQLSetlistRepository) Update(ctx context.Context, setlist *domain.Setlist) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	tags, err := json.Marshal(setlist.Tags)
	if err != nil {
		return err
	}
	query := `
        UPDATE setlists SET name = ?, description = ?, is_public = ?, venue = ?,
               show_date = ?, tags = ?, notes = ?, total_duration = ?, version = ?,
               last_modified_by = ?, updated_at = ?
        WHERE id = ?
    `
	if _, err := tx.ExecContext(ctx, query,
		setlist.Name, setlist.Description, setlist.IsPublic, setlist.Venue,
		setlist.Date, string(tags), setlist.Notes, setlist.TotalDuration,
		setlist.Version, setlist.LastModifiedBy, setlist.UpdatedAt, setlist.ID); err != nil {
		return err
	}

	if err := replaceEntries(ctx, tx, setlist); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *MySQLSetlistRepository) Delete(ctx context.Context, setlistID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM setlist_songs WHERE setlist_id = ?`, setlistID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM setlists WHERE id = ?`, setlistID); err != nil {
		return err
	}
	return tx.Commit()
}

// replaceEntries rewrites the ordered song rows wholesale. Setlists are small,
// so a delete-and-reinsert inside the transaction beats diffing.
func replaceEntries(ctx context.Context, tx *sql.Tx, setlist *domain.Setlist) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM setlist_songs WHERE setlist_id = ?`, setlist.ID); err != nil {
		return err
	}
	query := `
        INSERT INTO setlist_songs (setlist_id, song_id, position, notes, duration, song_key, capo, segue)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `
	for _, e := range setlist.Songs {
		if _, err := tx.ExecContext(ctx, query,
			setlist.ID, e.SongID, e.Order, e.Notes, e.Duration, e.Key, e.Capo, e.Segue); err != nil {
			return err
		}
	}
	return nil
}

func (r *MySQLSetlistRepository) loadEntries(ctx context.Context, setlist *domain.Setlist) error {
	query := `
        SELECT song_id, position, notes, duration, song_key, capo, segue
        FROM setlist_songs WHERE setlist_id = ?
        ORDER BY position
    `
	rows, err := r.db.QueryContext(ctx, query, setlist.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var e domain.SetlistEntry
		if err := rows.Scan(&e.SongID, &e.Order, &e.Notes, &e.Duration, &e.Key, &e.Capo, &e.Segue); err != nil {
			return err
		}
		setlist.Songs = append(setlist.Songs, e)
	}
	return rows.Err()
}

func scanSetlist(row rowScanner) (*domain.Setlist, error) {
	var setlist domain.Setlist
	var bandID sql.NullString
	var date sql.NullTime
	var tags string

	err := row.Scan(&setlist.ID, &setlist.Name, &setlist.Description, &setlist.OwnerID,
		&bandID, &setlist.IsPublic, &setlist.Venue, &date, &tags, &setlist.Notes,
		&setlist.TotalDuration, &setlist.Version, &setlist.LastModifiedBy,
		&setlist.CreatedAt, &setlist.UpdatedAt)
	if err != nil {
		return nil, err
	}

	setlist.BandID = bandID.String
	if date.Valid {
		setlist.Date = &date.Time
	}
	if tags != "" {
		if err := json.Unmarshal([]byte(tags), &setlist.Tags); err != nil {
			return nil, err
		}
	}
	return &setlist, nil
}
