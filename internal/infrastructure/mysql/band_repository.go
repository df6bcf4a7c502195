package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"setlist-sync/internal/domain"

	_ "github.com/go-sql-driver/mysql"
)

type MySQLBandRepository struct {
	db *sql.DB
}

func NewMySQLBandRepository(db *sql.DB) *MySQLBandRepository {
	return &MySQLBandRepository{db: db}
}

func (r *MySQLBandRepository) Create(ctx context.Context, band *domain.Band) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	genres, err := json.Marshal(band.Genres)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO bands (id, name, description, owner_id, genres, is_public, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `
	if _, err := tx.ExecContext(ctx, query,
		band.ID, band.Name, band.Description, band.OwnerID,
		string(genres), band.IsPublic, band.CreatedAt, band.UpdatedAt); err != nil {
		return err
	}

	for _, m := range band.Members {
		if err := insertMember(ctx, tx, band.ID, &m); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *MySQLBandRepository) GetByID(ctx context.Context, bandID string) (*domain.Band, error) {
	query := `
        SELECT id, name, description, owner_id, genres, is_public,
               invite_code, invite_expires, created_at, updated_at
        FROM bands WHERE id = ?
    `
	band, err := r.scanBand(r.db.QueryRowContext(ctx, query, bandID))
	if err != nil {
		return nil, err
	}
	if err := r.loadMembers(ctx, band); err != nil {
		return nil, err
	}
	return band, nil
}

func (r *MySQLBandRepository) ListForUser(ctx context.Context, userID string) ([]*domain.Band, error) {
	query := `
        SELECT DISTINCT b.id, b.name, b.description, b.owner_id, b.genres, b.is_public,
               b.invite_code, b.invite_expires, b.created_at, b.updated_at
        FROM bands b
        LEFT JOIN band_members m ON m.band_id = b.id
        WHERE b.owner_id = ? OR m.user_id = ?
        ORDER BY b.created_at DESC
    `
	rows, err := r.db.QueryContext(ctx, query, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bands []*domain.Band
	for rows.Next() {
		band, err := r.scanBandRows(rows)
		if err != nil {
			return nil, err
		}
		bands = append(bands, band)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, band := range bands {
		if err := r.loadMembers(ctx, band); err != nil {
			return nil, err
		}
	}
	return bands, nil
}

func (r *MySQLBandRepository) Update(ctx context.Context, band *domain.Band) error {
	genres, err := json.Marshal(band.Genres)
	if err != nil {
		return err
	}
	query := `
        UPDATE bands SET name = ?, description = ?, genres = ?, is_public = ?, updated_at = ?
        WHERE id = ?
    `
	_, err = r.db.ExecContext(ctx, query,
		band.Name, band.Description, string(genres), band.IsPublic, band.UpdatedAt, band.ID)
	return err
}

func (r *MySQLBandRepository) Delete(ctx context.Context, bandID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM band_members WHERE band_id = ?`, bandID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM bands WHERE id = ?`, bandID); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *MySQLBandRepository) AddMember(ctx context.Context, bandID string, member *domain.BandMember) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertMember(ctx, tx, bandID, member); err != nil {
		return err
	}
	return tx.Commit()
}

func insertMember(ctx context.Context, tx *sql.Tx, bandID string, m *domain.BandMember) error {
	query := `
        INSERT INTO band_members (band_id, user_id, role, instrument, permissions, joined_at)
        VALUES (?, ?, ?, ?, ?, ?)
        ON DUPLICATE KEY UPDATE role = VALUES(role), instrument = VALUES(instrument),
                                permissions = VALUES(permissions)
    `
	_, err := tx.ExecContext(ctx, query,
		bandID, m.UserID, m.Role, m.Instrument, string(m.Permissions), m.JoinedAt)
	return err
}

func (r *MySQLBandRepository) RemoveMember(ctx context.Context, bandID, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM band_members WHERE band_id = ? AND user_id = ?`, bandID, userID)
	return err
}

func (r *MySQLBandRepository) BandIDsForUser(ctx context.Context, userID string) ([]string, error) {
	query := `
        SELECT DISTINCT b.id
        FROM bands b
        LEFT JOIN band_members m ON m.band_id = b.id
        WHERE b.owner_id = ? OR m.user_id = ?
    `
	rows, err := r.db.QueryContext(ctx, query, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *MySQLBandRepository) SetInviteCode(ctx context.Context, bandID, code string, expires time.Time) error {
	query := `UPDATE bands SET invite_code = ?, invite_expires = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, code, expires, time.Now(), bandID)
	return err
}

func (r *MySQLBandRepository) GetByInviteCode(ctx context.Context, code string) (*domain.Band, error) {
	query := `
        SELECT id, name, description, owner_id, genres, is_public,
               invite_code, invite_expires, created_at, updated_at
        FROM bands WHERE invite_code = ?
    `
	band, err := r.scanBand(r.db.QueryRowContext(ctx, query, code))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInviteCodeExpired
		}
		return nil, err
	}
	if err := r.loadMembers(ctx, band); err != nil {
		return nil, err
	}
	return band, nil
}

func (r *MySQLBandRepository) PurgeExpiredInviteCodes(ctx context.Context, before time.Time) (int64, error) {
	query := `
        UPDATE bands SET invite_code = NULL, invite_expires = NULL
        WHERE invite_code IS NOT NULL AND invite_expires < ?
    `
	res, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *MySQLBandRepository) loadMembers(ctx context.Context, band *domain.Band) error {
	query := `
        SELECT user_id, role, instrument, permissions, joined_at
        FROM band_members WHERE band_id = ?
        ORDER BY joined_at
    `
	rows, err := r.db.QueryContext(ctx, query, band.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var m domain.BandMember
		var perms string
		if err := rows.Scan(&m.UserID, &m.Role, &m.Instrument, &perms, &m.JoinedAt); err != nil {
			return err
		}
		m.Permissions = domain.Permission(perms)
		band.Members = append(band.Members, m)
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *MySQLBandRepository) scanBand(row *sql.Row) (*domain.Band, error) {
	band, err := scanBandFrom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return band, nil
}

func (r *MySQLBandRepository) scanBandRows(rows *sql.Rows) (*domain.Band, error) {
	return scanBandFrom(rows)
}

func scanBandFrom(row rowScanner) (*domain.Band, error) {
	var band domain.Band
	var genres string
	var inviteCode sql.NullString
	var inviteExpires sql.NullTime

	err := row.Scan(&band.ID, &band.Name, &band.Description, &band.OwnerID,
		&genres, &band.IsPublic, &inviteCode, &inviteExpires,
		&band.CreatedAt, &band.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if genres != "" {
		if err := json.Unmarshal([]byte(genres), &band.Genres); err != nil {
			return nil, err
		}
	}
	band.InviteCode = inviteCode.String
	if inviteExpires.Valid {
		band.InviteExpires = inviteExpires.Time
	}
	return &band, nil
}
