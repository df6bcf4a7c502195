package mysql

import (
	"context"
	"database/sql"
	"errors"

	"setlist-sync/internal/domain"

	_ "github.com/go-sql-driver/mysql"
)

type MySQLUserRepository struct {
	db *sql.DB
}

func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{db: db}
}

func (r *MySQLUserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
        INSERT INTO users (id, name, email, password_hash, role, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Role,
		user.CreatedAt, user.UpdatedAt)
	return err
}

func (r *MySQLUserRepository) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `
        SELECT id, name, email, password_hash, role, created_at, updated_at
        FROM users WHERE id = ?
    `
	return r.scanUser(r.db.QueryRowContext(ctx, query, userID))
}

func (r *MySQLUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
        SELECT id, name, email, password_hash, role, created_at, updated_at
        FROM users WHERE email = ?
    `
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *MySQLUserRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
        UPDATE users SET name = ?, email = ?, password_hash = ?, role = ?, updated_at = ?
        WHERE id = ?
    `
	_, err := r.db.ExecContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.Role, user.UpdatedAt, user.ID)
	return err
}

func (r *MySQLUserRepository) scanUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&user.Role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}
