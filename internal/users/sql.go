package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/catatan/catatan/internal/database"
	"github.com/catatan/catatan/internal/models"
)

const createUsers = `CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	name          TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	created_at    BIGINT NOT NULL,
	updated_at    BIGINT NOT NULL
)`

// SQLUserRepository stores users in PostgreSQL or SQLite.
type SQLUserRepository struct {
	db      *sql.DB
	dialect database.Dialect
}

func NewSQLUserRepository(ctx context.Context, db *sql.DB, dialect database.Dialect) (*SQLUserRepository, error) {
	if _, err := db.ExecContext(ctx, createUsers); err != nil {
		return nil, fmt.Errorf("create users schema: %w", err)
	}
	return &SQLUserRepository{db: db, dialect: dialect}, nil
}

func (r *SQLUserRepository) Create(ctx context.Context, u *models.User) error {
	if _, err := r.GetByEmail(ctx, u.Email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return err
	}
	_, err := r.db.ExecContext(ctx, r.dialect.Rebind(
		`INSERT INTO users (id, email, name, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`),
		u.ID, u.Email, u.Name, u.PasswordHash, u.CreatedAt.UnixNano(), u.UpdatedAt.UnixNano())
	if err != nil {
		// lost a race on the unique email
		if _, lookupErr := r.GetByEmail(ctx, u.Email); lookupErr == nil {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *SQLUserRepository) getOne(ctx context.Context, where string, arg string) (*models.User, error) {
	var (
		u                models.User
		created, updated int64
	)
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(
		`SELECT id, email, name, password_hash, created_at, updated_at FROM users WHERE `+where+` = ?`), arg).
		Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt = time.Unix(0, created).UTC()
	u.UpdatedAt = time.Unix(0, updated).UTC()
	return &u, nil
}

func (r *SQLUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "email", email)
}

func (r *SQLUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, "id", id)
}
