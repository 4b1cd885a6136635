package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/catatan/catatan/internal/database"
	"github.com/catatan/catatan/internal/page"
)

// SQLRepo implements the page store over database/sql. Each operation is a
// single statement against one row.
type SQLRepo struct {
	db      *sql.DB
	dialect database.Dialect
	opts    options
}

// NewSQLRepo creates the schema if needed and returns the repository.
func NewSQLRepo(ctx context.Context, db *sql.DB, dialect database.Dialect, opts ...Option) (*SQLRepo, error) {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("create page schema: %w", err)
		}
	}
	return &SQLRepo{db: db, dialect: dialect, opts: buildOptions(opts)}, nil
}

func (r *SQLRepo) q(query string) string { return r.dialect.Rebind(query) }

func fromNanos(n int64) time.Time { return time.Unix(0, n).UTC() }

func (r *SQLRepo) ListActive(ctx context.Context, owner string) ([]page.Summary, error) {
	rows, err := r.db.QueryContext(ctx, r.q(
		`SELECT id, display_name FROM pages WHERE owner_id = ? AND is_trashed = FALSE ORDER BY updated_at DESC, id DESC`), owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []page.Summary{}
	for rows.Next() {
		var s page.Summary
		if err := rows.Scan(&s.ID, &s.DisplayName); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLRepo) ListTrashed(ctx context.Context, owner string) ([]page.TrashedSummary, error) {
	rows, err := r.db.QueryContext(ctx, r.q(
		`SELECT id, display_name, trashed_at FROM pages WHERE owner_id = ? AND is_trashed = TRUE ORDER BY trashed_at DESC, id DESC`), owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []page.TrashedSummary{}
	for rows.Next() {
		var (
			s       page.TrashedSummary
			trashed sql.NullInt64
		)
		if err := rows.Scan(&s.ID, &s.DisplayName, &trashed); err != nil {
			return nil, err
		}
		if !trashed.Valid {
			continue
		}
		s.TrashedAt = fromNanos(trashed.Int64)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLRepo) Get(ctx context.Context, owner, id string) (*page.Page, error) {
	var (
		p                page.Page
		trashed          sql.NullInt64
		created, updated int64
	)
	err := r.db.QueryRowContext(ctx, r.q(
		`SELECT id, owner_id, display_name, title, content, is_trashed, trashed_at, created_at, updated_at
		 FROM pages WHERE id = ? AND owner_id = ?`), id, owner).
		Scan(&p.ID, &p.OwnerID, &p.DisplayName, &p.Title, &p.Content, &p.IsTrashed, &trashed, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, page.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if trashed.Valid {
		t := fromNanos(trashed.Int64)
		p.TrashedAt = &t
	}
	p.CreatedAt = fromNanos(created)
	p.UpdatedAt = fromNanos(updated)
	return &p, nil
}

func (r *SQLRepo) Create(ctx context.Context, p *page.Page) error {
	p.ID = r.opts.newID()
	p.CreatedAt = r.opts.now()
	p.UpdatedAt = p.CreatedAt
	p.IsTrashed = false
	p.TrashedAt = nil
	_, err := r.db.ExecContext(ctx, r.q(
		`INSERT INTO pages (id, owner_id, display_name, title, content, is_trashed, trashed_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, FALSE, NULL, ?, ?)`),
		p.ID, p.OwnerID, p.DisplayName, p.Title, p.Content, p.CreatedAt.UnixNano(), p.UpdatedAt.UnixNano())
	return err
}

// affected runs an owner-scoped statement and reports whether it matched a row.
func (r *SQLRepo) affected(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.q(query), args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *SQLRepo) Update(ctx context.Context, owner, id string, e page.Edit) error {
	ok, err := r.affected(ctx,
		`UPDATE pages SET title = ?, content = ?, display_name = ?, updated_at = ? WHERE id = ? AND owner_id = ?`,
		e.Title, e.Content, e.DisplayName, r.opts.now().UnixNano(), id, owner)
	if err != nil {
		return err
	}
	if !ok {
		return page.ErrNotFound
	}
	return nil
}

func (r *SQLRepo) Trash(ctx context.Context, owner, id string) error {
	ok, err := r.affected(ctx,
		`UPDATE pages SET is_trashed = TRUE, trashed_at = ? WHERE id = ? AND owner_id = ? AND is_trashed = FALSE`,
		r.opts.now().UnixNano(), id, owner)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	// tell an already-trashed owned page apart from a missing one
	var trashed bool
	err = r.db.QueryRowContext(ctx, r.q(`SELECT is_trashed FROM pages WHERE id = ? AND owner_id = ?`), id, owner).Scan(&trashed)
	if errors.Is(err, sql.ErrNoRows) {
		return page.ErrNotFound
	}
	if err != nil {
		return err
	}
	if !trashed {
		// state flipped between the two statements
		return fmt.Errorf("trash page %s: concurrent state change: %w", id, page.ErrConflict)
	}
	return page.ErrConflict
}

func (r *SQLRepo) Restore(ctx context.Context, owner, id string) error {
	ok, err := r.affected(ctx,
		`UPDATE pages SET is_trashed = FALSE, trashed_at = NULL WHERE id = ? AND owner_id = ?`, id, owner)
	if err != nil {
		return err
	}
	if !ok {
		return page.ErrNotFound
	}
	return nil
}

func (r *SQLRepo) Purge(ctx context.Context, owner, id string) error {
	ok, err := r.affected(ctx,
		`DELETE FROM pages WHERE id = ? AND owner_id = ? AND is_trashed = TRUE`, id, owner)
	if err != nil {
		return err
	}
	if !ok {
		return page.ErrNotFound
	}
	return nil
}

func (r *SQLRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
