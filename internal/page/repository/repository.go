package repository

import (
	"context"
	"time"

	"github.com/catatan/catatan/internal/page"
	"github.com/google/uuid"
)

// Repository is the owner-scoped page store. Every method filters by owner;
// a page belonging to someone else is reported exactly like a missing one
// (page.ErrNotFound).
type Repository interface {
	// ListActive returns pages with is_trashed=false, newest updated_at first.
	ListActive(ctx context.Context, owner string) ([]page.Summary, error)
	// ListTrashed returns pages with is_trashed=true, newest trashed_at first.
	ListTrashed(ctx context.Context, owner string) ([]page.TrashedSummary, error)
	Get(ctx context.Context, owner, id string) (*page.Page, error)
	// Create assigns ID and timestamps to p and stores it as active.
	Create(ctx context.Context, p *page.Page) error
	Update(ctx context.Context, owner, id string, e page.Edit) error
	// Trash requires an active page; an owned page already in the trash
	// yields page.ErrConflict.
	Trash(ctx context.Context, owner, id string) error
	// Restore succeeds for any owned page, trashed or not.
	Restore(ctx context.Context, owner, id string) error
	// Purge removes an owned page that is currently in the trash.
	Purge(ctx context.Context, owner, id string) error
	Ping(ctx context.Context) error
}

type options struct {
	now   func() time.Time
	newID func() string
}

// Option customizes a repository.
type Option func(*options)

// WithClock replaces the time source used for created/updated/trashed stamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator replaces the page id generator.
func WithIDGenerator(gen func() string) Option {
	return func(o *options) { o.newID = gen }
}

func buildOptions(opts []Option) options {
	o := options{
		now:   func() time.Time { return time.Now().UTC() },
		newID: newPageID,
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// newPageID returns a UUIDv7 string. v7 ids sort by creation time, which the
// listings rely on for their tie-break.
func newPageID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
