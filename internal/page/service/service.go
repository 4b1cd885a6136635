package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/catatan/catatan/internal/database"
	"github.com/catatan/catatan/internal/page"
	"github.com/catatan/catatan/internal/page/repository"
	"github.com/catatan/catatan/pkg/logger"
	"github.com/catatan/catatan/pkg/metrics"
	"go.mongodb.org/mongo-driver/mongo"
)

// Service defines the page operations used by the handler layer. Every call
// is scoped to the authenticated owner.
type Service interface {
	ListActive(ctx context.Context, owner string) ([]page.Summary, error)
	ListTrashed(ctx context.Context, owner string) ([]page.TrashedSummary, error)
	Get(ctx context.Context, owner, id string) (*page.Page, error)
	Create(ctx context.Context, owner, name string) (*page.Summary, error)
	Update(ctx context.Context, owner, id string, e page.Edit) error
	Trash(ctx context.Context, owner, id string) error
	Restore(ctx context.Context, owner, id string) error
	Purge(ctx context.Context, owner, id string) error
	Ping(ctx context.Context) error
}

// New returns a Service over any page repository.
func New(repo repository.Repository) Service {
	return &pageService{repo: repo}
}

// NewMemoryService returns a Service backed by the in-memory repository.
func NewMemoryService(opts ...repository.Option) Service {
	return New(repository.NewMemoryRepo(opts...))
}

// NewMongoService returns a Service backed by a MongoDB collection.
// Caller owns the client; indexes are created here.
func NewMongoService(ctx context.Context, col *mongo.Collection) (Service, error) {
	repo, err := repository.NewMongoRepo(ctx, col)
	if err != nil {
		return nil, err
	}
	return New(repo), nil
}

// NewSQLService returns a Service backed by PostgreSQL or SQLite.
func NewSQLService(ctx context.Context, db *sql.DB, dialect database.Dialect) (Service, error) {
	repo, err := repository.NewSQLRepo(ctx, db, dialect)
	if err != nil {
		return nil, err
	}
	return New(repo), nil
}

type pageService struct {
	repo repository.Repository
}

// observe classifies err, records the outcome and returns the error callers
// should see. Backend errors are folded into page.ErrStorageUnavailable.
func observe(op, owner, id string, err error) error {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, page.ErrNotFound):
		outcome = "not_found"
	case errors.Is(err, page.ErrConflict):
		outcome = "conflict"
	case errors.Is(err, page.ErrValidation):
		outcome = "invalid"
	default:
		outcome = "error"
		logger.Errorf("page %s failed owner=%s id=%s: %v", op, owner, id, err)
		err = fmt.Errorf("%s: %w: %v", op, page.ErrStorageUnavailable, err)
	}
	metrics.PageOperations.WithLabelValues(op, outcome).Inc()
	return err
}

func requireOwner(op, owner string) error {
	if strings.TrimSpace(owner) == "" {
		return observe(op, owner, "", fmt.Errorf("missing owner: %w", page.ErrValidation))
	}
	return nil
}

func validName(field, v string) error {
	if v == "" {
		return fmt.Errorf("%s is required: %w", field, page.ErrValidation)
	}
	if utf8.RuneCountInString(v) > page.MaxNameLength {
		return fmt.Errorf("%s exceeds %d characters: %w", field, page.MaxNameLength, page.ErrValidation)
	}
	return nil
}

func (s *pageService) ListActive(ctx context.Context, owner string) ([]page.Summary, error) {
	if err := requireOwner("list_active", owner); err != nil {
		return nil, err
	}
	list, err := s.repo.ListActive(ctx, owner)
	if err = observe("list_active", owner, "", err); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *pageService) ListTrashed(ctx context.Context, owner string) ([]page.TrashedSummary, error) {
	if err := requireOwner("list_trashed", owner); err != nil {
		return nil, err
	}
	list, err := s.repo.ListTrashed(ctx, owner)
	if err = observe("list_trashed", owner, "", err); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *pageService) Get(ctx context.Context, owner, id string) (*page.Page, error) {
	if err := requireOwner("get", owner); err != nil {
		return nil, err
	}
	p, err := s.repo.Get(ctx, owner, id)
	if err = observe("get", owner, id, err); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *pageService) Create(ctx context.Context, owner, name string) (*page.Summary, error) {
	if err := requireOwner("create", owner); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if err := validName("name", name); err != nil {
		return nil, observe("create", owner, "", err)
	}
	p := &page.Page{
		OwnerID:     owner,
		DisplayName: name,
		Title:       name,
		Content:     page.PlaceholderContent,
	}
	if err := observe("create", owner, "", s.repo.Create(ctx, p)); err != nil {
		return nil, err
	}
	logger.Debugf("page created owner=%s id=%s", owner, p.ID)
	sum := p.Summarize()
	return &sum, nil
}

func (s *pageService) Update(ctx context.Context, owner, id string, e page.Edit) error {
	if err := requireOwner("update", owner); err != nil {
		return err
	}
	e.DisplayName = strings.TrimSpace(e.DisplayName)
	if err := validName("display_name", e.DisplayName); err != nil {
		return observe("update", owner, id, err)
	}
	e.Content = page.SanitizeContent(e.Content)
	return observe("update", owner, id, s.repo.Update(ctx, owner, id, e))
}

func (s *pageService) Trash(ctx context.Context, owner, id string) error {
	if err := requireOwner("trash", owner); err != nil {
		return err
	}
	return observe("trash", owner, id, s.repo.Trash(ctx, owner, id))
}

func (s *pageService) Restore(ctx context.Context, owner, id string) error {
	if err := requireOwner("restore", owner); err != nil {
		return err
	}
	return observe("restore", owner, id, s.repo.Restore(ctx, owner, id))
}

func (s *pageService) Purge(ctx context.Context, owner, id string) error {
	if err := requireOwner("purge", owner); err != nil {
		return err
	}
	if err := observe("purge", owner, id, s.repo.Purge(ctx, owner, id)); err != nil {
		return err
	}
	logger.Infof("page purged owner=%s id=%s", owner, id)
	return nil
}

func (s *pageService) Ping(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", page.ErrStorageUnavailable, err)
	}
	return nil
}
