package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/catatan/catatan/internal/page"
)

// MemoryRepo is an in-memory page store used for development and unit tests.
type MemoryRepo struct {
	mu    sync.RWMutex
	opts  options
	store map[string]*page.Page
}

func NewMemoryRepo(opts ...Option) *MemoryRepo {
	return &MemoryRepo{opts: buildOptions(opts), store: make(map[string]*page.Page)}
}

// owned returns the page with id if it belongs to owner. Caller holds mu.
func (m *MemoryRepo) owned(owner, id string) (*page.Page, bool) {
	p, ok := m.store[id]
	if !ok || p.OwnerID != owner {
		return nil, false
	}
	return p, true
}

func (m *MemoryRepo) ListActive(ctx context.Context, owner string) ([]page.Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pages := make([]*page.Page, 0)
	for _, p := range m.store {
		if p.OwnerID == owner && !p.IsTrashed {
			pages = append(pages, p)
		}
	}
	sort.Slice(pages, func(i, j int) bool {
		if !pages[i].UpdatedAt.Equal(pages[j].UpdatedAt) {
			return pages[i].UpdatedAt.After(pages[j].UpdatedAt)
		}
		return pages[i].ID > pages[j].ID
	})
	out := make([]page.Summary, 0, len(pages))
	for _, p := range pages {
		out = append(out, p.Summarize())
	}
	return out, nil
}

func (m *MemoryRepo) ListTrashed(ctx context.Context, owner string) ([]page.TrashedSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]page.TrashedSummary, 0)
	for _, p := range m.store {
		if p.OwnerID == owner && p.IsTrashed && p.TrashedAt != nil {
			out = append(out, page.TrashedSummary{ID: p.ID, DisplayName: p.DisplayName, TrashedAt: *p.TrashedAt})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].TrashedAt.Equal(out[j].TrashedAt) {
			return out[i].TrashedAt.After(out[j].TrashedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *MemoryRepo) Get(ctx context.Context, owner, id string) (*page.Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.owned(owner, id)
	if !ok {
		return nil, page.ErrNotFound
	}
	cp := *p
	if p.TrashedAt != nil {
		t := *p.TrashedAt
		cp.TrashedAt = &t
	}
	return &cp, nil
}

func (m *MemoryRepo) Create(ctx context.Context, p *page.Page) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.opts.newID()
	p.CreatedAt = m.opts.now()
	p.UpdatedAt = p.CreatedAt
	p.IsTrashed = false
	p.TrashedAt = nil
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *MemoryRepo) Update(ctx context.Context, owner, id string, e page.Edit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.owned(owner, id)
	if !ok {
		return page.ErrNotFound
	}
	p.Title = e.Title
	p.Content = e.Content
	p.DisplayName = e.DisplayName
	p.UpdatedAt = m.opts.now()
	return nil
}

func (m *MemoryRepo) Trash(ctx context.Context, owner, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.owned(owner, id)
	if !ok {
		return page.ErrNotFound
	}
	if p.IsTrashed {
		return page.ErrConflict
	}
	now := m.opts.now()
	p.IsTrashed = true
	p.TrashedAt = &now
	return nil
}

func (m *MemoryRepo) Restore(ctx context.Context, owner, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.owned(owner, id)
	if !ok {
		return page.ErrNotFound
	}
	p.IsTrashed = false
	p.TrashedAt = nil
	return nil
}

func (m *MemoryRepo) Purge(ctx context.Context, owner, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.owned(owner, id)
	if !ok || !p.IsTrashed {
		return page.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *MemoryRepo) Ping(ctx context.Context) error { return nil }
