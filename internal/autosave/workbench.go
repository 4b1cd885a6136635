package autosave

import (
	"context"
	"fmt"
	"sync"

	"github.com/catatan/catatan/internal/page"
	"github.com/catatan/catatan/pkg/logger"
)

// Backend is what an editor session needs from the page store, already
// bound to the signed-in owner.
type Backend interface {
	Saver
	Load(ctx context.Context, pageID string) (*page.Page, error)
	Trash(ctx context.Context, pageID string) error
}

// Workbench holds the single open page of an editor. Switching pages
// flushes the previous session before the next one starts; trashing the open
// page or signing out discards pending edits instead.
type Workbench struct {
	backend Backend
	opts    []Option

	mu      sync.Mutex
	current *Coalescer
}

func NewWorkbench(backend Backend, opts ...Option) *Workbench {
	return &Workbench{backend: backend, opts: opts}
}

// Current returns the open session, or nil.
func (w *Workbench) Current() *Coalescer {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Open flushes and closes the current session, then loads pageID into a
// fresh one. If the flush fails the current session stays open and the
// error is returned.
func (w *Workbench) Open(ctx context.Context, pageID string) (*Coalescer, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if prev := w.current; prev != nil {
		if err := prev.Flush(ctx); err != nil {
			return nil, fmt.Errorf("save page %s before switching: %w", prev.PageID(), err)
		}
		if err := prev.Close(ctx); err != nil {
			logger.Warnf("closing page %s: %v", prev.PageID(), err)
		}
		w.current = nil
	}

	p, err := w.backend.Load(ctx, pageID)
	if err != nil {
		return nil, err
	}
	w.current = NewCoalescer(p.ID, page.EditOf(p), w.backend, w.opts...)
	return w.current, nil
}

// Close flushes and closes the open session.
func (w *Workbench) Close(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current == nil {
		return nil
	}
	err := w.current.Close(ctx)
	w.current = nil
	return err
}

// Trash discards pending edits of pageID if it is open, then trashes it.
func (w *Workbench) Trash(ctx context.Context, pageID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current != nil && w.current.PageID() == pageID {
		w.current.discard()
		w.current = nil
	}
	return w.backend.Trash(ctx, pageID)
}

// Abandon ends the open session without saving, e.g. on sign-out.
func (w *Workbench) Abandon() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current != nil {
		w.current.discard()
		w.current = nil
	}
}
