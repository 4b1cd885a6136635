package autosave

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/catatan/catatan/internal/page"
	"github.com/catatan/catatan/pkg/logger"
	"github.com/catatan/catatan/pkg/metrics"
)

const (
	// DefaultIdle is the quiet period after the last edit before a save.
	DefaultIdle        = 1500 * time.Millisecond
	defaultSaveTimeout = 10 * time.Second
)

// ErrClosed is returned for edits made after Close.
var ErrClosed = errors.New("autosave: coalescer closed")

// Saver persists the full editable state of one page.
type Saver interface {
	Save(ctx context.Context, pageID string, e page.Edit) error
}

// Option configures a Coalescer.
type Option func(*Coalescer)

// WithIdle sets the idle window.
func WithIdle(d time.Duration) Option {
	return func(c *Coalescer) {
		if d > 0 {
			c.idle = d
		}
	}
}

// WithSaveTimeout bounds each timer-driven save.
func WithSaveTimeout(d time.Duration) Option {
	return func(c *Coalescer) {
		if d > 0 {
			c.saveTimeout = d
		}
	}
}

// Coalescer batches edits to one open page into few saves. Every edit
// re-arms a single idle timer; when it fires the latest snapshot is saved
// once. Saves always send the whole snapshot, never a delta.
type Coalescer struct {
	pageID      string
	saver       Saver
	idle        time.Duration
	saveTimeout time.Duration

	// sending serializes saves so a later snapshot never lands before an
	// earlier one.
	sending sync.Mutex

	mu     sync.Mutex
	snap   page.Edit
	dirty  bool
	gen    uint64 // bumped by every edit and by Cancel
	timer  *time.Timer
	closed bool
}

// NewCoalescer starts a clean session for pageID whose stored state is initial.
func NewCoalescer(pageID string, initial page.Edit, saver Saver, opts ...Option) *Coalescer {
	c := &Coalescer{
		pageID:      pageID,
		saver:       saver,
		idle:        DefaultIdle,
		saveTimeout: defaultSaveTimeout,
		snap:        initial,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Coalescer) PageID() string { return c.pageID }

// Snapshot returns the in-memory state, saved or not.
func (c *Coalescer) Snapshot() page.Edit {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Pending reports whether the snapshot holds edits not yet saved.
func (c *Coalescer) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

func (c *Coalescer) SetTitle(title string) error {
	return c.edit(func(e *page.Edit) { e.Title = title })
}

func (c *Coalescer) SetContent(content string) error {
	return c.edit(func(e *page.Edit) { e.Content = content })
}

func (c *Coalescer) SetDisplayName(name string) error {
	return c.edit(func(e *page.Edit) { e.DisplayName = name })
}

// Apply replaces all three fields at once.
func (c *Coalescer) Apply(next page.Edit) error {
	return c.edit(func(e *page.Edit) { *e = next })
}

func (c *Coalescer) edit(mutate func(*page.Edit)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	mutate(&c.snap)
	c.dirty = true
	c.gen++
	metrics.AutosaveEdits.Inc()
	c.armLocked()
	return nil
}

// armLocked replaces the pending timer. Caller holds mu.
func (c *Coalescer) armLocked() {
	c.stopLocked()
	gen := c.gen
	c.timer = time.AfterFunc(c.idle, func() { c.fire(gen) })
}

func (c *Coalescer) stopLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// fire runs on the timer goroutine. Timers superseded by a later edit or a
// Cancel carry an old generation and do nothing.
func (c *Coalescer) fire(gen uint64) {
	c.mu.Lock()
	stale := gen != c.gen || c.closed
	if !stale {
		c.timer = nil
	}
	c.mu.Unlock()
	if stale {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.saveTimeout)
	defer cancel()
	if err := c.send(ctx, "timer"); err != nil {
		// no retry; the next edit or an explicit Flush resends
		logger.Warnf("autosave of page %s failed: %v", c.pageID, err)
	}
}

// send saves the current snapshot if it is dirty. The snapshot stays dirty
// when the save fails or a newer edit arrived meanwhile.
func (c *Coalescer) send(ctx context.Context, trigger string) error {
	c.sending.Lock()
	defer c.sending.Unlock()

	c.mu.Lock()
	if !c.dirty {
		c.mu.Unlock()
		return nil
	}
	snap, gen := c.snap, c.gen
	c.mu.Unlock()

	if err := c.saver.Save(ctx, c.pageID, snap); err != nil {
		metrics.AutosaveFlushes.WithLabelValues(trigger, "error").Inc()
		return err
	}
	metrics.AutosaveFlushes.WithLabelValues(trigger, "ok").Inc()

	c.mu.Lock()
	if c.gen == gen {
		c.dirty = false
	}
	c.mu.Unlock()
	return nil
}

// Flush saves pending edits now and reports the result. It is a no-op when
// nothing changed since the last successful save.
func (c *Coalescer) Flush(ctx context.Context) error {
	c.mu.Lock()
	c.stopLocked()
	c.mu.Unlock()
	return c.send(ctx, "explicit")
}

// Cancel drops pending edits without saving them.
func (c *Coalescer) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.dirty = false
	c.gen++
}

// Close flushes pending edits and rejects further ones. The flush result is
// returned; the coalescer is closed either way.
func (c *Coalescer) Close(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	c.stopLocked()
	c.mu.Unlock()
	return c.send(ctx, "explicit")
}

// discard is Cancel followed by closing, for sessions ended without saving.
// It returns only after a save already in flight has finished, so nothing
// is written for the session once discard returns.
func (c *Coalescer) discard() {
	c.mu.Lock()
	c.closed = true
	c.stopLocked()
	c.dirty = false
	c.gen++
	c.mu.Unlock()

	// wait out a send that started before the generation bump
	c.sending.Lock()
	c.sending.Unlock()
}
