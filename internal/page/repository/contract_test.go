package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/catatan/catatan/internal/page"
	"github.com/stretchr/testify/require"
)

// fakeClock hands out a fixed time until advanced.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// sequentialIDs yields p-0001, p-0002, ... so creation order equals id order.
func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("p-%04d", n)
	}
}

type repoFactory func(t *testing.T, opts ...Option) Repository

func create(t *testing.T, r Repository, owner, name string) *page.Page {
	t.Helper()
	p := &page.Page{OwnerID: owner, DisplayName: name, Title: name, Content: page.PlaceholderContent}
	require.NoError(t, r.Create(context.Background(), p))
	require.NotEmpty(t, p.ID)
	return p
}

func summaryIDs(list []page.Summary) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		out = append(out, s.ID)
	}
	return out
}

func trashedIDs(list []page.TrashedSummary) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		out = append(out, s.ID)
	}
	return out
}

func runRepositoryContract(t *testing.T, newRepo repoFactory) {
	ctx := context.Background()

	t.Run("CreateThenListActive", func(t *testing.T) {
		r := newRepo(t)
		p := create(t, r, "alice", "Notes")

		list, err := r.ListActive(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, page.Summary{ID: p.ID, DisplayName: "Notes"}, list[0])

		got, err := r.Get(ctx, "alice", p.ID)
		require.NoError(t, err)
		require.Equal(t, "Notes", got.Title)
		require.Equal(t, page.PlaceholderContent, got.Content)
		require.False(t, got.IsTrashed)
		require.Nil(t, got.TrashedAt)
	})

	t.Run("EmptyListsAreNotNil", func(t *testing.T) {
		r := newRepo(t)
		active, err := r.ListActive(ctx, "nobody")
		require.NoError(t, err)
		require.NotNil(t, active)
		require.Empty(t, active)
		trashed, err := r.ListTrashed(ctx, "nobody")
		require.NoError(t, err)
		require.NotNil(t, trashed)
		require.Empty(t, trashed)
	})

	t.Run("OtherOwnerSeesNothing", func(t *testing.T) {
		r := newRepo(t)
		p := create(t, r, "alice", "Private")

		_, err := r.Get(ctx, "bob", p.ID)
		require.ErrorIs(t, err, page.ErrNotFound)
		require.ErrorIs(t, r.Update(ctx, "bob", p.ID, page.Edit{Title: "x", DisplayName: "x"}), page.ErrNotFound)
		require.ErrorIs(t, r.Trash(ctx, "bob", p.ID), page.ErrNotFound)
		require.ErrorIs(t, r.Restore(ctx, "bob", p.ID), page.ErrNotFound)

		list, err := r.ListActive(ctx, "bob")
		require.NoError(t, err)
		require.Empty(t, list)

		require.NoError(t, r.Trash(ctx, "alice", p.ID))
		require.ErrorIs(t, r.Purge(ctx, "bob", p.ID), page.ErrNotFound)
		trashed, err := r.ListTrashed(ctx, "bob")
		require.NoError(t, err)
		require.Empty(t, trashed)

		// alice's page is untouched by bob's attempts
		got, err := r.Get(ctx, "alice", p.ID)
		require.NoError(t, err)
		require.Equal(t, "Private", got.Title)
	})

	t.Run("MissingIDIsNotFound", func(t *testing.T) {
		r := newRepo(t)
		_, err := r.Get(ctx, "alice", "does-not-exist")
		require.ErrorIs(t, err, page.ErrNotFound)
		require.ErrorIs(t, r.Update(ctx, "alice", "does-not-exist", page.Edit{DisplayName: "x"}), page.ErrNotFound)
		require.ErrorIs(t, r.Trash(ctx, "alice", "does-not-exist"), page.ErrNotFound)
		require.ErrorIs(t, r.Restore(ctx, "alice", "does-not-exist"), page.ErrNotFound)
		require.ErrorIs(t, r.Purge(ctx, "alice", "does-not-exist"), page.ErrNotFound)
	})

	t.Run("UpdateOverwritesAndBumpsUpdatedAt", func(t *testing.T) {
		clock := newFakeClock()
		r := newRepo(t, WithClock(clock.Now))
		p := create(t, r, "alice", "Notes")
		before, err := r.Get(ctx, "alice", p.ID)
		require.NoError(t, err)

		clock.Advance(time.Second)
		require.NoError(t, r.Update(ctx, "alice", p.ID, page.Edit{Title: "Notes v2", Content: "<p>hi</p>", DisplayName: "Notes v2"}))

		got, err := r.Get(ctx, "alice", p.ID)
		require.NoError(t, err)
		require.Equal(t, "Notes v2", got.Title)
		require.Equal(t, "<p>hi</p>", got.Content)
		require.Equal(t, "Notes v2", got.DisplayName)
		require.True(t, got.UpdatedAt.After(before.UpdatedAt))
		require.True(t, got.CreatedAt.Equal(before.CreatedAt))
	})

	t.Run("TrashRestoreCycle", func(t *testing.T) {
		r := newRepo(t)
		p := create(t, r, "alice", "Notes")

		require.NoError(t, r.Trash(ctx, "alice", p.ID))
		active, err := r.ListActive(ctx, "alice")
		require.NoError(t, err)
		require.Empty(t, active)
		trashed, err := r.ListTrashed(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, trashed, 1)
		require.Equal(t, p.ID, trashed[0].ID)
		require.Equal(t, "Notes", trashed[0].DisplayName)
		require.False(t, trashed[0].TrashedAt.IsZero())

		got, err := r.Get(ctx, "alice", p.ID)
		require.NoError(t, err, "trashed pages stay readable by their owner")
		require.True(t, got.IsTrashed)
		require.NotNil(t, got.TrashedAt)

		require.NoError(t, r.Restore(ctx, "alice", p.ID))
		active, err = r.ListActive(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, []string{p.ID}, summaryIDs(active))
		trashed, err = r.ListTrashed(ctx, "alice")
		require.NoError(t, err)
		require.Empty(t, trashed)

		got, err = r.Get(ctx, "alice", p.ID)
		require.NoError(t, err)
		require.False(t, got.IsTrashed)
		require.Nil(t, got.TrashedAt)
	})

	t.Run("TrashTwiceConflicts", func(t *testing.T) {
		r := newRepo(t)
		p := create(t, r, "alice", "Notes")
		require.NoError(t, r.Trash(ctx, "alice", p.ID))
		require.ErrorIs(t, r.Trash(ctx, "alice", p.ID), page.ErrConflict)
	})

	t.Run("RestoreActiveIsNoop", func(t *testing.T) {
		r := newRepo(t)
		p := create(t, r, "alice", "Notes")
		require.NoError(t, r.Restore(ctx, "alice", p.ID))
		active, err := r.ListActive(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, []string{p.ID}, summaryIDs(active))
	})

	t.Run("PurgeOnlyFromTrash", func(t *testing.T) {
		r := newRepo(t)
		p := create(t, r, "alice", "Notes")

		require.ErrorIs(t, r.Purge(ctx, "alice", p.ID), page.ErrNotFound)
		_, err := r.Get(ctx, "alice", p.ID)
		require.NoError(t, err, "active page must survive a purge attempt")

		require.NoError(t, r.Trash(ctx, "alice", p.ID))
		require.NoError(t, r.Purge(ctx, "alice", p.ID))

		_, err = r.Get(ctx, "alice", p.ID)
		require.ErrorIs(t, err, page.ErrNotFound)
		active, err := r.ListActive(ctx, "alice")
		require.NoError(t, err)
		require.Empty(t, active)
		trashed, err := r.ListTrashed(ctx, "alice")
		require.NoError(t, err)
		require.Empty(t, trashed)

		// purged pages are gone for good
		require.ErrorIs(t, r.Restore(ctx, "alice", p.ID), page.ErrNotFound)
		require.ErrorIs(t, r.Purge(ctx, "alice", p.ID), page.ErrNotFound)
	})

	t.Run("ActiveOrderedByUpdatedAtThenID", func(t *testing.T) {
		clock := newFakeClock()
		r := newRepo(t, WithClock(clock.Now), WithIDGenerator(sequentialIDs()))
		a := create(t, r, "alice", "A")
		b := create(t, r, "alice", "B")
		c := create(t, r, "alice", "C")

		// identical timestamps: most recently created first
		list, err := r.ListActive(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, []string{c.ID, b.ID, a.ID}, summaryIDs(list))

		clock.Advance(time.Minute)
		require.NoError(t, r.Update(ctx, "alice", a.ID, page.Edit{Title: "A", DisplayName: "A"}))
		list, err = r.ListActive(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, []string{a.ID, c.ID, b.ID}, summaryIDs(list))
	})

	t.Run("TrashedOrderedByTrashedAt", func(t *testing.T) {
		clock := newFakeClock()
		r := newRepo(t, WithClock(clock.Now), WithIDGenerator(sequentialIDs()))
		a := create(t, r, "alice", "A")
		b := create(t, r, "alice", "B")

		require.NoError(t, r.Trash(ctx, "alice", b.ID))
		clock.Advance(time.Minute)
		require.NoError(t, r.Trash(ctx, "alice", a.ID))

		list, err := r.ListTrashed(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, []string{a.ID, b.ID}, trashedIDs(list))
		require.True(t, list[0].TrashedAt.After(list[1].TrashedAt))
	})

	t.Run("IDsAreUnique", func(t *testing.T) {
		r := newRepo(t)
		seen := map[string]bool{}
		for i := 0; i < 50; i++ {
			p := create(t, r, "alice", fmt.Sprintf("n%d", i))
			require.False(t, seen[p.ID], "duplicate id %s", p.ID)
			seen[p.ID] = true
		}
	})

	t.Run("Ping", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.Ping(ctx))
	})
}
