package repository

import (
	"context"
	"testing"

	"github.com/catatan/catatan/internal/page"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepoContract(t *testing.T) {
	runRepositoryContract(t, func(t *testing.T, opts ...Option) Repository {
		return NewMemoryRepo(opts...)
	})
}

func TestMemoryRepoGetReturnsCopy(t *testing.T) {
	r := NewMemoryRepo()
	p := &page.Page{OwnerID: "alice", DisplayName: "n", Title: "n"}
	require.NoError(t, r.Create(context.Background(), p))

	got, err := r.Get(context.Background(), "alice", p.ID)
	require.NoError(t, err)
	got.Title = "mutated"

	again, err := r.Get(context.Background(), "alice", p.ID)
	require.NoError(t, err)
	require.Equal(t, "n", again.Title)
}
