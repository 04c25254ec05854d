package resultstore

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	domain "github.com/yanqian/doc-summarizer/internal/domain/summarizer"
)

func TestMemoryStoreSaveAndGet(t *testing.T) {
	store := NewMemoryStore(10, 0)
	ctx := context.Background()
	result := domain.Result{ID: uuid.New(), Summary: "done"}

	require.NoError(t, store.Save(ctx, result))

	got, ok, err := store.Get(ctx, result.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "done", got.Summary)

	_, ok, err = store.Get(ctx, uuid.New())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStoreEvictsOldest(t *testing.T) {
	store := NewMemoryStore(2, 0)
	ctx := context.Background()
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for _, id := range ids {
		require.NoError(t, store.Save(ctx, domain.Result{ID: id}))
	}

	require.Equal(t, 2, store.Len())
	_, ok, _ := store.Get(ctx, ids[0])
	require.False(t, ok)
	_, ok, _ = store.Get(ctx, ids[2])
	require.True(t, ok)
}

func TestMemoryStoreResaveDoesNotDuplicate(t *testing.T) {
	store := NewMemoryStore(2, 0)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, store.Save(ctx, domain.Result{ID: id, Summary: "v1"}))
	require.NoError(t, store.Save(ctx, domain.Result{ID: id, Summary: "v2"}))
	require.Equal(t, 1, store.Len())

	got, _, _ := store.Get(ctx, id)
	require.Equal(t, "v2", got.Summary)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(5, time.Minute)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, store.Save(ctx, domain.Result{ID: id}))
	_, ok, _ := store.Get(ctx, id)
	require.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok, _ = store.Get(ctx, id)
	require.False(t, ok)
	require.Zero(t, store.Len())
}
