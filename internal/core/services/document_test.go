package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keepsake-labs/recall-cli/internal/adapters/driven/storage/memory"
	"github.com/keepsake-labs/recall-cli/internal/core/domain"
)

func TestDocumentService_ListAndGet(t *testing.T) {
	store := memory.NewStore(0)
	svc := NewDocumentService(store)
	ctx := context.Background()

	doc := seedDocument(t, store, "proj", "a.md", []string{"content"}, nil, "", time.Now())

	docs, err := svc.List(ctx, "proj")
	require.NoError(t, err)
	require.Len(t, docs, 1)

	got, err := svc.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "a.md", got.Name)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentService_DeleteRemovesChunks(t *testing.T) {
	store := memory.NewStore(0)
	svc := NewDocumentService(store)
	ctx := context.Background()

	doc := seedDocument(t, store, "proj", "a.md", []string{"one", "two"}, nil, "", time.Now())
	require.NoError(t, svc.Delete(ctx, doc.ID))

	stats, err := svc.Stats(ctx, "proj")
	require.NoError(t, err)
	assert.Zero(t, stats.DocumentCount)
	assert.Zero(t, stats.ChunkCount)
}

func TestDocumentService_EvictOldest(t *testing.T) {
	store := memory.NewStore(0)
	svc := NewDocumentService(store)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	seedDocument(t, store, "proj", "old.md", []string{"old"}, nil, "", base)
	seedDocument(t, store, "proj", "new.md", []string{"new"}, nil, "", base.Add(time.Hour))

	evicted, err := svc.Evict(ctx, "proj")
	require.NoError(t, err)
	assert.Equal(t, "old.md", evicted.Name)

	_, err = svc.Evict(ctx, "proj")
	require.NoError(t, err)

	_, err = svc.Evict(ctx, "proj")
	assert.Error(t, err)
}
