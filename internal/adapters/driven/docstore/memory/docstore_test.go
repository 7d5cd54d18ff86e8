package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/finquery/internal/core/domain"
)

func doc(id, content string) *domain.Document {
	now := time.Now()
	return &domain.Document{
		ID:        id,
		Content:   content,
		Metadata:  map[string]any{"company": "Test Corp"},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestSaveAndGet(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.SaveDocument(ctx, doc("d1", "content one")))

	got, err := store.GetDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "content one", got.Content)
}

func TestGet_NotFound(t *testing.T) {
	store := NewDocumentStore()

	_, err := store.GetDocument(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSave_Upsert(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.SaveDocument(ctx, doc("d1", "original")))
	require.NoError(t, store.SaveDocument(ctx, doc("d1", "updated")))

	got, err := store.GetDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "updated", got.Content)

	count, err := store.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestList_InsertionOrderAndLimit(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.SaveDocument(ctx, doc("a", "first")))
	require.NoError(t, store.SaveDocument(ctx, doc("b", "second")))
	require.NoError(t, store.SaveDocument(ctx, doc("c", "third")))

	docs, err := store.ListDocuments(ctx, 2)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0].ID)
	assert.Equal(t, "b", docs[1].ID)
}

func TestDelete(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.SaveDocument(ctx, doc("d1", "content")))
	require.NoError(t, store.DeleteDocument(ctx, "d1"))

	_, err := store.GetDocument(ctx, "d1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, store.DeleteDocument(ctx, "d1"), domain.ErrNotFound)
}
