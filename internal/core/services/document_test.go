package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/finquery/internal/adapters/driven/docstore/memory"
	"github.com/custodia-labs/finquery/internal/normalisers/fallback"
	"github.com/custodia-labs/finquery/internal/normalisers/plaintext"
	"github.com/custodia-labs/finquery/internal/core/domain"
	"github.com/custodia-labs/finquery/internal/core/ports/driven"
)

func newDocService(t *testing.T) (*DocumentService, *memory.DocumentStore, *mockRetriever) {
	t.Helper()
	store := memory.NewDocumentStore()
	retriever := &mockRetriever{}
	normalisers := []driven.Normaliser{plaintext.New(), fallback.New()}
	return NewDocumentService(store, retriever, normalisers), store, retriever
}

func TestUploadText(t *testing.T) {
	svc, store, retriever := newDocService(t)

	id, err := svc.UploadText(context.Background(), "Some filing content with $1.2 billion revenue.",
		map[string]any{"company": "Example Corp"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "doc_"))

	doc, err := store.GetDocument(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Some filing content with $1.2 billion revenue.", doc.Content)
	assert.Equal(t, "Example Corp", doc.Metadata["company"])

	require.Len(t, retriever.indexed, 1)
	assert.Equal(t, id, retriever.indexed[0].ID)
}

func TestUploadText_EmptyContentRejected(t *testing.T) {
	svc, _, _ := newDocService(t)

	_, err := svc.UploadText(context.Background(), "", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUploadText_IndexFailurePropagates(t *testing.T) {
	store := memory.NewDocumentStore()
	retriever := &mockRetriever{indexErr: errors.New("index full")}
	svc := NewDocumentService(store, retriever, []driven.Normaliser{fallback.New()})

	_, err := svc.UploadText(context.Background(), "content", nil)
	require.Error(t, err, "ingestion failures must be reported, not swallowed")
	assert.Contains(t, err.Error(), "index")
}

func TestUploadFile_PlainText(t *testing.T) {
	svc, store, _ := newDocService(t)

	ids, err := svc.UploadFile(context.Background(),
		strings.NewReader("Quarterly revenue was $5.0 billion."),
		"q3.txt", "text/plain", nil)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.True(t, strings.HasPrefix(ids[0], "file_"))

	doc, err := store.GetDocument(context.Background(), ids[0])
	require.NoError(t, err)
	assert.Equal(t, "Quarterly revenue was $5.0 billion.", doc.Content)
	assert.Equal(t, "q3.txt", doc.Metadata["file_name"])
}

func TestUploadFile_ContentHashIDIsStable(t *testing.T) {
	svc, _, _ := newDocService(t)

	first, err := svc.UploadFile(context.Background(), strings.NewReader("same bytes"), "a.txt", "text/plain", nil)
	require.NoError(t, err)
	second, err := svc.UploadFile(context.Background(), strings.NewReader("same bytes"), "b.txt", "text/plain", nil)
	require.NoError(t, err)

	assert.Equal(t, first[0], second[0], "identical content yields the same ID")
}

func TestUploadFile_LargeContentIsSplit(t *testing.T) {
	svc, store, retriever := newDocService(t)
	svc.SetSplitThreshold(50)

	content := strings.Repeat("revenue growth data ", 10) // 200 chars
	ids, err := svc.UploadFile(context.Background(), strings.NewReader(content), "big.txt", "text/plain", nil)
	require.NoError(t, err)
	require.Len(t, ids, 4)

	first, err := store.GetDocument(context.Background(), ids[0])
	require.NoError(t, err)
	assert.Contains(t, first.Content, "[Part 1 of 4]")
	assert.Equal(t, 1, first.Metadata["part"])
	assert.Equal(t, 4, first.Metadata["total_parts"])
	assert.Len(t, retriever.indexed, 4)
}

func TestUploadFile_BinaryContentGetsPlaceholder(t *testing.T) {
	svc, store, _ := newDocService(t)

	ids, err := svc.UploadFile(context.Background(),
		strings.NewReader("\xff\xfe\x00binary"), "report.bin", "application/octet-stream", nil)
	require.NoError(t, err, "malformed content must not abort the upload")
	require.Len(t, ids, 1)

	doc, err := store.GetDocument(context.Background(), ids[0])
	require.NoError(t, err)
	assert.Contains(t, doc.Content, "Could not extract text", "placeholder body describes the failure")
}

func TestList_TruncatesPreviews(t *testing.T) {
	svc, _, _ := newDocService(t)

	long := strings.Repeat("x", 300)
	_, err := svc.UploadText(context.Background(), long, nil)
	require.NoError(t, err)

	previews, err := svc.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, previews, 1)
	assert.Len(t, previews[0].Content, 203)
	assert.True(t, strings.HasSuffix(previews[0].Content, "..."))
}

func TestDelete_RemovesFromStoreAndIndex(t *testing.T) {
	svc, store, retriever := newDocService(t)

	id, err := svc.UploadText(context.Background(), "to be deleted", nil)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), id))

	_, err = store.GetDocument(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, []string{id}, retriever.deleted)
}

func TestSeed(t *testing.T) {
	svc, store, retriever := newDocService(t)

	require.NoError(t, svc.Seed(context.Background()))

	count, err := store.CountDocuments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, count)
	assert.Len(t, retriever.indexed, 5)

	apple, err := store.GetDocument(context.Background(), "AAPL_2023_10K_1")
	require.NoError(t, err)
	assert.Contains(t, apple.Content, "$394.3 billion")

	// Seeding again must not duplicate.
	require.NoError(t, svc.Seed(context.Background()))
	count, err = store.CountDocuments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}
