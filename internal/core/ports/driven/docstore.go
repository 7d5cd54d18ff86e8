package driven

import (
	"context"

	"github.com/custodia-labs/finquery/internal/core/domain"
)

// DocumentStore persists document metadata and content.
// Backed by SQLite for on-disk runs and an in-memory map for tests.
//
// Unlike the retrieval-path collaborators, store errors on the ingestion
// path are propagated: silent loss of an uploaded document is unacceptable.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns up to limit documents, newest first.
	ListDocuments(ctx context.Context, limit int) ([]domain.Document, error)

	// DeleteDocument removes a document.
	DeleteDocument(ctx context.Context, id string) error

	// CountDocuments returns the total number of stored documents.
	CountDocuments(ctx context.Context) (int, error)
}
