package driven

import (
	"context"

	"github.com/custodia-labs/finquery/internal/core/domain"
)

// Retriever performs similarity search over stored documents.
type Retriever interface {
	// Search returns up to topK documents scored by similarity to the
	// query, highest first. Scores are in [0, 1].
	Search(ctx context.Context, query string, topK int) ([]domain.ScoredDocument, error)

	// Index adds documents to the similarity index.
	Index(ctx context.Context, docs []domain.Document) error

	// Delete removes a document from the index.
	Delete(ctx context.Context, id string) error

	// Count returns the number of indexed documents.
	Count() int

	// Close releases resources.
	Close() error
}
