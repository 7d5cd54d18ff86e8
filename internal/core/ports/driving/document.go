package driving

import (
	"context"
	"io"
)

// DocumentPreview is a truncated document view for listing.
type DocumentPreview struct {
	// ID is the document identifier.
	ID string

	// Content is the truncated content preview.
	Content string

	// Metadata is the document metadata.
	Metadata map[string]any
}

// DocumentService manages corpus documents.
// Ingestion errors are propagated to the caller, never swallowed.
type DocumentService interface {
	// UploadText stores a text document and indexes it for retrieval.
	// Returns the assigned document ID.
	UploadText(ctx context.Context, content string, metadata map[string]any) (string, error)

	// UploadFile normalises and stores a file. Large documents may be
	// split into parts; all assigned IDs are returned.
	UploadFile(ctx context.Context, r io.Reader, fileName, mimeType string, metadata map[string]any) ([]string, error)

	// List returns up to limit documents with truncated content previews.
	List(ctx context.Context, limit int) ([]DocumentPreview, error)

	// Delete removes a document from the store and the retrieval index.
	Delete(ctx context.Context, id string) error

	// Seed loads the sample 10-K corpus when the store is empty.
	Seed(ctx context.Context) error
}
