package driven

import (
	"context"

	"github.com/custodia-labs/finquery/internal/core/domain"
)

// Normaliser converts raw uploaded bytes into a document.
// Each normaliser handles specific MIME types.
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Generic MIME normalisers should return 50-89.
	// Fallback normalisers should return 1-9.
	Priority() int

	// Normalise converts raw bytes into a document with Content populated.
	// Unreadable content must be converted into a placeholder document
	// body describing the failure rather than returned as an error.
	Normalise(ctx context.Context, raw *domain.RawUpload) (*domain.Document, error)
}
