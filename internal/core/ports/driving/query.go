// Package driving provides interfaces for application entry points
// (primary/inbound ports).
package driving

import (
	"context"

	"github.com/custodia-labs/finquery/internal/core/domain"
)

// QueryService resolves natural-language questions over the corpus.
type QueryService interface {
	// Resolve produces one QueryResolution for the query. Collaborator
	// outages degrade the answer but never fail the call; the returned
	// error is reserved for invariant-level misuse.
	Resolve(ctx context.Context, query string, allowWebSearch bool) (*domain.QueryResolution, error)
}
