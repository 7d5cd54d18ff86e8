package driven

import "context"

// WebSearcher fetches live web snippets for a query.
// This is an optional service - when nil, web augmentation is disabled and
// answers are grounded on the local corpus only.
type WebSearcher interface {
	// Search returns raw result text for the query, possibly empty.
	Search(ctx context.Context, query string) (string, error)
}
