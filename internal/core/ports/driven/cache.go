package driven

import "context"

// AnswerCache is a semantic answer cache keyed by query similarity.
// A lookup matches any previously stored query whose embedding is close
// enough to the incoming one, not just exact text matches.
//
// The orchestrator treats Get errors as misses and Put errors as
// best-effort: the cache can disappear entirely without failing a query.
type AnswerCache interface {
	// Get returns the cached answer for a semantically similar query.
	// The bool reports whether the lookup was a hit.
	Get(ctx context.Context, query string) (string, bool, error)

	// Put stores an answer keyed by its originating query.
	Put(ctx context.Context, query, answer string) error

	// Close releases resources.
	Close() error
}
