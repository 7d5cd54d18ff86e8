package domain

// RoutingDecision classifies a query into an intent tag that guides which
// retrieval sources the orchestrator consults.
type RoutingDecision string

// Known routing decisions. The set is extensible; unknown tags are treated
// as RouteLocal by the orchestrator.
const (
	// RouteLocal answers from the local corpus only.
	RouteLocal RoutingDecision = "local"

	// RouteCache is reported on cache hits.
	RouteCache RoutingDecision = "cache"

	// RouteWebSearch signals the query needs live web results.
	RouteWebSearch RoutingDecision = "web_search"
)

// IsValid returns true if the routing decision is recognised.
func (r RoutingDecision) IsValid() bool {
	switch r {
	case RouteLocal, RouteCache, RouteWebSearch:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (r RoutingDecision) String() string {
	return string(r)
}

// SourceSummary is a truncated view of a retrieved document, reported to the
// caller as answer provenance.
type SourceSummary struct {
	// Content is the document content capped at the configured preview length.
	Content string

	// Metadata is the document metadata.
	Metadata map[string]any

	// Score is the retrieval similarity score.
	Score float64
}

// QueryResolution is the orchestrator's output for a single query.
// Constructed fresh per call; ownership transfers to the caller.
//
// Invariants:
//   - CacheHit implies Sources is empty and WebSearchUsed is false. Cache
//     hits intentionally report no provenance.
//   - WebSearchUsed implies WebResults is non-empty.
type QueryResolution struct {
	// Answer is the synthesised answer text.
	Answer string

	// Sources summarises the documents the answer was grounded on.
	Sources []SourceSummary

	// CacheHit is true when the answer was served from the semantic cache.
	CacheHit bool

	// ResponseTime is the wall-clock duration of the resolution in seconds.
	ResponseTime float64

	// RoutingDecision is the tag the router assigned to the query.
	RoutingDecision RoutingDecision

	// WebSearchUsed is true when live web results contributed to the answer.
	WebSearchUsed bool

	// WebResults holds the raw web search text, empty when unused.
	WebResults string
}
