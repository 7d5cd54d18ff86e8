package driven

import (
	"context"

	"github.com/custodia-labs/finquery/internal/core/domain"
)

// QueryRouter classifies a query into a routing intent.
// The orchestrator treats a routing error as domain.RouteLocal; a router
// outage degrades routing quality but never blocks the pipeline.
type QueryRouter interface {
	// Route returns the routing decision for a query.
	Route(ctx context.Context, query string) (domain.RoutingDecision, error)
}
