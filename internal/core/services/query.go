package services

import (
	"context"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/custodia-labs/finquery/internal/core/domain"
	"github.com/custodia-labs/finquery/internal/core/ports/driven"
	"github.com/custodia-labs/finquery/internal/core/ports/driving"
	"github.com/custodia-labs/finquery/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// yearPattern matches 4-digit year tokens (1900-2099) in query text.
var yearPattern = regexp.MustCompile(`\b(19\d\d|20\d\d)\b`)

// QueryService resolves one query at a time: cache probe, routing, local
// retrieval, conditional web search, synthesis, cache write-back. Every
// collaborator call is individually fault-isolated; a single outage
// degrades answer quality but never aborts the request.
//
// The service is stateless between calls. Two concurrent resolutions of the
// same query may both miss the cache, both do the work, and both write
// back; that race is accepted.
type QueryService struct {
	cache       driven.AnswerCache
	router      driven.QueryRouter
	retriever   driven.Retriever
	webSearcher driven.WebSearcher
	synthesizer *Synthesizer
	settings    domain.RetrievalSettings

	// now is the clock used for the recent-year test. Overridable in tests.
	now func() time.Time
}

// NewQueryService creates a query service. Every collaborator except the
// synthesizer is optional (can be nil) and degrades per the port contract:
// nil cache never hits, nil router routes local, nil retriever returns
// nothing, nil web searcher returns empty results.
func NewQueryService(
	cache driven.AnswerCache,
	router driven.QueryRouter,
	retriever driven.Retriever,
	webSearcher driven.WebSearcher,
	synthesizer *Synthesizer,
	settings domain.RetrievalSettings,
) *QueryService {
	if settings.TopK <= 0 {
		settings.TopK = domain.DefaultRetrievalSettings().TopK
	}
	if settings.RelevanceThreshold == 0 {
		settings.RelevanceThreshold = domain.DefaultRetrievalSettings().RelevanceThreshold
	}
	if settings.RecentYearWindow <= 0 {
		settings.RecentYearWindow = domain.DefaultRetrievalSettings().RecentYearWindow
	}
	if settings.SourcePreviewLen <= 0 {
		settings.SourcePreviewLen = domain.DefaultRetrievalSettings().SourcePreviewLen
	}
	return &QueryService{
		cache:       cache,
		router:      router,
		retriever:   retriever,
		webSearcher: webSearcher,
		synthesizer: synthesizer,
		settings:    settings,
		now:         time.Now,
	}
}

// Resolve produces one QueryResolution for (query, allowWebSearch).
func (s *QueryService) Resolve(ctx context.Context, query string, allowWebSearch bool) (*domain.QueryResolution, error) {
	start := time.Now()
	logger.Section("Query Resolution")
	logger.Debug("Query: %q, web search allowed: %t", query, allowWebSearch)

	// Fast path: a semantic cache hit short-circuits the whole pipeline.
	// No retrieval, no synthesis, no write-back, and no provenance.
	if answer, hit := s.probeCache(ctx, query); hit {
		logger.Info("Cache hit")
		return &domain.QueryResolution{
			Answer:          answer,
			Sources:         []domain.SourceSummary{},
			CacheHit:        true,
			ResponseTime:    time.Since(start).Seconds(),
			RoutingDecision: domain.RouteCache,
		}, nil
	}

	// Routing and local retrieval are independent; run them in parallel.
	var (
		route domain.RoutingDecision
		docs  []domain.ScoredDocument
		wg    sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		route = s.routeQuery(ctx, query)
	}()
	go func() {
		defer wg.Done()
		docs = s.retrieveLocal(ctx, query)
	}()
	wg.Wait()

	logger.Info("Routing decision: %s", route)
	logger.Debug("Local retrieval: %d documents", len(docs))

	hasRelevantDocs := s.hasRelevantDocs(docs)
	containsRecentYear := s.containsRecentYear(query)
	logger.Debug("Relevant docs: %t, recent year in query: %t", hasRelevantDocs, containsRecentYear)

	// Web search fires on an explicit router signal, or on the implicit
	// "no good local match and the query is about now" signal.
	webResults := ""
	if allowWebSearch && (route == domain.RouteWebSearch || (!hasRelevantDocs && containsRecentYear)) {
		logger.Info("Using web search (route=%s, relevant docs=%t)", route, hasRelevantDocs)
		webResults = s.searchWeb(ctx, query)
	}

	answer := s.synthesizer.Synthesize(ctx, query, docs, allowWebSearch, webResults)

	// Unconditional write-back, even for "no information found" answers,
	// so repeated identical queries are fast-pathed. Best effort.
	s.storeAnswer(ctx, query, answer)

	return &domain.QueryResolution{
		Answer:          answer,
		Sources:         s.summariseSources(docs),
		CacheHit:        false,
		ResponseTime:    time.Since(start).Seconds(),
		RoutingDecision: route,
		WebSearchUsed:   webResults != "",
		WebResults:      webResults,
	}, nil
}

// probeCache looks the query up in the semantic cache.
// Cache errors are misses.
func (s *QueryService) probeCache(ctx context.Context, query string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	answer, hit, err := s.cache.Get(ctx, query)
	if err != nil {
		logger.Warn("Cache lookup failed: %v (treating as miss)", err)
		return "", false
	}
	return answer, hit
}

// routeQuery classifies the query. Router failures and unknown tags route local.
func (s *QueryService) routeQuery(ctx context.Context, query string) domain.RoutingDecision {
	if s.router == nil {
		return domain.RouteLocal
	}
	route, err := s.router.Route(ctx, query)
	if err != nil {
		logger.Warn("Router failed: %v (routing local)", err)
		return domain.RouteLocal
	}
	if !route.IsValid() {
		logger.Warn("Router returned unknown tag %q (routing local)", route)
		return domain.RouteLocal
	}
	return route
}

// retrieveLocal always runs regardless of the routing decision: local
// retrieval is cheap and supplies the relevance signal for web fallback.
// Retrieval errors yield an empty result set.
func (s *QueryService) retrieveLocal(ctx context.Context, query string) []domain.ScoredDocument {
	if s.retriever == nil {
		return nil
	}
	docs, err := s.retriever.Search(ctx, query, s.settings.TopK)
	if err != nil {
		logger.Warn("Local retrieval failed: %v (treating as empty)", err)
		return nil
	}
	return docs
}

// searchWeb fetches live results. Client failures yield an empty string and
// the pipeline proceeds on local context alone.
func (s *QueryService) searchWeb(ctx context.Context, query string) string {
	if s.webSearcher == nil {
		return ""
	}
	results, err := s.webSearcher.Search(ctx, query)
	if err != nil {
		logger.Warn("Web search failed: %v (proceeding without web results)", err)
		return ""
	}
	return results
}

// storeAnswer writes the answer back to the cache. Failures are logged only.
func (s *QueryService) storeAnswer(ctx context.Context, query, answer string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Put(ctx, query, answer); err != nil {
		logger.Warn("Cache write-back failed: %v", err)
	}
}

// hasRelevantDocs reports whether any retrieved document scores above the
// relevance threshold, i.e. the query is answerable locally.
func (s *QueryService) hasRelevantDocs(docs []domain.ScoredDocument) bool {
	for _, sd := range docs {
		if sd.Score > s.settings.RelevanceThreshold {
			return true
		}
	}
	return false
}

// containsRecentYear reports whether the query mentions a 4-digit year
// within the recency window. Such queries are likely about events the local
// corpus may lack.
func (s *QueryService) containsRecentYear(query string) bool {
	matches := yearPattern.FindAllString(query, -1)
	if len(matches) == 0 {
		return false
	}
	cutoff := s.now().Year() - s.settings.RecentYearWindow
	for _, m := range matches {
		year, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		if year >= cutoff {
			logger.Info("Recent year %d found in query (cutoff %d)", year, cutoff)
			return true
		}
	}
	return false
}

// summariseSources builds truncated previews of the retrieved documents.
func (s *QueryService) summariseSources(docs []domain.ScoredDocument) []domain.SourceSummary {
	sources := make([]domain.SourceSummary, 0, len(docs))
	for _, sd := range docs {
		content := sd.Document.Content
		if len(content) > s.settings.SourcePreviewLen {
			content = content[:s.settings.SourcePreviewLen] + "..."
		}
		sources = append(sources, domain.SourceSummary{
			Content:  content,
			Metadata: sd.Document.Metadata,
			Score:    sd.Score,
		})
	}
	return sources
}
