package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/finquery/internal/core/domain"
)

// fixedClock pins the orchestrator's notion of "now" so recent-year tests
// don't rot as real years pass.
func fixedClock(year int) func() time.Time {
	return func() time.Time {
		return time.Date(year, time.June, 15, 12, 0, 0, 0, time.UTC)
	}
}

func newTestService(
	cache *mockCache,
	router *mockRouter,
	retriever *mockRetriever,
	web *mockWebSearcher,
	llm *mockLLM,
) *QueryService {
	settings := domain.LLMSettings{Model: "primary-model", FallbackModel: "cheap-model"}
	var synthesizer *Synthesizer
	if llm == nil {
		// A typed nil inside the interface would defeat the nil checks.
		synthesizer = NewSynthesizer(nil, settings)
	} else {
		synthesizer = NewSynthesizer(llm, settings)
	}
	svc := NewQueryService(cache, router, retriever, web, synthesizer, domain.DefaultRetrievalSettings())
	svc.now = fixedClock(2024)
	return svc
}

func TestResolve_CacheHitShortCircuits(t *testing.T) {
	cache := newMockCache()
	cache.entries["What was Apple's revenue?"] = "Apple reported $394.3 billion."
	retriever := &mockRetriever{docs: []domain.ScoredDocument{
		scoredDoc("AAPL_2023_10K_1", "Apple Inc.", "Apple content", 0.95),
	}}
	web := &mockWebSearcher{results: "web stuff"}

	svc := newTestService(cache, &mockRouter{route: domain.RouteLocal}, retriever, web, nil)

	res, err := svc.Resolve(context.Background(), "What was Apple's revenue?", true)
	require.NoError(t, err)

	assert.True(t, res.CacheHit)
	assert.Equal(t, "Apple reported $394.3 billion.", res.Answer)
	assert.Empty(t, res.Sources, "cache hits report no provenance")
	assert.False(t, res.WebSearchUsed)
	assert.Empty(t, res.WebResults)
	assert.Equal(t, domain.RouteCache, res.RoutingDecision)
	assert.Zero(t, web.calls, "cache hit must not reach the web searcher")
	assert.Empty(t, cache.puts, "cache hit must not write back")
}

func TestResolve_WriteBackThenSecondQueryHits(t *testing.T) {
	cache := newMockCache()
	retriever := &mockRetriever{docs: []domain.ScoredDocument{
		scoredDoc("AAPL_2023_10K_1", "Apple Inc.",
			"Apple Inc. reported total net sales of $394.3 billion for fiscal 2023.", 0.95),
	}}

	svc := newTestService(cache, &mockRouter{route: domain.RouteLocal}, retriever, nil, nil)

	first, err := svc.Resolve(context.Background(), "Apple revenue 2023", false)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)
	require.Len(t, cache.puts, 1)

	second, err := svc.Resolve(context.Background(), "Apple revenue 2023", false)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Answer, second.Answer)
	assert.Empty(t, second.Sources)
}

func TestResolve_WebSearchOnRouterSignal(t *testing.T) {
	cache := newMockCache()
	web := &mockWebSearcher{results: "NVIDIA announced record results."}
	retriever := &mockRetriever{docs: []domain.ScoredDocument{
		scoredDoc("NVDA_2023_10K_1", "NVIDIA Corporation", "NVIDIA revenue content", 0.95),
	}}

	svc := newTestService(cache, &mockRouter{route: domain.RouteWebSearch}, retriever, web, nil)

	res, err := svc.Resolve(context.Background(), "latest NVIDIA news", true)
	require.NoError(t, err)

	// Relevant local docs exist, but the explicit router signal still
	// triggers web search.
	assert.True(t, res.WebSearchUsed)
	assert.NotEmpty(t, res.WebResults)
	assert.Equal(t, domain.RouteWebSearch, res.RoutingDecision)
}

func TestResolve_WebSearchOnRecentYearWithoutRelevantDocs(t *testing.T) {
	cache := newMockCache()
	web := &mockWebSearcher{results: "NVIDIA fiscal 2025 revenue reached new highs."}
	retriever := &mockRetriever{docs: []domain.ScoredDocument{
		scoredDoc("TSLA_2023_10K_1", "Tesla Inc.", "Tesla automotive revenues", 0.42),
	}}

	svc := newTestService(cache, &mockRouter{route: domain.RouteLocal}, retriever, web, nil)

	res, err := svc.Resolve(context.Background(), "NVIDIA revenue 2025", true)
	require.NoError(t, err)

	assert.True(t, res.WebSearchUsed, "no relevant docs + recent year must trigger web search")
	assert.Equal(t, 1, web.calls)
}

func TestResolve_NoWebSearchWhenDisallowed(t *testing.T) {
	cache := newMockCache()
	web := &mockWebSearcher{results: "should never appear"}
	retriever := &mockRetriever{}

	svc := newTestService(cache, &mockRouter{route: domain.RouteWebSearch}, retriever, web, nil)

	res, err := svc.Resolve(context.Background(), "NVIDIA revenue 2025", false)
	require.NoError(t, err)

	assert.False(t, res.WebSearchUsed)
	assert.Empty(t, res.WebResults)
	assert.Zero(t, web.calls)
}

func TestResolve_NoWebSearchForOldYears(t *testing.T) {
	cache := newMockCache()
	web := &mockWebSearcher{results: "irrelevant"}
	retriever := &mockRetriever{docs: []domain.ScoredDocument{
		scoredDoc("AAPL_2023_10K_1", "Apple Inc.", "Apple content", 0.4),
	}}

	svc := newTestService(cache, &mockRouter{route: domain.RouteLocal}, retriever, web, nil)

	// 1997 is far outside the recency window relative to the 2024 clock.
	res, err := svc.Resolve(context.Background(), "Apple revenue in 1997", true)
	require.NoError(t, err)

	assert.False(t, res.WebSearchUsed)
	assert.Zero(t, web.calls)
}

func TestResolve_RecentYearBoundary(t *testing.T) {
	tests := []struct {
		query     string
		wantWeb   bool
		boundNote string
	}{
		{"revenue in 2023", true, "current_year - 1 is inside the window"},
		{"revenue in 2022", false, "current_year - 2 is outside the window"},
		{"projections for 2025", true, "future years count as recent"},
		{"no year here", false, "no year token at all"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			web := &mockWebSearcher{results: "web text"}
			svc := newTestService(newMockCache(), &mockRouter{route: domain.RouteLocal}, &mockRetriever{}, web, nil)

			res, err := svc.Resolve(context.Background(), tt.query, true)
			require.NoError(t, err)
			assert.Equal(t, tt.wantWeb, res.WebSearchUsed, tt.boundNote)
		})
	}
}

func TestResolve_RouterFailureRoutesLocal(t *testing.T) {
	cache := newMockCache()
	router := &mockRouter{routeErr: errors.New("router down")}
	retriever := &mockRetriever{docs: []domain.ScoredDocument{
		scoredDoc("MSFT_2023_10K_1", "Microsoft Corporation",
			"Microsoft Corporation's revenue was $211.9 billion for fiscal year 2023.", 0.9),
	}}

	svc := newTestService(cache, router, retriever, nil, nil)

	res, err := svc.Resolve(context.Background(), "Microsoft revenue", false)
	require.NoError(t, err, "a router outage must not abort the request")
	assert.Equal(t, domain.RouteLocal, res.RoutingDecision)
	assert.NotEmpty(t, res.Answer)
}

func TestResolve_RetrieverFailureYieldsEmptySources(t *testing.T) {
	cache := newMockCache()
	retriever := &mockRetriever{searchErr: errors.New("vector store unreachable")}

	svc := newTestService(cache, &mockRouter{route: domain.RouteLocal}, retriever, nil, nil)

	res, err := svc.Resolve(context.Background(), "Anything at all", false)
	require.NoError(t, err)
	assert.Empty(t, res.Sources)
	assert.Equal(t, NoInformationMessage, res.Answer)
}

func TestResolve_WebSearchFailureProceedsWithoutWeb(t *testing.T) {
	cache := newMockCache()
	web := &mockWebSearcher{searchErr: errors.New("brave 429")}
	retriever := &mockRetriever{}

	svc := newTestService(cache, &mockRouter{route: domain.RouteWebSearch}, retriever, web, nil)

	res, err := svc.Resolve(context.Background(), "NVIDIA revenue 2025", true)
	require.NoError(t, err)
	assert.False(t, res.WebSearchUsed)
	assert.Empty(t, res.WebResults)
	assert.Equal(t, 1, web.calls)
}

func TestResolve_CacheFailuresAreMisses(t *testing.T) {
	cache := newMockCache()
	cache.getErr = errors.New("cache offline")
	cache.putErr = errors.New("cache offline")
	retriever := &mockRetriever{docs: []domain.ScoredDocument{
		scoredDoc("AAPL_2023_10K_1", "Apple Inc.", "Apple revenue was $394.3 billion.", 0.9),
	}}

	svc := newTestService(cache, &mockRouter{route: domain.RouteLocal}, retriever, nil, nil)

	res, err := svc.Resolve(context.Background(), "Apple revenue", false)
	require.NoError(t, err)
	assert.False(t, res.CacheHit)
	assert.NotEmpty(t, res.Answer)
}

func TestResolve_SourcePreviewTruncation(t *testing.T) {
	longContent := strings.Repeat("Revenue grew substantially. ", 20) // well over 200 chars
	cache := newMockCache()
	retriever := &mockRetriever{docs: []domain.ScoredDocument{
		scoredDoc("DOC_1", "Example Corp", longContent, 0.8),
	}}

	svc := newTestService(cache, &mockRouter{route: domain.RouteLocal}, retriever, nil, nil)

	res, err := svc.Resolve(context.Background(), "Example Corp revenue", false)
	require.NoError(t, err)
	require.Len(t, res.Sources, 1)
	assert.Len(t, res.Sources[0].Content, 203, "200 chars plus ellipsis")
	assert.True(t, strings.HasSuffix(res.Sources[0].Content, "..."))
	assert.InDelta(t, 0.8, res.Sources[0].Score, 1e-9)
}

func TestResolve_EndToEndAppleRevenue(t *testing.T) {
	// Seeded Apple document, no web search allowed: the answer must
	// reference the fiscal-2023 figure even on the degraded extractive path.
	cache := newMockCache()
	retriever := &mockRetriever{docs: []domain.ScoredDocument{
		scoredDoc("AAPL_2023_10K_1", "Apple Inc.",
			"Apple Inc. reported total net sales of $394.3 billion for fiscal 2023, "+
				"compared to $365.8 billion for fiscal 2022.", 0.93),
	}}

	svc := newTestService(cache, &mockRouter{route: domain.RouteLocal}, retriever, nil, nil)

	res, err := svc.Resolve(context.Background(), "What was Apple's revenue in 2023?", false)
	require.NoError(t, err)

	assert.Contains(t, res.Answer, "$394.3 billion")
	assert.False(t, res.WebSearchUsed)
	assert.False(t, res.CacheHit)
	require.NotEmpty(t, res.Sources)
	assert.GreaterOrEqual(t, res.ResponseTime, 0.0)
}

func TestResolve_NilCollaboratorsDegrade(t *testing.T) {
	synthesizer := NewSynthesizer(nil, domain.LLMSettings{})
	svc := NewQueryService(nil, nil, nil, nil, synthesizer, domain.DefaultRetrievalSettings())
	svc.now = fixedClock(2024)

	res, err := svc.Resolve(context.Background(), "NVIDIA revenue 2025", true)
	require.NoError(t, err)
	assert.Equal(t, NoInformationMessage, res.Answer)
	assert.Equal(t, domain.RouteLocal, res.RoutingDecision)
	assert.False(t, res.WebSearchUsed)
}

func TestNewQueryService_BackfillsZeroSettings(t *testing.T) {
	// A zero-valued settings struct must behave like the defaults, not
	// like a degenerate policy (top_k 0, recency window 0).
	web := &mockWebSearcher{results: "web text"}
	synthesizer := NewSynthesizer(nil, domain.LLMSettings{})
	svc := NewQueryService(newMockCache(), &mockRouter{route: domain.RouteLocal},
		&mockRetriever{}, web, synthesizer, domain.RetrievalSettings{})
	svc.now = fixedClock(2024)

	defaults := domain.DefaultRetrievalSettings()
	assert.Equal(t, defaults.TopK, svc.settings.TopK)
	assert.Equal(t, defaults.RelevanceThreshold, svc.settings.RelevanceThreshold)
	assert.Equal(t, defaults.RecentYearWindow, svc.settings.RecentYearWindow)
	assert.Equal(t, defaults.SourcePreviewLen, svc.settings.SourcePreviewLen)

	// current_year - 1 sits inside the default window, so the recency
	// trigger still fires with zero-valued settings.
	res, err := svc.Resolve(context.Background(), "revenue in 2023", true)
	require.NoError(t, err)
	assert.True(t, res.WebSearchUsed)
}

func TestResolve_TopKForwarded(t *testing.T) {
	docs := make([]domain.ScoredDocument, 8)
	for i := range docs {
		docs[i] = scoredDoc(fmt.Sprintf("DOC_%d", i), "Example Corp", "revenue line", 0.5)
	}
	retriever := &mockRetriever{docs: docs}

	svc := newTestService(newMockCache(), &mockRouter{route: domain.RouteLocal}, retriever, nil, nil)

	res, err := svc.Resolve(context.Background(), "Example Corp", false)
	require.NoError(t, err)
	assert.Len(t, res.Sources, 5, "top_k defaults to 5")
}
