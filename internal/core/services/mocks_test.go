package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/finquery/internal/core/domain"
	"github.com/custodia-labs/finquery/internal/core/ports/driven"
)

// --- Mock implementations shared across service tests ---

// mockCache implements driven.AnswerCache for testing.
type mockCache struct {
	mu      sync.Mutex
	entries map[string]string
	getErr  error
	putErr  error
	puts    []string
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string]string)}
}

func (m *mockCache) Get(_ context.Context, query string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	answer, ok := m.entries[query]
	return answer, ok, nil
}

func (m *mockCache) Put(_ context.Context, query, answer string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.entries[query] = answer
	m.puts = append(m.puts, query)
	return nil
}

func (m *mockCache) Close() error { return nil }

// mockRouter implements driven.QueryRouter for testing.
type mockRouter struct {
	route    domain.RoutingDecision
	routeErr error
}

func (m *mockRouter) Route(_ context.Context, _ string) (domain.RoutingDecision, error) {
	if m.routeErr != nil {
		return "", m.routeErr
	}
	return m.route, nil
}

// mockRetriever implements driven.Retriever for testing.
type mockRetriever struct {
	mu        sync.Mutex
	docs      []domain.ScoredDocument
	searchErr error
	indexErr  error
	deleteErr error
	indexed   []domain.Document
	deleted   []string
}

func (m *mockRetriever) Search(_ context.Context, _ string, topK int) ([]domain.ScoredDocument, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if topK < len(m.docs) {
		return m.docs[:topK], nil
	}
	return m.docs, nil
}

func (m *mockRetriever) Index(_ context.Context, docs []domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexErr != nil {
		return m.indexErr
	}
	m.indexed = append(m.indexed, docs...)
	return nil
}

func (m *mockRetriever) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockRetriever) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.indexed)
}

func (m *mockRetriever) Close() error { return nil }

// mockWebSearcher implements driven.WebSearcher for testing.
type mockWebSearcher struct {
	results   string
	searchErr error
	calls     int
}

func (m *mockWebSearcher) Search(_ context.Context, _ string) (string, error) {
	m.calls++
	if m.searchErr != nil {
		return "", m.searchErr
	}
	return m.results, nil
}

// mockLLM implements driven.LLMService for testing. Responses are keyed by
// the model requested in ChatOptions so fallback order is observable.
type mockLLM struct {
	responses map[string]string
	errs      map[string]error
	calls     []string
}

func (m *mockLLM) Chat(_ context.Context, _ []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.calls = append(m.calls, opts.Model)
	if err, ok := m.errs[opts.Model]; ok {
		return "", err
	}
	if resp, ok := m.responses[opts.Model]; ok {
		return resp, nil
	}
	return "", domain.ErrLLMUnavailable
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// scoredDoc builds a scored document for tests.
func scoredDoc(id, company, content string, score float64) domain.ScoredDocument {
	return domain.ScoredDocument{
		Document: domain.Document{
			ID:      id,
			Content: content,
			Metadata: map[string]any{
				"company": company,
			},
		},
		Score: score,
	}
}
