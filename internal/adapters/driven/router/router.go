// Package router decides whether a query should be answered from the
// local corpus or needs a web search. An LLM classifies the query when
// one is available; otherwise a keyword heuristic decides.
package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/finquery/internal/core/domain"
	"github.com/custodia-labs/finquery/internal/core/ports/driven"
	"github.com/custodia-labs/finquery/internal/logger"
)

// Ensure Router implements the interface.
var _ driven.QueryRouter = (*Router)(nil)

// classifyPrompt asks for a single-word routing label.
const classifyPrompt = `Classify this query's best data source. Reply with exactly one word:
- "local" if historical financial filings (10-K reports, annual data) can answer it
- "web_search" if it needs current events, breaking news, or very recent data

Query: %s`

// webSignalWords mark queries that likely need fresher data than filed
// reports contain.
var webSignalWords = []string{
	"latest",
	"current",
	"today",
	"now",
	"recent",
	"news",
	"this week",
	"this month",
	"stock price",
	"right now",
}

// Router classifies queries. The LLM is optional.
type Router struct {
	llm driven.LLMService
}

// New creates a router. Pass nil to use the keyword heuristic only.
func New(llm driven.LLMService) *Router {
	return &Router{llm: llm}
}

// Route classifies the query. Classification never fails outright: an LLM
// error or an unparseable label falls back to the keyword heuristic.
func (r *Router) Route(ctx context.Context, query string) (domain.RoutingDecision, error) {
	if r.llm != nil {
		if decision, ok := r.classify(ctx, query); ok {
			return decision, nil
		}
	}
	return keywordRoute(query), nil
}

// classify asks the LLM for a routing label. The second return value is
// false when the model is unreachable or answers off-script.
func (r *Router) classify(ctx context.Context, query string) (domain.RoutingDecision, bool) {
	reply, err := r.llm.Chat(ctx, []driven.ChatMessage{
		{Role: "user", Content: fmt.Sprintf(classifyPrompt, query)},
	}, driven.ChatOptions{MaxTokens: 10, Temperature: 0})
	if err != nil {
		logger.Debug("Router LLM unavailable, using keyword heuristic: %v", err)
		return "", false
	}

	switch label := strings.ToLower(strings.TrimSpace(reply)); {
	case strings.Contains(label, "web_search"):
		return domain.RouteWebSearch, true
	case strings.Contains(label, "local"):
		return domain.RouteLocal, true
	default:
		logger.Debug("Router LLM returned unexpected label %q", reply)
		return "", false
	}
}

// keywordRoute routes to web search when the query carries recency
// signals, and to the local corpus otherwise.
func keywordRoute(query string) domain.RoutingDecision {
	lowered := strings.ToLower(query)
	for _, word := range webSignalWords {
		if strings.Contains(lowered, word) {
			return domain.RouteWebSearch
		}
	}
	return domain.RouteLocal
}
