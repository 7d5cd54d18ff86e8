package router

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/finquery/internal/core/domain"
	"github.com/custodia-labs/finquery/internal/core/ports/driven"
)

type stubLLM struct {
	reply string
	err   error
}

func (s *stubLLM) Chat(_ context.Context, _ []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	return s.reply, s.err
}
func (s *stubLLM) ModelName() string            { return "stub" }
func (s *stubLLM) Ping(_ context.Context) error { return nil }
func (s *stubLLM) Close() error                 { return nil }

func TestRoute_LLMClassification(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  domain.RoutingDecision
	}{
		{"local label", "local", domain.RouteLocal},
		{"web label", "web_search", domain.RouteWebSearch},
		{"label with whitespace", "  Web_Search\n", domain.RouteWebSearch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(&stubLLM{reply: tt.reply})
			got, err := r.Route(context.Background(), "what was Apple's revenue?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoute_LLMErrorFallsBackToKeywords(t *testing.T) {
	r := New(&stubLLM{err: errors.New("connection refused")})

	got, err := r.Route(context.Background(), "latest NVIDIA stock price")
	require.NoError(t, err, "routing must not fail when the LLM is down")
	assert.Equal(t, domain.RouteWebSearch, got)
}

func TestRoute_UnexpectedLabelFallsBackToKeywords(t *testing.T) {
	r := New(&stubLLM{reply: "I think you should check the filings"})

	got, err := r.Route(context.Background(), "Apple revenue fiscal 2023")
	require.NoError(t, err)
	assert.Equal(t, domain.RouteLocal, got)
}

func TestKeywordRoute(t *testing.T) {
	tests := []struct {
		query string
		want  domain.RoutingDecision
	}{
		{"what was Apple's revenue in fiscal 2023?", domain.RouteLocal},
		{"latest news about NVIDIA", domain.RouteWebSearch},
		{"Tesla stock price today", domain.RouteWebSearch},
		{"Microsoft cloud revenue growth", domain.RouteLocal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, keywordRoute(tt.query), tt.query)
	}
}

func TestRoute_NoLLMUsesKeywords(t *testing.T) {
	r := New(nil)

	got, err := r.Route(context.Background(), "current market conditions")
	require.NoError(t, err)
	assert.Equal(t, domain.RouteWebSearch, got)
}
