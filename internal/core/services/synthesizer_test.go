package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/finquery/internal/core/domain"
)

func llmSettings() domain.LLMSettings {
	return domain.LLMSettings{Model: "primary-model", FallbackModel: "cheap-model"}
}

func TestSynthesize_EmptyContextSkipsModel(t *testing.T) {
	llm := &mockLLM{responses: map[string]string{"primary-model": "should not be called"}}
	s := NewSynthesizer(llm, llmSettings())

	answer := s.Synthesize(context.Background(), "anything", nil, false, "")

	assert.Equal(t, NoInformationMessage, answer)
	assert.Empty(t, llm.calls, "no grounding means no model call")
}

func TestSynthesize_PrimaryModelWins(t *testing.T) {
	llm := &mockLLM{responses: map[string]string{
		"primary-model": "Apple reported $394.3 billion in net sales.",
		"cheap-model":   "fallback answer",
	}}
	s := NewSynthesizer(llm, llmSettings())

	docs := []domain.ScoredDocument{
		scoredDoc("AAPL_2023_10K_1", "Apple Inc.", "Apple net sales were $394.3 billion.", 0.9),
	}
	answer := s.Synthesize(context.Background(), "Apple revenue?", docs, false, "")

	assert.Equal(t, "Apple reported $394.3 billion in net sales.", answer)
	require.Equal(t, []string{"primary-model"}, llm.calls, "fallback must not run when primary succeeds")
}

func TestSynthesize_FallbackModelOnPrimaryError(t *testing.T) {
	llm := &mockLLM{
		responses: map[string]string{"cheap-model": "Answer from the cheaper model."},
		errs:      map[string]error{"primary-model": errors.New("rate limited")},
	}
	s := NewSynthesizer(llm, llmSettings())

	docs := []domain.ScoredDocument{
		scoredDoc("MSFT_2023_10K_1", "Microsoft Corporation", "Revenue was $211.9 billion.", 0.9),
	}
	answer := s.Synthesize(context.Background(), "Microsoft revenue?", docs, false, "")

	assert.Equal(t, "Answer from the cheaper model.", answer)
	assert.Equal(t, []string{"primary-model", "cheap-model"}, llm.calls)
}

func TestSynthesize_ExtractiveWhenAllModelsFail(t *testing.T) {
	llm := &mockLLM{errs: map[string]error{
		"primary-model": errors.New("boom"),
		"cheap-model":   errors.New("boom"),
	}}
	s := NewSynthesizer(llm, llmSettings())

	docs := []domain.ScoredDocument{
		scoredDoc("NVDA_2023_10K_1", "NVIDIA Corporation",
			"NVIDIA Corporation's revenue for fiscal 2024 was a record $60.9 billion.", 0.95),
	}
	answer := s.Synthesize(context.Background(), "NVIDIA revenue?", docs, false, "")

	assert.Contains(t, answer, "$60.9 billion")
	assert.Contains(t, answer, "Key facts from the documents:")
	assert.Contains(t, answer, "Note: This is a generated response", "degraded answers are labelled")
}

func TestSynthesize_NilLLMGoesStraightToExtractive(t *testing.T) {
	s := NewSynthesizer(nil, llmSettings())

	docs := []domain.ScoredDocument{
		scoredDoc("AAPL_2023_10K_1", "Apple Inc.",
			"Apple Inc. reported total net sales of $394.3 billion for fiscal 2023.", 0.9),
	}
	answer := s.Synthesize(context.Background(), "Apple revenue?", docs, false, "")

	assert.Contains(t, answer, "$394.3 billion")
	assert.Contains(t, answer, "Note: This is a generated response")
}

func TestSynthesize_ExtractiveCapsAtThreeFacts(t *testing.T) {
	s := NewSynthesizer(nil, llmSettings())

	docs := []domain.ScoredDocument{
		scoredDoc("D1", "A Corp", "Revenue was $1 billion.", 0.9),
		scoredDoc("D2", "B Corp", "Revenue was $2 billion.", 0.8),
		scoredDoc("D3", "C Corp", "Revenue was $3 billion.", 0.7),
		scoredDoc("D4", "D Corp", "Revenue was $4 billion.", 0.6),
	}
	answer := s.Synthesize(context.Background(), "revenues?", docs, false, "")

	assert.Contains(t, answer, "1. ")
	assert.Contains(t, answer, "3. ")
	assert.NotContains(t, answer, "4. Revenue was $4 billion.")
}

func TestSynthesize_WebTextIsRepairedAndIncluded(t *testing.T) {
	llm := &mockLLM{responses: map[string]string{"primary-model": "ok"}}
	s := NewSynthesizer(llm, llmSettings())

	// Glued magnitude word in the web text must be repaired before it
	// reaches the prompt.
	got := assembleContext(nil, "NVIDIA revenue hit $60.9billion this quarter")
	assert.Contains(t, got, "Web Information: ")
	assert.Contains(t, got, "$60.9 billion")

	answer := s.Synthesize(context.Background(), "q", nil, true, "some web text about revenue")
	assert.Equal(t, "ok", answer)
}

func TestSynthesize_AnswerPassesThroughTextRepair(t *testing.T) {
	llm := &mockLLM{responses: map[string]string{
		"primary-model": "Revenue was a record 60.9 b i l l i o n dollars.",
	}}
	s := NewSynthesizer(llm, llmSettings())

	docs := []domain.ScoredDocument{
		scoredDoc("NVDA_2023_10K_1", "NVIDIA Corporation", "revenue content", 0.9),
	}
	answer := s.Synthesize(context.Background(), "NVIDIA revenue?", docs, false, "")

	assert.Contains(t, answer, "60.9 billion")
}

func TestAssembleContext_DocumentFraming(t *testing.T) {
	docs := []domain.ScoredDocument{
		scoredDoc("AAPL_2023_10K_1", "Apple Inc.", "Apple content here.", 0.9),
		{Document: domain.Document{ID: "X", Content: "Untitled content."}, Score: 0.5},
	}

	got := assembleContext(docs, "")

	assert.Contains(t, got, "Document (Apple Inc.): Apple content here.")
	assert.Contains(t, got, "Document (Unknown): Untitled content.")
	assert.Contains(t, got, "\n\n", "parts are blank-line separated")
}
