package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/finquery/internal/core/domain"
	"github.com/custodia-labs/finquery/internal/core/ports/driven"
	"github.com/custodia-labs/finquery/internal/logger"
	"github.com/custodia-labs/finquery/internal/textrepair"
)

// NoInformationMessage is returned when context assembly yields nothing to
// ground an answer on. No model call is made in that case.
const NoInformationMessage = "I couldn't find relevant information to answer your question."

// systemPersona establishes the assistant persona for every model call.
const systemPersona = "You are a helpful financial research assistant."

// Generation parameters for synthesis calls. Low temperature favours
// factual, deterministic answers over creative ones.
const (
	synthesisTemperature = 0.3
	synthesisMaxTokens   = 1000
)

// financialSignalTokens mark a context line as carrying financial facts for
// the extractive fallback.
var financialSignalTokens = []string{
	"$", "%", "billion", "million", "revenue", "sales",
	"growth", "increase", "decrease",
}

// synthesisStrategy is one way of producing an answer. Strategies are tried
// in order; the first success wins.
type synthesisStrategy struct {
	name string
	run  func(ctx context.Context, query, contextText string) (string, error)
}

// Synthesizer turns retrieved context into a natural-language answer, with
// cascading fallback when the language-model service is impaired:
// primary model, then the cheaper fallback model, then a deterministic
// extractive answer built from the context itself.
type Synthesizer struct {
	llm           driven.LLMService
	primaryModel  string
	fallbackModel string
}

// NewSynthesizer creates a synthesizer. The LLM service is optional (can be
// nil); without it every answer comes from the extractive fallback.
func NewSynthesizer(llm driven.LLMService, settings domain.LLMSettings) *Synthesizer {
	return &Synthesizer{
		llm:           llm,
		primaryModel:  settings.Model,
		fallbackModel: settings.FallbackModel,
	}
}

// Synthesize produces an answer for the query from local documents and
// optional raw web text. webAllowed records whether web augmentation was
// permitted for this query; webText may be empty. All returned text passes
// through textrepair exactly once.
func (s *Synthesizer) Synthesize(
	ctx context.Context,
	query string,
	docs []domain.ScoredDocument,
	webAllowed bool,
	webText string,
) string {
	logger.Debug("Synthesis: %d docs, web allowed=%t, web text=%d bytes",
		len(docs), webAllowed, len(webText))

	contextText := assembleContext(docs, webText)
	if contextText == "" {
		logger.Info("Synthesis: no grounding context, returning fixed message")
		return NoInformationMessage
	}

	for _, strategy := range s.strategies() {
		answer, err := strategy.run(ctx, query, contextText)
		if err != nil {
			logger.Warn("Synthesis strategy %q failed: %v", strategy.name, err)
			continue
		}
		logger.Info("Synthesis strategy %q succeeded", strategy.name)
		return textrepair.Clean(answer)
	}

	// Unreachable: the extractive strategy never fails. Kept as a guard
	// against an empty strategy list.
	return NoInformationMessage
}

// strategies returns the ordered synthesis fallback chain.
func (s *Synthesizer) strategies() []synthesisStrategy {
	var out []synthesisStrategy

	if s.llm != nil {
		if s.primaryModel != "" {
			out = append(out, synthesisStrategy{
				name: "primary:" + s.primaryModel,
				run:  s.modelStrategy(s.primaryModel),
			})
		}
		if s.fallbackModel != "" && s.fallbackModel != s.primaryModel {
			out = append(out, synthesisStrategy{
				name: "fallback:" + s.fallbackModel,
				run:  s.modelStrategy(s.fallbackModel),
			})
		}
		if len(out) == 0 {
			// No explicit models configured: use the service default.
			out = append(out, synthesisStrategy{
				name: "default:" + s.llm.ModelName(),
				run:  s.modelStrategy(""),
			})
		}
	}

	out = append(out, synthesisStrategy{
		name: "extractive",
		run: func(_ context.Context, query, contextText string) (string, error) {
			return extractiveAnswer(query, contextText), nil
		},
	})

	return out
}

// modelStrategy builds a chat-completion strategy for one model. All models
// see an identical prompt structure.
func (s *Synthesizer) modelStrategy(model string) func(context.Context, string, string) (string, error) {
	return func(ctx context.Context, query, contextText string) (string, error) {
		messages := []driven.ChatMessage{
			{Role: "system", Content: systemPersona},
			{Role: "user", Content: fmt.Sprintf("Context information:\n\n%s\n\nQuestion: %s", contextText, query)},
		}
		answer, err := s.llm.Chat(ctx, messages, driven.ChatOptions{
			Model:       model,
			MaxTokens:   synthesisMaxTokens,
			Temperature: synthesisTemperature,
		})
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(answer), nil
	}
}

// assembleContext formats local documents and web text into the grounding
// block given to the model. Web text is repaired before inclusion; document
// content is indexed as-is and repaired only on the way out.
func assembleContext(docs []domain.ScoredDocument, webText string) string {
	var parts []string
	for _, sd := range docs {
		parts = append(parts, fmt.Sprintf("Document (%s): %s", sd.Document.DisplayTitle(), sd.Document.Content))
	}
	if webText != "" {
		parts = append(parts, "Web Information: "+textrepair.Clean(webText))
	}
	return strings.Join(parts, "\n\n")
}

// extractiveAnswer builds a deterministic answer by surfacing context lines
// that carry financial signal. It is explicitly labelled as a degraded
// response.
func extractiveAnswer(query, contextText string) string {
	var facts []string
	for _, line := range strings.Split(contextText, "\n") {
		line = strings.TrimSpace(stripContextPrefix(line))
		if line == "" {
			continue
		}
		if hasFinancialSignal(line) {
			facts = append(facts, line)
		}
		if len(facts) >= 3 {
			break
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Based on the provided information, I can address your question about %q.\n", query)

	if len(facts) > 0 {
		b.WriteString("\nKey facts from the documents:\n")
		for i, fact := range facts {
			fmt.Fprintf(&b, "%d. %s\n", i+1, fact)
		}
	}

	b.WriteString("\nNote: This is a generated response based on the retrieved documents. " +
		"For more detailed analysis, configure an LLM provider via 'finquery settings'.")

	return b.String()
}

// stripContextPrefix removes the "Document (...): " or "Web Information: "
// framing so the extractive answer surfaces the underlying fact.
func stripContextPrefix(line string) string {
	if strings.HasPrefix(line, "Document (") {
		if idx := strings.Index(line, "): "); idx >= 0 {
			return line[idx+len("): "):]
		}
	}
	return strings.TrimPrefix(line, "Web Information: ")
}

func hasFinancialSignal(line string) bool {
	lower := strings.ToLower(line)
	for _, token := range financialSignalTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}
