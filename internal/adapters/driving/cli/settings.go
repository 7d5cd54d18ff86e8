package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/finquery/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change configuration",
	Long: `Configures AI providers, web search, and retrieval policy. Settings
persist in config.toml under the finquery home directory.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Long: `Changes one setting and saves immediately. Keys:

  llm.provider         ollama | openai | anthropic
  llm.model            primary chat model
  llm.fallback-model   cheaper model tried when the primary fails
  llm.api-key          API key for cloud providers
  llm.base-url         API endpoint override
  embedding.provider   ollama | openai
  embedding.model      embedding model
  embedding.api-key    API key
  embedding.base-url   API endpoint override
  websearch.api-key    Brave Search API key
  retrieval.top-k      documents per retrieval
  retrieval.threshold  relevance threshold (0-1)`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if err := ensureSettings(); err != nil {
		return err
	}

	s := appSettings

	cmd.Println(labelStyle.Render("LLM"))
	cmd.Printf("  Provider:       %s\n", providerLabel(s.LLM.Provider))
	cmd.Printf("  Model:          %s\n", s.LLM.Model)
	cmd.Printf("  Fallback model: %s\n", s.LLM.FallbackModel)
	cmd.Printf("  API key:        %s\n", maskKey(s.LLM.APIKey))

	cmd.Println(labelStyle.Render("\nEmbedding"))
	cmd.Printf("  Provider: %s\n", providerLabel(s.Embedding.Provider))
	cmd.Printf("  Model:    %s\n", s.Embedding.Model)
	cmd.Printf("  API key:  %s\n", maskKey(s.Embedding.APIKey))

	cmd.Println(labelStyle.Render("\nWeb search"))
	cmd.Printf("  API key: %s\n", maskKey(s.WebSearch.APIKey))

	cmd.Println(labelStyle.Render("\nRetrieval"))
	cmd.Printf("  Top K:               %d\n", s.Retrieval.TopK)
	cmd.Printf("  Relevance threshold: %.2f\n", s.Retrieval.RelevanceThreshold)
	cmd.Printf("  Recent year window:  %d\n", s.Retrieval.RecentYearWindow)

	cmd.Println(dimStyle.Render("\nConfig file: " + settingsStore.Path()))
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if err := ensureSettings(); err != nil {
		return err
	}

	key, value := args[0], args[1]

	if err := applySetting(&appSettings, key, value); err != nil {
		return err
	}

	if err := settingsStore.Save(appSettings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Printf("Set %s.\n", key)
	return nil
}

// applySetting maps a dotted key to its settings field.
func applySetting(s *domain.AppSettings, key, value string) error {
	switch key {
	case "llm.provider":
		provider := domain.AIProvider(value)
		if !provider.IsValid() {
			return fmt.Errorf("unknown provider %q (ollama, openai, anthropic)", value)
		}
		s.LLM.Provider = provider
	case "llm.model":
		s.LLM.Model = value
	case "llm.fallback-model":
		s.LLM.FallbackModel = value
	case "llm.api-key":
		s.LLM.APIKey = value
	case "llm.base-url":
		s.LLM.BaseURL = value
	case "embedding.provider":
		provider := domain.AIProvider(value)
		if !provider.IsValid() || provider == domain.AIProviderAnthropic {
			return fmt.Errorf("unknown embedding provider %q (ollama, openai)", value)
		}
		s.Embedding.Provider = provider
	case "embedding.model":
		s.Embedding.Model = value
	case "embedding.api-key":
		s.Embedding.APIKey = value
	case "embedding.base-url":
		s.Embedding.BaseURL = value
	case "websearch.api-key":
		s.WebSearch.APIKey = value
	case "retrieval.top-k":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("top-k must be a positive integer")
		}
		s.Retrieval.TopK = n
	case "retrieval.threshold":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 0 || f > 1 {
			return fmt.Errorf("threshold must be in (0, 1]")
		}
		s.Retrieval.RelevanceThreshold = f
	default:
		return fmt.Errorf("unknown setting %q; see 'finquery settings set --help'", key)
	}
	return nil
}

// providerLabel renders a provider, marking unset ones.
func providerLabel(p domain.AIProvider) string {
	if p == "" {
		return "(not configured)"
	}
	return p.Description()
}

// maskKey hides all but the tail of an API key.
func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
