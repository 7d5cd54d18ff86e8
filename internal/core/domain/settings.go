package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is the Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// RetrievalSettings holds the query-resolution policy knobs. The defaults
// are load-bearing: changing them changes which queries fall through to
// web search and how many sources ground an answer.
type RetrievalSettings struct {
	// TopK is the number of documents requested per retrieval.
	TopK int `toml:"top_k"`

	// RelevanceThreshold is the minimum similarity score for a retrieved
	// document to count as locally sufficient.
	RelevanceThreshold float64 `toml:"relevance_threshold"`

	// RecentYearWindow is how many years back from the current year a
	// 4-digit year token in the query still counts as "recent".
	RecentYearWindow int `toml:"recent_year_window"`

	// SourcePreviewLen caps the per-source content preview in characters.
	SourcePreviewLen int `toml:"source_preview_len"`

	// CacheSimilarityThreshold is the minimum query similarity for a
	// semantic cache hit.
	CacheSimilarityThreshold float64 `toml:"cache_similarity_threshold"`
}

// DefaultRetrievalSettings returns the behaviour-compatible defaults.
func DefaultRetrievalSettings() RetrievalSettings {
	return RetrievalSettings{
		TopK:                     5,
		RelevanceThreshold:       0.7,
		RecentYearWindow:         1,
		SourcePreviewLen:         200,
		CacheSimilarityThreshold: 0.9,
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider `toml:"provider"`

	// Model is the embedding model name.
	Model string `toml:"model"`

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string `toml:"base_url"`

	// APIKey is the API key (for OpenAI).
	APIKey string `toml:"api_key"`
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider `toml:"provider"`

	// Model is the primary chat model name.
	Model string `toml:"model"`

	// FallbackModel is the cheaper model retried when the primary fails.
	FallbackModel string `toml:"fallback_model"`

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string `toml:"base_url"`

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string `toml:"api_key"`
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// WebSearchSettings holds web search client configuration.
type WebSearchSettings struct {
	// APIKey is the Brave Search API key.
	APIKey string `toml:"api_key"`

	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string `toml:"base_url"`

	// MaxResults caps the number of results per search.
	MaxResults int `toml:"max_results"`
}

// IsConfigured returns true if web search is set up.
func (w WebSearchSettings) IsConfigured() bool {
	return w.APIKey != ""
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Retrieval holds query-resolution policy settings.
	Retrieval RetrievalSettings `toml:"retrieval"`

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings `toml:"embedding"`

	// LLM holds LLM provider settings.
	LLM LLMSettings `toml:"llm"`

	// WebSearch holds web search client settings.
	WebSearch WebSearchSettings `toml:"web_search"`
}

// DefaultAppSettings returns settings with sensible defaults.
// AI features (Embedding, LLM, WebSearch) are left unconfigured; users set
// them up via the settings command. Retrieval defaults are always populated.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Retrieval: DefaultRetrievalSettings(),
		LLM: LLMSettings{
			Model:         "gpt-4o",
			FallbackModel: "gpt-3.5-turbo",
		},
	}
}
