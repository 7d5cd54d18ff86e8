// Package cli implements the finquery command-line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/finquery/internal/adapters/driven/ai"
	cachechromem "github.com/custodia-labs/finquery/internal/adapters/driven/cache/chromem"
	configfile "github.com/custodia-labs/finquery/internal/adapters/driven/config/file"
	docsqlite "github.com/custodia-labs/finquery/internal/adapters/driven/docstore/sqlite"
	"github.com/custodia-labs/finquery/internal/adapters/driven/router"
	vectorchromem "github.com/custodia-labs/finquery/internal/adapters/driven/vector/chromem"
	"github.com/custodia-labs/finquery/internal/adapters/driven/websearch/brave"
	"github.com/custodia-labs/finquery/internal/core/domain"
	"github.com/custodia-labs/finquery/internal/core/ports/driven"
	"github.com/custodia-labs/finquery/internal/core/ports/driving"
	"github.com/custodia-labs/finquery/internal/core/services"
	"github.com/custodia-labs/finquery/internal/logger"
	"github.com/custodia-labs/finquery/internal/normalisers/fallback"
	"github.com/custodia-labs/finquery/internal/normalisers/plaintext"
)

// version is set at build time via -ldflags.
var version = "dev"

// verbose enables debug logging.
var verbose bool

// homeDir overrides the finquery home directory (default ~/.finquery).
var homeDir string

// Services shared by the commands. Populated by ensureServices.
var (
	settingsStore   *configfile.SettingsStore
	appSettings     domain.AppSettings
	queryService    driving.QueryService
	documentService driving.DocumentService
	aiResult        *ai.InitResult
	docStore        *docsqlite.Store
)

var rootCmd = &cobra.Command{
	Use:   "finquery",
	Short: "Query financial documents with retrieval-augmented answers",
	Long: `FinQuery answers questions about financial filings.

Questions are resolved against a local corpus of documents (10-K excerpts
by default, plus anything you upload), with optional web search for
queries that need fresher data than filed reports contain. Answers are
cached, so repeating a question - even paraphrased - is instant.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "FinQuery home directory (default ~/.finquery)")
}

// Execute runs the root command.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	return rootCmd.Execute()
}

// resolveHome returns the finquery home directory.
func resolveHome() (string, error) {
	if homeDir != "" {
		return homeDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".finquery"), nil
}

// ensureSettings loads settings from disk, once.
func ensureSettings() error {
	if settingsStore != nil {
		return nil
	}

	home, err := resolveHome()
	if err != nil {
		return err
	}

	store, err := configfile.NewSettingsStore(home)
	if err != nil {
		return fmt.Errorf("opening settings: %w", err)
	}

	settings, err := store.Load()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	settingsStore = store
	appSettings = settings
	return nil
}

// ensureServices wires the full pipeline: storage, retrieval, cache, AI
// services, routing, and web search. Commands that only touch settings
// don't pay this cost.
func ensureServices(cmd *cobra.Command) error {
	if queryService != nil {
		return nil
	}

	if err := ensureSettings(); err != nil {
		return err
	}

	home, err := resolveHome()
	if err != nil {
		return err
	}
	dataDir := filepath.Join(home, "data")

	logger.Section("Initialising")

	aiResult = ai.Initialise(appSettings)
	for _, warning := range aiResult.Warnings {
		printWarning(cmd, warning)
	}

	store, err := docsqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("opening document store: %w", err)
	}
	docStore = store

	retriever, err := vectorchromem.NewRetriever(vectorchromem.Config{
		PersistPath: dataDir,
	}, aiResult.EmbeddingService)
	if err != nil {
		return fmt.Errorf("opening vector index: %w", err)
	}

	cache, err := cachechromem.NewCache(cachechromem.Config{
		PersistPath: dataDir,
		Threshold:   appSettings.Retrieval.CacheSimilarityThreshold,
	}, aiResult.EmbeddingService)
	if err != nil {
		return fmt.Errorf("opening answer cache: %w", err)
	}

	var webSearcher driven.WebSearcher
	if appSettings.WebSearch.IsConfigured() {
		webSearcher, err = brave.NewSearcher(brave.Config{
			APIKey:     appSettings.WebSearch.APIKey,
			BaseURL:    appSettings.WebSearch.BaseURL,
			MaxResults: appSettings.WebSearch.MaxResults,
		})
		if err != nil {
			printWarning(cmd, fmt.Sprintf("web search unavailable: %v", err))
		}
	}

	documentService = services.NewDocumentService(store, retriever, []driven.Normaliser{
		plaintext.New(),
		fallback.New(),
	})

	queryService = services.NewQueryService(
		cache,
		router.New(aiResult.LLMService),
		retriever,
		webSearcher,
		services.NewSynthesizer(aiResult.LLMService, appSettings.LLM),
		appSettings.Retrieval,
	)

	// First run gets the sample 10-K corpus.
	if err := documentService.Seed(cmd.Context()); err != nil {
		printWarning(cmd, fmt.Sprintf("seeding sample documents: %v", err))
	}

	return nil
}

// closeServices releases everything ensureServices opened.
func closeServices() {
	if aiResult != nil {
		aiResult.Close()
	}
	if docStore != nil {
		docStore.Close()
	}
}
