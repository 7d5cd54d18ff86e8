package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// noWeb disables web search for the query.
var noWeb bool

// showSources prints the retrieved source previews after the answer.
var showSources bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the document corpus",
	Long: `Resolves a question against the local corpus, falling back to web
search when the corpus can't answer and the question needs recent data.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&noWeb, "no-web", false, "Never use web search")
	askCmd.Flags().BoolVar(&showSources, "sources", false, "Show retrieved source previews")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}
	defer closeServices()

	if queryService == nil {
		return errors.New("query service not configured")
	}

	query := strings.Join(args, " ")

	resolution, err := queryService.Resolve(cmd.Context(), query, !noWeb)
	if err != nil {
		return fmt.Errorf("failed to resolve query: %w", err)
	}

	cmd.Println(answerStyle.Render(resolution.Answer))
	cmd.Println()

	var notes []string
	if resolution.CacheHit {
		notes = append(notes, "cached")
	}
	if resolution.WebSearchUsed {
		notes = append(notes, "web search")
	}
	notes = append(notes, fmt.Sprintf("%.2fs", resolution.ResponseTime))
	cmd.Println(dimStyle.Render(strings.Join(notes, " | ")))

	if showSources && len(resolution.Sources) > 0 {
		cmd.Println()
		cmd.Println(labelStyle.Render("Sources:"))
		for i, src := range resolution.Sources {
			cmd.Printf("  %d. [%.2f] %s\n", i+1, src.Score, src.Content)
		}
	}

	return nil
}
