package cli

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/finquery/internal/logger"
)

// settleDelay debounces editors that fire several write events per save.
const settleDelay = 500 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Watch a directory and ingest new files",
	Long: `Watches a directory and uploads every file created or modified in
it into the corpus. Useful for a drop-folder workflow: save a filing into
the directory and it becomes queryable. Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}
	defer closeServices()

	if documentService == nil {
		return errors.New("document service not configured")
	}

	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	cmd.Printf("Watching %s (Ctrl-C to stop)\n", dir)

	// pending holds paths whose events arrived but haven't settled yet.
	pending := map[string]time.Time{}
	ticker := time.NewTicker(settleDelay)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				pending[event.Name] = time.Now()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case <-ticker.C:
			now := time.Now()
			for path, last := range pending {
				if now.Sub(last) < settleDelay {
					continue
				}
				delete(pending, path)
				ingestFile(cmd, path)
			}

		case <-sigCh:
			cmd.Println("\nStopping.")
			return nil

		case <-cmd.Context().Done():
			return nil
		}
	}
}

// ingestFile uploads one file, logging failures instead of stopping the
// watch loop.
func ingestFile(cmd *cobra.Command, path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	f, err := os.Open(path)
	if err != nil {
		printWarning(cmd, fmt.Sprintf("skipping %s: %v", path, err))
		return
	}
	defer f.Close()

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	ids, err := documentService.UploadFile(cmd.Context(), f, filepath.Base(path), mimeType, nil)
	if err != nil {
		printWarning(cmd, fmt.Sprintf("failed to ingest %s: %v", path, err))
		return
	}
	cmd.Printf("Ingested %s as %d document(s)\n", filepath.Base(path), len(ids))
}
