// Package chromem provides a semantic answer cache backed by chromem-go.
// Cached entries are keyed by query embedding, so a paraphrased repeat of
// an earlier question still hits.
package chromem

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"

	chromemgo "github.com/philippgille/chromem-go"

	"github.com/custodia-labs/finquery/internal/core/ports/driven"
)

// Ensure Cache implements the interface.
var _ driven.AnswerCache = (*Cache)(nil)

// Default configuration values.
const (
	DefaultCollection = "answer_cache"
	DefaultThreshold  = 0.9
)

// Config holds cache configuration.
type Config struct {
	// PersistPath is the directory for the on-disk cache. Empty means
	// in-memory only.
	PersistPath string

	// Collection is the collection name (default: answer_cache).
	Collection string

	// Threshold is the minimum query similarity for a hit
	// (default: 0.9). Lower values trade answer accuracy for hit rate.
	Threshold float64
}

// Cache stores query/answer pairs and serves hits for similar queries.
type Cache struct {
	collection *chromemgo.Collection
	threshold  float64
}

// NewCache creates a semantic answer cache using the given embedding
// service.
func NewCache(cfg Config, embedder driven.EmbeddingService) (*Cache, error) {
	if embedder == nil {
		return nil, fmt.Errorf("chromem cache: embedding service is required")
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Threshold == 0 {
		cfg.Threshold = DefaultThreshold
	}

	var db *chromemgo.DB
	var err error
	if cfg.PersistPath != "" {
		db, err = chromemgo.NewPersistentDB(filepath.Join(cfg.PersistPath, "cache.gob"), false)
		if err != nil {
			return nil, fmt.Errorf("chromem cache: create persistent DB: %w", err)
		}
	} else {
		db = chromemgo.NewDB()
	}

	embeddingFunc := func(ctx context.Context, text string) ([]float32, error) {
		return embedder.Embed(ctx, text)
	}

	collection, err := db.GetOrCreateCollection(cfg.Collection, nil, embeddingFunc)
	if err != nil {
		return nil, fmt.Errorf("chromem cache: create collection: %w", err)
	}

	return &Cache{collection: collection, threshold: cfg.Threshold}, nil
}

// Get returns the cached answer for the most similar stored query, if its
// similarity clears the threshold.
func (c *Cache) Get(ctx context.Context, query string) (string, bool, error) {
	if c.collection.Count() == 0 {
		return "", false, nil
	}

	results, err := c.collection.Query(ctx, query, 1, nil, nil)
	if err != nil {
		return "", false, fmt.Errorf("chromem cache: query: %w", err)
	}
	if len(results) == 0 || float64(results[0].Similarity) < c.threshold {
		return "", false, nil
	}

	return results[0].Metadata["answer"], true, nil
}

// Put stores an answer under the query. Storing the same query again
// overwrites the previous answer.
func (c *Cache) Put(ctx context.Context, query, answer string) error {
	hash := sha256.Sum256([]byte(query))
	err := c.collection.AddDocument(ctx, chromemgo.Document{
		ID:      hex.EncodeToString(hash[:])[:16],
		Content: query,
		Metadata: map[string]string{
			"answer": answer,
		},
	})
	if err != nil {
		return fmt.Errorf("chromem cache: store answer: %w", err)
	}
	return nil
}

// Close releases resources. chromem persists on every change.
func (c *Cache) Close() error {
	return nil
}
