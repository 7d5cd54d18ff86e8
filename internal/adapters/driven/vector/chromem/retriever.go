// Package chromem provides a vector retriever backed by chromem-go, an
// embedded vector store. With a persist path the index survives restarts;
// without one it lives in memory.
package chromem

import (
	"context"
	"fmt"
	"path/filepath"

	chromemgo "github.com/philippgille/chromem-go"

	"github.com/custodia-labs/finquery/internal/core/domain"
	"github.com/custodia-labs/finquery/internal/core/ports/driven"
)

// Ensure Retriever implements the interface.
var _ driven.Retriever = (*Retriever)(nil)

// DefaultCollection is the corpus collection name.
const DefaultCollection = "documents"

// Config holds retriever configuration.
type Config struct {
	// PersistPath is the directory for the on-disk index. Empty means
	// in-memory only.
	PersistPath string

	// Collection is the collection name (default: documents).
	Collection string
}

// Retriever indexes documents and searches them by embedding similarity.
type Retriever struct {
	db         *chromemgo.DB
	collection *chromemgo.Collection
}

// NewRetriever creates a retriever using the given embedding service for
// both indexing and querying.
func NewRetriever(cfg Config, embedder driven.EmbeddingService) (*Retriever, error) {
	if embedder == nil {
		return nil, fmt.Errorf("chromem: embedding service is required")
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}

	var db *chromemgo.DB
	var err error
	if cfg.PersistPath != "" {
		db, err = chromemgo.NewPersistentDB(filepath.Join(cfg.PersistPath, "index.gob"), false)
		if err != nil {
			return nil, fmt.Errorf("chromem: create persistent DB: %w", err)
		}
	} else {
		db = chromemgo.NewDB()
	}

	embeddingFunc := func(ctx context.Context, text string) ([]float32, error) {
		return embedder.Embed(ctx, text)
	}

	collection, err := db.GetOrCreateCollection(cfg.Collection, nil, embeddingFunc)
	if err != nil {
		return nil, fmt.Errorf("chromem: create collection: %w", err)
	}

	return &Retriever{db: db, collection: collection}, nil
}

// Search returns up to topK documents ranked by similarity to the query.
// Scores are cosine similarities in [0, 1].
func (r *Retriever) Search(ctx context.Context, query string, topK int) ([]domain.ScoredDocument, error) {
	if topK <= 0 {
		topK = 5
	}
	// chromem rejects nResults greater than the collection size.
	if count := r.collection.Count(); count < topK {
		if count == 0 {
			return []domain.ScoredDocument{}, nil
		}
		topK = count
	}

	results, err := r.collection.Query(ctx, query, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem: query: %w", err)
	}

	scored := make([]domain.ScoredDocument, 0, len(results))
	for _, res := range results {
		scored = append(scored, domain.ScoredDocument{
			Document: domain.Document{
				ID:       res.ID,
				Title:    res.Metadata["title"],
				Content:  res.Content,
				Metadata: fromChromemMetadata(res.Metadata),
			},
			Score: float64(res.Similarity),
		})
	}
	return scored, nil
}

// Index adds documents to the collection, replacing any with the same ID.
func (r *Retriever) Index(ctx context.Context, docs []domain.Document) error {
	for _, doc := range docs {
		err := r.collection.AddDocument(ctx, chromemgo.Document{
			ID:       doc.ID,
			Content:  doc.Content,
			Metadata: toChromemMetadata(doc),
		})
		if err != nil {
			return fmt.Errorf("chromem: index document %s: %w", doc.ID, err)
		}
	}
	return nil
}

// Delete removes a document from the collection.
func (r *Retriever) Delete(ctx context.Context, id string) error {
	if err := r.collection.Delete(ctx, nil, nil, id); err != nil {
		return fmt.Errorf("chromem: delete document %s: %w", id, err)
	}
	return nil
}

// Count returns the number of indexed documents.
func (r *Retriever) Count() int {
	return r.collection.Count()
}

// Close releases resources. chromem persists on every change, so there is
// nothing to flush.
func (r *Retriever) Close() error {
	return nil
}

// toChromemMetadata flattens document metadata to the string map chromem
// stores. The title rides along under its own key.
func toChromemMetadata(doc domain.Document) map[string]string {
	md := make(map[string]string, len(doc.Metadata)+1)
	for k, v := range doc.Metadata {
		md[k] = fmt.Sprint(v)
	}
	if doc.Title != "" {
		md["title"] = doc.Title
	}
	return md
}

func fromChromemMetadata(md map[string]string) map[string]any {
	out := make(map[string]any, len(md))
	for k, v := range md {
		out[k] = v
	}
	return out
}
