package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/finquery/internal/core/domain"
	"github.com/custodia-labs/finquery/internal/core/ports/driven"
	"github.com/custodia-labs/finquery/internal/core/ports/driving"
	"github.com/custodia-labs/finquery/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DefaultSplitThreshold is the content length in characters above which an
// uploaded file is split into per-part documents.
const DefaultSplitThreshold = 4000

// previewLen caps listing previews.
const previewLen = 200

// DocumentService manages corpus documents: uploads, listing, deletion, and
// the sample-data seed. Unlike the query path, ingestion errors are always
// propagated - silently losing an intentionally uploaded document is
// unacceptable.
type DocumentService struct {
	docStore       driven.DocumentStore
	retriever      driven.Retriever
	normalisers    []driven.Normaliser
	splitThreshold int
}

// NewDocumentService creates a document service. The normalisers convert
// uploaded files by MIME type; the highest-priority supporting normaliser
// wins.
func NewDocumentService(
	docStore driven.DocumentStore,
	retriever driven.Retriever,
	normalisers []driven.Normaliser,
) *DocumentService {
	return &DocumentService{
		docStore:       docStore,
		retriever:      retriever,
		normalisers:    normalisers,
		splitThreshold: DefaultSplitThreshold,
	}
}

// SetSplitThreshold overrides the file-split threshold.
func (s *DocumentService) SetSplitThreshold(n int) {
	if n > 0 {
		s.splitThreshold = n
	}
}

// UploadText stores a text document and indexes it for retrieval.
func (s *DocumentService) UploadText(ctx context.Context, content string, metadata map[string]any) (string, error) {
	if content == "" {
		return "", domain.ErrInvalidInput
	}
	if metadata == nil {
		metadata = map[string]any{}
	}

	id := "doc_" + uuid.NewString()[:10]
	now := time.Now()
	doc := domain.Document{
		ID:        id,
		Content:   content,
		Metadata:  metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.persist(ctx, doc); err != nil {
		return "", err
	}

	logger.Info("Document uploaded with ID: %s", id)
	return id, nil
}

// UploadFile normalises and stores a file. Content longer than the split
// threshold is divided into per-part documents so retrieval stays granular,
// mirroring per-page handling of large filings.
func (s *DocumentService) UploadFile(
	ctx context.Context,
	r io.Reader,
	fileName, mimeType string,
	metadata map[string]any,
) ([]string, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadata["file_name"] = fileName
	if mimeType != "" {
		metadata["file_type"] = mimeType
	}

	raw := &domain.RawUpload{
		FileName: fileName,
		MIMEType: mimeType,
		Content:  content,
		Metadata: metadata,
	}

	normaliser := s.pickNormaliser(mimeType)
	if normaliser == nil {
		return nil, fmt.Errorf("%w: no normaliser for %q", domain.ErrInvalidInput, mimeType)
	}

	doc, err := normaliser.Normalise(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("normalise %s: %w", fileName, err)
	}

	hash := sha256.Sum256(content)
	baseID := "file_" + hex.EncodeToString(hash[:])[:10]

	parts := s.splitContent(doc.Content)
	now := time.Now()
	ids := make([]string, 0, len(parts))

	for i, part := range parts {
		partDoc := domain.Document{
			ID:        baseID,
			Title:     doc.Title,
			Content:   part,
			Metadata:  metadata,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if len(parts) > 1 {
			partDoc.ID = fmt.Sprintf("%s_p%d", baseID, i+1)
			partMeta := make(map[string]any, len(metadata)+2)
			for k, v := range metadata {
				partMeta[k] = v
			}
			partMeta["part"] = i + 1
			partMeta["total_parts"] = len(parts)
			partDoc.Metadata = partMeta
			partDoc.Content = fmt.Sprintf("[Part %d of %d] %s", i+1, len(parts), part)
		}

		if err := s.persist(ctx, partDoc); err != nil {
			return ids, err
		}
		ids = append(ids, partDoc.ID)
	}

	logger.Info("File %q uploaded as %d document(s)", fileName, len(ids))
	return ids, nil
}

// List returns up to limit documents with truncated content previews.
func (s *DocumentService) List(ctx context.Context, limit int) ([]driving.DocumentPreview, error) {
	if limit <= 0 {
		limit = 100
	}
	docs, err := s.docStore.ListDocuments(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	previews := make([]driving.DocumentPreview, 0, len(docs))
	for _, doc := range docs {
		content := doc.Content
		if len(content) > previewLen {
			content = content[:previewLen] + "..."
		}
		previews = append(previews, driving.DocumentPreview{
			ID:       doc.ID,
			Content:  content,
			Metadata: doc.Metadata,
		})
	}
	return previews, nil
}

// Delete removes a document from the store and the retrieval index.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	if err := s.docStore.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	if s.retriever != nil {
		if err := s.retriever.Delete(ctx, id); err != nil {
			return fmt.Errorf("deindex document %s: %w", id, err)
		}
	}
	return nil
}

// Seed loads the sample 10-K corpus when the store is empty. A non-empty
// store is left untouched.
func (s *DocumentService) Seed(ctx context.Context) error {
	count, err := s.docStore.CountDocuments(ctx)
	if err != nil {
		return fmt.Errorf("count documents: %w", err)
	}
	if count > 0 {
		logger.Debug("Seed skipped: store already has %d documents", count)
		return nil
	}

	for _, doc := range sampleFilings() {
		if err := s.persist(ctx, doc); err != nil {
			return fmt.Errorf("seed %s: %w", doc.ID, err)
		}
	}
	logger.Info("Sample 10-K corpus loaded")
	return nil
}

// persist saves a document and indexes it. Both steps must succeed.
func (s *DocumentService) persist(ctx context.Context, doc domain.Document) error {
	if err := s.docStore.SaveDocument(ctx, &doc); err != nil {
		return fmt.Errorf("save document %s: %w", doc.ID, err)
	}
	if s.retriever != nil {
		if err := s.retriever.Index(ctx, []domain.Document{doc}); err != nil {
			return fmt.Errorf("index document %s: %w", doc.ID, err)
		}
	}
	return nil
}

// pickNormaliser selects the highest-priority normaliser supporting the
// MIME type. An empty SupportedMIMETypes list means the normaliser accepts
// anything (fallback).
func (s *DocumentService) pickNormaliser(mimeType string) driven.Normaliser {
	var best driven.Normaliser
	for _, n := range s.normalisers {
		if !supportsMIME(n, mimeType) {
			continue
		}
		if best == nil || n.Priority() > best.Priority() {
			best = n
		}
	}
	return best
}

func supportsMIME(n driven.Normaliser, mimeType string) bool {
	types := n.SupportedMIMETypes()
	if len(types) == 0 {
		return true
	}
	for _, t := range types {
		if t == mimeType {
			return true
		}
	}
	return false
}

// splitContent divides content into splitThreshold-sized parts on rune
// boundaries. Short content comes back as a single part.
func (s *DocumentService) splitContent(content string) []string {
	runes := []rune(content)
	if len(runes) <= s.splitThreshold {
		return []string{content}
	}
	var parts []string
	for start := 0; start < len(runes); start += s.splitThreshold {
		end := start + s.splitThreshold
		if end > len(runes) {
			end = len(runes)
		}
		parts = append(parts, string(runes[start:end]))
	}
	return parts
}
