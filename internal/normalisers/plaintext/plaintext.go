// Package plaintext normalises text-based uploads (plain text, markdown,
// CSV) into corpus documents.
package plaintext

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/finquery/internal/core/domain"
	"github.com/custodia-labs/finquery/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser converts text uploads verbatim, trimming only trailing
// whitespace. It refuses content that is not valid UTF-8; the fallback
// normaliser handles those with a placeholder instead.
type Normaliser struct{}

// New creates a plain-text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes lists the text formats this normaliser accepts.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/markdown",
		"text/csv",
		"application/json",
	}
}

// Priority ranks this normaliser above the fallback.
func (n *Normaliser) Priority() int { return 10 }

// Normalise converts the upload into a document. The document ID is left
// empty; the ingestion layer assigns content-hash IDs.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawUpload) (*domain.Document, error) {
	if !utf8.Valid(raw.Content) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", domain.ErrInvalidInput, raw.FileName)
	}

	now := time.Now()
	return &domain.Document{
		Title:     raw.FileName,
		Content:   strings.TrimRight(string(raw.Content), " \t\r\n"),
		Metadata:  raw.Metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
