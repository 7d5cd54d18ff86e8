// Package fallback is the catch-all normaliser for uploads no dedicated
// normaliser supports. Unreadable content becomes a placeholder document
// rather than a failed upload, so the file still shows up in listings and
// can be deleted or re-uploaded later.
package fallback

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/finquery/internal/core/domain"
	"github.com/custodia-labs/finquery/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser accepts any MIME type at the lowest priority.
type Normaliser struct{}

// New creates a fallback normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns nil: the fallback accepts everything.
func (n *Normaliser) SupportedMIMETypes() []string { return nil }

// Priority ranks this normaliser below every dedicated one.
func (n *Normaliser) Priority() int { return 0 }

// Normalise extracts text when the content is readable and substitutes a
// placeholder body when it is not. It never returns an error for bad
// content.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawUpload) (*domain.Document, error) {
	content := extractText(raw.Content)
	if content == "" {
		content = fmt.Sprintf(
			"Could not extract text from %s. The file may be in a binary or unsupported format.",
			raw.FileName)
	}

	now := time.Now()
	return &domain.Document{
		Title:     raw.FileName,
		Content:   content,
		Metadata:  raw.Metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// extractText returns the content as a string when it is valid UTF-8 and
// mostly printable, and "" otherwise.
func extractText(b []byte) string {
	if len(b) == 0 || !utf8.Valid(b) {
		return ""
	}
	s := string(b)
	printable := 0
	total := 0
	for _, r := range s {
		total++
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			printable++
		}
	}
	if total == 0 || printable*10 < total*9 {
		return ""
	}
	return strings.TrimSpace(s)
}
