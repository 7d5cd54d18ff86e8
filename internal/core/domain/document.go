package domain

import "time"

// Document represents a stored corpus document (a 10-K excerpt, an uploaded
// filing, or a file picked up by the watch command). It is immutable after
// creation: ingestion assigns the ID and content, and nothing mutates a
// document afterwards.
type Document struct {
	// ID is the unique identifier, assigned at ingestion.
	// Content-derived IDs use the form "file_<hash>", generated IDs "doc_<uuid>".
	ID string

	// Title is the human-readable title, if known.
	Title string

	// Content is the full text content.
	Content string

	// Metadata contains arbitrary key-value pairs (company, filing_type, year, ...).
	Metadata map[string]any

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document was last updated.
	UpdatedAt time.Time
}

// DisplayTitle returns the best available title for prompt context:
// the Title field, then the "title" or "company" metadata keys, then "Unknown".
func (d Document) DisplayTitle() string {
	if d.Title != "" {
		return d.Title
	}
	if t, ok := d.Metadata["title"].(string); ok && t != "" {
		return t
	}
	if c, ok := d.Metadata["company"].(string); ok && c != "" {
		return c
	}
	return "Unknown"
}

// ScoredDocument pairs a document with its retrieval similarity score.
// Scores are in [0, 1]. Produced transiently per query; never persisted.
type ScoredDocument struct {
	Document Document

	// Score is the cosine similarity of the document to the query.
	Score float64
}
