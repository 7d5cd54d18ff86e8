package domain

// RawUpload represents opaque bytes handed to the ingestion path before
// normalisation.
type RawUpload struct {
	// FileName is the original file name, if any.
	FileName string

	// MIMEType is the content type (e.g., "text/plain").
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// Metadata contains caller-supplied key-value pairs.
	Metadata map[string]any
}
