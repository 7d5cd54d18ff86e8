package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/finquery/internal/core/domain"
)

func TestNormalise(t *testing.T) {
	n := New()

	doc, err := n.Normalise(context.Background(), &domain.RawUpload{
		FileName: "filing.txt",
		MIMEType: "text/plain",
		Content:  []byte("Revenue was $394.3 billion.\n\n"),
		Metadata: map[string]any{"company": "Apple Inc."},
	})
	require.NoError(t, err)
	assert.Equal(t, "Revenue was $394.3 billion.", doc.Content)
	assert.Equal(t, "filing.txt", doc.Title)
	assert.Equal(t, "Apple Inc.", doc.Metadata["company"])
}

func TestNormalise_RejectsInvalidUTF8(t *testing.T) {
	n := New()

	_, err := n.Normalise(context.Background(), &domain.RawUpload{
		FileName: "garbage.txt",
		Content:  []byte{0xff, 0xfe, 0x41},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSupportedMIMETypes(t *testing.T) {
	assert.Contains(t, New().SupportedMIMETypes(), "text/plain")
	assert.Contains(t, New().SupportedMIMETypes(), "text/markdown")
}
