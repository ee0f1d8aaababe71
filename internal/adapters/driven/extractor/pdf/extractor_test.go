package pdf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfdex/internal/core/domain"
)

func TestExtractMissingFile(t *testing.T) {
	extractor := NewExtractor(nil)

	_, err := extractor.Extract(context.Background(), filepath.Join(t.TempDir(), "gone.pdf"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExtractMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is not a pdf"), 0600))

	extractor := NewExtractor(nil)

	_, err := extractor.Extract(context.Background(), path)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound, "a corrupt file is not a missing file")
}
