package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfdex/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pdfdex/internal/core/domain"
	"github.com/custodia-labs/pdfdex/internal/core/services"
)

// setupTestServices wires the commands to an in-memory store seeded
// with a few documents. The returned cleanup restores the previous
// wiring.
func setupTestServices(t *testing.T) func() {
	t.Helper()

	store := memory.NewDocumentStore()
	now := time.Now().UTC()
	docs := []*domain.Document{
		{
			ID:          "doc-1",
			Title:       "invoice",
			Content:     "invoice total due march",
			Fingerprint: "aaa",
			Path:        "docs/invoice.pdf",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          "doc-2",
			Title:       "warranty",
			Content:     "warranty certificate dishwasher",
			Fingerprint: "bbb",
			Path:        "docs/warranty.pdf",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
	require.NoError(t, store.SaveDocuments(context.Background(), docs))

	oldIndexer := indexerService
	oldSearch := searchService
	oldDocument := documentService

	indexerService = services.NewIndexerService(store, nil, nil, t.TempDir(), 0)
	searchService = services.NewSearchQueryService(store)
	documentService = services.NewDocumentService(store)

	return func() {
		indexerService = oldIndexer
		searchService = oldSearch
		documentService = oldDocument
	}
}

// execute runs the root command with args and captures its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	_, err := execute(t, "search")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_HasLimitFlag(t *testing.T) {
	flag := searchCmd.Flags().Lookup("limit")
	require.NotNil(t, flag, "limit flag should exist")
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "10", flag.DefValue)
}

func TestSearchCmd_ExecutesWithQuery(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "search", "invoice")

	assert.NoError(t, err)
	assert.Contains(t, out, "Results:")
	assert.Contains(t, out, "invoice")
}

func TestSearchCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices(t)
	defer func() {
		cleanup()
		searchJSON = false
	}()

	out, err := execute(t, "search", "--json", "invoice")

	assert.NoError(t, err)
	assert.Contains(t, out, "\"ID\"")
	assert.Contains(t, out, "\"Score\"")
}

func TestSearchCmd_NoResults(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "search", "zzznothing")

	assert.NoError(t, err)
	assert.Contains(t, out, "No results found")
}

func TestDocumentListCmd(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "document", "list")

	assert.NoError(t, err)
	assert.Contains(t, out, "docs/invoice.pdf")
	assert.Contains(t, out, "docs/warranty.pdf")
	assert.Contains(t, out, "Total: 2 documents")
}

func TestDocumentShowCmd(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "document", "show", "doc-1")

	assert.NoError(t, err)
	assert.Contains(t, out, "docs/invoice.pdf")
	assert.Contains(t, out, "aaa")
}

func TestDocumentShowCmd_UnknownID(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	_, err := execute(t, "document", "show", "no-such-doc")

	assert.Error(t, err)
}

func TestDocumentDescribeCmd(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	_, err := execute(t, "document", "describe", "doc-1", "tax papers 2026")
	require.NoError(t, err)

	out, err := execute(t, "document", "show", "doc-1")
	assert.NoError(t, err)
	assert.Contains(t, out, "tax papers 2026")
}

func TestDocumentTagCmd(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	_, err := execute(t, "document", "tag", "doc-2", "blue folder, shelf 3")
	require.NoError(t, err)

	out, err := execute(t, "document", "show", "doc-2")
	assert.NoError(t, err)
	assert.Contains(t, out, "blue folder, shelf 3")
}

func TestDocumentDescribeCmd_RequiresTwoArgs(t *testing.T) {
	_, err := execute(t, "document", "describe", "doc-1")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s)")
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")

	assert.NoError(t, err)
	assert.Contains(t, out, "pdfdex version")
}

func TestSnippetTruncates(t *testing.T) {
	assert.Equal(t, "short", snippet("short", 10))
	assert.Equal(t, "abcde...", snippet("abcdefghij", 5))
}
