// Package pdf extracts text from PDF files, with an optional OCR
// fallback for pages that carry no selectable text.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/pdfdex/internal/core/domain"
	"github.com/custodia-labs/pdfdex/internal/core/ports/driven"
	"github.com/custodia-labs/pdfdex/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor reads the selectable text of each page and, when a page is
// blank and a recognizer is configured, falls back to OCR for that page.
type Extractor struct {
	recognizer driven.Recognizer
}

// NewExtractor creates a text extractor. recognizer may be nil, in
// which case blank pages contribute no text.
func NewExtractor(recognizer driven.Recognizer) *Extractor {
	return &Extractor{recognizer: recognizer}
}

// Extract returns the concatenated text of all pages of the PDF at
// path. A missing file fails with domain.ErrNotFound.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("opening %s: %w", path, domain.ErrNotFound)
		}
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	reader, err := pdf.NewReader(file, info.Size())
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", path, err)
	}

	var parts []string
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		text := e.pageText(reader, pageNum)
		if strings.TrimSpace(text) == "" && e.recognizer != nil {
			text, err = e.recognizer.Recognize(ctx, path, pageNum)
			if err != nil {
				logger.Warn("OCR failed for %s page %d: %v", path, pageNum, err)
				continue
			}
		}
		if strings.TrimSpace(text) != "" {
			parts = append(parts, strings.TrimSpace(text))
		}
	}

	return strings.Join(parts, "\n\n"), nil
}

// pageText returns the selectable text of one page, or "" when the
// page is empty or malformed.
func (e *Extractor) pageText(reader *pdf.Reader, pageNum int) string {
	page := reader.Page(pageNum)
	if page.V.IsNull() {
		return ""
	}

	text, err := page.GetPlainText(nil)
	if err != nil {
		logger.Debug("text extraction failed on page %d: %v", pageNum, err)
		return ""
	}
	return text
}
