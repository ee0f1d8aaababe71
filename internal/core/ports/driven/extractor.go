package driven

import "context"

// TextExtractor extracts the full text of a PDF file.
// Implementations use per-page selectable text when present and fall
// back to OCR per page otherwise. A missing file fails with
// domain.ErrNotFound so callers can distinguish a vanished source from
// a backend error.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Recognizer performs OCR on a single page of a PDF file.
// It is an external capability; internals are opaque to the core.
type Recognizer interface {
	// Recognize returns the recognised text of the given 1-based page.
	Recognize(ctx context.Context, path string, page int) (string, error)
}
