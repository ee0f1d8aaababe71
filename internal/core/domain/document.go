package domain

import (
	"path"
	"strings"
	"time"
)

// Document represents an indexed PDF document.
// Identity follows content: the fingerprint, not the path, decides
// whether two files are the same document.
type Document struct {
	// ID is the unique identifier, assigned on first creation and
	// immutable thereafter.
	ID string

	// Title is the display name, derived from the file name at
	// creation or move time.
	Title string

	// Content is the full extracted text. It is rewritten whenever the
	// source bytes change, together with Fingerprint.
	Content string

	// Description is a free-text user annotation, independent of Content.
	Description string

	// Fingerprint is the hex sha256 of the file's bytes at the last
	// successful extraction. It keys deduplication, move detection and
	// the thumbnail cache.
	Fingerprint string

	// Path is the current filesystem location, normalised to
	// forward-slash form.
	Path string

	// LocationTag is an optional user-assigned physical or
	// organisational tag.
	LocationTag string

	// IndexedAt is the generation stamp (UnixNano) of the batch run or
	// watcher event that last confirmed this row present. Only batch
	// generations participate in the sweep.
	IndexedAt int64

	// CreatedAt is when the document was first indexed.
	CreatedAt time.Time

	// UpdatedAt is when the document was last updated.
	UpdatedAt time.Time
}

// Action classifies a candidate file against prior indexing state.
type Action string

const (
	// ActionSame means the file is already indexed at this path with
	// this content.
	ActionSame Action = "same"

	// ActionMoved means the content is indexed but the file now lives
	// at a new path and the old path is gone.
	ActionMoved Action = "moved"

	// ActionDuplicated means the content is indexed elsewhere and the
	// original still exists; the candidate is a new logical document.
	ActionDuplicated Action = "duplicated"

	// ActionNew means neither content nor path is known to the store.
	ActionNew Action = "new"

	// ActionModified means the path is known but the bytes changed.
	ActionModified Action = "modified"
)

// Resolution is the outcome of classifying a candidate file.
type Resolution struct {
	// Document is the existing row to mutate, nil for new and
	// duplicated (both get a fresh identity).
	Document *Document

	// Action is the classification.
	Action Action

	// Fingerprint is the candidate's content digest, computed once
	// during resolution and reused by the pipeline.
	Fingerprint string
}

// NormalizePath converts a filesystem path to the canonical
// forward-slash form stored on Document.Path.
func NormalizePath(p string) string {
	return path.Clean(strings.ReplaceAll(p, "\\", "/"))
}

// TitleFromPath derives a document title from a file path.
func TitleFromPath(p string) string {
	return path.Base(NormalizePath(p))
}

// IsPDFPath reports whether p carries the .pdf extension, case
// insensitively.
func IsPDFPath(p string) bool {
	return strings.EqualFold(path.Ext(NormalizePath(p)), ".pdf")
}
