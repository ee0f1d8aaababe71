package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	// The text extractor also returns it when the source file vanished
	// between discovery and processing.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrIndexInProgress indicates a batch index is already running.
	ErrIndexInProgress = errors.New("index in progress")

	// ErrWatcherClosed indicates the filesystem watcher has been stopped.
	ErrWatcherClosed = errors.New("watcher closed")

	// ErrExtractionUnavailable indicates no text extractor is configured.
	ErrExtractionUnavailable = errors.New("text extraction unavailable")
)
