// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentStore: Document persistence with synchronised full-text index
//   - TextExtractor: Extracts text from a PDF file
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Recognizer: OCR for scanned pages. Without it, image-only pages
//     contribute no text.
//   - PageRenderer: Renders a PDF's first page to an image. Without it,
//     thumbnails are skipped.
//   - ThumbnailStore: Thumbnail cache. Absence of a thumbnail is a valid
//     state everywhere.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
