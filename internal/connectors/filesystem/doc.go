// Package filesystem connects the index to a live directory tree.
// It translates fsnotify events into indexer operations: creates and
// writes index the file, removes delete the row, and renames defer
// the delete long enough for an in-tree move to be recognised as one.
package filesystem
