// Package state owns the persisted state document: one JSON file
// recording, for every unit the lifecycle controller has operated on, its
// last operation, status, configuration source, and runtime identifier,
// plus a bounded most-recent-first history and last-used pointers.
//
// The store is the document's only writer. Every mutation reads the whole
// document, applies the change, writes a sibling temp file, and renames it
// over the original, so no reader ever observes a partial write. The
// rename is the sole concurrency control: concurrent processes race with
// last-writer-wins semantics, a deliberate preserved limitation.
package state
