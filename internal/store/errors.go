package store

import "errors"

var (
	// ErrStoreNotFound indicates one or both persisted artifacts are
	// missing. Callers recover by rebuilding the index from the corpus.
	ErrStoreNotFound = errors.New("vector store not found")

	// ErrStoreCorrupt indicates the persisted artifacts exist but could
	// not be decoded into a consistent index.
	ErrStoreCorrupt = errors.New("vector store corrupt")

	// ErrDimensionMismatch indicates an embedding whose dimensionality
	// differs from the rest of the index.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmptyIndex indicates a build attempt with no embedded chunks.
	ErrEmptyIndex = errors.New("no embedded chunks to index")
)
