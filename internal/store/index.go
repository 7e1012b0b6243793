// Package store implements a flat inner-product vector index over
// conversation chunks, persisted as a pair of co-located artifacts.
package store

import (
	"fmt"
	"math"
	"sort"

	"github.com/mike-a-ellis/persona-chat/internal/conversation"
)

// ScoredChunk pairs a chunk with its cosine similarity to a query.
type ScoredChunk struct {
	Chunk conversation.Chunk
	Score float64
}

// FlatIndex is an exhaustive-search vector index. Embeddings are
// unit-normalized at build time so inner-product search is cosine
// similarity. The index owns its chunk collection: chunks are never
// mutated after insertion and never individually removed; the only way
// to change the contents is a full rebuild.
type FlatIndex struct {
	dim     int
	vectors [][]float32
	chunks  []conversation.Chunk
}

// Build constructs an index from embedded chunks. Every chunk must carry
// an embedding of the same dimensionality; a mismatch fails the whole
// build rather than silently truncating or padding. Insertion order
// becomes lookup order (0, 1, 2, ...).
func Build(chunks []conversation.Chunk) (*FlatIndex, error) {
	if len(chunks) == 0 {
		return nil, ErrEmptyIndex
	}

	dim := len(chunks[0].Embedding)
	if dim == 0 {
		return nil, fmt.Errorf("%w: chunk 0 has no embedding", ErrDimensionMismatch)
	}

	vectors := make([][]float32, len(chunks))
	for i, chunk := range chunks {
		if len(chunk.Embedding) != dim {
			return nil, fmt.Errorf("%w: chunk %d has %d dimensions, expected %d",
				ErrDimensionMismatch, i, len(chunk.Embedding), dim)
		}
		vectors[i] = normalize(chunk.Embedding)
	}

	stored := make([]conversation.Chunk, len(chunks))
	copy(stored, chunks)

	return &FlatIndex{
		dim:     dim,
		vectors: vectors,
		chunks:  stored,
	}, nil
}

// Search returns at most min(k, Size()) chunks ordered by descending
// similarity. Ties are broken by insertion order: the earlier-inserted
// chunk wins.
func (x *FlatIndex) Search(query []float32, k int) ([]ScoredChunk, error) {
	if len(query) != x.dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, expected %d",
			ErrDimensionMismatch, len(query), x.dim)
	}
	if k <= 0 {
		return nil, nil
	}

	q := normalize(query)

	results := make([]ScoredChunk, len(x.vectors))
	for i, vec := range x.vectors {
		results[i] = ScoredChunk{Chunk: x.chunks[i], Score: dot(q, vec)}
	}

	// Stable sort keeps insertion order for equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// Size returns the number of indexed chunks.
func (x *FlatIndex) Size() int {
	return len(x.chunks)
}

// Dimension returns the embedding dimensionality shared by all indexed
// chunks.
func (x *FlatIndex) Dimension() int {
	return x.dim
}

// normalize returns a unit-length copy of v. The zero vector is returned
// as-is; it scores zero against everything.
func normalize(v []float32) []float32 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	norm := math.Sqrt(sum)

	out := make([]float32, len(v))
	if norm == 0 {
		copy(out, v)
		return out
	}
	for i, f := range v {
		out[i] = float32(float64(f) / norm)
	}
	return out
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
