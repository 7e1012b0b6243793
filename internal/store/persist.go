package store

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mike-a-ellis/persona-chat/internal/conversation"
)

const (
	// IndexArtifact is the binary search-structure blob.
	IndexArtifact = "index.bin"
	// ChunksArtifact is the serialized chunk metadata blob.
	ChunksArtifact = "chunks.json"
)

// indexBlob is the gob payload of the search-structure artifact. Vectors
// live only here; the JSON artifact holds chunk metadata without
// embeddings since the pair is always read together.
type indexBlob struct {
	Dim     int
	Vectors [][]float32
}

type chunkManifest struct {
	Chunks []conversation.Chunk `json:"chunks"`
}

// Save writes the two index artifacts into dir, creating it if needed.
// The artifacts must always be written and read as a pair; a partial
// write is treated as "store does not exist" on the next load.
func (x *FlatIndex) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	indexFile, err := os.Create(filepath.Join(dir, IndexArtifact))
	if err != nil {
		return fmt.Errorf("create index artifact: %w", err)
	}
	defer indexFile.Close()

	if err := gob.NewEncoder(indexFile).Encode(indexBlob{Dim: x.dim, Vectors: x.vectors}); err != nil {
		return fmt.Errorf("encode index artifact: %w", err)
	}

	// Strip embeddings from the metadata blob; the vectors are
	// authoritative in the binary artifact.
	stripped := make([]conversation.Chunk, len(x.chunks))
	for i, chunk := range x.chunks {
		stripped[i] = chunk
		stripped[i].Embedding = nil
	}

	data, err := json.MarshalIndent(chunkManifest{Chunks: stripped}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode chunk manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ChunksArtifact), data, 0o644); err != nil {
		return fmt.Errorf("write chunk manifest: %w", err)
	}

	return nil
}

// Exists reports whether a complete store is present in dir: true only
// when both artifacts exist.
func Exists(dir string) bool {
	for _, name := range []string{IndexArtifact, ChunksArtifact} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return false
		}
	}
	return true
}

// Load restores an index from dir. A missing or partially-present store
// fails with ErrStoreNotFound; artifacts that exist but cannot be decoded
// into a consistent index fail with ErrStoreCorrupt. Both are expected to
// trigger a full rebuild by the caller.
func Load(dir string) (*FlatIndex, error) {
	if !Exists(dir) {
		return nil, fmt.Errorf("%w: %s", ErrStoreNotFound, dir)
	}

	indexFile, err := os.Open(filepath.Join(dir, IndexArtifact))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStoreNotFound, dir)
	}
	defer indexFile.Close()

	var blob indexBlob
	if err := gob.NewDecoder(indexFile).Decode(&blob); err != nil {
		return nil, fmt.Errorf("%w: decode index artifact: %v", ErrStoreCorrupt, err)
	}

	data, err := os.ReadFile(filepath.Join(dir, ChunksArtifact))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStoreNotFound, dir)
	}

	var manifest chunkManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("%w: decode chunk manifest: %v", ErrStoreCorrupt, err)
	}

	if len(blob.Vectors) != len(manifest.Chunks) {
		return nil, fmt.Errorf("%w: %d vectors but %d chunks",
			ErrStoreCorrupt, len(blob.Vectors), len(manifest.Chunks))
	}
	for i, vec := range blob.Vectors {
		if len(vec) != blob.Dim {
			return nil, fmt.Errorf("%w: vector %d has %d dimensions, expected %d",
				ErrStoreCorrupt, i, len(vec), blob.Dim)
		}
	}

	return &FlatIndex{
		dim:     blob.Dim,
		vectors: blob.Vectors,
		chunks:  manifest.Chunks,
	}, nil
}
