// Package indexer orchestrates the corpus build: load transcript files,
// parse them into speaker turns, split oversized turns, embed every
// piece, and assemble the in-memory vector index.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mike-a-ellis/persona-chat/internal/conversation"
	"github.com/mike-a-ellis/persona-chat/internal/embedding"
	"github.com/mike-a-ellis/persona-chat/internal/store"
	"github.com/mike-a-ellis/persona-chat/internal/transcript"
)

// BuildResult contains statistics about an index build.
type BuildResult struct {
	Files         int
	ParsedChunks  int
	IndexedChunks int
	SkippedChunks int
	Duration      time.Duration
}

// Pipeline orchestrates the full index build from transcript files to a
// searchable index.
type Pipeline struct {
	provider     embedding.Provider
	parser       *transcript.Parser
	corpusDir    string
	chunkSize    int
	chunkOverlap int
	delay        time.Duration
	logger       *slog.Logger
}

// NewPipeline creates an indexing pipeline over the given corpus
// directory. The delay is inserted between embedding calls to stay
// under provider rate limits.
func NewPipeline(provider embedding.Provider, corpusDir string, chunkSize, chunkOverlap int, delay time.Duration, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		provider:     provider,
		parser:       transcript.NewParser(),
		corpusDir:    corpusDir,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		delay:        delay,
		logger:       logger,
	}
}

// Build parses every transcript in the corpus directory, embeds the
// resulting chunks, and returns a searchable index. Chunks whose
// embedding fails are skipped with a warning; a corpus that yields zero
// embedded chunks is an error.
func (p *Pipeline) Build(ctx context.Context) (*store.FlatIndex, *BuildResult, error) {
	start := time.Now()
	result := &BuildResult{}

	paths := transcript.LoadConversationFiles(p.corpusDir)
	result.Files = len(paths)
	p.logger.Info("Starting index build", "dir", p.corpusDir, "files", len(paths))

	var chunks []conversation.Chunk
	for _, path := range paths {
		parsed, err := p.parseFile(path)
		if err != nil {
			p.logger.Warn("Failed to parse transcript", "path", path, "error", err)
			continue
		}
		chunks = append(chunks, parsed...)
	}
	result.ParsedChunks = len(chunks)

	embedded, err := p.embedChunks(ctx, chunks, result)
	if err != nil {
		return nil, nil, err
	}
	if len(embedded) == 0 {
		return nil, nil, fmt.Errorf("no chunks could be embedded from %s: %w", p.corpusDir, store.ErrEmptyIndex)
	}

	index, err := store.Build(embedded)
	if err != nil {
		return nil, nil, fmt.Errorf("build index: %w", err)
	}
	result.IndexedChunks = index.Size()
	result.Duration = time.Since(start)

	p.logger.Info("Index build complete",
		"files", result.Files,
		"parsed", result.ParsedChunks,
		"indexed", result.IndexedChunks,
		"skipped", result.SkippedChunks,
		"duration", result.Duration,
	)
	return index, result, nil
}

// parseFile reads a transcript and splits oversized turns into
// overlapping word windows, so each indexed piece fits the embedding
// model comfortably.
func (p *Pipeline) parseFile(path string) ([]conversation.Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	source := filepath.Base(path)
	turns := p.parser.Parse(string(data), source)
	p.logger.Debug("Parsed transcript", "path", path, "turns", len(turns))

	var chunks []conversation.Chunk
	for _, turn := range turns {
		pieces, err := transcript.SplitWords(turn.Content, p.chunkSize, p.chunkOverlap)
		if err != nil {
			return nil, fmt.Errorf("split %s: %w", turn.ID, err)
		}
		if len(pieces) == 1 {
			chunks = append(chunks, turn)
			continue
		}
		for i, piece := range pieces {
			sub := turn
			sub.ID = fmt.Sprintf("%s_%d", turn.ID, i)
			sub.Content = piece
			chunks = append(chunks, sub)
		}
	}
	return chunks, nil
}

// embedChunks embeds each chunk in sequence, skipping failures. The
// context is checked between calls so a cancelled build stops promptly.
func (p *Pipeline) embedChunks(ctx context.Context, chunks []conversation.Chunk, result *BuildResult) ([]conversation.Chunk, error) {
	embedded := make([]conversation.Chunk, 0, len(chunks))
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		vector, err := p.provider.Embed(ctx, chunk.Content)
		if err != nil {
			p.logger.Warn("Failed to embed chunk", "id", chunk.ID, "error", err)
			result.SkippedChunks++
			continue
		}
		chunk.Embedding = vector
		embedded = append(embedded, chunk)

		if p.delay > 0 && i < len(chunks)-1 {
			select {
			case <-time.After(p.delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return embedded, nil
}
