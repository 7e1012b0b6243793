// Package retrieval answers similarity queries against the conversation
// index, handling lazy initialization, persistence, and query embedding
// caching.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mike-a-ellis/persona-chat/internal/conversation"
	"github.com/mike-a-ellis/persona-chat/internal/embedding"
	"github.com/mike-a-ellis/persona-chat/internal/indexer"
	"github.com/mike-a-ellis/persona-chat/internal/store"
)

// ErrInitFailed marks an engine whose index could neither be loaded nor
// rebuilt. Once failed, every Retrieve call returns the original cause.
var ErrInitFailed = errors.New("retrieval engine initialization failed")

// MinSimilarity is the relevance floor. Matches scoring at or below it
// are treated as noise and dropped from results.
const MinSimilarity = 0.1

// cacheKeyRunes bounds the query prefix used as the embedding cache key.
const cacheKeyRunes = 100

// State describes the engine's initialization lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SpeakerFilter restricts retrieval results to chunks whose speaker
// satisfies the predicate.
type SpeakerFilter func(speaker string) bool

// Engine is the retrieval front door. The index is initialized lazily on
// the first Retrieve: loaded from the on-disk store when a complete,
// readable pair of artifacts exists, rebuilt from the corpus otherwise.
type Engine struct {
	provider embedding.Provider
	pipeline *indexer.Pipeline
	storeDir string
	logger   *slog.Logger

	mu      sync.Mutex
	state   State
	index   *store.FlatIndex
	initErr error

	cacheMu sync.Mutex
	cache   map[string][]float32
}

// NewEngine creates an engine that persists its index under storeDir and
// rebuilds through the given pipeline when no usable store exists.
func NewEngine(provider embedding.Provider, pipeline *indexer.Pipeline, storeDir string, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		provider: provider,
		pipeline: pipeline,
		storeDir: storeDir,
		logger:   logger,
		cache:    make(map[string][]float32),
	}
}

// State returns the engine's current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Size returns the number of indexed chunks, or zero before the engine
// is ready.
func (e *Engine) Size() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.index == nil {
		return 0
	}
	return e.index.Size()
}

// Initialize loads or builds the index. It is idempotent: a ready engine
// returns immediately and a failed engine returns its original cause
// without retrying.
func (e *Engine) Initialize(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case StateReady:
		return nil
	case StateFailed:
		return e.initErr
	}

	e.state = StateLoading
	index, err := e.loadOrBuild(ctx)
	if err != nil {
		e.state = StateFailed
		e.initErr = fmt.Errorf("%w: %v", ErrInitFailed, err)
		return e.initErr
	}

	e.index = index
	e.state = StateReady
	e.logger.Info("Retrieval engine ready", "chunks", index.Size(), "dimension", index.Dimension())
	return nil
}

// Rebuild discards any loaded index and rebuilds from the corpus,
// overwriting the persisted store. Used by the sync command.
func (e *Engine) Rebuild(ctx context.Context) (*indexer.BuildResult, error) {
	index, result, err := e.pipeline.Build(ctx)
	if err != nil {
		return nil, err
	}
	if err := index.Save(e.storeDir); err != nil {
		return nil, fmt.Errorf("save store: %w", err)
	}

	e.mu.Lock()
	e.index = index
	e.state = StateReady
	e.initErr = nil
	e.mu.Unlock()

	e.cacheMu.Lock()
	e.cache = make(map[string][]float32)
	e.cacheMu.Unlock()

	return result, nil
}

func (e *Engine) loadOrBuild(ctx context.Context) (*store.FlatIndex, error) {
	if store.Exists(e.storeDir) {
		index, err := store.Load(e.storeDir)
		if err == nil {
			e.logger.Info("Loaded vector store", "dir", e.storeDir, "chunks", index.Size())
			return index, nil
		}
		if errors.Is(err, store.ErrStoreCorrupt) {
			e.logger.Warn("Vector store corrupt, rebuilding", "dir", e.storeDir, "error", err)
		} else {
			e.logger.Warn("Vector store unreadable, rebuilding", "dir", e.storeDir, "error", err)
		}
	}

	index, _, err := e.pipeline.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	if err := index.Save(e.storeDir); err != nil {
		// A failed save leaves the engine serving from memory; the
		// next process start pays the rebuild again.
		e.logger.Warn("Failed to persist vector store", "dir", e.storeDir, "error", err)
	}
	return index, nil
}

// Retrieve returns up to k chunks relevant to the query, most similar
// first. When a speaker filter is set, the engine over-fetches twice the
// requested count before filtering so the filter has candidates to
// discard. Results at or below MinSimilarity are dropped. Scores are an
// internal detail of the index; callers get chunks only.
func (e *Engine) Retrieve(ctx context.Context, query string, k int, filter SpeakerFilter) ([]conversation.Chunk, error) {
	if err := e.Initialize(ctx); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, nil
	}

	vector, err := e.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	fetch := k
	if filter != nil {
		fetch = 2 * k
	}

	e.mu.Lock()
	index := e.index
	e.mu.Unlock()

	scored, err := index.Search(vector, fetch)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	results := make([]conversation.Chunk, 0, k)
	for _, sc := range scored {
		if sc.Score <= MinSimilarity {
			continue
		}
		if filter != nil && !filter(sc.Chunk.Speaker) {
			continue
		}
		results = append(results, sc.Chunk)
		if len(results) == k {
			break
		}
	}
	return results, nil
}

// embedQuery embeds the query text, memoizing by the first hundred runes.
// Queries sharing that prefix deliberately share a cache entry; chat
// queries differ early far more often than they differ late.
func (e *Engine) embedQuery(ctx context.Context, query string) ([]float32, error) {
	key := prefixKey(query)

	e.cacheMu.Lock()
	cached, ok := e.cache[key]
	e.cacheMu.Unlock()
	if ok {
		return cached, nil
	}

	vector, err := e.provider.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	e.cacheMu.Lock()
	e.cache[key] = vector
	e.cacheMu.Unlock()
	return vector, nil
}

func prefixKey(query string) string {
	runes := []rune(query)
	if len(runes) > cacheKeyRunes {
		runes = runes[:cacheKeyRunes]
	}
	return string(runes)
}
