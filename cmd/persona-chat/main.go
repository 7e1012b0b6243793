// Package main provides the persona chat CLI.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mike-a-ellis/persona-chat/internal/config"
	"github.com/mike-a-ellis/persona-chat/internal/embedding"
	"github.com/mike-a-ellis/persona-chat/internal/indexer"
	"github.com/mike-a-ellis/persona-chat/internal/retrieval"
	"github.com/mike-a-ellis/persona-chat/internal/session"
	"github.com/mike-a-ellis/persona-chat/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "persona-chat",
	Short: "Persona chatbot grounded in conversation transcripts",
	Long: `Chat with a persona modeled from real conversation transcripts.

Transcripts are parsed into speaker turns, embedded, and indexed; every
chat turn retrieves the most relevant excerpts and derives persona
signals from them before generating a response.

Environment variables:
  OPENAI_API_KEY          OpenAI API key (required)
  LLM_MODEL               Chat model (default: gpt-4)
  EMBEDDING_MODEL         Embedding model (default: text-embedding-3-small)
  CONVERSATION_DATA_PATH  Transcript directory (default: ./convos)
  VECTOR_STORE_PATH       Index directory (default: ./data/vectors)
  SESSION_STORE_PATH      Session directory (default: ./data/sessions)`,
}

var syncForce bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Build the vector index from conversation transcripts",
	Long: `Parses every transcript, generates embeddings, and persists the
vector store. An existing store is left alone unless --force is given.`,
	RunE: runSync,
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show index and session store status",
	RunE:  runInfo,
}

var cleanupDays int

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete sessions not updated recently",
	RunE:  runCleanup,
}

func init() {
	syncCmd.Flags().BoolVar(&syncForce, "force", false, "rebuild even if an index already exists")
	cleanupCmd.Flags().IntVar(&cleanupDays, "days", 30, "delete sessions idle longer than this many days")
	rootCmd.AddCommand(chatCmd, syncCmd, infoCmd, cleanupCmd)
}

func main() {
	// Load .env file if present, ignore if missing.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig loads and validates settings, creating data directories.
func loadConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildEngine wires the embedding provider, index pipeline, and
// retrieval engine from configuration.
func buildEngine(cfg *config.Config) (*retrieval.Engine, error) {
	client, err := embedding.NewClient(cfg.OpenAIAPIKey)
	if err != nil {
		return nil, err
	}
	embedder := embedding.NewEmbedder(client, cfg.EmbeddingModel)
	pipeline := indexer.NewPipeline(embedder, cfg.ConversationDataPath,
		cfg.ChunkSize, cfg.ChunkOverlap, cfg.EmbedDelay, slog.Default())
	return retrieval.NewEngine(embedder, pipeline, cfg.VectorStorePath, slog.Default()), nil
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	if !syncForce {
		if index, err := store.Load(cfg.VectorStorePath); err == nil {
			fmt.Printf("Index already built (%d chunks); use --force to rebuild\n", index.Size())
			return nil
		}
	}

	fmt.Printf("Rebuilding index from %s...\n", cfg.ConversationDataPath)
	result, err := engine.Rebuild(cmd.Context())
	if err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}

	fmt.Println()
	fmt.Println("Sync complete!")
	fmt.Printf("  Files:   %d\n", result.Files)
	fmt.Printf("  Parsed:  %d chunks\n", result.ParsedChunks)
	fmt.Printf("  Indexed: %d chunks\n", result.IndexedChunks)
	if result.SkippedChunks > 0 {
		fmt.Printf("  Skipped: %d chunks\n", result.SkippedChunks)
	}
	fmt.Printf("  Duration: %s\n", result.Duration.Round(time.Millisecond))
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	fmt.Printf("Transcripts: %s\n", cfg.ConversationDataPath)
	fmt.Printf("Vector store: %s\n", cfg.VectorStorePath)

	index, err := store.Load(cfg.VectorStorePath)
	switch {
	case err == nil:
		fmt.Printf("  Status: ready (%d chunks, %d dimensions)\n", index.Size(), index.Dimension())
	case errors.Is(err, store.ErrStoreNotFound):
		fmt.Println("  Status: not built (run 'persona-chat sync')")
	case errors.Is(err, store.ErrStoreCorrupt):
		fmt.Println("  Status: corrupt (will rebuild on next chat or sync)")
	default:
		fmt.Printf("  Status: error (%v)\n", err)
	}

	sessions := session.NewStore(cfg.SessionStorePath, cfg.MaxConversationHistory)
	infos, err := sessions.List(5)
	if err != nil {
		return err
	}
	fmt.Printf("Sessions: %s\n", cfg.SessionStorePath)
	if len(infos) == 0 {
		fmt.Println("  No stored sessions")
		return nil
	}
	for _, info := range infos {
		fmt.Printf("  %s  %2d msgs  %s  %s\n",
			info.SessionID, info.Messages, info.UpdatedAt.Local().Format("2006-01-02 15:04"), info.Preview)
	}
	return nil
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	sessions := session.NewStore(cfg.SessionStorePath, cfg.MaxConversationHistory)

	removed, err := sessions.CleanupOlderThan(cleanupDays)
	if err != nil {
		return err
	}
	fmt.Printf("Removed %d session(s) older than %d days\n", removed, cleanupDays)
	return nil
}
