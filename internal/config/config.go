// Package config loads application settings from the environment.
// The Config struct is constructed once at startup and passed into
// component constructors; nothing reads the environment after Load.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// ErrMissingAPIKey indicates the required OpenAI credential is not set.
var ErrMissingAPIKey = errors.New("OPENAI_API_KEY environment variable not set")

// Config holds all application settings.
type Config struct {
	// OpenAI
	OpenAIAPIKey   string
	LLMModel       string
	EmbeddingModel string

	// Storage paths
	VectorStorePath      string
	ConversationDataPath string
	SessionStorePath     string

	// Application settings
	MaxConversationHistory int
	ChunkSize              int
	ChunkOverlap           int
	MaxResponseTokens      int

	// Delay between embedding calls during bulk index builds, to stay
	// under the provider's rate limit.
	EmbedDelay time.Duration
}

// Load reads configuration from the environment, applying defaults for
// everything except the API key. Callers should run godotenv.Load first
// if a .env file may be present.
func Load() *Config {
	return &Config{
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		LLMModel:       getEnv("LLM_MODEL", "gpt-4"),
		EmbeddingModel: getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),

		VectorStorePath:      getEnv("VECTOR_STORE_PATH", "./data/vectors"),
		ConversationDataPath: getEnv("CONVERSATION_DATA_PATH", "./convos"),
		SessionStorePath:     getEnv("SESSION_STORE_PATH", "./data/sessions"),

		MaxConversationHistory: getEnvInt("MAX_CONVERSATION_HISTORY", 50),
		ChunkSize:              getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap:           getEnvInt("CHUNK_OVERLAP", 200),
		MaxResponseTokens:      getEnvInt("MAX_TOKENS_PER_RESPONSE", 2000),

		EmbedDelay: getEnvDuration("EMBED_DELAY", 100*time.Millisecond),
	}
}

// Validate checks that all required settings are present and coherent.
func (c *Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return ErrMissingAPIKey
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP (%d) must be smaller than CHUNK_SIZE (%d)",
			c.ChunkOverlap, c.ChunkSize)
	}
	return nil
}

// EnsureDirectories creates the vector store and session store
// directories if they do not exist.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.VectorStorePath, c.SessionStorePath} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}
