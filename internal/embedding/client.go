// Package embedding wraps the OpenAI embeddings API behind a small
// Provider interface so the retrieval engine and index builder can be
// tested without network access.
package embedding

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Provider converts text into fixed-dimension vectors. Identical text
// yields usable (not necessarily byte-identical) vectors.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Client wraps the OpenAI client for embedding and chat use.
type Client struct {
	client *openai.Client
}

// NewClient creates an OpenAI client with the given API key.
func NewClient(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Client{client: &client}, nil
}

// Client returns the underlying OpenAI client for use in other packages
// (e.g. response generation).
func (c *Client) Client() *openai.Client {
	return c.client
}
