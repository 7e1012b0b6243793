// Package llm wraps chat completion calls to the OpenAI API, in both
// blocking and streaming forms.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ErrCompletionFailed wraps API failures from completion calls.
var ErrCompletionFailed = errors.New("completion failed")

const defaultTemperature = 0.7

// Client generates persona responses through the OpenAI chat API.
type Client struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewClient creates a chat client for the given model.
func NewClient(apiKey, model string, maxTokens int) *Client {
	c := openai.NewClient(option.WithAPIKey(apiKey))
	return &Client{client: &c, model: model, maxTokens: maxTokens}
}

func (c *Client) params(system, prompt string) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
		Model:       openai.ChatModel(c.model),
		MaxTokens:   openai.Int(int64(c.maxTokens)),
		Temperature: openai.Float(defaultTemperature),
	}
}

// Complete generates a full response in one call. Rate limit errors are
// retried with exponential backoff; other errors fail immediately.
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	var content string

	operation := func() error {
		resp, err := c.client.Chat.Completions.New(ctx, c.params(system, prompt))
		if err != nil {
			if isRateLimitError(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		if len(resp.Choices) == 0 {
			return backoff.Permanent(fmt.Errorf("empty completion response"))
		}
		content = resp.Choices[0].Message.Content
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCompletionFailed, err)
	}
	return content, nil
}

// Stream generates a response incrementally, calling emit for each text
// delta as it arrives. The accumulated full response is returned only
// after the stream ends cleanly; a mid-stream failure returns an error
// and no text, so callers never commit a partial response.
func (c *Client) Stream(ctx context.Context, system, prompt string, emit func(delta string) error) (string, error) {
	stream := c.client.Chat.Completions.NewStreaming(ctx, c.params(system, prompt))
	defer stream.Close()

	var full string
	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		full += delta
		if emit != nil {
			if err := emit(delta); err != nil {
				return "", fmt.Errorf("%w: emit: %v", ErrCompletionFailed, err)
			}
		}
	}
	if err := stream.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCompletionFailed, err)
	}
	return full, nil
}

func isRateLimitError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
