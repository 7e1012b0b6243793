// Package chat runs persona conversation turns: retrieve context,
// derive persona signals, generate a response, and record the exchange.
package chat

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/mike-a-ellis/persona-chat/internal/conversation"
	"github.com/mike-a-ellis/persona-chat/internal/persona"
	"github.com/mike-a-ellis/persona-chat/internal/retrieval"
	"github.com/mike-a-ellis/persona-chat/internal/session"
)

// DefaultTopK is how many chunks a turn retrieves for context.
const DefaultTopK = 5

// historyTurns is how many prior turns are carried into the prompt.
const historyTurns = 5

// Generator produces persona responses. Stream emits text deltas as
// they arrive and returns the accumulated full text after a clean end.
type Generator interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
	Stream(ctx context.Context, system, prompt string, emit func(delta string) error) (string, error)
}

// Retriever answers similarity queries against the conversation index.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int, filter retrieval.SpeakerFilter) ([]conversation.Chunk, error)
}

// Agent orchestrates a conversation turn. Failures along the way degrade
// into in-persona responses rather than surfacing raw errors; the only
// error an Agent returns is context cancellation, in which case the
// turn is discarded unrecorded.
type Agent struct {
	retriever Retriever
	generator Generator
	extractor *persona.Extractor
	sessions  *session.Store
	filter    retrieval.SpeakerFilter
	topK      int
	logger    *slog.Logger
}

// NewAgent creates a conversation agent. The filter restricts retrieved
// context to the persona's own utterances.
func NewAgent(retriever Retriever, generator Generator, extractor *persona.Extractor, sessions *session.Store, filter retrieval.SpeakerFilter, logger *slog.Logger) *Agent {
	if extractor == nil {
		extractor = persona.NewExtractor(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		retriever: retriever,
		generator: generator,
		extractor: extractor,
		sessions:  sessions,
		filter:    filter,
		topK:      DefaultTopK,
		logger:    logger,
	}
}

// Sessions exposes the agent's session store for history inspection.
func (a *Agent) Sessions() *session.Store {
	return a.sessions
}

// Respond runs one blocking conversation turn and returns the response
// text, degraded if anything failed along the way.
func (a *Agent) Respond(ctx context.Context, query string) (string, error) {
	return a.respond(ctx, query, nil)
}

// RespondStream runs one streaming conversation turn, calling emit per
// text delta. The turn is committed to the session exactly once, after
// the stream has ended; a cancelled stream leaves no assistant turn.
func (a *Agent) RespondStream(ctx context.Context, query string, emit func(delta string) error) (string, error) {
	return a.respond(ctx, query, emit)
}

func (a *Agent) respond(ctx context.Context, query string, emit func(string) error) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		// Nothing to answer and nothing worth recording.
		return a.deliver(persona.ErrorResponse("parsing_error"), emit), nil
	}

	history := a.sessions.History(historyTurns)
	if err := a.sessions.Append(conversation.ChatMessage{Role: "user", Content: query}); err != nil {
		a.logger.Warn("Failed to record user turn", "error", err)
	}

	pc, err := a.buildContext(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		a.logger.Warn("Context retrieval failed", "error", err)
		return a.degrade("context_error", nil, emit), nil
	}

	prompt := persona.ResponsePrompt(query, pc, history)

	var text string
	if emit != nil {
		text, err = a.generator.Stream(ctx, persona.SystemPrompt, prompt, emit)
	} else {
		text, err = a.generator.Complete(ctx, persona.SystemPrompt, prompt)
	}
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		a.logger.Warn("Generation failed", "error", err)
		return a.degrade("api_error", &pc, emit), nil
	}

	a.record(conversation.ChatMessage{
		Role:        "assistant",
		Content:     text,
		ContextUsed: &pc,
	})
	return text, nil
}

// buildContext retrieves relevant chunks and derives persona signals
// from them.
func (a *Agent) buildContext(ctx context.Context, query string) (conversation.PersonaContext, error) {
	chunks, err := a.retriever.Retrieve(ctx, query, a.topK, a.filter)
	if err != nil {
		return conversation.PersonaContext{}, err
	}
	return a.extractor.Analyze(chunks), nil
}

// degrade records an in-persona degraded turn annotated with the error
// kind and returns its text.
func (a *Agent) degrade(kind string, pc *conversation.PersonaContext, emit func(string) error) string {
	text := persona.ErrorResponse(kind)
	a.record(conversation.ChatMessage{
		Role:        "assistant",
		Content:     text,
		ContextUsed: pc,
		Error:       kind,
	})
	return a.deliver(text, emit)
}

func (a *Agent) deliver(text string, emit func(string) error) string {
	if emit != nil {
		if err := emit(text); err != nil {
			a.logger.Warn("Failed to emit response", "error", err)
		}
	}
	return text
}

func (a *Agent) record(msg conversation.ChatMessage) {
	msg.Timestamp = time.Now().UTC()
	if err := a.sessions.Append(msg); err != nil {
		a.logger.Warn("Failed to record assistant turn", "error", err)
	}
}
