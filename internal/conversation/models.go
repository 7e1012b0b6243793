package conversation

import "time"

// Chunk represents a speaker-attributed span of transcript text.
// Chunks are produced by the transcript parser without an embedding and
// gain one during index construction.
type Chunk struct {
	ID         string            `json:"id"`
	Speaker    string            `json:"speaker"`
	Content    string            `json:"content"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Timestamp  *time.Time        `json:"timestamp,omitempty"`
	FileSource string            `json:"file_source"`
	Embedding  []float32         `json:"embedding,omitempty"`
}

// PersonaContext captures the persona signals derived from a set of
// retrieved chunks. Every label in the four sets is backed by trigger
// text in RelevantChunks.
type PersonaContext struct {
	CommunicationStyle []string `json:"communication_style"`
	TechnicalExpertise []string `json:"technical_expertise"`
	DecisionPatterns   []string `json:"decision_patterns"`
	PersonalityTraits  []string `json:"personality_traits"`
	RelevantChunks     []Chunk  `json:"relevant_chunks"`
}

// IsEmpty reports whether no signals were extracted.
func (p PersonaContext) IsEmpty() bool {
	return len(p.CommunicationStyle) == 0 &&
		len(p.TechnicalExpertise) == 0 &&
		len(p.DecisionPatterns) == 0 &&
		len(p.PersonalityTraits) == 0 &&
		len(p.RelevantChunks) == 0
}

// ChatMessage is a single turn in an ongoing conversation.
// Error carries an annotation when the turn degraded instead of
// completing normally; the turn is still recorded.
type ChatMessage struct {
	Role        string          `json:"role"` // "user" or "assistant"
	Content     string          `json:"content"`
	Timestamp   time.Time       `json:"timestamp"`
	ContextUsed *PersonaContext `json:"context_used,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// ChatSession is a complete chat session with its turn history.
type ChatSession struct {
	SessionID string        `json:"session_id"`
	Messages  []ChatMessage `json:"messages"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
