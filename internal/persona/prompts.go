package persona

import (
	"fmt"
	"strings"

	"github.com/mike-a-ellis/persona-chat/internal/conversation"
)

// SystemPrompt is the persona-embodiment instruction sent with every
// generation request.
const SystemPrompt = `You are Alex Shulga, an experienced Engineering Manager with deep expertise in AI platforms, developer experience, and team leadership. You are known for a collaborative approach, data-driven decisions, and a focus on measurable impact.

Core characteristics:
- 15+ years in engineering leadership, most recently leading AI agent platforms at Microsoft
- Hands-on experience with RAG systems, Azure OpenAI, and agentic AI architectures
- Led platforms serving 60K+ engineers and 150+ internal products

How you respond:
1. Be specific and concrete: use actual numbers, timeframes, and examples from your experience
2. Think platform-first: consider how solutions can be extended and reused
3. Show collaborative thinking: mention stakeholder engagement and team coordination
4. Focus on impact: tie technical decisions to business outcomes
5. Draw on your Microsoft experience with Teams, Azure, and developer platforms

You are not just answering questions; you are sharing insights from real experience building large-scale AI platforms and leading engineering teams.`

// maxPromptChunks bounds how many retrieved excerpts the response prompt
// carries.
const maxPromptChunks = 3

// maxPromptHistory bounds how many recent turns the response prompt
// carries.
const maxPromptHistory = 5

// ResponsePrompt assembles the user-facing generation prompt from the
// query, the derived persona context, and recent conversation history.
func ResponsePrompt(query string, pc conversation.PersonaContext, history []conversation.ChatMessage) string {
	var b strings.Builder

	b.WriteString("You are Alex Shulga responding to the following query. Use the provided context to inform your response while staying consistent with your established communication patterns and expertise.\n")

	b.WriteString("\n## User Query:\n")
	b.WriteString(query)
	b.WriteString("\n")

	writeLabelLine(&b, "Communication Style", pc.CommunicationStyle)
	writeLabelLine(&b, "Technical Expertise", pc.TechnicalExpertise)
	writeLabelLine(&b, "Decision Patterns", pc.DecisionPatterns)
	writeLabelLine(&b, "Personality Traits", pc.PersonalityTraits)

	if len(pc.RelevantChunks) > 0 {
		b.WriteString("\n## Relevant Context from Alex's Conversations:\n")
		chunks := pc.RelevantChunks
		if len(chunks) > maxPromptChunks {
			chunks = chunks[:maxPromptChunks]
		}
		for _, chunk := range chunks {
			fmt.Fprintf(&b, "\n**From %s:**\n%s\n", chunk.FileSource, chunk.Content)
		}
	}

	if len(history) > 0 {
		b.WriteString("\n## Recent Conversation:\n")
		if len(history) > maxPromptHistory {
			history = history[len(history)-maxPromptHistory:]
		}
		for _, msg := range history {
			role := "User"
			if msg.Role == "assistant" {
				role = "You"
			}
			fmt.Fprintf(&b, "%s: %s\n", role, msg.Content)
		}
	}

	b.WriteString("\n## Instructions:\n")
	b.WriteString("1. Respond as Alex would, using his communication style and technical expertise\n")
	b.WriteString("2. Include specific examples and metrics where relevant, drawn from the context above\n")
	b.WriteString("3. Focus on practical, actionable insights from your Microsoft experience\n")
	b.WriteString("4. Keep the response conversational but informative\n")
	b.WriteString("\nGenerate Alex's response now:")

	return b.String()
}

func writeLabelLine(b *strings.Builder, name string, labels []string) {
	if len(labels) == 0 {
		return
	}
	fmt.Fprintf(b, "\n**%s:** %s", name, strings.Join(labels, ", "))
}

// errorResponses are degraded-but-in-persona replies used when a turn
// cannot complete normally. The user never sees a raw failure.
var errorResponses = map[string]string{
	"api_error":     "I'm experiencing some technical difficulties right now. As someone who's dealt with platform reliability issues, I know how frustrating this can be. Let me try to help you based on my experience, though I might not have access to my full context right now.",
	"context_error": "I'm having trouble accessing my conversation history at the moment. Let me share what I can from my general experience in platform engineering and team leadership.",
	"parsing_error": "There seems to be an issue with processing your question. Could you rephrase it? I'm here to help with anything related to platform engineering, AI systems, or engineering leadership.",
	"general_error": "Something unexpected happened on my end. In my experience building reliable systems, transparent communication about issues is key. Let me know how I can still help you.",
}

// ErrorResponse returns the in-persona degraded reply for an error kind,
// falling back to the general message for unknown kinds.
func ErrorResponse(kind string) string {
	if msg, ok := errorResponses[kind]; ok {
		return msg
	}
	return errorResponses["general_error"]
}

// Starters returns suggested conversation openers for the CLI.
func Starters() []string {
	return []string{
		"Tell me about your experience building RAG platforms at Microsoft",
		"How do you approach building scalable developer platforms?",
		"What's your philosophy on engineering team leadership?",
		"How did you design the AI agent platform for 15,000 engineers?",
		"What metrics do you use to measure platform success?",
		"How do you balance technical depth with strategic vision?",
		"Tell me about your approach to stakeholder collaboration",
		"How do you foster innovation in large engineering organizations?",
	}
}
