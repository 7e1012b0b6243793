package persona

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mike-a-ellis/persona-chat/internal/conversation"
)

func alexChunk(id, content string) conversation.Chunk {
	return conversation.Chunk{ID: id, Speaker: "Alex", Content: content, FileSource: "test.md"}
}

func TestAnalyze_FiltersToPersonaSpeaker(t *testing.T) {
	chunks := []conversation.Chunk{
		alexChunk("a1", "We built a comprehensive RAG platform using Azure OpenAI."),
		{ID: "j1", Speaker: "John", Content: "That sounds impressive. How did you handle it?", FileSource: "test.md"},
		{ID: "m1", Speaker: "Maria", Content: "Our platform team also uses metrics heavily.", FileSource: "test.md"},
	}

	pc := NewExtractor(DefaultMatcher()).Analyze(chunks)

	require.Len(t, pc.RelevantChunks, 1)
	assert.Equal(t, "a1", pc.RelevantChunks[0].ID)

	// Strict subset property: every relevant chunk satisfies the matcher.
	matcher := DefaultMatcher()
	for _, chunk := range pc.RelevantChunks {
		assert.True(t, matcher(chunk.Speaker))
	}
}

func TestAnalyze_CommunicationStyle(t *testing.T) {
	chunks := []conversation.Chunk{
		alexChunk("a1", "We served 60K+ users and saved 1,500 hours weekly using our RAG platform."),
	}

	pc := NewExtractor(nil).Analyze(chunks)

	assert.Contains(t, pc.CommunicationStyle, "Uses specific metrics and quantifiable impacts")
	assert.Contains(t, pc.CommunicationStyle, "Demonstrates platform thinking and architectural mindset")
	assert.Contains(t, pc.CommunicationStyle, "Demonstrates deep AI and technical expertise")
}

func TestAnalyze_TechnicalExpertise(t *testing.T) {
	chunks := []conversation.Chunk{
		alexChunk("a1", "We built a comprehensive RAG platform using Azure OpenAI and agentic AI workflows."),
		alexChunk("a2", "The platform architecture included APIs for Microsoft Teams integration and developer productivity tools."),
	}

	pc := NewExtractor(nil).Analyze(chunks)

	assert.Contains(t, pc.TechnicalExpertise, "AI/ML and RAG platforms")
	assert.Contains(t, pc.TechnicalExpertise, "Platform engineering and architecture")
	assert.Contains(t, pc.TechnicalExpertise, "Microsoft ecosystem and Azure")
}

func TestAnalyze_DecisionPatterns(t *testing.T) {
	chunks := []conversation.Chunk{
		alexChunk("a1", "We measured success through specific metrics like engineer-hours saved and user satisfaction scores."),
		alexChunk("a2", "I collaborated closely with stakeholders across engineering teams to understand their needs."),
	}

	pc := NewExtractor(nil).Analyze(chunks)

	assert.Contains(t, pc.DecisionPatterns, "Data-driven and metrics-focused decision making")
	assert.Contains(t, pc.DecisionPatterns, "Collaborative and stakeholder-inclusive approach")
}

func TestAnalyze_PersonalityTraits(t *testing.T) {
	longDetailed := "My mission was to improve the daily lives of 15,000 engineers through better developer experience. " +
		"I believe in providing specific examples and detailed explanations to help teams understand the impact of our platform work."
	require.Greater(t, len(longDetailed), detailContentThreshold)

	chunks := []conversation.Chunk{
		alexChunk("a1", longDetailed),
		alexChunk("a2", "I mentored team members and helped promote 6 engineers, focusing on inclusive leadership and innovation."),
	}

	pc := NewExtractor(nil).Analyze(chunks)

	assert.Contains(t, pc.PersonalityTraits, "Detail-oriented and thorough")
	assert.Contains(t, pc.PersonalityTraits, "Mission-driven and impact-focused")
	assert.Contains(t, pc.PersonalityTraits, "Inclusive and development-focused leader")
	assert.Contains(t, pc.PersonalityTraits, "Innovation-minded and forward-thinking")
}

func TestAnalyze_DetailTraitRequiresLongContent(t *testing.T) {
	// Trigger words alone are not enough; the chunk must be long.
	pc := NewExtractor(nil).Analyze([]conversation.Chunk{
		alexChunk("a1", "Here is a specific example with detail."),
	})
	assert.NotContains(t, pc.PersonalityTraits, "Detail-oriented and thorough")
}

func TestAnalyze_EmptyInput(t *testing.T) {
	pc := NewExtractor(nil).Analyze(nil)
	assert.True(t, pc.IsEmpty())

	pc = NewExtractor(nil).Analyze([]conversation.Chunk{
		{ID: "j1", Speaker: "John", Content: "platform metrics team ai", FileSource: "t.md"},
	})
	assert.Empty(t, pc.RelevantChunks)
	assert.Empty(t, pc.CommunicationStyle)
	assert.Empty(t, pc.TechnicalExpertise)
	assert.Empty(t, pc.DecisionPatterns)
	assert.Empty(t, pc.PersonalityTraits)
}

// TestAnalyze_LabelSupport checks the core invariant: every emitted
// label is backed by at least one trigger match in RelevantChunks.
func TestAnalyze_LabelSupport(t *testing.T) {
	chunks := []conversation.Chunk{
		alexChunk("a1", "We served 60K+ users and saved 1,500 hours weekly using our RAG platform."),
		alexChunk("a2", "I collaborated with stakeholders on the roadmap and long-term vision."),
	}

	pc := NewExtractor(nil).Analyze(chunks)

	supported := func(triggers []string) bool {
		for _, chunk := range pc.RelevantChunks {
			content := strings.ToLower(chunk.Content)
			for _, trigger := range triggers {
				if strings.Contains(content, trigger) {
					return true
				}
			}
		}
		return false
	}
	metricSupported := func() bool {
		for _, chunk := range pc.RelevantChunks {
			if metricPattern.MatchString(strings.ToLower(chunk.Content)) {
				return true
			}
		}
		return false
	}

	for _, label := range pc.CommunicationStyle {
		if label == metricLabel {
			assert.True(t, metricSupported(), "label %q has no supporting metric match", label)
			continue
		}
		found := false
		for _, rule := range communicationRules {
			if rule.label == label && supported(rule.triggers) {
				found = true
			}
		}
		assert.True(t, found, "label %q has no supporting trigger match", label)
	}
	for _, label := range pc.TechnicalExpertise {
		found := false
		for _, rule := range expertiseRules {
			if rule.label == label && supported(rule.triggers) {
				found = true
			}
		}
		assert.True(t, found, "label %q has no supporting trigger match", label)
	}
	for _, label := range pc.DecisionPatterns {
		found := false
		for _, rule := range decisionRules {
			if rule.label == label && supported(rule.triggers) {
				found = true
			}
		}
		assert.True(t, found, "label %q has no supporting trigger match", label)
	}
}

func TestAnalyze_DeduplicatesLabels(t *testing.T) {
	chunks := []conversation.Chunk{
		alexChunk("a1", "platform first"),
		alexChunk("a2", "platform second"),
		alexChunk("a3", "platform third"),
	}

	pc := NewExtractor(nil).Analyze(chunks)

	count := 0
	for _, label := range pc.CommunicationStyle {
		if label == "Demonstrates platform thinking and architectural mindset" {
			count++
		}
	}
	assert.Equal(t, 1, count, "labels must be deduplicated across chunks")
}

func TestNameMatcher(t *testing.T) {
	matcher := NameMatcher("alex", "alex shulga")

	assert.True(t, matcher("Alex"))
	assert.True(t, matcher("  alex  "))
	assert.True(t, matcher("ALEX SHULGA"))
	assert.False(t, matcher("Alexandra"))
	assert.False(t, matcher("John"))
	assert.False(t, matcher(""))
}
