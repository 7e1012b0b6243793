package persona

import (
	"strings"

	"github.com/mike-a-ellis/persona-chat/internal/conversation"
)

// Extractor derives persona signals from retrieved chunks by scanning
// their content against the static rule tables. It is a best-effort
// heuristic classifier: missed labels and keyword coincidences are both
// tolerated, but every emitted label has at least one supporting trigger
// match in the returned RelevantChunks.
type Extractor struct {
	isPersona Matcher
}

// NewExtractor creates an extractor using the given speaker matcher.
func NewExtractor(matcher Matcher) *Extractor {
	if matcher == nil {
		matcher = DefaultMatcher()
	}
	return &Extractor{isPersona: matcher}
}

// Analyze filters chunks to the persona's own utterances and derives the
// four label sets from them. Labels are deduplicated across chunks in
// first-seen order; presence matters, not frequency. Empty or entirely
// non-persona input yields an empty PersonaContext.
func (e *Extractor) Analyze(chunks []conversation.Chunk) conversation.PersonaContext {
	var personaChunks []conversation.Chunk
	for _, chunk := range chunks {
		if e.isPersona(chunk.Speaker) {
			personaChunks = append(personaChunks, chunk)
		}
	}

	return conversation.PersonaContext{
		CommunicationStyle: extractCommunicationStyle(personaChunks),
		TechnicalExpertise: applyRules(personaChunks, expertiseRules),
		DecisionPatterns:   applyRules(personaChunks, decisionRules),
		PersonalityTraits:  extractPersonalityTraits(personaChunks),
		RelevantChunks:     personaChunks,
	}
}

// extractCommunicationStyle combines the metric-pattern rule with the
// keyword table.
func extractCommunicationStyle(chunks []conversation.Chunk) []string {
	labels := newLabelSet()
	for _, chunk := range chunks {
		content := strings.ToLower(chunk.Content)
		if metricPattern.MatchString(content) {
			labels.add(metricLabel)
		}
		for _, rule := range communicationRules {
			if matchesAny(content, rule.triggers) {
				labels.add(rule.label)
			}
		}
	}
	return labels.values
}

// extractPersonalityTraits applies the length-gated detail rule plus the
// keyword table.
func extractPersonalityTraits(chunks []conversation.Chunk) []string {
	labels := newLabelSet()
	for _, chunk := range chunks {
		content := strings.ToLower(chunk.Content)
		if len(chunk.Content) > detailContentThreshold && matchesAny(content, detailRule.triggers) {
			labels.add(detailRule.label)
		}
		for _, rule := range traitRules {
			if matchesAny(content, rule.triggers) {
				labels.add(rule.label)
			}
		}
	}
	return labels.values
}

func applyRules(chunks []conversation.Chunk, rules []keywordRule) []string {
	labels := newLabelSet()
	for _, chunk := range chunks {
		content := strings.ToLower(chunk.Content)
		for _, rule := range rules {
			if matchesAny(content, rule.triggers) {
				labels.add(rule.label)
			}
		}
	}
	return labels.values
}

func matchesAny(content string, triggers []string) bool {
	for _, trigger := range triggers {
		if strings.Contains(content, trigger) {
			return true
		}
	}
	return false
}

// labelSet deduplicates labels while keeping first-seen order, so the
// extractor output is deterministic for a given chunk sequence.
type labelSet struct {
	seen   map[string]struct{}
	values []string
}

func newLabelSet() *labelSet {
	return &labelSet{seen: make(map[string]struct{})}
}

func (s *labelSet) add(label string) {
	if _, ok := s.seen[label]; ok {
		return
	}
	s.seen[label] = struct{}{}
	s.values = append(s.values, label)
}
