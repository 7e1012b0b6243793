// Package transcript turns raw conversation transcripts into
// speaker-attributed chunks sized for embedding.
package transcript

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/mike-a-ellis/persona-chat/internal/conversation"
)

// speakerMarker matches a turn delimiter of the form "**Speaker (label):**".
// The body of a turn runs from the end of its marker to the start of the
// next marker or the end of the document.
var speakerMarker = regexp.MustCompile(`\*\*([A-Za-z]+)\s*\([^)]+\):\*\*`)

// noiseMarkers is the denylist applied to the lower-cased, trimmed body of a
// turn. A body containing any of these substrings is structural or metadata
// noise rather than spoken content and is dropped.
var noiseMarkers = []string{
	"interview simulation",
	"date:",
	"role:",
	"interviewer:",
	"candidate:",
	"duration:",
	"---",
	"#",
	"how alex shulga",
	"bottom line:",
}

// Parser extracts speaker turns from transcript documents. It is lenient:
// malformed or empty documents yield zero chunks, never an error.
type Parser struct {
	md goldmark.Markdown
}

// NewParser creates a transcript parser.
func NewParser() *Parser {
	return &Parser{md: goldmark.New()}
}

// Parse extracts speaker-attributed chunks from a transcript document.
// sourceID identifies the originating document and feeds into each chunk's
// deterministic id, so re-parsing unchanged input reproduces the same ids.
// Returned chunks carry no embedding.
func (p *Parser) Parse(document, sourceID string) []conversation.Chunk {
	if strings.TrimSpace(document) == "" {
		return nil
	}

	markers := speakerMarker.FindAllStringSubmatchIndex(document, -1)
	if len(markers) == 0 {
		return nil
	}

	parsedAt := time.Now().UTC().Format(time.RFC3339)
	var chunks []conversation.Chunk

	for i, m := range markers {
		speaker := strings.TrimSpace(document[m[2]:m[3]])

		bodyEnd := len(document)
		if i+1 < len(markers) {
			bodyEnd = markers[i+1][0]
		}
		body := strings.TrimSpace(document[m[1]:bodyEnd])

		if body == "" || p.isNoise(body) {
			continue
		}

		chunks = append(chunks, conversation.Chunk{
			ID:         ChunkID(sourceID, speaker, body),
			Speaker:    speaker,
			Content:    body,
			FileSource: sourceID,
			Metadata: map[string]string{
				"source":    sourceID,
				"parsed_at": parsedAt,
			},
		})
	}

	return chunks
}

// isNoise reports whether a turn body is structural noise: either it
// contains a denylisted substring, or it parses to nothing but markdown
// headings and horizontal rules.
func (p *Parser) isNoise(body string) bool {
	lowered := strings.ToLower(strings.TrimSpace(body))
	for _, marker := range noiseMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return p.isStructuralOnly(body)
}

// isStructuralOnly walks the body's markdown AST and reports whether every
// top-level block is a heading or thematic break. This catches setext
// headings and rule variants the substring denylist cannot see.
func (p *Parser) isStructuralOnly(body string) bool {
	doc := p.md.Parser().Parse(text.NewReader([]byte(body)))

	seen := false
	for child := doc.FirstChild(); child != nil; child = child.NextSibling() {
		seen = true
		switch child.Kind() {
		case ast.KindHeading, ast.KindThematicBreak:
		default:
			return false
		}
	}
	return seen
}

// ChunkID derives a stable chunk identifier from the source document, the
// speaker, and the first 100 characters of content. Collisions are
// accepted as extremely unlikely and not resolved.
func ChunkID(sourceID, speaker, content string) string {
	prefix := []rune(content)
	if len(prefix) > 100 {
		prefix = prefix[:100]
	}
	sum := md5.Sum([]byte(fmt.Sprintf("%s:%s:%s", sourceID, speaker, string(prefix))))
	return hex.EncodeToString(sum[:])[:12]
}
