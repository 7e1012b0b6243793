package transcript

import (
	"strings"
	"testing"
)

const sampleTranscript = `# Interview Simulation

**Interviewer (10:00 AM):**
Date: 2024-01-15

**Alex (10:01 AM):**
I led a team of 15 engineers building an AI platform that served 60K+ users.

**John (10:02 AM):**
That sounds impressive. How did you handle the technical challenges?

**Alex (10:03 AM):**
We measured success through specific metrics like engineer-hours saved.
`

func TestParse_WellFormedTurns(t *testing.T) {
	parser := NewParser()
	chunks := parser.Parse(sampleTranscript, "interview.md")

	// The Interviewer turn is metadata noise ("date:"), leaving 3 spoken turns.
	if len(chunks) != 3 {
		t.Fatalf("Expected 3 chunks, got %d", len(chunks))
	}

	if chunks[0].Speaker != "Alex" {
		t.Errorf("Chunk 0 speaker: expected Alex, got %q", chunks[0].Speaker)
	}
	if !strings.Contains(chunks[0].Content, "60K+ users") {
		t.Errorf("Chunk 0 missing expected content: %q", chunks[0].Content)
	}
	if chunks[1].Speaker != "John" {
		t.Errorf("Chunk 1 speaker: expected John, got %q", chunks[1].Speaker)
	}
	if chunks[2].Speaker != "Alex" {
		t.Errorf("Chunk 2 speaker: expected Alex, got %q", chunks[2].Speaker)
	}

	for i, chunk := range chunks {
		if chunk.FileSource != "interview.md" {
			t.Errorf("Chunk %d file source: got %q", i, chunk.FileSource)
		}
		if chunk.Embedding != nil {
			t.Errorf("Chunk %d should have no embedding after parsing", i)
		}
		if chunk.ID == "" || len(chunk.ID) != 12 {
			t.Errorf("Chunk %d id: expected 12 hex chars, got %q", i, chunk.ID)
		}
	}
}

func TestParse_EmptyDocument(t *testing.T) {
	parser := NewParser()

	if chunks := parser.Parse("", "empty.md"); len(chunks) != 0 {
		t.Errorf("Empty document: expected 0 chunks, got %d", len(chunks))
	}
	if chunks := parser.Parse("   \n\n  ", "blank.md"); len(chunks) != 0 {
		t.Errorf("Blank document: expected 0 chunks, got %d", len(chunks))
	}
}

func TestParse_MalformedDocument(t *testing.T) {
	parser := NewParser()

	malformed := "just some text with no speaker markers at all\nand another line"
	if chunks := parser.Parse(malformed, "bad.md"); len(chunks) != 0 {
		t.Errorf("Malformed document: expected 0 chunks, got %d", len(chunks))
	}
}

func TestParse_NoiseBodiesDropped(t *testing.T) {
	parser := NewParser()

	doc := `**Alex (1):**
Role: Engineering Manager

**Alex (2):**
---

**Alex (3):**
We built the platform to scale horizontally.
`
	chunks := parser.Parse(doc, "noise.md")
	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk after noise filtering, got %d", len(chunks))
	}
	if !strings.Contains(chunks[0].Content, "scale horizontally") {
		t.Errorf("Surviving chunk has wrong content: %q", chunks[0].Content)
	}
}

func TestParse_StructuralOnlyBodyDropped(t *testing.T) {
	parser := NewParser()

	// A setext heading has no "#" for the denylist to catch; the AST
	// check drops it instead.
	doc := "**Alex (1):**\nSession Notes\n=============\n\n**Alex (2):**\nReal spoken content here.\n"
	chunks := parser.Parse(doc, "setext.md")
	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}
	if !strings.Contains(chunks[0].Content, "Real spoken content") {
		t.Errorf("Wrong chunk survived: %q", chunks[0].Content)
	}
}

func TestParse_DeterministicIDs(t *testing.T) {
	parser := NewParser()

	first := parser.Parse(sampleTranscript, "interview.md")
	second := parser.Parse(sampleTranscript, "interview.md")

	if len(first) != len(second) {
		t.Fatalf("Parse count differs between runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("Chunk %d id not deterministic: %q vs %q", i, first[i].ID, second[i].ID)
		}
	}

	// A different source document produces different ids for identical content.
	other := parser.Parse(sampleTranscript, "other.md")
	if first[0].ID == other[0].ID {
		t.Errorf("Ids should differ across source documents")
	}
}

func TestChunkID_UsesContentPrefix(t *testing.T) {
	long := strings.Repeat("word ", 100)

	// Content differing only beyond the first 100 characters maps to the
	// same id.
	a := ChunkID("f.md", "Alex", long+"tail one")
	b := ChunkID("f.md", "Alex", long+"tail two")
	if a != b {
		t.Errorf("Ids should match for shared 100-char prefix: %q vs %q", a, b)
	}

	c := ChunkID("f.md", "Alex", "entirely different content")
	if a == c {
		t.Errorf("Ids should differ for different content")
	}
}
