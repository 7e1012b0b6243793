package transcript

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConversationFiles_MissingDirectory(t *testing.T) {
	files := LoadConversationFiles(filepath.Join(t.TempDir(), "does-not-exist"))
	if len(files) != 0 {
		t.Errorf("Missing directory should yield empty corpus, got %d files", len(files))
	}
}

func TestLoadConversationFiles_OnlyMarkdown(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.md", "a.md", "notes.txt", "data.json"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	files := LoadConversationFiles(dir)
	if len(files) != 2 {
		t.Fatalf("Expected 2 markdown files, got %d", len(files))
	}
	// Sorted for deterministic processing order.
	if filepath.Base(files[0]) != "a.md" || filepath.Base(files[1]) != "b.md" {
		t.Errorf("Files not sorted: %v", files)
	}
}
