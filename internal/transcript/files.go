package transcript

import (
	"path/filepath"
	"sort"
)

// LoadConversationFiles returns the markdown transcript files in dir,
// sorted for deterministic processing order. A missing directory yields
// an empty corpus, not an error.
func LoadConversationFiles(dir string) []string {
	matches, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		// Only possible with a malformed pattern; treat as empty corpus.
		return nil
	}
	sort.Strings(matches)
	return matches
}
