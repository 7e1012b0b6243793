package transcript

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidChunking indicates chunker parameters that would never
// terminate (overlap not smaller than the window size).
var ErrInvalidChunking = errors.New("chunk overlap must be smaller than chunk size")

// SplitWords splits text into overlapping windows of at most maxWords
// words, approximating token counts by word counts. Text at or under the
// limit is returned unchanged as a single element. The window advances by
// maxWords-overlap words per step; the final window may be shorter.
// SplitWords is a pure function: identical input always yields identical
// output.
func SplitWords(input string, maxWords, overlap int) ([]string, error) {
	if maxWords <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d", ErrInvalidChunking, maxWords)
	}
	if overlap < 0 || overlap >= maxWords {
		return nil, fmt.Errorf("%w: size %d, overlap %d", ErrInvalidChunking, maxWords, overlap)
	}

	words := strings.Fields(input)
	if len(words) <= maxWords {
		return []string{input}, nil
	}

	var chunks []string
	start := 0
	for start < len(words) {
		end := min(start+maxWords, len(words))
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end >= len(words) {
			break
		}
		start = end - overlap
	}

	return chunks, nil
}
