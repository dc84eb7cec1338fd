package services

import (
	"errors"
	"strings"
)

// breakMarkers, in preference order. When a window must be cut short the
// chunker looks backward for the last occurrence of the first marker that
// appears, so paragraph breaks win over sentence ends.
var breakMarkers = []string{"\n\n", ". ", ".\n", "!\n", "?\n"}

// Chunk splits text into overlapping pieces of at most chunkSize characters.
// Boundaries prefer natural break points inside each window. Consecutive
// chunks share roughly overlap characters of context. Empty or
// whitespace-only pieces are dropped. Splitting is deterministic.
func Chunk(text string, chunkSize, overlap int) ([]string, error) {
	if chunkSize <= 0 {
		return nil, errors.New("chunk size must be positive")
	}
	if overlap < 0 {
		return nil, errors.New("chunk overlap must be non-negative")
	}
	if overlap >= chunkSize {
		return nil, errors.New("chunk overlap must be smaller than chunk size")
	}

	runes := []rune(text)
	total := len(runes)
	var chunks []string

	start := 0
	for start < total {
		end := start + chunkSize
		if end >= total {
			end = total
		} else {
			// Not the final window; prefer a natural boundary.
			window := string(runes[start:end])
			for _, marker := range breakMarkers {
				if pos := strings.LastIndex(window, marker); pos > 0 {
					end = start + len([]rune(window[:pos+len(marker)]))
					break
				}
			}
		}

		piece := strings.TrimSpace(string(runes[start:end]))
		if piece != "" {
			chunks = append(chunks, piece)
		}

		if end >= total {
			break
		}
		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks, nil
}
