package index

import (
	"strings"

	"github.com/kailas-cloud/rfpflow/internal/domain"
)

// splitChunks slices normalized text into word-based chunks of at most size
// words, with overlap words shared between consecutive chunks so answers
// spanning a boundary are not lost. Chunk order follows document order.
func splitChunks(text string, size, overlap int) []domain.Chunk {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := size - overlap
	if step < 1 {
		step = 1
	}

	var chunks []domain.Chunk
	idx := 0
	for i := 0; i < len(words); i += step {
		end := i + size
		if end > len(words) {
			end = len(words)
		}

		chunks = append(chunks, domain.Chunk{
			Index: idx,
			Text:  strings.Join(words[i:end], " "),
		})
		idx++

		if end == len(words) {
			break
		}
	}
	return chunks
}
