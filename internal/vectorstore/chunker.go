// Package vectorstore hands extracted page content to the search index as
// fixed-size chunks for later nearest-neighbor retrieval.
package vectorstore

// DefaultChunkSize is the maximum characters per content chunk.
const DefaultChunkSize = 500

// Chunk splits content into consecutive windows of at most size characters,
// in order. The split is deterministic: the same content always produces the
// same chunks. Returns nil for empty content.
func Chunk(content string, size int) []string {
	if content == "" {
		return nil
	}
	if size <= 0 {
		size = DefaultChunkSize
	}

	runes := []rune(content)
	chunks := make([]string, 0, len(runes)/size+1)

	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}

	return chunks
}
