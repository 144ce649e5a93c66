package services

import "strings"

// ChunkingService splits document text into fixed-width overlapping
// windows. The slide is deliberately naive: no sentence or paragraph
// awareness, so chunk boundaries are fully deterministic. Overlap
// exists so a concept split across a boundary still appears whole in
// at least one chunk.
type ChunkingService struct {
	chunkSize int
	overlap   int
}

// NewChunkingService creates a chunking service with default window
// parameters. Both can be overridden per call via SplitText.
func NewChunkingService(chunkSize, overlap int) *ChunkingService {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = chunkSize / 5
	}
	return &ChunkingService{
		chunkSize: chunkSize,
		overlap:   overlap,
	}
}

// ChunkText splits text using the service defaults
func (cs *ChunkingService) ChunkText(text string) []string {
	return SplitText(text, cs.chunkSize, cs.overlap)
}

// SplitText slides a window of chunkSize characters forward by
// chunkSize-overlap each step. The window counts runes, not bytes, so
// multibyte text never splits mid-character. Input is trimmed first;
// empty or whitespace-only input yields no chunks. Each window is
// trimmed and empty windows are dropped.
func SplitText(text string, chunkSize, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize
	}

	runes := []rune(text)
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}

	return chunks
}
