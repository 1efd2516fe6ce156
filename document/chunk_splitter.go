package document

import (
	"fmt"
	"unicode"
)

// CharacterSplitter splits text into character windows of at most
// ChunkSize bytes, preferring to cut at whitespace. Segments are raw
// substrings of the input, so concatenating them with the overlap
// removed reproduces the original text.
type CharacterSplitter struct {
	ChunkSize    int
	ChunkOverlap int
}

func NewCharacterSplitter(chunkSize int, chunkOverlap int) (*CharacterSplitter, error) {
	if chunkSize <= 0 {
		return nil, &IngestionError{
			Op:      "new_character_splitter",
			Message: "chunkSize must be positive",
			Err:     fmt.Errorf("invalid chunkSize: %d", chunkSize),
		}
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, &IngestionError{
			Op:      "new_character_splitter",
			Message: "chunkOverlap must be non-negative and less than chunkSize",
			Err:     fmt.Errorf("invalid chunkOverlap: %d", chunkOverlap),
		}
	}
	return &CharacterSplitter{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
	}, nil
}

func (cs *CharacterSplitter) Split(text string) ([]Segment, error) {
	if text == "" {
		return nil, nil
	}

	var segments []Segment
	start := 0

	for start < len(text) {
		end := start + cs.ChunkSize
		if end >= len(text) {
			end = len(text)
		} else {
			// Prefer a whitespace boundary so words stay intact
			boundary := end
			for boundary > start && !unicode.IsSpace(rune(text[boundary-1])) {
				boundary--
			}
			if boundary > start {
				end = boundary
			}
		}

		segments = append(segments, Segment{
			Text:   text[start:end],
			Offset: start,
		})

		if end == len(text) {
			break
		}
		next := end - cs.ChunkOverlap
		if next <= start {
			next = end
		}
		start = next
	}

	return segments, nil
}
