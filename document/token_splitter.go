package document

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// TokenSplitter splits text into fixed-size token windows with a fixed
// overlap. Windows are deterministic given the window size and the text,
// and cover the whole document: concatenating segments with the declared
// overlap removed reproduces the original text byte for byte.
type TokenSplitter struct {
	TokensPerSegment int
	SegmentOverlap   int
	Model            string
	encoding         *tiktoken.Tiktoken
}

// getEncodingForModel returns the appropriate encoding name for a given model
func getEncodingForModel(model string) string {
	if strings.HasPrefix(model, "gpt-4o") {
		return "o200k_base"
	}

	if strings.HasPrefix(model, "gpt-4") ||
		strings.HasPrefix(model, "gpt-3.5-turbo") ||
		model == "text-embedding-ada-002" ||
		model == "text-embedding-3-small" ||
		model == "text-embedding-3-large" {
		return "cl100k_base"
	}

	// Default to cl100k_base if model is unknown (covers locally hosted
	// models, which only need an approximate token count)
	return "cl100k_base"
}

func NewTokenSplitter(tokensPerSegment int, segmentOverlap int, model string) (*TokenSplitter, error) {
	if tokensPerSegment <= 0 {
		return nil, &IngestionError{
			Op:      "new_token_splitter",
			Message: "tokensPerSegment must be positive",
			Err:     fmt.Errorf("invalid tokensPerSegment: %d", tokensPerSegment),
		}
	}

	if segmentOverlap < 0 {
		return nil, &IngestionError{
			Op:      "new_token_splitter",
			Message: "segmentOverlap must be non-negative",
			Err:     fmt.Errorf("invalid segmentOverlap: %d", segmentOverlap),
		}
	}

	if segmentOverlap >= tokensPerSegment {
		return nil, &IngestionError{
			Op:      "new_token_splitter",
			Message: "segmentOverlap must be less than tokensPerSegment",
			Err:     fmt.Errorf("overlap %d >= segment size %d", segmentOverlap, tokensPerSegment),
		}
	}

	encodingName := getEncodingForModel(model)
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, &IngestionError{
			Op:      "new_token_splitter",
			Message: fmt.Sprintf("failed to get %s encoding for model %s", encodingName, model),
			Err:     err,
		}
	}

	return &TokenSplitter{
		TokensPerSegment: tokensPerSegment,
		SegmentOverlap:   segmentOverlap,
		Model:            model,
		encoding:         encoding,
	}, nil
}

func (ts *TokenSplitter) Split(text string) ([]Segment, error) {
	if text == "" {
		return nil, nil
	}

	tokens := ts.encoding.Encode(text, nil, nil)
	if len(tokens) == 0 {
		return nil, nil
	}

	var segments []Segment
	start := 0
	offset := 0

	// Safety check for infinite loop
	maxIterations := len(tokens)
	iteration := 0

	for start < len(tokens) {
		iteration++
		if iteration > maxIterations {
			return nil, &IngestionError{
				Op:      "split",
				Message: "infinite loop detected in token splitting",
				Err:     fmt.Errorf("exceeded maximum iterations of %d", maxIterations),
			}
		}

		end := start + ts.TokensPerSegment
		if end > len(tokens) {
			end = len(tokens)
		}

		chunk := ts.encoding.Decode(tokens[start:end])
		segments = append(segments, Segment{
			Text:   chunk,
			Offset: offset,
		})

		// Advance the window; the next offset skips the bytes of the
		// non-overlapping part of this segment
		next := end - ts.SegmentOverlap
		if end == len(tokens) || next >= end || next <= start {
			break
		}
		offset += len(ts.encoding.Decode(tokens[start:next]))
		start = next
	}

	return segments, nil
}
