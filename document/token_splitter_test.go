package document

import (
	"strings"
	"testing"
)

func TestNewTokenSplitter(t *testing.T) {
	tests := []struct {
		name             string
		tokensPerSegment int
		segmentOverlap   int
		model            string
		wantErr          bool
		errMessage       string
	}{
		{
			name:             "Valid parameters",
			tokensPerSegment: 256,
			segmentOverlap:   20,
			model:            "text-embedding-3-small",
			wantErr:          false,
		},
		{
			name:             "Zero tokens per segment",
			tokensPerSegment: 0,
			segmentOverlap:   20,
			model:            "text-embedding-3-small",
			wantErr:          true,
			errMessage:       "tokensPerSegment must be positive",
		},
		{
			name:             "Negative overlap",
			tokensPerSegment: 256,
			segmentOverlap:   -1,
			model:            "text-embedding-3-small",
			wantErr:          true,
			errMessage:       "segmentOverlap must be non-negative",
		},
		{
			name:             "Overlap larger than segment size",
			tokensPerSegment: 100,
			segmentOverlap:   150,
			model:            "text-embedding-3-small",
			wantErr:          true,
			errMessage:       "segmentOverlap must be less than tokensPerSegment",
		},
		{
			name:             "Unknown model falls back to default encoding",
			tokensPerSegment: 100,
			segmentOverlap:   10,
			model:            "nomic-embed-text",
			wantErr:          false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splitter, err := NewTokenSplitter(tt.tokensPerSegment, tt.segmentOverlap, tt.model)
			if tt.wantErr {
				if err == nil {
					t.Errorf("NewTokenSplitter() error = nil, wantErr %v", tt.wantErr)
					return
				}
				if !strings.Contains(err.Error(), tt.errMessage) {
					t.Errorf("NewTokenSplitter() error = %v, want error containing %v", err, tt.errMessage)
				}
				return
			}
			if err != nil {
				t.Errorf("NewTokenSplitter() unexpected error = %v", err)
				return
			}
			if splitter == nil {
				t.Error("NewTokenSplitter() returned nil splitter")
			}
		})
	}
}

func TestTokenSplitter_Split(t *testing.T) {
	longText := strings.Repeat("Revenue for the period was $1,234 million. ", 100)
	shortText := "Total revenue was $500 million."

	tests := []struct {
		name             string
		text             string
		tokensPerSegment int
		segmentOverlap   int
		wantSegments     bool
	}{
		{
			name:             "Empty text",
			text:             "",
			tokensPerSegment: 100,
			segmentOverlap:   20,
			wantSegments:     false,
		},
		{
			name:             "Short text within one window",
			text:             shortText,
			tokensPerSegment: 100,
			segmentOverlap:   20,
			wantSegments:     true,
		},
		{
			name:             "Long text with multiple windows",
			text:             longText,
			tokensPerSegment: 50,
			segmentOverlap:   10,
			wantSegments:     true,
		},
		{
			name:             "Long text without overlap",
			text:             longText,
			tokensPerSegment: 64,
			segmentOverlap:   0,
			wantSegments:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splitter, err := NewTokenSplitter(tt.tokensPerSegment, tt.segmentOverlap, "text-embedding-3-small")
			if err != nil {
				t.Fatalf("Failed to create splitter: %v", err)
			}

			segments, err := splitter.Split(tt.text)
			if err != nil {
				t.Fatalf("Split() unexpected error = %v", err)
			}

			if !tt.wantSegments {
				if len(segments) != 0 {
					t.Errorf("Split() returned %d segments, want none", len(segments))
				}
				return
			}
			if len(segments) == 0 {
				t.Fatal("Split() returned no segments")
			}

			if segments[0].Offset != 0 {
				t.Errorf("first segment offset = %d, want 0", segments[0].Offset)
			}

			// Every segment's text must appear at its recorded offset
			for i, seg := range segments {
				if seg.Text == "" {
					t.Errorf("segment %d is empty", i)
					continue
				}
				if !strings.HasPrefix(tt.text[seg.Offset:], seg.Text) {
					t.Errorf("segment %d text not found at offset %d", i, seg.Offset)
				}
			}
		})
	}
}

// Without overlap the windows must partition the text exactly.
func TestTokenSplitter_SplitLossless(t *testing.T) {
	text := strings.Repeat("Depreciation and amortization expense was $89 million. ", 80)

	splitter, err := NewTokenSplitter(32, 0, "text-embedding-3-small")
	if err != nil {
		t.Fatalf("Failed to create splitter: %v", err)
	}

	segments, err := splitter.Split(text)
	if err != nil {
		t.Fatalf("Split() unexpected error = %v", err)
	}
	if len(segments) < 2 {
		t.Fatalf("Split() returned %d segments, want several", len(segments))
	}

	var sb strings.Builder
	for _, seg := range segments {
		sb.WriteString(seg.Text)
	}
	if sb.String() != text {
		t.Error("concatenated segments do not reproduce the original text")
	}
}
