package document

import (
	"strings"
	"testing"
)

func TestNewCharacterSplitter(t *testing.T) {
	tests := []struct {
		name         string
		chunkSize    int
		chunkOverlap int
		wantErr      bool
	}{
		{name: "Valid parameters", chunkSize: 100, chunkOverlap: 10},
		{name: "Zero chunk size", chunkSize: 0, chunkOverlap: 0, wantErr: true},
		{name: "Negative overlap", chunkSize: 100, chunkOverlap: -1, wantErr: true},
		{name: "Overlap not below chunk size", chunkSize: 50, chunkOverlap: 50, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCharacterSplitter(tt.chunkSize, tt.chunkOverlap)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewCharacterSplitter() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCharacterSplitter_Split(t *testing.T) {
	text := strings.Repeat("lease liabilities were reported at year end ", 20)

	splitter, err := NewCharacterSplitter(64, 0)
	if err != nil {
		t.Fatalf("NewCharacterSplitter() unexpected error = %v", err)
	}

	segments, err := splitter.Split(text)
	if err != nil {
		t.Fatalf("Split() unexpected error = %v", err)
	}
	if len(segments) < 2 {
		t.Fatalf("Split() returned %d segments, want several", len(segments))
	}

	for i, seg := range segments {
		if len(seg.Text) > 64 {
			t.Errorf("segment %d is %d bytes, want at most 64", i, len(seg.Text))
		}
		if !strings.HasPrefix(text[seg.Offset:], seg.Text) {
			t.Errorf("segment %d text not found at offset %d", i, seg.Offset)
		}
	}

	// Without overlap the segments partition the text exactly
	var sb strings.Builder
	for _, seg := range segments {
		sb.WriteString(seg.Text)
	}
	if sb.String() != text {
		t.Error("concatenated segments do not reproduce the original text")
	}

	if empty, err := splitter.Split(""); err != nil || len(empty) != 0 {
		t.Errorf("Split(\"\") = (%v, %v), want no segments and no error", empty, err)
	}
}

func TestSplitDocument(t *testing.T) {
	splitter, err := NewCharacterSplitter(32, 0)
	if err != nil {
		t.Fatalf("NewCharacterSplitter() unexpected error = %v", err)
	}

	corpus, err := SplitDocument(splitter, Document{
		Ticker: "ACME",
		Text:   "Total revenue for fiscal 2023 reached new highs across regions.",
	})
	if err != nil {
		t.Fatalf("SplitDocument() unexpected error = %v", err)
	}
	if len(corpus) == 0 {
		t.Error("SplitDocument() returned an empty corpus")
	}

	if _, err := SplitDocument(splitter, Document{Ticker: "EMPTY"}); err == nil {
		t.Error("SplitDocument() error = nil for an empty document")
	}
}
