package document

import (
	"strings"
	"testing"
)

const sampleFiling = `Some introductory boilerplate about the company.

Item 7. Management's Discussion and Analysis of Financial Condition

Segment Information

Revenue by geography (in millions):
North America   1,234
International     567

Item 8. Financial Statements and Supplementary Data

Consolidated Balance Sheets

Total operating lease liabilities were $456 million.

Item 9. Changes in and Disagreements with Accountants
`

func newTestWindow(t *testing.T) *TokenSplitter {
	t.Helper()
	window, err := NewTokenSplitter(128, 0, "text-embedding-3-small")
	if err != nil {
		t.Fatalf("Failed to create window splitter: %v", err)
	}
	return window
}

func TestSectionSplitter_Split(t *testing.T) {
	splitter := NewSectionSplitter(newTestWindow(t))

	segments, err := splitter.Split(sampleFiling)
	if err != nil {
		t.Fatalf("Split() unexpected error = %v", err)
	}
	if len(segments) == 0 {
		t.Fatal("Split() returned no segments for a filing with item headings")
	}

	tags := make(map[string]bool)
	for _, seg := range segments {
		if seg.Section == "" {
			t.Errorf("segment at offset %d has no section tag", seg.Offset)
		}
		tags[seg.Section] = true

		// The text at the recorded offset must match the segment
		if !strings.HasPrefix(sampleFiling[seg.Offset:], seg.Text) {
			t.Errorf("segment text not found at offset %d", seg.Offset)
		}
	}

	if !tags["item 7"] {
		t.Error("expected a segment tagged item 7")
	}
	if !tags["item 8"] {
		t.Error("expected a segment tagged item 8")
	}

	// Item 9 is not on the allow-list and must be dropped
	for _, seg := range segments {
		if strings.Contains(seg.Text, "Disagreements with Accountants") {
			t.Error("segment from a non-allow-listed section was retained")
		}
	}
}

func TestSectionSplitter_SplitNoHeadings(t *testing.T) {
	splitter := NewSectionSplitter(newTestWindow(t))

	segments, err := splitter.Split("Plain prose with no recognizable headings at all.")
	if err != nil {
		t.Fatalf("Split() unexpected error = %v", err)
	}
	if len(segments) != 0 {
		t.Errorf("Split() returned %d segments, want none", len(segments))
	}
}

func TestSectionSplitter_CustomAllowList(t *testing.T) {
	splitter := NewSectionSplitter(newTestWindow(t), "item 8")

	segments, err := splitter.Split(sampleFiling)
	if err != nil {
		t.Fatalf("Split() unexpected error = %v", err)
	}
	for _, seg := range segments {
		if seg.Section != "item 8" {
			t.Errorf("segment tagged %q, want only item 8", seg.Section)
		}
	}
}

func TestSegmenter_Segment(t *testing.T) {
	window := newTestWindow(t)
	segmenter := NewSegmenter(window, NewSectionSplitter(window))

	tests := []struct {
		name       string
		text       string
		mode       Mode
		wantErr    bool
		wantTagged bool
		wantCorpus bool
	}{
		{
			name:       "Flat mode windows everything",
			text:       sampleFiling,
			mode:       ModeFlat,
			wantCorpus: true,
		},
		{
			name:       "Structured mode keeps tagged sections",
			text:       sampleFiling,
			mode:       ModeStructured,
			wantTagged: true,
			wantCorpus: true,
		},
		{
			name:       "Structured mode falls back to flat windows",
			text:       "No headings anywhere in this document text.",
			mode:       ModeStructured,
			wantCorpus: true,
		},
		{
			name:    "Empty document",
			text:    "",
			mode:    ModeFlat,
			wantErr: true,
		},
		{
			name:    "Unknown mode",
			text:    sampleFiling,
			mode:    Mode("bogus"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			corpus, err := segmenter.Segment(Document{Ticker: "ACME", Text: tt.text}, tt.mode)
			if tt.wantErr {
				if err == nil {
					t.Error("Segment() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Segment() unexpected error = %v", err)
			}
			if tt.wantCorpus && len(corpus) == 0 {
				t.Fatal("Segment() returned an empty corpus")
			}

			tagged := false
			for _, seg := range corpus {
				if seg.Section != "" {
					tagged = true
				}
			}
			if tagged != tt.wantTagged {
				t.Errorf("tagged segments = %v, want %v", tagged, tt.wantTagged)
			}
		})
	}
}
