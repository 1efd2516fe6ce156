package extract

import (
	"testing"

	"github.com/Abraxas-365/finextract/document"
)

func TestStrategies(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		want    []Strategy
		wantErr bool
	}{
		{name: "Baseline only", mode: "baseline", want: []Strategy{Baseline}},
		{name: "Refined only", mode: "refined", want: []Strategy{Refined}},
		{name: "Both", mode: "both", want: []Strategy{Baseline, Refined}},
		{name: "Empty defaults to both", mode: "", want: []Strategy{Baseline, Refined}},
		{name: "Unknown mode", mode: "turbo", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Strategies(tt.mode)
			if tt.wantErr {
				if err == nil {
					t.Error("Strategies() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Strategies() unexpected error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Strategies() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Strategies()[%d] = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestStrategyConfig(t *testing.T) {
	baseline, err := Baseline.Config()
	if err != nil {
		t.Fatalf("Baseline.Config() unexpected error = %v", err)
	}
	if baseline.Mode != document.ModeFlat {
		t.Errorf("baseline mode = %s, want flat", baseline.Mode)
	}
	if baseline.TopK != 5 {
		t.Errorf("baseline TopK = %d, want 5", baseline.TopK)
	}
	if baseline.TokensPerSegment != 256 || baseline.SegmentOverlap != 20 {
		t.Errorf("baseline window = %d/%d, want 256/20",
			baseline.TokensPerSegment, baseline.SegmentOverlap)
	}

	refined, err := Refined.Config()
	if err != nil {
		t.Fatalf("Refined.Config() unexpected error = %v", err)
	}
	if refined.Mode != document.ModeStructured {
		t.Errorf("refined mode = %s, want structured", refined.Mode)
	}
	if refined.TopK != 10 {
		t.Errorf("refined TopK = %d, want 10", refined.TopK)
	}
	if refined.TokensPerSegment != 512 || refined.SegmentOverlap != 50 {
		t.Errorf("refined window = %d/%d, want 512/50",
			refined.TokensPerSegment, refined.SegmentOverlap)
	}
	if refined.Instructions == baseline.Instructions {
		t.Error("refined and baseline instructions must differ")
	}

	if _, err := Strategy("bogus").Config(); err == nil {
		t.Error("Config() error = nil for an unknown strategy")
	}
}
