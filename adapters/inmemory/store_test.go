package inmemory

import (
	"context"
	"testing"

	"github.com/Abraxas-365/finextract/document"
)

func addSegments(t *testing.T, s *Store, vectors [][]float32) {
	t.Helper()
	segments := make([]document.Segment, len(vectors))
	for i := range vectors {
		segments[i] = document.Segment{Text: string(rune('a' + i))}
	}
	if err := s.Add(context.Background(), segments, vectors); err != nil {
		t.Fatalf("Add() unexpected error = %v", err)
	}
}

func TestStore_AddMismatch(t *testing.T) {
	s := NewStore()
	err := s.Add(context.Background(),
		[]document.Segment{{Text: "a"}, {Text: "b"}},
		[][]float32{{1, 0}})
	if err == nil {
		t.Error("Add() error = nil, want count mismatch error")
	}
}

func TestStore_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("Orders by descending similarity", func(t *testing.T) {
		s := NewStore()
		addSegments(t, s, [][]float32{
			{0, 1},     // orthogonal to query
			{1, 0},     // identical to query
			{0.7, 0.7}, // diagonal
		})

		matches, err := s.Search(ctx, []float32{1, 0}, 3)
		if err != nil {
			t.Fatalf("Search() unexpected error = %v", err)
		}
		if len(matches) != 3 {
			t.Fatalf("Search() returned %d matches, want 3", len(matches))
		}
		if matches[0].Ordinal != 1 || matches[1].Ordinal != 2 || matches[2].Ordinal != 0 {
			t.Errorf("Search() order = [%d %d %d], want [1 2 0]",
				matches[0].Ordinal, matches[1].Ordinal, matches[2].Ordinal)
		}
		for i := 1; i < len(matches); i++ {
			if matches[i].Score > matches[i-1].Score {
				t.Error("Search() results are not in descending score order")
			}
		}
	})

	t.Run("Equal scores keep corpus order", func(t *testing.T) {
		s := NewStore()
		addSegments(t, s, [][]float32{
			{1, 0},
			{1, 0},
			{1, 0},
		})

		matches, err := s.Search(ctx, []float32{1, 0}, 3)
		if err != nil {
			t.Fatalf("Search() unexpected error = %v", err)
		}
		for i, m := range matches {
			if m.Ordinal != i {
				t.Errorf("match %d has ordinal %d, want %d", i, m.Ordinal, i)
			}
		}
	})

	t.Run("k larger than the index is clamped", func(t *testing.T) {
		s := NewStore()
		addSegments(t, s, [][]float32{{1, 0}, {0, 1}})

		matches, err := s.Search(ctx, []float32{1, 0}, 10)
		if err != nil {
			t.Fatalf("Search() unexpected error = %v", err)
		}
		if len(matches) != 2 {
			t.Errorf("Search() returned %d matches, want 2", len(matches))
		}
	})
}

func TestStore_Reset(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	addSegments(t, s, [][]float32{{1, 0}, {0, 1}})

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset() unexpected error = %v", err)
	}

	matches, err := s.Search(ctx, []float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("Search() unexpected error = %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("Search() after Reset returned %d matches, want 0", len(matches))
	}
}
