// Package inmemory provides a brute-force in-memory retrieval store.
// It is the default index backend: a corpus lives only for one
// extraction run, so nothing needs to persist.
package inmemory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/Abraxas-365/finextract/document"
	"github.com/Abraxas-365/finextract/retrieval"
)

type Store struct {
	mu       sync.RWMutex
	segments []document.Segment
	vectors  [][]float32
}

func NewStore() *Store {
	return &Store{}
}

// Add appends segments and their vectors in insertion order.
func (s *Store) Add(ctx context.Context, segments []document.Segment, vectors [][]float32) error {
	if len(segments) != len(vectors) {
		return retrieval.NewBuildFailedError("Add",
			fmt.Errorf("segment/vector count mismatch: %d != %d", len(segments), len(vectors)))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.segments = append(s.segments, segments...)
	s.vectors = append(s.vectors, vectors...)
	return nil
}

// Search returns the k nearest segments by cosine similarity. Equal
// scores keep the original segment order.
func (s *Store) Search(ctx context.Context, vector []float32, k int) ([]retrieval.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]retrieval.Match, len(s.vectors))
	for i := range s.vectors {
		matches[i] = retrieval.Match{
			Segment: s.segments[i],
			Score:   cosine(s.vectors[i], vector),
			Ordinal: i,
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Ordinal < matches[j].Ordinal
	})

	if k > len(matches) {
		k = len(matches)
	}
	return matches[:k], nil
}

func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.segments = nil
	s.vectors = nil
	return nil
}

func cosine(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
