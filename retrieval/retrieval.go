package retrieval

import (
	"context"

	"github.com/Abraxas-365/finextract/document"
	"github.com/Abraxas-365/finextract/embedding"
)

// Match pairs a retrieved segment with its similarity score. Higher
// scores are better. Ordinal is the segment's position in the corpus the
// index was built from; equal scores are returned in ordinal order.
type Match struct {
	Segment document.Segment `json:"segment"`
	Score   float32          `json:"score"`
	Ordinal int              `json:"ordinal"`
}

// Store is the vector backend an Index is built on. Implementations must
// return matches ordered by descending score with ties broken by
// ascending ordinal.
type Store interface {
	// Add appends segments and their vectors; ordinals follow insertion order
	Add(ctx context.Context, segments []document.Segment, vectors [][]float32) error

	// Search returns the k nearest segments to the vector
	Search(ctx context.Context, vector []float32, k int) ([]Match, error)

	// Reset removes all indexed segments
	Reset(ctx context.Context) error
}

// Index is a similarity-searchable structure over the segments of one
// corpus. An Index is built for exactly one document per extraction run.
type Index struct {
	store    Store
	embedder embedding.Embedder
	size     int
	opts     *Options
}

// Build embeds every segment of the corpus exactly once and indexes the
// vectors. An empty corpus is an error: extraction must never run over
// zero segments.
func Build(ctx context.Context, store Store, embedder embedding.Embedder, corpus document.Corpus, opts ...Option) (*Index, error) {
	if len(corpus) == 0 {
		return nil, ErrEmptyCorpus("Build")
	}

	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	texts := make([]string, len(corpus))
	for i, seg := range corpus {
		texts[i] = seg.Text
	}

	vectors, err := embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, NewEmbeddingFailedError("Build", err)
	}

	if err := store.Reset(ctx); err != nil {
		return nil, NewBuildFailedError("Build", err)
	}
	if err := store.Add(ctx, []document.Segment(corpus), vectors); err != nil {
		return nil, NewBuildFailedError("Build", err)
	}

	return &Index{
		store:    store,
		embedder: embedder,
		size:     len(corpus),
		opts:     options,
	}, nil
}

// Size returns the number of indexed segments.
func (ix *Index) Size() int {
	return ix.size
}

// Query embeds the query text once and returns the k highest-scoring
// segments. k is clamped to the corpus size.
func (ix *Index) Query(ctx context.Context, text string, k int) ([]Match, error) {
	if k <= 0 {
		return nil, NewInvalidQueryError("Query", "k must be positive")
	}
	if k > ix.size {
		k = ix.size
	}

	vector, err := ix.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, NewEmbeddingFailedError("Query", err)
	}

	matches, err := ix.store.Search(ctx, vector, k)
	if err != nil {
		return nil, NewSearchFailedError("Query", err)
	}

	if ix.opts.ScoreThreshold > 0 {
		kept := matches[:0]
		for _, m := range matches {
			if m.Score >= ix.opts.ScoreThreshold {
				kept = append(kept, m)
			}
		}
		matches = kept
	}

	return matches, nil
}
