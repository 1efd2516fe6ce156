package extract

import (
	"context"
	"fmt"

	"github.com/Abraxas-365/finextract/document"
	"github.com/Abraxas-365/finextract/embedding"
	"github.com/Abraxas-365/finextract/retrieval"
)

// Strategy selects how a filing is segmented, retrieved and prompted.
// The set is closed: adding a strategy means adding a variant and its
// configuration here.
type Strategy string

const (
	// Baseline uses flat token windows and narrow retrieval. Flat
	// windowing destroys row/column relationships inside financial
	// tables, so it is the accuracy floor the refined strategy is
	// measured against.
	Baseline Strategy = "baseline"

	// Refined uses structure-aware segmentation over allow-listed
	// sections with wider retrieval; table-heavy answers benefit from
	// broader recall at the cost of more tokens.
	Refined Strategy = "refined"
)

// StrategyConfig is the per-variant configuration.
type StrategyConfig struct {
	Mode             document.Mode
	TopK             int
	TokensPerSegment int
	SegmentOverlap   int
	Instructions     string
}

// Config returns the configuration for a strategy.
func (s Strategy) Config() (StrategyConfig, error) {
	switch s {
	case Baseline:
		return StrategyConfig{
			Mode:             document.ModeFlat,
			TopK:             5,
			TokensPerSegment: 256,
			SegmentOverlap:   20,
			Instructions:     baselineInstructions,
		}, nil
	case Refined:
		return StrategyConfig{
			Mode:             document.ModeStructured,
			TopK:             10,
			TokensPerSegment: 512,
			SegmentOverlap:   50,
			Instructions:     refinedInstructions,
		}, nil
	default:
		return StrategyConfig{}, fmt.Errorf("unknown strategy: %q", s)
	}
}

// Strategies parses a mode flag value into the strategies to run.
func Strategies(mode string) ([]Strategy, error) {
	switch mode {
	case "baseline":
		return []Strategy{Baseline}, nil
	case "refined":
		return []Strategy{Refined}, nil
	case "both", "":
		return []Strategy{Baseline, Refined}, nil
	default:
		return nil, fmt.Errorf("unknown mode: %q (want baseline, refined or both)", mode)
	}
}

// StoreProvider returns a fresh (or freshly namespaced) retrieval store
// for one document task. Each corpus backs exactly one index.
type StoreProvider func(doc document.Document) retrieval.Store

// Extractor composes segmentation, retrieval and generation for one
// strategy. Extractors are safe for concurrent use across documents.
type Extractor struct {
	strategy  Strategy
	cfg       StrategyConfig
	segmenter *document.Segmenter
	embedder  embedding.Embedder
	stores    StoreProvider
	generator *Generator
}

// NewExtractor builds an extractor for the given strategy. The embedding
// model name is used only to pick a tokenizer for windowing.
func NewExtractor(strategy Strategy, embedder embedding.Embedder, stores StoreProvider, generator *Generator, embedModel string) (*Extractor, error) {
	cfg, err := strategy.Config()
	if err != nil {
		return nil, err
	}

	window, err := document.NewTokenSplitter(cfg.TokensPerSegment, cfg.SegmentOverlap, embedModel)
	if err != nil {
		return nil, err
	}

	return &Extractor{
		strategy:  strategy,
		cfg:       cfg,
		segmenter: document.NewSegmenter(window, document.NewSectionSplitter(window)),
		embedder:  embedder,
		stores:    stores,
		generator: generator,
	}, nil
}

// Strategy returns the extractor's strategy.
func (e *Extractor) Strategy() Strategy {
	return e.strategy
}

// Extract runs the full chain for one document: segment, build the
// index, retrieve context for the field instructions, generate the
// record. The returned record's ticker always equals the document's,
// even when err is a non-fatal ValidationError.
func (e *Extractor) Extract(ctx context.Context, doc document.Document) (FinancialMetrics, error) {
	corpus, err := e.segmenter.Segment(doc, e.cfg.Mode)
	if err != nil {
		return EmptyRecord(doc.Ticker), err
	}

	index, err := retrieval.Build(ctx, e.stores(doc), e.embedder, corpus)
	if err != nil {
		return EmptyRecord(doc.Ticker), err
	}

	matches, err := index.Query(ctx, e.cfg.Instructions, e.cfg.TopK)
	if err != nil {
		return EmptyRecord(doc.Ticker), err
	}

	return e.generator.Generate(ctx, matches, e.cfg.Instructions, doc.Ticker)
}
