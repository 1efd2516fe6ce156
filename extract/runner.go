package extract

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Abraxas-365/finextract/document"
	"github.com/Abraxas-365/finextract/llm"
	"github.com/Abraxas-365/finextract/retrieval"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one (document, strategy) task. Failed tasks
// keep an all-absent record plus an error tag, so the result set always
// maps 1:1 to the input documents.
type Result struct {
	Ticker   string           `json:"ticker"`
	Strategy Strategy         `json:"strategy"`
	Record   FinancialMetrics `json:"record"`
	ErrKind  string           `json:"error_kind,omitempty"`
	ErrMsg   string           `json:"error,omitempty"`
}

// Results is the completed result set of one run.
type Results []Result

// ByTicker groups results for the persisted artifact: ticker to strategy
// to result, matching one record per document per strategy.
func (rs Results) ByTicker() map[string]map[Strategy]Result {
	grouped := make(map[string]map[Strategy]Result)
	for _, r := range rs {
		if grouped[r.Ticker] == nil {
			grouped[r.Ticker] = make(map[Strategy]Result)
		}
		grouped[r.Ticker][r.Strategy] = r
	}
	return grouped
}

// ErrNoDocuments is the run-level failure for an empty input set.
var ErrNoDocuments = errors.New("no input documents to extract")

// ErrBackendUnreachable is the run-level failure reported when every
// single task failed against the generation backend.
var ErrBackendUnreachable = errors.New("generation backend unreachable for every document")

// Runner executes document tasks on a bounded worker pool. Document
// tasks are independent; each one runs its full segment, index, query,
// generate chain sequentially.
type Runner struct {
	extractors []*Extractor
	workers    int
	timeout    time.Duration
}

// NewRunner creates a runner. workers bounds concurrent document tasks;
// timeout bounds each (document, strategy) task, covering its embedding
// and generation calls.
func NewRunner(extractors []*Extractor, workers int, timeout time.Duration) *Runner {
	if workers <= 0 {
		workers = 4
	}
	return &Runner{
		extractors: extractors,
		workers:    workers,
		timeout:    timeout,
	}
}

// Run extracts every document with every configured strategy. Per-task
// failures are recorded into the result set and never abort the run; a
// task that exceeds the timeout is aborted for that document only.
// Result ordering is normalized afterwards, not during collection.
func (r *Runner) Run(ctx context.Context, docs []document.Document) (Results, error) {
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}

	var (
		mu      sync.Mutex
		results Results
	)

	g := new(errgroup.Group)
	g.SetLimit(r.workers)

	for _, doc := range docs {
		doc := doc
		g.Go(func() error {
			for _, ex := range r.extractors {
				res := r.runTask(ctx, ex, doc)
				mu.Lock()
				results = append(results, res)
				mu.Unlock()
			}
			return nil
		})
	}

	// Workers record their own failures; Wait only synchronizes
	_ = g.Wait()

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Ticker != results[j].Ticker {
			return results[i].Ticker < results[j].Ticker
		}
		return results[i].Strategy < results[j].Strategy
	})

	if allBackendFailures(results) {
		return results, ErrBackendUnreachable
	}

	return results, nil
}

func (r *Runner) runTask(ctx context.Context, ex *Extractor, doc document.Document) Result {
	taskCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	rec, err := ex.Extract(taskCtx, doc)
	res := Result{
		Ticker:   doc.Ticker,
		Strategy: ex.Strategy(),
		Record:   rec,
	}
	if err != nil {
		res.ErrKind = errKind(err)
		res.ErrMsg = err.Error()
	}
	return res
}

// errKind maps an error to its taxonomy tag for the results artifact.
func errKind(err error) string {
	var (
		ingErr *document.IngestionError
		retErr *retrieval.RetrievalError
		genErr *llm.GenerationError
		valErr *ValidationError
	)
	switch {
	case errors.As(err, &ingErr):
		return "IngestionError"
	case errors.As(err, &retErr):
		return "RetrievalError"
	case errors.As(err, &valErr):
		return "ValidationError"
	case errors.As(err, &genErr):
		return "GenerationError"
	case errors.Is(err, context.DeadlineExceeded):
		return "GenerationError"
	default:
		return "Error"
	}
}

func allBackendFailures(results Results) bool {
	for _, r := range results {
		if r.ErrKind != "GenerationError" {
			return false
		}
	}
	return len(results) > 0
}
