package extract

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Abraxas-365/finextract/document"
	"github.com/Abraxas-365/finextract/llm"
	"github.com/Abraxas-365/finextract/retrieval"
)

func testSegment(text, section string) document.Segment {
	return document.Segment{Text: text, Section: section}
}

// fakeLLM serves a scripted sequence of responses and errors.
type fakeLLM struct {
	mu        sync.Mutex
	responses []fakeResponse
	calls     int
}

type fakeResponse struct {
	content string
	args    string
	err     error
}

func (f *fakeLLM) Chat(ctx context.Context, messages []llm.Message, opts ...llm.Option) (*llm.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls >= len(f.responses) {
		return nil, &llm.GenerationError{Op: "chat", Code: llm.ErrCodeInternal, Message: "script exhausted"}
	}
	resp := f.responses[f.calls]
	f.calls++

	if resp.err != nil {
		return nil, resp.err
	}
	msg := &llm.Message{Role: llm.RoleAssistant, Content: resp.content}
	if resp.args != "" {
		msg.FuncCall = &llm.FunctionCall{Name: RecordFunctionName, Arguments: resp.args}
	}
	return msg, nil
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	msg, err := f.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
	if err != nil {
		return "", err
	}
	return msg.Content, nil
}

func transientErr() error {
	return &llm.GenerationError{Op: "chat", Code: llm.ErrCodeRateLimitExceeded, Message: "throttled"}
}

func fatalErr() error {
	return &llm.GenerationError{Op: "chat", Code: llm.ErrCodeInvalidInput, Message: "bad request"}
}

var testMatches = []retrieval.Match{
	{Segment: testSegment("North America revenue was $1,234 million.", "item 7")},
	{Segment: testSegment("Depreciation and amortization was $89 million.", "")},
}

const validArgs = `{"company_ticker":"WRONG","cik":"320193","fiscal_year":2023,"north_america_revenue":1234}`

func TestGenerator_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("Valid tool-call response", func(t *testing.T) {
		backend := &fakeLLM{responses: []fakeResponse{{args: validArgs}}}
		g := NewGenerator(backend)

		rec, err := g.Generate(ctx, testMatches, baselineInstructions, "AAPL")
		if err != nil {
			t.Fatalf("Generate() unexpected error = %v", err)
		}
		if rec.CompanyTicker != "AAPL" {
			t.Errorf("CompanyTicker = %q, want the document ticker AAPL", rec.CompanyTicker)
		}
		if rec.CIK != "0000320193" {
			t.Errorf("CIK = %q, want 0000320193", rec.CIK)
		}
		if rec.NorthAmericaRevenue == nil || *rec.NorthAmericaRevenue != 1234 {
			t.Errorf("NorthAmericaRevenue = %v, want 1234", rec.NorthAmericaRevenue)
		}
		if backend.calls != 1 {
			t.Errorf("backend called %d times, want 1", backend.calls)
		}
	})

	t.Run("Content JSON when backend has no tool calls", func(t *testing.T) {
		backend := &fakeLLM{responses: []fakeResponse{
			{content: "Here are the values:\n```json\n" + validArgs + "\n```"},
		}}
		g := NewGenerator(backend)

		rec, err := g.Generate(ctx, testMatches, baselineInstructions, "AAPL")
		if err != nil {
			t.Fatalf("Generate() unexpected error = %v", err)
		}
		if rec.NorthAmericaRevenue == nil {
			t.Error("NorthAmericaRevenue absent, want value parsed from content")
		}
	})

	t.Run("Invalid response recovers on reformat retry", func(t *testing.T) {
		backend := &fakeLLM{responses: []fakeResponse{
			{content: "I cannot answer in that format."},
			{args: validArgs},
		}}
		g := NewGenerator(backend)

		rec, err := g.Generate(ctx, testMatches, baselineInstructions, "AAPL")
		if err != nil {
			t.Fatalf("Generate() unexpected error = %v", err)
		}
		if backend.calls != 2 {
			t.Errorf("backend called %d times, want 2", backend.calls)
		}
		if rec.NorthAmericaRevenue == nil {
			t.Error("NorthAmericaRevenue absent after successful retry")
		}
	})

	t.Run("Second invalid response yields empty record", func(t *testing.T) {
		backend := &fakeLLM{responses: []fakeResponse{
			{content: "no json here"},
			{content: "still no json"},
		}}
		g := NewGenerator(backend)

		rec, err := g.Generate(ctx, testMatches, baselineInstructions, "AAPL")
		if err == nil {
			t.Fatal("Generate() error = nil, want ValidationError")
		}
		if !IsValidation(err) {
			t.Errorf("Generate() error = %v, want ValidationError", err)
		}
		if rec.CompanyTicker != "AAPL" {
			t.Errorf("CompanyTicker = %q, want AAPL on the empty record", rec.CompanyTicker)
		}
		if rec.NorthAmericaRevenue != nil || rec.FiscalYear != nil {
			t.Error("empty record has populated fields")
		}
	})

	t.Run("Transient failure is retried", func(t *testing.T) {
		backend := &fakeLLM{responses: []fakeResponse{
			{err: transientErr()},
			{args: validArgs},
		}}
		g := NewGenerator(backend, WithBackoff(time.Millisecond))

		_, err := g.Generate(ctx, testMatches, baselineInstructions, "AAPL")
		if err != nil {
			t.Fatalf("Generate() unexpected error = %v", err)
		}
		if backend.calls != 2 {
			t.Errorf("backend called %d times, want 2", backend.calls)
		}
	})

	t.Run("Non-transient failure is not retried", func(t *testing.T) {
		backend := &fakeLLM{responses: []fakeResponse{
			{err: fatalErr()},
			{args: validArgs},
		}}
		g := NewGenerator(backend, WithBackoff(time.Millisecond))

		rec, err := g.Generate(ctx, testMatches, baselineInstructions, "AAPL")
		if err == nil {
			t.Fatal("Generate() error = nil, want generation error")
		}
		if backend.calls != 1 {
			t.Errorf("backend called %d times, want 1", backend.calls)
		}
		if rec.CompanyTicker != "AAPL" {
			t.Errorf("CompanyTicker = %q, want AAPL on the empty record", rec.CompanyTicker)
		}
	})

	t.Run("Prompt names every record key for tool-less backends", func(t *testing.T) {
		keys := []string{
			"company_ticker",
			"cik",
			"fiscal_year",
			"north_america_revenue",
			"depreciation_amortization",
			"lease_liabilities",
		}

		for _, instructions := range []string{baselineInstructions, refinedInstructions} {
			prompt := buildPrompt(testMatches, instructions)
			for _, key := range keys {
				if !strings.Contains(prompt, `"`+key+`"`) {
					t.Errorf("prompt does not name the key %q", key)
				}
				if !strings.Contains(reformatInstruction, `"`+key+`"`) {
					t.Errorf("reformat instruction does not name the key %q", key)
				}
			}
		}
	})

	t.Run("Retries exhausted surfaces the last error", func(t *testing.T) {
		backend := &fakeLLM{responses: []fakeResponse{
			{err: transientErr()},
			{err: transientErr()},
			{err: transientErr()},
		}}
		g := NewGenerator(backend,
			WithMaxTransientRetries(2),
			WithBackoff(time.Millisecond))

		_, err := g.Generate(ctx, testMatches, baselineInstructions, "AAPL")
		if err == nil {
			t.Fatal("Generate() error = nil, want generation error")
		}
		if !llm.IsTransient(err) {
			t.Errorf("Generate() error = %v, want the transient backend error", err)
		}
		if backend.calls != 3 {
			t.Errorf("backend called %d times, want 3", backend.calls)
		}
	})
}
