package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Abraxas-365/finextract/llm"
	"github.com/Abraxas-365/finextract/retrieval"
)

// GeneratorOptions configures retry behavior and generation limits.
type GeneratorOptions struct {
	// MaxTransientRetries bounds retries of transient backend failures
	// (timeouts, rate limits) per call
	MaxTransientRetries int
	// Backoff is the base delay between transient retries; the delay
	// grows linearly with the attempt number
	Backoff time.Duration
	// MaxTokens caps the generated response
	MaxTokens int
}

// GeneratorOption is a function type to modify GeneratorOptions
type GeneratorOption func(*GeneratorOptions)

func WithMaxTransientRetries(n int) GeneratorOption {
	return func(o *GeneratorOptions) {
		o.MaxTransientRetries = n
	}
}

func WithBackoff(d time.Duration) GeneratorOption {
	return func(o *GeneratorOptions) {
		o.Backoff = d
	}
}

func WithGenerationMaxTokens(n int) GeneratorOption {
	return func(o *GeneratorOptions) {
		o.MaxTokens = n
	}
}

// Generator issues schema-constrained generation requests and validates
// the responses into typed records.
type Generator struct {
	backend llm.LLM
	opts    *GeneratorOptions
}

func NewGenerator(backend llm.LLM, opts ...GeneratorOption) *Generator {
	options := &GeneratorOptions{
		MaxTransientRetries: 2,
		Backoff:             2 * time.Second,
		MaxTokens:           1024,
	}
	for _, opt := range opts {
		opt(options)
	}
	return &Generator{
		backend: backend,
		opts:    options,
	}
}

// Generate builds a single instruction embedding the retrieved context
// and the target schema, sends it to the backend, and validates the
// response. A response that fails validation is retried once with a
// stricter reformatting instruction; a second failure yields a record
// with all optional fields absent plus the ValidationError, which is
// non-fatal for the run.
func (g *Generator) Generate(ctx context.Context, matches []retrieval.Match, instructions, ticker string) (FinancialMetrics, error) {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: buildPrompt(matches, instructions)},
	}

	msg, err := g.chatWithRetry(ctx, messages)
	if err != nil {
		return EmptyRecord(ticker), err
	}

	rec, parseErr := parseResponse(msg)
	if parseErr == nil {
		return finalize(rec, ticker), nil
	}

	// One stricter retry before giving up on this document
	messages = append(messages,
		*msg,
		llm.Message{Role: llm.RoleUser, Content: reformatInstruction},
	)

	msg, err = g.chatWithRetry(ctx, messages)
	if err != nil {
		return EmptyRecord(ticker), err
	}

	rec, parseErr = parseResponse(msg)
	if parseErr != nil {
		return EmptyRecord(ticker), &ValidationError{
			Op:      "generate",
			Message: fmt.Sprintf("response failed validation after reformat retry for %s", ticker),
			Err:     parseErr,
		}
	}

	return finalize(rec, ticker), nil
}

// chatWithRetry calls the backend, retrying transient failures with
// bounded linear backoff.
func (g *Generator) chatWithRetry(ctx context.Context, messages []llm.Message) (*llm.Message, error) {
	opts := []llm.Option{
		llm.WithTemperature(0),
		llm.WithMaxTokens(g.opts.MaxTokens),
		llm.WithFunctions([]llm.Function{RecordFunction()}),
		llm.WithFunctionCall(RecordFunctionName),
	}

	var lastErr error
	for attempt := 0; attempt <= g.opts.MaxTransientRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, &llm.GenerationError{
					Op:      "chatWithRetry",
					Code:    llm.ErrCodeTimeout,
					Message: "canceled while backing off",
					Err:     ctx.Err(),
				}
			case <-time.After(time.Duration(attempt) * g.opts.Backoff):
			}
		}

		msg, err := g.backend.Chat(ctx, messages, opts...)
		if err == nil {
			return msg, nil
		}
		lastErr = err
		if !llm.IsTransient(err) {
			break
		}
	}

	return nil, lastErr
}

// buildPrompt concatenates the retrieved segments under the instruction
// set and closes with the exact output shape, so backends that cannot be
// forced into the function call still answer with the right JSON keys.
// Section tags are preserved so the backend sees where table-bearing
// context came from.
func buildPrompt(matches []retrieval.Match, instructions string) string {
	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n\nContext from the filing:\n")
	for i, m := range matches {
		sb.WriteString(fmt.Sprintf("\n--- excerpt %d", i+1))
		if m.Segment.Section != "" {
			sb.WriteString(" [" + m.Segment.Section + "]")
		}
		sb.WriteString(" ---\n")
		sb.WriteString(m.Segment.Text)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(outputShape)
	return sb.String()
}

// parseResponse validates a backend message into a record. Tool-call
// arguments take precedence; backends without tool calls answer with the
// JSON object in the message content.
func parseResponse(msg *llm.Message) (FinancialMetrics, error) {
	if msg == nil {
		return FinancialMetrics{}, &ValidationError{
			Op:      "parse_response",
			Message: "empty backend response",
		}
	}
	if msg.FuncCall != nil {
		return ParseRecord(msg.FuncCall.Arguments)
	}
	return ParseRecord(msg.Content)
}

// finalize enforces the record invariants: the key field always equals
// the document identifier that produced it.
func finalize(rec FinancialMetrics, ticker string) FinancialMetrics {
	rec.CompanyTicker = ticker
	rec.CIK = NormalizeCIK(rec.CIK)
	return rec
}

// IsValidation reports whether err is a schema validation failure.
func IsValidation(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}
