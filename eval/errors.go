package eval

import "fmt"

// EvaluationError represents errors that can occur while scoring
// extraction results against the reference dataset
type EvaluationError struct {
	Op      string
	Ticker  string
	Code    string
	Message string
	Err     error
}

func (e *EvaluationError) Error() string {
	if e.Ticker != "" {
		return fmt.Sprintf("eval.%s [%s]: %s", e.Op, e.Ticker, e.Message)
	}
	return fmt.Sprintf("eval.%s: %s", e.Op, e.Message)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeMissingReference = "MissingReference"
	ErrCodeBadReferenceFile = "BadReferenceFile"
)

// ErrMissingReference reports a record whose key has no reference row.
func ErrMissingReference(ticker string) error {
	return &EvaluationError{
		Op:      "evaluate",
		Ticker:  ticker,
		Code:    ErrCodeMissingReference,
		Message: "no reference record for ticker",
	}
}
