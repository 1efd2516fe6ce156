package extract

import "fmt"

// ValidationError represents a backend response that could not be parsed
// into the target schema, after the reformatting retry
type ValidationError struct {
	Op      string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract.%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("extract.%s: %s", e.Op, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
