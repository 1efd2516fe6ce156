package document

import "fmt"

// IngestionError represents errors that can occur while segmenting a document
type IngestionError struct {
	Op      string
	Message string
	Err     error
}

func (e *IngestionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("document.%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("document.%s: %s", e.Op, e.Message)
}

func (e *IngestionError) Unwrap() error {
	return e.Err
}

// ErrEmptyDocument reports a document with no text to segment.
func ErrEmptyDocument(op string) error {
	return &IngestionError{
		Op:      op,
		Message: "document text is empty",
	}
}
