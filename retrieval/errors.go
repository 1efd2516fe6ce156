package retrieval

import (
	"fmt"
)

// ErrorCode represents specific error types in retrieval operations
type ErrorCode string

const (
	ErrCodeEmptyCorpus     ErrorCode = "EMPTY_CORPUS"
	ErrCodeBuildFailed     ErrorCode = "BUILD_FAILED"
	ErrCodeSearchFailed    ErrorCode = "SEARCH_FAILED"
	ErrCodeEmbeddingFailed ErrorCode = "EMBEDDING_FAILED"
	ErrCodeInvalidQuery    ErrorCode = "INVALID_QUERY"
)

// RetrievalError represents an error that occurred while building or
// querying a retrieval index
type RetrievalError struct {
	Code    ErrorCode
	Op      string
	Message string
	Err     error
}

func (e *RetrievalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (operation: %s) - %v", e.Code, e.Message, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s (operation: %s)", e.Code, e.Message, e.Op)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// Helper functions to create errors
func ErrEmptyCorpus(op string) error {
	return &RetrievalError{
		Code:    ErrCodeEmptyCorpus,
		Op:      op,
		Message: "cannot build an index over an empty corpus",
	}
}

func NewBuildFailedError(op string, err error) error {
	return &RetrievalError{
		Code:    ErrCodeBuildFailed,
		Op:      op,
		Message: "failed to build index",
		Err:     err,
	}
}

func NewSearchFailedError(op string, err error) error {
	return &RetrievalError{
		Code:    ErrCodeSearchFailed,
		Op:      op,
		Message: "failed to perform similarity search",
		Err:     err,
	}
}

func NewEmbeddingFailedError(op string, err error) error {
	return &RetrievalError{
		Code:    ErrCodeEmbeddingFailed,
		Op:      op,
		Message: "failed to generate embeddings",
		Err:     err,
	}
}

func NewInvalidQueryError(op string, details string) error {
	return &RetrievalError{
		Code:    ErrCodeInvalidQuery,
		Op:      op,
		Message: fmt.Sprintf("invalid query: %s", details),
	}
}
