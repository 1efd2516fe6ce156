package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"path"

	"github.com/google/uuid"
)

// NewRunID returns the identifier under which a run's artifacts are keyed.
func NewRunID() string {
	return uuid.NewString()
}

// ResultsKey is the artifact key for a run's raw extraction results.
func ResultsKey(runID string) string {
	return path.Join("runs", runID, "extraction_results.json")
}

// EvaluationKey is the artifact key for a run's evaluation report.
func EvaluationKey(runID string) string {
	return path.Join("runs", runID, "evaluation.json")
}

// WriteJSON marshals v and stores it under key.
func WriteJSON(ctx context.Context, store DataStore, key string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return NewStorageError("WriteJSON", key, err, ErrCodeInvalidArgument, "failed to marshal artifact")
	}
	return store.Put(ctx, key, bytes.NewReader(data), WithContentType("application/json"))
}
