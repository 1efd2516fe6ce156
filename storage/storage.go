package storage

import (
	"context"
	"io"
	"time"
)

// ObjectInfo represents metadata about a stored artifact
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
	ContentType  string
}

// DataStore persists run artifacts: the raw extraction results and the
// evaluation report.
type DataStore interface {
	Put(ctx context.Context, key string, data io.Reader, options ...PutOption) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// PutOption allows customizing Put operations
type PutOption func(*PutOptions)

// PutOptions contains configuration for Put operations
type PutOptions struct {
	ContentType string
	Metadata    map[string]string
}

// WithContentType sets the content type for the artifact
func WithContentType(contentType string) PutOption {
	return func(o *PutOptions) {
		o.ContentType = contentType
	}
}

// WithMetadata sets additional metadata for the artifact
func WithMetadata(metadata map[string]string) PutOption {
	return func(o *PutOptions) {
		o.Metadata = metadata
	}
}
