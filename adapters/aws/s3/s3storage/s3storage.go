// Package s3storage persists run artifacts to an S3 bucket.
package s3storage

import (
	"context"
	"errors"
	"io"

	"github.com/Abraxas-365/finextract/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Store creates a DataStore backed by the given bucket. All keys are
// joined under prefix, which may be empty.
func NewS3Store(client *s3.Client, bucket, prefix string) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

func (s *S3Store) fullKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + "/" + key
}

func (s *S3Store) Put(ctx context.Context, key string, data io.Reader, options ...storage.PutOption) error {
	opts := &storage.PutOptions{}
	for _, opt := range options {
		opt(opts)
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.fullKey(key)),
		Body:   data,
	}

	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}

	if opts.Metadata != nil {
		input.Metadata = opts.Metadata
	}

	_, err := s.client.PutObject(ctx, input)
	if err != nil {
		return storage.NewStorageError("Put", key, err, storage.ErrCodeInternal, "failed to put object")
	}

	return nil
}

func (s *S3Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.fullKey(key)),
	}

	result, err := s.client.GetObject(ctx, input)
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, storage.NewStorageError("Get", key, err, storage.ErrCodeNotFound, "object not found")
		}
		return nil, storage.NewStorageError("Get", key, err, storage.ErrCodeInternal, "failed to get object")
	}

	return result.Body, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	input := &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.fullKey(key)),
	}

	_, err := s.client.DeleteObject(ctx, input)
	if err != nil {
		return storage.NewStorageError("Delete", key, err, storage.ErrCodeInternal, "failed to delete object")
	}

	return nil
}

func (s *S3Store) List(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.fullKey(prefix)),
	}

	var objects []storage.ObjectInfo

	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, storage.NewStorageError("List", prefix, err, storage.ErrCodeInternal, "failed to list objects")
		}

		for _, obj := range page.Contents {
			object := storage.ObjectInfo{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			}
			objects = append(objects, object)
		}
	}

	return objects, nil
}

func (s *S3Store) Exists(ctx context.Context, key string) (bool, error) {
	input := &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.fullKey(key)),
	}

	_, err := s.client.HeadObject(ctx, input)
	if err != nil {
		// HeadObject reports a missing key as NotFound, not NoSuchKey.
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return false, nil
		}
		return false, storage.NewStorageError("Exists", key, err, storage.ErrCodeInternal, "failed to check object existence")
	}

	return true, nil
}
