package assetstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/austral-labs/snippet-engine-go/internal/fault"
)

// MinioStore keeps snippet text in an S3-compatible bucket, keyed by
// asset path.
type MinioStore struct {
	client *minio.Client
	bucket string
}

func NewMinioStore(client *minio.Client, bucket string) (*MinioStore, error) {
	if client == nil {
		return nil, errors.New("minio client is required")
	}
	if strings.TrimSpace(bucket) == "" {
		return nil, errors.New("bucket is required")
	}
	return &MinioStore{client: client, bucket: bucket}, nil
}

func (s *MinioStore) Get(ctx context.Context, path string) (string, error) {
	key := objectKey(path)
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("%w: fetch asset %s: %v", fault.ErrUpstream, path, err)
	}
	defer func() { _ = obj.Close() }()

	body, err := io.ReadAll(io.LimitReader(obj, maxAssetBytes))
	if err != nil {
		if isNoSuchKey(err) {
			return "", fmt.Errorf("%w: asset %s", fault.ErrNotFound, path)
		}
		return "", fmt.Errorf("%w: read asset %s: %v", fault.ErrUpstream, path, err)
	}
	return string(body), nil
}

func (s *MinioStore) Put(ctx context.Context, path, text string) (WriteOutcome, error) {
	key := objectKey(path)

	outcome := Updated
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		if !isNoSuchKey(err) {
			return "", fmt.Errorf("%w: stat asset %s: %v", fault.ErrUpstream, path, err)
		}
		outcome = Created
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, strings.NewReader(text), int64(len(text)), minio.PutObjectOptions{
		ContentType: "text/plain; charset=utf-8",
	})
	if err != nil {
		return "", fmt.Errorf("%w: write asset %s: %v", fault.ErrUpstream, path, err)
	}
	return outcome, nil
}

func objectKey(path string) string {
	return strings.TrimLeft(path, "/")
}

func isNoSuchKey(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == 404
}
