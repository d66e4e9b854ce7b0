package download

import (
	"context"
	"errors"
	"fmt"
	"path"

	"cloud.google.com/go/storage"

	"github.com/Lllllllleong/pdfworkbench/internal/gcp"
)

// GCSSink uploads into a bucket, under an optional prefix. Existing objects
// are never overwritten.
type GCSSink struct {
	client *storage.Client
	bucket string
	prefix string
	policy gcp.RetryPolicy
}

func NewGCSSink(ctx context.Context, bucket, prefix string) (*GCSSink, error) {
	client, err := gcp.NewStorageClient(ctx)
	if err != nil {
		return nil, err
	}
	return &GCSSink{client: client, bucket: bucket, prefix: prefix, policy: gcp.DefaultRetryPolicy}, nil
}

func (s *GCSSink) objectName(name string) string {
	if s.prefix == "" {
		return path.Base(name)
	}
	return path.Join(s.prefix, path.Base(name))
}

func (s *GCSSink) Put(ctx context.Context, name, mimeType string, data []byte) (string, error) {
	object := s.objectName(name)
	uri := fmt.Sprintf("gs://%s/%s", s.bucket, object)
	err := gcp.UploadWithRetry(ctx, s.client.Bucket(s.bucket), object, mimeType, data, s.policy)
	if errors.Is(err, gcp.ErrObjectExists) {
		return uri, ErrAlreadyExists
	}
	if err != nil {
		return "", err
	}
	return uri, nil
}

func (s *GCSSink) Close() error {
	return s.client.Close()
}
