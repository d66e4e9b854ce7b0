package gcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// ErrObjectExists is returned by SaveAtomically when the object is already there.
var ErrObjectExists = errors.New("object already exists")

// RetryPolicy bounds UploadWithRetry.
type RetryPolicy struct {
	MaxRetries   int
	Backoff      time.Duration // first wait, doubled after every failure
	WriteTimeout time.Duration // per attempt
}

// DefaultRetryPolicy: four attempts, 1s doubling backoff, 50s per attempt.
var DefaultRetryPolicy = RetryPolicy{MaxRetries: 4, Backoff: time.Second, WriteTimeout: 50 * time.Second}

// NewStorageClient creates a Cloud Storage client from ambient credentials.
func NewStorageClient(ctx context.Context) (*storage.Client, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Storage client: %w", err)
	}
	return client, nil
}

// SaveAtomically writes data to objectName only if it doesn't already exist.
func SaveAtomically(ctx context.Context, bucket *storage.BucketHandle, objectName, contentType string, data []byte) error {
	writer := bucket.Object(objectName).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		_ = writer.Close()
		if isPreconditionFailed(err) {
			return ErrObjectExists
		}
		return fmt.Errorf("failed to write to GCS: %w", err)
	}
	if err := writer.Close(); err != nil {
		if isPreconditionFailed(err) {
			return ErrObjectExists
		}
		return fmt.Errorf("failed to finalize GCS write: %w", err)
	}
	return nil
}

// UploadWithRetry calls SaveAtomically until it succeeds, the object turns out
// to exist, or the policy is exhausted.
func UploadWithRetry(ctx context.Context, bucket *storage.BucketHandle, objectName, contentType string, data []byte, policy RetryPolicy) error {
	return retry(ctx, policy, objectName, func(ctx context.Context) error {
		return SaveAtomically(ctx, bucket, objectName, contentType, data)
	})
}

func retry(ctx context.Context, policy RetryPolicy, objectName string, attempt func(ctx context.Context) error) error {
	if policy.MaxRetries <= 0 {
		policy.MaxRetries = 1
	}
	backoff := policy.Backoff
	var lastErr error

	for i := 0; i < policy.MaxRetries; i++ {
		err := func() error {
			writeCtx, cancel := ctx, context.CancelFunc(func() {})
			if policy.WriteTimeout > 0 {
				writeCtx, cancel = context.WithTimeout(ctx, policy.WriteTimeout)
			}
			defer cancel()
			return attempt(writeCtx)
		}()
		if err == nil || errors.Is(err, ErrObjectExists) {
			return err
		}

		lastErr = err
		if i == policy.MaxRetries-1 {
			break
		}
		slog.Warn(
			"Upload failed, will retry.",
			"gcsObject", objectName,
			"attempt", i+1,
			"maxRetries", policy.MaxRetries,
			"backoff", backoff.String(),
			"error", err,
		)

		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			slog.Error("Context cancelled during backoff. Aborting retries.", "gcsObject", objectName, "error", ctx.Err())
			return ctx.Err()
		}
	}
	slog.Error("Upload failed after all retries.", "gcsObject", objectName, "error", lastErr)
	return fmt.Errorf("upload for %s failed after all retries: %w", objectName, lastErr)
}

func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed
}
