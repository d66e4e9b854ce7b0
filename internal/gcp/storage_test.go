package gcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func TestRetryRecoversFromTransientErrors(t *testing.T) {
	calls := 0
	err := retry(context.Background(), RetryPolicy{MaxRetries: 4, Backoff: time.Millisecond}, "obj", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryGivesUp(t *testing.T) {
	calls := 0
	err := retry(context.Background(), RetryPolicy{MaxRetries: 3, Backoff: time.Millisecond}, "obj", func(context.Context) error {
		calls++
		return errors.New("down")
	})
	assert.ErrorContains(t, err, "failed after all retries")
	assert.Equal(t, 3, calls)
}

func TestRetryDoesNotRetryExistingObject(t *testing.T) {
	calls := 0
	err := retry(context.Background(), RetryPolicy{MaxRetries: 4, Backoff: time.Millisecond}, "obj", func(context.Context) error {
		calls++
		return ErrObjectExists
	})
	assert.ErrorIs(t, err, ErrObjectExists)
	assert.Equal(t, 1, calls)
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	err := retry(ctx, RetryPolicy{MaxRetries: 4, Backoff: time.Hour}, "obj", func(context.Context) error {
		cancel()
		return errors.New("down")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsPreconditionFailed(t *testing.T) {
	assert.True(t, isPreconditionFailed(&googleapi.Error{Code: http.StatusPreconditionFailed}))
	assert.True(t, isPreconditionFailed(fmt.Errorf("wrapped: %w", &googleapi.Error{Code: 412})))
	assert.False(t, isPreconditionFailed(&googleapi.Error{Code: http.StatusForbidden}))
	assert.False(t, isPreconditionFailed(errors.New("plain")))
}
