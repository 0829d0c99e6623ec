package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"

	"identity-service/pkg/xerrors"
)

// retryRead runs an idempotent lookup and retries it once on a transient
// store error. Domain outcomes (not-found sentinels) are terminal and
// returned immediately; writes are never retried.
func retryRead[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	var out T
	backoff := retry.WithMaxRetries(1, retry.NewConstant(50*time.Millisecond))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err == nil {
			out = v
			return nil
		}
		if errors.Is(err, xerrors.ErrAccountNotFound) || errors.Is(err, xerrors.ErrTicketNotFound) {
			return err
		}
		return retry.RetryableError(err)
	})
	return out, err
}
