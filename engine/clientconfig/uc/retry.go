package uc

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/floworx/floworx/pkg/logger"
)

// RetryPolicy bounds how often a conflicting update is re-run.
type RetryPolicy struct {
	Retries   uint64
	BaseDelay time.Duration
}

const defaultRetryBaseDelay = 50 * time.Millisecond

// UpdateWithRetry re-runs the whole update, including a fresh read, when the
// write loses a version race. An explicit IfMatch is never retried since the
// caller pinned the version it expects.
func UpdateWithRetry(ctx context.Context, upd *Update, in *UpdateInput, policy RetryPolicy) (*UpdateOutput, error) {
	if in != nil && in.IfMatch != nil {
		return upd.Execute(ctx, in)
	}
	base := policy.BaseDelay
	if base <= 0 {
		base = defaultRetryBaseDelay
	}
	log := logger.FromContext(ctx)
	var out *UpdateOutput
	attempt := 0
	backoff := retry.WithMaxRetries(policy.Retries, retry.NewExponential(base))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		res, err := upd.Execute(ctx, in)
		if err != nil {
			if isConflict(err) {
				log.Debug("retrying after version conflict", "attempt", attempt)
				return retry.RetryableError(err)
			}
			return err
		}
		out = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func isConflict(err error) bool {
	return errors.Is(err, ErrVersionConflict)
}
