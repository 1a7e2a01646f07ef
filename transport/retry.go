package transport

import (
	"context"
	"time"

	"github.com/goliatone/go-carrier-sync/core"
)

const defaultMaxRetries = 2
const defaultRetryBaseDelay = 500 * time.Millisecond

// RetryingAdapter wraps another adapter with a bounded retry policy. It
// retries transient transport failures and responses with a 5xx status; the
// carrier never processed those requests, so a repeat cannot create duplicate
// remote entities. Any other response that arrived is returned as-is, and a
// 5xx that survives the last attempt is also returned so the caller can
// classify it.
type RetryingAdapter struct {
	Next       core.TransportAdapter
	MaxRetries int
	BaseDelay  time.Duration
	Logger     core.Logger

	sleep func(ctx context.Context, delay time.Duration) error
}

func NewRetryingAdapter(next core.TransportAdapter, maxRetries int) *RetryingAdapter {
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}
	return &RetryingAdapter{
		Next:       next,
		MaxRetries: maxRetries,
		BaseDelay:  defaultRetryBaseDelay,
		sleep:      waitWithContext,
	}
}

func (a *RetryingAdapter) Kind() string {
	if a == nil || a.Next == nil {
		return "retry"
	}
	return a.Next.Kind()
}

func (a *RetryingAdapter) Do(ctx context.Context, req core.TransportRequest) (core.TransportResponse, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var lastRes core.TransportResponse
	var lastErr error
	for attempt := 0; attempt <= a.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := a.BaseDelay
			if delay <= 0 {
				delay = defaultRetryBaseDelay
			}
			delay = delay * time.Duration(1<<(attempt-1))
			core.LogWithLevel(ctx, a.Logger, "info", "retrying carrier request", map[string]any{
				"attempt":  attempt,
				"delay_ms": delay.Milliseconds(),
				"url":      req.URL,
			})
			if err := a.sleepFn()(ctx, delay); err != nil {
				return core.TransportResponse{}, err
			}
		}

		res, err := a.Next.Do(ctx, req)
		if err == nil && res.StatusCode < 500 {
			return res, nil
		}
		if err != nil {
			if !core.IsTransient(err) {
				return core.TransportResponse{}, err
			}
			lastRes, lastErr = core.TransportResponse{}, err
		} else {
			lastRes, lastErr = res, nil
		}
		if ctx.Err() != nil {
			break
		}
	}
	return lastRes, lastErr
}

func (a *RetryingAdapter) sleepFn() func(ctx context.Context, delay time.Duration) error {
	if a != nil && a.sleep != nil {
		return a.sleep
	}
	return waitWithContext
}

func waitWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ core.TransportAdapter = (*RetryingAdapter)(nil)
