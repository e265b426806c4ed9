// Package gateway holds the clients for the third-party services the backend
// depends on: Stripe, Cloudinary, the face descriptor service and plain HTTP
// document downloads.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"
)

const (
	defaultAttempts = 3
	defaultDelay    = 500 * time.Millisecond
	httpTimeout     = 30 * time.Second
)

// StatusError is returned for non-2xx responses from an upstream service.
type StatusError struct {
	Service string
	Code    int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s responded with status %d", e.Service, e.Code)
}

// temporary reports whether a failed call is worth retrying: transport errors
// and 5xx/429 responses are, everything else is final.
func temporary(err error) bool {
	if !retry.IsRecoverable(err) {
		return false
	}
	var se *StatusError
	if !errors.As(err, &se) {
		return true
	}
	return se.Code >= http.StatusInternalServerError || se.Code == http.StatusTooManyRequests
}

func retryOpts(ctx context.Context, lggr *zap.SugaredLogger, op string, attempts uint, delay time.Duration) []retry.Option {
	return []retry.Option{
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(temporary),
		retry.OnRetry(func(attempt uint, err error) {
			lggr.Debugw("retrying call", "op", op, "attempt", attempt+1, "error", err)
		}),
	}
}
