package share

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const (
	MaxRetries = 3
)

var RetryDelay = 3 * time.Second

// StatusError is a non 2xx response. Client errors are not retried.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *StatusError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// Retry calls f up to MaxRetries times, waiting RetryDelay between attempts.
func Retry(ctx context.Context, f func(ctx context.Context) error) error {
	var err error
	for i := 0; i < MaxRetries; i++ {
		err = f(ctx)

		if err == nil {
			break
		}
		if IsContextClosedError(err) {
			return err
		}
		if se, ok := err.(*StatusError); ok && !se.Temporary() {
			return err
		}
		if i+1 < MaxRetries {
			select {
			case <-time.After(RetryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return err
}
