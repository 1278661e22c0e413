package share

import (
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
)

func InitSentry(dsn string) error {
	err := sentry.Init(
		sentry.ClientOptions{
			Dsn:           dsn,
			HTTPTransport: new(http.Transport),
		},
	)
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// Report prints err with its stack and sends it to sentry.
// Cancelled contexts are not errors worth reporting.
func Report(err error) {
	if err == nil || IsContextClosedError(err) {
		return
	}

	sentry.CaptureException(err)
	fmt.Printf("%+v\n", errors.WithStack(err))
}
