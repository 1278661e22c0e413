package share

import (
	"context"

	"github.com/pkg/errors"
)

// IsContextClosedError reports whether err comes from a cancelled or expired context,
// through any wrapping including *url.Error.
func IsContextClosedError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
