package netxlite

import (
	"context"
	"errors"
	"time"

	"github.com/udoc-dev/udoc/internal/errorsx"
	"github.com/udoc-dev/udoc/internal/model"
)

// Clock is the wall clock implementation of model.Clock.
type Clock struct{}

var _ model.Clock = Clock{}

// Now implements model.Clock.
func (Clock) Now() time.Time {
	return time.Now()
}

// Timeout implements model.Clock. The operation runs in a background
// goroutine with a context bounded by timeout. When the bound expires
// we return immediately and the goroutine terminates once fn notices
// the context is done.
func (Clock) Timeout(ctx context.Context, timeout time.Duration, operation string,
	fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	errch := make(chan error, 1)
	go func() {
		errch <- fn(ctx)
	}()
	select {
	case err := <-errch:
		if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return errorsx.NewTimeout(operation, timeout)
		}
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return errorsx.NewTimeout(operation, timeout)
		}
		return errorsx.Wrap(errorsx.ClassOther, operation, ctx.Err(), "%s interrupted: %s", operation, ctx.Err())
	}
}
