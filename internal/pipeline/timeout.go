package pipeline

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/udoc-dev/udoc/internal/model"
)

// withTimeout runs fn under clock.Timeout and returns its result. A
// result produced after the bound expired is closed if it is closable.
func withTimeout[T any](ctx context.Context, clock model.Clock, timeout time.Duration,
	operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	var (
		mu        sync.Mutex
		out       T
		abandoned bool
	)
	err := clock.Timeout(ctx, timeout, operation, func(ctx context.Context) error {
		value, err := fn(ctx)
		mu.Lock()
		defer mu.Unlock()
		if abandoned {
			maybeClose(value)
			return err
		}
		out = value
		return err
	})
	mu.Lock()
	defer mu.Unlock()
	if err != nil {
		abandoned = true
		maybeClose(out)
		var zero T
		return zero, err
	}
	return out, nil
}

func maybeClose(value any) {
	if closer, ok := value.(io.Closer); ok && closer != nil {
		closer.Close()
	}
}
