package testingx

import (
	"context"
	"sync"
	"time"

	"github.com/udoc-dev/udoc/internal/errorsx"
	"github.com/udoc-dev/udoc/internal/model"
)

// FakeClock is a model.Clock whose time only moves when Advance is
// called. Fakes simulate slow operations by advancing the clock.
//
// Timeout runs the operation synchronously and fails when the fake
// time spent inside the operation exceeds the bound.
//
// It's safe to use this struct from multiple goroutine contexts.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

var _ model.Clock = &FakeClock{}

// NewFakeClock creates a new instance starting at zeroTime.
func NewFakeClock(zeroTime time.Time) *FakeClock {
	return &FakeClock{now: zeroTime}
}

// Now implements model.Clock.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Timeout implements model.Clock.
func (c *FakeClock) Timeout(ctx context.Context, timeout time.Duration, operation string,
	fn func(ctx context.Context) error) error {
	start := c.Now()
	err := fn(ctx)
	if c.Now().Sub(start) > timeout {
		return errorsx.NewTimeout(operation, timeout)
	}
	return err
}
