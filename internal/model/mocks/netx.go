package mocks

import (
	"context"
	"net"
	"net/netip"
	"time"

	"github.com/udoc-dev/udoc/internal/model"
)

// Resolver is a mockable model.Resolver.
type Resolver struct {
	MockResolve func(ctx context.Context, host string) ([]netip.Addr, time.Duration, error)
}

var _ model.Resolver = &Resolver{}

// Resolve calls MockResolve.
func (r *Resolver) Resolve(ctx context.Context, host string) ([]netip.Addr, time.Duration, error) {
	return r.MockResolve(ctx, host)
}

// TCPDialer is a mockable model.TCPDialer.
type TCPDialer struct {
	MockDial func(ctx context.Context, ip netip.Addr, port uint16) (net.Conn, time.Duration, error)
}

var _ model.TCPDialer = &TCPDialer{}

// Dial calls MockDial.
func (d *TCPDialer) Dial(ctx context.Context, ip netip.Addr, port uint16) (net.Conn, time.Duration, error) {
	return d.MockDial(ctx, ip, port)
}

// TLSHandshaker is a mockable model.TLSHandshaker.
type TLSHandshaker struct {
	MockHandshake func(ctx context.Context, conn net.Conn, serverName string) (*model.TLSSession, error)
}

var _ model.TLSHandshaker = &TLSHandshaker{}

// Handshake calls MockHandshake.
func (h *TLSHandshaker) Handshake(ctx context.Context, conn net.Conn, serverName string) (*model.TLSSession, error) {
	return h.MockHandshake(ctx, conn, serverName)
}

// HTTPClient is a mockable model.HTTPClient.
type HTTPClient struct {
	MockRequestH1 func(ctx context.Context, conn net.Conn, req *model.HTTPRequest) (*model.HTTPResponse, error)
	MockRequestH2 func(ctx context.Context, conn net.Conn, req *model.HTTPRequest) (*model.HTTPResponse, error)
}

var _ model.HTTPClient = &HTTPClient{}

// RequestH1 calls MockRequestH1.
func (c *HTTPClient) RequestH1(ctx context.Context, conn net.Conn, req *model.HTTPRequest) (*model.HTTPResponse, error) {
	return c.MockRequestH1(ctx, conn, req)
}

// RequestH2 calls MockRequestH2.
func (c *HTTPClient) RequestH2(ctx context.Context, conn net.Conn, req *model.HTTPRequest) (*model.HTTPResponse, error) {
	return c.MockRequestH2(ctx, conn, req)
}

// Clock is a mockable model.Clock.
type Clock struct {
	MockNow     func() time.Time
	MockTimeout func(ctx context.Context, timeout time.Duration, operation string,
		fn func(ctx context.Context) error) error
}

var _ model.Clock = &Clock{}

// Now calls MockNow.
func (c *Clock) Now() time.Time {
	return c.MockNow()
}

// Timeout calls MockTimeout.
func (c *Clock) Timeout(ctx context.Context, timeout time.Duration, operation string,
	fn func(ctx context.Context) error) error {
	return c.MockTimeout(ctx, timeout, operation, fn)
}
