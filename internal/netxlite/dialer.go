package netxlite

//
// TCP dialing
//

import (
	"context"
	"net"
	"net/netip"
	"time"

	"github.com/udoc-dev/udoc/internal/errorsx"
	"github.com/udoc-dev/udoc/internal/model"
)

// NewTCPDialer returns a model.TCPDialer that logs using logger.
func NewTCPDialer(logger model.DebugLogger) model.TCPDialer {
	return &dialerLogger{
		TCPDialer: &dialerSystem{},
		Logger:    logger,
	}
}

// dialerSystem dials using the standard library.
type dialerSystem struct {
	// provider is the optional function used to dial.
	provider func(ctx context.Context, network, address string) (net.Conn, error)
}

var _ model.TCPDialer = &dialerSystem{}

func (d *dialerSystem) dialContext() func(ctx context.Context, network, address string) (net.Conn, error) {
	if d.provider != nil {
		return d.provider
	}
	return (&net.Dialer{}).DialContext
}

// Dial implements model.TCPDialer.
func (d *dialerSystem) Dial(ctx context.Context, ip netip.Addr, port uint16) (net.Conn, time.Duration, error) {
	endpoint := netip.AddrPortFrom(ip, port).String()
	start := time.Now()
	conn, err := d.dialContext()(ctx, "tcp", endpoint)
	elapsed := time.Since(start)
	if err != nil {
		return nil, 0, errorsx.Wrap(errorsx.ClassTCP, errorsx.ConnectOperation, err,
			"%s", errorsx.DialFailure(err, endpoint))
	}
	return conn, elapsed, nil
}

// dialerLogger is a dialer with logging.
type dialerLogger struct {
	TCPDialer model.TCPDialer
	Logger    model.DebugLogger
}

var _ model.TCPDialer = &dialerLogger{}

// Dial implements model.TCPDialer.
func (d *dialerLogger) Dial(ctx context.Context, ip netip.Addr, port uint16) (net.Conn, time.Duration, error) {
	endpoint := netip.AddrPortFrom(ip, port).String()
	d.Logger.Debugf("dial %s/tcp...", endpoint)
	conn, elapsed, err := d.TCPDialer.Dial(ctx, ip, port)
	if err != nil {
		d.Logger.Debugf("dial %s/tcp... %s", endpoint, err)
		return nil, 0, err
	}
	d.Logger.Debugf("dial %s/tcp... ok in %s", endpoint, elapsed)
	return conn, elapsed, nil
}
