package netxlite

//
// DNS resolution
//

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/udoc-dev/udoc/internal/errorsx"
	"github.com/udoc-dev/udoc/internal/model"
)

// HostLookuper performs the actual lookup and is what WrapResolver wraps.
type HostLookuper interface {
	// LookupNetIP returns the A and AAAA records of host.
	LookupNetIP(ctx context.Context, host string) ([]netip.Addr, error)

	// Network returns the resolver type (e.g., "system", "udp").
	Network() string

	// Address returns the resolver address, if any.
	Address() string
}

// WrapResolver creates a model.Resolver from lookuper. The returned resolver:
//
// 1. performs logging;
//
// 2. short-circuits IP addresses;
//
// 3. measures the lookup time;
//
// 4. wraps errors.
func WrapResolver(logger model.DebugLogger, lookuper HostLookuper) model.Resolver {
	return &resolverLogger{
		Resolver: &resolverShortCircuitIPAddr{
			Resolver: &resolverErrWrapper{
				HostLookuper: lookuper,
			},
		},
		Logger:   logger,
		lookuper: lookuper,
	}
}

// NewResolverSystem returns a resolver using the system resolver.
func NewResolverSystem(logger model.DebugLogger) model.Resolver {
	return WrapResolver(logger, &resolverSystem{})
}

// resolverSystem is the system resolver.
type resolverSystem struct {
	testableLookupNetIP func(ctx context.Context, network, host string) ([]netip.Addr, error)
}

var _ HostLookuper = &resolverSystem{}

// LookupNetIP implements HostLookuper.
func (r *resolverSystem) LookupNetIP(ctx context.Context, host string) ([]netip.Addr, error) {
	return r.lookupNetIP()(ctx, "ip", host)
}

func (r *resolverSystem) lookupNetIP() func(ctx context.Context, network, host string) ([]netip.Addr, error) {
	if r.testableLookupNetIP != nil {
		return r.testableLookupNetIP
	}
	return net.DefaultResolver.LookupNetIP
}

// Network implements HostLookuper.
func (r *resolverSystem) Network() string {
	return "system"
}

// Address implements HostLookuper.
func (r *resolverSystem) Address() string {
	return ""
}

// resolverErrWrapper measures the lookup and wraps errors.
type resolverErrWrapper struct {
	HostLookuper HostLookuper
}

var _ model.Resolver = &resolverErrWrapper{}

// Resolve implements model.Resolver.
func (r *resolverErrWrapper) Resolve(ctx context.Context, host string) ([]netip.Addr, time.Duration, error) {
	start := time.Now()
	addrs, err := r.HostLookuper.LookupNetIP(ctx, host)
	elapsed := time.Since(start)
	if err == nil && len(addrs) == 0 {
		err = errorsx.ErrNoRecords
	}
	if err != nil {
		return nil, 0, errorsx.Wrap(errorsx.ClassDNS, errorsx.ResolveOperation, err,
			"%s", errorsx.ResolveFailure(err, host))
	}
	out := make([]netip.Addr, 0, len(addrs))
	for _, addr := range addrs {
		out = append(out, addr.Unmap())
	}
	return out, elapsed, nil
}

// resolverShortCircuitIPAddr resolves IP addresses to themselves.
type resolverShortCircuitIPAddr struct {
	Resolver model.Resolver
}

var _ model.Resolver = &resolverShortCircuitIPAddr{}

// Resolve implements model.Resolver.
func (r *resolverShortCircuitIPAddr) Resolve(ctx context.Context, host string) ([]netip.Addr, time.Duration, error) {
	if addr, err := netip.ParseAddr(host); err == nil {
		return []netip.Addr{addr.Unmap()}, 0, nil
	}
	return r.Resolver.Resolve(ctx, host)
}

// resolverLogger is a resolver that emits events.
type resolverLogger struct {
	Resolver model.Resolver
	Logger   model.DebugLogger
	lookuper HostLookuper
}

var _ model.Resolver = &resolverLogger{}

// Resolve implements model.Resolver.
func (r *resolverLogger) Resolve(ctx context.Context, host string) ([]netip.Addr, time.Duration, error) {
	prefix := fmt.Sprintf("resolve[A,AAAA] %s with %s (%s)", host, r.lookuper.Network(), r.lookuper.Address())
	r.Logger.Debugf("%s...", prefix)
	addrs, elapsed, err := r.Resolver.Resolve(ctx, host)
	if err != nil {
		r.Logger.Debugf("%s... %s", prefix, err)
		return nil, 0, err
	}
	r.Logger.Debugf("%s... %+v in %s", prefix, addrs, elapsed)
	return addrs, elapsed, nil
}
