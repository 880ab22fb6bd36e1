package netxlite

//
// DNS over UDP using miekg/dns
//

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"time"

	"github.com/miekg/dns"
	"github.com/udoc-dev/udoc/internal/model"
)

// ErrOODNSNoSuchHost is returned for NXDOMAIN responses.
var ErrOODNSNoSuchHost = errors.New("dns: no such host")

// DNSOverUDPResolver queries a specific DNS server over UDP, first for
// A and then for AAAA records.
type DNSOverUDPResolver struct {
	// Endpoint is the server endpoint (e.g., "8.8.8.8:53").
	Endpoint string

	// Client is the optional miekg/dns client.
	Client *dns.Client
}

var _ HostLookuper = &DNSOverUDPResolver{}

// NewResolverUDP returns a resolver using the DNS server at endpoint.
func NewResolverUDP(logger model.DebugLogger, endpoint string) model.Resolver {
	return WrapResolver(logger, &DNSOverUDPResolver{Endpoint: endpoint})
}

// NewResolverFromResolvConf returns a resolver using the first
// nameserver listed in the given resolv.conf file.
func NewResolverFromResolvConf(logger model.DebugLogger, path string) (model.Resolver, error) {
	config, err := dns.ClientConfigFromFile(path)
	if err != nil {
		return nil, err
	}
	if len(config.Servers) < 1 {
		return nil, errors.New("netxlite: no nameservers in " + path)
	}
	endpoint := net.JoinHostPort(config.Servers[0], config.Port)
	return NewResolverUDP(logger, endpoint), nil
}

func (r *DNSOverUDPResolver) client() *dns.Client {
	if r.Client != nil {
		return r.Client
	}
	return &dns.Client{Net: "udp", Timeout: 5 * time.Second}
}

// LookupNetIP implements HostLookuper.
func (r *DNSOverUDPResolver) LookupNetIP(ctx context.Context, host string) ([]netip.Addr, error) {
	var addrs []netip.Addr
	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		found, err := r.lookup(ctx, host, qtype)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, found...)
	}
	return addrs, nil
}

func (r *DNSOverUDPResolver) lookup(ctx context.Context, host string, qtype uint16) ([]netip.Addr, error) {
	query := new(dns.Msg)
	query.SetQuestion(dns.Fqdn(host), qtype)
	reply, _, err := r.client().ExchangeContext(ctx, query, r.Endpoint)
	if err != nil {
		return nil, err
	}
	switch reply.Rcode {
	case dns.RcodeSuccess:
	case dns.RcodeNameError:
		return nil, ErrOODNSNoSuchHost
	default:
		return nil, errors.New("dns: server replied " + dns.RcodeToString[reply.Rcode])
	}
	var addrs []netip.Addr
	for _, answer := range reply.Answer {
		switch record := answer.(type) {
		case *dns.A:
			if addr, ok := netip.AddrFromSlice(record.A.To4()); ok {
				addrs = append(addrs, addr)
			}
		case *dns.AAAA:
			if addr, ok := netip.AddrFromSlice(record.AAAA.To16()); ok {
				addrs = append(addrs, addr)
			}
		}
	}
	return addrs, nil
}

// Network implements HostLookuper.
func (r *DNSOverUDPResolver) Network() string {
	return "udp"
}

// Address implements HostLookuper.
func (r *DNSOverUDPResolver) Address() string {
	return r.Endpoint
}
