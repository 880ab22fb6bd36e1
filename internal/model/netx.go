package model

import (
	"context"
	"net"
	"net/netip"
	"time"
)

//
// Capabilities used by the pipeline
//

// Resolver resolves host names to IP addresses.
type Resolver interface {
	// Resolve returns the addresses of host, in resolver order, and the
	// time spent resolving. An IP literal resolves to itself in zero time.
	Resolve(ctx context.Context, host string) ([]netip.Addr, time.Duration, error)
}

// TCPDialer opens TCP connections.
type TCPDialer interface {
	// Dial connects to ip:port and returns the connection along with
	// the time spent connecting.
	Dial(ctx context.Context, ip netip.Addr, port uint16) (net.Conn, time.Duration, error)
}

// TLSSession is the result of a successful TLS handshake.
type TLSSession struct {
	// Conn is the TLS connection wrapping the TCP connection.
	Conn net.Conn

	// Elapsed is the handshake duration.
	Elapsed time.Duration

	// Summary describes the negotiated session.
	Summary TLSSummary

	// PeerCerts contains the DER encoded peer certificates, leaf first.
	PeerCerts [][]byte
}

// Close closes the underlying connection. It is safe to call on a nil session.
func (s *TLSSession) Close() error {
	if s == nil || s.Conn == nil {
		return nil
	}
	return s.Conn.Close()
}

// TLSHandshaker performs TLS handshakes over existing connections.
type TLSHandshaker interface {
	// Handshake runs the handshake using serverName for SNI and
	// verification. The handshaker does not take ownership of conn
	// on failure.
	Handshake(ctx context.Context, conn net.Conn, serverName string) (*TLSSession, error)
}

// HTTPRequest is the request we send on every hop.
type HTTPRequest struct {
	// Method is the request method.
	Method string

	// Host is the target host name without port.
	Host string

	// Port is the target port.
	Port uint16

	// Path is the path plus optional query.
	Path string

	// Secure is true when the request travels over TLS.
	Secure bool

	// BodyLimit is the maximum number of body bytes to keep.
	BodyLimit int
}

// HTTPResponse is a parsed response.
type HTTPResponse struct {
	Summary HTTPSummary
	Headers ResponseHeaders

	// TTFB is the time from sending the request to the first
	// response byte (HTTP/1.x) or to the response headers (h2).
	TTFB time.Duration

	// Body is the possibly truncated, dechunked body.
	Body []byte
}

// HTTPClient sends a single request over an established connection.
type HTTPClient interface {
	// RequestH1 speaks HTTP/1.1 over conn.
	RequestH1(ctx context.Context, conn net.Conn, req *HTTPRequest) (*HTTPResponse, error)

	// RequestH2 speaks HTTP/2 over conn, which must have negotiated h2.
	RequestH2(ctx context.Context, conn net.Conn, req *HTTPRequest) (*HTTPResponse, error)
}

// Clock tells time and bounds operations.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Timeout runs fn with a context bounded by timeout. If fn does not
	// complete in time, Timeout returns a timeout error for operation.
	Timeout(ctx context.Context, timeout time.Duration, operation string,
		fn func(ctx context.Context) error) error
}
