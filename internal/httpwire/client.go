// Package httpwire speaks HTTP/1.1 and HTTP/2 over connections that
// the caller has already established.
//
// HTTP/1.1 is implemented directly on the connection so that we can
// measure the time to first byte and keep the exact wire semantics,
// including skipping 1xx interim responses and dechunking bodies. We
// use golang.org/x/net/http2 for HTTP/2.
package httpwire

import (
	"context"
	"net"
	"net/netip"
	"strconv"
	"time"

	"github.com/udoc-dev/udoc/internal/model"
	"github.com/udoc-dev/udoc/internal/version"
)

// DefaultUserAgent is the User-Agent we send.
var DefaultUserAgent = "udoc/" + version.Version

// Client implements model.HTTPClient.
type Client struct {
	// UserAgent is the User-Agent header value.
	UserAgent string

	// TimeNow is the optional function returning the current time,
	// defaulting to time.Now.
	TimeNow func() time.Time
}

var _ model.HTTPClient = &Client{}

// NewClient creates a client that logs each request using logger.
func NewClient(logger model.DebugLogger) model.HTTPClient {
	return &httpClientLogger{
		HTTPClient: &Client{UserAgent: DefaultUserAgent},
		Logger:     logger,
	}
}

func (c *Client) userAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return DefaultUserAgent
}

func (c *Client) now() time.Time {
	if c.TimeNow != nil {
		return c.TimeNow()
	}
	return time.Now()
}

func (c *Client) since(t time.Time) time.Duration {
	return c.now().Sub(t)
}

// authority returns the Host header value, omitting the port when
// it is the default one for the scheme.
func authority(host string, port uint16, secure bool) string {
	if addr, err := netip.ParseAddr(host); err == nil && addr.Is6() {
		host = "[" + host + "]"
	}
	if (secure && port == 443) || (!secure && port == 80) {
		return host
	}
	return host + ":" + strconv.Itoa(int(port))
}

// aLongTimeAgo is a deadline in the past, used to unblock I/O.
var aLongTimeAgo = time.Unix(1, 0)

// watchContext arranges for conn's pending I/O to fail once ctx is done
// and returns a function that stops watching.
func watchContext(ctx context.Context, conn net.Conn) func() bool {
	return context.AfterFunc(ctx, func() {
		conn.SetDeadline(aLongTimeAgo)
	})
}
