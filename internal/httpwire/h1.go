package httpwire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/udoc-dev/udoc/internal/errorsx"
	"github.com/udoc-dev/udoc/internal/model"
)

// RequestH1 implements model.HTTPClient.
func (c *Client) RequestH1(ctx context.Context, conn net.Conn, req *model.HTTPRequest) (*model.HTTPResponse, error) {
	stop := watchContext(ctx, conn)
	defer stop()

	start := c.now()
	if _, err := conn.Write(c.newRequestHead(req)); err != nil {
		return nil, errorsx.Wrap(errorsx.ClassHTTP, errorsx.HTTPRoundTripOperation,
			err, "failed to send request: %s", err)
	}

	raw, ttfb, err := c.readResponse(conn, req.BodyLimit, start)
	if err != nil {
		return nil, err
	}

	proto := "HTTP"
	if req.Secure {
		proto = "HTTPS"
	}
	resp, err := DecodeResponse(raw, proto, req.BodyLimit)
	if err != nil {
		return nil, err
	}
	resp.TTFB = ttfb
	return resp, nil
}

func (c *Client) newRequestHead(req *model.HTTPRequest) []byte {
	method := req.Method
	if method == "" {
		method = "GET"
	}
	path := req.Path
	if path == "" {
		path = "/"
	}
	return []byte(fmt.Sprintf(
		"%s %s HTTP/1.1\r\nHost: %s\r\nConnection: close\r\nUser-Agent: %s\r\nAccept: */*\r\n\r\n",
		method, path, authority(req.Host, req.Port, req.Secure), c.userAgent()))
}

// readResponse reads until the peer closes the connection, the buffer
// of HeaderLimit+bodyLimit bytes is full, or the head is complete and
// at least bodyLimit raw body bytes follow it. The TTFB is the time of
// the first non-empty read.
func (c *Client) readResponse(conn net.Conn, bodyLimit int, start time.Time) ([]byte, time.Duration, error) {
	buffer := make([]byte, HeaderLimit+bodyLimit)
	var (
		total int
		ttfb  time.Duration
	)
	for total < len(buffer) {
		count, err := conn.Read(buffer[total:])
		if count > 0 {
			if total == 0 {
				ttfb = c.since(start)
			}
			total += count
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, errorsx.Wrap(errorsx.ClassHTTP, errorsx.HTTPRoundTripOperation,
				err, "failed to read response: %s", err)
		}
		if end := findHeaderEnd(buffer[:total]); end >= 0 && total-end >= bodyLimit {
			break
		}
	}
	return buffer[:total], ttfb, nil
}
