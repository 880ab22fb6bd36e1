package httpwire

import (
	"context"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/udoc-dev/udoc/internal/errorsx"
	"github.com/udoc-dev/udoc/internal/model"
	"github.com/udoc-dev/udoc/internal/optional"
	"golang.org/x/net/http2"
)

// RequestH2 implements model.HTTPClient. The HTTP/2 client connection
// runs its frame reader in a background goroutine for the lifetime of
// the request and is closed before returning.
func (c *Client) RequestH2(ctx context.Context, conn net.Conn, req *model.HTTPRequest) (*model.HTTPResponse, error) {
	start := c.now()
	transport := &http2.Transport{}
	clientConn, err := transport.NewClientConn(conn)
	if err != nil {
		return nil, errorsx.Wrap(errorsx.ClassHTTP, errorsx.HTTPRoundTripOperation,
			err, "HTTP/2 handshake failed: %s", err)
	}
	defer clientConn.Close()

	httpReq, err := c.newH2Request(ctx, req)
	if err != nil {
		return nil, errorsx.Wrap(errorsx.ClassHTTP, errorsx.HTTPRoundTripOperation,
			err, "invalid HTTP/2 request: %s", err)
	}
	httpResp, err := clientConn.RoundTrip(httpReq)
	if err != nil {
		return nil, errorsx.Wrap(errorsx.ClassHTTP, errorsx.HTTPRoundTripOperation,
			err, "HTTP/2 request failed: %s", err)
	}
	defer httpResp.Body.Close()
	ttfb := c.since(start)

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, int64(req.BodyLimit)))
	if err != nil {
		return nil, errorsx.Wrap(errorsx.ClassHTTP, errorsx.HTTPRoundTripOperation,
			err, "failed to read HTTP/2 body: %s", err)
	}

	summary := model.HTTPSummary{
		Status:  httpResp.StatusCode,
		Version: "h2",
		Proto:   "HTTPS",
	}
	if reason := http.StatusText(httpResp.StatusCode); reason != "" {
		summary.Reason = optional.Some(reason)
	}
	return &model.HTTPResponse{
		Summary: summary,
		Headers: headersFromHTTP(httpResp.Header),
		TTFB:    ttfb,
		Body:    body,
	}, nil
}

func (c *Client) newH2Request(ctx context.Context, req *model.HTTPRequest) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = "GET"
	}
	path := req.Path
	if path == "" {
		path = "/"
	}
	host := authority(req.Host, req.Port, true)
	httpReq, err := http.NewRequestWithContext(ctx, method, "https://"+host+path, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Host = host
	httpReq.Header.Set("User-Agent", c.userAgent())
	httpReq.Header.Set("Accept", "*/*")
	return httpReq, nil
}

func headersFromHTTP(header http.Header) model.ResponseHeaders {
	var headers model.ResponseHeaders
	if value := header.Get("Location"); value != "" {
		headers.Location = optional.Some(value)
	}
	if value := header.Get("Server"); value != "" {
		headers.Server = optional.Some(value)
	}
	if value := header.Get("Content-Type"); value != "" {
		headers.ContentType = optional.Some(value)
	}
	if length, err := strconv.ParseInt(header.Get("Content-Length"), 10, 64); err == nil {
		headers.ContentLength = optional.Some(length)
	}
	if value := header.Get("Transfer-Encoding"); value != "" {
		headers.TransferEncoding = optional.Some(strings.ToLower(value))
	}
	return headers
}
