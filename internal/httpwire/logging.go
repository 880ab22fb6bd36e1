package httpwire

import (
	"context"
	"net"
	"time"

	"github.com/udoc-dev/udoc/internal/model"
)

// httpClientLogger is a model.HTTPClient with logging.
type httpClientLogger struct {
	HTTPClient model.HTTPClient
	Logger     model.DebugLogger
}

var _ model.HTTPClient = &httpClientLogger{}

// RequestH1 implements model.HTTPClient.
func (c *httpClientLogger) RequestH1(ctx context.Context, conn net.Conn, req *model.HTTPRequest) (*model.HTTPResponse, error) {
	return c.log("http/1.1", req, func() (*model.HTTPResponse, error) {
		return c.HTTPClient.RequestH1(ctx, conn, req)
	})
}

// RequestH2 implements model.HTTPClient.
func (c *httpClientLogger) RequestH2(ctx context.Context, conn net.Conn, req *model.HTTPRequest) (*model.HTTPResponse, error) {
	return c.log("h2", req, func() (*model.HTTPResponse, error) {
		return c.HTTPClient.RequestH2(ctx, conn, req)
	})
}

func (c *httpClientLogger) log(proto string, req *model.HTTPRequest,
	fn func() (*model.HTTPResponse, error)) (*model.HTTPResponse, error) {
	c.Logger.Debugf("%s %s %s%s...", proto, req.Method, req.Host, req.Path)
	start := time.Now()
	resp, err := fn()
	elapsed := time.Since(start)
	if err != nil {
		c.Logger.Debugf("%s %s %s%s... %s in %s", proto, req.Method, req.Host, req.Path, err, elapsed)
		return nil, err
	}
	c.Logger.Debugf("%s %s %s%s... %d in %s {ttfb=%s body=%d}", proto, req.Method, req.Host,
		req.Path, resp.Summary.Status, elapsed, resp.TTFB, len(resp.Body))
	return resp, nil
}
