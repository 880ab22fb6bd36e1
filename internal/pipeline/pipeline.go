// Package pipeline follows a URL through its redirect chain and
// builds the final report.
package pipeline

import (
	"context"
	"net"
	"net/netip"
	"time"

	"github.com/udoc-dev/udoc/internal/certx"
	"github.com/udoc-dev/udoc/internal/errorsx"
	"github.com/udoc-dev/udoc/internal/model"
	"github.com/udoc-dev/udoc/internal/optional"
	"github.com/udoc-dev/udoc/internal/urlx"
)

// Config contains the pipeline settings.
type Config struct {
	// Timeout bounds each step of each hop.
	Timeout time.Duration

	// MaxRedirects is the number of redirects we follow.
	MaxRedirects int

	// BodyLimit is the number of body bytes we keep.
	BodyLimit int
}

// Pipeline probes URLs using the given capabilities. It holds no state
// between runs, so a single Pipeline may run repeatedly.
type Pipeline struct {
	Config        Config
	Resolver      model.Resolver
	TCPDialer     model.TCPDialer
	TLSHandshaker model.TLSHandshaker
	HTTPClient    model.HTTPClient
	Clock         model.Clock
	Logger        model.Logger
}

// isRedirect returns whether status is a redirect we follow.
func isRedirect(status int) bool {
	switch status {
	case 301, 302, 303, 307, 308:
		return true
	default:
		return false
	}
}

// Run probes input and follows redirects. Any failing step aborts the
// run and its classified error is returned unchanged.
func (p *Pipeline) Run(ctx context.Context, input string) (*model.Report, error) {
	logger := model.ValidLoggerOrDefault(p.Logger)
	start := p.Clock.Now()

	current, err := urlx.Parse(input)
	if err != nil {
		return nil, err
	}

	var (
		redirects []model.RedirectHop
		visited   = make(map[string]bool)
		timings   model.TimingBreakdown
		finalHTTP optional.Value[model.HTTPSummary]
		finalTLS  optional.Value[model.TLSSummary]
		finalCert optional.Value[model.CertSummary]
		resolved  optional.Value[model.ResolvedTarget]
		downgrade bool
	)

	for hop := 0; hop <= p.Config.MaxRedirects; hop++ {
		if visited[current.Full] {
			return nil, errorsx.New(errorsx.ClassHTTP, errorsx.RedirectOperation, "redirect loop detected")
		}
		visited[current.Full] = true

		logger.Infof("hop %d: GET %s", hop, current.Full)
		result, err := p.hop(ctx, current)
		if err != nil {
			return nil, err
		}

		timings.Hops = append(timings.Hops, result.timing)
		timings.DNS += result.timing.DNS
		timings.TCP += result.timing.TCP
		if elapsed := result.timing.TLS; !elapsed.IsNone() {
			timings.TLS = optional.Some(timings.TLS.UnwrapOr(0) + elapsed.Unwrap())
		}
		timings.TTFB = result.timing.TTFB
		resolved = optional.Some(result.target)
		finalTLS = result.tls.Or(finalTLS)
		finalCert = result.cert.Or(finalCert)

		status := result.response.Summary.Status
		if !isRedirect(status) {
			finalHTTP = optional.Some(result.response.Summary)
			break
		}

		location := result.response.Headers.Location
		if location.IsNone() {
			return nil, errorsx.New(errorsx.ClassHTTP, errorsx.RedirectOperation,
				"redirect %d without Location header", status)
		}
		next, err := current.ResolveRedirect(location.Unwrap())
		if err != nil {
			return nil, err
		}
		logger.Infof("hop %d: %d -> %s", hop, status, next.Full)
		redirects = append(redirects, model.RedirectHop{Status: status, From: current.Full, To: next.Full})
		if current.IsHTTPS() && !next.IsHTTPS() {
			logger.Warnf("HTTPS to HTTP downgrade: %s -> %s", current.Full, next.Full)
			downgrade = true
		}
		if !next.HasSupportedScheme() {
			return nil, errorsx.New(errorsx.ClassHTTP, errorsx.RedirectOperation,
				"redirect to unsupported scheme: %s", next.Scheme)
		}
		if hop == p.Config.MaxRedirects {
			return nil, errorsx.New(errorsx.ClassHTTP, errorsx.RedirectOperation,
				"too many redirects (max %d)", p.Config.MaxRedirects)
		}
		current = next
	}

	timings.Total = p.Clock.Now().Sub(start)

	if resolved.IsNone() {
		return nil, errorsx.New(errorsx.ClassOther, errorsx.TopLevelOperation, "no connection established")
	}
	if finalHTTP.IsNone() {
		return nil, errorsx.New(errorsx.ClassOther, errorsx.TopLevelOperation, "no HTTP response")
	}

	return &model.Report{
		InputURL:     input,
		FinalURL:     current.Full,
		Host:         current.Host,
		Resolved:     resolved.Unwrap(),
		Redirects:    redirects,
		Timings:      timings,
		HTTP:         finalHTTP.Unwrap(),
		TLS:          finalTLS,
		Cert:         finalCert,
		WasDowngrade: downgrade,
	}, nil
}

// hopResult is the outcome of a single request.
type hopResult struct {
	target   model.ResolvedTarget
	timing   model.HopTiming
	response *model.HTTPResponse
	tls      optional.Value[model.TLSSummary]
	cert     optional.Value[model.CertSummary]
}

type lookupResult struct {
	addrs   []netip.Addr
	elapsed time.Duration
}

type dialResult struct {
	conn    net.Conn
	elapsed time.Duration
}

// Close closes the connection, if any.
func (r dialResult) Close() error {
	if r.conn == nil {
		return nil
	}
	return r.conn.Close()
}

// hop performs a single request to u using the first resolved address.
// The connection is always closed before returning.
func (p *Pipeline) hop(ctx context.Context, u *urlx.URL) (*hopResult, error) {
	timeout := p.Config.Timeout

	lookup, err := withTimeout(ctx, p.Clock, timeout, errorsx.ResolveOperation,
		func(ctx context.Context) (lookupResult, error) {
			addrs, elapsed, err := p.Resolver.Resolve(ctx, u.Host)
			return lookupResult{addrs, elapsed}, err
		})
	if err != nil {
		return nil, err
	}
	if len(lookup.addrs) < 1 {
		return nil, errorsx.New(errorsx.ClassDNS, errorsx.ResolveOperation, "no IP addresses for %s", u.Host)
	}
	result := &hopResult{
		target: model.NewResolvedTarget(lookup.addrs[0], u.Port, lookup.addrs),
		timing: model.HopTiming{DNS: lookup.elapsed},
	}

	dialed, err := withTimeout(ctx, p.Clock, timeout, errorsx.ConnectOperation,
		func(ctx context.Context) (dialResult, error) {
			conn, elapsed, err := p.TCPDialer.Dial(ctx, result.target.IP, result.target.Port)
			return dialResult{conn, elapsed}, err
		})
	if err != nil {
		return nil, err
	}
	conn := dialed.conn
	defer func() {
		conn.Close()
	}()
	result.timing.TCP = dialed.elapsed

	req := &model.HTTPRequest{
		Method:    "GET",
		Host:      u.Host,
		Port:      u.Port,
		Path:      u.PathAndQuery,
		Secure:    u.IsHTTPS(),
		BodyLimit: p.Config.BodyLimit,
	}
	request := p.HTTPClient.RequestH1

	if u.IsHTTPS() {
		session, err := withTimeout(ctx, p.Clock, timeout, errorsx.TLSHandshakeOperation,
			func(ctx context.Context) (*model.TLSSession, error) {
				return p.TLSHandshaker.Handshake(ctx, conn, u.Host)
			})
		if err != nil {
			return nil, err
		}
		conn = session.Conn
		result.timing.TLS = optional.Some(session.Elapsed)
		result.tls = optional.Some(session.Summary)
		if len(session.PeerCerts) > 0 {
			cert, err := certx.Summarize(session.PeerCerts[0], p.Clock.Now())
			if err != nil {
				return nil, err
			}
			result.cert = optional.Some(cert)
		}
		if session.Summary.IsH2() {
			request = p.HTTPClient.RequestH2
		}
	}

	result.response, err = withTimeout(ctx, p.Clock, timeout, errorsx.HTTPRoundTripOperation,
		func(ctx context.Context) (*model.HTTPResponse, error) {
			return request(ctx, conn, req)
		})
	if err != nil {
		return nil, err
	}
	result.timing.TTFB = result.response.TTFB
	return result, nil
}
