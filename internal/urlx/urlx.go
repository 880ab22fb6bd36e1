// Package urlx parses and normalizes the URLs we probe.
package urlx

import (
	"net"
	"net/netip"
	"net/url"
	"strconv"
	"strings"

	"github.com/udoc-dev/udoc/internal/errorsx"
	"github.com/udoc-dev/udoc/internal/idnax"
)

// URL is a parsed and normalized URL.
type URL struct {
	// Scheme is the lowercase scheme.
	Scheme string

	// Host is the lowercase ASCII host without brackets.
	Host string

	// Port is the explicit port or the scheme default.
	Port uint16

	// PathAndQuery is the request target, at least "/".
	PathAndQuery string

	// Full is the normalized URL without fragment. Two URLs
	// referring to the same resource have the same Full.
	Full string
}

// Parse parses input and requires the http or https scheme.
func Parse(input string) (*URL, error) {
	u, err := parse(input)
	if err != nil {
		return nil, err
	}
	if !u.HasSupportedScheme() {
		return nil, errorsx.New(errorsx.ClassInput, errorsx.ParseOperation,
			"unsupported scheme '%s', expected http or https", u.Scheme)
	}
	return u, nil
}

func parse(input string) (*URL, error) {
	parsed, err := url.Parse(input)
	if err != nil {
		return nil, errorsx.Wrap(errorsx.ClassInput, errorsx.ParseOperation, err, "invalid URL: %s", err)
	}
	if parsed.Scheme == "" {
		return nil, errorsx.New(errorsx.ClassInput, errorsx.ParseOperation,
			"unsupported scheme '', expected http or https")
	}
	host := parsed.Hostname()
	if host == "" {
		return nil, errorsx.New(errorsx.ClassInput, errorsx.ParseOperation, "missing host")
	}
	host, err = normalizeHost(host)
	if err != nil {
		return nil, errorsx.Wrap(errorsx.ClassInput, errorsx.ParseOperation, err, "invalid URL: %s", err)
	}
	u := &URL{
		Scheme:       strings.ToLower(parsed.Scheme),
		Host:         host,
		Port:         defaultPort(parsed.Scheme),
		PathAndQuery: parsed.EscapedPath(),
	}
	if portString := parsed.Port(); portString != "" {
		port, err := strconv.ParseUint(portString, 10, 16)
		if err != nil {
			return nil, errorsx.Wrap(errorsx.ClassInput, errorsx.ParseOperation, err,
				"invalid URL: invalid port %q", portString)
		}
		u.Port = uint16(port)
	}
	if u.PathAndQuery == "" {
		u.PathAndQuery = "/"
	}
	if parsed.RawQuery != "" {
		u.PathAndQuery += "?" + parsed.RawQuery
	}
	u.Full = u.Scheme + "://" + u.hostPort() + u.PathAndQuery
	return u, nil
}

func normalizeHost(host string) (string, error) {
	if addr, err := netip.ParseAddr(host); err == nil {
		return addr.String(), nil
	}
	return idnax.ToASCII(host)
}

func defaultPort(scheme string) uint16 {
	switch strings.ToLower(scheme) {
	case "http":
		return 80
	case "https":
		return 443
	default:
		return 0
	}
}

// hostPort returns the host, bracketed if IPv6, plus the port when
// it differs from the scheme default.
func (u *URL) hostPort() string {
	if u.Port == defaultPort(u.Scheme) {
		if strings.Contains(u.Host, ":") {
			return "[" + u.Host + "]"
		}
		return u.Host
	}
	return net.JoinHostPort(u.Host, strconv.Itoa(int(u.Port)))
}

// IsHTTPS returns whether the scheme is https.
func (u *URL) IsHTTPS() bool {
	return u.Scheme == "https"
}

// HasSupportedScheme returns whether the scheme is http or https.
func (u *URL) HasSupportedScheme() bool {
	return u.Scheme == "http" || u.Scheme == "https"
}

// String implements fmt.Stringer.
func (u *URL) String() string {
	return u.Full
}

// ResolveRedirect resolves location, which may be relative, against u.
// The result may use any scheme: the caller decides whether to follow it.
func (u *URL) ResolveRedirect(location string) (*URL, error) {
	base, err := url.Parse(u.Full)
	if err != nil {
		return nil, errorsx.Wrap(errorsx.ClassHTTP, errorsx.RedirectOperation, err,
			"invalid redirect location: %s", err)
	}
	ref, err := url.Parse(strings.TrimSpace(location))
	if err != nil {
		return nil, errorsx.Wrap(errorsx.ClassHTTP, errorsx.RedirectOperation, err,
			"invalid redirect location: %s", err)
	}
	next, err := parse(base.ResolveReference(ref).String())
	if err != nil {
		return nil, errorsx.New(errorsx.ClassHTTP, errorsx.RedirectOperation,
			"invalid redirect location: %s", err)
	}
	return next, nil
}
