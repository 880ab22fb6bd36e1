package render

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/udoc-dev/udoc/internal/model"
)

// CertExpiryWarningDays is the number of days left below which we
// warn about the certificate.
const CertExpiryWarningDays = 14

// Pretty renders a report for terminals.
type Pretty struct {
	// Color enables ANSI colors.
	Color bool
}

var _ Renderer = &Pretty{}

type palette struct {
	ok, redirect, failure, warning, section *color.Color
}

func (p *Pretty) palette() *palette {
	pal := &palette{
		ok:       color.New(color.FgGreen, color.Bold),
		redirect: color.New(color.FgYellow, color.Bold),
		failure:  color.New(color.FgRed, color.Bold),
		warning:  color.New(color.FgRed),
		section:  color.New(color.Bold),
	}
	for _, c := range []*color.Color{pal.ok, pal.redirect, pal.failure, pal.warning, pal.section} {
		if p.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return pal
}

func (pal *palette) status(status int) *color.Color {
	switch {
	case status >= 200 && status < 300:
		return pal.ok
	case status >= 300 && status < 400:
		return pal.redirect
	default:
		return pal.failure
	}
}

// Render implements Renderer.
func (p *Pretty) Render(r *model.Report) string {
	pal := p.palette()
	var b strings.Builder

	tlsVersion := "-"
	if !r.TLS.IsNone() {
		tlsVersion = r.TLS.Unwrap().Version
	}
	fmt.Fprintf(&b, "%s  %s  ip=%s  total=%.1fms  ttfb=%.1fms  tls=%s  bottleneck=%s\n",
		pal.status(r.HTTP.Status).Sprint(r.HTTP.StatusLine()), r.HTTP.Version, r.Resolved.IP,
		millis(r.Timings.Total), millis(r.Timings.TTFB), tlsVersion, r.Bottleneck())

	if r.WasDowngrade {
		fmt.Fprintf(&b, "%s\n", pal.warning.Sprint("⚠ WARNING: HTTPS→HTTP downgrade detected!"))
	}
	if !r.Cert.IsNone() {
		if days := r.Cert.Unwrap().DaysLeft; days < CertExpiryWarningDays {
			fmt.Fprintf(&b, "%s\n", pal.warning.Sprintf("⚠ CERT EXPIRING in %d days!", days))
		}
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "%s\n", pal.section.Sprint("URL"))
	fmt.Fprintf(&b, "  input:  %s\n", r.InputURL)
	fmt.Fprintf(&b, "  final:  %s\n", r.FinalURL)
	fmt.Fprintf(&b, "  host:   %s\n", r.Host)
	fmt.Fprintf(&b, "  ip:     %s   (%s)\n", r.Resolved.SocketString(), r.Resolved.Family)
	if len(r.Resolved.AllIPs) > 1 {
		fmt.Fprintf(&b, "  ips:    %s\n", r.Resolved.IPsShort())
	}

	if len(r.Redirects) > 0 {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%s\n", pal.section.Sprintf("REDIRECTS (%d)", len(r.Redirects)))
		for idx, hop := range r.Redirects {
			fmt.Fprintf(&b, "  [%s] %s → %s\n", pal.status(hop.Status).Sprint(hop.Status),
				shorten(hop.From, 40), shorten(hop.To, 40))
			if idx < len(r.Timings.Hops) {
				writeHopTiming(&b, r.Timings.Hops[idx])
			}
		}
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "%s\n", pal.section.Sprint("HTTP"))
	fmt.Fprintf(&b, "  status: %s\n", pal.status(r.HTTP.Status).Sprint(r.HTTP.StatusLine()))
	fmt.Fprintf(&b, "  proto:  %s\n", r.HTTP.Proto)
	fmt.Fprintf(&b, "  ver:    %s\n", r.HTTP.Version)

	b.WriteString("\n")
	fmt.Fprintf(&b, "%s\n", pal.section.Sprint("TIMINGS"))
	fmt.Fprintf(&b, "  dns:   %8.1f ms\n", millis(r.Timings.DNS))
	fmt.Fprintf(&b, "  tcp:   %8.1f ms\n", millis(r.Timings.TCP))
	if !r.Timings.TLS.IsNone() {
		fmt.Fprintf(&b, "  tls:   %8.1f ms\n", millis(r.Timings.TLS.Unwrap()))
	}
	fmt.Fprintf(&b, "  ttfb:  %8.1f ms\n", millis(r.Timings.TTFB))
	fmt.Fprintf(&b, "  total: %8.1f ms\n", millis(r.Timings.Total))

	if !r.TLS.IsNone() {
		tls := r.TLS.Unwrap()
		verify := pal.ok.Sprint("ok")
		if !tls.Verified {
			verify = pal.failure.Sprint("FAILED")
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "%s\n", pal.section.Sprint("TLS"))
		fmt.Fprintf(&b, "  version: %s\n", tls.Version)
		fmt.Fprintf(&b, "  alpn:    %s\n", tls.ALPN.UnwrapOr("-"))
		fmt.Fprintf(&b, "  cipher:  %s\n", tls.Cipher)
		fmt.Fprintf(&b, "  chain:   %d certs\n", tls.ChainLen)
		fmt.Fprintf(&b, "  verify:  %s\n", verify)
	}

	if !r.Cert.IsNone() {
		cert := r.Cert.Unwrap()
		b.WriteString("\n")
		fmt.Fprintf(&b, "%s\n", pal.section.Sprint("CERT"))
		fmt.Fprintf(&b, "  subject: CN=%s\n", cert.SubjectCN.UnwrapOr("-"))
		fmt.Fprintf(&b, "  issuer:  %s\n", cert.Issuer)
		if cert.SANShort != "" {
			fmt.Fprintf(&b, "  san:     %s\n", cert.SANShort)
		}
		fmt.Fprintf(&b, "  valid:   %s\n", cert.ValidityRange())
		fmt.Fprintf(&b, "  sha256:  %s\n", cert.ShortFingerprint())
	}

	return b.String()
}

func writeHopTiming(b *strings.Builder, hop model.HopTiming) {
	fmt.Fprintf(b, "      dns=%.1fms tcp=%.1fms", millis(hop.DNS), millis(hop.TCP))
	if !hop.TLS.IsNone() {
		fmt.Fprintf(b, " tls=%.1fms", millis(hop.TLS.Unwrap()))
	}
	fmt.Fprintf(b, " ttfb=%.1fms\n", millis(hop.TTFB))
}

// shorten truncates s to limit runes, ending with "...".
func shorten(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}
