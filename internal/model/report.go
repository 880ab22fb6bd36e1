package model

import (
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/udoc-dev/udoc/internal/optional"
)

//
// Resolution
//

// IPFamily is the address family of the selected IP.
type IPFamily int

const (
	// IPv4 is the IPv4 family.
	IPv4 IPFamily = iota

	// IPv6 is the IPv6 family.
	IPv6
)

// String implements fmt.Stringer.
func (f IPFamily) String() string {
	if f == IPv6 {
		return "ipv6"
	}
	return "ipv4"
}

// ResolvedTarget is the endpoint we connected to.
type ResolvedTarget struct {
	IP     netip.Addr
	Port   uint16
	Family IPFamily

	// AllIPs contains every resolved address in resolver order.
	AllIPs []netip.Addr
}

// NewResolvedTarget derives the family from ip.
func NewResolvedTarget(ip netip.Addr, port uint16, all []netip.Addr) ResolvedTarget {
	family := IPv4
	if ip.Is6() {
		family = IPv6
	}
	return ResolvedTarget{IP: ip, Port: port, Family: family, AllIPs: all}
}

// SocketString returns "ip:port", bracketing IPv6 addresses.
func (t ResolvedTarget) SocketString() string {
	return netip.AddrPortFrom(t.IP, t.Port).String()
}

// IPsShort returns the first IP followed by "(+N)" when there are more.
func (t ResolvedTarget) IPsShort() string {
	switch len(t.AllIPs) {
	case 0:
		return ""
	case 1:
		return t.AllIPs[0].String()
	default:
		return fmt.Sprintf("%s (+%d)", t.AllIPs[0], len(t.AllIPs)-1)
	}
}

//
// Redirects and timings
//

// RedirectHop is a followed redirect.
type RedirectHop struct {
	Status int
	From   string
	To     string
}

// HopTiming contains the per-stage timings of a single hop.
type HopTiming struct {
	DNS  time.Duration
	TCP  time.Duration
	TLS  optional.Value[time.Duration]
	TTFB time.Duration
}

// Total returns the sum of the stage timings.
func (h HopTiming) Total() time.Duration {
	return h.DNS + h.TCP + h.TLS.UnwrapOr(0) + h.TTFB
}

// TimingBreakdown aggregates the timings of all hops. DNS and TCP are
// summed across hops, TLS across TLS hops only, TTFB is the final hop's
// and Total is measured independently from start to finish.
type TimingBreakdown struct {
	DNS   time.Duration
	TCP   time.Duration
	TLS   optional.Value[time.Duration]
	TTFB  time.Duration
	Total time.Duration
	Hops  []HopTiming
}

//
// Protocol summaries
//

// HTTPSummary summarizes a response status line.
type HTTPSummary struct {
	Status  int
	Reason  optional.Value[string]
	Version string

	// Proto is "HTTP" or "HTTPS".
	Proto string
}

// StatusLine returns the status code followed by the reason, if any.
func (s HTTPSummary) StatusLine() string {
	if reason := s.Reason.UnwrapOr(""); reason != "" {
		return fmt.Sprintf("%d %s", s.Status, reason)
	}
	return fmt.Sprintf("%d", s.Status)
}

// ResponseHeaders contains the headers we care about.
type ResponseHeaders struct {
	Location      optional.Value[string]
	Server        optional.Value[string]
	ContentType   optional.Value[string]
	ContentLength optional.Value[int64]

	// TransferEncoding is lowercased.
	TransferEncoding optional.Value[string]
}

// TLSSummary summarizes a TLS session.
type TLSSummary struct {
	Version  string
	ALPN     optional.Value[string]
	Cipher   string
	ChainLen int
	Verified bool
}

// IsH2 returns whether the peer selected h2 via ALPN.
func (s TLSSummary) IsH2() bool {
	return s.ALPN.UnwrapOr("") == "h2"
}

// CertSummary summarizes the leaf certificate.
type CertSummary struct {
	SubjectCN optional.Value[string]
	Issuer    string

	// SANShort is "", a single name or "first (+N)".
	SANShort string

	// NotBefore and NotAfter use the YYYY-MM-DD format.
	NotBefore string
	NotAfter  string

	// DaysLeft is negative for expired certificates.
	DaysLeft int64

	// SHA256 is the lowercase colon separated fingerprint of the DER.
	SHA256 string
}

// ShortFingerprint abbreviates fingerprints longer than six groups
// to the first two groups, an ellipsis and the last group.
func (c CertSummary) ShortFingerprint() string {
	parts := strings.Split(c.SHA256, ":")
	if len(parts) <= 6 {
		return c.SHA256
	}
	return parts[0] + ":" + parts[1] + ":...:" + parts[len(parts)-1]
}

// ValidityRange returns the validity window and the days left.
func (c CertSummary) ValidityRange() string {
	return fmt.Sprintf("%s → %s  (days_left: %d)", c.NotBefore, c.NotAfter, c.DaysLeft)
}

//
// Report
//

// Report is the result of probing a URL.
type Report struct {
	InputURL string
	FinalURL string
	Host     string

	// Resolved is the endpoint of the final hop.
	Resolved  ResolvedTarget
	Redirects []RedirectHop
	Timings   TimingBreakdown

	// HTTP is the final hop's response.
	HTTP HTTPSummary

	// TLS and Cert come from the most recent hop that produced them, not
	// necessarily the first one, so a final plain HTTP hop keeps those
	// of an earlier HTTPS hop.
	TLS  optional.Value[TLSSummary]
	Cert optional.Value[CertSummary]

	// WasDowngrade is set once any redirect goes from https to http.
	WasDowngrade bool
}

// Bottleneck labels.
const (
	BottleneckNone = "none (fast)"
	BottleneckTTFB = "ttfb (server)"
	BottleneckDNS  = "dns"
	BottleneckTLS  = "tls"
	BottleneckTCP  = "tcp"
)

// BottleneckThreshold is the slowest stage duration below which
// we do not name any bottleneck.
const BottleneckThreshold = 10 * time.Millisecond

// Bottleneck names the dominant stage of the aggregated timings. Ties
// go to TTFB first, then DNS, then TLS.
func (r *Report) Bottleneck() string {
	dns, tcp, ttfb := r.Timings.DNS, r.Timings.TCP, r.Timings.TTFB
	tls := r.Timings.TLS.UnwrapOr(0)
	if max(dns, tcp, tls, ttfb) < BottleneckThreshold {
		return BottleneckNone
	}
	switch {
	case ttfb >= dns && ttfb >= tcp && ttfb >= tls:
		return BottleneckTTFB
	case dns >= tcp && dns >= tls:
		return BottleneckDNS
	case tls >= tcp:
		return BottleneckTLS
	default:
		return BottleneckTCP
	}
}
