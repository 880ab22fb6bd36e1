package model

import (
	"net/netip"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/udoc-dev/udoc/internal/optional"
)

func TestResolvedTarget(t *testing.T) {
	t.Run("ipv4", func(t *testing.T) {
		ip := netip.MustParseAddr("93.184.216.34")
		target := NewResolvedTarget(ip, 443, []netip.Addr{ip})
		if target.Family != IPv4 || target.Family.String() != "ipv4" {
			t.Fatal("unexpected family", target.Family)
		}
		if got := target.SocketString(); got != "93.184.216.34:443" {
			t.Fatal("unexpected socket string", got)
		}
		if got := target.IPsShort(); got != "93.184.216.34" {
			t.Fatal("unexpected short IPs", got)
		}
	})

	t.Run("ipv6 with several addresses", func(t *testing.T) {
		all := []netip.Addr{
			netip.MustParseAddr("2001:db8::1"),
			netip.MustParseAddr("2001:db8::2"),
			netip.MustParseAddr("192.0.2.1"),
		}
		target := NewResolvedTarget(all[0], 80, all)
		if target.Family.String() != "ipv6" {
			t.Fatal("unexpected family", target.Family)
		}
		if got := target.SocketString(); got != "[2001:db8::1]:80" {
			t.Fatal("unexpected socket string", got)
		}
		if got := target.IPsShort(); got != "2001:db8::1 (+2)" {
			t.Fatal("unexpected short IPs", got)
		}
	})
}

func TestHTTPSummaryStatusLine(t *testing.T) {
	withReason := HTTPSummary{Status: 404, Reason: optional.Some("Not Found")}
	if got := withReason.StatusLine(); got != "404 Not Found" {
		t.Fatal("unexpected status line", got)
	}
	bare := HTTPSummary{Status: 204}
	if got := bare.StatusLine(); got != "204" {
		t.Fatal("unexpected status line", got)
	}
}

func TestTLSSummaryIsH2(t *testing.T) {
	if !(TLSSummary{ALPN: optional.Some("h2")}).IsH2() {
		t.Fatal("expected h2")
	}
	if (TLSSummary{ALPN: optional.Some("http/1.1")}).IsH2() {
		t.Fatal("did not expect h2")
	}
	if (TLSSummary{}).IsH2() {
		t.Fatal("did not expect h2 without ALPN")
	}
}

func TestCertSummary(t *testing.T) {
	cert := CertSummary{
		NotBefore: "2024-01-01",
		NotAfter:  "2024-04-01",
		DaysLeft:  42,
		SHA256:    "aa:bb:cc:dd:ee:ff:00:11:22",
	}
	if got := cert.ShortFingerprint(); got != "aa:bb:...:22" {
		t.Fatal("unexpected fingerprint", got)
	}
	cert.SHA256 = "aa:bb:cc:dd:ee:ff:11:22"
	if got := cert.ShortFingerprint(); got != "aa:bb:...:22" {
		t.Fatal("unexpected fingerprint", got)
	}
	cert.SHA256 = "aa:bb:cc:dd:ee:ff"
	if got := cert.ShortFingerprint(); got != "aa:bb:cc:dd:ee:ff" {
		t.Fatal("six groups must not be shortened", got)
	}
	if got := cert.ValidityRange(); got != "2024-01-01 → 2024-04-01  (days_left: 42)" {
		t.Fatal("unexpected range", got)
	}
	cert.SHA256 = "aa:bb:cc"
	if got := cert.ShortFingerprint(); got != "aa:bb:cc" {
		t.Fatal("unexpected fingerprint", got)
	}
}

func TestHopTimingTotal(t *testing.T) {
	hop := HopTiming{DNS: time.Millisecond, TCP: 2 * time.Millisecond, TTFB: 4 * time.Millisecond}
	if hop.Total() != 7*time.Millisecond {
		t.Fatal("unexpected total", hop.Total())
	}
	hop.TLS = optional.Some(8 * time.Millisecond)
	if hop.Total() != 15*time.Millisecond {
		t.Fatal("unexpected total", hop.Total())
	}
}

func TestReportBottleneck(t *testing.T) {
	ms := func(v int) time.Duration {
		return time.Duration(v) * time.Millisecond
	}

	type testcase struct {
		name    string
		timings TimingBreakdown
		expect  string
	}

	testcases := []testcase{{
		name:    "everything is fast",
		timings: TimingBreakdown{DNS: ms(1), TCP: ms(2), TLS: optional.Some(ms(3)), TTFB: ms(9)},
		expect:  BottleneckNone,
	}, {
		name:    "slow server",
		timings: TimingBreakdown{DNS: ms(20), TCP: ms(10), TTFB: ms(20)},
		expect:  BottleneckTTFB,
	}, {
		name:    "slow resolver",
		timings: TimingBreakdown{DNS: ms(50), TCP: ms(10), TLS: optional.Some(ms(50)), TTFB: ms(5)},
		expect:  BottleneckDNS,
	}, {
		name:    "slow handshake",
		timings: TimingBreakdown{DNS: ms(1), TCP: ms(30), TLS: optional.Some(ms(30)), TTFB: ms(5)},
		expect:  BottleneckTLS,
	}, {
		name:    "slow connect",
		timings: TimingBreakdown{DNS: ms(1), TCP: ms(30), TTFB: ms(5)},
		expect:  BottleneckTCP,
	}}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			report := &Report{Timings: tc.timings}
			if diff := cmp.Diff(tc.expect, report.Bottleneck()); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}
