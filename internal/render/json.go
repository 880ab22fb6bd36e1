package render

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/udoc-dev/udoc/internal/model"
	"github.com/udoc-dev/udoc/internal/optional"
)

// JSON renders a report as an indented JSON object with a stable
// key order. Durations are milliseconds with two decimals.
type JSON struct{}

var _ Renderer = &JSON{}

// milliseconds is a duration serialized as milliseconds with two decimals.
type milliseconds time.Duration

// MarshalJSON implements json.Marshaler.
func (ms milliseconds) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(millis(time.Duration(ms)), 'f', 2, 64)), nil
}

type jsonTimings struct {
	DNS   milliseconds  `json:"dns_ms"`
	TCP   milliseconds  `json:"tcp_ms"`
	TLS   *milliseconds `json:"tls_ms,omitempty"`
	TTFB  milliseconds  `json:"ttfb_ms"`
	Total milliseconds  `json:"total_ms"`
}

type jsonTLS struct {
	Version  string                 `json:"version"`
	ALPN     optional.Value[string] `json:"alpn"`
	Cipher   string                 `json:"cipher"`
	ChainLen int                    `json:"chain_len"`
	Verified bool                   `json:"verified"`
}

type jsonCert struct {
	SubjectCN optional.Value[string] `json:"subject_cn"`
	Issuer    string                 `json:"issuer"`
	SAN       string                 `json:"san"`
	NotBefore string                 `json:"not_before"`
	NotAfter  string                 `json:"not_after"`
	DaysLeft  int64                  `json:"days_left"`
	SHA256    string                 `json:"sha256"`
}

type jsonReport struct {
	InputURL     string      `json:"input_url"`
	FinalURL     string      `json:"final_url"`
	Host         string      `json:"host"`
	IP           string      `json:"ip"`
	Port         uint16      `json:"port"`
	Status       int         `json:"status"`
	HTTPVersion  string      `json:"http_version"`
	Proto        string      `json:"proto"`
	Redirects    int         `json:"redirects"`
	WasDowngrade bool        `json:"was_downgrade"`
	Timings      jsonTimings `json:"timings"`
	Bottleneck   string      `json:"bottleneck"`
	TLS          *jsonTLS    `json:"tls,omitempty"`
	Cert         *jsonCert   `json:"cert"`
}

func newJSONReport(r *model.Report) *jsonReport {
	out := &jsonReport{
		InputURL:     r.InputURL,
		FinalURL:     r.FinalURL,
		Host:         r.Host,
		IP:           r.Resolved.IP.String(),
		Port:         r.Resolved.Port,
		Status:       r.HTTP.Status,
		HTTPVersion:  r.HTTP.Version,
		Proto:        r.HTTP.Proto,
		Redirects:    len(r.Redirects),
		WasDowngrade: r.WasDowngrade,
		Timings: jsonTimings{
			DNS:   milliseconds(r.Timings.DNS),
			TCP:   milliseconds(r.Timings.TCP),
			TTFB:  milliseconds(r.Timings.TTFB),
			Total: milliseconds(r.Timings.Total),
		},
		Bottleneck: r.Bottleneck(),
	}
	if !r.Timings.TLS.IsNone() {
		tls := milliseconds(r.Timings.TLS.Unwrap())
		out.Timings.TLS = &tls
	}
	if !r.TLS.IsNone() {
		tls := r.TLS.Unwrap()
		out.TLS = &jsonTLS{
			Version:  tls.Version,
			ALPN:     tls.ALPN,
			Cipher:   tls.Cipher,
			ChainLen: tls.ChainLen,
			Verified: tls.Verified,
		}
	}
	if !r.Cert.IsNone() {
		cert := r.Cert.Unwrap()
		out.Cert = &jsonCert{
			SubjectCN: cert.SubjectCN,
			Issuer:    cert.Issuer,
			SAN:       cert.SANShort,
			NotBefore: cert.NotBefore,
			NotAfter:  cert.NotAfter,
			DaysLeft:  cert.DaysLeft,
			SHA256:    cert.SHA256,
		}
	}
	return out
}

// Render implements Renderer.
func (*JSON) Render(r *model.Report) string {
	data, err := json.MarshalIndent(newJSONReport(r), "", "  ")
	if err != nil {
		// all the fields are plain values, so this cannot happen
		panic(err)
	}
	return string(data) + "\n"
}
