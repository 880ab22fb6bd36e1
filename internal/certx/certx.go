// Package certx summarizes X.509 certificates.
package certx

import (
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/udoc-dev/udoc/internal/errorsx"
	"github.com/udoc-dev/udoc/internal/model"
	"github.com/udoc-dev/udoc/internal/optional"
)

// dateLayout is the layout of CertSummary.NotBefore and NotAfter.
const dateLayout = "2006-01-02"

// Summarize parses a DER encoded certificate and summarizes it. The
// days left are computed against now.
func Summarize(der []byte, now time.Time) (model.CertSummary, error) {
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return model.CertSummary{}, errorsx.Wrap(errorsx.ClassTLS, errorsx.TLSHandshakeOperation,
			err, "failed to parse certificate: %s", err)
	}
	summary := model.CertSummary{
		Issuer:    issuerName(cert),
		SANShort:  sanShort(cert.DNSNames),
		NotBefore: cert.NotBefore.UTC().Format(dateLayout),
		NotAfter:  cert.NotAfter.UTC().Format(dateLayout),
		DaysLeft:  (cert.NotAfter.Unix() - now.Unix()) / 86400,
		SHA256:    Fingerprint(der),
	}
	if cert.Subject.CommonName != "" {
		summary.SubjectCN = optional.Some(cert.Subject.CommonName)
	}
	return summary, nil
}

// issuerName prefers the issuer CN, then the first organization.
func issuerName(cert *x509.Certificate) string {
	if cert.Issuer.CommonName != "" {
		return cert.Issuer.CommonName
	}
	if len(cert.Issuer.Organization) > 0 {
		return cert.Issuer.Organization[0]
	}
	return "Unknown"
}

func sanShort(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return fmt.Sprintf("%s (+%d)", names[0], len(names)-1)
	}
}

// Fingerprint returns the SHA-256 of der as colon separated lowercase hex.
func Fingerprint(der []byte) string {
	sum := sha256.Sum256(der)
	parts := make([]string, len(sum))
	for idx, b := range sum {
		parts[idx] = hex.EncodeToString([]byte{b})
	}
	return strings.Join(parts, ":")
}
