package netxlite

//
// TLS implementation
//

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"time"

	"github.com/udoc-dev/udoc/internal/errorsx"
	"github.com/udoc-dev/udoc/internal/model"
	"github.com/udoc-dev/udoc/internal/optional"
)

var tlsVersionString = map[uint16]string{
	tls.VersionTLS10: "TLS1.0",
	tls.VersionTLS11: "TLS1.1",
	tls.VersionTLS12: "TLS1.2",
	tls.VersionTLS13: "TLS1.3",
	0:                "", // guarantee correct behaviour
}

// TLSVersionString returns a TLS version string. If value is zero, we
// return the empty string. If the value is unknown, we return
// `TLS_VERSION_UNKNOWN_ddd` where `ddd` is the numeric value.
func TLSVersionString(value uint16) string {
	if str, found := tlsVersionString[value]; found {
		return str
	}
	return fmt.Sprintf("TLS_VERSION_UNKNOWN_%d", value)
}

// TLSCipherSuiteString returns the TLS cipher suite as a string. If value
// is zero, we return the empty string.
func TLSCipherSuiteString(value uint16) string {
	if value == 0 {
		return ""
	}
	return tls.CipherSuiteName(value)
}

// DefaultNextProtos is the ALPN list we offer.
var DefaultNextProtos = []string{"h2", "http/1.1"}

// NewTLSHandshaker returns a model.TLSHandshaker that logs using logger.
func NewTLSHandshaker(logger model.DebugLogger) model.TLSHandshaker {
	return &tlsHandshakerLogger{
		TLSHandshaker: &tlsHandshakerStdlib{},
		DebugLogger:   logger,
	}
}

// tlsHandshakerStdlib uses crypto/tls.
type tlsHandshakerStdlib struct {
	// RootCAs is the optional root CA pool, defaulting to the system one.
	RootCAs *x509.CertPool
}

var _ model.TLSHandshaker = &tlsHandshakerStdlib{}

// Handshake implements model.TLSHandshaker.
func (h *tlsHandshakerStdlib) Handshake(ctx context.Context, conn net.Conn, serverName string) (*model.TLSSession, error) {
	if serverName == "" {
		return nil, errorsx.New(errorsx.ClassTLS, errorsx.TLSHandshakeOperation,
			"invalid server name: %q", serverName)
	}
	config := &tls.Config{
		ServerName: serverName,
		NextProtos: DefaultNextProtos,
		RootCAs:    h.RootCAs,
	}
	start := time.Now()
	tlsconn := tls.Client(conn, config)
	if err := tlsconn.HandshakeContext(ctx); err != nil {
		return nil, errorsx.Wrap(errorsx.ClassTLS, errorsx.TLSHandshakeOperation, err,
			"TLS handshake failed: %s", err)
	}
	elapsed := time.Since(start)
	state := tlsconn.ConnectionState()
	peerCerts := make([][]byte, 0, len(state.PeerCertificates))
	for _, cert := range state.PeerCertificates {
		peerCerts = append(peerCerts, cert.Raw)
	}
	summary := model.TLSSummary{
		Version:  TLSVersionString(state.Version),
		Cipher:   TLSCipherSuiteString(state.CipherSuite),
		ChainLen: len(peerCerts),
		Verified: len(state.VerifiedChains) > 0,
	}
	if state.NegotiatedProtocol != "" {
		summary.ALPN = optional.Some(state.NegotiatedProtocol)
	}
	return &model.TLSSession{
		Conn:      tlsconn,
		Elapsed:   elapsed,
		Summary:   summary,
		PeerCerts: peerCerts,
	}, nil
}

// tlsHandshakerLogger is a TLSHandshaker with logging.
type tlsHandshakerLogger struct {
	TLSHandshaker model.TLSHandshaker
	DebugLogger   model.DebugLogger
}

var _ model.TLSHandshaker = &tlsHandshakerLogger{}

// Handshake implements model.TLSHandshaker.
func (h *tlsHandshakerLogger) Handshake(ctx context.Context, conn net.Conn, serverName string) (*model.TLSSession, error) {
	h.DebugLogger.Debugf("tls {sni=%s next=%+v}...", serverName, DefaultNextProtos)
	session, err := h.TLSHandshaker.Handshake(ctx, conn, serverName)
	if err != nil {
		h.DebugLogger.Debugf("tls {sni=%s next=%+v}... %s", serverName, DefaultNextProtos, err)
		return nil, err
	}
	h.DebugLogger.Debugf(
		"tls {sni=%s next=%+v}... ok in %s {next=%s cipher=%s v=%s}",
		serverName, DefaultNextProtos, session.Elapsed, session.Summary.ALPN.UnwrapOr(""),
		session.Summary.Cipher, session.Summary.Version)
	return session, nil
}
