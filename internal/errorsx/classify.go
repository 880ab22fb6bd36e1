package errorsx

import (
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
)

// DialFailure returns the message describing a failed connect to endpoint.
func DialFailure(err error, endpoint string) string {
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Sprintf("connection refused: %s", endpoint)
	case os.IsTimeout(err), errors.Is(err, syscall.ETIMEDOUT):
		return fmt.Sprintf("connection timed out: %s", endpoint)
	default:
		return fmt.Sprintf("TCP connect failed to %s: %s", endpoint, err)
	}
}

// ErrNoRecords indicates the name exists but has no A or AAAA records.
var ErrNoRecords = errors.New("no DNS records")

// ResolveFailure returns the message describing a failed lookup of host.
func ResolveFailure(err error, host string) string {
	var dnsErr *net.DNSError
	if errors.Is(err, ErrNoRecords) || (errors.As(err, &dnsErr) && dnsErr.IsNotFound) {
		return fmt.Sprintf("no DNS records for '%s'", host)
	}
	return fmt.Sprintf("DNS lookup failed for '%s': %s", host, err)
}
