// Package idnax converts internationalized host names to the ASCII
// form we put on the wire.
package idnax

import "golang.org/x/net/idna"

// ToASCII converts a domain name to its punycode form using the
// IDNA lookup profile, which also lowercases the result.
func ToASCII(domain string) (string, error) {
	return idna.Lookup.ToASCII(domain)
}
