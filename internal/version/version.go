// Package version contains the udoc version.
package version

// Version is the version of udoc.
const Version = "0.2.0"
