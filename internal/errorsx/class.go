package errorsx

// Class is the error category reported to the user. Each class maps to
// a distinct process exit code and to a short tag.
type Class int

const (
	// ClassOther is any failure not covered by a more specific class.
	ClassOther Class = iota

	// ClassInput is a malformed URL or invalid command line.
	ClassInput

	// ClassDNS is a resolution failure.
	ClassDNS

	// ClassTCP is a connection failure.
	ClassTCP

	// ClassTLS is a handshake or certificate failure.
	ClassTLS

	// ClassHTTP is a protocol-level failure, including redirect errors.
	ClassHTTP

	// ClassTimeout means a step did not complete within its bound.
	ClassTimeout
)

var classInfo = map[Class]struct {
	exitCode int
	tag      string
}{
	ClassOther:   {1, "ERROR"},
	ClassInput:   {2, "INPUT"},
	ClassDNS:     {3, "DNS"},
	ClassTCP:     {4, "TCP"},
	ClassTLS:     {5, "TLS"},
	ClassHTTP:    {6, "HTTP"},
	ClassTimeout: {7, "TIMEOUT"},
}

// ExitCode returns the process exit code for the class.
func (c Class) ExitCode() int {
	if info, found := classInfo[c]; found {
		return info.exitCode
	}
	return 1
}

// Tag returns the tag printed inside "error[TAG]".
func (c Class) Tag() string {
	if info, found := classInfo[c]; found {
		return info.tag
	}
	return "ERROR"
}

// String implements fmt.Stringer.
func (c Class) String() string {
	return c.Tag()
}
