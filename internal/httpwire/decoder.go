package httpwire

import (
	"bytes"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/udoc-dev/udoc/internal/errorsx"
	"github.com/udoc-dev/udoc/internal/model"
	"github.com/udoc-dev/udoc/internal/optional"
)

// HeaderLimit is the maximum size of the response head we read.
const HeaderLimit = 32 * 1024

var headerTerminator = []byte("\r\n\r\n")

// findHeaderEnd returns the offset of the first byte after the
// CRLFCRLF terminating the head, or -1.
func findHeaderEnd(data []byte) int {
	idx := bytes.Index(data, headerTerminator)
	if idx < 0 {
		return -1
	}
	return idx + len(headerTerminator)
}

// DecodeResponse parses a raw HTTP/1.x response, skipping any 1xx
// interim responses, and decodes at most bodyLimit body bytes. The
// proto argument is "HTTP" or "HTTPS". The returned TTFB is zero.
func DecodeResponse(data []byte, proto string, bodyLimit int) (*model.HTTPResponse, error) {
	for {
		end := findHeaderEnd(data)
		if end < 0 {
			return nil, errorsx.New(errorsx.ClassHTTP, errorsx.HTTPRoundTripOperation,
				"incomplete HTTP response")
		}
		head := data[:end-len(headerTerminator)]
		summary, headers, err := parseHead(head, proto)
		if err != nil {
			return nil, err
		}
		if summary.Status >= 100 && summary.Status < 200 {
			data = data[end:]
			continue
		}
		body := newBodyDecoder(headers).Decode(data[end:], bodyLimit)
		return &model.HTTPResponse{Summary: summary, Headers: headers, Body: body}, nil
	}
}

func parseHead(head []byte, proto string) (model.HTTPSummary, model.ResponseHeaders, error) {
	lines := strings.Split(string(head), "\n")
	statusLine := strings.TrimRight(lines[0], "\r")
	if !utf8.ValidString(statusLine) {
		return model.HTTPSummary{}, model.ResponseHeaders{}, errorsx.New(errorsx.ClassHTTP,
			errorsx.HTTPRoundTripOperation, "invalid status line encoding")
	}
	summary, err := parseStatusLine(statusLine, proto)
	if err != nil {
		return model.HTTPSummary{}, model.ResponseHeaders{}, err
	}
	return summary, parseHeaders(lines[1:]), nil
}

func parseStatusLine(line, proto string) (model.HTTPSummary, error) {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 {
		return model.HTTPSummary{}, errorsx.New(errorsx.ClassHTTP, errorsx.HTTPRoundTripOperation,
			"invalid status line: %s", line)
	}
	status, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil {
		return model.HTTPSummary{}, errorsx.Wrap(errorsx.ClassHTTP, errorsx.HTTPRoundTripOperation,
			err, "invalid status code: %s", parts[1])
	}
	summary := model.HTTPSummary{
		Status:  int(status),
		Version: versionLabel(parts[0]),
		Proto:   proto,
	}
	if len(parts) == 3 {
		summary.Reason = optional.Some(parts[2])
	}
	return summary, nil
}

func versionLabel(version string) string {
	switch {
	case strings.Contains(version, "1.1"):
		return "http/1.1"
	case strings.Contains(version, "1.0"):
		return "http/1.0"
	case strings.Contains(version, "2"):
		return "h2"
	default:
		return "http/1.1"
	}
}

func parseHeaders(lines []string) model.ResponseHeaders {
	var headers model.ResponseHeaders
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "location":
			headers.Location = optional.Some(value)
		case "server":
			headers.Server = optional.Some(value)
		case "content-type":
			headers.ContentType = optional.Some(value)
		case "content-length":
			if length, err := strconv.ParseInt(value, 10, 64); err == nil {
				headers.ContentLength = optional.Some(length)
			}
		case "transfer-encoding":
			headers.TransferEncoding = optional.Some(strings.ToLower(value))
		}
	}
	return headers
}

// bodyDecoder turns the raw bytes after the head into the body.
type bodyDecoder interface {
	Decode(raw []byte, limit int) []byte
}

// newBodyDecoder selects the decoder once from the headers.
func newBodyDecoder(headers model.ResponseHeaders) bodyDecoder {
	if strings.Contains(headers.TransferEncoding.UnwrapOr(""), "chunked") {
		return chunkedBody{}
	}
	return flatBody{}
}

type flatBody struct{}

func (flatBody) Decode(raw []byte, limit int) []byte {
	return append([]byte{}, raw[:min(len(raw), limit)]...)
}
