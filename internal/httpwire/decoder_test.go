package httpwire

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/udoc-dev/udoc/internal/errorsx"
	"github.com/udoc-dev/udoc/internal/model"
	"github.com/udoc-dev/udoc/internal/optional"
)

func TestDecodeResponse(t *testing.T) {
	t.Run("simple response", func(t *testing.T) {
		raw := "HTTP/1.1 200 OK\r\nServer: nginx\r\nContent-Type: text/plain\r\nContent-Length: 5\r\n\r\nhello"
		resp, err := DecodeResponse([]byte(raw), "HTTP", 1024)
		if err != nil {
			t.Fatal(err)
		}
		expectSummary := model.HTTPSummary{
			Status:  200,
			Reason:  optional.Some("OK"),
			Version: "http/1.1",
			Proto:   "HTTP",
		}
		if diff := cmp.Diff(expectSummary, resp.Summary); diff != "" {
			t.Fatal(diff)
		}
		expectHeaders := model.ResponseHeaders{
			Server:        optional.Some("nginx"),
			ContentType:   optional.Some("text/plain"),
			ContentLength: optional.Some(int64(5)),
		}
		if diff := cmp.Diff(expectHeaders, resp.Headers); diff != "" {
			t.Fatal(diff)
		}
		if string(resp.Body) != "hello" {
			t.Fatal("unexpected body", string(resp.Body))
		}
	})

	t.Run("header names are case insensitive", func(t *testing.T) {
		raw := "HTTP/1.1 301 Moved Permanently\r\nLOCATION: https://example.test/\r\ntransfer-encoding: Chunked\r\n\r\n0\r\n\r\n"
		resp, err := DecodeResponse([]byte(raw), "HTTPS", 1024)
		if err != nil {
			t.Fatal(err)
		}
		if resp.Headers.Location.UnwrapOr("") != "https://example.test/" {
			t.Fatal("unexpected location", resp.Headers.Location)
		}
		if resp.Headers.TransferEncoding.UnwrapOr("") != "chunked" {
			t.Fatal("unexpected transfer encoding", resp.Headers.TransferEncoding)
		}
		if resp.Summary.Proto != "HTTPS" {
			t.Fatal("unexpected proto", resp.Summary.Proto)
		}
	})

	t.Run("a status line without reason", func(t *testing.T) {
		resp, err := DecodeResponse([]byte("HTTP/1.0 204\r\n\r\n"), "HTTP", 1024)
		if err != nil {
			t.Fatal(err)
		}
		if !resp.Summary.Reason.IsNone() || resp.Summary.Version != "http/1.0" {
			t.Fatal("unexpected summary", resp.Summary)
		}
		if resp.Summary.StatusLine() != "204" {
			t.Fatal("unexpected status line", resp.Summary.StatusLine())
		}
	})

	t.Run("interim responses are skipped", func(t *testing.T) {
		raw := "HTTP/1.1 100 Continue\r\n\r\nHTTP/1.1 103 Early Hints\r\nLink: </a.css>\r\n\r\nHTTP/1.1 200 OK\r\n\r\nhello"
		resp, err := DecodeResponse([]byte(raw), "HTTP", 1024)
		if err != nil {
			t.Fatal(err)
		}
		if resp.Summary.Status != 200 || string(resp.Body) != "hello" {
			t.Fatal("unexpected response", resp.Summary, string(resp.Body))
		}
	})

	t.Run("the flat body is truncated at the limit", func(t *testing.T) {
		raw := "HTTP/1.1 200 OK\r\n\r\nhello, world"
		resp, err := DecodeResponse([]byte(raw), "HTTP", 5)
		if err != nil {
			t.Fatal(err)
		}
		if string(resp.Body) != "hello" {
			t.Fatal("unexpected body", string(resp.Body))
		}
	})

	t.Run("failures", func(t *testing.T) {
		type testcase struct {
			name   string
			raw    string
			expect string
		}

		testcases := []testcase{{
			name:   "missing terminator",
			raw:    "HTTP/1.1 200 OK\r\nServer: x\r\n",
			expect: "incomplete HTTP response",
		}, {
			name:   "empty input",
			raw:    "",
			expect: "incomplete HTTP response",
		}, {
			name:   "garbage",
			raw:    "garbage\r\n\r\n",
			expect: "invalid status line: garbage",
		}, {
			name:   "nonnumeric status",
			raw:    "HTTP/1.1 abc OK\r\n\r\n",
			expect: "invalid status code: abc",
		}, {
			name:   "only interim responses",
			raw:    "HTTP/1.1 100 Continue\r\n\r\n",
			expect: "incomplete HTTP response",
		}}

		for _, tc := range testcases {
			t.Run(tc.name, func(t *testing.T) {
				resp, err := DecodeResponse([]byte(tc.raw), "HTTP", 1024)
				if err == nil || err.Error() != tc.expect {
					t.Fatal("unexpected err", err)
				}
				if errorsx.ClassOf(err) != errorsx.ClassHTTP {
					t.Fatal("unexpected class", errorsx.ClassOf(err))
				}
				if resp != nil {
					t.Fatal("expected nil response")
				}
			})
		}
	})
}

func TestVersionLabel(t *testing.T) {
	testcases := map[string]string{
		"HTTP/1.1": "http/1.1",
		"HTTP/1.0": "http/1.0",
		"HTTP/2":   "h2",
		"HTTP/2.0": "h2",
		"ICY":      "http/1.1",
	}
	for input, expect := range testcases {
		if got := versionLabel(input); got != expect {
			t.Fatal("unexpected label for", input, got)
		}
	}
}

// encodeChunked encodes body using chunks of at most size bytes.
func encodeChunked(body []byte, size int) []byte {
	var out bytes.Buffer
	for len(body) > 0 {
		count := min(size, len(body))
		fmt.Fprintf(&out, "%x\r\n", count)
		out.Write(body[:count])
		out.WriteString("\r\n")
		body = body[count:]
	}
	out.WriteString("0\r\n\r\n")
	return out.Bytes()
}

func TestChunkedBody(t *testing.T) {
	body := []byte(strings.Repeat("0123456789abcdef", 64))

	t.Run("round trip with a large budget", func(t *testing.T) {
		for _, size := range []int{1, 7, 16, 100, len(body)} {
			got := chunkedBody{}.Decode(encodeChunked(body, size), len(body)+1)
			if !bytes.Equal(body, got) {
				t.Fatal("round trip failed with chunk size", size)
			}
		}
	})

	t.Run("truncates at the budget", func(t *testing.T) {
		for _, limit := range []int{0, 1, 15, 16, 17, 500} {
			got := chunkedBody{}.Decode(encodeChunked(body, 16), limit)
			if !bytes.Equal(body[:limit], got) {
				t.Fatal("unexpected truncation with limit", limit, len(got))
			}
		}
	})

	t.Run("extensions are ignored", func(t *testing.T) {
		got := chunkedBody{}.Decode([]byte("5;name=value\r\nhello\r\n0\r\n\r\n"), 1024)
		if string(got) != "hello" {
			t.Fatal("unexpected body", string(got))
		}
	})

	t.Run("a malformed size stops decoding", func(t *testing.T) {
		got := chunkedBody{}.Decode([]byte("5\r\nhello\r\nzz\r\nworld\r\n0\r\n\r\n"), 1024)
		if string(got) != "hello" {
			t.Fatal("unexpected body", string(got))
		}
	})

	t.Run("a short final chunk is kept", func(t *testing.T) {
		got := chunkedBody{}.Decode([]byte("a\r\nhello"), 1024)
		if string(got) != "hello" {
			t.Fatal("unexpected body", string(got))
		}
	})

	t.Run("through DecodeResponse", func(t *testing.T) {
		raw := append([]byte("HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n"), encodeChunked(body, 10)...)
		resp, err := DecodeResponse(raw, "HTTP", 32)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(body[:32], resp.Body) {
			t.Fatal("unexpected body", string(resp.Body))
		}
	})
}
