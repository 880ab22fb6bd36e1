package httpwire

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/udoc-dev/udoc/internal/errorsx"
	"github.com/udoc-dev/udoc/internal/model"
	"github.com/udoc-dev/udoc/internal/testingx"
)

// tickingNow returns a function where each call returns one second
// after the previous one.
func tickingNow() func() time.Time {
	clock := testingx.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	return func() time.Time {
		now := clock.Now()
		clock.Advance(time.Second)
		return now
	}
}

func TestClientRequestH1(t *testing.T) {
	t.Run("request format and response decoding", func(t *testing.T) {
		srv := testingx.MustNewRawHTTPServer(func(request []byte) []byte {
			return []byte("HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhello")
		})
		defer srv.Close()

		conn, err := net.Dial("tcp", srv.Endpoint().String())
		if err != nil {
			t.Fatal(err)
		}
		defer conn.Close()

		client := &Client{UserAgent: "udoc/test", TimeNow: tickingNow()}
		req := &model.HTTPRequest{
			Method:    "GET",
			Host:      "example.test",
			Port:      8080,
			Path:      "/a?b=c",
			BodyLimit: 1024,
		}
		resp, err := client.RequestH1(context.Background(), conn, req)
		if err != nil {
			t.Fatal(err)
		}
		if resp.Summary.StatusLine() != "200 OK" || string(resp.Body) != "hello" {
			t.Fatal("unexpected response", resp.Summary, string(resp.Body))
		}
		if resp.TTFB != time.Second {
			t.Fatal("unexpected TTFB", resp.TTFB)
		}

		expectRequest := "GET /a?b=c HTTP/1.1\r\nHost: example.test:8080\r\nConnection: close\r\n" +
			"User-Agent: udoc/test\r\nAccept: */*\r\n\r\n"
		requests := srv.Requests()
		if len(requests) != 1 {
			t.Fatal("unexpected number of requests", len(requests))
		}
		if diff := cmp.Diff(expectRequest, string(requests[0])); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("stops reading once enough body bytes arrived", func(t *testing.T) {
		body := strings.Repeat("x", 4096)
		client, server := net.Pipe()
		defer client.Close()
		go func() {
			readRequestHeadForTest(server)
			server.Write([]byte("HTTP/1.1 200 OK\r\n\r\n" + body))
			// keep the connection open: the client must not wait for EOF
		}()
		defer server.Close()

		resp, err := (&Client{}).RequestH1(context.Background(), client, &model.HTTPRequest{
			Host: "example.test", Port: 80, Path: "/", BodyLimit: 16,
		})
		if err != nil {
			t.Fatal(err)
		}
		if string(resp.Body) != strings.Repeat("x", 16) {
			t.Fatal("unexpected body", string(resp.Body))
		}
	})

	t.Run("the context interrupts a stalled read", func(t *testing.T) {
		client, server := net.Pipe()
		defer client.Close()
		defer server.Close()
		go readRequestHeadForTest(server)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		resp, err := (&Client{}).RequestH1(ctx, client, &model.HTTPRequest{
			Host: "example.test", Port: 80, Path: "/", BodyLimit: 16,
		})
		if errorsx.ClassOf(err) != errorsx.ClassHTTP {
			t.Fatal("unexpected err", err)
		}
		if resp != nil {
			t.Fatal("expected nil response")
		}
	})

	t.Run("the peer closes without answering", func(t *testing.T) {
		srv := testingx.MustNewRawHTTPServer(func(request []byte) []byte {
			return nil
		})
		defer srv.Close()
		conn, err := net.Dial("tcp", srv.Endpoint().String())
		if err != nil {
			t.Fatal(err)
		}
		defer conn.Close()
		_, err = (&Client{}).RequestH1(context.Background(), conn, &model.HTTPRequest{
			Host: "127.0.0.1", Port: 80, BodyLimit: 16,
		})
		if err == nil || err.Error() != "incomplete HTTP response" {
			t.Fatal("unexpected err", err)
		}
	})
}

func readRequestHeadForTest(conn net.Conn) {
	buffer := make([]byte, 4096)
	var head []byte
	for !strings.Contains(string(head), "\r\n\r\n") {
		count, err := conn.Read(buffer)
		head = append(head, buffer[:count]...)
		if err != nil {
			return
		}
	}
}

func TestAuthority(t *testing.T) {
	type testcase struct {
		host   string
		port   uint16
		secure bool
		expect string
	}

	testcases := []testcase{
		{"example.test", 80, false, "example.test"},
		{"example.test", 443, true, "example.test"},
		{"example.test", 443, false, "example.test:443"},
		{"example.test", 8443, true, "example.test:8443"},
		{"::1", 443, true, "[::1]"},
		{"::1", 8080, false, "[::1]:8080"},
	}

	for _, tc := range testcases {
		if got := authority(tc.host, tc.port, tc.secure); got != tc.expect {
			t.Fatal("unexpected authority", tc, got)
		}
	}
}
