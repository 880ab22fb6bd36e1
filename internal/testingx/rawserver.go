package testingx

import (
	"bytes"
	"io"
	"net"
	"sync"
)

// RawHTTPServer is a TCP server that reads a request head and then
// writes back canned bytes, so tests control the exact wire format.
type RawHTTPServer struct {
	listener net.Listener
	wg       sync.WaitGroup

	mu       sync.Mutex
	requests [][]byte
}

// MustNewRawHTTPServer listens on 127.0.0.1 using a random port. The
// respond function maps each request head to the bytes to send back.
func MustNewRawHTTPServer(respond func(request []byte) []byte) *RawHTTPServer {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		panic(err)
	}
	srv := &RawHTTPServer{listener: listener}
	srv.wg.Add(1)
	go srv.serve(respond)
	return srv
}

// Endpoint returns the server endpoint.
func (srv *RawHTTPServer) Endpoint() *net.TCPAddr {
	return srv.listener.Addr().(*net.TCPAddr)
}

// Requests returns the request heads received so far.
func (srv *RawHTTPServer) Requests() [][]byte {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	return append([][]byte{}, srv.requests...)
}

// Close stops the server and waits for pending connections.
func (srv *RawHTTPServer) Close() error {
	err := srv.listener.Close()
	srv.wg.Wait()
	return err
}

func (srv *RawHTTPServer) serve(respond func(request []byte) []byte) {
	defer srv.wg.Done()
	for {
		conn, err := srv.listener.Accept()
		if err != nil {
			return
		}
		srv.wg.Add(1)
		go srv.handle(conn, respond)
	}
}

func (srv *RawHTTPServer) handle(conn net.Conn, respond func(request []byte) []byte) {
	defer srv.wg.Done()
	defer conn.Close()
	head := readRequestHead(conn)
	srv.mu.Lock()
	srv.requests = append(srv.requests, head)
	srv.mu.Unlock()
	conn.Write(respond(head))
}

func readRequestHead(r io.Reader) []byte {
	var head []byte
	buffer := make([]byte, 1024)
	for !bytes.Contains(head, []byte("\r\n\r\n")) {
		count, err := r.Read(buffer)
		head = append(head, buffer[:count]...)
		if err != nil {
			break
		}
	}
	return head
}
