// Package serve implements the HTTP serve subsystem: binding an ephemeral
// port and serving a chosen directory for the duration of one test, using
// github.com/valyala/fasthttp for the listener, with static files served by
// net/http's FileServer through fasthttpadaptor.
package serve

import (
	"fmt"
	"net"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"net/http"

	"toolproof/internal/toolerr"
)

// Server binds 127.0.0.1:0 and serves dir until Close.
type Server struct {
	ln     net.Listener
	port   int
	server *fasthttp.Server
	done   chan struct{}
}

// Start binds an ephemeral listener and begins serving dir in the
// background. The server exits when Close is called, mirroring the
// contract that the server's lifetime is bound to the test's lifetime.
func Start(dir string) (*Server, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, toolerr.Wrap(toolerr.ServeBindFailed, -1, "binding ephemeral port", err)
	}

	fileServer := http.FileServer(http.Dir(dir))
	handler := fasthttpadaptor.NewFastHTTPHandler(fileServer)

	srv := &fasthttp.Server{Handler: handler}
	s := &Server{ln: ln, port: ln.Addr().(*net.TCPAddr).Port, server: srv, done: make(chan struct{})}

	go func() {
		defer close(s.done)
		_ = srv.Serve(ln)
	}()

	return s, nil
}

func (s *Server) Port() int { return s.port }

func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}
	err := s.server.Shutdown()
	<-s.done
	s.server = nil
	return err
}

// ResolveURL prefixes a scheme-less URL with the server's loopback address,
// the §4.5 `I load` contract.
func ResolveURL(port int, path string) string {
	if path == "" {
		path = "/"
	}
	return fmt.Sprintf("http://127.0.0.1:%d%s", port, path)
}
