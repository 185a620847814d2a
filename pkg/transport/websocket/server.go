// Package websocket serves remote console sessions over websocket.
package websocket

import (
	"context"
	"io"
	"net/http"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"
)

// SessionFunc runs one console session over the connection and returns
// when the session ends. The connection is closed afterwards.
type SessionFunc func(ctx context.Context, rw io.ReadWriter) error

// Server accepts websocket connections and runs a console session per
// connection. websocket.Conn is itself a raw byte stream, which is
// exactly what the line editor wants.
type Server struct {
	Addr    string
	Path    string
	Session SessionFunc
}

// NewServer creates a Server listening on addr at path.
func NewServer(addr, path string, session SessionFunc) *Server {
	return &Server{Addr: addr, Path: path, Session: session}
}

// Run implements Runnable, serving until the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle(s.Path, websocket.Handler(func(conn *websocket.Conn) {
		conn.PayloadType = websocket.BinaryFrame
		glog.V(1).Infof("console session from %s", conn.Request().RemoteAddr)
		if err := s.Session(ctx, conn); err != nil && err != io.EOF {
			glog.V(1).Infof("console session ended: %v", err)
		}
	}))
	server := &http.Server{Addr: s.Addr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		server.Close()
		<-errCh
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}
