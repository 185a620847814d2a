package console

import (
	"context"
	"fmt"
	"io"

	"github.com/golang/glog"

	fx "github.com/logtalks/uartlog.go/pkg/framework"
)

// Session binds one console endpoint to an editor and a command table.
// A session is owned by a single task; commands stash per-session state
// (such as a held tap token) with Set/Get.
type Session struct {
	rw     io.ReadWriter
	editor *Editor
	table  []Command
	values map[string]interface{}
}

// NewSession creates a Session over an endpoint with a command table.
func NewSession(rw io.ReadWriter, table []Command) *Session {
	return &Session{
		rw:     rw,
		editor: NewEditor(rw),
		table:  table,
		values: make(map[string]interface{}),
	}
}

// Endpoint exposes the raw endpoint for commands which relay bytes
// directly, bypassing the editor.
func (s *Session) Endpoint() io.ReadWriter {
	return s.rw
}

// Set stores a per-session value.
func (s *Session) Set(key string, value interface{}) {
	s.values[key] = value
}

// Get retrieves a per-session value, or nil.
func (s *Session) Get(key string) interface{} {
	return s.values[key]
}

// Printf writes formatted output to the session endpoint.
func (s *Session) Printf(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(s.rw, format, args...); err != nil {
		glog.Warningf("console write error: %v", err)
	}
}

// Run implements Runnable with the prompt loop: read a line, dispatch,
// repeat. It returns only on endpoint errors or context cancellation.
func (s *Session) Run(ctx context.Context) error {
	if closer, ok := s.rw.(io.Closer); ok {
		return fx.RunWithContextCloser(ctx, closer, s.loop)
	}
	return fx.RunWithContext(ctx, s.loop)
}

func (s *Session) loop() error {
	for {
		cmd, err := s.editor.ReadLine()
		if err != nil {
			return err
		}
		if cmd == "" {
			continue
		}
		glog.V(2).Infof("console read %q", cmd)
		if status := s.Dispatch(cmd); status != 0 {
			glog.V(2).Infof("command %q status %d", cmd, status)
		}
	}
}
