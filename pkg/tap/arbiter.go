// Package tap arbitrates access to the live logger stream. At most one
// console session may mirror the stream at a time; the producer keeps
// writing to storage regardless.
package tap

import (
	"errors"
	"io"
	"sync"

	"github.com/golang/glog"
)

var (
	// ErrBusy indicates another session already holds the tap.
	ErrBusy = errors.New("tap busy")
	// ErrNotOwner indicates the presented token does not hold the tap.
	ErrNotOwner = errors.New("not the tap owner")
)

// Token is the capability returned by Acquire. Only the holder of the
// current token can release the tap; a stale token is rejected without
// disturbing the owner.
type Token struct {
	arbiter *Arbiter
}

// Arbiter is a single-owner broker for the forwarding resource. The
// state guard is held only for snapshots and flips, never across a sink
// write.
type Arbiter struct {
	state struct {
		sync.Mutex
		enabled bool
		sink    io.Writer
		token   *Token
	}
}

// New creates an Arbiter.
func New() *Arbiter {
	return &Arbiter{}
}

// Acquire attempts to take ownership of the tap without blocking,
// directing forwarded units to sink. It fails fast with ErrBusy when
// the tap is held.
func (a *Arbiter) Acquire(sink io.Writer) (*Token, error) {
	a.state.Lock()
	defer a.state.Unlock()
	if a.state.token != nil {
		return nil, ErrBusy
	}
	token := &Token{arbiter: a}
	a.state.enabled = true
	a.state.sink = sink
	a.state.token = token
	return token, nil
}

// Release gives up ownership. The caller must present the token from
// its own Acquire; otherwise ErrNotOwner is returned and the real owner
// is unaffected.
func (a *Arbiter) Release(token *Token) error {
	if token == nil || token.arbiter != a {
		return ErrNotOwner
	}
	a.state.Lock()
	defer a.state.Unlock()
	if a.state.token != token {
		return ErrNotOwner
	}
	a.state.enabled = false
	a.state.sink = nil
	a.state.token = nil
	return nil
}

// Offer forwards one unit to the current sink, if any. It never blocks
// the caller on arbitration: the state is snapshotted under the guard
// and the sink write happens outside it. Forwarding is best effort; a
// failing sink drops the unit.
func (a *Arbiter) Offer(p []byte) {
	a.state.Lock()
	enabled, sink := a.state.enabled, a.state.sink
	a.state.Unlock()
	if !enabled {
		return
	}
	if _, err := sink.Write(p); err != nil {
		glog.V(2).Infof("tap sink write dropped %d bytes: %v", len(p), err)
	}
}
