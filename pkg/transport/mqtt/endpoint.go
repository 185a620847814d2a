package mqtt

import (
	"io"
	"sync"
)

// Endpoint bridges a topic pair to a raw byte stream. Reads deliver
// payload bytes from the subscribed topic in arrival order; writes
// publish to the publish topic. The monitored UART of a remote device
// typically arrives this way.
type Endpoint struct {
	Queue    *Queue
	SubTopic string
	PubTopic string

	payloadCh chan []byte
	rem       []byte

	closeOnce sync.Once
	closedCh  chan struct{}
	sub       *Subscription
}

// NewEndpoint creates an Endpoint over the Queue.
func NewEndpoint(q *Queue) *Endpoint {
	return &Endpoint{
		Queue:     q,
		payloadCh: make(chan []byte, 16),
		closedCh:  make(chan struct{}),
	}
}

// WithTopics specifies the topics.
func (e *Endpoint) WithTopics(sub, pub string) *Endpoint {
	e.SubTopic, e.PubTopic = sub, pub
	return e
}

// ForSource sets topics using the default convention for tapping a
// device's monitored stream: SubTopic = prefix/uart (nothing is
// published back).
func (e *Endpoint) ForSource(prefix string) *Endpoint {
	return e.WithTopics(prefix+"/uart", "")
}

// ForConsole sets topics using the default convention for a remote
// console: SubTopic = prefix/console/in, PubTopic = prefix/console/out.
func (e *Endpoint) ForConsole(prefix string) *Endpoint {
	return e.WithTopics(prefix+"/console/in", prefix+"/console/out")
}

// Open subscribes the endpoint. Read returns io.EOF after Close.
func (e *Endpoint) Open() *Endpoint {
	e.sub = e.Queue.Sub(e.SubTopic, e.handleMsg)
	return e
}

// Read implements io.Reader.
func (e *Endpoint) Read(p []byte) (int, error) {
	if len(e.rem) == 0 {
		select {
		case payload := <-e.payloadCh:
			e.rem = payload
		case <-e.closedCh:
			return 0, io.EOF
		}
	}
	n := copy(p, e.rem)
	e.rem = e.rem[n:]
	return n, nil
}

// Write implements io.Writer.
func (e *Endpoint) Write(p []byte) (int, error) {
	token := e.Queue.Pub(e.PubTopic, p)
	token.Wait()
	if err := token.Error(); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close implements io.Closer.
func (e *Endpoint) Close() error {
	var err error
	e.closeOnce.Do(func() {
		close(e.closedCh)
		if e.sub != nil {
			err = e.sub.Close()
		}
	})
	return err
}

func (e *Endpoint) handleMsg(_ string, payload []byte) {
	if len(payload) == 0 {
		return
	}
	buf := make([]byte, len(payload))
	copy(buf, payload)
	select {
	case e.payloadCh <- buf:
	case <-e.closedCh:
	}
}
