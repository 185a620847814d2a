package logger

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	fx "github.com/logtalks/uartlog.go/pkg/framework"
	"github.com/logtalks/uartlog.go/pkg/storage"
	"github.com/logtalks/uartlog.go/pkg/tap"
)

// chanSource is a byte source fed by the test. Close releases a blocked
// Read with io.EOF.
type chanSource struct {
	ch        chan byte
	closed    chan struct{}
	closeOnce sync.Once
}

func newChanSource() *chanSource {
	return &chanSource{ch: make(chan byte, 16), closed: make(chan struct{})}
}

func (s *chanSource) Read(p []byte) (int, error) {
	select {
	case b := <-s.ch:
		p[0] = b
		return 1, nil
	case <-s.closed:
		return 0, io.EOF
	}
}

func (s *chanSource) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}

func (s *chanSource) feed(data string) {
	for i := 0; i < len(data); i++ {
		s.ch <- data[i]
	}
}

// chanSink collects tap output so the test can synchronize with the
// producer loop.
type chanSink struct {
	ch chan byte
}

func newChanSink() *chanSink {
	return &chanSink{ch: make(chan byte, 16)}
}

func (s *chanSink) Write(p []byte) (int, error) {
	for _, b := range p {
		s.ch <- b
	}
	return len(p), nil
}

func (s *chanSink) expect(t *testing.T, data string) {
	for i := 0; i < len(data); i++ {
		select {
		case b := <-s.ch:
			require.Equalf(t, data[i], b, "sink byte %d", i)
		case <-time.After(time.Second):
			t.Fatalf("sink byte %d not forwarded", i)
		}
	}
}

type fakeFile struct {
	bytes.Buffer
	writeErr error
}

func (f *fakeFile) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	return f.Buffer.Write(p)
}

func (f *fakeFile) Size() (int64, error) { return int64(f.Len()), nil }
func (f *fakeFile) Sync() error          { return nil }
func (f *fakeFile) Close() error         { return nil }

// fakeVolume signals every probe so tests can line up with the
// producer's own mount attempts.
type fakeVolume struct {
	probeErr error
	probeCh  chan struct{}
	files    []*fakeFile
}

func newFakeVolume() *fakeVolume {
	return &fakeVolume{probeCh: make(chan struct{}, 16)}
}

func (v *fakeVolume) Probe() error {
	err := v.probeErr
	select {
	case v.probeCh <- struct{}{}:
	default:
	}
	return err
}

func (v *fakeVolume) Open(name string) (storage.File, error) {
	f := &fakeFile{}
	v.files = append(v.files, f)
	return f, nil
}

func (v *fakeVolume) lastFile() *fakeFile {
	return v.files[len(v.files)-1]
}

func (v *fakeVolume) drainProbes() {
	for {
		select {
		case <-v.probeCh:
		default:
			return
		}
	}
}

func (v *fakeVolume) awaitProbe(t *testing.T) {
	select {
	case <-v.probeCh:
	case <-time.After(time.Second):
		t.Fatal("no probe observed")
	}
}

type nopIndicator struct{}

func (nopIndicator) ToggleActivity() {}
func (nopIndicator) ClearActivity()  {}

type producerTestEnv struct {
	source *chanSource
	sink   *chanSink
	vol    *fakeVolume
	mgr    *storage.Manager
	arb    *tap.Arbiter

	cancel context.CancelFunc
	doneCh chan error
}

func newProducerTestEnv(t *testing.T) *producerTestEnv {
	env := &producerTestEnv{
		source: newChanSource(),
		sink:   newChanSink(),
		vol:    newFakeVolume(),
		arb:    tap.New(),
		doneCh: make(chan error, 1),
	}
	env.mgr = storage.NewManager(env.vol, storage.NopPower{}, nopIndicator{})
	env.mgr.SettleDelay = time.Millisecond
	_, err := env.arb.Acquire(env.sink)
	require.NoError(t, err)
	return env
}

func (e *producerTestEnv) start() {
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	producer := New(e.source, e.mgr, e.arb)
	go func() {
		e.doneCh <- producer.Run(ctx)
	}()
}

func (e *producerTestEnv) stop(t *testing.T) {
	e.cancel()
	select {
	case <-e.doneCh:
	case <-time.After(time.Second):
		t.Fatal("producer did not stop")
	}
}

func TestProducerMirrors(t *testing.T) {
	env := newProducerTestEnv(t)
	env.start()
	defer env.stop(t)

	env.source.feed("abc")
	env.sink.expect(t, "abc")
	require.Equal(t, "abc", env.vol.lastFile().String())
}

func TestProducerMountsOnStart(t *testing.T) {
	env := newProducerTestEnv(t)
	require.False(t, env.mgr.Mounted())
	env.start()
	defer env.stop(t)

	env.source.feed("x")
	env.sink.expect(t, "x")
	require.True(t, env.mgr.Mounted())
}

func TestProducerPausesAcrossUnmount(t *testing.T) {
	env := newProducerTestEnv(t)
	env.start()
	defer env.stop(t)

	env.source.feed("a")
	env.sink.expect(t, "a")

	require.NoError(t, env.mgr.Unmount())
	env.vol.drainProbes()
	env.vol.probeErr = errors.New("no medium")
	env.source.feed("b")
	// The failed remount attempt proves the producer saw the unmount
	// after reading "b", so the byte is gone.
	env.vol.awaitProbe(t)

	env.vol.probeErr = nil
	require.NoError(t, env.mgr.Mount())
	env.source.feed("c")
	env.sink.expect(t, "c")
	require.Equal(t, "c", env.vol.lastFile().String())
}

func TestProducerFatalOnWriteFailure(t *testing.T) {
	env := newProducerTestEnv(t)
	env.start()
	defer env.cancel()

	env.source.feed("a")
	env.sink.expect(t, "a")

	env.vol.lastFile().writeErr = errors.New("io error")
	env.source.feed("b")

	select {
	case err := <-env.doneCh:
		require.True(t, fx.IsFatal(err))
	case <-time.After(time.Second):
		t.Fatal("producer did not abort on write failure")
	}
}

func TestProducerSourceEnd(t *testing.T) {
	env := newProducerTestEnv(t)
	env.start()
	defer env.cancel()

	env.source.feed("a")
	env.sink.expect(t, "a")

	env.source.Close()
	select {
	case err := <-env.doneCh:
		require.Equal(t, io.EOF, err)
	case <-time.After(time.Second):
		t.Fatal("producer did not stop on source end")
	}
}
