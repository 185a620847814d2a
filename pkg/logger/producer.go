// Package logger implements the background task mirroring the
// monitored byte stream to storage.
package logger

import (
	"context"
	"errors"
	"io"

	"github.com/golang/glog"

	fx "github.com/logtalks/uartlog.go/pkg/framework"
	"github.com/logtalks/uartlog.go/pkg/storage"
	"github.com/logtalks/uartlog.go/pkg/tap"
)

// ErrStorageWrite indicates a write failed while the storage was
// mounted. There is no redundant storage path, so this is
// unrecoverable and the composing entry point should abort.
var ErrStorageWrite = errors.New("storage write failed while mounted")

// Producer reads the monitored source one unit at a time, appends each
// unit to storage and offers it to the tap arbiter. It is the only
// writer to storage and the only feeder of the arbiter.
//
// While the storage is unmounted the producer blocks waiting for a
// mount; units arriving in that window are dropped, never buffered.
type Producer struct {
	Source  io.Reader
	Storage *storage.Manager
	Arbiter *tap.Arbiter
}

// New creates a Producer.
func New(source io.Reader, st *storage.Manager, arb *tap.Arbiter) *Producer {
	return &Producer{Source: source, Storage: st, Arbiter: arb}
}

// Run implements Runnable. It returns ErrStorageWrite wrapped as fatal
// on an unrecoverable storage failure, the source's error when the
// source ends, or context.Canceled.
func (p *Producer) Run(ctx context.Context) error {
	if closer, ok := p.Source.(io.Closer); ok {
		return fx.RunWithContextCloser(ctx, closer, p.loop)
	}
	return fx.RunWithContext(ctx, p.loop)
}

func (p *Producer) loop() error {
	buf := make([]byte, 1)
	for {
		if !p.Storage.Mounted() {
			// One mount attempt of our own covers boot and remount of a
			// re-inserted card; past that we wait for the console.
			if err := p.Storage.Mount(); err != nil {
				glog.Info("logger waiting for storage mount")
				p.Storage.WaitMounted()
			}
		}
		glog.Info("storage mounted, logger running")
		for {
			n, err := p.Source.Read(buf)
			if err != nil {
				return err
			}
			if n == 0 {
				continue
			}
			if p.Storage.Mounted() {
				if _, err := p.Storage.Write(buf[:n]); err != nil {
					if err == storage.ErrNotMounted {
						// Lost the card between the check and the
						// write. Treated the same as observing the
						// unmount: drop and wait for remount.
						glog.Warning("storage unmounted, logger paused")
						break
					}
					return fx.Fatal(ErrStorageWrite)
				}
			} else {
				// Hot-unplug path. Bytes arriving while unmounted
				// are dropped, never buffered.
				glog.Warning("storage unmounted, logger paused")
				break
			}
			p.Arbiter.Offer(buf[:n])
		}
	}
}
