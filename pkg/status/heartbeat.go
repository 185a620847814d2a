package status

import (
	"context"
	"time"

	"github.com/logtalks/uartlog.go/pkg/storage"
)

// DefaultBeatInterval is the default heartbeat period.
const DefaultBeatInterval = 5 * time.Second

// Beater receives the periodic liveness beats.
type Beater interface {
	Beat(unixTime int64)
}

// Heartbeat periodically publishes liveness and clears the activity
// indicator, so a logger that has stopped writing shows up as idle.
type Heartbeat struct {
	Reporter  Beater
	Indicator storage.Indicator
	Interval  time.Duration
}

// NewHeartbeat creates a Heartbeat for the reporter.
func NewHeartbeat(r *Reporter, ind storage.Indicator) *Heartbeat {
	return &Heartbeat{Reporter: r, Indicator: ind, Interval: DefaultBeatInterval}
}

// Run implements Runnable.
func (h *Heartbeat) Run(ctx context.Context) error {
	interval := h.Interval
	if interval == 0 {
		interval = DefaultBeatInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t := <-ticker.C:
			h.Reporter.Beat(t.Unix())
			if h.Indicator != nil {
				h.Indicator.ClearActivity()
			}
		}
	}
}
