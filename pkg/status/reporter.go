// Package status publishes the device's state over MQTT so monitors
// can observe mount transitions and write activity without a console.
package status

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/logtalks/uartlog.go/pkg/device"
	"github.com/logtalks/uartlog.go/pkg/transport/mqtt"
)

// Reporter publishes retained device meta on connect and mount and
// activity events as they happen. It implements storage.Indicator and
// storage.StateNotifier, standing in for a hardware activity LED.
type Reporter struct {
	Queue *mqtt.Queue
	Ref   device.Ref

	metaJSON string

	lock   sync.Mutex
	active bool
}

// NewReporter creates a Reporter on the broker.
func NewReporter(brokerURL string, ref device.Ref, meta device.Meta) (*Reporter, error) {
	metaJSON, err := json.Marshal(&meta)
	if err != nil {
		return nil, err
	}
	opts, topicPrefix, err := mqtt.ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+ref.Name()+"/meta", nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("uartlog:" + ref.Name())
	}
	r := &Reporter{
		Queue:    mqtt.NewQueue(opts, topicPrefix),
		Ref:      ref,
		metaJSON: string(metaJSON),
	}
	r.Queue.OnConnect = func(*mqtt.Queue) { r.onConnected() }
	return r, nil
}

// onConnected publishes the retained meta, on first connect and again
// after every reconnect in case the will fired meanwhile.
func (r *Reporter) onConnected() {
	r.Queue.PubWith(r.Ref.Name()+"/meta", []byte(r.metaJSON), 1, true)
}

// Run implements Runnable. The retained meta is cleared on shutdown so
// monitors see the device disappear.
func (r *Reporter) Run(ctx context.Context) error {
	r.Queue.Connect()
	<-ctx.Done()
	r.Queue.PubWith(r.Ref.Name()+"/meta", nil, 1, true)
	r.Queue.Close()
	return ctx.Err()
}

// MountStateChanged implements storage.StateNotifier.
func (r *Reporter) MountStateChanged(mounted bool) {
	state := "unmounted"
	if mounted {
		state = "mounted"
	}
	r.Queue.PubWith(r.Ref.Name()+"/mount", []byte(state), 1, true)
}

// ToggleActivity implements storage.Indicator.
func (r *Reporter) ToggleActivity() {
	r.lock.Lock()
	r.active = !r.active
	active := r.active
	r.lock.Unlock()
	r.publishActive(active)
}

// ClearActivity implements storage.Indicator.
func (r *Reporter) ClearActivity() {
	r.lock.Lock()
	wasActive := r.active
	r.active = false
	r.lock.Unlock()
	if wasActive {
		r.publishActive(false)
	}
}

// Beat publishes a liveness beat.
func (r *Reporter) Beat(unixTime int64) {
	payload, _ := json.Marshal(unixTime)
	r.Queue.Pub(r.Ref.Name()+"/beat", payload)
}

func (r *Reporter) publishActive(active bool) {
	payload := []byte("0")
	if active {
		payload = []byte("1")
	}
	r.Queue.Pub(r.Ref.Name()+"/activity", payload)
}
