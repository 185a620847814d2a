package storage

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"
)

// DefaultLogName is the log file opened on the mounted volume.
const DefaultLogName = "uart_log.txt"

// DefaultSettleDelay precedes the first-ever power-up. Powering the
// device immediately after boot, before the bus has settled, resets it.
const DefaultSettleDelay = 100 * time.Millisecond

var (
	// ErrNotMounted indicates the storage is not mounted.
	ErrNotMounted = errors.New("storage not mounted")
	// ErrMounted indicates the operation needs the storage unmounted.
	ErrMounted = errors.New("storage is mounted")
)

// Manager owns the mount state machine for the removable storage
// device. All state transitions happen inside its mutex, and tasks can
// block on the mount-ready condition until a mount succeeds.
type Manager struct {
	Volume      Volume
	Power       PowerControl
	Indicator   Indicator
	Notifier    StateNotifier
	LogName     string
	SettleDelay time.Duration

	lock        sync.Mutex
	ready       *sync.Cond
	mounted     bool
	file        File
	poweredOnce bool
}

// NewManager creates a Manager over the collaborators.
func NewManager(vol Volume, power PowerControl, ind Indicator) *Manager {
	m := &Manager{
		Volume:      vol,
		Power:       power,
		Indicator:   ind,
		LogName:     DefaultLogName,
		SettleDelay: DefaultSettleDelay,
	}
	m.ready = sync.NewCond(&m.lock)
	return m
}

// Mount attempts to bring the storage online and open the log file.
// Mounting an already mounted volume succeeds without a re-probe.
// Concurrent callers serialize on the mutex, so only one probe executes
// at a time. On success all tasks blocked in WaitMounted are released.
func (m *Manager) Mount() error {
	mounted, err := m.mount()
	if mounted && err == nil {
		m.notify(true)
	}
	return err
}

// mount reports whether this call performed the transition.
func (m *Manager) mount() (bool, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.mounted {
		glog.Info("mount requested, but storage already mounted")
		return false, nil
	}
	if err := m.powerUp(); err != nil {
		return false, err
	}
	if err := m.Volume.Probe(); err != nil {
		glog.Warningf("probe failed, assuming storage is offline: %v", err)
		m.powerDown()
		return false, fmt.Errorf("probe: %v", err)
	}
	file, err := m.Volume.Open(m.LogName)
	if err != nil {
		m.powerDown()
		return false, fmt.Errorf("storage probed, but cannot open %q: %v", m.LogName, err)
	}
	m.file = file
	m.mounted = true
	glog.Infof("storage mounted, logging to %q", m.LogName)
	m.ready.Broadcast()
	return true, nil
}

// Unmount flushes and closes the log file and powers the device down.
// It is a no-op when already unmounted.
func (m *Manager) Unmount() error {
	if m.unmount() {
		m.notify(false)
	}
	return nil
}

func (m *Manager) unmount() bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	if !m.mounted {
		return false
	}
	if err := m.file.Sync(); err != nil {
		glog.Warningf("sync on unmount: %v", err)
	}
	if err := m.file.Close(); err != nil {
		glog.Warningf("close on unmount: %v", err)
	}
	m.file = nil
	m.powerDown()
	m.mounted = false
	glog.Info("storage unmounted")
	return true
}

func (m *Manager) notify(mounted bool) {
	if m.Notifier != nil {
		m.Notifier.MountStateChanged(mounted)
	}
}

// Mounted reports the current mount state.
func (m *Manager) Mounted() bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.mounted
}

// WaitMounted blocks the caller until the storage is mounted. The
// predicate is re-checked after every wake, guarding against spurious
// wakeups and mounts lost to an intervening unmount.
func (m *Manager) WaitMounted() {
	m.lock.Lock()
	defer m.lock.Unlock()
	for !m.mounted {
		m.ready.Wait()
	}
}

// Write appends to the open log file. Every successful write toggles
// the activity indicator.
func (m *Manager) Write(p []byte) (int, error) {
	m.lock.Lock()
	if !m.mounted {
		m.lock.Unlock()
		return 0, ErrNotMounted
	}
	n, err := m.file.Write(p)
	m.lock.Unlock()
	if err != nil {
		return n, err
	}
	m.Indicator.ToggleActivity()
	return n, nil
}

// Size reports the log file size in bytes.
func (m *Manager) Size() (int64, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if !m.mounted {
		return 0, ErrNotMounted
	}
	return m.file.Size()
}

// WriteTimestamp writes a timestamp marker line to the log file.
func (m *Manager) WriteTimestamp() error {
	marker := fmt.Sprintf("\n-------Log Timestamp: %d -----------\n", time.Now().Unix())
	n, err := m.Write([]byte(marker))
	if err != nil {
		return err
	}
	if n != len(marker) {
		return fmt.Errorf("short timestamp write: %d of %d bytes", n, len(marker))
	}
	return nil
}

// PowerOn applies power to the device without mounting, for manual
// control from the console. Fails while mounted.
func (m *Manager) PowerOn() error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.mounted {
		return ErrMounted
	}
	return m.powerUp()
}

// PowerOff removes power from the device. Fails while mounted; unmount
// first so the log file is flushed.
func (m *Manager) PowerOff() error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.mounted {
		return ErrMounted
	}
	m.powerDown()
	return nil
}

// powerUp runs the hardware sequencing contract: bus signaling first,
// a settle delay before the first-ever power-up, then power.
func (m *Manager) powerUp() error {
	if err := m.Power.EnableBus(); err != nil {
		return fmt.Errorf("enable bus: %v", err)
	}
	if !m.poweredOnce {
		time.Sleep(m.SettleDelay)
		m.poweredOnce = true
	}
	if err := m.Power.PowerOn(); err != nil {
		m.powerDown()
		return fmt.Errorf("power on: %v", err)
	}
	return nil
}

func (m *Manager) powerDown() {
	if err := m.Power.PowerOff(); err != nil {
		glog.Warningf("power off: %v", err)
	}
	if err := m.Power.DisableBus(); err != nil {
		glog.Warningf("disable bus: %v", err)
	}
}
