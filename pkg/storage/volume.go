package storage

import "io"

// Volume abstracts the filesystem on the removable medium. The mount
// manager never touches filesystem internals directly.
type Volume interface {
	// Probe verifies the medium is present and the filesystem is
	// readable. Called once per mount attempt, with power applied.
	Probe() error
	// Open opens the named log file for appending, creating it when it
	// does not exist. The returned file is positioned at end of file.
	Open(name string) (File, error)
}

// File is an open log file on the volume.
type File interface {
	io.Writer
	// Size reports the current size of the file in bytes.
	Size() (int64, error)
	// Sync flushes pending writes to the medium.
	Sync() error
	Close() error
}

// PowerControl drives the storage device's bus signaling and power
// rail. The device must observe bus signaling before power is applied
// or it resets, so the mount manager sequences these calls strictly.
type PowerControl interface {
	EnableBus() error
	DisableBus() error
	PowerOn() error
	PowerOff() error
}

// StateNotifier observes mount state transitions. Notifications are
// delivered outside the manager's mutex, so implementations may block
// briefly (e.g. publishing to a broker) without stalling mounts.
type StateNotifier interface {
	MountStateChanged(mounted bool)
}

// Indicator reflects write activity to the outside world, whether a
// hardware LED or a published event.
type Indicator interface {
	// ToggleActivity flips the activity signal after a successful write.
	ToggleActivity()
	// ClearActivity turns the signal off, typically from a heartbeat.
	ClearActivity()
}
