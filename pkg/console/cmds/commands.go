// Package cmds provides the storage and log-forwarding command set for
// console sessions.
package cmds

import (
	"strings"

	"github.com/logtalks/uartlog.go/pkg/console"
	"github.com/logtalks/uartlog.go/pkg/storage"
	"github.com/logtalks/uartlog.go/pkg/tap"
)

// rttExit is the control byte (Ctrl-D) ending a realtime terminal.
const rttExit = 0x04

// tapTokenKey stores the session's held tap token, if any.
const tapTokenKey = "$tapToken"

// Deps are the collaborators the command handlers operate on.
type Deps struct {
	Storage *storage.Manager
	Arbiter *tap.Arbiter
}

// Table builds the command table for a session. Declaration order is
// the order "help" lists commands in.
func Table(d *Deps) []console.Command {
	return []console.Command{
		console.HelpCommand(),
		{Name: "mount", Func: d.mount,
			Help: "Mounts the storage volume and opens the log file"},
		{Name: "unmount", Func: d.unmount,
			Help: "Flushes the log file and unmounts the storage volume"},
		{Name: "sdstatus", Func: d.sdstatus,
			Help: "Prints the mount state of the storage volume"},
		{Name: "sdpwr", Func: d.sdpwr,
			Help: "Controls storage power directly. Use \"sdpwr on\" or \"sdpwr off\""},
		{Name: "write_sd", Func: d.writeSD,
			Help: "Writes the given text to the log file"},
		{Name: "filesize", Func: d.filesize,
			Help: "Prints the size of the log file in bytes"},
		{Name: "write_timestamp", Func: d.writeTimestamp,
			Help: "Writes a timestamp marker to the log file"},
		{Name: "connect_log", Func: d.connectLog,
			Help: "Mirrors the live logger stream to this console until disconnect_log"},
		{Name: "disconnect_log", Func: d.disconnectLog,
			Help: "Stops mirroring the live logger stream to this console"},
		{Name: "rtt", Func: d.rtt,
			Help: "Realtime terminal: mirrors the live logger stream until Ctrl-D"},
	}
}

func (d *Deps) mount(s *console.Session, argv []string) int {
	s.Printf("Attempting to mount storage...\r\n")
	if err := d.Storage.Mount(); err != nil {
		s.Printf("Failed.\r\n")
		return 255
	}
	s.Printf("Success\r\n")
	return 0
}

func (d *Deps) unmount(s *console.Session, argv []string) int {
	if err := d.Storage.Unmount(); err != nil {
		s.Printf("Unmount failed: %v\r\n", err)
		return 255
	}
	s.Printf("Storage unmounted\r\n")
	return 0
}

func (d *Deps) sdstatus(s *console.Session, argv []string) int {
	if d.Storage.Mounted() {
		s.Printf("Storage is mounted\r\n")
	} else {
		s.Printf("Storage is unmounted\r\n")
	}
	return 0
}

func (d *Deps) sdpwr(s *console.Session, argv []string) int {
	if len(argv) != 2 {
		s.Printf("Unsupported number of arguments\r\n")
		return 255
	}
	switch argv[1] {
	case "on":
		if err := d.Storage.PowerOn(); err != nil {
			s.Printf("Power on failed: %v\r\n", err)
			return 255
		}
		s.Printf("Storage powered on\r\n")
	case "off":
		if err := d.Storage.PowerOff(); err != nil {
			s.Printf("Power off failed: %v\r\n", err)
			return 255
		}
		s.Printf("Storage powered off\r\n")
	default:
		s.Printf("Unknown command %s. Try \"help sdpwr\"\r\n", argv[1])
		return 255
	}
	return 0
}

func (d *Deps) writeSD(s *console.Session, argv []string) int {
	if len(argv) < 2 {
		s.Printf("Unsupported number of arguments\r\n")
		return 255
	}
	text := strings.Join(argv[1:], " ")
	n, err := d.Storage.Write([]byte(text))
	if err != nil {
		s.Printf("Write failed: %v\r\n", err)
		return 255
	}
	s.Printf("Wrote %d bytes\r\n", n)
	return 0
}

func (d *Deps) filesize(s *console.Session, argv []string) int {
	size, err := d.Storage.Size()
	if err != nil {
		s.Printf("Size unavailable: %v\r\n", err)
		return 255
	}
	s.Printf("Log file size: %d bytes\r\n", size)
	return 0
}

func (d *Deps) writeTimestamp(s *console.Session, argv []string) int {
	if err := d.Storage.WriteTimestamp(); err != nil {
		s.Printf("Timestamp write failed: %v\r\n", err)
		return 255
	}
	s.Printf("Timestamp written\r\n")
	return 0
}

func (d *Deps) connectLog(s *console.Session, argv []string) int {
	if s.Get(tapTokenKey) != nil {
		s.Printf("Already connected to the log stream\r\n")
		return 255
	}
	token, err := d.Arbiter.Acquire(s.Endpoint())
	if err != nil {
		s.Printf("Log stream busy\r\n")
		return 255
	}
	s.Set(tapTokenKey, token)
	s.Printf("Connected to the log stream\r\n")
	return 0
}

func (d *Deps) disconnectLog(s *console.Session, argv []string) int {
	token, _ := s.Get(tapTokenKey).(*tap.Token)
	if token == nil {
		s.Printf("Not connected to the log stream\r\n")
		return 255
	}
	s.Set(tapTokenKey, nil)
	if err := d.Arbiter.Release(token); err != nil {
		s.Printf("Disconnect failed: %v\r\n", err)
		return 255
	}
	s.Printf("Disconnected from the log stream\r\n")
	return 0
}

// rtt runs a realtime terminal: the live logger stream is mirrored to
// the session endpoint until Ctrl-D arrives on the session's own input.
// The tap is released however the command exits.
func (d *Deps) rtt(s *console.Session, argv []string) int {
	token, err := d.Arbiter.Acquire(s.Endpoint())
	if err != nil {
		s.Printf("Log stream busy\r\n")
		return 255
	}
	defer d.Arbiter.Release(token)
	s.Printf("Realtime terminal, press Ctrl-D to exit\r\n")
	buf := make([]byte, 1)
	for {
		n, err := s.Endpoint().Read(buf)
		if err != nil {
			s.Printf("\r\nRealtime terminal closed: %v\r\n", err)
			return 255
		}
		if n > 0 && buf[0] == rttExit {
			s.Printf("\r\nRealtime terminal closed\r\n")
			return 0
		}
	}
}
