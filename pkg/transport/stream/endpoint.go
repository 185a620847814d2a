// Package stream provides raw byte endpoints over local files and
// standard I/O.
package stream

import (
	"io"
	"os"
)

// Open opens a device file, typically a serial port already configured
// for raw binary transfer, as a byte endpoint.
func Open(path string) (io.ReadWriteCloser, error) {
	return os.OpenFile(path, os.O_RDWR, 0)
}

// StdIO returns the process's standard input/output as a byte
// endpoint, for running a console session on the controlling terminal.
func StdIO() io.ReadWriter {
	return stdio{}
}

type stdio struct{}

func (stdio) Read(p []byte) (int, error) {
	return os.Stdin.Read(p)
}

func (stdio) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}
