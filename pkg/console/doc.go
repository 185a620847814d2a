// Package console implements a byte-driven interactive command line
// over a raw endpoint.
package console

// The endpoint provides no line discipline: the editor owns echoing,
// tail editing and VT-100 escape decoding, and assumes the connected
// terminal emulates a VT-100. Editing is tail-only: printable bytes
// overwrite at the cursor and extend the line only when the cursor
// passes the end, and backspace deletes only at end of line. This is a
// stated contract of the console, not a missing feature.
//
// Producer: console session task
// Consumer: a human on a terminal (serial, TCP, websocket or MQTT)
