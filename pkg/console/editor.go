package console

import (
	"io"
)

// Editor configuration parameters.
const (
	// MaxLine is the maximum command length, including the byte the
	// editor keeps free at the end of the buffer.
	MaxLine = 80
	// HistoryDepth is the number of past commands kept recallable.
	HistoryDepth = 3
	// Prompt is written at the start of every line.
	Prompt = "-> "
)

// Terminal control sequences emitted by the editor.
const (
	crlf      = "\r\n"
	eraseChar = "\b \b"
	clearLine = "\x1b[2K\r"
)

// Editor reads command lines from a raw endpoint, echoing input and
// decoding VT-100 escape sequences as it goes. One Editor belongs to
// exactly one session and is never shared across tasks; it needs no
// locking.
type Editor struct {
	rw     io.ReadWriter
	prompt string
	hist   *history

	cur    *line
	cursor int

	readBuf [1]byte
}

// NewEditor creates an Editor bound to an endpoint.
func NewEditor(rw io.ReadWriter) *Editor {
	return &Editor{
		rw:     rw,
		prompt: Prompt,
		hist:   newHistory(HistoryDepth),
	}
}

// ReadLine reads one committed command line. It blocks on the endpoint
// and returns its read/write errors unchanged. The returned string is
// empty for an empty commit, which is not stored in history.
func (e *Editor) ReadLine() (string, error) {
	if _, err := io.WriteString(e.rw, e.prompt); err != nil {
		return "", err
	}
	e.cur = e.hist.startLine()
	e.cursor = 0
	for {
		b, err := e.readByte()
		if err != nil {
			return "", err
		}
		switch b {
		case '\r':
			return e.handleReturn()
		case '\b':
			if err = e.handleBackspace(); err != nil {
				return "", err
			}
		case 0x1b:
			if err = e.handleEscape(); err != nil {
				return "", err
			}
		default:
			if err = e.handleByte(b); err != nil {
				return "", err
			}
		}
	}
}

// handleReturn commits the current line. Empty lines are discarded and
// do not advance the history ring.
func (e *Editor) handleReturn() (string, error) {
	if _, err := io.WriteString(e.rw, crlf); err != nil {
		return "", err
	}
	if e.cur.n == 0 {
		e.hist.slots[e.hist.idx] = nil
		return "", nil
	}
	cmd := e.cur.String()
	e.hist.commit()
	return cmd, nil
}

// handleBackspace deletes the byte before the cursor, but only when the
// cursor sits at the end of a non-empty line.
func (e *Editor) handleBackspace() error {
	if e.cursor != e.cur.n || e.cursor == 0 {
		return nil
	}
	// Move back, blank the character, move back again.
	if _, err := io.WriteString(e.rw, eraseChar); err != nil {
		return err
	}
	e.cursor--
	e.cur.n--
	return nil
}

// handleByte echoes and stores one ordinary byte at the cursor.
func (e *Editor) handleByte(b byte) error {
	if e.cur.n >= MaxLine-1 {
		// Line full. Neither echo nor store.
		return nil
	}
	if _, err := e.rw.Write([]byte{b}); err != nil {
		return err
	}
	e.cur.buf[e.cursor] = b
	e.cursor++
	if e.cursor > e.cur.n {
		e.cur.n = e.cursor
	}
	return nil
}

// handleEscape reads the two bytes following an ESC and interprets the
// cursor-movement sequences the editor understands. Unrecognized pairs
// are echoed verbatim.
func (e *Editor) handleEscape() error {
	var seq [2]byte
	for i := range seq {
		b, err := e.readByte()
		if err != nil {
			return err
		}
		seq[i] = b
	}
	if seq[0] != '[' {
		_, err := e.rw.Write(seq[:])
		return err
	}
	switch seq[1] {
	case 'A': // up
		return e.recall(false)
	case 'B': // down
		return e.recall(true)
	case 'C': // right
		if e.cursor < e.cur.n {
			e.cursor++
			return e.replayCSI(seq)
		}
	case 'D': // left
		if e.cursor > 0 {
			e.cursor--
			return e.replayCSI(seq)
		}
	default:
		// Other escape sequences are ignored.
	}
	return nil
}

// recall moves through history and redraws the terminal line with the
// recalled command. The move is undone when it lands on the unused
// boundary slot, clamping at the oldest or newest entry.
func (e *Editor) recall(forwards bool) error {
	e.hist.move(forwards)
	cur := e.hist.current()
	if cur == nil {
		e.hist.move(!forwards)
		return nil
	}
	e.cur = cur
	e.cursor = cur.n
	if _, err := io.WriteString(e.rw, clearLine+e.prompt); err != nil {
		return err
	}
	_, err := e.rw.Write(cur.buf[:cur.n])
	return err
}

// replayCSI re-emits the escape sequence so the terminal cursor follows
// the internal one.
func (e *Editor) replayCSI(seq [2]byte) error {
	_, err := e.rw.Write([]byte{0x1b, seq[0], seq[1]})
	return err
}

func (e *Editor) readByte() (byte, error) {
	for {
		n, err := e.rw.Read(e.readBuf[:])
		if err != nil {
			return 0, err
		}
		if n > 0 {
			return e.readBuf[0], nil
		}
	}
}
