package console

// line is one editable line buffer. The recorded length grows only when
// the cursor passes the end of the line (tail-append semantics).
type line struct {
	buf [MaxLine]byte
	n   int
}

func (l *line) String() string {
	return string(l.buf[:l.n])
}

// history is a ring of line slots shared between the line being edited
// and past commands. One slot is always kept unused (nil) as a boundary
// so recall can detect "no further history" without counting entries.
type history struct {
	slots []*line
	idx   int
}

func newHistory(depth int) *history {
	return &history{slots: make([]*line, depth+2)}
}

// move shifts the current index one slot forwards or backwards,
// wrapping around the ring. It changes the index only.
func (h *history) move(forwards bool) {
	if forwards {
		h.idx++
		if h.idx == len(h.slots) {
			h.idx = 0
		}
	} else {
		h.idx--
		if h.idx < 0 {
			h.idx = len(h.slots) - 1
		}
	}
}

// current returns the line at the current index, or nil for an unused slot.
func (h *history) current() *line {
	return h.slots[h.idx]
}

// startLine prepares the current slot for a fresh prompt and clears the
// slot after it, preserving the unused boundary. This is why the ring
// holds one more slot than the recallable history depth plus the line
// being edited.
func (h *history) startLine() *line {
	cur := h.slots[h.idx]
	if cur == nil {
		cur = &line{}
		h.slots[h.idx] = cur
	}
	cur.n = 0
	h.move(true)
	h.slots[h.idx] = nil
	h.move(false)
	return cur
}

// commit advances the index past the current slot, keeping the
// committed line recallable.
func (h *history) commit() {
	h.move(true)
}
