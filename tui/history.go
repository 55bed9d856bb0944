// Package tui provides a Bubble Tea terminal UI for watching and driving
// a combat simulation live.
package tui

// History keeps recently entered commands in a fixed ring, so long scripted
// bouts never grow the buffer, and supports cursor navigation over them.
type History struct {
	buf    []string
	head   int // next write slot
	size   int
	cursor int // -1 = not navigating, else logical index (0 = oldest)
}

// NewHistory creates a history holding at most max commands.
func NewHistory(max int) *History {
	return &History{
		buf:    make([]string, max),
		cursor: -1,
	}
}

// at returns the entry at logical index i, 0 being the oldest retained.
func (h *History) at(i int) string {
	return h.buf[(h.head-h.size+i+len(h.buf))%len(h.buf)]
}

// Push records a command, overwriting the oldest entry once the ring is
// full. A command equal to the most recent one is not recorded again.
func (h *History) Push(cmd string) {
	if h.size > 0 && h.at(h.size-1) == cmd {
		return
	}
	h.buf[h.head] = cmd
	h.head = (h.head + 1) % len(h.buf)
	if h.size < len(h.buf) {
		h.size++
	}
}

// Prev steps the cursor toward older entries and returns the entry there.
// Returns ("", false) if history is empty.
func (h *History) Prev() (string, bool) {
	if h.size == 0 {
		return "", false
	}
	if h.cursor == -1 {
		h.cursor = h.size - 1
	} else if h.cursor > 0 {
		h.cursor--
	}
	return h.at(h.cursor), true
}

// Next steps the cursor toward newer entries. Stepping past the newest
// returns ("", false) and leaves the history in the not-navigating state.
func (h *History) Next() (string, bool) {
	if h.cursor == -1 {
		return "", false
	}
	h.cursor++
	if h.cursor >= h.size {
		h.cursor = -1
		return "", false
	}
	return h.at(h.cursor), true
}

// ResetCursor returns the history to the not-navigating state.
func (h *History) ResetCursor() {
	h.cursor = -1
}
