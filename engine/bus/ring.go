package bus

import "github.com/nmoreau/strikecore/types"

// ring is a fixed-capacity history buffer with oldest-first eviction.
type ring struct {
	entries []types.CombatEvent
	head    int // index of the oldest entry
	size    int
}

func newRing(capacity int) *ring {
	if capacity < 1 {
		capacity = 1
	}
	return &ring{entries: make([]types.CombatEvent, capacity)}
}

// push appends an event, evicting the oldest entry when full.
func (r *ring) push(e types.CombatEvent) {
	if r.size < len(r.entries) {
		r.entries[(r.head+r.size)%len(r.entries)] = e
		r.size++
		return
	}
	r.entries[r.head] = e
	r.head = (r.head + 1) % len(r.entries)
}

// recent returns up to n entries of the given kind, most-recent-first.
func (r *ring) recent(kind types.EventKind, n int) []types.CombatEvent {
	var out []types.CombatEvent
	for i := r.size - 1; i >= 0 && len(out) < n; i-- {
		e := r.entries[(r.head+i)%len(r.entries)]
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
