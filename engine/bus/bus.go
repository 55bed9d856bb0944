// Package bus implements the combat event hub: publish/subscribe with
// immediate and queued dispatch, throttled batch flushing, and a bounded
// circular history log.
//
// The bus is an explicitly constructed service — create one at simulation
// start with New and pass the handle to every subsystem that publishes or
// subscribes. One coarse mutex guards the subscriber map, pending queue, and
// history log, so none of them is ever observed in a half-updated state.
// Listener callbacks run outside the lock on a snapshot of the registration
// list, so a listener may raise further events from its handler.
package bus

import (
	"sync"
	"time"

	"github.com/nmoreau/strikecore/types"
)

// Listener receives combat events for the kinds it subscribed to.
// Listener identity (interface equality) keys subscription bookkeeping.
type Listener interface {
	HandleEvent(e types.CombatEvent)
}

// Bus is the process-wide combat event hub.
type Bus struct {
	mu     sync.Mutex
	subs   map[types.EventKind][]Listener
	queue  []types.CombatEvent
	log    *ring
	accum  time.Duration
	cfg    Config
	faults int
}

// New creates a bus with the given tuning. Zero-valued fields fall back to
// defaults.
func New(cfg Config) *Bus {
	cfg = cfg.withDefaults()
	return &Bus{
		subs: map[types.EventKind][]Listener{},
		log:  newRing(cfg.LogCapacity),
		cfg:  cfg,
	}
}

// Subscribe registers the listener for the given kinds. Notification order
// follows registration order. Duplicate (listener, kind) pairs are no-ops.
func (b *Bus) Subscribe(l Listener, kinds ...types.EventKind) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, kind := range kinds {
		if contains(b.subs[kind], l) {
			continue
		}
		b.subs[kind] = append(b.subs[kind], l)
	}
}

// Unsubscribe removes the listener from every kind's list.
func (b *Bus) Unsubscribe(l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for kind, list := range b.subs {
		out := list[:0]
		for _, sub := range list {
			if sub != l {
				out = append(out, sub)
			}
		}
		b.subs[kind] = out
	}
}

// Raise creates an event with the current UTC time. If immediate, it is
// dispatched and logged now; otherwise it is enqueued for the next
// throttled flush.
func (b *Bus) Raise(kind types.EventKind, actor, target string, payload map[string]any, immediate bool) {
	e := types.CombatEvent{
		Kind:      kind,
		Actor:     actor,
		Target:    target,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}

	b.mu.Lock()
	if !immediate {
		b.queue = append(b.queue, e)
		b.mu.Unlock()
		return
	}
	targets := b.snapshotLocked(e.Kind)
	b.mu.Unlock()

	b.dispatch(targets, e)
}

// DispatchQueued accumulates elapsed time and, once the throttle interval
// is reached, resets the accumulator and dispatches up to BatchSize pending
// events in FIFO order. This bounds per-tick dispatch cost regardless of
// queue depth.
func (b *Bus) DispatchQueued(dt time.Duration) {
	b.mu.Lock()
	b.accum += dt
	if b.accum < b.cfg.throttle() {
		b.mu.Unlock()
		return
	}
	b.accum = 0

	n := len(b.queue)
	if n > b.cfg.BatchSize {
		n = b.cfg.BatchSize
	}
	batch := make([]types.CombatEvent, n)
	copy(batch, b.queue[:n])
	b.queue = b.queue[n:]

	targets := make([][]Listener, n)
	for i, e := range batch {
		targets[i] = b.snapshotLocked(e.Kind)
	}
	b.mu.Unlock()

	for i, e := range batch {
		b.dispatch(targets[i], e)
	}
}

// Recent returns up to count most-recent logged events of the given kind,
// most-recent-first.
func (b *Bus) Recent(kind types.EventKind, count int) []types.CombatEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.log.recent(kind, count)
}

// Pending returns the current queued-event depth.
func (b *Bus) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// Faults returns the number of listener panics absorbed during dispatch.
func (b *Bus) Faults() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.faults
}

// snapshotLocked returns the registration-ordered listener snapshot for a
// kind. Caller holds b.mu.
func (b *Bus) snapshotLocked(kind types.EventKind) []Listener {
	list := b.subs[kind]
	if len(list) == 0 {
		return nil
	}
	snapshot := make([]Listener, len(list))
	copy(snapshot, list)
	return snapshot
}

// dispatch delivers the event to each listener in order, then appends it to
// the bounded log. A listener that reads Recent from its handler sees only
// events whose delivery has already completed, never the one in flight.
// A panicking listener is isolated so it cannot prevent delivery to the rest.
func (b *Bus) dispatch(targets []Listener, e types.CombatEvent) {
	for _, l := range targets {
		b.notifyOne(l, e)
	}
	b.mu.Lock()
	b.log.push(e)
	b.mu.Unlock()
}

func (b *Bus) notifyOne(l Listener, e types.CombatEvent) {
	defer func() {
		if recover() != nil {
			b.mu.Lock()
			b.faults++
			b.mu.Unlock()
		}
	}()
	l.HandleEvent(e)
}

func contains(list []Listener, l Listener) bool {
	for _, sub := range list {
		if sub == l {
			return true
		}
	}
	return false
}
