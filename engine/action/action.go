// Package action defines the unit of work flowing through the resolution
// pipeline: one actor's requested action plus a thread-safe one-way
// cancellation flag.
package action

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/nmoreau/strikecore/types"
)

// Request is an immutable description of one requested action. The only
// mutable piece is the cancellation flag, which transitions false→true at
// most once and is safe to touch from any goroutine.
type Request struct {
	Kind    types.ActionKind
	Source  string // combatant or system that issued the request
	Created time.Time
	Context any // opaque payload interpreted by stage strategies

	id        string
	cancelled atomic.Bool
}

// New constructs a request with a freshly assigned unique ID and the current
// UTC time. The ID is never reassigned.
func New(kind types.ActionKind, source string, context any) *Request {
	return &Request{
		Kind:    kind,
		Source:  source,
		Created: time.Now().UTC(),
		Context: context,
		id:      uuid.NewString(),
	}
}

// ID returns the request's unique identifier.
func (r *Request) ID() string {
	return r.id
}

// Cancel marks the request cancelled. Idempotent: repeated calls have no
// further effect. The pipeline does not enforce cancellation — stages that
// perform irreversible work must check Cancelled at safe points themselves.
func (r *Request) Cancel() {
	r.cancelled.Store(true)
}

// Cancelled reports whether the request has been cancelled.
func (r *Request) Cancelled() bool {
	return r.cancelled.Load()
}
