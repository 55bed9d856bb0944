// Package stage defines the pluggable pipeline stage contracts — pre-check,
// execute, post-react — and the default strategy implementations.
//
// Strategies are pure given (request, state): safe to invoke concurrently
// across different requests, but concurrent runs against the same state
// must be serialized by the caller.
package stage

import (
	"github.com/nmoreau/strikecore/engine/action"
	"github.com/nmoreau/strikecore/types"
)

// Checker is the pre-check stage: it validates a request against the
// current state without mutating anything.
type Checker interface {
	Check(r *action.Request, s *types.State) bool
}

// Executor is the execute stage: it performs all world-state mutation and
// announces consequences on the event bus.
type Executor interface {
	Execute(r *action.Request, s *types.State)
}

// Reactor is the post-react stage: cooldown updates and follow-up
// scheduling after a successful execute.
type Reactor interface {
	React(r *action.Request, s *types.State)
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc func(r *action.Request, s *types.State) bool

func (f CheckerFunc) Check(r *action.Request, s *types.State) bool { return f(r, s) }

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(r *action.Request, s *types.State)

func (f ExecutorFunc) Execute(r *action.Request, s *types.State) { f(r, s) }

// ReactorFunc adapts a function to the Reactor interface.
type ReactorFunc func(r *action.Request, s *types.State)

func (f ReactorFunc) React(r *action.Request, s *types.State) { f(r, s) }

// Reporter receives diagnostics from strategies that fail loud.
type Reporter interface {
	Report(kind, actor, message string, r *action.Request)
}

// Systems fans out gameplay-wide side effects (animation, audio, camera)
// from execute strategies. Opaque to this core.
type Systems interface {
	Trigger(name string, args map[string]any)
}

// ChainRunner starts a chain of follow-up actions for an owner.
type ChainRunner interface {
	StartChain(def types.ChainDef, owner string)
}
