package stage

import (
	"fmt"

	"github.com/nmoreau/strikecore/engine/action"
	"github.com/nmoreau/strikecore/engine/bus"
	"github.com/nmoreau/strikecore/engine/effects"
	"github.com/nmoreau/strikecore/engine/rng"
	"github.com/nmoreau/strikecore/engine/state"
	"github.com/nmoreau/strikecore/types"
)

// Gate validates a request against the current state. The default checker
// delegates to it.
type Gate interface {
	IsValid(r *action.Request, s *types.State) bool
}

// GateChecker is the default pre-check strategy: a thin wrapper around a
// validation gate.
type GateChecker struct {
	Gate Gate
}

func (c GateChecker) Check(r *action.Request, s *types.State) bool {
	return c.Gate.IsValid(r, s)
}

// EffectExecutor is the default execute strategy: it runs the action
// definition named by the request's ActionContext — spends its costs,
// applies its effects, triggers external systems — and brackets the run
// with action_started/action_completed events.
type EffectExecutor struct {
	Defs     *state.Defs
	Bus      *bus.Bus
	RNG      *rng.RNG
	Systems  Systems  // optional
	Reporter Reporter // optional
}

func (x EffectExecutor) Execute(r *action.Request, s *types.State) {
	ctx, ok := r.Context.(types.ActionContext)
	if !ok {
		x.report("context_mismatch", r.Source, fmt.Sprintf("expected ActionContext, got %T", r.Context), r)
		return
	}
	def, ok := x.Defs.Actions[ctx.ActionID]
	if !ok {
		x.report("unknown_action", ctx.Actor, fmt.Sprintf("no action %q", ctx.ActionID), r)
		return
	}

	x.Bus.Raise(types.EventActionStarted, ctx.Actor, ctx.Target, map[string]any{
		"action": def.ID, "request_id": r.ID(),
	}, true)

	for resource, amount := range def.Cost {
		if cs, ok := s.Combatants[ctx.Actor]; ok {
			cs.Resources[resource] -= amount
			if cs.Resources[resource] < 0 {
				cs.Resources[resource] = 0
			}
		}
	}

	ectx := effects.Context{ActionID: def.ID, Actor: ctx.Actor, Target: ctx.Target}
	effects.Apply(s, x.Defs, x.Bus, x.RNG, def.Effects, ectx)

	if x.Systems != nil {
		x.Systems.Trigger("action", map[string]any{
			"action": def.ID, "actor": ctx.Actor, "target": ctx.Target,
		})
	}

	x.Bus.Raise(types.EventActionCompleted, ctx.Actor, ctx.Target, map[string]any{
		"action": def.ID, "request_id": r.ID(),
	}, false)
}

func (x EffectExecutor) report(kind, actor, message string, r *action.Request) {
	if x.Reporter != nil {
		x.Reporter.Report(kind, actor, message, r)
	}
}

// ChainExecutor handles chain-action requests: it extracts a typed
// ChainContext from the request's opaque context and delegates to the chain
// runner. A context of the wrong type is reported and performs no mutation.
type ChainExecutor struct {
	Defs     *state.Defs
	Chains   ChainRunner
	Reporter Reporter // optional
}

func (x ChainExecutor) Execute(r *action.Request, s *types.State) {
	ctx, ok := r.Context.(types.ChainContext)
	if !ok {
		x.report("context_mismatch", r.Source, fmt.Sprintf("expected ChainContext, got %T", r.Context), r)
		return
	}
	def, ok := x.Defs.Chains[ctx.ChainID]
	if !ok {
		x.report("unknown_chain", ctx.Owner, fmt.Sprintf("no chain %q", ctx.ChainID), r)
		return
	}
	owner := ctx.Owner
	if owner == "" {
		owner = def.Owner
	}
	x.Chains.StartChain(def, owner)
}

func (x ChainExecutor) report(kind, actor, message string, r *action.Request) {
	if x.Reporter != nil {
		x.Reporter.Report(kind, actor, message, r)
	}
}

// RouteExecutor selects an execute strategy by action kind, falling back to
// Default for unrouted kinds.
type RouteExecutor struct {
	ByKind  map[types.ActionKind]Executor
	Default Executor
}

func (x RouteExecutor) Execute(r *action.Request, s *types.State) {
	if e, ok := x.ByKind[r.Kind]; ok {
		e.Execute(r, s)
		return
	}
	x.Default.Execute(r, s)
}

// CooldownReactor is the default post-react strategy: it starts the
// executed action's cooldown.
type CooldownReactor struct {
	Defs *state.Defs
}

func (c CooldownReactor) React(r *action.Request, s *types.State) {
	ctx, ok := r.Context.(types.ActionContext)
	if !ok {
		return
	}
	if def, ok := c.Defs.Actions[ctx.ActionID]; ok {
		state.StartCooldown(s, ctx.Actor, def.ID, def.Cooldown)
	}
}
