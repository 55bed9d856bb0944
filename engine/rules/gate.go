package rules

import (
	"github.com/nmoreau/strikecore/engine/action"
	"github.com/nmoreau/strikecore/engine/state"
	"github.com/nmoreau/strikecore/types"
)

// Gate validates action requests against the loaded definitions. It is the
// validation collaborator behind the default pre-check stage.
type Gate struct {
	Defs *state.Defs
}

// IsValid reports whether the request may execute. For normal actions the
// request must carry an ActionContext naming a known action, the actor must
// be alive, the action off cooldown, its resource costs affordable, and its
// declared conditions satisfied. Chain requests carry a ChainContext and
// pass when the chain exists and its owner is alive. Cancelled requests are
// rejected here, before any mutation happens.
func (g *Gate) IsValid(r *action.Request, s *types.State) bool {
	if r.Cancelled() {
		return false
	}
	if cc, ok := r.Context.(types.ChainContext); ok {
		def, ok := g.Defs.Chains[cc.ChainID]
		if !ok {
			return false
		}
		owner := cc.Owner
		if owner == "" {
			owner = def.Owner
		}
		return state.Alive(s, owner)
	}
	ctx, ok := r.Context.(types.ActionContext)
	if !ok {
		return false
	}
	def, ok := g.Defs.Actions[ctx.ActionID]
	if !ok {
		return false
	}
	if !state.Alive(s, ctx.Actor) {
		return false
	}
	if !state.CooldownReady(s, ctx.Actor, def.ID) {
		return false
	}
	for resource, amount := range def.Cost {
		if state.GetResource(s, ctx.Actor, resource) < amount {
			return false
		}
	}
	b := Binding{Actor: ctx.Actor, Target: ctx.Target}
	return EvalAll(def.Conditions, s, g.Defs, b)
}
