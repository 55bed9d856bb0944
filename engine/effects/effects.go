// Package effects implements centralized state mutation via the Apply
// function. Every effect type is one atomic operation; each application
// announces its consequence on the event bus.
package effects

import (
	"github.com/nmoreau/strikecore/engine/bus"
	"github.com/nmoreau/strikecore/engine/rng"
	"github.com/nmoreau/strikecore/engine/state"
	"github.com/nmoreau/strikecore/types"
)

// Context carries the bound actor/target and action identity needed to
// resolve "who" placeholders and stamp raised events.
type Context struct {
	ActionID string
	Actor    string
	Target   string
}

func (c Context) resolveWho(who string) string {
	switch who {
	case "actor", "":
		return c.Actor
	case "target":
		return c.Target
	default:
		return who
	}
}

// Apply applies a list of effects to the combat state, mutating it and
// raising one queued bus event per observable consequence. Unknown effect
// types are skipped. The RNG drives damage variance; pass nil for none.
func Apply(s *types.State, defs *state.Defs, b *bus.Bus, r *rng.RNG, effs []types.Effect, ctx Context) {
	for _, eff := range effs {
		switch eff.Type {
		case "damage":
			applyDamage(s, b, r, eff, ctx)

		case "heal":
			who := ctx.resolveWho(str(eff.Params["who"]))
			amount := toInt(eff.Params["amount"])
			hp := state.GetStat(s, who, "hp") + amount
			state.SetStat(s, who, "hp", hp)
			b.Raise(types.EventEffectApplied, ctx.Actor, who, map[string]any{
				"effect": "heal", "amount": amount, "action": ctx.ActionID,
			}, false)

		case "apply_status":
			who := ctx.resolveWho(str(eff.Params["who"]))
			status := str(eff.Params["status"])
			if cs, ok := s.Combatants[who]; ok {
				cs.Statuses[status] = true
			}
			b.Raise(types.EventStatusChanged, ctx.Actor, who, map[string]any{
				"status": status, "active": true,
			}, false)

		case "remove_status":
			who := ctx.resolveWho(str(eff.Params["who"]))
			status := str(eff.Params["status"])
			if cs, ok := s.Combatants[who]; ok {
				delete(cs.Statuses, status)
			}
			b.Raise(types.EventStatusChanged, ctx.Actor, who, map[string]any{
				"status": status, "active": false,
			}, false)

		case "apply_effect":
			who := ctx.resolveWho(str(eff.Params["who"]))
			name := str(eff.Params["effect"])
			stat := str(eff.Params["stat"])
			delta := toInt(eff.Params["delta"])
			if stat != "" {
				state.SetStat(s, who, stat, state.GetStat(s, who, stat)+delta)
			}
			if cs, ok := s.Combatants[who]; ok {
				cs.Statuses["effect:"+name] = true
			}
			b.Raise(types.EventEffectApplied, ctx.Actor, who, map[string]any{
				"effect": name, "stat": stat, "delta": delta,
			}, false)

		case "remove_effect":
			who := ctx.resolveWho(str(eff.Params["who"]))
			name := str(eff.Params["effect"])
			stat := str(eff.Params["stat"])
			delta := toInt(eff.Params["delta"])
			if stat != "" {
				state.SetStat(s, who, stat, state.GetStat(s, who, stat)-delta)
			}
			if cs, ok := s.Combatants[who]; ok {
				delete(cs.Statuses, "effect:"+name)
			}
			b.Raise(types.EventEffectRemoved, ctx.Actor, who, map[string]any{
				"effect": name, "stat": stat, "delta": delta,
			}, false)

		case "spend_resource":
			who := ctx.resolveWho(str(eff.Params["who"]))
			resource := str(eff.Params["resource"])
			amount := toInt(eff.Params["amount"])
			if cs, ok := s.Combatants[who]; ok {
				cs.Resources[resource] -= amount
				if cs.Resources[resource] < 0 {
					cs.Resources[resource] = 0
				}
			}

		case "restore_resource":
			who := ctx.resolveWho(str(eff.Params["who"]))
			resource := str(eff.Params["resource"])
			amount := toInt(eff.Params["amount"])
			if cs, ok := s.Combatants[who]; ok {
				cs.Resources[resource] += amount
			}

		case "set_flag":
			flag := str(eff.Params["flag"])
			value, _ := eff.Params["value"].(bool)
			s.Flags[flag] = value

		case "inc_counter":
			counter := str(eff.Params["counter"])
			s.Counters[counter] += toInt(eff.Params["amount"])

		case "emit":
			payload := map[string]any{"action": ctx.ActionID}
			if name := str(eff.Params["name"]); name != "" {
				payload["name"] = name
			}
			for k, v := range eff.Params {
				if k != "name" {
					payload[k] = v
				}
			}
			b.Raise(types.EventCustom, ctx.Actor, ctx.Target, payload, false)
		}
	}
}

// applyDamage computes max(1, amount + actor attack - target defense +
// variance roll), clamps hp at zero, and announces the hit. A target at
// zero hp also gets a status_changed "down" announcement.
func applyDamage(s *types.State, b *bus.Bus, r *rng.RNG, eff types.Effect, ctx Context) {
	// Damage falls on the target unless the effect names someone else.
	who := str(eff.Params["who"])
	if who == "" {
		who = "target"
	}
	who = ctx.resolveWho(who)
	amount := toInt(eff.Params["amount"])
	variance := toInt(eff.Params["variance"])

	dmg := amount + state.GetStat(s, ctx.Actor, "attack") - state.GetStat(s, who, "defense")
	roll := 0
	if variance > 0 && r != nil {
		roll = r.Roll(variance)
		dmg += roll
	}
	if dmg < 1 {
		dmg = 1
	}

	hp := state.GetStat(s, who, "hp") - dmg
	if hp < 0 {
		hp = 0
	}
	state.SetStat(s, who, "hp", hp)

	b.Raise(types.EventDamageDealt, ctx.Actor, who, map[string]any{
		"amount": dmg, "roll": roll, "remaining_hp": hp, "action": ctx.ActionID,
	}, false)

	if hp == 0 {
		b.Raise(types.EventStatusChanged, ctx.Actor, who, map[string]any{
			"status": "down", "active": true,
		}, false)
	}
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

// toInt converts an any value to int, handling float64 from JSON/Lua.
func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
