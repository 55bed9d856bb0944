// Package rules implements condition evaluation for action validation.
package rules

import (
	"github.com/nmoreau/strikecore/engine/state"
	"github.com/nmoreau/strikecore/types"
)

// Binding resolves the "who" placeholders inside condition parameters.
type Binding struct {
	Actor  string
	Target string
}

// resolveWho maps "actor"/"target" placeholders to bound combatant IDs.
// Anything else is taken as a literal combatant ID.
func (b Binding) resolveWho(who string) string {
	switch who {
	case "actor", "":
		return b.Actor
	case "target":
		return b.Target
	default:
		return who
	}
}

// Eval evaluates a single condition against the current state.
// Unknown condition types fail closed.
func Eval(c types.Condition, s *types.State, defs *state.Defs, b Binding) bool {
	switch c.Type {
	case "alive":
		who, _ := c.Params["who"].(string)
		return state.Alive(s, b.resolveWho(who))

	case "has_status":
		who, _ := c.Params["who"].(string)
		status, _ := c.Params["status"].(string)
		return state.HasStatus(s, b.resolveWho(who), status)

	case "status_not":
		who, _ := c.Params["who"].(string)
		status, _ := c.Params["status"].(string)
		return !state.HasStatus(s, b.resolveWho(who), status)

	case "resource_gte":
		who, _ := c.Params["who"].(string)
		resource, _ := c.Params["resource"].(string)
		amount := toInt(c.Params["amount"])
		return state.GetResource(s, b.resolveWho(who), resource) >= amount

	case "stat_gt":
		who, _ := c.Params["who"].(string)
		stat, _ := c.Params["stat"].(string)
		value := toInt(c.Params["value"])
		return state.GetStat(s, b.resolveWho(who), stat) > value

	case "stat_lt":
		who, _ := c.Params["who"].(string)
		stat, _ := c.Params["stat"].(string)
		value := toInt(c.Params["value"])
		return state.GetStat(s, b.resolveWho(who), stat) < value

	case "flag_set":
		flag, _ := c.Params["flag"].(string)
		return state.GetFlag(s, flag)

	case "flag_not":
		flag, _ := c.Params["flag"].(string)
		return !state.GetFlag(s, flag)

	case "counter_gt":
		counter, _ := c.Params["counter"].(string)
		value := toInt(c.Params["value"])
		return state.GetCounter(s, counter) > value

	case "not":
		if c.Inner == nil {
			return true
		}
		return !Eval(*c.Inner, s, defs, b)

	default:
		return false
	}
}

// EvalAll returns true if all conditions pass (AND logic).
// An empty condition list is vacuously true.
func EvalAll(conditions []types.Condition, s *types.State, defs *state.Defs, b Binding) bool {
	for _, c := range conditions {
		if !Eval(c, s, defs, b) {
			return false
		}
	}
	return true
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
