package loader

import (
	"fmt"

	"github.com/nmoreau/strikecore/engine/state"
	"github.com/nmoreau/strikecore/types"
)

// validate checks cross-references between compiled definitions.
func validate(defs *state.Defs) error {
	if len(defs.Combatants) == 0 {
		return fmt.Errorf("content defines no combatants")
	}

	for id, chain := range defs.Chains {
		if chain.Owner != "" {
			if _, ok := defs.Combatants[chain.Owner]; !ok {
				return fmt.Errorf("chain %q: owner %q is not a defined combatant", id, chain.Owner)
			}
		}
		for i, step := range chain.Steps {
			if step.ActionID == "" {
				return fmt.Errorf("chain %q: step %d has no action", id, i+1)
			}
			if _, ok := defs.Actions[step.ActionID]; !ok {
				return fmt.Errorf("chain %q: step %d references unknown action %q", id, i+1, step.ActionID)
			}
			if step.DelayTicks < 0 {
				return fmt.Errorf("chain %q: step %d has negative delay", id, i+1)
			}
		}
	}

	for id, a := range defs.Actions {
		if a.Cooldown < 0 {
			return fmt.Errorf("action %q: negative cooldown", id)
		}
		for res, amt := range a.Cost {
			if amt < 0 {
				return fmt.Errorf("action %q: negative cost for %q", id, res)
			}
		}
		for i, c := range a.Conditions {
			if err := validateCondition(c); err != nil {
				return fmt.Errorf("action %q: condition %d: %w", id, i+1, err)
			}
		}
	}

	return nil
}

func validateCondition(c types.Condition) error {
	if c.Type == "not" {
		if c.Inner == nil {
			return fmt.Errorf("not condition has no inner condition")
		}
		return validateCondition(*c.Inner)
	}
	return nil
}
