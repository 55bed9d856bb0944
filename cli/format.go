package cli

import (
	"fmt"

	"github.com/nmoreau/strikecore/types"
)

// FormatEvent renders one combat event as a human-readable line.
func FormatEvent(e types.CombatEvent) string {
	switch e.Kind {
	case types.EventActionStarted:
		return fmt.Sprintf("%s begins %v on %s.", e.Actor, e.Payload["action"], e.Target)
	case types.EventActionCompleted:
		return fmt.Sprintf("%s finishes %v.", e.Actor, e.Payload["action"])
	case types.EventDamageDealt:
		return fmt.Sprintf("%s hits %s for %v damage (%v hp left).",
			e.Actor, e.Target, e.Payload["amount"], e.Payload["remaining_hp"])
	case types.EventEffectApplied:
		if e.Payload["stat"] != nil {
			return fmt.Sprintf("%s gains %v (%v %v).",
				e.Target, e.Payload["effect"], e.Payload["stat"], e.Payload["delta"])
		}
		return fmt.Sprintf("%s gains %v.", e.Target, e.Payload["effect"])
	case types.EventEffectRemoved:
		return fmt.Sprintf("%s loses %v.", e.Target, e.Payload["effect"])
	case types.EventStatusChanged:
		if e.Payload["active"] == true {
			return fmt.Sprintf("%s is now %v.", e.Target, e.Payload["status"])
		}
		return fmt.Sprintf("%s is no longer %v.", e.Target, e.Payload["status"])
	case types.EventActionError:
		return fmt.Sprintf("!! %v: %v", e.Payload["diagnostic"], e.Payload["message"])
	case types.EventCustom:
		return fmt.Sprintf("* %v %v", e.Payload["name"], e.Payload["data"])
	default:
		return fmt.Sprintf("%s %s -> %s %v", e.Kind, e.Actor, e.Target, e.Payload)
	}
}
