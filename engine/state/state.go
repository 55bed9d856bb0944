// Package state manages the mutable combat state and the immutable
// definitions it is seeded from.
package state

import "github.com/nmoreau/strikecore/types"

// Defs holds the immutable combat definitions loaded from Lua.
type Defs struct {
	Scenario   types.ScenarioDef
	Actions    map[string]types.ActionDef
	Chains     map[string]types.ChainDef
	Combatants map[string]types.CombatantDef
}

// NewState creates a fresh combat state from definitions. Each combatant's
// runtime stats start as a copy of its base stats.
func NewState(defs *Defs) *types.State {
	s := &types.State{
		Combatants: map[string]*types.CombatantState{},
		Flags:      map[string]bool{},
		Counters:   map[string]int{},
		RNGSeed:    defs.Scenario.Seed,
	}
	for id, def := range defs.Combatants {
		cs := &types.CombatantState{
			Stats:     make(map[string]int, len(def.Stats)),
			Statuses:  map[string]bool{},
			Cooldowns: map[string]int{},
			Resources: map[string]int{},
		}
		for k, v := range def.Stats {
			cs.Stats[k] = v
		}
		for _, st := range def.Statuses {
			cs.Statuses[st] = true
		}
		// Resource pools are stats prefixed "max_": max_mana seeds mana.
		for k, v := range def.Stats {
			if len(k) > 4 && k[:4] == "max_" {
				cs.Resources[k[4:]] = v
			}
		}
		s.Combatants[id] = cs
	}
	return s
}

// GetStat returns a combatant's runtime stat. Missing combatants or stats
// return 0.
func GetStat(s *types.State, combatant, stat string) int {
	if cs, ok := s.Combatants[combatant]; ok {
		return cs.Stats[stat]
	}
	return 0
}

// SetStat sets a combatant's runtime stat. Unknown combatants are ignored.
func SetStat(s *types.State, combatant, stat string, value int) {
	if cs, ok := s.Combatants[combatant]; ok {
		cs.Stats[stat] = value
	}
}

// HasStatus returns true if the combatant currently has the status.
func HasStatus(s *types.State, combatant, status string) bool {
	if cs, ok := s.Combatants[combatant]; ok {
		return cs.Statuses[status]
	}
	return false
}

// GetResource returns a combatant's resource pool value.
func GetResource(s *types.State, combatant, resource string) int {
	if cs, ok := s.Combatants[combatant]; ok {
		return cs.Resources[resource]
	}
	return 0
}

// Alive returns true if the combatant exists and has hp above zero.
func Alive(s *types.State, combatant string) bool {
	if cs, ok := s.Combatants[combatant]; ok {
		return cs.Stats["hp"] > 0
	}
	return false
}

// CooldownReady returns true if the combatant may use the action on the
// current tick. Actions never used are always ready.
func CooldownReady(s *types.State, combatant, actionID string) bool {
	cs, ok := s.Combatants[combatant]
	if !ok {
		return false
	}
	until, ok := cs.Cooldowns[actionID]
	if !ok {
		return true
	}
	return s.Tick >= until
}

// StartCooldown records that the action becomes usable again after the
// given number of ticks.
func StartCooldown(s *types.State, combatant, actionID string, ticks int) {
	if cs, ok := s.Combatants[combatant]; ok && ticks > 0 {
		cs.Cooldowns[actionID] = s.Tick + ticks
	}
}

// GetFlag returns the value of a flag. Unset flags return false.
func GetFlag(s *types.State, name string) bool {
	return s.Flags[name]
}

// GetCounter returns the value of a counter. Unset counters return 0.
func GetCounter(s *types.State, name string) int {
	return s.Counters[name]
}
