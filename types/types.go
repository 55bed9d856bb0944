// Package types defines the shared data structures for the strikecore engine.
// This package contains only type definitions — no logic, no methods.
package types

import "time"

// ActionKind classifies an action request for priority arbitration.
// The set is open: content can register new kinds, unknown kinds rank lowest.
type ActionKind string

const (
	KindSpecialAbility ActionKind = "special_ability"
	KindChainAction    ActionKind = "chain_action"
	KindBasicAttack    ActionKind = "basic_attack"
	KindContextual     ActionKind = "contextual_action"
)

// EventKind enumerates the consequences the event bus can broadcast.
type EventKind string

const (
	EventActionStarted   EventKind = "action_started"
	EventActionCompleted EventKind = "action_completed"
	EventDamageDealt     EventKind = "damage_dealt"
	EventEffectApplied   EventKind = "effect_applied"
	EventEffectRemoved   EventKind = "effect_removed"
	EventStatusChanged   EventKind = "status_changed"
	EventCustom          EventKind = "custom"
	EventActionError     EventKind = "action_error"
)

// CombatEvent is an immutable record of one consequence produced during
// action resolution. Created once per raise, never mutated afterward.
type CombatEvent struct {
	Kind      EventKind
	Actor     string
	Target    string
	Payload   map[string]any
	Timestamp time.Time // UTC
}

// ActionContext is the typed payload a normal action request carries in its
// opaque context: which action definition to run and against whom.
type ActionContext struct {
	ActionID string
	Actor    string
	Target   string
}

// ChainContext is the typed payload a chain-action request carries in its
// opaque context. The chain execute strategy extracts it by type assertion.
type ChainContext struct {
	ChainID string
	Owner   string
}

// Effect is a single atomic state mutation instruction.
type Effect struct {
	Type   string
	Params map[string]any
}

// Condition is a predicate that must be true for an action to be valid.
type Condition struct {
	Type   string
	Params map[string]any
	Inner  *Condition // for "not": the negated inner condition
}

// ActionDef is the compiled definition of one action, loaded from Lua.
type ActionDef struct {
	ID          string
	Name        string
	Kind        ActionKind
	Cooldown    int            // ticks before the same actor may reuse it
	Cost        map[string]int // resource → amount spent on execute
	Conditions  []Condition    // validated by the default pre-check
	Effects     []Effect       // applied by the default execute strategy
	Weight      int            // AI selection weight (0 = never auto-picked)
	SourceOrder int
}

// ChainStep is one link of a chain action.
type ChainStep struct {
	ActionID   string
	DelayTicks int
}

// ChainDef is the compiled definition of a chain action.
type ChainDef struct {
	ID    string
	Owner string // default owner, overridable by the request context
	Steps []ChainStep
}

// CombatantDef is the base definition of a combatant loaded from Lua.
type CombatantDef struct {
	ID       string
	Name     string
	Stats    map[string]int // "hp", "attack", "defense", ...
	Statuses []string       // statuses present at combat start
	Props    map[string]any
}

// ScenarioDef holds scenario metadata from Lua.
type ScenarioDef struct {
	Title   string
	Author  string
	Version string
	Seed    int64
}

// CombatantState holds the runtime state of one combatant.
type CombatantState struct {
	Stats     map[string]int // runtime values, seeded from the definition
	Statuses  map[string]bool
	Cooldowns map[string]int // action ID → tick when usable again
	Resources map[string]int
}

// State is the complete mutable combat state. The engine core never
// serializes access to it; concurrent callers must.
type State struct {
	Combatants map[string]*CombatantState
	Flags      map[string]bool
	Counters   map[string]int
	Tick       int
	RNGSeed    int64
}
