package stage

import (
	"testing"
	"time"

	"github.com/nmoreau/strikecore/engine/action"
	"github.com/nmoreau/strikecore/engine/bus"
	"github.com/nmoreau/strikecore/engine/state"
	"github.com/nmoreau/strikecore/types"
)

func testDefs() *state.Defs {
	return &state.Defs{
		Actions: map[string]types.ActionDef{
			"slash": {
				ID:   "slash",
				Kind: types.KindBasicAttack,
				Effects: []types.Effect{
					{Type: "damage", Params: map[string]any{"who": "target", "amount": 3}},
				},
				Cooldown: 2,
			},
			"fireball": {
				ID:   "fireball",
				Kind: types.KindSpecialAbility,
				Cost: map[string]int{"mana": 4},
				Effects: []types.Effect{
					{Type: "damage", Params: map[string]any{"who": "target", "amount": 8}},
				},
			},
		},
		Chains: map[string]types.ChainDef{
			"riposte": {
				ID:    "riposte",
				Steps: []types.ChainStep{{ActionID: "slash"}, {ActionID: "slash", DelayTicks: 1}},
			},
		},
		Combatants: map[string]types.CombatantDef{
			"hero":   {ID: "hero", Stats: map[string]int{"hp": 30, "attack": 5, "max_mana": 10}},
			"goblin": {ID: "goblin", Stats: map[string]int{"hp": 40, "defense": 2}},
		},
	}
}

// collector subscribes to everything and drains the queue on demand.
type collector struct {
	b      *bus.Bus
	events []types.CombatEvent
}

func newCollector(b *bus.Bus) *collector {
	c := &collector{b: b}
	b.Subscribe(c, types.EventActionStarted, types.EventActionCompleted,
		types.EventDamageDealt, types.EventStatusChanged, types.EventActionError)
	return c
}

func (c *collector) HandleEvent(e types.CombatEvent) { c.events = append(c.events, e) }

func (c *collector) kinds() []types.EventKind {
	c.b.DispatchQueued(time.Millisecond)
	out := make([]types.EventKind, len(c.events))
	for i, e := range c.events {
		out[i] = e.Kind
	}
	return out
}

// spyReporter records diagnostics.
type spyReporter struct {
	kinds []string
}

func (r *spyReporter) Report(kind, actor, message string, req *action.Request) {
	r.kinds = append(r.kinds, kind)
}

// spyChains records started chains.
type spyChains struct {
	defs   []types.ChainDef
	owners []string
}

func (c *spyChains) StartChain(def types.ChainDef, owner string) {
	c.defs = append(c.defs, def)
	c.owners = append(c.owners, owner)
}

func TestEffectExecutor_RunsDefinition(t *testing.T) {
	defs := testDefs()
	s := state.NewState(defs)
	b := bus.New(bus.Config{ThrottleMs: 1, BatchSize: 64})
	c := newCollector(b)

	x := EffectExecutor{Defs: defs, Bus: b, RNG: nil}
	r := action.New(types.KindSpecialAbility, "hero", types.ActionContext{
		ActionID: "fireball", Actor: "hero", Target: "goblin",
	})
	x.Execute(r, s)

	// 8 + 5 attack - 2 defense = 11 damage.
	if hp := state.GetStat(s, "goblin", "hp"); hp != 29 {
		t.Errorf("goblin hp = %d, want 29", hp)
	}
	if mana := state.GetResource(s, "hero", "mana"); mana != 6 {
		t.Errorf("hero mana = %d, want 6 (cost spent)", mana)
	}

	kinds := c.kinds()
	want := []types.EventKind{types.EventActionStarted, types.EventDamageDealt, types.EventActionCompleted}
	if len(kinds) != len(want) {
		t.Fatalf("events = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("events = %v, want %v", kinds, want)
		}
	}
}

func TestEffectExecutor_ContextMismatchNoMutation(t *testing.T) {
	defs := testDefs()
	s := state.NewState(defs)
	b := bus.New(bus.Config{})
	rep := &spyReporter{}

	x := EffectExecutor{Defs: defs, Bus: b, Reporter: rep}
	r := action.New(types.KindBasicAttack, "hero", "garbage")
	x.Execute(r, s)

	if state.GetStat(s, "goblin", "hp") != 40 {
		t.Error("mismatched context must not mutate state")
	}
	if len(rep.kinds) != 1 || rep.kinds[0] != "context_mismatch" {
		t.Errorf("reported = %v, want [context_mismatch]", rep.kinds)
	}
}

func TestChainExecutor_Delegates(t *testing.T) {
	defs := testDefs()
	s := state.NewState(defs)
	chains := &spyChains{}

	x := ChainExecutor{Defs: defs, Chains: chains}
	r := action.New(types.KindChainAction, "hero", types.ChainContext{ChainID: "riposte", Owner: "hero"})
	x.Execute(r, s)

	if len(chains.defs) != 1 || chains.defs[0].ID != "riposte" || chains.owners[0] != "hero" {
		t.Errorf("chain not started as expected: %v %v", chains.defs, chains.owners)
	}
}

func TestChainExecutor_ContextMismatchFailsLoud(t *testing.T) {
	defs := testDefs()
	s := state.NewState(defs)
	chains := &spyChains{}
	rep := &spyReporter{}

	x := ChainExecutor{Defs: defs, Chains: chains, Reporter: rep}
	r := action.New(types.KindChainAction, "hero", types.ActionContext{ActionID: "slash"})
	x.Execute(r, s)

	if len(chains.defs) != 0 {
		t.Error("no chain must start on context mismatch")
	}
	if len(rep.kinds) != 1 || rep.kinds[0] != "context_mismatch" {
		t.Errorf("reported = %v, want [context_mismatch]", rep.kinds)
	}
}

func TestChainExecutor_UnknownChainReported(t *testing.T) {
	defs := testDefs()
	s := state.NewState(defs)
	chains := &spyChains{}
	rep := &spyReporter{}

	x := ChainExecutor{Defs: defs, Chains: chains, Reporter: rep}
	r := action.New(types.KindChainAction, "hero", types.ChainContext{ChainID: "ghost"})
	x.Execute(r, s)

	if len(rep.kinds) != 1 || rep.kinds[0] != "unknown_chain" {
		t.Errorf("reported = %v, want [unknown_chain]", rep.kinds)
	}
}

func TestRouteExecutor_RoutesByKind(t *testing.T) {
	var ran string
	route := RouteExecutor{
		ByKind: map[types.ActionKind]Executor{
			types.KindChainAction: ExecutorFunc(func(r *action.Request, s *types.State) { ran = "chain" }),
		},
		Default: ExecutorFunc(func(r *action.Request, s *types.State) { ran = "default" }),
	}

	route.Execute(action.New(types.KindChainAction, "hero", nil), nil)
	if ran != "chain" {
		t.Error("chain kind should hit the chain executor")
	}
	route.Execute(action.New(types.KindBasicAttack, "hero", nil), nil)
	if ran != "default" {
		t.Error("unrouted kind should hit the default executor")
	}
}

func TestCooldownReactor(t *testing.T) {
	defs := testDefs()
	s := state.NewState(defs)

	c := CooldownReactor{Defs: defs}
	r := action.New(types.KindBasicAttack, "hero", types.ActionContext{ActionID: "slash", Actor: "hero"})
	c.React(r, s)

	if state.CooldownReady(s, "hero", "slash") {
		t.Error("slash should be on cooldown after react")
	}
	s.Tick += 2
	if !state.CooldownReady(s, "hero", "slash") {
		t.Error("cooldown should expire")
	}
}
