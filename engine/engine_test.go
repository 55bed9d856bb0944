package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/nmoreau/strikecore/engine/action"
	"github.com/nmoreau/strikecore/engine/bus"
	"github.com/nmoreau/strikecore/engine/state"
	"github.com/nmoreau/strikecore/types"
)

func testDefs() *state.Defs {
	return &state.Defs{
		Scenario: types.ScenarioDef{Title: "Test Arena", Seed: 7},
		Actions: map[string]types.ActionDef{
			"slash": {
				ID:   "slash",
				Kind: types.KindBasicAttack,
				Effects: []types.Effect{
					{Type: "damage", Params: map[string]any{"who": "target", "amount": 3}},
				},
				Weight: 10,
			},
			"fireball": {
				ID:       "fireball",
				Kind:     types.KindSpecialAbility,
				Cooldown: 2,
				Cost:     map[string]int{"mana": 4},
				Effects: []types.Effect{
					{Type: "damage", Params: map[string]any{"who": "target", "amount": 8}},
				},
			},
			"guard": {
				ID:   "guard",
				Kind: types.KindContextual,
				Effects: []types.Effect{
					{Type: "apply_status", Params: map[string]any{"who": "actor", "status": "guarding"}},
				},
			},
		},
		Chains: map[string]types.ChainDef{
			"flurry": {
				ID: "flurry",
				Steps: []types.ChainStep{
					{ActionID: "slash"},
					{ActionID: "slash", DelayTicks: 1},
				},
			},
		},
		Combatants: map[string]types.CombatantDef{
			"hero":   {ID: "hero", Stats: map[string]int{"hp": 30, "attack": 5, "max_mana": 10}},
			"goblin": {ID: "goblin", Stats: map[string]int{"hp": 60, "defense": 2}},
		},
	}
}

func fastBus() bus.Config {
	return bus.Config{ThrottleMs: 1, BatchSize: 64}
}

func tick(e *Engine) {
	e.Tick(time.Millisecond)
}

func slashReq(actor, target string) *action.Request {
	return action.New(types.KindBasicAttack, actor, types.ActionContext{
		ActionID: "slash", Actor: actor, Target: target,
	})
}

func TestTick_RunsSubmittedRequest(t *testing.T) {
	e := New(testDefs(), fastBus())
	e.Submit(slashReq("hero", "goblin"))

	winner, ok := e.Tick(time.Millisecond)
	if winner == nil || !ok {
		t.Fatalf("winner=%v ok=%v, want a successful run", winner, ok)
	}
	// 3 + 5 attack - 2 defense = 6.
	if hp := state.GetStat(e.State, "goblin", "hp"); hp != 54 {
		t.Errorf("goblin hp = %d, want 54", hp)
	}
}

func TestTick_ArbitratesByPriority(t *testing.T) {
	e := New(testDefs(), fastBus())
	e.Submit(slashReq("hero", "goblin"))
	e.Submit(action.New(types.KindSpecialAbility, "hero", types.ActionContext{
		ActionID: "fireball", Actor: "hero", Target: "goblin",
	}))
	e.Submit(action.New(types.KindContextual, "goblin", types.ActionContext{
		ActionID: "guard", Actor: "goblin",
	}))

	winner, ok := e.Tick(time.Millisecond)
	if !ok || winner.Kind != types.KindSpecialAbility {
		t.Fatalf("winner = %v, want the special ability", winner.Kind)
	}
	// Losers are discarded, not deferred.
	if hp := state.GetStat(e.State, "goblin", "hp"); hp != 49 {
		t.Errorf("goblin hp = %d, want 49 (only fireball landed)", hp)
	}
	if state.HasStatus(e.State, "goblin", "guarding") {
		t.Error("losing contextual action must not execute")
	}
}

func TestTick_NoCandidates(t *testing.T) {
	e := New(testDefs(), fastBus())
	winner, ok := e.Tick(time.Millisecond)
	if winner != nil || ok {
		t.Errorf("empty tick should report no winner, got %v %v", winner, ok)
	}
	if e.State.Tick != 1 {
		t.Errorf("tick counter = %d, want 1", e.State.Tick)
	}
}

func TestTick_RejectedRequestRaisesActionError(t *testing.T) {
	e := New(testDefs(), fastBus())

	// Drain mana so fireball fails validation.
	e.State.Combatants["hero"].Resources["mana"] = 0
	e.Submit(action.New(types.KindSpecialAbility, "hero", types.ActionContext{
		ActionID: "fireball", Actor: "hero", Target: "goblin",
	}))

	_, ok := e.Tick(time.Millisecond)
	if ok {
		t.Fatal("unaffordable fireball must be rejected")
	}

	errs := e.Bus.Recent(types.EventActionError, 1)
	if len(errs) != 1 || errs[0].Payload["diagnostic"] != "state_conflict" {
		t.Errorf("expected a state_conflict action_error on the bus, got %v", errs)
	}
	if hp := state.GetStat(e.State, "goblin", "hp"); hp != 60 {
		t.Error("rejected action must not mutate state")
	}
}

func TestChain_RunsStepsOnSubsequentTicks(t *testing.T) {
	e := New(testDefs(), fastBus())
	e.Submit(action.New(types.KindChainAction, "hero", types.ChainContext{
		ChainID: "flurry", Owner: "hero",
	}))

	_, ok := e.Tick(time.Millisecond)
	if !ok {
		t.Fatal("chain request should pass the gate")
	}
	if hp := state.GetStat(e.State, "goblin", "hp"); hp != 60 {
		t.Error("starting a chain must not deal damage yet")
	}

	// Step 1 lands next tick; step 2 one tick later (delay 1, spaced).
	tick(e)
	tick(e)
	tick(e)

	started := e.Bus.Recent(types.EventActionStarted, 10)
	var slashes int
	for _, ev := range started {
		if ev.Payload["action"] == "slash" {
			slashes++
		}
	}
	if slashes != 2 {
		t.Errorf("chain should have started slash twice, got %d", slashes)
	}
}

func TestSubmit_ConcurrentProducers(t *testing.T) {
	e := New(testDefs(), fastBus())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				e.Submit(slashReq("hero", "goblin"))
			}
		}()
	}
	wg.Wait()

	e.mu.Lock()
	n := len(e.pending)
	e.mu.Unlock()
	if n != 400 {
		t.Errorf("pending = %d, want 400", n)
	}
}

func TestAutoRequest_Deterministic(t *testing.T) {
	e := New(testDefs(), fastBus())
	r := e.AutoRequest("goblin", "hero")
	if r == nil {
		t.Fatal("slash has weight, AutoRequest must pick something")
	}
	ctx := r.Context.(types.ActionContext)
	if ctx.ActionID != "slash" {
		t.Errorf("only slash is weighted, got %q", ctx.ActionID)
	}
	if ctx.Actor != "goblin" || ctx.Target != "hero" {
		t.Errorf("binding = %+v", ctx)
	}
}

func TestAutoRequest_NoWeightedActions(t *testing.T) {
	defs := testDefs()
	for id, def := range defs.Actions {
		def.Weight = 0
		defs.Actions[id] = def
	}
	e := New(defs, fastBus())
	if r := e.AutoRequest("goblin", "hero"); r != nil {
		t.Errorf("expected nil with no weighted actions, got %v", r)
	}
}
