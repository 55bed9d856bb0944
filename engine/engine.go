package engine

import (
	"sort"
	"sync"
	"time"

	"github.com/nmoreau/strikecore/engine/action"
	"github.com/nmoreau/strikecore/engine/bus"
	"github.com/nmoreau/strikecore/engine/resolve"
	"github.com/nmoreau/strikecore/engine/rng"
	"github.com/nmoreau/strikecore/engine/rules"
	"github.com/nmoreau/strikecore/engine/stage"
	"github.com/nmoreau/strikecore/engine/state"
	"github.com/nmoreau/strikecore/types"
)

// Engine owns the combat state, the event bus, and the default pipeline,
// and drives them from a per-tick loop. Submit is safe to call from any
// goroutine; Tick must run from a single loop.
type Engine struct {
	Defs     *state.Defs
	State    *types.State
	Bus      *bus.Bus
	RNG      *rng.RNG
	Pipeline *Pipeline
	Monitor  *TimingMonitor

	mu      sync.Mutex
	pending []*action.Request
	chains  []chainStep
}

// chainStep is one scheduled link of a running chain.
type chainStep struct {
	actionID string
	owner    string
	dueTick  int
}

// New wires an engine with the default strategies: gate-backed pre-check,
// kind-routed execute (chain requests to the chain executor, everything
// else to the effect executor), cooldown post-react. Diagnostics surface on
// the bus as action_error events.
func New(defs *state.Defs, cfg bus.Config) *Engine {
	b := bus.New(cfg)
	e := &Engine{
		Defs:    defs,
		State:   state.NewState(defs),
		Bus:     b,
		RNG:     rng.New(defs.Scenario.Seed),
		Monitor: NewTimingMonitor(),
	}

	rep := BusReporter{Bus: b}
	exec := stage.RouteExecutor{
		ByKind: map[types.ActionKind]stage.Executor{
			types.KindChainAction: stage.ChainExecutor{Defs: defs, Chains: e, Reporter: rep},
		},
		Default: stage.EffectExecutor{Defs: defs, Bus: b, RNG: e.RNG, Reporter: rep},
	}
	e.Pipeline = NewPipeline(
		stage.GateChecker{Gate: &rules.Gate{Defs: defs}},
		exec,
		stage.CooldownReactor{Defs: defs},
		e.Monitor,
		rep,
	)
	return e
}

// Submit offers a request for arbitration on the next tick. Safe from any
// goroutine (network handlers, background AI).
func (e *Engine) Submit(r *action.Request) {
	e.mu.Lock()
	e.pending = append(e.pending, r)
	e.mu.Unlock()
}

// StartChain schedules the chain's steps as future action requests for the
// owner. Step delays are relative to the chain start, and steps are spaced
// at least one tick apart so consecutive links never arbitrate against each
// other. Each step re-enters arbitration like any other request.
func (e *Engine) StartChain(def types.ChainDef, owner string) {
	e.mu.Lock()
	cursor := e.State.Tick
	for _, step := range def.Steps {
		cursor += step.DelayTicks
		e.chains = append(e.chains, chainStep{
			actionID: step.ActionID,
			owner:    owner,
			dueTick:  cursor,
		})
		cursor++
	}
	e.mu.Unlock()
}

// Tick runs one simulation step: collect the candidates offered since the
// last tick plus any due chain steps, arbitrate, run the winner through the
// pipeline, then flush the bus queue. Losing candidates are discarded —
// callers wanting retry must resubmit. Returns the winner (nil if no
// candidates) and the pipeline result.
func (e *Engine) Tick(dt time.Duration) (*action.Request, bool) {
	candidates := e.collect()

	var winner *action.Request
	ok := false
	if winner = resolve.Resolve(candidates, e.State); winner != nil {
		ok = e.Pipeline.Run(winner, e.State)
	}

	e.State.Tick++
	e.Bus.DispatchQueued(dt)
	return winner, ok
}

// collect atomically swaps out the pending batch and promotes due chain
// steps into requests.
func (e *Engine) collect() []*action.Request {
	e.mu.Lock()
	candidates := e.pending
	e.pending = nil

	remaining := e.chains[:0]
	var due []chainStep
	for _, cs := range e.chains {
		if cs.dueTick <= e.State.Tick {
			due = append(due, cs)
		} else {
			remaining = append(remaining, cs)
		}
	}
	e.chains = remaining
	e.mu.Unlock()

	for _, cs := range due {
		kind := types.KindBasicAttack
		if def, ok := e.Defs.Actions[cs.actionID]; ok {
			kind = def.Kind
		}
		candidates = append(candidates, action.New(kind, cs.owner, types.ActionContext{
			ActionID: cs.actionID,
			Actor:    cs.owner,
		}))
	}
	return candidates
}

// AutoRequest builds a request for the actor by weighted selection among
// actions with a positive weight. Returns nil when no action carries
// weight.
func (e *Engine) AutoRequest(actor, target string) *action.Request {
	var ids []string
	for id, def := range e.Defs.Actions {
		if def.Weight > 0 {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	// Map iteration order is random; sort for deterministic selection.
	sort.Strings(ids)
	weights := make([]int, len(ids))
	for i, id := range ids {
		weights[i] = e.Defs.Actions[id].Weight
	}

	idx := e.RNG.WeightedSelect(weights)
	def := e.Defs.Actions[ids[idx]]
	return action.New(def.Kind, actor, types.ActionContext{
		ActionID: def.ID,
		Actor:    actor,
		Target:   target,
	})
}
