package loader

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/nmoreau/strikecore/engine/state"
	"github.com/nmoreau/strikecore/types"
)

type rawAction struct {
	id    string
	tbl   *lua.LTable
	order int
}

type rawChain struct {
	id  string
	tbl *lua.LTable
}

type rawCombatant struct {
	id  string
	tbl *lua.LTable
}

type rawKind struct {
	name     string
	priority int
}

// compile converts the collected Lua tables into Go definitions.
func compile(coll *collector) (*state.Defs, error) {
	defs := &state.Defs{
		Actions:    map[string]types.ActionDef{},
		Chains:     map[string]types.ChainDef{},
		Combatants: map[string]types.CombatantDef{},
	}

	if coll.scenario != nil {
		defs.Scenario = types.ScenarioDef{
			Title:   getString(coll.scenario, "title"),
			Author:  getString(coll.scenario, "author"),
			Version: getString(coll.scenario, "version"),
			Seed:    int64(getInt(coll.scenario, "seed")),
		}
	}

	for _, ra := range coll.actions {
		if _, dup := defs.Actions[ra.id]; dup {
			return nil, fmt.Errorf("duplicate action %q", ra.id)
		}
		a, err := compileAction(ra)
		if err != nil {
			return nil, fmt.Errorf("action %q: %w", ra.id, err)
		}
		defs.Actions[ra.id] = a
	}

	for _, rc := range coll.chains {
		if _, dup := defs.Chains[rc.id]; dup {
			return nil, fmt.Errorf("duplicate chain %q", rc.id)
		}
		c, err := compileChain(rc)
		if err != nil {
			return nil, fmt.Errorf("chain %q: %w", rc.id, err)
		}
		defs.Chains[rc.id] = c
	}

	for _, rc := range coll.combatants {
		if _, dup := defs.Combatants[rc.id]; dup {
			return nil, fmt.Errorf("duplicate combatant %q", rc.id)
		}
		defs.Combatants[rc.id] = compileCombatant(rc)
	}

	return defs, nil
}

func compileAction(ra rawAction) (types.ActionDef, error) {
	a := types.ActionDef{
		ID:          ra.id,
		Name:        getString(ra.tbl, "name"),
		Kind:        types.ActionKind(getString(ra.tbl, "kind")),
		Cooldown:    getInt(ra.tbl, "cooldown"),
		Weight:      getInt(ra.tbl, "weight"),
		SourceOrder: ra.order,
	}
	if a.Name == "" {
		a.Name = ra.id
	}
	if a.Kind == "" {
		a.Kind = types.KindBasicAttack
	}

	if costTbl := getTable(ra.tbl, "cost"); costTbl != nil {
		a.Cost = map[string]int{}
		costTbl.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				if vn, ok := v.(lua.LNumber); ok {
					a.Cost[string(ks)] = int(vn)
				}
			}
		})
	}

	if reqTbl := getTable(ra.tbl, "requires"); reqTbl != nil {
		n := reqTbl.MaxN()
		for i := 1; i <= n; i++ {
			item := reqTbl.RawGetInt(i)
			ct, ok := item.(*lua.LTable)
			if !ok {
				return a, fmt.Errorf("requires[%d]: expected condition table", i)
			}
			cond, err := compileCondition(ct)
			if err != nil {
				return a, fmt.Errorf("requires[%d]: %w", i, err)
			}
			a.Conditions = append(a.Conditions, cond)
		}
	}

	if effTbl := getTable(ra.tbl, "effects"); effTbl != nil {
		n := effTbl.MaxN()
		for i := 1; i <= n; i++ {
			item := effTbl.RawGetInt(i)
			et, ok := item.(*lua.LTable)
			if !ok {
				return a, fmt.Errorf("effects[%d]: expected effect table", i)
			}
			eff, err := compileEffect(et)
			if err != nil {
				return a, fmt.Errorf("effects[%d]: %w", i, err)
			}
			a.Effects = append(a.Effects, eff)
		}
	}

	return a, nil
}

func compileCondition(tbl *lua.LTable) (types.Condition, error) {
	typ := getString(tbl, "type")
	if typ == "" {
		return types.Condition{}, fmt.Errorf("condition missing type")
	}
	c := types.Condition{Type: typ, Params: map[string]any{}}
	var innerErr error
	tbl.ForEach(func(k, v lua.LValue) {
		ks, ok := k.(lua.LString)
		if !ok || string(ks) == "type" {
			return
		}
		if string(ks) == "inner" {
			it, ok := v.(*lua.LTable)
			if !ok {
				innerErr = fmt.Errorf("inner: expected condition table")
				return
			}
			inner, err := compileCondition(it)
			if err != nil {
				innerErr = fmt.Errorf("inner: %w", err)
				return
			}
			c.Inner = &inner
			return
		}
		c.Params[string(ks)] = toGoValue(v)
	})
	if innerErr != nil {
		return types.Condition{}, innerErr
	}
	return c, nil
}

func compileEffect(tbl *lua.LTable) (types.Effect, error) {
	typ := getString(tbl, "type")
	if typ == "" {
		return types.Effect{}, fmt.Errorf("effect missing type")
	}
	e := types.Effect{Type: typ, Params: map[string]any{}}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok && string(ks) != "type" {
			e.Params[string(ks)] = toGoValue(v)
		}
	})
	return e, nil
}

func compileChain(rc rawChain) (types.ChainDef, error) {
	c := types.ChainDef{
		ID:    rc.id,
		Owner: getString(rc.tbl, "owner"),
	}
	stepsTbl := getTable(rc.tbl, "steps")
	if stepsTbl == nil {
		return c, fmt.Errorf("chain has no steps")
	}
	n := stepsTbl.MaxN()
	for i := 1; i <= n; i++ {
		item := stepsTbl.RawGetInt(i)
		st, ok := item.(*lua.LTable)
		if !ok {
			return c, fmt.Errorf("steps[%d]: expected Step(...)", i)
		}
		c.Steps = append(c.Steps, types.ChainStep{
			ActionID:   getString(st, "action"),
			DelayTicks: getInt(st, "delay"),
		})
	}
	if len(c.Steps) == 0 {
		return c, fmt.Errorf("chain has no steps")
	}
	return c, nil
}

func compileCombatant(rc rawCombatant) types.CombatantDef {
	d := types.CombatantDef{
		ID:    rc.id,
		Name:  getString(rc.tbl, "name"),
		Stats: map[string]int{},
	}
	if d.Name == "" {
		d.Name = rc.id
	}
	if statsTbl := getTable(rc.tbl, "stats"); statsTbl != nil {
		statsTbl.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				if vn, ok := v.(lua.LNumber); ok {
					d.Stats[string(ks)] = int(vn)
				}
			}
		})
	}
	if stTbl := getTable(rc.tbl, "statuses"); stTbl != nil {
		n := stTbl.MaxN()
		for i := 1; i <= n; i++ {
			if s, ok := stTbl.RawGetInt(i).(lua.LString); ok {
				d.Statuses = append(d.Statuses, string(s))
			}
		}
	}
	if propsTbl := getTable(rc.tbl, "props"); propsTbl != nil {
		d.Props = map[string]any{}
		propsTbl.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				d.Props[string(ks)] = toGoValue(v)
			}
		})
	}
	return d
}

// Lua table field helpers.

func getString(tbl *lua.LTable, key string) string {
	if s, ok := tbl.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

func getInt(tbl *lua.LTable, key string) int {
	if n, ok := tbl.RawGetString(key).(lua.LNumber); ok {
		return int(n)
	}
	return 0
}

func getTable(tbl *lua.LTable, key string) *lua.LTable {
	if t, ok := tbl.RawGetString(key).(*lua.LTable); ok {
		return t
	}
	return nil
}

// toGoValue converts a Lua value to its Go equivalent. Tables with
// sequential integer keys become slices, others become maps.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case lua.LString:
		return string(val)
	case *lua.LTable:
		n := val.MaxN()
		if n > 0 {
			arr := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				arr = append(arr, toGoValue(val.RawGetInt(i)))
			}
			return arr
		}
		m := map[string]any{}
		val.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				m[string(ks)] = toGoValue(v)
			}
		})
		return m
	default:
		return nil
	}
}
