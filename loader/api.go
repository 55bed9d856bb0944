package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI installs the content DSL globals into the Lua state.
// Definition constructors are curried: Action "slash" { ... } parses as
// Action("slash")({ ... }).
func registerAPI(L *lua.LState, coll *collector) {
	L.SetGlobal("Scenario", L.NewFunction(func(L *lua.LState) int {
		coll.scenario = L.CheckTable(1)
		return 0
	}))

	L.SetGlobal("Action", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.actions = append(coll.actions, rawAction{
				id:    id,
				tbl:   tbl,
				order: coll.nextSourceOrder(),
			})
			return 0
		}))
		return 1
	}))

	L.SetGlobal("Chain", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.chains = append(coll.chains, rawChain{id: id, tbl: tbl})
			return 0
		}))
		return 1
	}))

	L.SetGlobal("Combatant", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.combatants = append(coll.combatants, rawCombatant{id: id, tbl: tbl})
			return 0
		}))
		return 1
	}))

	L.SetGlobal("Kind", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		priority := L.CheckInt(2)
		coll.kinds = append(coll.kinds, rawKind{name: name, priority: priority})
		return 0
	}))

	L.SetGlobal("Step", L.NewFunction(func(L *lua.LState) int {
		actionID := L.CheckString(1)
		delay := 0
		if L.GetTop() >= 2 {
			delay = L.CheckInt(2)
		}
		tbl := L.NewTable()
		tbl.RawSetString("action", lua.LString(actionID))
		tbl.RawSetString("delay", lua.LNumber(delay))
		L.Push(tbl)
		return 1
	}))

	registerConditionAPI(L)
	registerEffectAPI(L)
}

// condTable builds a {type=..., params...} table for a condition.
func condTable(L *lua.LState, typ string, params map[string]lua.LValue) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("type", lua.LString(typ))
	for k, v := range params {
		tbl.RawSetString(k, v)
	}
	return tbl
}

func registerConditionAPI(L *lua.LState) {
	L.SetGlobal("Alive", L.NewFunction(func(L *lua.LState) int {
		who := L.OptString(1, "actor")
		L.Push(condTable(L, "alive", map[string]lua.LValue{
			"who": lua.LString(who),
		}))
		return 1
	}))

	L.SetGlobal("HasStatus", L.NewFunction(func(L *lua.LState) int {
		who := L.CheckString(1)
		status := L.CheckString(2)
		L.Push(condTable(L, "has_status", map[string]lua.LValue{
			"who":    lua.LString(who),
			"status": lua.LString(status),
		}))
		return 1
	}))

	L.SetGlobal("StatusNot", L.NewFunction(func(L *lua.LState) int {
		who := L.CheckString(1)
		status := L.CheckString(2)
		L.Push(condTable(L, "status_not", map[string]lua.LValue{
			"who":    lua.LString(who),
			"status": lua.LString(status),
		}))
		return 1
	}))

	L.SetGlobal("ResourceGte", L.NewFunction(func(L *lua.LState) int {
		who := L.CheckString(1)
		resource := L.CheckString(2)
		amount := L.CheckInt(3)
		L.Push(condTable(L, "resource_gte", map[string]lua.LValue{
			"who":      lua.LString(who),
			"resource": lua.LString(resource),
			"amount":   lua.LNumber(amount),
		}))
		return 1
	}))

	L.SetGlobal("StatGt", L.NewFunction(func(L *lua.LState) int {
		who := L.CheckString(1)
		stat := L.CheckString(2)
		value := L.CheckInt(3)
		L.Push(condTable(L, "stat_gt", map[string]lua.LValue{
			"who":   lua.LString(who),
			"stat":  lua.LString(stat),
			"value": lua.LNumber(value),
		}))
		return 1
	}))

	L.SetGlobal("StatLt", L.NewFunction(func(L *lua.LState) int {
		who := L.CheckString(1)
		stat := L.CheckString(2)
		value := L.CheckInt(3)
		L.Push(condTable(L, "stat_lt", map[string]lua.LValue{
			"who":   lua.LString(who),
			"stat":  lua.LString(stat),
			"value": lua.LNumber(value),
		}))
		return 1
	}))

	L.SetGlobal("FlagSet", L.NewFunction(func(L *lua.LState) int {
		flag := L.CheckString(1)
		L.Push(condTable(L, "flag_set", map[string]lua.LValue{
			"flag": lua.LString(flag),
		}))
		return 1
	}))

	L.SetGlobal("FlagNot", L.NewFunction(func(L *lua.LState) int {
		flag := L.CheckString(1)
		L.Push(condTable(L, "flag_not", map[string]lua.LValue{
			"flag": lua.LString(flag),
		}))
		return 1
	}))

	L.SetGlobal("CounterGt", L.NewFunction(func(L *lua.LState) int {
		counter := L.CheckString(1)
		value := L.CheckInt(2)
		L.Push(condTable(L, "counter_gt", map[string]lua.LValue{
			"counter": lua.LString(counter),
			"value":   lua.LNumber(value),
		}))
		return 1
	}))

	L.SetGlobal("Not", L.NewFunction(func(L *lua.LState) int {
		inner := L.CheckTable(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("not"))
		tbl.RawSetString("inner", inner)
		L.Push(tbl)
		return 1
	}))
}

func registerEffectAPI(L *lua.LState) {
	L.SetGlobal("Damage", L.NewFunction(func(L *lua.LState) int {
		amount := L.CheckInt(1)
		L.Push(condTable(L, "damage", map[string]lua.LValue{
			"amount": lua.LNumber(amount),
		}))
		return 1
	}))

	L.SetGlobal("Heal", L.NewFunction(func(L *lua.LState) int {
		amount := L.CheckInt(1)
		params := map[string]lua.LValue{"amount": lua.LNumber(amount)}
		if L.GetTop() >= 2 {
			params["who"] = lua.LString(L.CheckString(2))
		}
		L.Push(condTable(L, "heal", params))
		return 1
	}))

	L.SetGlobal("ApplyStatus", L.NewFunction(func(L *lua.LState) int {
		who := L.CheckString(1)
		status := L.CheckString(2)
		L.Push(condTable(L, "apply_status", map[string]lua.LValue{
			"who":    lua.LString(who),
			"status": lua.LString(status),
		}))
		return 1
	}))

	L.SetGlobal("RemoveStatus", L.NewFunction(func(L *lua.LState) int {
		who := L.CheckString(1)
		status := L.CheckString(2)
		L.Push(condTable(L, "remove_status", map[string]lua.LValue{
			"who":    lua.LString(who),
			"status": lua.LString(status),
		}))
		return 1
	}))

	L.SetGlobal("ApplyEffect", L.NewFunction(func(L *lua.LState) int {
		who := L.CheckString(1)
		effect := L.CheckString(2)
		stat := L.CheckString(3)
		delta := L.CheckInt(4)
		L.Push(condTable(L, "apply_effect", map[string]lua.LValue{
			"who":    lua.LString(who),
			"effect": lua.LString(effect),
			"stat":   lua.LString(stat),
			"delta":  lua.LNumber(delta),
		}))
		return 1
	}))

	L.SetGlobal("RemoveEffect", L.NewFunction(func(L *lua.LState) int {
		who := L.CheckString(1)
		effect := L.CheckString(2)
		stat := L.CheckString(3)
		delta := L.CheckInt(4)
		L.Push(condTable(L, "remove_effect", map[string]lua.LValue{
			"who":    lua.LString(who),
			"effect": lua.LString(effect),
			"stat":   lua.LString(stat),
			"delta":  lua.LNumber(delta),
		}))
		return 1
	}))

	L.SetGlobal("SpendResource", L.NewFunction(func(L *lua.LState) int {
		resource := L.CheckString(1)
		amount := L.CheckInt(2)
		L.Push(condTable(L, "spend_resource", map[string]lua.LValue{
			"resource": lua.LString(resource),
			"amount":   lua.LNumber(amount),
		}))
		return 1
	}))

	L.SetGlobal("RestoreResource", L.NewFunction(func(L *lua.LState) int {
		resource := L.CheckString(1)
		amount := L.CheckInt(2)
		L.Push(condTable(L, "restore_resource", map[string]lua.LValue{
			"resource": lua.LString(resource),
			"amount":   lua.LNumber(amount),
		}))
		return 1
	}))

	L.SetGlobal("SetFlag", L.NewFunction(func(L *lua.LState) int {
		flag := L.CheckString(1)
		value := true
		if L.GetTop() >= 2 {
			value = L.CheckBool(2)
		}
		L.Push(condTable(L, "set_flag", map[string]lua.LValue{
			"flag":  lua.LString(flag),
			"value": lua.LBool(value),
		}))
		return 1
	}))

	L.SetGlobal("IncCounter", L.NewFunction(func(L *lua.LState) int {
		counter := L.CheckString(1)
		amount := 1
		if L.GetTop() >= 2 {
			amount = L.CheckInt(2)
		}
		L.Push(condTable(L, "inc_counter", map[string]lua.LValue{
			"counter": lua.LString(counter),
			"amount":  lua.LNumber(amount),
		}))
		return 1
	}))

	L.SetGlobal("Emit", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		params := map[string]lua.LValue{"name": lua.LString(name)}
		if L.GetTop() >= 2 {
			params["data"] = L.CheckTable(2)
		}
		L.Push(condTable(L, "emit", params))
		return 1
	}))
}
