package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers the engine Lua table into L:
//
//	engine.log(msg)
//	engine.roll(expr)                  -> total
//	engine.get(name)                   -> table or nil
//	engine.damage(name, n)             -> bool
//	engine.heal(name, n)               -> bool
//	engine.condition(name, id, turns)  -> bool
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetFuncs(engine, map[string]lua.LGFunction{
		"log":       m.luaLog,
		"roll":      m.luaRoll,
		"get":       m.luaGet,
		"damage":    m.luaDamage,
		"heal":      m.luaHeal,
		"condition": m.luaCondition,
	})
	L.SetGlobal("engine", engine)
}

func (m *Manager) luaLog(L *lua.LState) int {
	msg := L.CheckString(1)
	if m.Log != nil {
		m.Log(msg)
	}
	m.logger.Debug("scripting: engine.log", zap.String("msg", msg))
	return 0
}

func (m *Manager) luaRoll(L *lua.LState) int {
	expr := L.CheckString(1)
	res, err := m.roller.RollExpr(expr)
	if err != nil {
		L.ArgError(1, err.Error())
		return 0
	}
	L.Push(lua.LNumber(res.Total()))
	return 1
}

func (m *Manager) luaGet(L *lua.LState) int {
	name := L.CheckString(1)
	if m.GetCombatant == nil {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(infoTable(L, m.GetCombatant(name)))
	return 1
}

func (m *Manager) luaDamage(L *lua.LState) int {
	return m.callAmount(L, m.ApplyDamage, "engine.damage")
}

func (m *Manager) luaHeal(L *lua.LState) int {
	return m.callAmount(L, m.Heal, "engine.heal")
}

func (m *Manager) callAmount(L *lua.LState, fn func(string, int) error, op string) int {
	name := L.CheckString(1)
	n := L.CheckInt(2)
	if fn == nil || n < 0 {
		L.Push(lua.LFalse)
		return 1
	}
	if err := fn(name, n); err != nil {
		m.logger.Debug("scripting: "+op+" rejected", zap.String("target", name), zap.Error(err))
		L.Push(lua.LFalse)
		return 1
	}
	L.Push(lua.LTrue)
	return 1
}

func (m *Manager) luaCondition(L *lua.LState) int {
	name := L.CheckString(1)
	id := L.CheckString(2)
	turns := L.OptInt(3, 1)
	if m.ApplyCondition == nil {
		L.Push(lua.LFalse)
		return 1
	}
	if err := m.ApplyCondition(name, id, turns); err != nil {
		m.logger.Debug("scripting: engine.condition rejected", zap.String("target", name), zap.Error(err))
		L.Push(lua.LFalse)
		return 1
	}
	L.Push(lua.LTrue)
	return 1
}
