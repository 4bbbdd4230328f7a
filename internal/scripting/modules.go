package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// registerModules installs the engine table:
//
//	engine.damage(uid, amount) -> applied
//	engine.heal(uid, amount)   -> restored
//	engine.mana(uid, amount)   -> restored
//	engine.stat(uid, name)     -> current, capacity
//	engine.level(uid)          -> level
//	engine.dodge(uid)          -> bool
//	engine.crit(uid)           -> bool
//	engine.roll(expr)          -> total
//	engine.chance(p)           -> bool
//	engine.log(msg)
//
// Unit functions are no-ops returning zero outside CallEffect.
func (m *Manager) registerModules() {
	L := m.L
	engine := L.NewTable()
	L.SetFuncs(engine, map[string]lua.LGFunction{
		"damage": m.unitAmount(func(b Binding, uid string, v float64) float64 { return b.Damage(uid, v) }),
		"heal":   m.unitAmount(func(b Binding, uid string, v float64) float64 { return b.Heal(uid, v) }),
		"mana":   m.unitAmount(func(b Binding, uid string, v float64) float64 { return b.Mana(uid, v) }),
		"stat":   m.luaStat,
		"level":  m.luaLevel,
		"dodge":  m.unitCheck(func(b Binding, uid string) bool { return b.Dodge(uid) }),
		"crit":   m.unitCheck(func(b Binding, uid string) bool { return b.Critical(uid) }),
		"roll":   m.luaRoll,
		"chance": m.luaChance,
		"log":    m.luaLog,
	})
	L.SetGlobal("engine", engine)
}

func (m *Manager) unitAmount(fn func(b Binding, uid string, v float64) float64) lua.LGFunction {
	return func(L *lua.LState) int {
		uid := L.CheckString(1)
		v := float64(L.CheckNumber(2))
		if m.binding == nil {
			L.Push(lua.LNumber(0))
			return 1
		}
		L.Push(lua.LNumber(fn(m.binding, uid, v)))
		return 1
	}
}

func (m *Manager) unitCheck(fn func(b Binding, uid string) bool) lua.LGFunction {
	return func(L *lua.LState) int {
		uid := L.CheckString(1)
		L.Push(lua.LBool(m.binding != nil && fn(m.binding, uid)))
		return 1
	}
}

func (m *Manager) luaStat(L *lua.LState) int {
	uid := L.CheckString(1)
	name := L.CheckString(2)
	if m.binding == nil {
		L.Push(lua.LNil)
		L.Push(lua.LNil)
		return 2
	}
	cur, capacity, ok := m.binding.Stat(uid, name)
	if !ok {
		L.Push(lua.LNil)
		L.Push(lua.LNil)
		return 2
	}
	L.Push(lua.LNumber(cur))
	L.Push(lua.LNumber(capacity))
	return 2
}

func (m *Manager) luaLevel(L *lua.LState) int {
	uid := L.CheckString(1)
	level := 0
	if m.binding != nil {
		level = m.binding.Level(uid)
	}
	L.Push(lua.LNumber(level))
	return 1
}

func (m *Manager) luaRoll(L *lua.LState) int {
	expr := L.CheckString(1)
	res, err := m.roller.RollExpr(expr)
	if err != nil {
		L.RaiseError("engine.roll: %s", err.Error())
		return 0
	}
	L.Push(lua.LNumber(res.Total()))
	return 1
}

func (m *Manager) luaChance(L *lua.LState) int {
	p := float64(L.CheckNumber(1))
	L.Push(lua.LBool(m.roller.Chance("script", p)))
	return 1
}

func (m *Manager) luaLog(L *lua.LState) int {
	m.logger.Info("lua", zap.String("msg", L.CheckString(1)))
	return 0
}
