package scripting_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/skirmish/internal/scripting"
)

func TestModules_CallbacksReceiveArguments(t *testing.T) {
	mgr := newManager(t)
	var logged []string
	damaged := map[string]int{}
	healed := map[string]int{}
	var cond string
	mgr.Log = func(msg string) { logged = append(logged, msg) }
	mgr.ApplyDamage = func(name string, n int) error { damaged[name] += n; return nil }
	mgr.Heal = func(name string, n int) error { healed[name] += n; return nil }
	mgr.ApplyCondition = func(name, id string, turns int) error {
		cond = name + ":" + id
		assert.Equal(t, 2, turns)
		return nil
	}

	require.NoError(t, mgr.LoadString("hooks", `function smite(actor, target)
		engine.log(actor.name .. " smites " .. target.name)
		engine.damage(target.name, 3)
		engine.heal(actor.name, 2)
		return engine.condition(target.name, "frightened", 2)
	end`))
	ret, err := mgr.CallAbility("smite", &scripting.CombatantInfo{Name: "Mira"}, &scripting.CombatantInfo{Name: "Goblin"})
	require.NoError(t, err)
	assert.Equal(t, lua.LTrue, ret)
	assert.Equal(t, []string{"Mira smites Goblin"}, logged)
	assert.Equal(t, 3, damaged["Goblin"])
	assert.Equal(t, 2, healed["Mira"])
	assert.Equal(t, "Goblin:frightened", cond)
}

func TestModules_NilCallbacksAreNoops(t *testing.T) {
	mgr := newManager(t)
	require.NoError(t, mgr.LoadString("hooks", `function try()
		engine.log("ignored")
		return engine.damage("x", 1) == false and engine.get("x") == nil
	end`))
	ret, err := mgr.CallHook("try")
	require.NoError(t, err)
	assert.Equal(t, lua.LTrue, ret)
}

func TestModules_RejectedCallbackReturnsFalse(t *testing.T) {
	mgr := newManager(t)
	mgr.ApplyDamage = func(string, int) error { return errors.New("no such combatant") }
	require.NoError(t, mgr.LoadString("hooks", `function try() return engine.damage("ghost", 4) end`))
	ret, err := mgr.CallHook("try")
	require.NoError(t, err)
	assert.Equal(t, lua.LFalse, ret)
}

func TestModules_RollUsesInjectedSource(t *testing.T) {
	mgr := newManager(t, 3)
	require.NoError(t, mgr.LoadString("hooks", `function r() return engine.roll("2d6+1") end`))
	ret, err := mgr.CallHook("r")
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(9), ret)
}

func TestModules_GetReturnsSnapshot(t *testing.T) {
	mgr := newManager(t)
	mgr.GetCombatant = func(name string) *scripting.CombatantInfo {
		if name == "Mira" {
			return &scripting.CombatantInfo{Name: "Mira", HP: 7, MaxHP: 12}
		}
		return nil
	}
	require.NoError(t, mgr.LoadString("hooks", `function frac(n) local c = engine.get(n) if c == nil then return -1 end return c.hp * 100 / c.max_hp end`))
	ret, err := mgr.CallHook("frac", lua.LString("Mira"))
	require.NoError(t, err)
	assert.InDelta(t, 58.33, float64(ret.(lua.LNumber)), 0.01)
	ret, _ = mgr.CallHook("frac", lua.LString("Nobody"))
	assert.Equal(t, lua.LNumber(-1), ret)
}
