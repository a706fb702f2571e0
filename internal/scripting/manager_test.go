package scripting_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

func newManager(t *testing.T, src ...int) *scripting.Manager {
	t.Helper()
	if len(src) == 0 {
		src = []int{3}
	}
	logger := zap.NewNop()
	mgr := scripting.NewManager(dice.NewLoggedRoller(dice.NewSequence(src...), logger), logger)
	t.Cleanup(mgr.Close)
	return mgr
}

func TestLoadDir_LexicographicOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.lua"), []byte(`order = order .. "b"`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.lua"), []byte(`order = "a"`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte(`garbage`), 0o644))

	mgr := newManager(t)
	require.NoError(t, mgr.LoadDir(dir))
	require.NoError(t, mgr.LoadString("read_order", `function read_order() return order end`))
	ret, err := mgr.CallHook("read_order")
	require.NoError(t, err)
	assert.Equal(t, lua.LString("ab"), ret)
}

func TestLoadDir_SyntaxError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.lua"), []byte(`function (`), 0o644))
	assert.Error(t, newManager(t).LoadDir(dir))
}

func TestLoadDir_MissingDir(t *testing.T) {
	assert.Error(t, newManager(t).LoadDir(filepath.Join(t.TempDir(), "nope")))
}

func TestCallHook_UndefinedReturnsNil(t *testing.T) {
	mgr := newManager(t)
	ret, err := mgr.CallHook("missing")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
	assert.False(t, mgr.HasHook("missing"))
}

func TestCallHook_RuntimeErrorSwallowed(t *testing.T) {
	mgr := newManager(t)
	require.NoError(t, mgr.LoadString("boom", `function boom() error("kaboom") end`))
	ret, err := mgr.CallHook("boom")
	assert.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
}

func TestCallHook_InstructionLimit(t *testing.T) {
	mgr := newManager(t)
	require.NoError(t, mgr.LoadString("spin", `function spin() while true do end end
function ok() return 1 end`))
	mgr.SetInstructionLimit(50)
	ret, err := mgr.CallHook("spin")
	assert.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)

	ret, err = mgr.CallHook("ok")
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(1), ret, "budget is per call")
}

func TestCallAbility_PassesSnapshots(t *testing.T) {
	mgr := newManager(t)
	require.NoError(t, mgr.LoadString("hook", `function describe(actor, target)
		return actor.name .. ">" .. target.name .. ":" .. target.hp .. ":" .. #target.conditions
	end`))
	ret, err := mgr.CallAbility("describe",
		&scripting.CombatantInfo{Name: "Mira", HP: 10},
		&scripting.CombatantInfo{Name: "Goblin", HP: 4, Conditions: []string{"prone"}},
	)
	require.NoError(t, err)
	assert.Equal(t, lua.LString("Mira>Goblin:4:1"), ret)
}

func TestProperty_InstructionLimitAlwaysStops(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		limit := rapid.IntRange(1, 50).Draw(rt, "limit")
		logger := zap.NewNop()
		mgr := scripting.NewManager(dice.NewLoggedRoller(dice.NewSequence(0), logger), logger)
		defer mgr.Close()
		if err := mgr.LoadString("spin", `function spin() while true do end return 1 end`); err != nil {
			rt.Fatal(err)
		}
		mgr.SetInstructionLimit(limit)
		ret, _ := mgr.CallHook("spin")
		if ret != lua.LNil {
			rt.Fatalf("limit %d: loop returned %v", limit, ret)
		}
	})
}
