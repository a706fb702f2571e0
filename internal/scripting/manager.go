package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// CombatantInfo is a snapshot of a combatant's state passed to Lua callbacks.
type CombatantInfo struct {
	Name       string
	Kind       string
	HP         int
	MaxHP      int
	Composure  int
	X, Y       int
	Conditions []string
}

// Manager owns one sandboxed LState holding every loaded ability script and
// exposes hook dispatch. Calls are serialised by an internal mutex.
type Manager struct {
	mu        sync.Mutex
	L         *lua.LState
	instLimit int
	roller    *dice.Roller
	logger    *zap.Logger

	// Injected after construction. nil = no-op in engine.* modules.
	GetCombatant   func(name string) *CombatantInfo
	ApplyDamage    func(name string, n int) error
	Heal           func(name string, n int) error
	ApplyCondition func(name, condID string, duration int) error
	Log            func(msg string)
}

// NewManager creates a Manager with an empty sandboxed VM.
//
// Precondition: roller and logger must be non-nil.
// Postcondition: Returns a non-nil Manager; engine.* modules are registered.
func NewManager(roller *dice.Roller, logger *zap.Logger) *Manager {
	m := &Manager{
		L:      NewSandboxedState(),
		roller: roller,
		logger: logger,
	}
	m.RegisterModules(m.L)
	return m
}

// SetInstructionLimit sets the per-execution opcode budget; 0 restores the
// default.
func (m *Manager) SetInstructionLimit(limit int) {
	m.mu.Lock()
	m.instLimit = limit
	m.mu.Unlock()
}

// LoadDir executes every *.lua file in dir in lexicographic order.
//
// Precondition: dir must be a readable directory.
// Postcondition: Functions defined by the scripts are callable via CallHook;
// returns error on the first Lua load failure.
func (m *Manager) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q: %w", dir, err)
	}
	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, path := range luaFiles {
		release := withLimit(m.L, m.instLimit)
		err := m.L.DoFile(path)
		release()
		if err != nil {
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
		m.logger.Debug("scripting: loaded script", zap.String("path", path))
	}
	return nil
}

// LoadString executes src in the VM. name identifies the chunk in errors.
func (m *Manager) LoadString(name, src string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	release := withLimit(m.L, m.instLimit)
	defer release()
	if err := m.L.DoString(src); err != nil {
		return fmt.Errorf("scripting: running %q: %w", name, err)
	}
	return nil
}

// HasHook reports whether a global function named hook is defined.
func (m *Manager) HasHook(hook string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.L.GetGlobal(hook).Type() == lua.LTFunction
}

// CallHook calls the named Lua global function. Returns (LNil, nil) if the
// hook is not defined. Lua runtime errors, including exceeding the
// instruction limit, are logged at Warn level and never propagated.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fn := m.L.GetGlobal(hook)
	if fn.Type() != lua.LTFunction {
		return lua.LNil, nil
	}

	release := withLimit(m.L, m.instLimit)
	defer release()
	if err := m.L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := m.L.Get(-1)
	m.L.Pop(1)
	return ret, nil
}

// CallAbility invokes hook as fn(actor, target) with snapshot tables.
//
// Postcondition: Returns the hook's first return value, or LNil.
func (m *Manager) CallAbility(hook string, actor, target *CombatantInfo) (lua.LValue, error) {
	m.mu.Lock()
	a := infoTable(m.L, actor)
	t := infoTable(m.L, target)
	m.mu.Unlock()
	return m.CallHook(hook, a, t)
}

// Close releases the VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.L.Close()
}

func infoTable(L *lua.LState, info *CombatantInfo) lua.LValue {
	if info == nil {
		return lua.LNil
	}
	t := L.NewTable()
	t.RawSetString("name", lua.LString(info.Name))
	t.RawSetString("kind", lua.LString(info.Kind))
	t.RawSetString("hp", lua.LNumber(info.HP))
	t.RawSetString("max_hp", lua.LNumber(info.MaxHP))
	t.RawSetString("composure", lua.LNumber(info.Composure))
	t.RawSetString("x", lua.LNumber(info.X))
	t.RawSetString("y", lua.LNumber(info.Y))
	conds := L.NewTable()
	for _, c := range info.Conditions {
		conds.Append(lua.LString(c))
	}
	t.RawSetString("conditions", conds)
	return t
}
