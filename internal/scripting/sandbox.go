// Package scripting runs ability hooks in a sandboxed GopherLua VM. It does
// not import the combat packages; the engine reaches in through the callback
// fields on Manager.
package scripting

import (
	"context"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit caps the opcodes a single hook call may execute
// when scripting.instruction_limit is unset.
const DefaultInstructionLimit = 100_000

// safeLibs are the only standard libraries opened in a sandboxed state.
var safeLibs = []struct {
	name string
	open lua.LGFunction
}{
	{lua.BaseLibName, lua.OpenBase},
	{lua.TabLibName, lua.OpenTable},
	{lua.StringLibName, lua.OpenString},
	{lua.MathLibName, lua.OpenMath},
}

// blockedGlobals are base-library functions that load code or touch the GC.
var blockedGlobals = []string{"dofile", "loadfile", "load", "collectgarbage", "require"}

// opBudget is a context whose Done method doubles as an opcode counter:
// GopherLua polls Done once per instruction when a context is set, so the
// budget cancels itself after exactly left polls.
type opBudget struct {
	context.Context
	cancel context.CancelFunc
	left   int64
}

func (b *opBudget) Done() <-chan struct{} {
	b.left--
	if b.left <= 0 {
		b.cancel()
	}
	return b.Context.Done()
}

// NewSandboxedState returns a fresh LState with only safeLibs opened and
// blockedGlobals cleared. The state carries no instruction budget until a
// hook call installs one.
//
// Postcondition: the caller owns the state and must Close it.
func NewSandboxedState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range safeLibs {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	for _, name := range blockedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

// withLimit gives L a budget of limit opcodes (DefaultInstructionLimit when
// limit <= 0) and returns the function that lifts it again.
func withLimit(L *lua.LState, limit int) func() {
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}
	ctx, cancel := context.WithCancel(context.Background())
	L.SetContext(&opBudget{Context: ctx, cancel: cancel, left: int64(limit)})
	return func() {
		cancel()
		L.RemoveContext()
	}
}
