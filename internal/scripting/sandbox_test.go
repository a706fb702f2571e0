package scripting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
)

func TestNewSandboxedState_Globals(t *testing.T) {
	L := NewSandboxedState()
	defer L.Close()

	tests := []struct {
		global string
		open   bool
	}{
		{"math", true},
		{"string", true},
		{"table", true},
		{"print", true},
		{"os", false},
		{"io", false},
		{"debug", false},
		{"dofile", false},
		{"loadfile", false},
		{"load", false},
		{"collectgarbage", false},
		{"require", false},
	}
	for _, tt := range tests {
		t.Run(tt.global, func(t *testing.T) {
			if tt.open {
				assert.NotEqual(t, lua.LNil, L.GetGlobal(tt.global))
			} else {
				assert.Equal(t, lua.LNil, L.GetGlobal(tt.global))
			}
		})
	}
}

func TestNewSandboxedState_SafeLibsWork(t *testing.T) {
	L := NewSandboxedState()
	defer L.Close()
	require.NoError(t, L.DoString(`
		assert(math.sqrt(9) == 3)
		assert(string.upper("bolt") == "BOLT")
		local t = {3, 1, 2}
		table.sort(t)
		assert(t[1] == 1)
	`))
}

func TestWithLimit_StopsRunawayLoop(t *testing.T) {
	L := NewSandboxedState()
	defer L.Close()

	release := withLimit(L, 500)
	err := L.DoString(`while true do end`)
	release()
	require.Error(t, err)

	// the budget is per call: a short chunk runs once the old one is lifted
	release = withLimit(L, 500)
	defer release()
	assert.NoError(t, L.DoString(`local x = 1 + 1`))
}
