package primitives_test

import (
	"testing"

	types "github.com/stateforge/chainreplay/consensus-types/primitives"
	"github.com/stateforge/chainreplay/testing/assert"
)

func TestSlot_Arithmetic(t *testing.T) {
	assert.Equal(t, types.Slot(12), types.Slot(7).Add(5))
	assert.Equal(t, types.Slot(2), types.Slot(7).Sub(5))
	assert.Equal(t, types.Slot(0), types.Slot(3).Sub(5), "subtraction saturates at zero")
	assert.Equal(t, types.Slot(1), types.Slot(33).Mod(32))
	assert.Equal(t, types.Slot(2), types.Slot(64).Div(32))
}
