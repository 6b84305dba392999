package slots_test

import (
	"testing"

	"github.com/stateforge/chainreplay/config/params"
	types "github.com/stateforge/chainreplay/consensus-types/primitives"
	"github.com/stateforge/chainreplay/testing/assert"
	"github.com/stateforge/chainreplay/time/slots"
)

func TestToEpoch(t *testing.T) {
	perEpoch := uint64(params.BeaconConfig().SlotsPerEpoch)
	assert.Equal(t, types.Epoch(0), slots.ToEpoch(0))
	assert.Equal(t, types.Epoch(0), slots.ToEpoch(types.Slot(perEpoch-1)))
	assert.Equal(t, types.Epoch(1), slots.ToEpoch(types.Slot(perEpoch)))
	assert.Equal(t, types.Epoch(2), slots.ToEpoch(types.Slot(2*perEpoch+1)))
}

func TestIsEpochStart(t *testing.T) {
	perEpoch := uint64(params.BeaconConfig().SlotsPerEpoch)
	assert.Equal(t, true, slots.IsEpochStart(0))
	assert.Equal(t, true, slots.IsEpochStart(types.Slot(perEpoch)))
	assert.Equal(t, false, slots.IsEpochStart(types.Slot(perEpoch+1)))
}

func TestIsEpochEnd(t *testing.T) {
	perEpoch := uint64(params.BeaconConfig().SlotsPerEpoch)
	assert.Equal(t, true, slots.IsEpochEnd(types.Slot(perEpoch-1)))
	assert.Equal(t, false, slots.IsEpochEnd(types.Slot(perEpoch)))
}
