// Package slots includes slot-related helpers for converting between slot
// and epoch time units.
package slots

import (
	"github.com/stateforge/chainreplay/config/params"
	types "github.com/stateforge/chainreplay/consensus-types/primitives"
)

// ToEpoch returns the epoch number of the input slot.
func ToEpoch(slot types.Slot) types.Epoch {
	return types.Epoch(slot.Div(uint64(params.BeaconConfig().SlotsPerEpoch)))
}

// IsEpochStart returns true if the given slot number is an epoch starting slot.
func IsEpochStart(slot types.Slot) bool {
	return slot.Mod(uint64(params.BeaconConfig().SlotsPerEpoch)) == 0
}

// IsEpochEnd returns true if the given slot number is an epoch ending slot.
func IsEpochEnd(slot types.Slot) bool {
	return IsEpochStart(slot + 1)
}
