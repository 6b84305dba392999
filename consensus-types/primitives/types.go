// Package primitives defines the base numeric types used across consensus
// code: slots, epochs and validator registry indices. They are distinct
// types so that the compiler rejects accidental mixing of the three.
package primitives

// Slot represents a single slot.
type Slot uint64

// Epoch represents a single epoch.
type Epoch uint64

// ValidatorIndex in the validator registry.
type ValidatorIndex uint64

// Add returns slot + x.
func (s Slot) Add(x uint64) Slot {
	return s + Slot(x)
}

// Sub returns slot - x, saturating at zero.
func (s Slot) Sub(x uint64) Slot {
	if uint64(s) < x {
		return 0
	}
	return s - Slot(x)
}

// Mod returns slot % x.
func (s Slot) Mod(x uint64) Slot {
	return s % Slot(x)
}

// Div returns slot / x. Division by zero is the caller's bug and panics,
// same as the built-in operator.
func (s Slot) Div(x uint64) Slot {
	return s / Slot(x)
}
