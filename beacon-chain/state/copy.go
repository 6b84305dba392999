package state

import (
	types "github.com/stateforge/chainreplay/consensus-types/primitives"
	"github.com/stateforge/chainreplay/encoding/bytesutil"
)

// Copy returns a deep copy of the state. The pubkey index cache is not
// carried over; the copy rebuilds it on first lookup.
func (b *BeaconState) Copy() *BeaconState {
	if b == nil {
		return nil
	}
	dst := &BeaconState{
		Slot:                  b.Slot,
		GenesisValidatorsRoot: bytesutil.SafeCopyBytes(b.GenesisValidatorsRoot),
		LatestBlockHeader:     b.LatestBlockHeader.Copy(),
		BlockRoots:            bytesutil.SafeCopy2dBytes(b.BlockRoots),
		StateRoots:            bytesutil.SafeCopy2dBytes(b.StateRoots),
		Eth1Data:              b.Eth1Data.Copy(),
		Eth1DepositIndex:      b.Eth1DepositIndex,
	}
	if b.Validators != nil {
		dst.Validators = make([]*Validator, len(b.Validators))
		for i, val := range b.Validators {
			dst.Validators[i] = val.Copy()
		}
	}
	if b.Balances != nil {
		dst.Balances = make([]uint64, len(b.Balances))
		copy(dst.Balances, b.Balances)
	}
	return dst
}

// Copy returns a deep copy of the validator.
func (v *Validator) Copy() *Validator {
	if v == nil {
		return nil
	}
	return &Validator{
		PublicKey:             bytesutil.SafeCopyBytes(v.PublicKey),
		WithdrawalCredentials: bytesutil.SafeCopyBytes(v.WithdrawalCredentials),
		EffectiveBalance:      v.EffectiveBalance,
		Slashed:               v.Slashed,
		ActivationEpoch:       v.ActivationEpoch,
		ExitEpoch:             v.ExitEpoch,
	}
}

// Copy returns a deep copy of the eth1 data.
func (e *Eth1Data) Copy() *Eth1Data {
	if e == nil {
		return nil
	}
	return &Eth1Data{
		DepositRoot:  bytesutil.SafeCopyBytes(e.DepositRoot),
		DepositCount: e.DepositCount,
		BlockHash:    bytesutil.SafeCopyBytes(e.BlockHash),
	}
}

// Copy returns a deep copy of the header.
func (h *Header) Copy() *Header {
	if h == nil {
		return nil
	}
	return &Header{
		Slot:          h.Slot,
		ProposerIndex: h.ProposerIndex,
		ParentRoot:    bytesutil.SafeCopyBytes(h.ParentRoot),
		StateRoot:     bytesutil.SafeCopyBytes(h.StateRoot),
		BodyRoot:      bytesutil.SafeCopyBytes(h.BodyRoot),
	}
}

// NumValidators reports the registry size.
func (b *BeaconState) NumValidators() int {
	return len(b.Validators)
}

// ActiveValidatorCount counts validators active at the given epoch.
func (b *BeaconState) ActiveValidatorCount(epoch types.Epoch) uint64 {
	count := uint64(0)
	for _, val := range b.Validators {
		if val.ActivationEpoch <= epoch && epoch < val.ExitEpoch {
			count++
		}
	}
	return count
}
