package blocks

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/stateforge/chainreplay/beacon-chain/state"
	consensusblocks "github.com/stateforge/chainreplay/consensus-types/blocks"
	types "github.com/stateforge/chainreplay/consensus-types/primitives"
)

var (
	// ErrStateSlotMismatch occurs when a block targets a slot other than
	// the state's current slot.
	ErrStateSlotMismatch = errors.New("block slot does not match state slot")
	// ErrParentRootMismatch occurs when block root verification is on and
	// the block's declared parent root does not match the state's latest
	// block header root.
	ErrParentRootMismatch = errors.New("block parent root does not match latest block header root")
	// ErrProposerIndexMismatch occurs when the block's declared proposer
	// differs from the expected proposer index.
	ErrProposerIndexMismatch = errors.New("block proposer index does not match expected proposer")
	// ErrBlockSlotNotNewer occurs when a block targets a slot at or below
	// the latest block already recorded in the state, e.g. a duplicate
	// block for a slot that already has one.
	ErrBlockSlotNotNewer = errors.New("block slot is not newer than latest block header slot")
)

// ProcessBlockHeader validates the block against the state's header chain
// and records the block as the state's latest block header.
//
// verifyBlockRoot gates the ancestry check: recomputing the parent root
// from the latest block header costs a tree hash, which replay of
// already-validated history may choose to skip.
func ProcessBlockHeader(
	beaconState *state.BeaconState,
	block *consensusblocks.BeaconBlock,
	proposerIndex types.ValidatorIndex,
	verifyBlockRoot bool,
) error {
	if beaconState == nil {
		return state.ErrNilState
	}
	if beaconState.LatestBlockHeader == nil {
		return state.ErrNilBlockHeader
	}
	if block.Slot != beaconState.Slot {
		return errors.Wrapf(ErrStateSlotMismatch, "block.slot=%d state.slot=%d", block.Slot, beaconState.Slot)
	}
	if block.ProposerIndex != proposerIndex {
		return errors.Wrapf(ErrProposerIndexMismatch, "declared=%d expected=%d", block.ProposerIndex, proposerIndex)
	}
	if block.Slot <= beaconState.LatestBlockHeader.Slot {
		return errors.Wrapf(ErrBlockSlotNotNewer, "block.slot=%d header.slot=%d", block.Slot, beaconState.LatestBlockHeader.Slot)
	}
	if verifyBlockRoot {
		parentRoot, err := beaconState.LatestBlockHeader.HashTreeRoot()
		if err != nil {
			return errors.Wrap(err, "could not hash latest block header")
		}
		if !bytes.Equal(block.ParentRoot, parentRoot[:]) {
			return errors.Wrapf(ErrParentRootMismatch, "declared=%#x expected=%#x", block.ParentRoot, parentRoot)
		}
	}

	bodyRoot, err := block.Body.HashTreeRoot()
	if err != nil {
		return errors.Wrap(err, "could not hash block body")
	}
	beaconState.LatestBlockHeader = &state.Header{
		Slot:          block.Slot,
		ProposerIndex: block.ProposerIndex,
		ParentRoot:    append([]byte{}, block.ParentRoot...),
		// The state root stays zeroed until the next slot transition
		// backfills it.
		StateRoot: make([]byte, 32),
		BodyRoot:  bodyRoot[:],
	}
	return nil
}
