// Package transition implements the two state-transition rules the replay
// engine interleaves: per-slot advancement and per-block application.
package transition

import (
	"bytes"

	"github.com/pkg/errors"
	b "github.com/stateforge/chainreplay/beacon-chain/core/blocks"
	"github.com/stateforge/chainreplay/beacon-chain/state"
	"github.com/stateforge/chainreplay/config/params"
	consensusblocks "github.com/stateforge/chainreplay/consensus-types/blocks"
	types "github.com/stateforge/chainreplay/consensus-types/primitives"
	"github.com/stateforge/chainreplay/time/slots"
)

// SignatureStrategy selects how much signature verification the block
// transition performs.
type SignatureStrategy int

const (
	// VerifyBulk batches every signature in the block into one
	// multi-signature verification.
	VerifyBulk SignatureStrategy = iota
	// NoVerification skips signature checks entirely. Only sound when
	// replaying blocks already known valid.
	NoVerification
)

// EpochSummary reports the bookkeeping performed at an epoch boundary.
type EpochSummary struct {
	Epoch                types.Epoch
	ActiveValidatorCount uint64
	TotalActiveBalance   uint64
}

// ErrNilBlock occurs when a nil block is passed to the block transition.
var ErrNilBlock = errors.New("nil signed beacon block")

// ProcessSlot advances the state by exactly one slot.
//
// The caller supplies the state's current root; a zero root makes the
// function compute it, which is the expensive path the replay engine's
// root resolution exists to avoid. The root is cached in the state roots
// vector and backfilled into the latest block header before the slot is
// incremented. At an epoch boundary the extra bookkeeping runs and its
// summary is returned; otherwise the summary is nil.
func ProcessSlot(beaconState *state.BeaconState, stateRoot [32]byte) (*EpochSummary, error) {
	if beaconState == nil {
		return nil, state.ErrNilState
	}
	if beaconState.LatestBlockHeader == nil {
		return nil, state.ErrNilBlockHeader
	}
	cfg := params.BeaconConfig()

	if stateRoot == cfg.ZeroHash {
		computed, err := beaconState.HashTreeRoot()
		if err != nil {
			return nil, errors.Wrap(err, "could not tree hash state")
		}
		stateRoot = computed
	}

	historyIdx := uint64(beaconState.Slot.Mod(uint64(cfg.SlotsPerHistoricalRoot)))
	if err := beaconState.UpdateStateRootAtIndex(historyIdx, stateRoot); err != nil {
		return nil, err
	}
	if isZeroRoot(beaconState.LatestBlockHeader.StateRoot) {
		beaconState.LatestBlockHeader.StateRoot = stateRoot[:]
	}
	blockRoot, err := beaconState.LatestBlockHeader.HashTreeRoot()
	if err != nil {
		return nil, errors.Wrap(err, "could not hash latest block header")
	}
	if err := beaconState.UpdateBlockRootAtIndex(historyIdx, blockRoot); err != nil {
		return nil, err
	}

	beaconState.Slot = beaconState.Slot.Add(1)

	if slots.IsEpochStart(beaconState.Slot) {
		return ProcessEpoch(beaconState)
	}
	return nil, nil
}

// ProcessEpoch runs the boundary bookkeeping: effective balances are
// brought back in line with actual balances, and a summary of the
// registry at the new epoch is produced.
func ProcessEpoch(beaconState *state.BeaconState) (*EpochSummary, error) {
	if len(beaconState.Validators) != len(beaconState.Balances) {
		return nil, state.ErrRegistryMismatch
	}
	cfg := params.BeaconConfig()
	epoch := slots.ToEpoch(beaconState.Slot)

	summary := &EpochSummary{Epoch: epoch}
	for i, val := range beaconState.Validators {
		effective := beaconState.Balances[i] - (beaconState.Balances[i] % cfg.EffectiveBalanceIncrement)
		if effective > cfg.MaxEffectiveBalance {
			effective = cfg.MaxEffectiveBalance
		}
		val.EffectiveBalance = effective
		if val.ActivationEpoch <= epoch && epoch < val.ExitEpoch {
			summary.ActiveValidatorCount++
			summary.TotalActiveBalance += effective
		}
	}
	return summary, nil
}

// ProcessBlock validates and applies a block to a state already advanced
// to the block's slot. It rejects blocks whose declared slot does not
// match the state's current slot, optionally verifies the block's
// ancestry, applies the embedded deposits and verifies the proposer
// signature according to the strategy.
func ProcessBlock(
	beaconState *state.BeaconState,
	signed *consensusblocks.SignedBeaconBlock,
	sigStrategy SignatureStrategy,
	verifyBlockRoot bool,
	ctx *ConsensusContext,
) error {
	if signed == nil || signed.Block == nil || signed.Block.Body == nil {
		return ErrNilBlock
	}
	block := signed.Block

	switch sigStrategy {
	case VerifyBulk:
		set, err := b.BlockSignatureSet(beaconState, signed)
		if err != nil {
			return errors.Wrap(err, "could not build block signature set")
		}
		ok, err := set.Verify()
		if err != nil {
			return errors.Wrap(err, "could not batch verify block signatures")
		}
		if !ok {
			return b.ErrSigFailedToVerify
		}
	case NoVerification:
	default:
		return errors.Errorf("unknown signature strategy %d", sigStrategy)
	}

	if err := b.ProcessBlockHeader(beaconState, block, ctx.Proposer(block), verifyBlockRoot); err != nil {
		return errors.Wrap(err, "could not process block header")
	}

	if err := b.ProcessDeposits(beaconState, block.Body.Deposits); err != nil {
		return errors.Wrap(err, "could not process block deposits")
	}

	return nil
}

func isZeroRoot(root []byte) bool {
	return len(root) == 0 || bytes.Equal(root, params.BeaconConfig().ZeroHash[:])
}
