// Package replay rebuilds beacon states by applying historical blocks on
// top of a starting state. It is tuned for regenerating states whose
// blocks were already validated once: signature checks and block root
// verification can be relaxed, and pre-computed state roots can be fed
// in to avoid re-hashing the state at every slot.
package replay

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stateforge/chainreplay/beacon-chain/core/transition"
	"github.com/stateforge/chainreplay/beacon-chain/state"
	consensusblocks "github.com/stateforge/chainreplay/consensus-types/blocks"
	types "github.com/stateforge/chainreplay/consensus-types/primitives"
	"github.com/stateforge/chainreplay/encoding/bytesutil"
	"go.opencensus.io/trace"
)

// PreSlotHook runs before each per-slot transition with the resolved
// pre-slot state root and the state about to be advanced.
type PreSlotHook func(stateRoot [32]byte, st *state.BeaconState) error

// PostSlotHook runs after each per-slot transition. summary is non-nil
// only when the transition crossed an epoch boundary. isSkippedSlot is
// true when the slot just processed has no block in the replayed batch.
type PostSlotHook func(st *state.BeaconState, summary *transition.EpochSummary, isSkippedSlot bool) error

// PreBlockHook runs before each block application, after the state has
// been advanced to the block's slot.
type PreBlockHook func(st *state.BeaconState, signed *consensusblocks.SignedBeaconBlock) error

// PostBlockHook runs after each successful block application.
type PostBlockHook func(st *state.BeaconState, signed *consensusblocks.SignedBeaconBlock) error

var (
	// ErrReplayFrozen occurs when a configuration method is called after
	// replay has started. The builder is single-use: configure, apply, read.
	ErrReplayFrozen = errors.New("replayer cannot be reconfigured after blocks have been applied")
	// ErrNoState occurs when blocks are applied after State already handed
	// the state back to the caller.
	ErrNoState = errors.New("replayer no longer holds a state")
)

// BlockReplayer applies blocks and slot transitions to a state it owns.
// Configuration methods chain and must all be called before the first
// Apply call. The zero value is not usable; construct with New.
//
// Defaults: bulk signature verification, block root verification on for
// every block, no root source, no hooks.
type BlockReplayer struct {
	st          *state.BeaconState
	sigStrategy transition.SignatureStrategy

	// verifyBlockRoot nil means the minimal heuristic: only the first
	// blocks of the batch, whose ancestry the batch itself cannot vouch
	// for, get their parent root checked.
	verifyBlockRoot *bool

	roots         *rootCursor
	preSlotHook   PreSlotHook
	postSlotHook  PostSlotHook
	preBlockHook  PreBlockHook
	postBlockHook PostBlockHook

	stateRootMiss bool
	started       bool
	err           error
}

// New creates a replayer owning st. The caller must not mutate st while
// the replayer holds it; State hands ownership back.
func New(st *state.BeaconState) *BlockReplayer {
	verify := true
	return &BlockReplayer{
		st:              st,
		sigStrategy:     transition.VerifyBulk,
		verifyBlockRoot: &verify,
	}
}

func (r *BlockReplayer) freeze() bool {
	if r.started {
		if r.err == nil {
			r.err = ErrReplayFrozen
		}
		return true
	}
	return false
}

// BlockSignatureStrategy sets how block signatures are verified.
func (r *BlockReplayer) BlockSignatureStrategy(s transition.SignatureStrategy) *BlockReplayer {
	if r.freeze() {
		return r
	}
	r.sigStrategy = s
	return r
}

// NoSignatureVerification disables block signature checks. Only sound
// when the blocks were already verified once.
func (r *BlockReplayer) NoSignatureVerification() *BlockReplayer {
	return r.BlockSignatureStrategy(transition.NoVerification)
}

// VerifyBlockRoots sets an explicit block root verification policy for
// every block in the batch.
func (r *BlockReplayer) VerifyBlockRoots(verify bool) *BlockReplayer {
	if r.freeze() {
		return r
	}
	v := verify
	r.verifyBlockRoot = &v
	return r
}

// MinimalBlockRootVerification verifies ancestry only for the leading
// blocks of the batch. Later blocks chain off blocks this replayer just
// applied, so their parent roots are implied by construction.
func (r *BlockReplayer) MinimalBlockRootVerification() *BlockReplayer {
	if r.freeze() {
		return r
	}
	r.verifyBlockRoot = nil
	return r
}

// StateRootSource supplies pre-computed state roots. Pairs below the
// state's slot are skipped; a pair at exactly the state's slot is used
// and consumed; anything else falls through to the next resolution tier.
func (r *BlockReplayer) StateRootSource(src RootSource) *BlockReplayer {
	if r.freeze() {
		return r
	}
	r.roots = newRootCursor(src)
	return r
}

// WithPreSlotHook registers fn to run before every slot transition.
func (r *BlockReplayer) WithPreSlotHook(fn PreSlotHook) *BlockReplayer {
	if r.freeze() {
		return r
	}
	r.preSlotHook = fn
	return r
}

// WithPostSlotHook registers fn to run after every slot transition.
func (r *BlockReplayer) WithPostSlotHook(fn PostSlotHook) *BlockReplayer {
	if r.freeze() {
		return r
	}
	r.postSlotHook = fn
	return r
}

// WithPreBlockHook registers fn to run before every block application.
func (r *BlockReplayer) WithPreBlockHook(fn PreBlockHook) *BlockReplayer {
	if r.freeze() {
		return r
	}
	r.preBlockHook = fn
	return r
}

// WithPostBlockHook registers fn to run after every block application.
func (r *BlockReplayer) WithPostBlockHook(fn PostBlockHook) *BlockReplayer {
	if r.freeze() {
		return r
	}
	r.postBlockHook = fn
	return r
}

// ApplyBlocks replays every block in blocks, advancing the state through
// any empty slots in between. Blocks must be sorted by slot in
// non-decreasing order. The state finishes at the slot of the last block.
func (r *BlockReplayer) ApplyBlocks(ctx context.Context, blocks []*consensusblocks.SignedBeaconBlock) (*BlockReplayer, error) {
	return r.applyBlocks(ctx, blocks, nil)
}

// ApplyBlocksToSlot replays blocks like ApplyBlocks and then keeps
// advancing through empty slots until the state reaches target. Every
// post-block slot is reported to the post-slot hook as skipped. An empty
// batch is valid: the state simply advances to target.
func (r *BlockReplayer) ApplyBlocksToSlot(ctx context.Context, blocks []*consensusblocks.SignedBeaconBlock, target types.Slot) (*BlockReplayer, error) {
	return r.applyBlocks(ctx, blocks, &target)
}

func (r *BlockReplayer) applyBlocks(ctx context.Context, blocks []*consensusblocks.SignedBeaconBlock, target *types.Slot) (*BlockReplayer, error) {
	_, span := trace.StartSpan(ctx, "replay.ApplyBlocks")
	defer span.End()

	if r.err != nil {
		return r, r.err
	}
	if r.st == nil {
		r.err = ErrNoState
		return r, r.err
	}
	r.started = true

	start := time.Now()
	fields := logrus.Fields{
		"startSlot": r.st.Slot,
		"blocks":    len(blocks),
	}
	if target != nil {
		fields["targetSlot"] = *target
	}
	log.WithFields(fields).Debug("Replaying blocks")

	for i, signed := range blocks {
		if signed == nil || signed.Block == nil {
			r.err = transition.ErrNilBlock
			return r, r.err
		}
		block := signed.Block

		// A starting state is often the post-state of the batch's first
		// block. Re-applying that block would fail its header checks, so
		// it is skipped rather than rejected.
		if i == 0 && block.Slot <= r.st.Slot {
			continue
		}

		for r.st.Slot < block.Slot {
			if err := r.advanceSlot(blocks, i, false); err != nil {
				r.err = err
				return r, r.err
			}
		}

		if r.preBlockHook != nil {
			if err := r.preBlockHook(r.st, signed); err != nil {
				r.err = err
				return r, r.err
			}
		}

		verify := i <= 1
		if r.verifyBlockRoot != nil {
			verify = *r.verifyBlockRoot
		}
		cc := transition.NewConsensusContext(block.Slot).SetProposerIndex(block.ProposerIndex)
		if err := transition.ProcessBlock(r.st, signed, r.sigStrategy, verify, cc); err != nil {
			r.err = blockErr(err)
			return r, r.err
		}

		if r.postBlockHook != nil {
			if err := r.postBlockHook(r.st, signed); err != nil {
				r.err = err
				return r, r.err
			}
		}
	}

	if target != nil {
		for r.st.Slot < *target {
			if err := r.advanceSlot(blocks, len(blocks), true); err != nil {
				r.err = err
				return r, r.err
			}
		}
	}

	duration := time.Since(start)
	replayBlocksSummary.Observe(float64(duration.Milliseconds()))
	log.WithFields(logrus.Fields{
		"endSlot":  r.st.Slot,
		"blocks":   len(blocks),
		"duration": duration,
	}).Debug("Finished replaying blocks")
	return r, nil
}

// advanceSlot resolves the pre-slot state root, runs the hooks around
// the slot transition, and advances the state by one slot. i is the
// index of the block being worked toward, or len(blocks) during the
// post-block tail.
func (r *BlockReplayer) advanceSlot(blocks []*consensusblocks.SignedBeaconBlock, i int, tail bool) error {
	root, err := r.stateRoot(blocks, i)
	if err != nil {
		return err
	}
	if r.preSlotHook != nil {
		if err := r.preSlotHook(root, r.st); err != nil {
			return err
		}
	}
	summary, err := transition.ProcessSlot(r.st, root)
	if err != nil {
		return slotErr(err)
	}
	if r.postSlotHook != nil {
		isSkipped := tail || r.st.Slot < blocks[i].Block.Slot
		if err := r.postSlotHook(r.st, summary, isSkipped); err != nil {
			return err
		}
	}
	return nil
}

// stateRoot resolves the root of the state at its current slot, trying
// the cheap tiers first: the root source, then the previous block's
// declared post-state root, and only then a full tree hash of the state.
// The hash fallback sets the miss flag.
func (r *BlockReplayer) stateRoot(blocks []*consensusblocks.SignedBeaconBlock, i int) ([32]byte, error) {
	slot := r.st.Slot

	if r.roots != nil {
		if err := r.roots.skipBelow(slot); err != nil {
			return [32]byte{}, err
		}
		head, err := r.roots.peek()
		if err != nil {
			return [32]byte{}, err
		}
		if head != nil && head.Slot == slot {
			root := head.Root
			r.roots.advance()
			return root, nil
		}
	}

	if i > 0 && i <= len(blocks) {
		prev := blocks[i-1].Block
		if prev.Slot == slot {
			return bytesutil.ToBytes32(prev.StateRoot), nil
		}
	}

	r.stateRootMiss = true
	stateRootMissCount.Inc()
	root, err := r.st.HashTreeRoot()
	if err != nil {
		return [32]byte{}, stateErr(errors.Wrap(err, "could not tree hash state"))
	}
	return root, nil
}

// State hands the replayed state back to the caller and relinquishes it:
// further calls return nil. After a failed replay the state reflects the
// last slot and block that applied successfully; Err describes what
// stopped the replay.
func (r *BlockReplayer) State() *state.BeaconState {
	if !r.started {
		return nil
	}
	st := r.st
	r.st = nil
	return st
}

// StateRootMiss reports whether any slot transition had to fall back to
// tree hashing the state because neither the root source nor the block
// batch could supply its root.
func (r *BlockReplayer) StateRootMiss() bool {
	return r.stateRootMiss
}

// Err returns the first error replay hit, if any.
func (r *BlockReplayer) Err() error {
	return r.err
}
