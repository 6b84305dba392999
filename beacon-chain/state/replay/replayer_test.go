package replay_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	coreblocks "github.com/stateforge/chainreplay/beacon-chain/core/blocks"
	"github.com/stateforge/chainreplay/beacon-chain/core/transition"
	"github.com/stateforge/chainreplay/beacon-chain/state"
	"github.com/stateforge/chainreplay/beacon-chain/state/replay"
	consensusblocks "github.com/stateforge/chainreplay/consensus-types/blocks"
	types "github.com/stateforge/chainreplay/consensus-types/primitives"
	"github.com/stateforge/chainreplay/testing/assert"
	"github.com/stateforge/chainreplay/testing/require"
	"github.com/stateforge/chainreplay/testing/util"
)

func TestApplyBlocks_SignatureStrategyInvariance(t *testing.T) {
	genesis, keys, err := util.GenesisBeaconState(8)
	require.NoError(t, err)
	blocks, _, err := util.GenerateChain(genesis, keys, 1, 2, 4)
	require.NoError(t, err)

	verified, err := replay.New(genesis.Copy()).ApplyBlocks(context.Background(), blocks)
	require.NoError(t, err)
	unverified, err := replay.New(genesis.Copy()).
		NoSignatureVerification().
		VerifyBlockRoots(false).
		ApplyBlocks(context.Background(), blocks)
	require.NoError(t, err)

	verifiedRoot, err := verified.State().HashTreeRoot()
	require.NoError(t, err)
	unverifiedRoot, err := unverified.State().HashTreeRoot()
	require.NoError(t, err)
	assert.Equal(t, verifiedRoot, unverifiedRoot, "signature strategy changed the resulting state")
}

func TestApplyBlocksToSlot_EmptyBatch(t *testing.T) {
	genesis, _, err := util.GenesisBeaconState(8)
	require.NoError(t, err)

	var skipped []bool
	r, err := replay.New(genesis).
		WithPostSlotHook(func(_ *state.BeaconState, _ *transition.EpochSummary, isSkipped bool) error {
			skipped = append(skipped, isSkipped)
			return nil
		}).
		ApplyBlocksToSlot(context.Background(), nil, 5)
	require.NoError(t, err)

	st := r.State()
	require.NotNil(t, st)
	assert.Equal(t, types.Slot(5), st.Slot)
	require.Equal(t, 5, len(skipped))
	for i, s := range skipped {
		assert.Equal(t, true, s, "slot %d not reported as skipped", i)
	}
}

func TestApplyBlocks_StateRootMiss(t *testing.T) {
	genesis, keys, err := util.GenesisBeaconState(8)
	require.NoError(t, err)
	blocks, _, err := util.GenerateChain(genesis, keys, 1, 2)
	require.NoError(t, err)

	// Without a root source the first slot advance has no previous block
	// to take a root from, so the replayer must hash the state.
	r, err := replay.New(genesis.Copy()).ApplyBlocks(context.Background(), blocks)
	require.NoError(t, err)
	assert.Equal(t, true, r.StateRootMiss())

	genesisRoot, err := genesis.HashTreeRoot()
	require.NoError(t, err)
	withSource, err := replay.New(genesis.Copy()).
		StateRootSource(replay.NewSliceRootSource([]replay.RootSlot{
			{Root: genesisRoot, Slot: 0},
		})).
		ApplyBlocks(context.Background(), blocks)
	require.NoError(t, err)
	assert.Equal(t, false, withSource.StateRootMiss())

	missRoot, err := r.State().HashTreeRoot()
	require.NoError(t, err)
	sourcedRoot, err := withSource.State().HashTreeRoot()
	require.NoError(t, err)
	assert.Equal(t, missRoot, sourcedRoot, "root source changed the resulting state")
}

func TestApplyBlocks_StaleAndMismatchedSourcePairs(t *testing.T) {
	genesis, keys, err := util.GenesisBeaconState(8)
	require.NoError(t, err)
	blocks, _, err := util.GenerateChain(genesis, keys, 2, 3)
	require.NoError(t, err)

	// Pairs below the state's slot must be skipped and a pair beyond the
	// needed slot must fall through to the other tiers, not error.
	r, err := replay.New(genesis.Copy()).
		StateRootSource(replay.NewSliceRootSource([]replay.RootSlot{
			{Root: [32]byte{0xff}, Slot: 100},
		})).
		ApplyBlocks(context.Background(), blocks)
	require.NoError(t, err)
	assert.Equal(t, true, r.StateRootMiss())
	assert.Equal(t, types.Slot(3), r.State().Slot)
}

func TestApplyBlocks_DuplicateSlotBlockFails(t *testing.T) {
	genesis, keys, err := util.GenesisBeaconState(8)
	require.NoError(t, err)
	blocks, _, err := util.GenerateChain(genesis, keys, 11, 13)
	require.NoError(t, err)
	duplicate := &consensusblocks.SignedBeaconBlock{
		Block:     blocks[1].Block,
		Signature: blocks[1].Signature,
	}
	batch := append(blocks, duplicate)

	skippedAt := make(map[types.Slot]bool)
	r, err := replay.New(genesis).
		NoSignatureVerification().
		WithPostSlotHook(func(st *state.BeaconState, _ *transition.EpochSummary, isSkipped bool) error {
			skippedAt[st.Slot] = isSkipped
			return nil
		}).
		ApplyBlocks(context.Background(), batch)
	require.NotNil(t, err)
	require.ErrorIs(t, err, coreblocks.ErrBlockSlotNotNewer)

	kind, ok := replay.KindOf(err)
	require.Equal(t, true, ok)
	assert.Equal(t, replay.BlockProcessing, kind)

	// The state reflects everything up to the failing block: the empty
	// slot between the two applied blocks was reported as skipped and
	// the block slots were not.
	st := r.State()
	require.NotNil(t, st)
	assert.Equal(t, types.Slot(13), st.Slot)
	assert.Equal(t, true, skippedAt[12])
	assert.Equal(t, false, skippedAt[11])
	assert.Equal(t, false, skippedAt[13])
}

func TestApplyBlocks_FirstBlockAlreadyApplied(t *testing.T) {
	genesis, keys, err := util.GenesisBeaconState(8)
	require.NoError(t, err)
	blocks, _, err := util.GenerateChain(genesis, keys, 1, 2, 3)
	require.NoError(t, err)

	first, err := replay.New(genesis.Copy()).ApplyBlocks(context.Background(), blocks[:1])
	require.NoError(t, err)
	afterFirst := first.State()
	require.NotNil(t, afterFirst)
	require.Equal(t, types.Slot(1), afterFirst.Slot)

	// Replaying the full batch from the first block's post-state must
	// skip that block entirely: no hooks fire for it and its header
	// checks never run.
	var seen []types.Slot
	r, err := replay.New(afterFirst).
		WithPostBlockHook(func(_ *state.BeaconState, signed *consensusblocks.SignedBeaconBlock) error {
			seen = append(seen, signed.Block.Slot)
			return nil
		}).
		ApplyBlocks(context.Background(), blocks)
	require.NoError(t, err)
	assert.DeepEqual(t, []types.Slot{2, 3}, seen)
	assert.Equal(t, types.Slot(3), r.State().Slot)
}

func TestApplyBlocks_HookErrorsPropagateUnwrapped(t *testing.T) {
	genesis, keys, err := util.GenesisBeaconState(8)
	require.NoError(t, err)
	blocks, _, err := util.GenerateChain(genesis, keys, 1)
	require.NoError(t, err)

	hookErr := errors.New("caller owned failure")
	_, err = replay.New(genesis.Copy()).
		WithPreSlotHook(func(_ [32]byte, _ *state.BeaconState) error {
			return hookErr
		}).
		ApplyBlocks(context.Background(), blocks)
	require.ErrorIs(t, err, hookErr)
	_, classified := replay.KindOf(err)
	assert.Equal(t, false, classified, "hook error must not be classified as a replay failure")
}

func TestApplyBlocks_MinimalBlockRootVerification(t *testing.T) {
	genesis, keys, err := util.GenesisBeaconState(8)
	require.NoError(t, err)
	blocks, _, err := util.GenerateChain(genesis, keys, 1, 2, 3)
	require.NoError(t, err)
	blocks[2].Block.ParentRoot = make([]byte, 32)

	// The third block's ancestry is vouched for by the batch itself, so
	// the minimal heuristic does not check it.
	_, err = replay.New(genesis.Copy()).
		NoSignatureVerification().
		MinimalBlockRootVerification().
		ApplyBlocks(context.Background(), blocks)
	require.NoError(t, err)

	_, err = replay.New(genesis.Copy()).
		NoSignatureVerification().
		VerifyBlockRoots(true).
		ApplyBlocks(context.Background(), blocks)
	require.ErrorIs(t, err, coreblocks.ErrParentRootMismatch)
}

func TestBlockReplayer_FrozenAfterApply(t *testing.T) {
	genesis, _, err := util.GenesisBeaconState(8)
	require.NoError(t, err)

	r, err := replay.New(genesis).ApplyBlocksToSlot(context.Background(), nil, 1)
	require.NoError(t, err)
	_, err = r.NoSignatureVerification().ApplyBlocksToSlot(context.Background(), nil, 2)
	require.ErrorIs(t, err, replay.ErrReplayFrozen)
}

func TestBlockReplayer_StateRelinquished(t *testing.T) {
	genesis, _, err := util.GenesisBeaconState(8)
	require.NoError(t, err)

	r, err := replay.New(genesis).ApplyBlocksToSlot(context.Background(), nil, 1)
	require.NoError(t, err)
	require.NotNil(t, r.State())
	if r.State() != nil {
		t.Fatal("state handed back twice")
	}
	_, err = r.ApplyBlocksToSlot(context.Background(), nil, 2)
	require.ErrorIs(t, err, replay.ErrNoState)
}

func TestApplyBlocksToSlot_TailSlotsAfterBlocks(t *testing.T) {
	genesis, keys, err := util.GenesisBeaconState(8)
	require.NoError(t, err)
	blocks, _, err := util.GenerateChain(genesis, keys, 1, 2)
	require.NoError(t, err)

	var skipped []bool
	r, err := replay.New(genesis).
		WithPostSlotHook(func(_ *state.BeaconState, _ *transition.EpochSummary, isSkipped bool) error {
			skipped = append(skipped, isSkipped)
			return nil
		}).
		ApplyBlocksToSlot(context.Background(), blocks, 5)
	require.NoError(t, err)
	assert.Equal(t, types.Slot(5), r.State().Slot)
	// Slots 1 and 2 carry blocks; 3, 4 and 5 are the skipped tail.
	assert.DeepEqual(t, []bool{false, false, true, true, true}, skipped)
}
