package transition_test

import (
	"testing"

	"github.com/stateforge/chainreplay/beacon-chain/core/transition"
	"github.com/stateforge/chainreplay/config/params"
	types "github.com/stateforge/chainreplay/consensus-types/primitives"
	"github.com/stateforge/chainreplay/testing/assert"
	"github.com/stateforge/chainreplay/testing/require"
	"github.com/stateforge/chainreplay/testing/util"
)

func TestProcessSlot_AdvancesAndCachesRoots(t *testing.T) {
	st, _, err := util.GenesisBeaconState(4)
	require.NoError(t, err)
	preRoot, err := st.HashTreeRoot()
	require.NoError(t, err)

	summary, err := transition.ProcessSlot(st, preRoot)
	require.NoError(t, err)
	assert.Equal(t, types.Slot(1), st.Slot)
	if summary != nil {
		t.Fatal("no epoch summary expected off the boundary")
	}
	assert.DeepEqual(t, preRoot[:], st.StateRoots[0])
	// The genesis header had no state root; the transition backfills it.
	assert.DeepEqual(t, preRoot[:], st.LatestBlockHeader.StateRoot)

	headerRoot, err := st.LatestBlockHeader.HashTreeRoot()
	require.NoError(t, err)
	assert.DeepEqual(t, headerRoot[:], st.BlockRoots[0])
}

func TestProcessSlot_ZeroRootComputesHash(t *testing.T) {
	withRoot, _, err := util.GenesisBeaconState(4)
	require.NoError(t, err)
	computed, _, err := util.GenesisBeaconState(4)
	require.NoError(t, err)

	preRoot, err := withRoot.HashTreeRoot()
	require.NoError(t, err)
	_, err = transition.ProcessSlot(withRoot, preRoot)
	require.NoError(t, err)
	_, err = transition.ProcessSlot(computed, params.BeaconConfig().ZeroHash)
	require.NoError(t, err)

	suppliedRoot, err := withRoot.HashTreeRoot()
	require.NoError(t, err)
	computedRoot, err := computed.HashTreeRoot()
	require.NoError(t, err)
	assert.Equal(t, suppliedRoot, computedRoot, "supplying the root must match computing it")
}

func TestProcessSlot_EpochBoundarySummary(t *testing.T) {
	st, _, err := util.GenesisBeaconState(4)
	require.NoError(t, err)
	slotsPerEpoch := uint64(params.BeaconConfig().SlotsPerEpoch)

	var summary *transition.EpochSummary
	for i := uint64(0); i < slotsPerEpoch; i++ {
		summary, err = transition.ProcessSlot(st, params.BeaconConfig().ZeroHash)
		require.NoError(t, err)
		if i < slotsPerEpoch-1 && summary != nil {
			t.Fatalf("unexpected summary at slot %d", st.Slot)
		}
	}
	require.NotNil(t, summary)
	assert.Equal(t, types.Epoch(1), summary.Epoch)
	assert.Equal(t, uint64(4), summary.ActiveValidatorCount)
	assert.Equal(t, 4*params.BeaconConfig().MaxEffectiveBalance, summary.TotalActiveBalance)
}

func TestProcessEpoch_ClampsEffectiveBalances(t *testing.T) {
	st, _, err := util.GenesisBeaconState(2)
	require.NoError(t, err)
	cfg := params.BeaconConfig()
	st.Balances[0] = cfg.MaxEffectiveBalance + 5*cfg.EffectiveBalanceIncrement
	st.Balances[1] = cfg.MaxEffectiveBalance - cfg.EffectiveBalanceIncrement - 1

	_, err = transition.ProcessEpoch(st)
	require.NoError(t, err)
	assert.Equal(t, cfg.MaxEffectiveBalance, st.Validators[0].EffectiveBalance)
	assert.Equal(t, cfg.MaxEffectiveBalance-2*cfg.EffectiveBalanceIncrement, st.Validators[1].EffectiveBalance)
}

func TestProcessBlock_NilBlock(t *testing.T) {
	st, _, err := util.GenesisBeaconState(2)
	require.NoError(t, err)
	cc := transition.NewConsensusContext(1)
	err = transition.ProcessBlock(st, nil, transition.NoVerification, false, cc)
	require.ErrorIs(t, err, transition.ErrNilBlock)
}

func TestProcessBlock_AppliesGeneratedBlock(t *testing.T) {
	st, keys, err := util.GenesisBeaconState(8)
	require.NoError(t, err)
	signed, err := util.GenerateFullBlock(st, keys, 1)
	require.NoError(t, err)

	_, err = transition.ProcessSlot(st, params.BeaconConfig().ZeroHash)
	require.NoError(t, err)
	cc := transition.NewConsensusContext(1).SetProposerIndex(signed.Block.ProposerIndex)
	require.NoError(t, transition.ProcessBlock(st, signed, transition.VerifyBulk, true, cc))

	postRoot, err := st.HashTreeRoot()
	require.NoError(t, err)
	assert.DeepEqual(t, signed.Block.StateRoot, postRoot[:])
}
