package util

import (
	"github.com/pkg/errors"
	coreblocks "github.com/stateforge/chainreplay/beacon-chain/core/blocks"
	"github.com/stateforge/chainreplay/beacon-chain/state"
	"github.com/stateforge/chainreplay/config/params"
	"github.com/stateforge/chainreplay/crypto/bls"
)

// GenesisBeaconState builds a slot-zero state with numValidators active
// deterministic validators and an eth1 data commitment matching the
// deterministic deposit trie. The validators' secret keys are returned
// for signing blocks on top of the state.
func GenesisBeaconState(numValidators uint64) (*state.BeaconState, []bls.SecretKey, error) {
	deposits, depositTrie, keys, err := DeterministicDepositsAndKeys(numValidators)
	if err != nil {
		return nil, nil, err
	}
	depositRoot, err := depositTrie.HashTreeRoot()
	if err != nil {
		return nil, nil, err
	}

	cfg := params.BeaconConfig()
	st := &state.BeaconState{
		Slot:                  0,
		GenesisValidatorsRoot: make([]byte, 32),
		LatestBlockHeader: &state.Header{
			ParentRoot: make([]byte, 32),
			StateRoot:  make([]byte, 32),
			BodyRoot:   make([]byte, 32),
		},
		BlockRoots: makeRootVector(uint64(cfg.SlotsPerHistoricalRoot)),
		StateRoots: makeRootVector(uint64(cfg.SlotsPerHistoricalRoot)),
		Eth1Data: &state.Eth1Data{
			DepositRoot:  depositRoot[:],
			DepositCount: numValidators,
			BlockHash:    make([]byte, 32),
		},
	}

	for i, deposit := range deposits {
		if err := coreblocks.ProcessDeposit(st, deposit, true); err != nil {
			return nil, nil, errors.Wrapf(err, "could not process genesis deposit %d", i)
		}
	}
	// Genesis validators are active from the first epoch.
	for _, val := range st.Validators {
		val.ActivationEpoch = 0
	}
	return st, keys, nil
}

func makeRootVector(length uint64) [][]byte {
	roots := make([][]byte, length)
	for i := range roots {
		roots[i] = make([]byte, 32)
	}
	return roots
}
