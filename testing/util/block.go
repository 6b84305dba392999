package util

import (
	"github.com/pkg/errors"
	"github.com/stateforge/chainreplay/beacon-chain/core/signing"
	"github.com/stateforge/chainreplay/beacon-chain/core/transition"
	"github.com/stateforge/chainreplay/beacon-chain/state"
	"github.com/stateforge/chainreplay/config/params"
	consensusblocks "github.com/stateforge/chainreplay/consensus-types/blocks"
	types "github.com/stateforge/chainreplay/consensus-types/primitives"
	"github.com/stateforge/chainreplay/crypto/bls"
	"github.com/stateforge/chainreplay/encoding/bytesutil"
)

// GenerateFullBlock builds a signed block at the given slot on top of st,
// without mutating st. The block carries a correct parent root, a correct
// post-state root and a valid proposer signature, so it survives replay
// with full verification on.
//
// The proposer is picked deterministically as slot modulo the key count;
// keys must line up with the state's validator registry.
func GenerateFullBlock(st *state.BeaconState, keys []bls.SecretKey, slot types.Slot) (*consensusblocks.SignedBeaconBlock, error) {
	if slot <= st.Slot {
		return nil, errors.Errorf("requested slot %d not after state slot %d", slot, st.Slot)
	}
	copied := st.Copy()
	for copied.Slot < slot {
		if _, err := transition.ProcessSlot(copied, params.BeaconConfig().ZeroHash); err != nil {
			return nil, errors.Wrap(err, "could not advance state to block slot")
		}
	}
	parentRoot, err := copied.LatestBlockHeader.HashTreeRoot()
	if err != nil {
		return nil, errors.Wrap(err, "could not hash parent header")
	}

	proposer := types.ValidatorIndex(uint64(slot) % uint64(len(keys)))
	block := &consensusblocks.BeaconBlock{
		Slot:          slot,
		ProposerIndex: proposer,
		ParentRoot:    parentRoot[:],
		StateRoot:     make([]byte, 32),
		Body: &consensusblocks.BeaconBlockBody{
			Graffiti: make([]byte, 32),
		},
	}

	// Run the block through the transition on the copy to learn its
	// post-state root; the declared state root does not feed into it.
	cc := transition.NewConsensusContext(slot).SetProposerIndex(proposer)
	unsigned := &consensusblocks.SignedBeaconBlock{Block: block, Signature: make([]byte, 96)}
	if err := transition.ProcessBlock(copied, unsigned, transition.NoVerification, true, cc); err != nil {
		return nil, errors.Wrap(err, "could not apply block to compute state root")
	}
	stateRoot, err := copied.HashTreeRoot()
	if err != nil {
		return nil, errors.Wrap(err, "could not hash post state")
	}
	block.StateRoot = stateRoot[:]

	sig, err := signBlock(st, block, keys[proposer])
	if err != nil {
		return nil, err
	}
	return &consensusblocks.SignedBeaconBlock{Block: block, Signature: sig}, nil
}

// GenerateChain builds a signed block for each of the given slots, each
// chaining off the previous, and returns the blocks together with the
// post-state of the last block. slots must be strictly increasing and
// above st's slot. st itself is not mutated.
func GenerateChain(st *state.BeaconState, keys []bls.SecretKey, blockSlots ...types.Slot) ([]*consensusblocks.SignedBeaconBlock, *state.BeaconState, error) {
	current := st.Copy()
	blocks := make([]*consensusblocks.SignedBeaconBlock, 0, len(blockSlots))
	for _, slot := range blockSlots {
		signed, err := GenerateFullBlock(current, keys, slot)
		if err != nil {
			return nil, nil, err
		}
		for current.Slot < slot {
			if _, err := transition.ProcessSlot(current, params.BeaconConfig().ZeroHash); err != nil {
				return nil, nil, err
			}
		}
		cc := transition.NewConsensusContext(slot).SetProposerIndex(signed.Block.ProposerIndex)
		if err := transition.ProcessBlock(current, signed, transition.NoVerification, true, cc); err != nil {
			return nil, nil, errors.Wrapf(err, "could not apply generated block at slot %d", slot)
		}
		blocks = append(blocks, signed)
	}
	return blocks, current, nil
}

// signBlock signs the block over the proposer domain derived from the
// state's genesis validators root.
func signBlock(st *state.BeaconState, block *consensusblocks.BeaconBlock, key bls.SecretKey) ([]byte, error) {
	cfg := params.BeaconConfig()
	domain, err := signing.ComputeDomain(
		bytesutil.ToBytes4(cfg.DomainBeaconProposer),
		cfg.GenesisForkVersion,
		st.GenesisValidatorsRoot,
	)
	if err != nil {
		return nil, err
	}
	root, err := signing.ComputeSigningRoot(block, domain)
	if err != nil {
		return nil, errors.Wrap(err, "could not compute block signing root")
	}
	return key.Sign(root[:]).Marshal(), nil
}
