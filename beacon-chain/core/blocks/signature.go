package blocks

import (
	"github.com/pkg/errors"
	"github.com/stateforge/chainreplay/beacon-chain/core/signing"
	"github.com/stateforge/chainreplay/beacon-chain/state"
	"github.com/stateforge/chainreplay/config/params"
	consensusblocks "github.com/stateforge/chainreplay/consensus-types/blocks"
	"github.com/stateforge/chainreplay/crypto/bls"
	"github.com/stateforge/chainreplay/encoding/bytesutil"
)

// ErrSigFailedToVerify returns when a block's proposer signature is invalid.
var ErrSigFailedToVerify = errors.New("block proposer signature did not verify")

// BlockSignatureSet builds the batch-verifiable signature set for the
// block's proposer signature: the proposer's registry pubkey, the raw
// signature and the domain-separated block root it commits to.
func BlockSignatureSet(beaconState *state.BeaconState, signed *consensusblocks.SignedBeaconBlock) (*bls.SignatureSet, error) {
	if beaconState == nil {
		return nil, state.ErrNilState
	}
	proposerIdx := uint64(signed.Block.ProposerIndex)
	if proposerIdx >= uint64(len(beaconState.Validators)) {
		return nil, errors.Errorf("proposer index %d out of range %d", proposerIdx, len(beaconState.Validators))
	}
	pub, err := bls.PublicKeyFromBytes(beaconState.Validators[proposerIdx].PublicKey)
	if err != nil {
		return nil, errors.Wrap(err, "could not decode proposer public key")
	}
	domain, err := signing.ComputeDomain(
		bytesutil.ToBytes4(params.BeaconConfig().DomainBeaconProposer),
		params.BeaconConfig().GenesisForkVersion,
		beaconState.GenesisValidatorsRoot,
	)
	if err != nil {
		return nil, err
	}
	root, err := signing.ComputeSigningRoot(signed.Block, domain)
	if err != nil {
		return nil, errors.Wrap(err, "could not compute block signing root")
	}
	return &bls.SignatureSet{
		Signatures: [][]byte{signed.Signature},
		PublicKeys: []bls.PublicKey{pub},
		Messages:   [][32]byte{root},
	}, nil
}

// VerifyBlockSignature checks the proposer signature on its own, outside
// any batch.
func VerifyBlockSignature(beaconState *state.BeaconState, signed *consensusblocks.SignedBeaconBlock) error {
	set, err := BlockSignatureSet(beaconState, signed)
	if err != nil {
		return err
	}
	sig, err := bls.SignatureFromBytes(set.Signatures[0])
	if err != nil {
		return errors.Wrap(err, "could not decode block signature")
	}
	if !sig.Verify(set.PublicKeys[0], set.Messages[0][:]) {
		return ErrSigFailedToVerify
	}
	return nil
}
