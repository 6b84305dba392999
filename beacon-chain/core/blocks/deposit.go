// Package blocks implements the per-block operations of the replay
// transition: deposit verification and application, header checks and
// proposer signature verification.
package blocks

import (
	"github.com/pkg/errors"
	"github.com/stateforge/chainreplay/beacon-chain/core/signing"
	"github.com/stateforge/chainreplay/beacon-chain/state"
	"github.com/stateforge/chainreplay/config/params"
	consensusblocks "github.com/stateforge/chainreplay/consensus-types/blocks"
	types "github.com/stateforge/chainreplay/consensus-types/primitives"
	"github.com/stateforge/chainreplay/container/trie"
	"github.com/stateforge/chainreplay/crypto/bls"
	"github.com/stateforge/chainreplay/encoding/bytesutil"
	"github.com/stateforge/chainreplay/math"
)

var (
	// ErrBadBLSBytes occurs when a deposit's raw key or signature bytes do
	// not decode into curve points.
	ErrBadBLSBytes = errors.New("could not decode BLS bytes in deposit data")
	// ErrBadSignature occurs when a deposit's proof-of-possession
	// signature fails cryptographic verification.
	ErrBadSignature = errors.New("deposit signature did not verify")
	// ErrBadMerkleProof occurs when a deposit's inclusion proof does not
	// reconstruct the state's deposit root commitment.
	ErrBadMerkleProof = errors.New("deposit merkle branch of deposit root did not verify")
)

// VerifyDepositSignature verifies the proof-of-possession signature inside
// the deposit data. Deposits are signed over the genesis fork version
// regardless of the current fork, with a zero genesis validators root, so
// the check needs no state input and can run ahead of time and in
// parallel with checks for other deposits.
//
// Returns an error wrapping ErrBadBLSBytes when the raw bytes do not
// decode, and ErrBadSignature when the decoded signature fails.
func VerifyDepositSignature(dd *consensusblocks.DepositData) error {
	cfg := params.BeaconConfig()
	pub, sig, root, err := depositSignatureInputs(dd, cfg)
	if err != nil {
		return err
	}
	if !sig.Verify(pub, root[:]) {
		return ErrBadSignature
	}
	return nil
}

// depositSignatureInputs derives the public key, signature and signing
// root a deposit signature check needs.
func depositSignatureInputs(dd *consensusblocks.DepositData, cfg *params.ChainConfig) (bls.PublicKey, bls.Signature, [32]byte, error) {
	pub, err := bls.PublicKeyFromBytes(dd.PublicKey)
	if err != nil {
		return nil, nil, [32]byte{}, errors.Wrap(ErrBadBLSBytes, err.Error())
	}
	sig, err := bls.SignatureFromBytes(dd.Signature)
	if err != nil {
		return nil, nil, [32]byte{}, errors.Wrap(ErrBadBLSBytes, err.Error())
	}
	domain, err := signing.ComputeDomain(
		bytesutil.ToBytes4(cfg.DomainDeposit),
		cfg.GenesisForkVersion,
		cfg.ZeroHash[:],
	)
	if err != nil {
		return nil, nil, [32]byte{}, err
	}
	root, err := signing.ComputeSigningRoot(&consensusblocks.DepositMessage{
		PublicKey:             dd.PublicKey,
		WithdrawalCredentials: dd.WithdrawalCredentials,
		Amount:                dd.Amount,
	}, domain)
	if err != nil {
		return nil, nil, [32]byte{}, err
	}
	return pub, sig, root, nil
}

// VerifyDepositMerkleProof checks that the deposit is included under the
// state's current deposit root commitment. The deposit index is provided
// as a parameter so that proofs can be checked before they are due to be
// processed, and in parallel. The proof depth is the contract tree depth
// plus one, accounting for the deposit-count mix-in level.
func VerifyDepositMerkleProof(beaconState *state.BeaconState, deposit *consensusblocks.Deposit, depositIndex uint64) error {
	if beaconState == nil {
		return state.ErrNilState
	}
	if beaconState.Eth1Data == nil {
		return state.ErrNilEth1Data
	}
	leaf, err := deposit.Data.HashTreeRoot()
	if err != nil {
		return errors.Wrap(err, "could not tree hash deposit data")
	}
	depth, err := math.Add64(params.BeaconConfig().DepositContractTreeDepth, 1)
	if err != nil {
		return err
	}
	if ok := trie.VerifyMerkleProofWithDepth(
		beaconState.Eth1Data.DepositRoot,
		leaf[:],
		depositIndex,
		deposit.Proof,
		depth,
	); !ok {
		return errors.Wrapf(ErrBadMerkleProof, "root: %#x, index: %d", beaconState.Eth1Data.DepositRoot, depositIndex)
	}
	return nil
}

// ExistingValidatorIndex returns the registry index already holding the
// given pubkey, if any, building the state's reverse index when it is not
// already present. It decides whether a deposit creates a new validator or
// tops up an existing one.
func ExistingValidatorIndex(beaconState *state.BeaconState, pubKey []byte) (types.ValidatorIndex, bool) {
	return beaconState.ValidatorIndexByPubkey(bytesutil.ToBytes48(pubKey))
}

// ProcessDeposits applies all deposits in the block body in order. Each
// deposit's inclusion proof is verified against the state's deposit root
// at the state's running deposit index; a bad proof aborts processing,
// while a bad signature only invalidates that single deposit.
func ProcessDeposits(beaconState *state.BeaconState, deposits []*consensusblocks.Deposit) error {
	for _, deposit := range deposits {
		if err := ProcessDeposit(beaconState, deposit, true); err != nil {
			return errors.Wrapf(err, "could not process deposit from %#x", bytesutil.Trunc(deposit.Data.PublicKey))
		}
	}
	return nil
}

// ProcessDeposit verifies the deposit's inclusion proof, advances the
// state's deposit index, and either registers a new validator or tops up
// an existing one.
//
// An invalid proof-of-possession signature on a first-time deposit does
// not fail the block: consensus requires such deposits to be skipped,
// since they were already accepted by the deposit contract. The skip is
// logged with its structured reason.
func ProcessDeposit(beaconState *state.BeaconState, deposit *consensusblocks.Deposit, verifySignature bool) error {
	if err := VerifyDepositMerkleProof(beaconState, deposit, beaconState.Eth1DepositIndex); err != nil {
		return err
	}
	beaconState.Eth1DepositIndex++

	pubKey := deposit.Data.PublicKey
	amount := deposit.Data.Amount
	index, ok := ExistingValidatorIndex(beaconState, pubKey)
	if !ok {
		if verifySignature {
			if err := VerifyDepositSignature(deposit.Data); err != nil {
				log.WithError(err).WithField("publicKey", bytesutil.Trunc(pubKey)).
					Debug("Skipping deposit with invalid signature")
				return nil
			}
		}
		effectiveBalance := amount - (amount % params.BeaconConfig().EffectiveBalanceIncrement)
		if effectiveBalance > params.BeaconConfig().MaxEffectiveBalance {
			effectiveBalance = params.BeaconConfig().MaxEffectiveBalance
		}
		return beaconState.AppendValidator(&state.Validator{
			PublicKey:             bytesutil.SafeCopyBytes(pubKey),
			WithdrawalCredentials: bytesutil.SafeCopyBytes(deposit.Data.WithdrawalCredentials),
			EffectiveBalance:      effectiveBalance,
			ActivationEpoch:       params.BeaconConfig().FarFutureEpoch,
			ExitEpoch:             params.BeaconConfig().FarFutureEpoch,
		}, amount)
	}
	return beaconState.IncreaseBalance(index, amount)
}
