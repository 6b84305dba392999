// Package state defines the beacon chain state container mutated by the
// replay transition. A state has exactly one owner at a time: the replay
// engine mutates it in place for the duration of a replay and hands it
// back when done. None of the methods here are safe for concurrent use.
package state

import (
	ssz "github.com/ferranbt/fastssz"
	"github.com/pkg/errors"
	types "github.com/stateforge/chainreplay/consensus-types/primitives"
	"github.com/stateforge/chainreplay/encoding/bytesutil"
)

var (
	// ErrNilState occurs when a nil state is passed to an operation that
	// requires one.
	ErrNilState = errors.New("nil beacon state")
	// ErrNilEth1Data occurs when the state's eth1 data is unset.
	ErrNilEth1Data = errors.New("nil eth1 data in state")
	// ErrNilBlockHeader occurs when the state's latest block header is unset.
	ErrNilBlockHeader = errors.New("nil latest block header in state")
	// ErrRegistryMismatch occurs when the validator registry and balances
	// lists have diverged in length.
	ErrRegistryMismatch = errors.New("validator registry and balances lengths differ")
)

// Validator is a single entry of the registry.
type Validator struct {
	PublicKey             []byte `ssz-size:"48"`
	WithdrawalCredentials []byte `ssz-size:"32"`
	EffectiveBalance      uint64
	Slashed               bool
	ActivationEpoch       types.Epoch
	ExitEpoch             types.Epoch
}

// Eth1Data is the state's view of the deposit contract: the root
// commitment all deposit inclusion proofs are verified against, and the
// count of deposits under it.
type Eth1Data struct {
	DepositRoot  []byte `ssz-size:"32"`
	DepositCount uint64
	BlockHash    []byte `ssz-size:"32"`
}

// BeaconState is the full chain state at a slot.
type BeaconState struct {
	Slot                  types.Slot
	GenesisValidatorsRoot []byte   `ssz-size:"32"`
	LatestBlockHeader     *Header
	BlockRoots            [][]byte `ssz-size:"?,32"`
	StateRoots            [][]byte `ssz-size:"?,32"`
	Eth1Data              *Eth1Data
	Eth1DepositIndex      uint64
	Validators            []*Validator `ssz-max:"1099511627776"`
	Balances              []uint64     `ssz-max:"1099511627776"`

	// Reverse index from pubkey to registry position, built on first
	// lookup and extended on append.
	valIdxMap map[[48]byte]types.ValidatorIndex
}

// Header mirrors the latest block header tracked in the state. It is a
// distinct type from the block package's header to keep this package free
// of block imports; the transition converts between the two.
type Header struct {
	Slot          types.Slot
	ProposerIndex types.ValidatorIndex
	ParentRoot    []byte `ssz-size:"32"`
	StateRoot     []byte `ssz-size:"32"`
	BodyRoot      []byte `ssz-size:"32"`
}

// ValidatorIndexByPubkey returns the registry index holding the given
// public key, building the reverse index on first use.
func (b *BeaconState) ValidatorIndexByPubkey(pubKey [48]byte) (types.ValidatorIndex, bool) {
	if b.valIdxMap == nil {
		b.valIdxMap = make(map[[48]byte]types.ValidatorIndex, len(b.Validators))
		for i, val := range b.Validators {
			b.valIdxMap[bytesutil.ToBytes48(val.PublicKey)] = types.ValidatorIndex(i)
		}
	}
	idx, ok := b.valIdxMap[pubKey]
	return idx, ok
}

// AppendValidator adds a new validator with its starting balance to the
// registry, keeping the reverse index coherent.
func (b *BeaconState) AppendValidator(val *Validator, balance uint64) error {
	if len(b.Validators) != len(b.Balances) {
		return ErrRegistryMismatch
	}
	b.Validators = append(b.Validators, val)
	b.Balances = append(b.Balances, balance)
	if b.valIdxMap != nil {
		b.valIdxMap[bytesutil.ToBytes48(val.PublicKey)] = types.ValidatorIndex(len(b.Validators) - 1)
	}
	return nil
}

// IncreaseBalance adds the given amount to the balance at idx.
func (b *BeaconState) IncreaseBalance(idx types.ValidatorIndex, amount uint64) error {
	if uint64(idx) >= uint64(len(b.Balances)) {
		return errors.Errorf("balance index %d out of range %d", idx, len(b.Balances))
	}
	b.Balances[idx] += amount
	return nil
}

// UpdateStateRootAtIndex writes the root into the state roots vector.
func (b *BeaconState) UpdateStateRootAtIndex(idx uint64, root [32]byte) error {
	if idx >= uint64(len(b.StateRoots)) {
		return errors.Errorf("state root index %d out of range %d", idx, len(b.StateRoots))
	}
	b.StateRoots[idx] = root[:]
	return nil
}

// UpdateBlockRootAtIndex writes the root into the block roots vector.
func (b *BeaconState) UpdateBlockRootAtIndex(idx uint64, root [32]byte) error {
	if idx >= uint64(len(b.BlockRoots)) {
		return errors.Errorf("block root index %d out of range %d", idx, len(b.BlockRoots))
	}
	b.BlockRoots[idx] = root[:]
	return nil
}

// HashTreeRoot ssz hashes the Validator object.
func (v *Validator) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(v)
}

// HashTreeRootWith ssz hashes the Validator object with a hasher.
func (v *Validator) HashTreeRootWith(hh *ssz.Hasher) (err error) {
	indx := hh.Index()

	if len(v.PublicKey) != 48 {
		return ssz.ErrBytesLength
	}
	hh.PutBytes(v.PublicKey)

	if len(v.WithdrawalCredentials) != 32 {
		return ssz.ErrBytesLength
	}
	hh.PutBytes(v.WithdrawalCredentials)

	hh.PutUint64(v.EffectiveBalance)
	hh.PutBool(v.Slashed)
	hh.PutUint64(uint64(v.ActivationEpoch))
	hh.PutUint64(uint64(v.ExitEpoch))

	hh.Merkleize(indx)
	return nil
}

// HashTreeRoot ssz hashes the Eth1Data object.
func (e *Eth1Data) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(e)
}

// HashTreeRootWith ssz hashes the Eth1Data object with a hasher.
func (e *Eth1Data) HashTreeRootWith(hh *ssz.Hasher) (err error) {
	indx := hh.Index()

	if len(e.DepositRoot) != 32 {
		return ssz.ErrBytesLength
	}
	hh.PutBytes(e.DepositRoot)

	hh.PutUint64(e.DepositCount)

	if len(e.BlockHash) != 32 {
		return ssz.ErrBytesLength
	}
	hh.PutBytes(e.BlockHash)

	hh.Merkleize(indx)
	return nil
}

// HashTreeRoot ssz hashes the Header object.
func (h *Header) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(h)
}

// HashTreeRootWith ssz hashes the Header object with a hasher.
func (h *Header) HashTreeRootWith(hh *ssz.Hasher) (err error) {
	indx := hh.Index()

	hh.PutUint64(uint64(h.Slot))
	hh.PutUint64(uint64(h.ProposerIndex))

	if len(h.ParentRoot) != 32 {
		return ssz.ErrBytesLength
	}
	hh.PutBytes(h.ParentRoot)

	if len(h.StateRoot) != 32 {
		return ssz.ErrBytesLength
	}
	hh.PutBytes(h.StateRoot)

	if len(h.BodyRoot) != 32 {
		return ssz.ErrBytesLength
	}
	hh.PutBytes(h.BodyRoot)

	hh.Merkleize(indx)
	return nil
}
