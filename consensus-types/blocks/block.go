// Package blocks defines the immutable block inputs consumed by the replay
// engine, along with their ssz hash-tree-root implementations.
package blocks

import (
	ssz "github.com/ferranbt/fastssz"
	types "github.com/stateforge/chainreplay/consensus-types/primitives"
)

// BeaconBlockBody carries the operations embedded in a block. Only the
// operations the replay transition applies are modeled.
type BeaconBlockBody struct {
	Graffiti []byte `ssz-size:"32"`
	Deposits []*Deposit `ssz-max:"16"`
}

// BeaconBlock is a proposed block: the slot it targets, its declared
// proposer, its ancestry link and its declared post-state root.
type BeaconBlock struct {
	Slot          types.Slot
	ProposerIndex types.ValidatorIndex
	ParentRoot    []byte `ssz-size:"32"`
	StateRoot     []byte `ssz-size:"32"`
	Body          *BeaconBlockBody
}

// SignedBeaconBlock is a block plus the proposer's signature over its root.
type SignedBeaconBlock struct {
	Block     *BeaconBlock
	Signature []byte `ssz-size:"96"`
}

// BeaconBlockHeader is a block with its body replaced by the body's root.
type BeaconBlockHeader struct {
	Slot          types.Slot
	ProposerIndex types.ValidatorIndex
	ParentRoot    []byte `ssz-size:"32"`
	StateRoot     []byte `ssz-size:"32"`
	BodyRoot      []byte `ssz-size:"32"`
}

// HashTreeRoot ssz hashes the BeaconBlockBody object.
func (b *BeaconBlockBody) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(b)
}

// HashTreeRootWith ssz hashes the BeaconBlockBody object with a hasher.
func (b *BeaconBlockBody) HashTreeRootWith(hh *ssz.Hasher) (err error) {
	indx := hh.Index()

	if len(b.Graffiti) != 32 {
		return ssz.ErrBytesLength
	}
	hh.PutBytes(b.Graffiti)

	{
		subIndx := hh.Index()
		num := uint64(len(b.Deposits))
		if num > 16 {
			return ssz.ErrIncorrectListSize
		}
		for _, elem := range b.Deposits {
			if err = elem.HashTreeRootWith(hh); err != nil {
				return err
			}
		}
		hh.MerkleizeWithMixin(subIndx, num, 16)
	}

	hh.Merkleize(indx)
	return nil
}

// HashTreeRoot ssz hashes the BeaconBlock object.
func (b *BeaconBlock) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(b)
}

// HashTreeRootWith ssz hashes the BeaconBlock object with a hasher.
func (b *BeaconBlock) HashTreeRootWith(hh *ssz.Hasher) (err error) {
	indx := hh.Index()

	hh.PutUint64(uint64(b.Slot))
	hh.PutUint64(uint64(b.ProposerIndex))

	if len(b.ParentRoot) != 32 {
		return ssz.ErrBytesLength
	}
	hh.PutBytes(b.ParentRoot)

	if len(b.StateRoot) != 32 {
		return ssz.ErrBytesLength
	}
	hh.PutBytes(b.StateRoot)

	if err = b.Body.HashTreeRootWith(hh); err != nil {
		return err
	}

	hh.Merkleize(indx)
	return nil
}

// HashTreeRoot ssz hashes the BeaconBlockHeader object.
func (h *BeaconBlockHeader) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(h)
}

// HashTreeRootWith ssz hashes the BeaconBlockHeader object with a hasher.
func (h *BeaconBlockHeader) HashTreeRootWith(hh *ssz.Hasher) (err error) {
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

// Header returns the block's header form, with the body hashed down to its
// root.
func (b *BeaconBlock) Header() (*BeaconBlockHeader, error) {
	bodyRoot, err := b.Body.HashTreeRoot()
	if err != nil {
		return nil, err
	}
	return &BeaconBlockHeader{
		Slot:          b.Slot,
		ProposerIndex: b.ProposerIndex,
		ParentRoot:    append([]byte{}, b.ParentRoot...),
		StateRoot:     append([]byte{}, b.StateRoot...),
		BodyRoot:      bodyRoot[:],
	}, nil
}
