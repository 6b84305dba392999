package state

import (
	ssz "github.com/ferranbt/fastssz"
)

// HashTreeRoot computes the ssz root of the whole state. This is the
// expensive fallback the replay engine reaches for when no cheaper root
// source is available.
func (b *BeaconState) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(b)
}

// HashTreeRootWith ssz hashes the BeaconState object with a hasher.
func (b *BeaconState) HashTreeRootWith(hh *ssz.Hasher) (err error) {
	if b.LatestBlockHeader == nil {
		return ErrNilBlockHeader
	}
	if b.Eth1Data == nil {
		return ErrNilEth1Data
	}
	indx := hh.Index()

	hh.PutUint64(uint64(b.Slot))

	if len(b.GenesisValidatorsRoot) != 32 {
		return ssz.ErrBytesLength
	}
	hh.PutBytes(b.GenesisValidatorsRoot)

	if err = b.LatestBlockHeader.HashTreeRootWith(hh); err != nil {
		return err
	}

	{
		subIndx := hh.Index()
		for _, root := range b.BlockRoots {
			if len(root) != 32 {
				return ssz.ErrBytesLength
			}
			hh.Append(root)
		}
		hh.Merkleize(subIndx)
	}

	{
		subIndx := hh.Index()
		for _, root := range b.StateRoots {
			if len(root) != 32 {
				return ssz.ErrBytesLength
			}
			hh.Append(root)
		}
		hh.Merkleize(subIndx)
	}

	if err = b.Eth1Data.HashTreeRootWith(hh); err != nil {
		return err
	}

	hh.PutUint64(b.Eth1DepositIndex)

	{
		subIndx := hh.Index()
		num := uint64(len(b.Validators))
		if num > 1099511627776 {
			return ssz.ErrIncorrectListSize
		}
		for _, elem := range b.Validators {
			if err = elem.HashTreeRootWith(hh); err != nil {
				return err
			}
		}
		hh.MerkleizeWithMixin(subIndx, num, 1099511627776)
	}

	{
		subIndx := hh.Index()
		for _, bal := range b.Balances {
			hh.AppendUint64(bal)
		}
		hh.FillUpTo32()
		numItems := uint64(len(b.Balances))
		hh.MerkleizeWithMixin(subIndx, numItems, ssz.CalculateLimit(1099511627776, numItems, 8))
	}

	hh.Merkleize(indx)
	return nil
}
