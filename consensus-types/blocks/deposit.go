package blocks

import (
	ssz "github.com/ferranbt/fastssz"
)

// DepositData is the data payload a depositor commits to: the validator
// key, withdrawal credentials, amount and a proof-of-possession signature.
type DepositData struct {
	PublicKey             []byte `ssz-size:"48"`
	WithdrawalCredentials []byte `ssz-size:"32"`
	Amount                uint64
	Signature             []byte `ssz-size:"96"`
}

// DepositMessage is the signed portion of the deposit data. The signature
// itself is excluded so that the signing root is well defined.
type DepositMessage struct {
	PublicKey             []byte `ssz-size:"48"`
	WithdrawalCredentials []byte `ssz-size:"32"`
	Amount                uint64
}

// Deposit is a deposit data payload together with its Merkle inclusion
// proof into the deposit contract's incremental tree. The proof length is
// the contract tree depth plus one for the deposit-count mix-in level.
type Deposit struct {
	Proof [][]byte `ssz-size:"33,32"`
	Data  *DepositData
}

// HashTreeRoot ssz hashes the DepositData object.
func (d *DepositData) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(d)
}

// HashTreeRootWith ssz hashes the DepositData object with a hasher.
func (d *DepositData) HashTreeRootWith(hh *ssz.Hasher) (err error) {
	indx := hh.Index()

	if len(d.PublicKey) != 48 {
		return ssz.ErrBytesLength
	}
	hh.PutBytes(d.PublicKey)

	if len(d.WithdrawalCredentials) != 32 {
		return ssz.ErrBytesLength
	}
	hh.PutBytes(d.WithdrawalCredentials)

	hh.PutUint64(d.Amount)

	if len(d.Signature) != 96 {
		return ssz.ErrBytesLength
	}
	hh.PutBytes(d.Signature)

	hh.Merkleize(indx)
	return nil
}

// HashTreeRoot ssz hashes the DepositMessage object.
func (d *DepositMessage) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(d)
}

// HashTreeRootWith ssz hashes the DepositMessage object with a hasher.
func (d *DepositMessage) HashTreeRootWith(hh *ssz.Hasher) (err error) {
	indx := hh.Index()

	if len(d.PublicKey) != 48 {
		return ssz.ErrBytesLength
	}
	hh.PutBytes(d.PublicKey)

	if len(d.WithdrawalCredentials) != 32 {
		return ssz.ErrBytesLength
	}
	hh.PutBytes(d.WithdrawalCredentials)

	hh.PutUint64(d.Amount)

	hh.Merkleize(indx)
	return nil
}

// HashTreeRoot ssz hashes the Deposit object.
func (d *Deposit) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(d)
}

// HashTreeRootWith ssz hashes the Deposit object with a hasher.
func (d *Deposit) HashTreeRootWith(hh *ssz.Hasher) (err error) {
	indx := hh.Index()

	if len(d.Proof) != 33 {
		return ssz.ErrVectorLength
	}
	{
		subIndx := hh.Index()
		for _, p := range d.Proof {
			if len(p) != 32 {
				return ssz.ErrBytesLength
			}
			hh.Append(p)
		}
		hh.Merkleize(subIndx)
	}

	if err = d.Data.HashTreeRootWith(hh); err != nil {
		return err
	}

	hh.Merkleize(indx)
	return nil
}
