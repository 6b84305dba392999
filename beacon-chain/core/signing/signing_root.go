// Package signing derives the domain-separated messages that consensus
// signatures commit to.
package signing

import (
	ssz "github.com/ferranbt/fastssz"
	"github.com/pkg/errors"
)

// ForkVersionByteLength length of fork version byte array.
const ForkVersionByteLength = 4

// DomainByteLength length of domain byte array.
const DomainByteLength = 4

// ErrNilObject is returned when a nil root container is signed or hashed.
var ErrNilObject = errors.New("cannot compute signing root of nil object")

// SigningData is the container hashed to produce a signing root: the root
// of the object being signed mixed with the signature domain.
type SigningData struct {
	ObjectRoot []byte `ssz-size:"32"`
	Domain     []byte `ssz-size:"32"`
}

// ForkData is the container hashed into the fork-dependent part of a
// domain.
type ForkData struct {
	CurrentVersion        []byte `ssz-size:"4"`
	GenesisValidatorsRoot []byte `ssz-size:"32"`
}

// HashTreeRoot ssz hashes the SigningData object.
func (s *SigningData) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(s)
}

// HashTreeRootWith ssz hashes the SigningData object with a hasher.
func (s *SigningData) HashTreeRootWith(hh *ssz.Hasher) (err error) {
	indx := hh.Index()

	if len(s.ObjectRoot) != 32 {
		return ssz.ErrBytesLength
	}
	hh.PutBytes(s.ObjectRoot)

	if len(s.Domain) != 32 {
		return ssz.ErrBytesLength
	}
	hh.PutBytes(s.Domain)

	hh.Merkleize(indx)
	return nil
}

// HashTreeRoot ssz hashes the ForkData object.
func (f *ForkData) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(f)
}

// HashTreeRootWith ssz hashes the ForkData object with a hasher.
func (f *ForkData) HashTreeRootWith(hh *ssz.Hasher) (err error) {
	indx := hh.Index()

	if len(f.CurrentVersion) != 4 {
		return ssz.ErrBytesLength
	}
	hh.PutBytes(f.CurrentVersion)

	if len(f.GenesisValidatorsRoot) != 32 {
		return ssz.ErrBytesLength
	}
	hh.PutBytes(f.GenesisValidatorsRoot)

	hh.Merkleize(indx)
	return nil
}

// ComputeForkDataRoot derives the root used for domain separation across
// forks and chains.
func ComputeForkDataRoot(version, root []byte) ([32]byte, error) {
	r, err := (&ForkData{
		CurrentVersion:        version,
		GenesisValidatorsRoot: root,
	}).HashTreeRoot()
	if err != nil {
		return [32]byte{}, err
	}
	return r, nil
}

// ComputeDomain returns the domain version for BLS private key to sign and verify.
//
// def compute_domain(domain_type: DomainType, fork_version: Version=None, genesis_validators_root: Root=None) -> Domain:
//    """
//    Return the domain for the ``domain_type`` and ``fork_version``.
//    """
//    if fork_version is None:
//        fork_version = GENESIS_FORK_VERSION
//    if genesis_validators_root is None:
//        genesis_validators_root = Root()  # all bytes zero by default
//    fork_data_root = compute_fork_data_root(fork_version, genesis_validators_root)
//    return Domain(domain_type + fork_data_root[:28])
func ComputeDomain(domainType [DomainByteLength]byte, forkVersion, genesisValidatorsRoot []byte) ([]byte, error) {
	if forkVersion == nil {
		forkVersion = make([]byte, ForkVersionByteLength)
	}
	if genesisValidatorsRoot == nil {
		genesisValidatorsRoot = make([]byte, 32)
	}
	forkBytes := make([]byte, ForkVersionByteLength)
	copy(forkBytes, forkVersion)

	forkDataRoot, err := ComputeForkDataRoot(forkBytes, genesisValidatorsRoot)
	if err != nil {
		return nil, err
	}

	return domain(domainType, forkDataRoot[:]), nil
}

// This returns the bls domain given by the domain type and fork data root.
func domain(domainType [DomainByteLength]byte, forkDataRoot []byte) []byte {
	b := []byte{}
	b = append(b, domainType[:4]...)
	b = append(b, forkDataRoot[:28]...)
	return b
}

// ComputeSigningRoot computes the root of the object by calculating the
// hash tree root of the signing data with the given domain.
//
// def compute_signing_root(ssz_object: SSZObject, domain: Domain) -> Root:
//    """
//    Return the signing root for the corresponding signing data.
//    """
//    return hash_tree_root(SigningData(
//        object_root=hash_tree_root(ssz_object),
//        domain=domain,
//    ))
func ComputeSigningRoot(object interface {
	HashTreeRoot() ([32]byte, error)
}, domain []byte) ([32]byte, error) {
	if object == nil {
		return [32]byte{}, ErrNilObject
	}
	objRoot, err := object.HashTreeRoot()
	if err != nil {
		return [32]byte{}, err
	}
	return ComputeSigningRootForRoot(objRoot, domain)
}

// ComputeSigningRootForRoot works like ComputeSigningRoot for callers that
// already hold the object's hash tree root.
func ComputeSigningRootForRoot(root [32]byte, domain []byte) ([32]byte, error) {
	return (&SigningData{
		ObjectRoot: root[:],
		Domain:     domain,
	}).HashTreeRoot()
}
