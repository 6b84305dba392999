package herumi

import (
	bls12 "github.com/herumi/bls-eth-go-binary/bls"
	"github.com/pkg/errors"
	"github.com/stateforge/chainreplay/config/params"
	"github.com/stateforge/chainreplay/crypto/bls/common"
)

// Signature used in the BLS signature scheme.
type Signature struct {
	s *bls12.Sign
}

// SignatureFromBytes creates a BLS signature from a LittleEndian byte slice.
func SignatureFromBytes(sig []byte) (common.Signature, error) {
	if len(sig) != params.BeaconConfig().BLSSignatureLength {
		return nil, errors.Errorf("signature must be %d bytes", params.BeaconConfig().BLSSignatureLength)
	}
	signature := &bls12.Sign{}
	if err := signature.Deserialize(sig); err != nil {
		return nil, errors.Wrap(err, "could not unmarshal bytes into signature")
	}
	return &Signature{s: signature}, nil
}

// Verify a bls signature given a public key, a message.
//
// In IETF draft BLS specification:
// Verify(PK, message, signature) -> VALID or INVALID: a verification
//      algorithm that outputs VALID if signature is a valid signature of
//      message under public key PK, and INVALID otherwise.
func (s *Signature) Verify(pubKey common.PublicKey, msg []byte) bool {
	return s.s.VerifyByte(pubKey.(*PublicKey).p, msg)
}

// AggregateVerify verifies each public key against its respective message.
// This is vulnerable to rogue public-key attack. Each user must
// provide a proof-of-knowledge of the public key.
func (s *Signature) AggregateVerify(pubKeys []common.PublicKey, msgs [][32]byte) bool {
	size := len(pubKeys)
	if size == 0 {
		return false
	}
	if size != len(msgs) {
		return false
	}
	msgSlices := make([]byte, 0, size*32)
	rawKeys := make([]bls12.PublicKey, 0, size)
	for i := 0; i < size; i++ {
		msgSlices = append(msgSlices, msgs[i][:]...)
		rawKeys = append(rawKeys, *pubKeys[i].(*PublicKey).p)
	}
	return s.s.AggregateVerifyNoCheck(rawKeys, msgSlices)
}

// FastAggregateVerify verifies all the provided public keys with their
// aggregated signature over one message.
func (s *Signature) FastAggregateVerify(pubKeys []common.PublicKey, msg [32]byte) bool {
	if len(pubKeys) == 0 {
		return false
	}
	rawKeys := make([]bls12.PublicKey, len(pubKeys))
	for i := 0; i < len(pubKeys); i++ {
		rawKeys[i] = *pubKeys[i].(*PublicKey).p
	}
	return s.s.FastAggregateVerify(rawKeys, msg[:])
}

// AggregateSignatures converts a list of signatures into a single, aggregated sig.
func AggregateSignatures(sigs []common.Signature) common.Signature {
	if len(sigs) == 0 {
		return nil
	}
	signature := *sigs[0].Copy().(*Signature).s
	for i := 1; i < len(sigs); i++ {
		signature.Add(sigs[i].(*Signature).s)
	}
	return &Signature{s: &signature}
}

// VerifyMultipleSignatures verifies a non-singular set of signatures and
// its respective pubkeys and messages. This method provides a safe way to
// verify multiple signatures at once. We pick a number randomly from 1 to
// max uint64 and then multiply the signature by it. We continue doing this
// for all signatures and its respective pubkeys. S* = S_1 * r_1 + S_2 * r_2 + ... + S_n * r_n
// This is done to prevent malicious signatures from being batched together
// with valid ones.
func VerifyMultipleSignatures(sigs [][]byte, msgs [][32]byte, pubKeys []common.PublicKey) (bool, error) {
	if len(sigs) == 0 || len(pubKeys) == 0 {
		return false, nil
	}
	length := len(sigs)
	if length != len(pubKeys) || length != len(msgs) {
		return false, errors.Errorf("provided signatures, pubkeys and messages have differing lengths. S: %d, P: %d, M: %d",
			length, len(pubKeys), len(msgs))
	}
	rawSigs := make([]bls12.Sign, length)
	rawKeys := make([]bls12.PublicKey, length)
	rawMsgs := make([]byte, 0, length*32)
	for i := 0; i < length; i++ {
		sig := &bls12.Sign{}
		if err := sig.Deserialize(sigs[i]); err != nil {
			return false, errors.Wrap(err, "could not unmarshal bytes into signature")
		}
		rawSigs[i] = *sig
		rawKeys[i] = *pubKeys[i].(*PublicKey).p
		rawMsgs = append(rawMsgs, msgs[i][:]...)
	}
	// Secure source of RNG is used internally by the herumi multi-verify
	// routine to randomize the batch.
	return bls12.MultiVerify(rawSigs, rawKeys, rawMsgs), nil
}

// Marshal a signature into a LittleEndian byte slice.
func (s *Signature) Marshal() []byte {
	return s.s.Serialize()
}

// Copy returns a full deep copy of a signature.
func (s *Signature) Copy() common.Signature {
	sign := *s.s
	return &Signature{s: &sign}
}
