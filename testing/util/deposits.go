// Package util contains test helpers for building deterministic states,
// deposits and block chains.
package util

import (
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/stateforge/chainreplay/beacon-chain/core/signing"
	"github.com/stateforge/chainreplay/config/params"
	consensusblocks "github.com/stateforge/chainreplay/consensus-types/blocks"
	"github.com/stateforge/chainreplay/container/trie"
	"github.com/stateforge/chainreplay/crypto/bls"
	"github.com/stateforge/chainreplay/crypto/hash"
	"github.com/stateforge/chainreplay/encoding/bytesutil"
)

// DeterministicSecretKeys derives numKeys secret keys from a fixed seed,
// so tests get the same keys on every run.
func DeterministicSecretKeys(numKeys uint64) ([]bls.SecretKey, error) {
	keys := make([]bls.SecretKey, 0, numKeys)
	for i := uint64(0); i < numKeys; i++ {
		enc := make([]byte, 8)
		binary.LittleEndian.PutUint64(enc, i)
		seed := hash.Hash(append([]byte("deterministic validator key"), enc...))
		// Clear the high byte so the big-endian scalar stays below the
		// curve order.
		seed[0] = 0
		key, err := bls.SecretKeyFromBytes(seed[:])
		if err != nil {
			return nil, errors.Wrapf(err, "could not derive key %d", i)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// DepositDataForKey builds a signed deposit data payload for the key with
// the given amount. The signature is the proof of possession over the
// deposit domain at the genesis fork.
func DepositDataForKey(key bls.SecretKey, amount uint64) (*consensusblocks.DepositData, error) {
	cfg := params.BeaconConfig()
	pub := key.PublicKey().Marshal()
	creds := hash.Hash(pub)
	creds[0] = 0

	data := &consensusblocks.DepositData{
		PublicKey:             pub,
		WithdrawalCredentials: creds[:],
		Amount:                amount,
	}
	domain, err := signing.ComputeDomain(
		bytesutil.ToBytes4(cfg.DomainDeposit),
		cfg.GenesisForkVersion,
		cfg.ZeroHash[:],
	)
	if err != nil {
		return nil, err
	}
	root, err := signing.ComputeSigningRoot(&consensusblocks.DepositMessage{
		PublicKey:             data.PublicKey,
		WithdrawalCredentials: data.WithdrawalCredentials,
		Amount:                data.Amount,
	}, domain)
	if err != nil {
		return nil, err
	}
	data.Signature = key.Sign(root[:]).Marshal()
	return data, nil
}

// DeterministicDepositsAndKeys returns numDeposits full-balance deposits
// with valid proofs of possession and inclusion proofs, the trie the
// proofs were generated against, and the matching secret keys.
func DeterministicDepositsAndKeys(numDeposits uint64) ([]*consensusblocks.Deposit, *trie.SparseMerkleTrie, []bls.SecretKey, error) {
	keys, err := DeterministicSecretKeys(numDeposits)
	if err != nil {
		return nil, nil, nil, err
	}

	datas := make([]*consensusblocks.DepositData, 0, numDeposits)
	leaves := make([][]byte, 0, numDeposits)
	for _, key := range keys {
		data, err := DepositDataForKey(key, params.BeaconConfig().MaxEffectiveBalance)
		if err != nil {
			return nil, nil, nil, err
		}
		leaf, err := data.HashTreeRoot()
		if err != nil {
			return nil, nil, nil, err
		}
		datas = append(datas, data)
		leaves = append(leaves, leaf[:])
	}

	depositTrie, err := trie.GenerateTrieFromItems(leaves, params.BeaconConfig().DepositContractTreeDepth)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "could not generate deposit trie")
	}

	deposits := make([]*consensusblocks.Deposit, 0, numDeposits)
	for i, data := range datas {
		proof, err := depositTrie.MerkleProof(i)
		if err != nil {
			return nil, nil, nil, errors.Wrapf(err, "could not generate proof for deposit %d", i)
		}
		deposits = append(deposits, &consensusblocks.Deposit{
			Proof: proof,
			Data:  data,
		})
	}
	return deposits, depositTrie, keys, nil
}
