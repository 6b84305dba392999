package trie_test

import (
	"testing"

	"github.com/stateforge/chainreplay/config/params"
	"github.com/stateforge/chainreplay/container/trie"
	"github.com/stateforge/chainreplay/testing/assert"
	"github.com/stateforge/chainreplay/testing/require"
)

func TestMerkleTrie_VerifyMerkleProofWithDepth(t *testing.T) {
	items := [][]byte{
		[]byte("short"),
		[]byte("eos"),
		[]byte("long"),
		[]byte("eth"),
	}
	m, err := trie.GenerateTrieFromItems(items, params.BeaconConfig().DepositContractTreeDepth)
	require.NoError(t, err)
	root, err := m.HashTreeRoot()
	require.NoError(t, err)

	depth := params.BeaconConfig().DepositContractTreeDepth + 1
	for i := range items {
		proof, err := m.MerkleProof(i)
		require.NoError(t, err)
		require.Equal(t, int(depth), len(proof))
		leaves := m.Items()
		if ok := trie.VerifyMerkleProofWithDepth(root[:], leaves[i], uint64(i), proof, depth); !ok {
			t.Fatalf("proof for leaf %d did not verify", i)
		}
	}

	proof, err := m.MerkleProof(0)
	require.NoError(t, err)
	if ok := trie.VerifyMerkleProofWithDepth(root[:], []byte("tampered"), 0, proof, depth); ok {
		t.Fatal("tampered leaf must not verify")
	}
	if ok := trie.VerifyMerkleProofWithDepth(root[:], m.Items()[0], 1, proof, depth); ok {
		t.Fatal("wrong index must not verify")
	}
}

func TestMerkleTrie_Insert(t *testing.T) {
	m, err := trie.NewTrie(params.BeaconConfig().DepositContractTreeDepth)
	require.NoError(t, err)
	emptyRoot, err := m.HashTreeRoot()
	require.NoError(t, err)
	assert.Equal(t, 0, m.NumOfItems())

	item := make([]byte, 32)
	item[0] = 1
	require.NoError(t, m.Insert(item, 0))
	insertedRoot, err := m.HashTreeRoot()
	require.NoError(t, err)
	assert.NotEqual(t, emptyRoot, insertedRoot)

	proof, err := m.MerkleProof(0)
	require.NoError(t, err)
	depth := params.BeaconConfig().DepositContractTreeDepth + 1
	if ok := trie.VerifyMerkleProofWithDepth(insertedRoot[:], item, 0, proof, depth); !ok {
		t.Fatal("proof after insert did not verify")
	}
}

func TestMerkleTrie_Copy(t *testing.T) {
	items := [][]byte{[]byte("a"), []byte("b")}
	m, err := trie.GenerateTrieFromItems(items, params.BeaconConfig().DepositContractTreeDepth)
	require.NoError(t, err)
	copied := m.Copy()

	item := make([]byte, 32)
	item[0] = 0xcc
	require.NoError(t, copied.Insert(item, 2))

	origRoot, err := m.HashTreeRoot()
	require.NoError(t, err)
	copiedRoot, err := copied.HashTreeRoot()
	require.NoError(t, err)
	assert.NotEqual(t, origRoot, copiedRoot, "mutating the copy leaked into the original")
	assert.Equal(t, 2, m.NumOfItems())
	assert.Equal(t, 3, copied.NumOfItems())
}

func TestGenerateTrieFromItems_NoItems(t *testing.T) {
	_, err := trie.GenerateTrieFromItems(nil, params.BeaconConfig().DepositContractTreeDepth)
	require.ErrorContains(t, "no items provided", err)
}

func TestGenerateTrieFromItems_DepthSupport(t *testing.T) {
	items := [][]byte{[]byte("a")}
	_, err := trie.GenerateTrieFromItems(items, 63)
	require.NoError(t, err)
	_, err = trie.GenerateTrieFromItems(items, 64)
	require.ErrorContains(t, "depth exceeds", err)
}
