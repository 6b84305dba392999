package trie

import "github.com/stateforge/chainreplay/crypto/hash"

// ZeroHashes are the hashes of empty subtrees at every trie depth,
// precomputed once at package load.
var ZeroHashes [][32]byte

func init() {
	ZeroHashes = make([][32]byte, 65)
	for i := 0; i < 64; i++ {
		ZeroHashes[i+1] = hash.Hash(append(ZeroHashes[i][:], ZeroHashes[i][:]...))
	}
}
