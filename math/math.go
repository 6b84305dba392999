// Package math includes important helpers for consensus arithmetic where
// silent overflow would corrupt state.
package math

import (
	"math/bits"

	"github.com/pkg/errors"
)

// ErrOverflow occurs when an operation exceeds max or min values.
var ErrOverflow = errors.New("integer overflow")

// PowerOf2 returns 2^n. The result is undefined for n >= 64; callers must
// bound n themselves (the trie rejects depths >= 64 for this reason).
func PowerOf2(n uint64) uint64 {
	return 1 << n
}

// Add64 adds two uint64 values with overflow detection.
func Add64(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrOverflow
	}
	return sum, nil
}

// Mul64 multiplies two uint64 values with overflow detection.
func Mul64(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, ErrOverflow
	}
	return lo, nil
}
