package math_test

import (
	stdmath "math"
	"testing"

	"github.com/stateforge/chainreplay/math"
	"github.com/stateforge/chainreplay/testing/assert"
	"github.com/stateforge/chainreplay/testing/require"
)

func TestPowerOf2(t *testing.T) {
	assert.Equal(t, uint64(1), math.PowerOf2(0))
	assert.Equal(t, uint64(8), math.PowerOf2(3))
	assert.Equal(t, uint64(1)<<63, math.PowerOf2(63))
}

func TestAdd64(t *testing.T) {
	sum, err := math.Add64(1, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), sum)

	_, err = math.Add64(stdmath.MaxUint64, 1)
	require.ErrorIs(t, err, math.ErrOverflow)
}

func TestMul64(t *testing.T) {
	product, err := math.Mul64(1<<32, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(1)<<33, product)

	_, err = math.Mul64(1<<32, 1<<32)
	require.ErrorIs(t, err, math.ErrOverflow)
}
