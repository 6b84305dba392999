package bytesutil_test

import (
	"testing"

	"github.com/stateforge/chainreplay/encoding/bytesutil"
	"github.com/stateforge/chainreplay/testing/assert"
)

func TestToBytes32_TruncatesAndPads(t *testing.T) {
	long := make([]byte, 40)
	long[0] = 1
	long[39] = 2
	out := bytesutil.ToBytes32(long)
	assert.Equal(t, byte(1), out[0])

	short := []byte{7}
	padded := bytesutil.ToBytes32(short)
	assert.Equal(t, byte(7), padded[0])
	assert.Equal(t, byte(0), padded[31])
}

func TestSafeCopyBytes(t *testing.T) {
	src := []byte{1, 2, 3}
	dst := bytesutil.SafeCopyBytes(src)
	dst[0] = 9
	assert.Equal(t, byte(1), src[0])

	if bytesutil.SafeCopyBytes(nil) != nil {
		t.Fatal("copy of nil must stay nil")
	}
}

func TestSafeCopy2dBytes(t *testing.T) {
	src := [][]byte{{1}, {2}}
	dst := bytesutil.SafeCopy2dBytes(src)
	dst[0][0] = 9
	assert.Equal(t, byte(1), src[0][0])
}

func TestTrunc(t *testing.T) {
	long := []byte{0xab, 0xcd, 0xef, 0x01, 0x02, 0x03, 0x04, 0x05}
	assert.DeepEqual(t, long[:6], bytesutil.Trunc(long))
	short := []byte{0xab}
	assert.DeepEqual(t, short, bytesutil.Trunc(short))
}
