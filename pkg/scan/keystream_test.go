package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyBytesOrder(t *testing.T) {
	assert.Equal(t, []byte{0xef}, keyBytes(0xdeadbeef, 1))
	assert.Equal(t, []byte{0xef, 0xbe}, keyBytes(0xdeadbeef, 2))
	assert.Equal(t, []byte{0xef, 0xbe, 0xad, 0xde}, keyBytes(0xdeadbeef, 4))
}

func TestKeySpaceSize(t *testing.T) {
	assert.Equal(t, uint64(256), keySpaceSize(1))
	assert.Equal(t, uint64(1)<<16, keySpaceSize(2))
	assert.Equal(t, uint64(1)<<32, keySpaceSize(4))
}

func TestMatchXORPhase(t *testing.T) {
	// The mask phase follows the absolute offset: a signature starting at an
	// offset not divisible by the key width still lines up with the mask as
	// if the whole buffer had been XORed from byte zero.
	sig := []byte{0x10, 0x20, 0x30, 0x40}
	kb := keyBytes(0xdeadbeef, 4)
	buf := make([]byte, 16)
	const at = 6
	for k, b := range sig {
		buf[at+k] = b ^ kb[(at+k)%4]
	}
	assert.True(t, matchXOR(buf, at, kb, sig))
	assert.False(t, matchXOR(buf, at-1, kb, sig))
	assert.False(t, matchXOR(buf, at+1, kb, sig))
}

func TestRC4ApplyRoundTrip(t *testing.T) {
	src := []byte("the quick brown fox jumps over the lazy dog")
	key := keyBytes(0x3f, 1)

	enc := make([]byte, len(src))
	require.NoError(t, rc4Apply(enc, src, key))
	assert.NotEqual(t, src, enc)

	dec := make([]byte, len(src))
	require.NoError(t, rc4Apply(dec, enc, key))
	assert.Equal(t, src, dec)
}
