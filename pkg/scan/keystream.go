package scan

import (
	"crypto/rc4"
	"encoding/binary"
	"errors"
	"fmt"
)

// Transform selects how a candidate key is applied to the buffer before
// signature comparison.
type Transform uint8

const (
	// XOR applies the key bytes as a repeating XOR mask aligned to the start
	// of the buffer, low byte first.
	XOR Transform = iota
	// RC4 keys an RC4 stream with the key bytes and decrypts the buffer.
	RC4
)

func (t Transform) String() string {
	if t == RC4 {
		return "rc4"
	}
	return "xor"
}

var (
	ErrBadKeyWidth  = errors.New("key width must be between 1 and 4 bytes")
	ErrBadTransform = errors.New("unknown transform")
	ErrKeyRange     = errors.New("key out of range for key width")
)

// keyBytes returns the low width bytes of key, low byte first. This is the
// byte order a uint32 mask has on disk, so a width-4 XOR scan tests the same
// candidates as XORing the buffer with the little-endian key value.
func keyBytes(key uint64, width int) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], key)
	return buf[:width:width]
}

// keySpaceSize returns the number of distinct keys for a width in bytes.
func keySpaceSize(width int) uint64 {
	return 1 << (8 * width)
}

// rc4Apply decrypts src into dst under the given key bytes. dst and src must
// be the same length.
func rc4Apply(dst, src, key []byte) error {
	c, err := rc4.NewCipher(key)
	if err != nil {
		return fmt.Errorf("rc4 setup: %w", err)
	}
	c.XORKeyStream(dst, src)
	return nil
}

// matchXOR reports whether sig matches buf at offset j once the repeating
// key mask is removed. The mask phase follows the absolute buffer offset,
// not the match offset, mirroring an up-front XOR of the whole buffer.
func matchXOR(buf []byte, j int, kb []byte, sig []byte) bool {
	w := len(kb)
	for k, b := range sig {
		if buf[j+k]^kb[(j+k)%w] != b {
			return false
		}
	}
	return true
}

// matchPlain reports whether sig matches an already-transformed buf at j.
func matchPlain(buf []byte, j int, sig []byte) bool {
	for k, b := range sig {
		if buf[j+k] != b {
			return false
		}
	}
	return true
}
