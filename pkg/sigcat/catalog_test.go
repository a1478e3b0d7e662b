package sigcat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultMagics(t *testing.T) {
	cat := Default()
	assert.NoError(t, cat.Validate())
	assert.Len(t, cat, 3)

	// "hsqs" is the on-disk little-endian form of the Squashfs magic.
	assert.Equal(t, []byte("hsqs"), cat[0].LE)
	assert.Equal(t, []byte("sqsh"), cat[0].BE)
	assert.Equal(t, []byte{0x45, 0x3d, 0xcd, 0x28}, cat[1].LE)
	assert.Equal(t, []byte{0x85, 0x19}, cat[2].LE)

	assert.Equal(t, 4, cat.MaxLen())
	assert.Equal(t, 2, cat.MinLen())
}

func TestExtendedMagics(t *testing.T) {
	cat := Extended()
	assert.NoError(t, cat.Validate())
	assert.Greater(t, len(cat), 3)
	assert.Equal(t, 8, cat.MaxLen())
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, Catalog{}.Validate(), ErrEmptyCatalog)
	assert.ErrorIs(t, Catalog{{LE: []byte{1}}}.Validate(), ErrBadSignature)
	assert.ErrorIs(t, Catalog{{Name: "x"}}.Validate(), ErrBadSignature)
	assert.ErrorIs(t, Catalog{{Name: "x", LE: []byte{1, 2}, BE: []byte{1}}}.Validate(), ErrBadSignature)
	assert.NoError(t, Catalog{{Name: "x", LE: []byte{1, 2}}}.Validate())
}

func TestEndiannessString(t *testing.T) {
	assert.Equal(t, "Little Endian", LittleEndian.String())
	assert.Equal(t, "Big Endian", BigEndian.String())
}
