// Package sigcat holds the catalog of filesystem magic sequences that the
// scanner tests at every candidate offset.
//
// Each entry is plain data: a filesystem name plus the magic bytes as they
// appear on disk in little-endian and big-endian images. Adding support for
// another filesystem means appending an entry, never touching scan logic.
package sigcat

import (
	"errors"
	"fmt"
)

// Endianness tags which byte-order form of a signature matched.
type Endianness uint8

const (
	LittleEndian Endianness = iota
	BigEndian
)

func (e Endianness) String() string {
	if e == BigEndian {
		return "Big Endian"
	}
	return "Little Endian"
}

// MarshalText makes the tag readable in JSON reports.
func (e Endianness) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// Signature is one filesystem magic in both byte orders.
// BE may be nil for ASCII magics that have no meaningful swapped form.
type Signature struct {
	Name string
	LE   []byte
	BE   []byte
}

// Catalog is the set of signatures consulted by every scan worker.
// It is shared read-only and must not be mutated once a scan starts.
type Catalog []Signature

var (
	ErrEmptyCatalog = errors.New("signature catalog is empty")
	ErrBadSignature = errors.New("invalid signature entry")
)

// Default returns the classic firmware trio: Squashfs, CramFS, and JFFS2.
func Default() Catalog {
	return Catalog{
		{Name: "Squashfs", LE: []byte{0x68, 0x73, 0x71, 0x73}, BE: []byte{0x73, 0x71, 0x73, 0x68}},
		{Name: "CramFS", LE: []byte{0x45, 0x3d, 0xcd, 0x28}, BE: []byte{0x28, 0xcd, 0x3d, 0x45}},
		{Name: "JFFS2", LE: []byte{0x85, 0x19}, BE: []byte{0x19, 0x85}},
	}
}

// Extended returns Default plus magics for other filesystems commonly found
// in firmware images. The two-byte ext magic in particular produces more
// false positives, so it's opt-in.
func Extended() Catalog {
	return append(Default(),
		Signature{Name: "UBI", LE: []byte("UBI#")},
		Signature{Name: "UBIFS", LE: []byte{0x31, 0x18, 0x10, 0x06}, BE: []byte{0x06, 0x10, 0x18, 0x31}},
		Signature{Name: "ext", LE: []byte{0x53, 0xef}, BE: []byte{0xef, 0x53}},
		Signature{Name: "romfs", LE: []byte("-rom1fs-")},
		Signature{Name: "F2FS", LE: []byte{0x10, 0x20, 0xf5, 0xf2}, BE: []byte{0xf2, 0xf5, 0x20, 0x10}},
	)
}

// MaxLen returns the longest signature length in the catalog.
func (c Catalog) MaxLen() int {
	var max int
	for _, sig := range c {
		if len(sig.LE) > max {
			max = len(sig.LE)
		}
		if len(sig.BE) > max {
			max = len(sig.BE)
		}
	}
	return max
}

// MinLen returns the shortest non-empty signature length in the catalog.
func (c Catalog) MinLen() int {
	var min int
	for _, sig := range c {
		for _, form := range [][]byte{sig.LE, sig.BE} {
			if len(form) == 0 {
				continue
			}
			if min == 0 || len(form) < min {
				min = len(form)
			}
		}
	}
	return min
}

// Validate checks that the catalog is usable: at least one entry, every entry
// named, every entry with a non-empty LE form, and BE forms (when present)
// the same length as their LE counterpart.
func (c Catalog) Validate() error {
	if len(c) == 0 {
		return ErrEmptyCatalog
	}
	for _, sig := range c {
		if sig.Name == "" {
			return fmt.Errorf("%w: unnamed entry", ErrBadSignature)
		}
		if len(sig.LE) == 0 {
			return fmt.Errorf("%w: %s has no LE bytes", ErrBadSignature, sig.Name)
		}
		if sig.BE != nil && len(sig.BE) != len(sig.LE) {
			return fmt.Errorf("%w: %s LE/BE length mismatch", ErrBadSignature, sig.Name)
		}
	}
	return nil
}
