package scan

import (
	"context"
	"sync/atomic"

	"github.com/firmhunt/xorscan/pkg/sigcat"
)

// cancelStride is how many offsets a single-key worker processes between
// cancellation checks. Checking per offset would dominate the loop cost.
const cancelStride = 64 << 10

// appendXORMatches tests every catalog entry at offsets [lo, hi] of buf under
// the repeating XOR mask kb, appending hits to out.
func appendXORMatches(out ResultSet, cat sigcat.Catalog, buf, kb []byte, key uint64, lo, hi int) ResultSet {
	for j := lo; j <= hi; j++ {
		for _, sig := range cat {
			if matchXOR(buf, j, kb, sig.LE) {
				out = append(out, Match{Key: key, Offset: j, Name: sig.Name, Endian: sigcat.LittleEndian})
			}
			if sig.BE != nil && matchXOR(buf, j, kb, sig.BE) {
				out = append(out, Match{Key: key, Offset: j, Name: sig.Name, Endian: sigcat.BigEndian})
			}
		}
	}
	return out
}

// appendPlainMatches is the same search over a buffer that has already been
// transformed back to candidate plaintext.
func appendPlainMatches(out ResultSet, cat sigcat.Catalog, buf []byte, key uint64, lo, hi int) ResultSet {
	for j := lo; j <= hi; j++ {
		for _, sig := range cat {
			if matchPlain(buf, j, sig.LE) {
				out = append(out, Match{Key: key, Offset: j, Name: sig.Name, Endian: sigcat.LittleEndian})
			}
			if sig.BE != nil && matchPlain(buf, j, sig.BE) {
				out = append(out, Match{Key: key, Offset: j, Name: sig.Name, Endian: sigcat.BigEndian})
			}
		}
	}
	return out
}

// scanOffsets is the single-key worker loop: one shard of buffer offsets,
// one fixed key. When plain is set the buffer was pre-transformed by the
// orchestrator and the key mask is not reapplied. Matches found before a
// cancellation are returned alongside the context error.
func (s *Scanner) scanOffsets(ctx context.Context, buf []byte, key uint64, offs span, plain bool, done *atomic.Uint64) (ResultSet, error) {
	var out ResultSet
	kb := keyBytes(key, s.width)
	limit := len(buf) - s.catalog.MaxLen()

	var processed uint64
	lo := int(offs.start)
	hi := int(offs.end) - 1
	if hi > limit {
		hi = limit
	}
	for lo <= hi {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		chunk := lo + cancelStride - 1
		if chunk > hi {
			chunk = hi
		}
		if plain {
			out = appendPlainMatches(out, s.catalog, buf, key, lo, chunk)
		} else {
			out = appendXORMatches(out, s.catalog, buf, kb, key, lo, chunk)
		}
		done.Add(uint64(chunk - lo + 1))
		processed += uint64(chunk - lo + 1)
		lo = chunk + 1
	}
	// Offsets past the last full-signature position still count as done so
	// the progress total adds up to the buffer length.
	if rem := offs.length() - processed; rem > 0 {
		done.Add(rem)
	}
	return out, nil
}

// scanKeys is the exhaustive-mode worker loop: one shard of the key space,
// the whole buffer per key. Cancellation is checked once per key.
func (s *Scanner) scanKeys(ctx context.Context, buf []byte, keys span, done *atomic.Uint64) (ResultSet, error) {
	var (
		out     ResultSet
		scratch []byte
	)
	if s.transform == RC4 {
		scratch = make([]byte, len(buf))
	}
	limit := len(buf) - s.catalog.MaxLen()

	for key := keys.start; key < keys.end; key++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		kb := keyBytes(key, s.width)
		if s.transform == RC4 {
			if err := rc4Apply(scratch, buf, kb); err != nil {
				return out, err
			}
			out = appendPlainMatches(out, s.catalog, scratch, key, 0, limit)
		} else {
			out = appendXORMatches(out, s.catalog, buf, kb, key, 0, limit)
		}
		done.Add(1)
	}
	return out, nil
}
