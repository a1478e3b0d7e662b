package scan

import (
	"sort"

	"github.com/firmhunt/xorscan/pkg/sigcat"
)

// Match records a single signature hit: the key that revealed it, the byte
// offset of the magic within the scanned window, and which catalog entry
// matched in which byte order. Overlapping hits are all reported; nothing is
// deduplicated.
type Match struct {
	Key    uint64            `json:"key"`
	Offset int               `json:"offset"`
	Name   string            `json:"filesystem"`
	Endian sigcat.Endianness `json:"endianness"`
}

// ResultSet is the aggregated outcome of a scan, sorted by
// (key, offset, filesystem, endianness) ascending. The sort makes results
// deterministic for a given input no matter how workers were scheduled.
type ResultSet []Match

func (rs ResultSet) sort() {
	sort.Slice(rs, func(i, j int) bool {
		a, b := rs[i], rs[j]
		if a.Key != b.Key {
			return a.Key < b.Key
		}
		if a.Offset != b.Offset {
			return a.Offset < b.Offset
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Endian < b.Endian
	})
}

// merge flattens per-worker result slices into one sorted ResultSet.
func merge(locals []ResultSet) ResultSet {
	var total int
	for _, l := range locals {
		total += len(l)
	}
	out := make(ResultSet, 0, total)
	for _, l := range locals {
		out = append(out, l...)
	}
	out.sort()
	return out
}
