package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionCoversExactly(t *testing.T) {
	cases := []struct {
		n       uint64
		workers int
	}{
		{1, 1},
		{10, 1},
		{10, 3},
		{10, 10},
		{1 << 20, 7},
		{4097, 16},
	}
	for _, tc := range cases {
		spans, err := partition(tc.n, tc.workers)
		require.NoError(t, err)
		require.NotEmpty(t, spans)

		var sum uint64
		prev := uint64(0)
		for _, sp := range spans {
			assert.Equal(t, prev, sp.start, "spans must be contiguous")
			assert.Greater(t, sp.end, sp.start, "no empty spans")
			sum += sp.length()
			prev = sp.end
		}
		assert.Equal(t, tc.n, sum)
		assert.Equal(t, tc.n, spans[len(spans)-1].end)
	}
}

func TestPartitionRemainderGoesLast(t *testing.T) {
	spans, err := partition(10, 3)
	require.NoError(t, err)
	require.Len(t, spans, 3)
	assert.Equal(t, uint64(3), spans[0].length())
	assert.Equal(t, uint64(3), spans[1].length())
	assert.Equal(t, uint64(4), spans[2].length())
}

func TestPartitionMoreWorkersThanUnits(t *testing.T) {
	spans, err := partition(3, 8)
	require.NoError(t, err)
	require.Len(t, spans, 3)
	for _, sp := range spans {
		assert.Equal(t, uint64(1), sp.length())
	}
}

func TestPartitionErrors(t *testing.T) {
	_, err := partition(0, 4)
	assert.ErrorIs(t, err, ErrEmptyBuffer)
	_, err = partition(10, 0)
	assert.ErrorIs(t, err, ErrBadWorkerCount)
	_, err = partition(10, -2)
	assert.ErrorIs(t, err, ErrBadWorkerCount)
}
