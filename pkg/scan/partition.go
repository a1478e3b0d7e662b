package scan

import "errors"

var (
	ErrEmptyBuffer    = errors.New("nothing to scan")
	ErrBadWorkerCount = errors.New("worker count must be at least 1")
)

// span is a half-open [start, end) slice of the search space, counting either
// buffer offsets or candidate keys depending on the scan mode.
type span struct {
	start, end uint64
}

func (s span) length() uint64 {
	return s.end - s.start
}

// partition splits [0, n) into at most workers contiguous, disjoint spans
// covering every unit exactly once. The final span absorbs the division
// remainder. When workers exceeds n the split collapses to n unit spans
// rather than producing empty ones.
func partition(n uint64, workers int) ([]span, error) {
	if n == 0 {
		return nil, ErrEmptyBuffer
	}
	if workers < 1 {
		return nil, ErrBadWorkerCount
	}
	if uint64(workers) > n {
		workers = int(n)
	}
	size := n / uint64(workers)
	spans := make([]span, workers)
	for i := range spans {
		spans[i] = span{start: uint64(i) * size, end: uint64(i+1) * size}
	}
	spans[len(spans)-1].end = n
	return spans, nil
}
