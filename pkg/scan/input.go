package scan

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// DefaultMaxRead caps the scanned window at 1 MiB. Filesystem images start
// with their superblock, so the head of the firmware is where magics live;
// the cap also bounds the O(keys x bytes) exhaustive search.
const DefaultMaxRead = 1 << 20

// OversizePolicy decides what happens when the input file is larger than the
// read cap. Neither choice is silent: truncation is reported to the caller
// and rejection is an error.
type OversizePolicy uint8

const (
	// PolicyTruncate scans only the first max bytes of an oversized file.
	PolicyTruncate OversizePolicy = iota
	// PolicyReject refuses oversized files outright.
	PolicyReject
)

var ErrOversizedInput = errors.New("input exceeds the read cap")

// ReadWindow loads at most max bytes from the head of the file at path.
// truncated reports whether the file was larger than max under
// PolicyTruncate, so the caller can warn that the scan covers a prefix only.
func ReadWindow(path string, max int64, policy OversizePolicy) (data []byte, truncated bool, err error) {
	if max < 1 {
		return nil, false, fmt.Errorf("read cap must be positive, got %d", max)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, false, fmt.Errorf("open input: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	info, err := f.Stat()
	if err != nil {
		return nil, false, fmt.Errorf("stat input: %w", err)
	}
	if info.Size() > max {
		if policy == PolicyReject {
			return nil, false, fmt.Errorf("%w: %s is %d bytes, cap is %d", ErrOversizedInput, path, info.Size(), max)
		}
		truncated = true
	}

	data, err = io.ReadAll(io.LimitReader(f, max))
	if err != nil {
		return nil, false, fmt.Errorf("read input: %w", err)
	}
	return data, truncated, nil
}
