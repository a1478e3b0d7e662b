package scan

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/firmhunt/xorscan/pkg/sigcat"
)

// ErrWorkerPanic wraps a panic recovered inside one worker. The scan is
// reported as failed rather than pretending the worker's shard was searched.
var ErrWorkerPanic = errors.New("scan worker panicked")

// Scanner runs signature searches over an in-memory buffer. Construct one
// with NewScanner; the zero value is not usable.
type Scanner struct {
	catalog   sigcat.Catalog
	workers   int
	width     int
	transform Transform
	progress  ProgressFunc
	interval  time.Duration
	logger    *zap.Logger
}

// Opt configures a Scanner during construction.
type Opt = func(*Scanner) error

// WithCatalog replaces the default signature catalog.
func WithCatalog(c sigcat.Catalog) Opt {
	return func(s *Scanner) error {
		if err := c.Validate(); err != nil {
			return err
		}
		s.catalog = c
		return nil
	}
}

// WithWorkers sets the degree of parallelism. The default is the number of
// available CPUs.
func WithWorkers(n int) Opt {
	return func(s *Scanner) error {
		if n < 1 {
			return ErrBadWorkerCount
		}
		s.workers = n
		return nil
	}
}

// WithKeyWidth sets the key size in bytes, 1 through 4. Width 1 tests a
// single byte broadcast over the whole buffer; wider keys repeat their bytes
// low byte first.
func WithKeyWidth(w int) Opt {
	return func(s *Scanner) error {
		if w < 1 || w > 4 {
			return ErrBadKeyWidth
		}
		s.width = w
		return nil
	}
}

// WithTransform selects XOR (the default) or RC4 key application.
func WithTransform(t Transform) Opt {
	return func(s *Scanner) error {
		if t != XOR && t != RC4 {
			return ErrBadTransform
		}
		s.transform = t
		return nil
	}
}

// WithLogger attaches a logger for scan lifecycle events. The default
// discards everything.
func WithLogger(l *zap.Logger) Opt {
	return func(s *Scanner) error {
		if l == nil {
			return errors.New("nil logger")
		}
		s.logger = l
		return nil
	}
}

// WithProgress registers fn to receive (done, total) work counts every
// interval while a scan runs, plus a final sample at completion. Work units
// are buffer offsets in single-key mode and keys in exhaustive mode. fn runs
// on the reporter goroutine, never inside a worker loop.
func WithProgress(fn ProgressFunc, interval time.Duration) Opt {
	return func(s *Scanner) error {
		if fn == nil || interval <= 0 {
			return errors.New("progress needs a callback and a positive interval")
		}
		s.progress = fn
		s.interval = interval
		return nil
	}
}

// NewScanner builds a Scanner from the given options.
func NewScanner(opts ...Opt) (*Scanner, error) {
	s := &Scanner{
		catalog:   sigcat.Default(),
		workers:   runtime.NumCPU(),
		width:     4,
		transform: XOR,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// KeySpaceSize returns the number of keys a full exhaustive scan covers at
// the configured key width.
func (s *Scanner) KeySpaceSize() uint64 {
	return keySpaceSize(s.width)
}

// ScanKey tests one key against every offset of buf. The buffer is split
// across workers by offset; splitting is observationally transparent, the
// result is identical to a single-worker scan.
func (s *Scanner) ScanKey(ctx context.Context, buf []byte, key uint64) (ResultSet, error) {
	if len(buf) == 0 {
		return nil, ErrEmptyBuffer
	}
	if key >= keySpaceSize(s.width) {
		return nil, fmt.Errorf("%w: key %#x needs more than %d bytes", ErrKeyRange, key, s.width)
	}

	// RC4 is a stream cipher, so the buffer is decrypted once up front and
	// workers search the plaintext candidate directly.
	plain := false
	if s.transform == RC4 {
		scratch := make([]byte, len(buf))
		if err := rc4Apply(scratch, buf, keyBytes(key, s.width)); err != nil {
			return nil, err
		}
		buf = scratch
		plain = true
	}

	spans, err := partition(uint64(len(buf)), s.workers)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("starting single-key scan",
		zap.String("transform", s.transform.String()),
		zap.Uint64("key", key),
		zap.Int("buffer_len", len(buf)),
		zap.Int("shards", len(spans)))

	return s.run(ctx, uint64(len(buf)), spans, func(ctx context.Context, sp span, done *atomic.Uint64) (ResultSet, error) {
		return s.scanOffsets(ctx, buf, key, sp, plain, done)
	})
}

// ScanKeyRange tests every key in [first, last) against the whole buffer.
// The key range is split across workers; each worker scans the entire buffer
// for its shard of keys. Cancelling ctx stops the scan early and returns the
// matches found so far together with the context error.
func (s *Scanner) ScanKeyRange(ctx context.Context, buf []byte, first, last uint64) (ResultSet, error) {
	if len(buf) == 0 {
		return nil, ErrEmptyBuffer
	}
	if first >= last || last > keySpaceSize(s.width) {
		return nil, fmt.Errorf("%w: [%#x, %#x) with %d-byte keys", ErrKeyRange, first, last, s.width)
	}

	spans, err := partition(last-first, s.workers)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("starting exhaustive scan",
		zap.String("transform", s.transform.String()),
		zap.Uint64("first_key", first),
		zap.Uint64("last_key", last),
		zap.Int("buffer_len", len(buf)),
		zap.Int("shards", len(spans)))

	return s.run(ctx, last-first, spans, func(ctx context.Context, sp span, done *atomic.Uint64) (ResultSet, error) {
		return s.scanKeys(ctx, buf, span{start: first + sp.start, end: first + sp.end}, done)
	})
}

// ScanAllKeys covers the full key space for the configured width.
func (s *Scanner) ScanAllKeys(ctx context.Context, buf []byte) (ResultSet, error) {
	return s.ScanKeyRange(ctx, buf, 0, keySpaceSize(s.width))
}

// run executes one worker per span and merges their local results at the
// join point. Worker errors (including recovered panics) propagate out; the
// merged partial results are still returned so a cancelled scan keeps its
// hits.
func (s *Scanner) run(ctx context.Context, total uint64, spans []span, work func(context.Context, span, *atomic.Uint64) (ResultSet, error)) (ResultSet, error) {
	var done atomic.Uint64
	stop := s.startReporter(total, &done)
	defer stop()

	locals := make([]ResultSet, len(spans))
	g, ctx := errgroup.WithContext(ctx)
	for i, sp := range spans {
		i, sp := i, sp
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: shard %d: %v", ErrWorkerPanic, i, r)
				}
			}()
			locals[i], err = work(ctx, sp, &done)
			return err
		})
	}
	err := g.Wait()
	results := merge(locals)
	if err != nil {
		s.logger.Warn("scan incomplete", zap.Error(err), zap.Int("matches", len(results)))
		return results, err
	}
	s.logger.Debug("scan complete", zap.Int("matches", len(results)))
	return results, nil
}
