package scan

import (
	"sync"
	"sync/atomic"
	"time"
)

// ProgressFunc receives completed and total work unit counts. Implementations
// must be fast; the reporter samples on a timer and a slow callback delays
// only itself, never the scan workers.
type ProgressFunc func(done, total uint64)

// startReporter spawns the sampling goroutine when a progress callback is
// configured. The returned stop function emits one final sample and waits for
// the goroutine to exit; it is safe to call more than once.
func (s *Scanner) startReporter(total uint64, done *atomic.Uint64) (stop func()) {
	if s.progress == nil {
		return func() {}
	}
	var (
		once sync.Once
		quit = make(chan struct{})
		dead = make(chan struct{})
	)
	tick := time.NewTicker(s.interval)
	go func() {
		defer close(dead)
		for {
			select {
			case <-quit:
				s.progress(done.Load(), total)
				return
			case <-tick.C:
				s.progress(done.Load(), total)
			}
		}
	}()
	return func() {
		once.Do(func() {
			tick.Stop()
			close(quit)
			<-dead
		})
	}
}
