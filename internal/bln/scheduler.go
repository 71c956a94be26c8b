package bln

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// timerScheduler runs a single re-arming timer that hands each expiry to a
// worker goroutine through a one-slot queue.
type timerScheduler struct {
	mu       sync.Mutex
	timer    *time.Timer
	armed    bool
	gen      atomic.Uint64
	interval atomic.Int64

	work chan uint64
	fn   func(gen uint64)
}

// newTimerScheduler creates a scheduler whose expiries call fn on the worker
// with the generation that queued them. The worker is started by run.
func newTimerScheduler(fn func(gen uint64)) *timerScheduler {
	return &timerScheduler{
		work: make(chan uint64, 1),
		fn:   fn,
	}
}

// Arm starts the timer for interval, replacing any pending timer.
func (s *timerScheduler) Arm(interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.interval.Store(int64(interval))
	gen := s.gen.Add(1)
	if s.timer != nil {
		s.timer.Stop()
	}
	s.drain()
	s.armed = true
	s.timer = time.AfterFunc(interval, func() { s.expire(gen) })
}

// SetInterval updates the period used on the next re-arm.
func (s *timerScheduler) SetInterval(interval time.Duration) {
	s.interval.Store(int64(interval))
}

// Cancel stops the timer. Work already handed to the worker is left to the
// work function; queued items are discarded.
func (s *timerScheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen.Add(1)
	s.armed = false
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.drain()
}

// Armed reports whether a timer is pending.
func (s *timerScheduler) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armed
}

// expire runs on the timer goroutine. It only queues work and re-arms.
func (s *timerScheduler) expire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.armed || s.gen.Load() != gen {
		return
	}

	select {
	case s.work <- gen:
	default:
		// previous toggle still pending
	}

	s.timer.Reset(time.Duration(s.interval.Load()))
}

// current reports whether gen is still the live generation. Arm and Cancel
// both advance it, so an item from a stopped or restarted timer is stale.
func (s *timerScheduler) current(gen uint64) bool {
	return s.gen.Load() == gen
}

// drain discards a queued item. Caller holds mu.
func (s *timerScheduler) drain() {
	select {
	case <-s.work:
	default:
	}
}

// run consumes queued work until ctx is cancelled.
func (s *timerScheduler) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case gen := <-s.work:
			if !s.current(gen) {
				continue
			}
			s.fn(gen)
		}
	}
}
