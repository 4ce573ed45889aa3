package view

import (
	"sync"
	"time"
)

// FrameHandle identifies a requested frame callback. The zero handle is
// never issued.
type FrameHandle uint64

// Scheduler runs callbacks on the host's next frame.
type Scheduler interface {
	// RequestFrame queues fn for the next frame.
	RequestFrame(fn func(now time.Time)) FrameHandle
	// Cancel drops a queued callback. Unknown or already-run handles are
	// ignored.
	Cancel(h FrameHandle)
	// Now returns the scheduler's current time.
	Now() time.Time
}

// frameQueue is the shared bookkeeping of both schedulers.
type frameQueue struct {
	mu    sync.Mutex
	next  FrameHandle
	order []FrameHandle
	live  map[FrameHandle]func(time.Time)
}

func (q *frameQueue) request(fn func(time.Time)) FrameHandle {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.live == nil {
		q.live = make(map[FrameHandle]func(time.Time))
	}
	q.next++
	q.order = append(q.order, q.next)
	q.live[q.next] = fn
	return q.next
}

func (q *frameQueue) cancel(h FrameHandle) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.live, h)
}

// run executes the callbacks queued before the call, in request order.
// Callbacks requested while running wait for the next frame; callbacks
// cancelled by an earlier one in the same frame are skipped.
func (q *frameQueue) run(now time.Time) int {
	q.mu.Lock()
	batch := q.order
	q.order = nil
	q.mu.Unlock()

	ran := 0
	for _, h := range batch {
		q.mu.Lock()
		fn, ok := q.live[h]
		delete(q.live, h)
		q.mu.Unlock()
		if !ok {
			continue
		}
		fn(now)
		ran++
	}
	return ran
}

func (q *frameQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.live)
}

// ManualScheduler runs frames only when told to, on a virtual clock.
type ManualScheduler struct {
	q   frameQueue
	now time.Time
}

// NewManualScheduler returns a scheduler whose clock starts at start.
func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{now: start}
}

func (s *ManualScheduler) RequestFrame(fn func(time.Time)) FrameHandle { return s.q.request(fn) }
func (s *ManualScheduler) Cancel(h FrameHandle)                        { s.q.cancel(h) }
func (s *ManualScheduler) Now() time.Time                              { return s.now }

// Pending returns the number of queued callbacks.
func (s *ManualScheduler) Pending() int { return s.q.len() }

// Advance moves the clock forward by d and runs one frame.
func (s *ManualScheduler) Advance(d time.Duration) int {
	s.now = s.now.Add(d)
	return s.q.run(s.now)
}

// Flush runs frames at the current time until nothing is queued or limit
// frames have run. It returns the number of frames run.
func (s *ManualScheduler) Flush(limit int) int {
	frames := 0
	for frames < limit && s.q.len() > 0 {
		s.q.run(s.now)
		frames++
	}
	return frames
}

// TickerScheduler is pumped by a host loop such as a UI framework's tick
// message.
type TickerScheduler struct {
	q     frameQueue
	clock func() time.Time
}

// NewTickerScheduler returns a scheduler reading time from clock, or from
// time.Now when clock is nil.
func NewTickerScheduler(clock func() time.Time) *TickerScheduler {
	if clock == nil {
		clock = time.Now
	}
	return &TickerScheduler{clock: clock}
}

func (s *TickerScheduler) RequestFrame(fn func(time.Time)) FrameHandle { return s.q.request(fn) }
func (s *TickerScheduler) Cancel(h FrameHandle)                        { s.q.cancel(h) }
func (s *TickerScheduler) Now() time.Time                              { return s.clock() }

// Pending reports whether a frame is waiting for the next tick.
func (s *TickerScheduler) Pending() bool { return s.q.len() > 0 }

// Tick runs one frame at now and returns the number of callbacks run.
func (s *TickerScheduler) Tick(now time.Time) int { return s.q.run(now) }
