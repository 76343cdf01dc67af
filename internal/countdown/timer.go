package countdown

import (
	"sync"
	"time"
)

// CommitInterval is the minimum time between two committed states.
const CommitInterval = time.Second

// FrameID identifies a pending frame callback.
type FrameID uint64

// FrameScheduler runs a callback once on the next frame. Callbacks requested
// while a frame is running fire on the following frame.
type FrameScheduler interface {
	RequestFrame(fn func(now time.Time)) FrameID
	CancelFrame(id FrameID)
}

// Timer commits a fresh State on start and then at most once per
// CommitInterval, driven by a FrameScheduler.
type Timer struct {
	target time.Time
	now    func() time.Time
	sched  FrameScheduler
	commit func(State)

	mu         sync.Mutex
	frame      FrameID
	lastCommit time.Time
	running    bool
}

// NewTimer builds a timer for target. commit is called with the lock held
// and must not call Stop.
func NewTimer(target time.Time, sched FrameScheduler, now func() time.Time, commit func(State)) *Timer {
	if now == nil {
		now = time.Now
	}
	return &Timer{target: target, now: now, sched: sched, commit: commit}
}

// Start commits the current state and begins refreshing it.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}
	t.running = true

	now := t.now()
	t.commit(Compute(t.target, now))
	t.lastCommit = now
	t.frame = t.sched.RequestFrame(t.onFrame)
}

func (t *Timer) onFrame(time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}

	now := t.now()
	if now.Sub(t.lastCommit) >= CommitInterval {
		t.commit(Compute(t.target, now))
		t.lastCommit = now
	}
	t.frame = t.sched.RequestFrame(t.onFrame)
}

// Stop cancels the pending frame. No commit happens after Stop returns.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	t.running = false
	t.sched.CancelFrame(t.frame)
}

// TickerScheduler fires pending frames on a fixed interval from one goroutine.
type TickerScheduler struct {
	mu      sync.Mutex
	next    FrameID
	pending map[FrameID]func(time.Time)

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewTickerScheduler starts a scheduler ticking every interval.
func NewTickerScheduler(interval time.Duration) *TickerScheduler {
	s := &TickerScheduler{
		pending: make(map[FrameID]func(time.Time)),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go s.loop(interval)
	return s
}

func (s *TickerScheduler) loop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer close(s.done)

	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			batch := s.pending
			s.pending = make(map[FrameID]func(time.Time))
			s.mu.Unlock()

			for _, fn := range batch {
				fn(now)
			}
		}
	}
}

// RequestFrame queues fn for the next tick.
func (s *TickerScheduler) RequestFrame(fn func(now time.Time)) FrameID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.pending[s.next] = fn
	return s.next
}

// CancelFrame drops a queued callback.
func (s *TickerScheduler) CancelFrame(id FrameID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, id)
}

// Pending returns the number of queued callbacks.
func (s *TickerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Close stops the ticking goroutine and waits for it to exit.
func (s *TickerScheduler) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}
