package scheduler

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultPollInterval is the bound spec.md section 4.3 places on how
// often a task worker re-checks its deadline and cancellation flag.
const DefaultPollInterval = 100 * time.Millisecond

// DefaultGCInterval is the bound spec.md section 4.3 places on how
// often completed/cancelled entries are swept from the task map.
const DefaultGCInterval = 300 * time.Millisecond

// Hooks lets a caller observe scheduler activity (for metrics and
// logging) without the scheduler package depending on any particular
// metrics or logging library.
type Hooks struct {
	OnFire        func()
	OnCancel      func()
	OnActiveCount func(n int)
}

type task struct {
	deadline  time.Time
	cancelled atomic.Bool
	done      atomic.Bool
}

// Scheduler registers callbacks to run after a delay unless
// cancelled first. Every exported method is safe to call
// concurrently. A Scheduler is meant to be owned by a single backend;
// see Close.
type Scheduler struct {
	mu     sync.Mutex
	tasks  map[uint64]*task
	nextID uint64

	pollInterval time.Duration
	gcInterval   time.Duration
	hooks        Hooks

	shutdown chan struct{}
	closed   atomic.Bool
	wg       sync.WaitGroup
}

// Option configures a Scheduler at construction time.
type Option func(*Scheduler)

// WithPollInterval overrides the default per-task poll interval.
func WithPollInterval(d time.Duration) Option {
	return func(s *Scheduler) { s.pollInterval = d }
}

// WithGCInterval overrides the default map-sweep interval.
func WithGCInterval(d time.Duration) Option {
	return func(s *Scheduler) { s.gcInterval = d }
}

// WithHooks attaches observability callbacks.
func WithHooks(h Hooks) Option {
	return func(s *Scheduler) { s.hooks = h }
}

// New creates a Scheduler and starts its garbage-collection loop.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		tasks:        make(map[uint64]*task),
		pollInterval: DefaultPollInterval,
		gcInterval:   DefaultGCInterval,
		shutdown:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.wg.Add(1)
	go s.gcLoop()

	return s
}

// DelayTask registers fn to run once after delay, unless cancelled
// via StopTask or the Scheduler is closed first. The returned id is a
// process-unique (within this Scheduler), nonzero, monotonically
// increasing integer that can be passed to StopTask and
// GetRemainTime.
func (s *Scheduler) DelayTask(delay time.Duration, fn func()) uint64 {
	s.mu.Lock()
	id := s.allocateIDLocked()
	t := &task{deadline: time.Now().Add(delay)}
	s.tasks[id] = t
	active := len(s.tasks)
	s.mu.Unlock()

	if s.hooks.OnActiveCount != nil {
		s.hooks.OnActiveCount(active)
	}

	s.wg.Add(1)
	go s.runTask(t, fn)

	return id
}

// allocateIDLocked must be called with s.mu held. It increments
// nextID past any id still present in the map, so ids are never
// reused while their entry remains in the mapping.
func (s *Scheduler) allocateIDLocked() uint64 {
	for {
		s.nextID++
		if s.nextID == 0 {
			continue // skip the reserved zero id on wraparound
		}
		if _, exists := s.tasks[s.nextID]; !exists {
			return s.nextID
		}
	}
}

// StopTask cancels a pending task. It is idempotent and safe to call
// after the task has already fired or been removed; in both cases it
// is a no-op. A race where the task fires before this call observes
// the cancellation flag is permitted - the fired task's effect (e.g.
// a Delete on an already-absent key) must itself be a safe no-op.
func (s *Scheduler) StopTask(id uint64) {
	s.mu.Lock()
	t, ok := s.tasks[id]
	s.mu.Unlock()
	if !ok {
		return
	}

	if t.done.Load() {
		return
	}
	if t.cancelled.CompareAndSwap(false, true) {
		if s.hooks.OnCancel != nil {
			s.hooks.OnCancel()
		}
	}
}

// GetRemainTime returns the whole seconds remaining before id's
// deadline. It returns 0 if id is unknown, already fired, cancelled,
// or its deadline has already passed.
func (s *Scheduler) GetRemainTime(id uint64) int {
	s.mu.Lock()
	t, ok := s.tasks[id]
	s.mu.Unlock()
	if !ok || t.cancelled.Load() || t.done.Load() {
		return 0
	}

	remaining := t.deadline.Sub(time.Now())
	secs := int64(remaining / time.Second)
	if secs < 0 {
		return 0
	}
	return int(secs)
}

// Close signals all running task workers and the GC loop to stop, and
// blocks until every one of them has exited. No in-flight task fires
// after Close starts returning control to workers that haven't yet
// observed their deadline.
func (s *Scheduler) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	close(s.shutdown)
	s.wg.Wait()
}

func (s *Scheduler) runTask(t *task, fn func()) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.shutdown:
			return
		case <-ticker.C:
			if t.cancelled.Load() {
				return
			}
			if !time.Now().Before(t.deadline) {
				t.done.Store(true)
				fn()
				if s.hooks.OnFire != nil {
					s.hooks.OnFire()
				}
				return
			}
		}
	}
}

func (s *Scheduler) gcLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.gcInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.shutdown:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Scheduler) sweep() {
	s.mu.Lock()
	for id, t := range s.tasks {
		if t.done.Load() || t.cancelled.Load() {
			delete(s.tasks, id)
		}
	}
	active := len(s.tasks)
	s.mu.Unlock()

	if s.hooks.OnActiveCount != nil {
		s.hooks.OnActiveCount(active)
	}
}
