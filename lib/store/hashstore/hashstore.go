package hashstore

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/keyplex/keyplex/lib/config"
	"github.com/keyplex/keyplex/lib/logging"
	"github.com/keyplex/keyplex/lib/metrics"
	"github.com/keyplex/keyplex/lib/record"
	"github.com/keyplex/keyplex/lib/scheduler"
	"github.com/keyplex/keyplex/lib/store"
)

type entry struct {
	key   string
	value record.Record
}

// Store is a bucketed hash table with separate chaining. It implements
// store.Store.
//
// Thread-safety: every exported method acquires mu for its full
// duration. Methods with a Locked suffix assume mu is already held and
// exist so that Rename and Upload can recurse into other operations
// without a second, self-deadlocking lock acquisition - the
// re-entrant-locking pattern described in the package's design notes,
// since Go has no built-in recursive mutex. The TTL callback runs on a
// scheduler goroutine without mu held and calls the public Delete.
type Store struct {
	mu       sync.Mutex
	capacity int
	buckets  [][]entry
	ttlTasks map[string]uint64

	sched    *scheduler.Scheduler
	log      *logging.Logger
	ops      *metrics.OpRecorder
	ttl      *metrics.TTLRecorder
	instance string
}

// New creates a Store with the capacity and scheduler timing from cfg.
// A nil cfg uses config.Default(). Capacity below 1 is clamped to 1.
func New(cfg *config.Config) *Store {
	if cfg == nil {
		cfg = config.Default()
	}
	capacity := cfg.HashCapacity
	if capacity < 1 {
		capacity = 1
	}

	instance := uuid.NewString()
	log := logging.New("hashstore")
	log.SetLevel(logging.ParseLevel(cfg.LogLevel))
	ttlStats := metrics.NewTTLRecorder("hashstore", instance)

	s := &Store{
		capacity: capacity,
		buckets:  make([][]entry, capacity),
		ttlTasks: make(map[string]uint64),
		log:      log,
		ops:      metrics.NewOpRecorder("hashstore", instance),
		ttl:      ttlStats,
		instance: instance,
	}

	s.sched = scheduler.New(
		scheduler.WithPollInterval(cfg.SchedulerPollInterval),
		scheduler.WithGCInterval(cfg.SchedulerGCInterval),
		scheduler.WithHooks(scheduler.Hooks{
			OnFire:        ttlStats.Fired,
			OnCancel:      ttlStats.Cancelled,
			OnActiveCount: ttlStats.SetActiveTasks,
		}),
	)

	return s
}

// Close tears down the backend's Scheduler, blocking until every
// pending task worker has exited. Callers must not use the Store after
// Close returns.
func (s *Store) Close() {
	s.sched.Close()
}

var _ store.Store = (*Store)(nil)

func (s *Store) calcIndex(key string) int {
	return int(calcHashCode(key) % uint64(s.capacity))
}

// calcHashCode implements the specification's exact hash function:
// sum(key[i] * 31^(len-1-i)).
func calcHashCode(key string) uint64 {
	var result uint64
	n := len(key)
	for i := 0; i < n; i++ {
		result += uint64(key[i]) * pow31(n-i-1)
	}
	return result
}

func pow31(exp int) uint64 {
	result := uint64(1)
	for i := 0; i < exp; i++ {
		result *= 31
	}
	return result
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *Store) Set(key string, value record.Record, lifetime int) bool {
	defer s.ops.Track("set")()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(key, value, lifetime)
}

func (s *Store) setLocked(key string, value record.Record, lifetime int) bool {
	idx := s.calcIndex(key)
	for _, e := range s.buckets[idx] {
		if e.key == key {
			return false
		}
	}

	if lifetime >= 0 {
		id := s.sched.DelayTask(time.Duration(lifetime)*time.Second, func() {
			s.Delete(key)
		})
		s.ttlTasks[key] = id
	}

	s.buckets[idx] = append(s.buckets[idx], entry{key: key, value: value})
	return true
}

func (s *Store) Get(key string) record.Record {
	defer s.ops.Track("get")()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(key)
}

func (s *Store) getLocked(key string) record.Record {
	idx := s.calcIndex(key)
	for _, e := range s.buckets[idx] {
		if e.key == key {
			return e.value
		}
	}
	return record.Record{}
}

func (s *Store) Exists(key string) bool {
	defer s.ops.Track("exists")()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.existsLocked(key)
}

func (s *Store) existsLocked(key string) bool {
	idx := s.calcIndex(key)
	for _, e := range s.buckets[idx] {
		if e.key == key {
			return true
		}
	}
	return false
}

func (s *Store) Delete(key string) bool {
	defer s.ops.Track("delete")()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLocked(key)
}

func (s *Store) deleteLocked(key string) bool {
	idx := s.calcIndex(key)
	bucket := s.buckets[idx]
	for i, e := range bucket {
		if e.key == key {
			s.cancelTTLLocked(key)
			s.buckets[idx] = append(bucket[:i], bucket[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Store) cancelTTLLocked(key string) {
	id, ok := s.ttlTasks[key]
	if !ok {
		return
	}
	s.sched.StopTask(id)
	delete(s.ttlTasks, key)
}

func (s *Store) Update(key string, value record.Record) bool {
	defer s.ops.Track("update")()
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.calcIndex(key)
	bucket := s.buckets[idx]
	for i, e := range bucket {
		if e.key == key {
			bucket[i].value = e.value.MergeFrom(value)
			return true
		}
	}
	return false
}

func (s *Store) Keys() []string {
	defer s.ops.Track("keys")()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keysLocked()
}

func (s *Store) keysLocked() []string {
	var keys []string
	for _, bucket := range s.buckets {
		for _, e := range bucket {
			keys = append(keys, e.key)
		}
	}
	return keys
}

func (s *Store) Rename(from, to string) bool {
	defer s.ops.Track("rename")()
	s.mu.Lock()
	defer s.mu.Unlock()

	if from == to {
		return s.existsLocked(from)
	}
	if s.existsLocked(to) {
		return false
	}

	idx := s.calcIndex(from)
	for _, e := range s.buckets[idx] {
		if e.key == from {
			lifetime := -1
			if remaining := s.ttlLocked(from); remaining >= 0 {
				lifetime = remaining
			}
			s.setLocked(to, e.value, lifetime)
			s.deleteLocked(from)
			return true
		}
	}
	return false
}

func (s *Store) Ttl(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ttlLocked(key)
}

func (s *Store) ttlLocked(key string) int {
	id, ok := s.ttlTasks[key]
	if !ok {
		return -1
	}
	return s.sched.GetRemainTime(id)
}

func (s *Store) Find(value record.Record) []string {
	defer s.ops.Track("find")()
	s.mu.Lock()
	defer s.mu.Unlock()

	var keys []string
	for _, bucket := range s.buckets {
		for _, e := range bucket {
			if e.value.Matches(value) {
				keys = append(keys, e.key)
			}
		}
	}
	return keys
}

func (s *Store) ShowAll() []record.Record {
	defer s.ops.Track("showall")()
	s.mu.Lock()
	defer s.mu.Unlock()

	var values []record.Record
	for _, bucket := range s.buckets {
		for _, e := range bucket {
			values = append(values, e.value)
		}
	}
	return values
}

func (s *Store) Upload(path string) int {
	defer s.ops.Track("upload")()
	s.mu.Lock()
	defer s.mu.Unlock()
	return store.LoadFile(path, s.log, func(key string, value record.Record) {
		s.setLocked(key, value, -1)
	})
}

func (s *Store) Export(path string) int {
	defer s.ops.Track("export")()
	s.mu.Lock()
	defer s.mu.Unlock()
	return store.DumpFile(path, s.log, s.keysLocked(), s.getLocked)
}
