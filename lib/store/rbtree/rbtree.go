package rbtree

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/keyplex/keyplex/lib/config"
	"github.com/keyplex/keyplex/lib/logging"
	"github.com/keyplex/keyplex/lib/metrics"
	"github.com/keyplex/keyplex/lib/record"
	"github.com/keyplex/keyplex/lib/scheduler"
	"github.com/keyplex/keyplex/lib/store"
)

// Store is a red-black tree implementing store.Store.
//
// Thread-safety: every exported method acquires mu for its full
// duration. Methods without a Locked suffix but called internally
// (insert, deleteNode, ...) assume mu is already held; Rename and
// Upload rely on this to recurse into Set/Delete without a second
// lock acquisition.
type Store struct {
	mu       sync.Mutex
	root     *node
	ttlTasks map[string]uint64

	sched    *scheduler.Scheduler
	log      *logging.Logger
	ops      *metrics.OpRecorder
	ttl      *metrics.TTLRecorder
	instance string
}

// New creates a Store using the scheduler timing from cfg. A nil cfg
// uses config.Default().
func New(cfg *config.Config) *Store {
	if cfg == nil {
		cfg = config.Default()
	}

	instance := uuid.NewString()
	log := logging.New("rbtree")
	log.SetLevel(logging.ParseLevel(cfg.LogLevel))
	ttlStats := metrics.NewTTLRecorder("rbtree", instance)

	s := &Store{
		ttlTasks: make(map[string]uint64),
		log:      log,
		ops:      metrics.NewOpRecorder("rbtree", instance),
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
// pending task worker has exited.
func (s *Store) Close() {
	s.sched.Close()
}

var _ store.Store = (*Store)(nil)

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
	var inserted bool
	if s.root == nil {
		s.root = &node{key: key, value: value, color: black}
		inserted = true
	} else {
		inserted = s.insert(s.root, key, value)
	}

	if inserted && lifetime >= 0 {
		id := s.sched.DelayTask(time.Duration(lifetime)*time.Second, func() {
			s.Delete(key)
		})
		s.ttlTasks[key] = id
	}

	return inserted
}

func (s *Store) insert(n *node, key string, value record.Record) bool {
	switch {
	case key < n.key:
		if n.left != nil {
			return s.insert(n.left, key, value)
		}
		n.left = &node{key: key, value: value, color: red, parent: n}
		s.insertionCheck(n.left)
		return true
	case key > n.key:
		if n.right != nil {
			return s.insert(n.right, key, value)
		}
		n.right = &node{key: key, value: value, color: red, parent: n}
		s.insertionCheck(n.right)
		return true
	default:
		return false
	}
}

func (s *Store) insertionCheck(n *node) {
	if n == s.root {
		return
	}
	parent := n.parent
	if parent == nil || !parent.isRed() {
		return
	}

	uncle := parent.sibling()
	if uncle.isRed() {
		s.recolor(parent)
		s.recolor(uncle)

		grandparent := parent.parent
		if grandparent != nil && grandparent != s.root {
			s.recolor(grandparent)
			s.insertionCheck(grandparent)
		}
		return
	}

	s.checkRotation(n)
}

func (s *Store) checkRotation(n *node) {
	parent := n.parent
	switch {
	case n.isRightChild() && parent.isLeftChild():
		s.rotate(n, false)
		s.rotate(n, true)
		s.recolor(n)
		s.recolor(n.right)
	case n.isLeftChild() && parent.isRightChild():
		s.rotate(n, true)
		s.rotate(n, false)
		s.recolor(n)
		s.recolor(n.left)
	case n.isRightChild() && parent.isRightChild():
		n = parent
		s.rotate(n, false)
		s.recolor(n)
		s.recolor(n.left)
	case n.isLeftChild() && parent.isLeftChild():
		n = parent
		s.rotate(n, true)
		s.recolor(n)
		s.recolor(n.right)
	}
}

// rotate promotes n above its parent. When right is true, the parent
// becomes n's right child and n's former right subtree becomes the
// parent's left subtree; the left-rotation case is symmetric.
func (s *Store) rotate(n *node, right bool) {
	parent := n.parent
	grandparent := parent.parent
	if grandparent != nil {
		grandparent.replaceChild(parent, n)
	} else {
		s.root = n
	}

	n.parent = parent.parent
	parent.parent = n

	if right {
		parent.left = n.right
		if n.right != nil {
			n.right.parent = parent
		}
		n.right = parent
	} else {
		parent.right = n.left
		if n.left != nil {
			n.left.parent = parent
		}
		n.left = parent
	}
}

func (s *Store) recolor(n *node) {
	if n.isRed() || n == s.root {
		n.color = black
	} else {
		n.color = red
	}
}

func (s *Store) Get(key string) record.Record {
	defer s.ops.Track("get")()
	s.mu.Lock()
	defer s.mu.Unlock()

	if n := s.getNode(s.root, key); n != nil {
		return n.value
	}
	return record.Record{}
}

func (s *Store) Exists(key string) bool {
	defer s.ops.Track("exists")()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getNode(s.root, key) != nil
}

func (s *Store) getNode(n *node, key string) *node {
	for n != nil {
		switch {
		case key < n.key:
			n = n.left
		case key > n.key:
			n = n.right
		default:
			return n
		}
	}
	return nil
}

func (s *Store) Delete(key string) bool {
	defer s.ops.Track("delete")()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLocked(key)
}

func (s *Store) deleteLocked(key string) bool {
	s.cancelTTLLocked(key)

	n := s.getNode(s.root, key)
	if n == nil {
		return false
	}

	s.deleteNode(n)
	return true
}

func (s *Store) cancelTTLLocked(key string) {
	id, ok := s.ttlTasks[key]
	if !ok {
		return
	}
	s.sched.StopTask(id)
	delete(s.ttlTasks, key)
}

func (s *Store) deleteNode(n *node) {
	switch {
	case n.left != nil && n.right != nil:
		successor := n.right
		for successor.left != nil {
			successor = successor.left
		}
		n.swapKV(successor)
		s.deleteNode(successor)

	case n.left != nil || n.right != nil:
		child := n.right
		if child == nil {
			child = n.left
		}
		n.swapKV(child)
		s.deleteNode(child)

	default:
		s.deletionCheck(n)
		if n.parent != nil {
			n.parent.replaceChild(n, nil)
		} else {
			s.root = nil
		}
	}
}

func (s *Store) deletionCheck(n *node) {
	if n == nil || n == s.root || n.isRed() {
		return
	}

	sibling := n.sibling()
	parent := n.parent
	if sibling == nil {
		panic(errors.New("rbtree: black non-root node has no sibling"))
	}

	if !sibling.isRed() {
		if sibling.childrenAreBlack() {
			s.recolor(sibling)
			if parent.isRed() {
				parent.color = black
			} else {
				s.deletionCheck(parent)
			}
			return
		}

		farNephew := n.nephew(true)
		nearNephew := n.nephew(false)

		if farNephew.isRed() {
			sibling.color, parent.color = parent.color, sibling.color
			s.recolor(farNephew)
			s.rotate(sibling, n.isRightChild())
		} else {
			nearNephew.color, sibling.color = sibling.color, nearNephew.color
			s.rotate(nearNephew, n.isLeftChild())
			s.deletionCheck(n)
		}
		return
	}

	sibling.color, parent.color = parent.color, sibling.color
	s.rotate(sibling, !n.isLeftChild())
	s.deletionCheck(n)
}

func (s *Store) Update(key string, value record.Record) bool {
	defer s.ops.Track("update")()
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.getNode(s.root, key)
	if n == nil {
		return false
	}
	n.value = n.value.MergeFrom(value)
	return true
}

func (s *Store) Keys() []string {
	defer s.ops.Track("keys")()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keysLocked()
}

func (s *Store) keysLocked() []string {
	var keys []string
	for n := s.nextNode(nil); n != nil; n = s.nextNode(n) {
		keys = append(keys, n.key)
	}
	return keys
}

func (s *Store) Rename(from, to string) bool {
	defer s.ops.Track("rename")()
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.getNode(s.root, from)
	if n == nil {
		return false
	}
	if from == to {
		return true
	}
	if s.getNode(s.root, to) != nil {
		return false
	}

	if !s.setLocked(to, n.value, s.ttlLocked(from)) {
		return false
	}
	s.deleteLocked(from)
	return true
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
	for n := s.nextNode(nil); n != nil; n = s.nextNode(n) {
		if n.value.Matches(value) {
			keys = append(keys, n.key)
		}
	}
	return keys
}

func (s *Store) ShowAll() []record.Record {
	defer s.ops.Track("showall")()
	s.mu.Lock()
	defer s.mu.Unlock()

	var values []record.Record
	for n := s.nextNode(nil); n != nil; n = s.nextNode(n) {
		values = append(values, n.value)
	}
	return values
}

// nextNode returns the in-order successor of n, or the minimum node of
// the whole tree if n is nil.
func (s *Store) nextNode(n *node) *node {
	if n == nil {
		return minNode(s.root)
	}
	if n.right != nil {
		return minNode(n.right)
	}
	if n.isLeftChild() {
		return n.parent
	}
	for n.isRightChild() {
		n = n.parent
	}
	return n.parent
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

	var keys []string
	for n := s.nextNode(nil); n != nil; n = s.nextNode(n) {
		keys = append(keys, n.key)
	}
	return store.DumpFile(path, s.log, keys, func(key string) record.Record {
		if n := s.getNode(s.root, key); n != nil {
			return n.value
		}
		return record.Record{}
	})
}
