package bplustree

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

// Store is a B+ tree with a configurable branching factor,
// implementing store.Store.
//
// Thread-safety: every exported method acquires mu for its full
// duration. Methods without a Locked suffix but invoked internally
// (shiftLevel, updateTree, getLeaf, ...) assume mu is already held;
// Rename and Upload rely on this to recurse into Set/Delete without a
// second lock acquisition.
type Store struct {
	mu              sync.Mutex
	branchingFactor int
	root            bpNode
	list            *leafNode // leftmost leaf; head of the sequential-scan chain
	ttlTasks        map[string]uint64

	sched    *scheduler.Scheduler
	log      *logging.Logger
	ops      *metrics.OpRecorder
	ttl      *metrics.TTLRecorder
	instance string
}

// New creates a Store with the branching factor and scheduler timing
// from cfg. A nil cfg uses config.Default(); a branching factor below
// 2 is clamped to config.DefaultBranchingFactor.
func New(cfg *config.Config) *Store {
	if cfg == nil {
		cfg = config.Default()
	}
	b := cfg.BranchingFactor
	if b < 2 {
		b = config.DefaultBranchingFactor
	}

	head := &leafNode{}

	instance := uuid.NewString()
	log := logging.New("bplustree")
	log.SetLevel(logging.ParseLevel(cfg.LogLevel))
	ttlStats := metrics.NewTTLRecorder("bplustree", instance)

	s := &Store{
		branchingFactor: b,
		root:            head,
		list:            head,
		ttlTasks:        make(map[string]uint64),
		log:             log,
		ops:             metrics.NewOpRecorder("bplustree", instance),
		ttl:             ttlStats,
		instance:        instance,
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

// getLeaf descends from node to the leaf that would hold key: at each
// internal node it follows the child before the first separator
// strictly greater than key, or the rightmost child if none is.
func getLeaf(node bpNode, key string) *leafNode {
	for {
		leaf, ok := node.(*leafNode)
		if ok {
			return leaf
		}
		in := node.(*internalNode)
		if len(in.children) == 0 {
			panic(errors.New("bplustree: internal node with no children"))
		}
		next := in.children[len(in.children)-1]
		for i, k := range in.keys {
			if key < k {
				next = in.children[i]
				break
			}
		}
		node = next
	}
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
	leaf := getLeaf(s.root, key)
	if !leaf.insert(key, value) {
		return false
	}

	if leaf.size() > s.branchingFactor {
		right := leaf.split()
		s.shiftLevel(leaf, right, right.(*leafNode).keys[0])
	}

	if lifetime >= 0 {
		id := s.sched.DelayTask(time.Duration(lifetime)*time.Second, func() {
			s.Delete(key)
		})
		s.ttlTasks[key] = id
	}

	return true
}

// shiftLevel promotes key, the first key of right, into left's
// parent so that right immediately follows left among its children.
// If left is the root, a new internal root is created above both. A
// parent that overflows past branchingFactor splits in turn, and the
// split's middle key is promoted recursively.
func (s *Store) shiftLevel(left, right bpNode, key string) {
	if left == s.root {
		newRoot := &internalNode{keys: []string{key}, children: []bpNode{left, right}}
		left.setParent(newRoot)
		right.setParent(newRoot)
		s.root = newRoot
		return
	}

	parent := left.getParent()
	parent.insert(key, right, true)
	if parent.size() <= s.branchingFactor {
		return
	}

	newInternal := parent.split().(*internalNode)
	middleKey := newInternal.keys[0]
	newInternal.keys = newInternal.keys[1:]
	s.shiftLevel(parent, newInternal, middleKey)
}

func (s *Store) Get(key string) record.Record {
	defer s.ops.Track("get")()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(key)
}

func (s *Store) getLocked(key string) record.Record {
	leaf := getLeaf(s.root, key)
	if leaf.isKeyExist(key) {
		return leaf.getValue(key)
	}
	return record.Record{}
}

func (s *Store) Exists(key string) bool {
	defer s.ops.Track("exists")()
	s.mu.Lock()
	defer s.mu.Unlock()
	return getLeaf(s.root, key).isKeyExist(key)
}

func (s *Store) Delete(key string) bool {
	defer s.ops.Track("delete")()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLocked(key)
}

func (s *Store) deleteLocked(key string) bool {
	s.cancelTTLLocked(key)

	leaf := getLeaf(s.root, key)
	if !leaf.isKeyExist(key) {
		return false
	}

	leaf.delete(key)
	s.updateTree(leaf)
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

// updateTree rebalances starting at node after a deletion, per the
// delete-rebalance policy: prefer sharing over merging, prefer the
// left sibling over the right when both could share.
func (s *Store) updateTree(node bpNode) {
	if node == s.root {
		if in, ok := node.(*internalNode); ok && in.size() == 0 {
			s.root = in.children[0]
			s.root.setParent(nil)
		}
		return
	}

	isInternal := 0
	if !node.isLeaf() {
		isInternal = 1
	}
	if node.size() >= (s.branchingFactor+isInternal)/2 {
		return
	}

	left, right := s.getSiblings(node)
	minShareSize := (s.branchingFactor + 1) / 2

	switch {
	case left != nil && left.size() > minShareSize:
		node.share(left, left)
	case right != nil && right.size() > minShareSize:
		node.share(right, node)
	case left != nil:
		left.merge(node)
		s.updateTree(left.getParent())
	case right != nil:
		node.merge(right)
		s.updateTree(node.getParent())
	}
}

// getSiblings locates node's position among its parent's children by
// identity and returns its immediate left and right neighbors, nil
// where node has no such neighbor (including when node is the root).
func (s *Store) getSiblings(node bpNode) (left, right bpNode) {
	parent := node.getParent()
	if parent == nil {
		return nil, nil
	}

	idx := parent.indexOfChild(node)
	if idx > 0 {
		left = parent.children[idx-1]
	}
	if idx < len(parent.children)-1 {
		right = parent.children[idx+1]
	}
	return left, right
}

func (s *Store) Update(key string, value record.Record) bool {
	defer s.ops.Track("update")()
	s.mu.Lock()
	defer s.mu.Unlock()

	leaf := getLeaf(s.root, key)
	if !leaf.isKeyExist(key) {
		return false
	}
	leaf.setValue(key, leaf.getValue(key).MergeFrom(value))
	return true
}

func (s *Store) Keys() []string {
	defer s.ops.Track("keys")()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keysLocked()
}

func (s *Store) Rename(from, to string) bool {
	defer s.ops.Track("rename")()
	s.mu.Lock()
	defer s.mu.Unlock()

	leaf := getLeaf(s.root, from)
	if !leaf.isKeyExist(from) {
		return false
	}
	if from == to {
		return true
	}

	if !s.setLocked(to, leaf.getValue(from), s.ttlLocked(from)) {
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
	return s.findLocked(value)
}

func (s *Store) ShowAll() []record.Record {
	defer s.ops.Track("showall")()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.showAllLocked()
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
