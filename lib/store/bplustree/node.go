package bplustree

import (
	"sort"

	"github.com/keyplex/keyplex/lib/record"
)

// bpNode is implemented by *leafNode and *internalNode. Methods that
// operate on a sibling (split/merge/share) type-assert their argument
// back to the concrete variant, the same role the C++ original's
// CastNode<Leaf>/CastNode<Internal> plays.
type bpNode interface {
	isLeaf() bool
	size() int
	getParent() *internalNode
	setParent(p *internalNode)
	split() bpNode
	merge(right bpNode)
	share(from, left bpNode)
}

type leafNode struct {
	keys   []string
	values []record.Record
	next   *leafNode
	par    *internalNode
}

type internalNode struct {
	keys     []string
	children []bpNode
	par      *internalNode
}

func (l *leafNode) isLeaf() bool               { return true }
func (l *leafNode) size() int                  { return len(l.keys) }
func (l *leafNode) getParent() *internalNode   { return l.par }
func (l *leafNode) setParent(p *internalNode)  { l.par = p }

func (n *internalNode) isLeaf() bool              { return false }
func (n *internalNode) size() int                 { return len(n.keys) }
func (n *internalNode) getParent() *internalNode  { return n.par }
func (n *internalNode) setParent(p *internalNode) { n.par = p }

func (l *leafNode) indexOfKey(key string) int {
	for i, k := range l.keys {
		if k == key {
			return i
		}
	}
	return -1
}

func (l *leafNode) isKeyExist(key string) bool {
	return l.indexOfKey(key) >= 0
}

func (l *leafNode) getValue(key string) record.Record {
	return l.values[l.indexOfKey(key)]
}

func (l *leafNode) setValue(key string, value record.Record) {
	l.values[l.indexOfKey(key)] = value
}

// insert places key/value at the position that keeps keys ascending.
// It reports false without effect if key is already present.
func (l *leafNode) insert(key string, value record.Record) bool {
	if l.isKeyExist(key) {
		return false
	}
	pos := sort.Search(len(l.keys), func(i int) bool { return key < l.keys[i] })
	l.keys = insertString(l.keys, pos, key)
	l.values = insertRecord(l.values, pos, value)
	return true
}

func (l *leafNode) delete(key string) {
	i := l.indexOfKey(key)
	l.keys = append(l.keys[:i], l.keys[i+1:]...)
	l.values = append(l.values[:i], l.values[i+1:]...)
}

func (n *internalNode) indexOfChild(child bpNode) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

// insert places key/node into this internal node at the position that
// keeps keys ascending. node is placed immediately after key's slot if
// afterKey is true, immediately before it otherwise.
func (n *internalNode) insert(key string, node bpNode, afterKey bool) {
	pos := sort.Search(len(n.keys), func(i int) bool { return key < n.keys[i] })
	node.setParent(n)
	childIdx := pos
	if afterKey {
		childIdx++
	}
	n.children = insertNode(n.children, childIdx, node)
	n.keys = insertString(n.keys, pos, key)
}

// deleteKeyAndChild removes key and, if afterKey, the child
// immediately following it; otherwise the child immediately preceding
// it.
func (n *internalNode) deleteKeyAndChild(key string, afterKey bool) {
	pos := sort.Search(len(n.keys), func(i int) bool { return n.keys[i] >= key })
	childIdx := pos
	if afterKey {
		childIdx++
	}
	n.children = append(n.children[:childIdx], n.children[childIdx+1:]...)
	n.keys = append(n.keys[:pos], n.keys[pos+1:]...)
}

func insertString(s []string, i int, v string) []string {
	s = append(s, "")
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

func insertRecord(s []record.Record, i int, v record.Record) []record.Record {
	s = append(s, record.Record{})
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

func insertNode(s []bpNode, i int, v bpNode) []bpNode {
	s = append(s, nil)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}
