package bplustree

import "github.com/keyplex/keyplex/lib/record"

// split halves l's keys/values at the midpoint; the upper half moves
// into a new leaf spliced into the next chain immediately after l.
func (l *leafNode) split() bpNode {
	mid := len(l.keys) / 2

	right := &leafNode{
		keys:   append([]string(nil), l.keys[mid:]...),
		values: append([]record.Record(nil), l.values[mid:]...),
		next:   l.next,
	}

	l.keys = append([]string(nil), l.keys[:mid]...)
	l.values = append([]record.Record(nil), l.values[:mid]...)
	l.next = right

	return right
}

// split halves n's keys at the midpoint and its children at
// mid+1. The middle key (the old n.keys[mid]) is left as keys[0] of
// the returned node; the caller removes it from there and promotes it
// as the separator between the two halves.
func (n *internalNode) split() bpNode {
	mid := len(n.keys) / 2

	right := &internalNode{
		keys:     append([]string(nil), n.keys[mid:]...),
		children: append([]bpNode(nil), n.children[mid+1:]...),
	}

	n.keys = append([]string(nil), n.keys[:mid]...)
	n.children = append([]bpNode(nil), n.children[:mid+1]...)

	for _, child := range right.children {
		child.setParent(right)
	}

	return right
}
