package bplustree

// merge absorbs right's keys/values into l, relinks the leaf chain
// around right, and removes the separator/child pair that used to
// point at right from l's parent.
func (l *leafNode) merge(rightNode bpNode) {
	right := rightNode.(*leafNode)
	parent := l.par

	idx := parent.indexOfChild(right)
	parent.keys = append(parent.keys[:idx-1], parent.keys[idx:]...)
	parent.children = append(parent.children[:idx], parent.children[idx+1:]...)

	l.keys = append(l.keys, right.keys...)
	l.values = append(l.values, right.values...)
	l.next = right.next
}

// merge absorbs right's keys and children into n, pulling down the
// separator between them from n's parent, then drops that
// separator/child pair from the parent.
func (n *internalNode) merge(rightNode bpNode) {
	right := rightNode.(*internalNode)
	parent := n.par

	idx := parent.indexOfChild(right)
	separator := parent.keys[idx-1]

	n.keys = append(n.keys, separator)
	n.keys = append(n.keys, right.keys...)
	n.children = append(n.children, right.children...)
	for _, child := range n.children {
		child.setParent(n)
	}

	parent.deleteKeyAndChild(separator, true)
}

// share takes one key/value from the donor sibling from - the last
// element if from is the left sibling, the first if from is the
// right - and moves it onto l, updating the parent separator between
// them to the new first key of whichever of the two leaves is on the
// right.
func (l *leafNode) share(fromNode, leftNode bpNode) {
	from := fromNode.(*leafNode)
	left := leftNode.(*leafNode)
	parent := l.par

	fromIsLeft := from == left
	var key string
	if fromIsLeft {
		key = from.keys[len(from.keys)-1]
	} else {
		key = from.keys[0]
	}

	var lLeft, lRight *leafNode
	if fromIsLeft {
		lLeft, lRight = from, l
	} else {
		lLeft, lRight = l, from
	}

	l.insert(key, from.getValue(key))
	from.delete(key)

	idx := parent.indexOfChild(lLeft)
	parent.keys[idx] = lRight.keys[0]
}

// share takes one key/child from the donor sibling from, rotating the
// parent separator between n and from through n: the moved key is
// replaced in the parent by the donor's former edge key.
func (n *internalNode) share(fromNode, leftNode bpNode) {
	from := fromNode.(*internalNode)
	left := leftNode.(*internalNode)
	parent := n.par

	fromIsLeft := from == left
	var key string
	var child bpNode
	if fromIsLeft {
		key = from.keys[len(from.keys)-1]
		child = from.children[len(from.children)-1]
	} else {
		key = from.keys[0]
		child = from.children[0]
	}

	lLeft := n
	if fromIsLeft {
		lLeft = from
	}

	idx := parent.indexOfChild(lLeft)
	n.insert(parent.keys[idx], child, !fromIsLeft)
	parent.keys[idx] = key
	from.deleteKeyAndChild(key, fromIsLeft)
}
