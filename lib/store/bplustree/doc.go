// Package bplustree implements store.Store as a B+ tree with a
// configurable branching factor, grounded directly on the algorithm
// in b_plus_tree.cc: multi-way leaf/internal nodes, leaf splitting and
// promotion via ShiftLevel, and delete-time rebalancing via
// UpdateTree's share-before-merge policy.
//
// Node polymorphism is expressed as the bpNode interface (isLeaf,
// size, split, merge, share, ...) implemented by *leafNode and
// *internalNode, rather than as a tagged union with a switch over the
// variant. split/merge/share each type-assert their sibling argument
// back to the concrete type (mirroring the C++ original's
// static_pointer_cast<Leaf>/<Internal> casts).
//
// One deviation from the original: GetSiblings locates a node's
// position under its parent by scanning parent.children for pointer
// identity, not by comparing the node's first key against the
// parent's separators. The original's key-comparison approach breaks
// for a node that is the parent's rightmost child; identity scanning
// has no such edge case.
package bplustree
