// Package rbtree implements store.Store as a red-black tree keyed on
// string keys, grounded directly on the algorithm in
// self_balancing_binary_search_tree.cc: BST insertion followed by
// uncle-color/rotation fixup on the way up, and BST deletion via
// in-order successor followed by sibling-color fixup before a leaf is
// actually unlinked.
//
// Nodes own their children and hold a non-owning pointer back to
// their parent; Go's garbage collector handles the reference cycle
// this creates without any special arena or weak-pointer machinery.
package rbtree
