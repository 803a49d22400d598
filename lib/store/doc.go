// Package store defines the operational contract shared by every
// backend in this repository - HashStore, RBTree and BPlusTree - and
// nothing else.
//
// It plays the role the teacher codebase's lib/store package plays (a
// pluggable-backend abstraction with one interface and several
// concrete implementations), but the contract itself is dictated by
// the specification rather than by dKV's distributed-vs-local split:
// every method here returns a plain bool/int/Record, never an error,
// because no failure mode of this store is exceptional - duplicate
// keys, missing keys, and I/O failures are all everyday outcomes
// reported through the return value rather than propagated as
// errors. Internal failures that really should never happen (a
// corrupted tree invariant, for instance) are asserted with panic,
// not returned, matching spec.md section 7's error taxonomy.
package store
