// Package hashstore implements store.Store as a fixed-capacity bucketed
// hash table with separate chaining, grounded on the teacher's
// lib/db/engines/maple sharding idea but without maple's sharded
// concurrent map - this backend is small enough that a single
// re-entrant-by-convention mutex over a plain slice-of-slices is the
// straightforward implementation, matching the C++ original's
// std::vector<std::list<Node>>.
//
// The hash function is the one the specification pins down exactly:
// sum(key[i] * 31^(len-1-i)) mod capacity. No third-party hash library
// is used here even though the rest of this repository reaches for
// real dependencies freely - the algorithm is fully specified, not a
// design choice this package gets to make.
package hashstore
