package bplustree

import "github.com/keyplex/keyplex/lib/record"

// keysLocked walks the leaf chain from the tree's leftmost leaf,
// concatenating keys in ascending order.
func (s *Store) keysLocked() []string {
	var keys []string
	for leaf := s.list; leaf != nil; leaf = leaf.next {
		keys = append(keys, leaf.keys...)
	}
	return keys
}

// showAllLocked walks the leaf chain, concatenating values in the
// same order keysLocked would return the corresponding keys.
func (s *Store) showAllLocked() []record.Record {
	var values []record.Record
	for leaf := s.list; leaf != nil; leaf = leaf.next {
		values = append(values, leaf.values...)
	}
	return values
}

// findLocked walks the leaf chain, keeping keys whose value matches
// query under wildcard equality.
func (s *Store) findLocked(query record.Record) []string {
	var keys []string
	for leaf := s.list; leaf != nil; leaf = leaf.next {
		for i, key := range leaf.keys {
			if leaf.values[i].Matches(query) {
				keys = append(keys, key)
			}
		}
	}
	return keys
}
