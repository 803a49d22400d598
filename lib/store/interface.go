package store

import "github.com/keyplex/keyplex/lib/record"

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// Store is the contract shared by every backend. Every write
// operation reports success with a plain bool; every read operation
// returns its value (or the zero Record) directly. Nothing here
// returns an error - see the package doc comment for why.
type Store interface {
	// Set inserts value under key if key is not already present. If
	// lifetime is >= 0, a background deletion of key is scheduled to
	// run lifetime seconds from now, unless cancelled first by
	// Delete or Rename. lifetime < 0 means no expiration.
	Set(key string, value record.Record, lifetime int) (inserted bool)

	// Get returns the record stored under key, or the zero Record if
	// key is absent.
	Get(key string) record.Record

	// Exists reports whether key is present.
	Exists(key string) bool

	// Delete removes key, cancelling any pending TTL task for it
	// first. It reports whether a removal actually occurred.
	Delete(key string) (removed bool)

	// Update merges value into the record stored under key (fields
	// of value equal to record.Wildcard leave the corresponding
	// stored field unchanged). It reports false without effect if
	// key is absent.
	Update(key string, value record.Record) (updated bool)

	// Keys returns every key currently stored. Tree backends return
	// keys in ascending lexicographic order; HashStore returns them
	// in bucket-iteration order, which is unspecified but stable
	// within one process lifetime.
	Keys() []string

	// Rename moves the value and remaining TTL stored under from to
	// to. It returns false if from is absent or if to already exists
	// (and differs from from); it returns true without effect if
	// from == to and from exists.
	Rename(from, to string) (renamed bool)

	// Ttl returns the whole seconds remaining before key's scheduled
	// deletion, 0 if a deletion is scheduled but already due, or -1
	// if key has no scheduled deletion (including if key is absent).
	Ttl(key string) int

	// Find returns every key whose stored record matches value under
	// wildcard equality (record.Record.Matches), in the same order
	// Keys() would return them.
	Find(value record.Record) []string

	// ShowAll returns every stored record, aligned index-for-index
	// with Keys().
	ShowAll() []record.Record

	// Upload reads key/record pairs from the text file at path via
	// the codec package and Sets each one (with no TTL). It stops at
	// the first line that fails to parse and returns the count of
	// records successfully parsed before that point (a parsed line
	// whose key already exists is not stored but still counts). It
	// returns 0 if path cannot be opened.
	Upload(path string) int

	// Export writes every stored key/record pair to the text file at
	// path via the codec package, in Keys() order, and returns the
	// number of lines written. It returns 0 if path cannot be
	// created.
	Export(path string) int
}
