package store

import (
	"os"

	"github.com/keyplex/keyplex/lib/codec"
	"github.com/keyplex/keyplex/lib/logging"
	"github.com/keyplex/keyplex/lib/record"
)

// LoadFile opens path and feeds every successfully decoded
// key/Record pair to insert, stopping at the first line that fails to
// decode. It returns the number of lines successfully decoded (which
// matches Upload's contract even when insert itself rejects a
// duplicate key - a rejected-but-parsed line still counts). It
// returns 0 if path cannot be opened.
//
// Callers are expected to call this from within their own lock,
// passing an insert function that performs the locked equivalent of
// Set directly (not the public, lock-acquiring Set) - see spec.md
// section 9's note on re-entrant locking.
func LoadFile(path string, log *logging.Logger, insert func(key string, value record.Record)) int {
	f, err := os.Open(path)
	if err != nil {
		if log != nil {
			log.Warnf("upload: cannot open %q: %v", path, err)
		}
		return 0
	}
	defer f.Close()

	dec := codec.NewDecoder(f)
	count := 0
	for {
		key, rec, ok, err := dec.Next()
		if err != nil {
			if log != nil {
				log.Debugf("upload: stopping at line %d: %v", count+1, err)
			}
			break
		}
		if !ok {
			break
		}
		insert(key, rec)
		count++
	}
	return count
}

// DumpFile creates path and writes one line per key in keys, via
// get, in the order given. It returns the number of lines written,
// or 0 if path cannot be created.
func DumpFile(path string, log *logging.Logger, keys []string, get func(key string) record.Record) int {
	f, err := os.Create(path)
	if err != nil {
		if log != nil {
			log.Warnf("export: cannot create %q: %v", path, err)
		}
		return 0
	}
	defer f.Close()

	enc := codec.NewEncoder(f)
	count := 0
	for _, key := range keys {
		if err := enc.Encode(key, get(key)); err != nil {
			if log != nil {
				log.Errorf("export: write failed after %d lines: %v", count, err)
			}
			break
		}
		count++
	}
	if err := enc.Flush(); err != nil && log != nil {
		log.Errorf("export: flush failed: %v", err)
	}
	return count
}
