package record

// Wildcard is the sentinel field value meaning "match anything" under
// Matches, and "leave unchanged" under MergeFrom.
const Wildcard = "-"

// Record is the fixed-schema value every backend stores under a key.
type Record struct {
	LastName  string
	FirstName string
	Birthday  string
	City      string
	Coins     string
}

// Matches reports whether r equals query under wildcard equality: for
// every field, either the two values are identical, or query's field
// is the Wildcard sentinel. The comparison is asymmetric - a Wildcard
// field in r (the stored record) does NOT match everything, only a
// Wildcard field in query does.
func (r Record) Matches(query Record) bool {
	return fieldMatches(r.LastName, query.LastName) &&
		fieldMatches(r.FirstName, query.FirstName) &&
		fieldMatches(r.Birthday, query.Birthday) &&
		fieldMatches(r.City, query.City) &&
		fieldMatches(r.Coins, query.Coins)
}

func fieldMatches(stored, query string) bool {
	return query == Wildcard || stored == query
}

// MergeFrom returns a copy of r with every field of update applied,
// except fields of update equal to the Wildcard sentinel, which leave
// the corresponding field of r unchanged.
func (r Record) MergeFrom(update Record) Record {
	return Record{
		LastName:  mergeField(r.LastName, update.LastName),
		FirstName: mergeField(r.FirstName, update.FirstName),
		Birthday:  mergeField(r.Birthday, update.Birthday),
		City:      mergeField(r.City, update.City),
		Coins:     mergeField(r.Coins, update.Coins),
	}
}

func mergeField(current, update string) string {
	if update == Wildcard {
		return current
	}
	return update
}
