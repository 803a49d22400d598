// Package record defines the fixed-schema value type stored by every
// backend in this repository, along with its wildcard-aware equality
// and merge semantics.
//
// A Record is five ordered string fields. The sentinel "-" in any
// field of a Record used as a query argument (to Find) or an update
// argument (to Update) means "match anything" / "leave unchanged"
// respectively. The sentinel has no special meaning in a Record that
// is itself stored - it is only interpreted on the right-hand side of
// a comparison or merge.
package record
