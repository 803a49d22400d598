// Package codec implements the line-oriented text format used by
// every backend's Upload and Export operation.
//
// A record line is six whitespace-separated tokens:
//
//	<key> "<last_name>" "<first_name>" <birthday> "<city>" <coins>
//
// last_name, first_name and city are quoted (embedded double quotes
// are not supported, mirroring the C++ original's use of
// std::quoted); birthday and coins are bare tokens. Decode and Encode
// are inverses for any key/Record pair whose quoted fields contain no
// double quotes or whitespace.
package codec
