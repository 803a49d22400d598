// Package logging provides the small, leveled, named logger used
// across this repository's packages.
//
// Every package that wants to log creates exactly one named logger at
// package-init or construction time (mirroring the one-logger-per-
// component convention the original teacher codebase used for its
// Dragonboat integration) and writes through it rather than through
// the standard log package directly.
package logging
