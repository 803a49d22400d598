// Package config loads the tunables shared by this repository's
// storage backends: the B+ tree branching factor, the hash table
// bucket count, and the TTL scheduler's poll/GC intervals.
//
// Values are read from the environment (prefixed KEYPLEX_) via
// spf13/viper, with an optional .env / .env.local pair loaded first
// via joho/godotenv - the same two-step init sequence used by
// cmd/util/util.go's InitClientConfig in the teacher codebase, minus
// the RPC-client-specific flags that don't apply here.
package config
