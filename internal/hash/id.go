// Package hash provides the xxHash64 helpers used by the archive format:
// dataset names are addressed by their 64-bit hash, and whole archives carry
// a trailing checksum over the encoded bytes.
package hash

import "github.com/cespare/xxhash/v2"

// ID computes the 64-bit identifier of a dataset name.
func ID(name string) uint64 {
	return xxhash.Sum64String(name)
}

// Checksum computes the integrity checksum of encoded archive bytes.
func Checksum(data []byte) uint64 {
	return xxhash.Sum64(data)
}
