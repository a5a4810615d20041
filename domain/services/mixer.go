package services

import "github.com/cespare/xxhash/v2"

const goldenGamma uint32 = 0x9e3779b9

// fmix32 is the murmur3 32-bit finalizer
func fmix32(h uint32) uint32 {
	h ^= h >> 16
	h *= 0x85ebca6b
	h ^= h >> 13
	h *= 0xc2b2ae35
	h ^= h >> 16
	return h
}

// Mix32 folds its inputs into a well distributed 32-bit value.
// It is a pure function: no state, no clock, no random source.
func Mix32(parts ...uint32) uint32 {
	h := goldenGamma
	for _, p := range parts {
		h = fmix32(h^p) + goldenGamma
	}
	return fmix32(h)
}

// SeedHash reduces a seed string to 32 bits
func SeedHash(seed string) uint32 {
	v := xxhash.Sum64String(seed)
	return uint32(v) ^ uint32(v>>32)
}
