package rng

import (
	"encoding/binary"

	"github.com/minio/sha256-simd"

	"github.com/MestreLion/roguestats/pkg/timecache"
)

// TimeSeed returns a seed derived from the current time.
//
// Rogue read the DOS clock through interrupt 0x2C. Seconds since the Unix
// Epoch are a portable substitute, minus the sub-second resolution.
func TimeSeed() int64 {
	return timecache.NowUnix()
}

// PhraseSeed derives a seed from an arbitrary phrase, so that a sequence can
// be replayed by name.
//
// The seed is the first 8 bytes of the SHA-256 digest of phrase, big endian,
// masked to 31 bits.
func PhraseSeed(phrase string) int64 {
	sum := sha256.Sum256([]byte(phrase))
	return int64(binary.BigEndian.Uint64(sum[:8]) & rndMask)
}

// NewFromTime creates a new Generator seeded with TimeSeed.
func NewFromTime() *Generator {
	return New(TimeSeed())
}
