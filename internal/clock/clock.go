// Package clock supplies the coarse wall clock used to seed the key
// generator and to stamp exported metrics.
package clock

import (
	"time"

	"github.com/kpango/fastime"
)

// Now returns the cached wall clock time, refreshed in the
// background by fastime.
func Now() time.Time {
	return fastime.Now()
}

// UnixNow returns current unix time in seconds.
func UnixNow() uint64 {
	return uint64(fastime.UnixNow())
}

// Seed returns the low 32 bits of the current unix time,
// which is what the benchmark RNG is seeded with.
func Seed() uint32 {
	return uint32(UnixNow())
}
