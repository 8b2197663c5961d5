// Package wsptime provides the two time helpers spec.md section 4.7
// calls for: wall-clock now(), truncated to u32 seconds, and floor(t,
// interval).
package wsptime

import "time"

// Now returns wall-clock seconds since the epoch, truncated to u32.
func Now() uint32 {
	return uint32(time.Now().Unix())
}

// Floor returns the largest multiple of interval not exceeding t.
// Floor(t, interval) is always <= t and t - Floor(t, interval) < interval.
func Floor(t, interval uint32) uint32 {
	if interval == 0 {
		return t
	}

	return t - (t % interval)
}
