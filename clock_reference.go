package tsdemux

import "time"

// ClockReference represents a clock reference based on a 90 kHz base and a
// 27 MHz extension, the layout used by both PCR/OPCR fields and PES timestamps.
type ClockReference struct {
	Base      int64 // 90 kHz units
	Extension int64 // 27 MHz units
}

// newClockReference creates a new clock reference.
func newClockReference(base, extension int64) *ClockReference {
	return &ClockReference{
		Base:      base,
		Extension: extension,
	}
}

// Duration converts the clock reference into a duration.
func (p ClockReference) Duration() time.Duration {
	return time.Duration(p.Base*1e9/90000) + time.Duration(p.Extension*1000/27)
}

// Time converts the clock reference into a time.
func (p ClockReference) Time() time.Time {
	return time.Unix(0, p.Duration().Nanoseconds())
}
