package util

import (
	"time"
)

// Epoch is the reference time of Remote ID 32 bit timestamps
var Epoch = time.Date(2019, time.January, 1, 0, 0, 0, 0, time.UTC)

// Clock returns the current time; swapped out in tests
type Clock func() time.Time

// Now returns the current time, or time.Now for a nil clock
func (c Clock) Now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// AuthTimestamp returns whole seconds elapsed since Epoch, 0 for earlier times
func AuthTimestamp(t time.Time) uint32 {
	d := t.Sub(Epoch)
	if d < 0 {
		return 0
	}
	return uint32(d / time.Second)
}

// SecondsAfterHour returns the fractional seconds elapsed since the start of the UTC hour of t
func SecondsAfterHour(t time.Time) float32 {
	t = t.UTC()
	hour := t.Truncate(time.Hour)
	return float32(t.Sub(hour).Seconds())
}
