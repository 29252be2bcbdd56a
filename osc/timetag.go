package osc

import (
	"time"
)

const secondsFrom1900To1970 = 2208988800

// TimetagImmediate is the special time tag value of 63 zero bits followed
// by a one, meaning "immediately".
const TimetagImmediate = Timetag(1)

// Timetag represents an OSC Time Tag.
// An OSC Time Tag is defined as follows:
// Time tags are represented by a 64 bit fixed point number. The first 32
// bits specify the number of seconds since midnight on January 1, 1900,
// and the last 32 bits specify fractional parts of a second to a
// precision of about 200 picoseconds. This is the representation used by
// Internet NTP timestamps.
//
// Bundles carry a time tag on the wire but this implementation never
// schedules by it: bundle contents are dispatched immediately and the tag
// is only exposed to the caller.
type Timetag uint64

// NewTimetagFromTime returns a new OSC time tag from a time.Time.
func NewTimetagFromTime(t time.Time) Timetag {
	return Timetag(uint64((secondsFrom1900To1970+t.Unix())<<32) + uint64(t.Nanosecond()))
}

// Time returns the time.
func (t Timetag) Time() time.Time {
	return time.Unix(int64((t>>32)-secondsFrom1900To1970), int64(t&0xffffffff))
}

// SecondsSinceEpoch returns the first 32 bits of the time tag, the number
// of seconds since midnight 1900.
func (t Timetag) SecondsSinceEpoch() uint32 {
	return uint32(t >> 32)
}

// FractionalSecond returns the last 32 bits of the time tag, the
// fractional part of a second.
func (t Timetag) FractionalSecond() uint32 {
	return uint32(t)
}
