// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package opentime

import "fmt"

// TimeRange is a half-open time interval [start, start+duration). A
// range contains its start time and excludes its end time, so two
// abutting ranges share a boundary sample count without sharing any
// sample.
//
// TimeRange is an immutable value type. The zero value is an empty
// range at the zero (unset) time.
type TimeRange struct {
	startTime RationalTime
	duration  RationalTime
}

// NewTimeRange constructs a range from a start time and a duration.
// A negative duration produces a range no sample is inside of; most
// callers should reject it before constructing.
func NewTimeRange(startTime, duration RationalTime) TimeRange {
	return TimeRange{startTime: startTime, duration: duration}
}

// RangeFromStartEndTime constructs the range [start, endExclusive).
func RangeFromStartEndTime(start, endExclusive RationalTime) TimeRange {
	return TimeRange{startTime: start, duration: endExclusive.Sub(start)}
}

// RangeFromStartEndTimeInclusive constructs the range whose last
// addressable sample is endInclusive.
func RangeFromStartEndTimeInclusive(start, endInclusive RationalTime) TimeRange {
	oneSample := RationalTime{value: 1, rate: endInclusive.rate}
	return TimeRange{startTime: start, duration: endInclusive.Add(oneSample).Sub(start)}
}

// StartTime returns the start of the range.
func (r TimeRange) StartTime() RationalTime { return r.startTime }

// Duration returns the length of the range.
func (r TimeRange) Duration() RationalTime { return r.duration }

// EndTimeExclusive returns start + duration: the first instant after
// the range. For interval arithmetic this is the end to use.
func (r TimeRange) EndTimeExclusive() RationalTime {
	return r.startTime.Add(r.duration)
}

// EndTimeInclusive returns the last sample addressable inside the
// range, in the duration's rate. A range shorter than one sample
// collapses to its start time. A fractional-frame duration rounds the
// end down to the enclosing whole frame.
func (r TimeRange) EndTimeInclusive() RationalTime {
	endExclusive := r.EndTimeExclusive()
	if r.duration.value <= 1 {
		return r.startTime
	}
	if r.duration.value != float64(int64(r.duration.value)) {
		return endExclusive.Floor()
	}
	return endExclusive.Sub(RationalTime{value: 1, rate: r.duration.rate})
}

// Equal reports whether both ranges cover the same interval,
// comparing across rates.
func (r TimeRange) Equal(other TimeRange) bool {
	return r.startTime.Equal(other.startTime) && r.duration.Equal(other.duration)
}

// Contains reports whether the instant lies inside the half-open
// range: start <= t < end.
func (r TimeRange) Contains(t RationalTime) bool {
	return !t.Before(r.startTime) && t.Before(r.EndTimeExclusive())
}

// ContainsRange reports whether other lies entirely inside r.
// Touching endpoints count as inside.
func (r TimeRange) ContainsRange(other TimeRange) bool {
	return !other.startTime.Before(r.startTime) &&
		!r.EndTimeExclusive().Before(other.EndTimeExclusive())
}

// Overlaps reports whether the two ranges share at least one instant.
// Ranges that merely touch at a boundary do not overlap.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.startTime.Before(other.EndTimeExclusive()) &&
		other.startTime.Before(r.EndTimeExclusive())
}

// Meets reports whether r ends exactly where other begins.
func (r TimeRange) Meets(other TimeRange) bool {
	return r.EndTimeExclusive().Equal(other.startTime)
}

// BeforeTime reports whether the entire range is before the instant:
// end <= t.
func (r TimeRange) BeforeTime(t RationalTime) bool {
	return !t.Before(r.EndTimeExclusive())
}

// ExtendedBy returns the smallest range containing both r and other.
func (r TimeRange) ExtendedBy(other TimeRange) TimeRange {
	start := r.startTime
	if other.startTime.Before(start) {
		start = other.startTime
	}
	end := r.EndTimeExclusive()
	if end.Before(other.EndTimeExclusive()) {
		end = other.EndTimeExclusive()
	}
	return RangeFromStartEndTime(start, end)
}

// DurationExtendedBy returns the range lengthened by the given
// duration, keeping the start.
func (r TimeRange) DurationExtendedBy(d RationalTime) TimeRange {
	return TimeRange{startTime: r.startTime, duration: r.duration.Add(d)}
}

// Clamp limits an instant to the addressable samples of the range
// [start, end-inclusive].
func (r TimeRange) Clamp(t RationalTime) RationalTime {
	if t.Before(r.startTime) {
		return r.startTime
	}
	if endInclusive := r.EndTimeInclusive(); endInclusive.Before(t) {
		return endInclusive
	}
	return t
}

// ClampRange limits other to the bounds of r. When the two ranges are
// disjoint the result is an empty range at the nearer edge of r.
func (r TimeRange) ClampRange(other TimeRange) TimeRange {
	start := other.startTime
	if start.Before(r.startTime) {
		start = r.startTime
	}
	end := other.EndTimeExclusive()
	if r.EndTimeExclusive().Before(end) {
		end = r.EndTimeExclusive()
	}
	if end.Before(start) {
		end = start
	}
	return RangeFromStartEndTime(start, end)
}

// Intersection returns the shared span of the two ranges, and false
// when they do not overlap.
func (r TimeRange) Intersection(other TimeRange) (TimeRange, bool) {
	if !r.Overlaps(other) {
		return TimeRange{}, false
	}
	return r.ClampRange(other), true
}

// String returns the interval form "[start, end)".
func (r TimeRange) String() string {
	return fmt.Sprintf("[%s, %s)", r.startTime, r.EndTimeExclusive())
}
