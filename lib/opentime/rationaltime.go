// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package opentime

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RationalTime is a count of samples at a sampling rate: value 86400
// at rate 24 is one hour of 24 fps picture. It is an immutable value
// type; arithmetic returns new values.
//
// The zero value has rate 0 and is not valid; use IsValid to check.
// Operations on invalid times follow floating-point semantics (NaN
// and infinity propagate) rather than panicking.
type RationalTime struct {
	value float64
	rate  float64
}

// NewRationalTime constructs a RationalTime from a sample count and a
// rate in samples per second.
func NewRationalTime(value, rate float64) RationalTime {
	return RationalTime{value: value, rate: rate}
}

// FromSeconds converts a duration in seconds to a sample count at the
// given rate.
func FromSeconds(seconds, rate float64) RationalTime {
	return RationalTime{value: seconds * rate, rate: rate}
}

// FromFrames constructs a whole-frame time at the given rate.
func FromFrames(frame int64, rate float64) RationalTime {
	return RationalTime{value: float64(frame), rate: rate}
}

// Value returns the sample count.
func (t RationalTime) Value() float64 { return t.value }

// Rate returns the sampling rate in samples per second.
func (t RationalTime) Rate() float64 { return t.rate }

// IsValid reports whether the time has a positive, finite rate and a
// finite value.
func (t RationalTime) IsValid() bool {
	return t.rate > 0 &&
		!math.IsInf(t.rate, 0) &&
		!math.IsNaN(t.value) && !math.IsInf(t.value, 0)
}

// IsZero reports whether t is the zero value (unset time). A valid
// time of zero samples at a real rate is not zero in this sense.
func (t RationalTime) IsZero() bool { return t.value == 0 && t.rate == 0 }

// ToSeconds returns the time as seconds.
func (t RationalTime) ToSeconds() float64 { return t.value / t.rate }

// ToFrames returns the sample count truncated toward zero. Callers
// that need a specific rounding direction should snap with Floor,
// Ceil, or Round first.
func (t RationalTime) ToFrames() int64 { return int64(t.value) }

// RescaledTo returns the same instant expressed at a different rate.
func (t RationalTime) RescaledTo(rate float64) RationalTime {
	return RationalTime{value: t.value * rate / t.rate, rate: rate}
}

// ValueRescaledTo returns the sample count this time would have at
// the given rate.
func (t RationalTime) ValueRescaledTo(rate float64) float64 {
	if rate == t.rate {
		return t.value
	}
	return t.value * rate / t.rate
}

// Add returns t + other. The result carries the greater of the two
// rates so the finer-grained operand loses no precision.
func (t RationalTime) Add(other RationalTime) RationalTime {
	if t.rate < other.rate {
		return RationalTime{value: t.value*(other.rate/t.rate) + other.value, rate: other.rate}
	}
	return RationalTime{value: other.value*(t.rate/other.rate) + t.value, rate: t.rate}
}

// Sub returns t - other, at the greater of the two rates.
func (t RationalTime) Sub(other RationalTime) RationalTime {
	return t.Add(other.Neg())
}

// Neg returns the negated time.
func (t RationalTime) Neg() RationalTime {
	return RationalTime{value: -t.value, rate: t.rate}
}

// Cmp compares two times as instants, returning -1 if t is earlier
// than other, 0 if they are the same instant, and +1 if t is later.
func (t RationalTime) Cmp(other RationalTime) int {
	difference := t.value - other.ValueRescaledTo(t.rate)
	switch {
	case difference < 0:
		return -1
	case difference > 0:
		return 1
	default:
		return 0
	}
}

// Equal reports whether the two times are the same instant,
// regardless of rate.
func (t RationalTime) Equal(other RationalTime) bool { return t.Cmp(other) == 0 }

// Before reports whether t is strictly earlier than other.
func (t RationalTime) Before(other RationalTime) bool { return t.Cmp(other) < 0 }

// AlmostEqual reports whether the two instants are within delta
// seconds of each other.
func (t RationalTime) AlmostEqual(other RationalTime, delta float64) bool {
	return math.Abs(t.ToSeconds()-other.ToSeconds()) <= delta
}

// Floor snaps the sample count down to a whole frame.
func (t RationalTime) Floor() RationalTime {
	return RationalTime{value: math.Floor(t.value), rate: t.rate}
}

// Ceil snaps the sample count up to a whole frame.
func (t RationalTime) Ceil() RationalTime {
	return RationalTime{value: math.Ceil(t.value), rate: t.rate}
}

// Round snaps the sample count to the nearest whole frame, halves
// away from zero.
func (t RationalTime) Round() RationalTime {
	return RationalTime{value: math.Round(t.value), rate: t.rate}
}

// String returns the text form "value/rate", e.g. "86400/24".
func (t RationalTime) String() string {
	return formatFloat(t.value) + "/" + formatFloat(t.rate)
}

// MarshalText implements encoding.TextMarshaler using the
// "value/rate" form.
func (t RationalTime) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty input
// produces the zero (unset) time.
func (t *RationalTime) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*t = RationalTime{}
		return nil
	}
	parsed, err := ParseRationalTime(string(data))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseRationalTime parses the "value/rate" text form.
func ParseRationalTime(raw string) (RationalTime, error) {
	valueText, rateText, found := strings.Cut(raw, "/")
	if !found {
		return RationalTime{}, fmt.Errorf("rational time %q: missing '/' separator", raw)
	}
	value, err := strconv.ParseFloat(valueText, 64)
	if err != nil {
		return RationalTime{}, fmt.Errorf("rational time %q: bad value: %w", raw, err)
	}
	rate, err := strconv.ParseFloat(rateText, 64)
	if err != nil {
		return RationalTime{}, fmt.Errorf("rational time %q: bad rate: %w", raw, err)
	}
	return RationalTime{value: value, rate: rate}, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
