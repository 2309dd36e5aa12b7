// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package opentime

// TimeTransform is an affine mapping between time coordinate systems:
// scale first, then offset, then an optional rescale to a target
// rate. A zero Rate leaves the input rate unchanged.
type TimeTransform struct {
	offset RationalTime
	scale  float64
	rate   float64
}

// NewTimeTransform constructs a transform. Pass scale 1 and rate 0
// for a pure offset.
func NewTimeTransform(offset RationalTime, scale, rate float64) TimeTransform {
	return TimeTransform{offset: offset, scale: scale, rate: rate}
}

// IdentityTransform returns the transform that maps every time to
// itself.
func IdentityTransform() TimeTransform {
	return TimeTransform{scale: 1}
}

// Offset returns the additive component.
func (x TimeTransform) Offset() RationalTime { return x.offset }

// Scale returns the multiplicative component.
func (x TimeTransform) Scale() float64 { return x.scale }

// Rate returns the target rate, 0 meaning "keep the input rate".
func (x TimeTransform) Rate() float64 { return x.rate }

// AppliedToTime maps an instant through the transform.
func (x TimeTransform) AppliedToTime(t RationalTime) RationalTime {
	result := RationalTime{value: t.value * x.scale, rate: t.rate}.Add(x.offset)
	if x.rate > 0 {
		return result.RescaledTo(x.rate)
	}
	return result
}

// AppliedToRange maps a range through the transform: the start moves
// and the duration scales.
func (x TimeTransform) AppliedToRange(r TimeRange) TimeRange {
	return TimeRange{
		startTime: x.AppliedToTime(r.startTime),
		duration:  RationalTime{value: r.duration.value * x.scale, rate: r.duration.rate},
	}
}

// AppliedToTransform composes two transforms: offsets add, scales
// multiply. The receiver's target rate wins when set.
func (x TimeTransform) AppliedToTransform(other TimeTransform) TimeTransform {
	rate := x.rate
	if rate == 0 {
		rate = other.rate
	}
	return TimeTransform{
		offset: x.offset.Add(other.offset),
		scale:  x.scale * other.scale,
		rate:   rate,
	}
}

// Equal reports whether two transforms have identical components.
func (x TimeTransform) Equal(other TimeTransform) bool {
	return x.offset == other.offset && x.scale == other.scale && x.rate == other.rate
}
