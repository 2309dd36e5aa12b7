// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

// Package opentime provides rational time arithmetic for editorial
// timelines.
//
// Media timing is rational: a frame is one sample at a rate, and
// mixing rates (24 fps picture against 48 kHz audio, say) must not
// accumulate floating-point drift at cut points. A [RationalTime] is
// a value/rate pair; arithmetic between two times carries the result
// at the finer of the two rates so no precision is discarded.
//
// A [TimeRange] is a half-open interval [start, start+duration): a
// range contains its start and excludes its end, so abutting ranges
// tile a track with no overlap and no gap. End-of-range queries come
// in two forms: EndTimeExclusive for interval math and
// EndTimeInclusive for the last addressable sample.
//
// # Serialization
//
// RationalTime marshals as the text form "value/rate" (for example
// "86400/24"), which embeds cleanly in JSON documents, CBOR (as a
// text string), and CLI arguments. TimeRange and TimeTransform are
// compound values and are serialized field-wise by their containing
// document types.
//
// # Timecode
//
// FromTimecode and RationalTime.Timecode convert between sample
// counts and SMPTE timecode strings. Non-drop timecode
// ("HH:MM:SS:FF") is supported for integer and NTSC-family rates;
// drop-frame timecode ("HH:MM:SS;FF") for 29.97 and 59.94.
package opentime
