// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/montage-foundation/montage/lib/opentime"
)

// ParseTime interprets a command-line time argument at the given
// frame rate. Four forms are accepted:
//
//   - "137/24": rational value/rate (the embedded rate wins)
//   - "00:00:05:12": SMPTE timecode at rate
//   - "3.5s": seconds (any decimal number is treated as seconds)
//   - "86": whole frames at rate
func ParseTime(raw string, rate float64) (opentime.RationalTime, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return opentime.RationalTime{}, fmt.Errorf("empty time argument")
	}

	if strings.Contains(raw, "/") {
		return opentime.ParseRationalTime(raw)
	}
	if strings.Contains(raw, ":") {
		return opentime.FromTimecode(raw, rate)
	}
	if seconds, ok := strings.CutSuffix(raw, "s"); ok {
		value, err := strconv.ParseFloat(seconds, 64)
		if err != nil {
			return opentime.RationalTime{}, fmt.Errorf("time %q: bad seconds value: %w", raw, err)
		}
		return opentime.FromSeconds(value, rate), nil
	}
	if strings.Contains(raw, ".") {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return opentime.RationalTime{}, fmt.Errorf("time %q: bad value: %w", raw, err)
		}
		return opentime.FromSeconds(value, rate), nil
	}

	frame, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return opentime.RationalTime{}, fmt.Errorf("time %q: expected frames, seconds, timecode, or value/rate", raw)
	}
	return opentime.FromFrames(frame, rate), nil
}

// ParseRange interprets a command-line range argument "start..end"
// (end exclusive), where both sides follow the [ParseTime] forms.
func ParseRange(raw string, rate float64) (opentime.TimeRange, error) {
	startText, endText, found := strings.Cut(raw, "..")
	if !found {
		return opentime.TimeRange{}, fmt.Errorf("range %q: expected start..end", raw)
	}
	start, err := ParseTime(startText, rate)
	if err != nil {
		return opentime.TimeRange{}, fmt.Errorf("range %q: %w", raw, err)
	}
	end, err := ParseTime(endText, rate)
	if err != nil {
		return opentime.TimeRange{}, fmt.Errorf("range %q: %w", raw, err)
	}
	if !start.Before(end) {
		return opentime.TimeRange{}, fmt.Errorf("range %q: start is not before end", raw)
	}
	return opentime.RangeFromStartEndTime(start, end), nil
}
