// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package opentime

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ntscTolerance accepts rates written as 29.97 as well as the exact
// 30000/1001. Anything within this distance of an NTSC nominal rate
// is treated as that rate.
const ntscTolerance = 0.01

// timecodeRate resolves a sampling rate to a whole-frame timecode
// base: the nominal frames-per-second label and the number of frame
// labels dropped per minute (0 for non-drop rates).
func timecodeRate(rate float64) (nominalFPS int64, dropFrames int64, err error) {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, 0, fmt.Errorf("rate %v has no timecode form", rate)
	}
	if rate == math.Trunc(rate) {
		return int64(rate), 0, nil
	}
	// NTSC family: nominal/1.001.
	nominal := math.Round(rate * 1001 / 1000)
	if math.Abs(rate-nominal*1000/1001) <= ntscTolerance {
		switch int64(nominal) {
		case 24:
			return 24, 0, nil
		case 30:
			return 30, 2, nil
		case 60:
			return 60, 4, nil
		}
	}
	return 0, 0, fmt.Errorf("rate %v has no timecode form", rate)
}

// Timecode renders the time as SMPTE timecode at its own rate.
// Integer and NTSC rates are supported; 29.97 and 59.94 render as
// drop-frame ("HH:MM:SS;FF"), other rates as non-drop
// ("HH:MM:SS:FF"). The sample count must be a non-negative whole
// frame.
func (t RationalTime) Timecode() (string, error) {
	nominal, drop, err := timecodeRate(t.rate)
	if err != nil {
		return "", err
	}
	if t.value < 0 {
		return "", fmt.Errorf("negative time %s has no timecode form", t)
	}
	if t.value != math.Trunc(t.value) {
		return "", fmt.Errorf("non-integral frame count %s has no timecode form", t)
	}

	frame := int64(t.value)
	separator := ":"
	if drop > 0 {
		// Convert the real frame count into the labeled frame count
		// by adding back the labels dropped at each minute boundary
		// (except every tenth minute).
		framesPer10Minutes := 10*60*nominal - 9*drop
		framesPerMinute := 60*nominal - drop
		tenMinuteBlocks := frame / framesPer10Minutes
		remainder := frame % framesPer10Minutes
		frame += drop * 9 * tenMinuteBlocks
		if remainder > drop {
			frame += drop * ((remainder - drop) / framesPerMinute)
		}
		separator = ";"
	}

	frames := frame % nominal
	seconds := (frame / nominal) % 60
	minutes := (frame / nominal / 60) % 60
	hours := frame / nominal / 60 / 60
	return fmt.Sprintf("%02d:%02d:%02d%s%02d", hours, minutes, seconds, separator, frames), nil
}

// FromTimecode parses an SMPTE timecode string into a whole-frame
// time at the given rate. "HH:MM:SS:FF" is non-drop; "HH:MM:SS;FF"
// is drop-frame and requires a drop-frame rate (29.97 or 59.94).
func FromTimecode(timecode string, rate float64) (RationalTime, error) {
	nominal, drop, err := timecodeRate(rate)
	if err != nil {
		return RationalTime{}, err
	}

	dropFrame := strings.ContainsRune(timecode, ';')
	normalized := strings.ReplaceAll(timecode, ";", ":")
	parts := strings.Split(normalized, ":")
	if len(parts) != 4 {
		return RationalTime{}, fmt.Errorf("timecode %q: want HH:MM:SS:FF", timecode)
	}
	var fields [4]int64
	for i, part := range parts {
		value, err := strconv.ParseInt(part, 10, 64)
		if err != nil || value < 0 {
			return RationalTime{}, fmt.Errorf("timecode %q: bad field %q", timecode, part)
		}
		fields[i] = value
	}
	hours, minutes, seconds, frames := fields[0], fields[1], fields[2], fields[3]
	if minutes >= 60 || seconds >= 60 {
		return RationalTime{}, fmt.Errorf("timecode %q: minutes and seconds must be below 60", timecode)
	}
	if frames >= nominal {
		return RationalTime{}, fmt.Errorf("timecode %q: frame field %d out of range for %d fps", timecode, frames, nominal)
	}

	if dropFrame {
		if drop == 0 {
			return RationalTime{}, fmt.Errorf("timecode %q: drop-frame separator with non-drop rate %v", timecode, rate)
		}
		// Labels 00..01 (or 00..03 at 59.94) do not exist at the top
		// of any minute that is not a multiple of ten.
		if seconds == 0 && minutes%10 != 0 && frames < drop {
			return RationalTime{}, fmt.Errorf("timecode %q: frame label does not exist at a dropped boundary", timecode)
		}
		totalMinutes := hours*60 + minutes
		labeled := (hours*3600+minutes*60+seconds)*nominal + frames
		dropped := drop * (totalMinutes - totalMinutes/10)
		return RationalTime{value: float64(labeled - dropped), rate: rate}, nil
	}

	frame := (hours*3600+minutes*60+seconds)*nominal + frames
	return RationalTime{value: float64(frame), rate: rate}, nil
}
