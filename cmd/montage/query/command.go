// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

// Package query implements the time and name lookups over a document:
// "montage find" (filtered child search) and "montage at" (what plays
// at an instant).
package query

import (
	"github.com/montage-foundation/montage/lib/opentime"
	"github.com/montage-foundation/montage/lib/timeline"
)

// kindName returns the lowercase kind word for a node, as printed in
// result rows.
func kindName(node timeline.Composable) string {
	switch node.(type) {
	case *timeline.Clip:
		return "clip"
	case *timeline.Gap:
		return "gap"
	case *timeline.Track:
		return "track"
	case *timeline.Stack:
		return "stack"
	}
	return "item"
}

// formatTime renders a time as a timecode when its rate allows,
// falling back to the rational form.
func formatTime(t opentime.RationalTime) string {
	if timecode, err := t.Timecode(); err == nil {
		return timecode
	}
	return t.String()
}

// documentRate is the frame rate command-line times parse at: the
// rate of the global start time when set, else the rate of the
// timeline's duration, else 24.
func documentRate(t *timeline.Timeline) float64 {
	if start, ok := t.GlobalStartTime(); ok && start.Rate() > 0 {
		return start.Rate()
	}
	if duration, err := t.Duration(); err == nil && duration.Rate() > 0 {
		return duration.Rate()
	}
	return 24
}
