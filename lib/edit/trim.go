// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package edit

import (
	"slices"

	"github.com/montage-foundation/montage/lib/document"
	"github.com/montage-foundation/montage/lib/opentime"
	"github.com/montage-foundation/montage/lib/timeline"
)

// TrimTimeline narrows the timeline to r by trimming its track
// stack. r is in the stack's own coordinate space. When a trim is
// already set the new range intersects it, so repeated trims only
// ever narrow; a range disjoint from the current trim is an error
// and leaves the timeline unchanged.
func TrimTimeline(tl *timeline.Timeline, r opentime.TimeRange) error {
	const op = "trim-timeline"
	if tl == nil {
		return invalidArgument(op, "timeline is required")
	}
	if err := validRange(op, r); err != nil {
		return err
	}
	tracks := tl.Tracks()
	if existing, ok := tracks.SourceRange(); ok {
		narrowed, ok := existing.Intersection(r)
		if !ok {
			return invalidArgument(op, "range %s does not intersect the current trim %s", r, existing)
		}
		r = narrowed
	}
	tracks.SetSourceRange(r)
	return nil
}

// TrackTrimmedToRange returns a deep copy of track reduced to trim,
// given in the track's child-layout coordinates. Children wholly
// outside the span are dropped and boundary children have their
// source ranges cut down. The copy carries no track-level trim of
// its own: its children realize the span directly, starting at zero.
// The result is never longer than trim, and is shorter when the
// track runs out of content.
func TrackTrimmedToRange(track *timeline.Track, trim opentime.TimeRange) (*timeline.Track, error) {
	const op = "track-trimmed-to-range"
	if track == nil {
		return nil, invalidArgument(op, "track is required")
	}
	if err := validRange(op, trim); err != nil {
		return nil, err
	}
	trimmed, err := document.Clone(track)
	if err != nil {
		return nil, err
	}
	trimmed.ClearSourceRange()
	ranges, err := trimmed.RangeOfAllChildren()
	if err != nil {
		return nil, err
	}
	// Walk a snapshot in reverse so removals cannot disturb the
	// indexes still to visit. Every decision is made against the
	// original layout captured in ranges.
	children := slices.Clone(trimmed.Children())
	for i := len(children) - 1; i >= 0; i-- {
		child := children[i]
		childRange := ranges[child]
		if !trim.Overlaps(childRange) {
			if err := trimmed.RemoveChild(i); err != nil {
				return nil, err
			}
			continue
		}
		item, ok := child.(timeline.Item)
		if !ok {
			return nil, invalidArgument(op, "child %q cannot be trimmed", child.Name())
		}
		childTrimmed, err := item.TrimmedRange()
		if err != nil {
			return nil, err
		}
		if childRange.StartTime().Before(trim.StartTime()) {
			cut := trim.StartTime().Sub(childRange.StartTime())
			childTrimmed = opentime.NewTimeRange(
				childTrimmed.StartTime().Add(cut),
				childTrimmed.Duration().Sub(cut),
			)
		}
		if trim.EndTimeExclusive().Before(childRange.EndTimeExclusive()) {
			cut := childRange.EndTimeExclusive().Sub(trim.EndTimeExclusive())
			childTrimmed = opentime.NewTimeRange(
				childTrimmed.StartTime(),
				childTrimmed.Duration().Sub(cut),
			)
		}
		item.SetSourceRange(childTrimmed)
	}
	return trimmed, nil
}
