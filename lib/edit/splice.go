// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package edit

import (
	"github.com/montage-foundation/montage/lib/document"
	"github.com/montage-foundation/montage/lib/opentime"
	"github.com/montage-foundation/montage/lib/timeline"
)

// SplitAt splits the child containing instant t into two children
// meeting at t, by source-range arithmetic: the first half keeps the
// head of the child's trimmed range, a deep copy presents the tail.
// Both halves keep the child's name, markers, and effects; markers
// land on both copies and may sit outside a half's trim, which is
// how annotations survive any retrim.
//
// t is in the track's child-layout coordinates. An instant already
// on a child boundary (including the track's ends) is a no-op.
func SplitAt(track *timeline.Track, t opentime.RationalTime) error {
	const op = "split-at"
	if track == nil {
		return invalidArgument(op, "track is required")
	}
	_, err := splitIndexAt(track, op, t)
	return err
}

// InsertGap splices a gap of the given duration into the track at
// instant at, splitting the child there first when the instant falls
// inside one. Content at and after the instant shifts later by the
// gap's duration. An instant equal to the track's end appends.
func InsertGap(track *timeline.Track, at, duration opentime.RationalTime) error {
	const op = "insert-gap"
	if track == nil {
		return invalidArgument(op, "track is required")
	}
	if !duration.IsValid() || duration.Value() < 0 {
		return invalidArgument(op, "gap duration %s is not valid", duration)
	}
	if duration.Value() == 0 {
		return nil
	}
	index, err := splitIndexAt(track, op, at)
	if err != nil {
		return err
	}
	return track.InsertChild(index, timeline.NewGap("", duration))
}

// RemoveSpan deletes the content of r from the track and closes the
// hole: children inside the span are removed, boundary children are
// split first, and everything after slides earlier by r's duration.
// The span must lie within the track's content.
func RemoveSpan(track *timeline.Track, r opentime.TimeRange) error {
	const op = "remove-span"
	if track == nil {
		return invalidArgument(op, "track is required")
	}
	if err := validRange(op, r); err != nil {
		return err
	}
	if r.Duration().Value() == 0 {
		return nil
	}
	available, err := track.AvailableRange()
	if err != nil {
		return err
	}
	if available.EndTimeExclusive().Before(r.EndTimeExclusive()) {
		return invalidArgument(op, "span %s extends past the track end %s", r, available.EndTimeExclusive())
	}
	start, err := splitIndexAt(track, op, r.StartTime())
	if err != nil {
		return err
	}
	end, err := splitIndexAt(track, op, r.EndTimeExclusive())
	if err != nil {
		return err
	}
	for i := end - 1; i >= start; i-- {
		if err := track.RemoveChild(i); err != nil {
			return err
		}
	}
	return nil
}

// splitIndexAt returns the child index at which content starting at
// instant t begins, splitting the child containing t first when t
// falls inside one. t equal to the track's end returns the append
// position. All validation happens before any mutation.
func splitIndexAt(track *timeline.Track, op string, t opentime.RationalTime) (int, error) {
	if !t.IsValid() {
		return 0, invalidArgument(op, "instant %s is not valid", t)
	}
	available, err := track.AvailableRange()
	if err != nil {
		return 0, err
	}
	if t.Before(available.StartTime()) {
		return 0, invalidArgument(op, "instant %s is before the track start", t)
	}
	end := available.EndTimeExclusive()
	if end.Before(t) {
		return 0, invalidArgument(op, "instant %s is past the track end %s", t, end)
	}
	if !t.Before(end) {
		return len(track.Children()), nil
	}
	child, err := track.ChildAtTime(t, true)
	if err != nil {
		return 0, err
	}
	if child == nil {
		return 0, invalidArgument(op, "no child contains instant %s", t)
	}
	index, err := track.IndexOfChild(child)
	if err != nil {
		return 0, err
	}
	childRange, err := track.RangeOfChildAtIndex(index)
	if err != nil {
		return 0, err
	}
	if t.Equal(childRange.StartTime()) {
		return index, nil
	}
	item, ok := child.(timeline.Item)
	if !ok {
		return 0, invalidArgument(op, "child %q cannot be split", child.Name())
	}
	trimmed, err := item.TrimmedRange()
	if err != nil {
		return 0, err
	}
	tail, err := document.Clone(child)
	if err != nil {
		return 0, err
	}
	tailItem, ok := tail.(timeline.Item)
	if !ok {
		return 0, invalidArgument(op, "child %q cannot be split", child.Name())
	}
	offset := t.Sub(childRange.StartTime())
	item.SetSourceRange(opentime.NewTimeRange(trimmed.StartTime(), offset))
	tailItem.SetSourceRange(opentime.NewTimeRange(
		trimmed.StartTime().Add(offset),
		trimmed.Duration().Sub(offset),
	))
	if err := track.InsertChild(index+1, tail); err != nil {
		return 0, err
	}
	return index + 1, nil
}
