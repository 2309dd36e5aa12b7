// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package timeline

import (
	"slices"

	"github.com/montage-foundation/montage/lib/opentime"
)

// TrackKind labels what a track carries.
type TrackKind string

const (
	TrackKindVideo TrackKind = "Video"
	TrackKindAudio TrackKind = "Audio"
)

// Track is a composition with sequential layout: children sit end to
// end in index order, each starting where the previous one ends.
//
// Construct with [NewTrack]. Not safe for concurrent use.
type Track struct {
	composition
	kind TrackKind
}

var _ Composition = (*Track)(nil)

// NewTrack creates an empty track. An empty kind defaults to video.
func NewTrack(name string, kind TrackKind) *Track {
	if kind == "" {
		kind = TrackKindVideo
	}
	t := &Track{kind: kind}
	t.composition = newComposition(name, t)
	return t
}

// Kind returns what the track carries.
func (t *Track) Kind() TrackKind        { return t.kind }
func (t *Track) SetKind(kind TrackKind) { t.kind = kind }

// AvailableRange returns [0, sum of child durations).
func (t *Track) AvailableRange() (opentime.TimeRange, error) {
	duration := opentime.NewRationalTime(0, 1)
	for _, child := range t.children {
		childDuration, err := child.Duration()
		if err != nil {
			return opentime.TimeRange{}, err
		}
		duration = duration.Add(childDuration)
	}
	return opentime.NewTimeRange(opentime.NewRationalTime(0, duration.Rate()), duration), nil
}

// TrimmedRange returns the source range when set, otherwise the
// available range.
func (t *Track) TrimmedRange() (opentime.TimeRange, error) { return trimmedRange(t) }

// Duration returns the length of the trimmed range.
func (t *Track) Duration() (opentime.RationalTime, error) { return itemDuration(t) }

// RangeOfChildAtIndex sums the durations of the preceding siblings
// on demand; nothing is cached across mutations.
func (t *Track) RangeOfChildAtIndex(index int) (opentime.TimeRange, error) {
	if index < 0 || index >= len(t.children) {
		return opentime.TimeRange{}, invalidArgument("range-of-child-at-index", "index %d out of range [0, %d)", index, len(t.children))
	}
	duration, err := t.children[index].Duration()
	if err != nil {
		return opentime.TimeRange{}, err
	}
	start := opentime.NewRationalTime(0, duration.Rate())
	for _, sibling := range t.children[:index] {
		siblingDuration, err := sibling.Duration()
		if err != nil {
			return opentime.TimeRange{}, err
		}
		start = start.Add(siblingDuration)
	}
	return opentime.NewTimeRange(start, duration), nil
}

// RangeOfAllChildren lays the children out in a single pass.
func (t *Track) RangeOfAllChildren() (map[Composable]opentime.TimeRange, error) {
	ranges := make(map[Composable]opentime.TimeRange, len(t.children))
	if len(t.children) == 0 {
		return ranges, nil
	}
	firstDuration, err := t.children[0].Duration()
	if err != nil {
		return nil, err
	}
	end := opentime.NewRationalTime(0, firstDuration.Rate())
	for _, child := range t.children {
		duration, err := child.Duration()
		if err != nil {
			return nil, err
		}
		childRange := opentime.NewTimeRange(end, duration)
		ranges[child] = childRange
		end = childRange.EndTimeExclusive()
	}
	return ranges, nil
}

// ChildAtTime locates the child containing the instant by bisecting
// the cumulative end times. Times before the first child or at/after
// the track's total duration match nothing.
func (t *Track) ChildAtTime(searchTime opentime.RationalTime, shallow bool) (Composable, error) {
	if len(t.children) == 0 {
		return nil, nil
	}
	ranges, err := t.RangeOfAllChildren()
	if err != nil {
		return nil, err
	}
	index, err := bisectRight(t.children, searchTime, func(child Composable) (opentime.RationalTime, error) {
		return ranges[child].EndTimeExclusive(), nil
	}, 0, len(t.children))
	if err != nil {
		return nil, err
	}
	if index >= len(t.children) {
		return nil, nil
	}
	match := t.children[index]
	matchRange := ranges[match]
	if searchTime.Before(matchRange.StartTime()) {
		return nil, nil
	}
	return descendAtTime(match, searchTime, matchRange, shallow)
}

// ChildrenInRange returns the contiguous run of children whose spans
// intersect the half-open search range: a bisect over end times finds
// the first overlapping child, a bisect over start times (bounded
// below by the first) finds the end of the run.
func (t *Track) ChildrenInRange(searchRange opentime.TimeRange) ([]Composable, error) {
	if err := validSearchRange("children-in-range", searchRange); err != nil {
		return nil, err
	}
	if len(t.children) == 0 {
		return nil, nil
	}
	ranges, err := t.RangeOfAllChildren()
	if err != nil {
		return nil, err
	}
	first, err := bisectRight(t.children, searchRange.StartTime(), func(child Composable) (opentime.RationalTime, error) {
		return ranges[child].EndTimeExclusive(), nil
	}, 0, len(t.children))
	if err != nil {
		return nil, err
	}
	last, err := bisectLeft(t.children, searchRange.EndTimeExclusive(), func(child Composable) (opentime.RationalTime, error) {
		return ranges[child].StartTime(), nil
	}, first, len(t.children))
	if err != nil {
		return nil, err
	}
	return slices.Clone(t.children[first:last]), nil
}

// NeighborsOf returns the children adjacent to the given child, nil
// at the track edges.
func (t *Track) NeighborsOf(child Composable) (before, after Composable, err error) {
	index, err := t.IndexOfChild(child)
	if err != nil {
		return nil, nil, err
	}
	if index > 0 {
		before = t.children[index-1]
	}
	if index+1 < len(t.children) {
		after = t.children[index+1]
	}
	return before, after, nil
}

// FindClips returns the clips under the track in pre-order,
// optionally narrowed to a search range in track coordinates.
func (t *Track) FindClips(searchRange *opentime.TimeRange, shallow bool) ([]*Clip, error) {
	return FindChildren[*Clip](t, searchRange, shallow)
}

// validSearchRange rejects ranges no instant can be inside of.
func validSearchRange(op string, searchRange opentime.TimeRange) error {
	if !searchRange.StartTime().IsValid() || !searchRange.Duration().IsValid() {
		return invalidArgument(op, "search range %s is not valid", searchRange)
	}
	if searchRange.Duration().Value() < 0 {
		return invalidArgument(op, "search range %s has negative duration", searchRange)
	}
	return nil
}
