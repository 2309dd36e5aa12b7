// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package timeline

import "github.com/montage-foundation/montage/lib/opentime"

// Stack is a composition with overlay layout: every child starts at
// time zero and the children layer over each other, higher indexes on
// top. A timeline's tracks form a stack.
//
// Construct with [NewStack]. Not safe for concurrent use.
type Stack struct {
	composition
}

var _ Composition = (*Stack)(nil)

// NewStack creates an empty stack.
func NewStack(name string) *Stack {
	s := &Stack{}
	s.composition = newComposition(name, s)
	return s
}

// AvailableRange returns [0, longest child duration).
func (s *Stack) AvailableRange() (opentime.TimeRange, error) {
	duration := opentime.NewRationalTime(0, 1)
	for _, child := range s.children {
		childDuration, err := child.Duration()
		if err != nil {
			return opentime.TimeRange{}, err
		}
		if duration.Before(childDuration) {
			duration = childDuration
		}
	}
	return opentime.NewTimeRange(opentime.NewRationalTime(0, duration.Rate()), duration), nil
}

// TrimmedRange returns the source range when set, otherwise the
// available range.
func (s *Stack) TrimmedRange() (opentime.TimeRange, error) { return trimmedRange(s) }

// Duration returns the length of the trimmed range.
func (s *Stack) Duration() (opentime.RationalTime, error) { return itemDuration(s) }

// RangeOfChildAtIndex returns [0, child duration): overlay children
// all start at zero.
func (s *Stack) RangeOfChildAtIndex(index int) (opentime.TimeRange, error) {
	if index < 0 || index >= len(s.children) {
		return opentime.TimeRange{}, invalidArgument("range-of-child-at-index", "index %d out of range [0, %d)", index, len(s.children))
	}
	duration, err := s.children[index].Duration()
	if err != nil {
		return opentime.TimeRange{}, err
	}
	return opentime.NewTimeRange(opentime.NewRationalTime(0, duration.Rate()), duration), nil
}

// RangeOfAllChildren computes every child's overlay span in one pass.
func (s *Stack) RangeOfAllChildren() (map[Composable]opentime.TimeRange, error) {
	ranges := make(map[Composable]opentime.TimeRange, len(s.children))
	for _, child := range s.children {
		duration, err := child.Duration()
		if err != nil {
			return nil, err
		}
		ranges[child] = opentime.NewTimeRange(opentime.NewRationalTime(0, duration.Rate()), duration)
	}
	return ranges, nil
}

// ChildAtTime returns the topmost child whose span contains the
// instant. Overlay spans share a start, so cumulative end times carry
// no order and the probe scans from the top of the stack instead of
// bisecting.
func (s *Stack) ChildAtTime(searchTime opentime.RationalTime, shallow bool) (Composable, error) {
	for index := len(s.children) - 1; index >= 0; index-- {
		childRange, err := s.RangeOfChildAtIndex(index)
		if err != nil {
			return nil, err
		}
		if childRange.Contains(searchTime) {
			return descendAtTime(s.children[index], searchTime, childRange, shallow)
		}
	}
	return nil, nil
}

// ChildrenInRange returns the children whose spans intersect the
// half-open search range, in index order (bottom first).
func (s *Stack) ChildrenInRange(searchRange opentime.TimeRange) ([]Composable, error) {
	if err := validSearchRange("children-in-range", searchRange); err != nil {
		return nil, err
	}
	var matched []Composable
	for index, child := range s.children {
		childRange, err := s.RangeOfChildAtIndex(index)
		if err != nil {
			return nil, err
		}
		if childRange.Overlaps(searchRange) {
			matched = append(matched, child)
		}
	}
	return matched, nil
}

// FindClips returns the clips under the stack in pre-order,
// optionally narrowed to a search range in stack coordinates.
func (s *Stack) FindClips(searchRange *opentime.TimeRange, shallow bool) ([]*Clip, error) {
	return FindChildren[*Clip](s, searchRange, shallow)
}
