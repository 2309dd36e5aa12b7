// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package timeline

import "github.com/montage-foundation/montage/lib/opentime"

// highestAncestor climbs parent links to the root of a node's tree.
func highestAncestor(it Item) Item {
	node := it
	for {
		parent := node.Parent()
		if parent == nil {
			return node
		}
		node = parent
	}
}

// TransformedTime re-expresses an instant given in from's coordinate
// system in to's coordinate system. The two items must live in the
// same tree; crossing between trees is an invalid-argument error.
//
// The walk climbs from the source item toward the root, converting
// local time to parent time at each hop (subtract the item's trimmed
// start, add its offset within the parent), until it reaches the
// target item or the root; the same hops are then applied inverted
// from the target's side. Offsets commute, so the two climbs compose
// without materializing the common ancestor's coordinates.
func TransformedTime(t opentime.RationalTime, from, to Item) (opentime.RationalTime, error) {
	const op = "transformed-time"
	if from == nil || to == nil {
		return opentime.RationalTime{}, invalidArgument(op, "both items are required")
	}
	if from == to {
		return t, nil
	}
	root := highestAncestor(from)
	if highestAncestor(to) != root {
		return opentime.RationalTime{}, invalidArgument(op, "items %q and %q are not in the same hierarchy", from.Name(), to.Name())
	}

	result := t
	node := from
	for node != root && node != to {
		parent := node.Parent()
		trimmed, err := node.TrimmedRange()
		if err != nil {
			return opentime.RationalTime{}, err
		}
		offsetInParent, err := parent.RangeOfChild(node)
		if err != nil {
			return opentime.RationalTime{}, err
		}
		result = result.Sub(trimmed.StartTime()).Add(offsetInParent.StartTime())
		node = parent
	}

	meetingPoint := node
	node = to
	for node != root && node != meetingPoint {
		parent := node.Parent()
		trimmed, err := node.TrimmedRange()
		if err != nil {
			return opentime.RationalTime{}, err
		}
		offsetInParent, err := parent.RangeOfChild(node)
		if err != nil {
			return opentime.RationalTime{}, err
		}
		result = result.Add(trimmed.StartTime()).Sub(offsetInParent.StartTime())
		node = parent
	}
	return result, nil
}

// TransformedTimeRange re-expresses a range given in from's
// coordinate system in to's coordinate system: the start moves, the
// duration is preserved.
func TransformedTimeRange(r opentime.TimeRange, from, to Item) (opentime.TimeRange, error) {
	start, err := TransformedTime(r.StartTime(), from, to)
	if err != nil {
		return opentime.TimeRange{}, err
	}
	return opentime.NewTimeRange(start, r.Duration()), nil
}
