// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package timeline

import "github.com/montage-foundation/montage/lib/opentime"

// FindChildren walks the tree under root in pre-order and returns
// the nodes whose concrete type is T, parents before their
// descendants and siblings in index order.
//
// A non-nil searchRange narrows the walk to nodes intersecting it;
// the range is given in root's coordinate system and is re-expressed
// in each child's coordinate system on the way down. A shallow search
// stops at root's direct children.
//
// No match is an empty result with a nil error.
func FindChildren[T Composable](root Composition, searchRange *opentime.TimeRange, shallow bool) ([]T, error) {
	if root == nil {
		return nil, invalidArgument("find-children", "root composition is required")
	}
	var results []T
	err := walkChildren(root, searchRange, shallow, func(node Composable) {
		if typed, ok := any(node).(T); ok {
			results = append(results, typed)
		}
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// walkChildren visits the children of parent in pre-order. Each
// child's transformed search range is local to its own recursive
// call; siblings always see the parent-space range.
func walkChildren(parent Composition, searchRange *opentime.TimeRange, shallow bool, visit func(Composable)) error {
	children := parent.Children()
	if searchRange != nil {
		matched, err := parent.ChildrenInRange(*searchRange)
		if err != nil {
			return err
		}
		children = matched
	}
	for _, child := range children {
		visit(child)
		if shallow {
			continue
		}
		childComposition, ok := child.(Composition)
		if !ok {
			continue
		}
		var childRange *opentime.TimeRange
		if searchRange != nil {
			transformed, err := TransformedTimeRange(*searchRange, parent, childComposition)
			if err != nil {
				return err
			}
			childRange = &transformed
		}
		if err := walkChildren(childComposition, childRange, false, visit); err != nil {
			return err
		}
	}
	return nil
}
