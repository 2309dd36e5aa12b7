// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package timeline

import (
	"slices"

	"github.com/montage-foundation/montage/lib/opentime"
)

// Composition is an interior node: an Item that owns an ordered,
// duplicate-free list of children and answers time queries over them.
// Track and Stack implement it with sequential and overlay layouts.
//
// Construct compositions with [NewTrack] or [NewStack]. Not safe for
// concurrent use.
type Composition interface {
	Item

	// Children returns the ordered child list. The slice is shared
	// with the composition and must not be modified; mutators may
	// invalidate it.
	Children() []Composable

	// AppendChild inserts a child at the end.
	AppendChild(child Composable) error
	// InsertChild inserts a child at index, shifting later children
	// right. The index must be in [0, len].
	InsertChild(index int, child Composable) error
	// SetChild replaces the child at index, orphaning the old child.
	// Setting the child already at index is a no-op.
	SetChild(index int, child Composable) error
	// RemoveChild removes and orphans the child at index.
	RemoveChild(index int) error
	// SetChildren atomically replaces the whole child list. The new
	// list is validated first; on error the composition is
	// unchanged. Children currently in this composition may appear
	// in the new list (reordering), children of other compositions
	// may not.
	SetChildren(children []Composable) error
	// ClearChildren orphans and removes every child.
	ClearChildren()

	// IndexOfChild returns the position of the child, or a not-found
	// error (with index 0) when the node is not a child.
	IndexOfChild(child Composable) (int, error)
	// HasChild reports membership in O(1).
	HasChild(child Composable) bool
	// IsParentOf reports whether the node's parent is this
	// composition. Equivalent to HasChild under the membership
	// invariant.
	IsParentOf(child Composable) bool

	// RangeOfChildAtIndex returns the span the child at index
	// occupies in this composition's coordinate system.
	RangeOfChildAtIndex(index int) (opentime.TimeRange, error)
	// RangeOfChild is RangeOfChildAtIndex addressed by node.
	RangeOfChild(child Composable) (opentime.TimeRange, error)
	// RangeOfAllChildren computes every child's span in one pass.
	RangeOfAllChildren() (map[Composable]opentime.TimeRange, error)
	// TrimmedRangeOfChild returns the child's span clipped by this
	// composition's source range; false when trimmed away entirely.
	TrimmedRangeOfChild(child Composable) (opentime.TimeRange, bool, error)
	// TrimChildRange clips an arbitrary child-space range against
	// this composition's source range; false when disjoint.
	TrimChildRange(r opentime.TimeRange) (opentime.TimeRange, bool)

	// ChildAtTime returns the child whose span contains the instant,
	// or nil when no child does. A deep search (shallow=false)
	// descends into matching child compositions and returns the
	// deepest node found.
	ChildAtTime(searchTime opentime.RationalTime, shallow bool) (Composable, error)
	// ChildrenInRange returns the children whose spans intersect the
	// half-open search range, in index order.
	ChildrenInRange(searchRange opentime.TimeRange) ([]Composable, error)

	// HasClips reports whether any descendant is a clip.
	HasClips() bool
}

// composition is the container core embedded by Track and Stack: the
// ordered child slice plus an identity membership set, mutated in
// lockstep. The owner is the concrete composition the children see as
// their parent.
type composition struct {
	itemCore
	owner    Composition
	children []Composable
	childSet map[Composable]struct{}
}

func newComposition(name string, owner Composition) composition {
	return composition{
		itemCore: newItemCore(name),
		owner:    owner,
		childSet: make(map[Composable]struct{}),
	}
}

func (c *composition) Children() []Composable { return c.children }

// adoptable rejects insertions that would break the membership
// invariant: nil nodes, nodes already here, nodes owned elsewhere.
func (c *composition) adoptable(op string, child Composable) error {
	if child == nil {
		return invalidArgument(op, "child must not be nil")
	}
	if _, ok := c.childSet[child]; ok {
		return duplicateChild(op, "node %q is already a child of this composition", child.Name())
	}
	if parent := child.Parent(); parent != nil {
		return duplicateChild(op, "node %q already has a parent; remove it there first", child.Name())
	}
	return nil
}

func (c *composition) adopt(child Composable) {
	c.childSet[child] = struct{}{}
	child.setParent(c.owner)
}

func (c *composition) orphan(child Composable) {
	delete(c.childSet, child)
	child.setParent(nil)
}

func (c *composition) AppendChild(child Composable) error {
	return c.insertChild("append-child", len(c.children), child)
}

func (c *composition) InsertChild(index int, child Composable) error {
	return c.insertChild("insert-child", index, child)
}

func (c *composition) insertChild(op string, index int, child Composable) error {
	if index < 0 || index > len(c.children) {
		return invalidArgument(op, "index %d out of range [0, %d]", index, len(c.children))
	}
	if err := c.adoptable(op, child); err != nil {
		return err
	}
	c.children = slices.Insert(c.children, index, child)
	c.adopt(child)
	return nil
}

func (c *composition) SetChild(index int, child Composable) error {
	const op = "set-child"
	if index < 0 || index >= len(c.children) {
		return invalidArgument(op, "index %d out of range [0, %d)", index, len(c.children))
	}
	if child == c.children[index] {
		return nil
	}
	if err := c.adoptable(op, child); err != nil {
		return err
	}
	c.orphan(c.children[index])
	c.children[index] = child
	c.adopt(child)
	return nil
}

func (c *composition) RemoveChild(index int) error {
	const op = "remove-child"
	if index < 0 || index >= len(c.children) {
		return invalidArgument(op, "index %d out of range [0, %d)", index, len(c.children))
	}
	c.orphan(c.children[index])
	c.children = slices.Delete(c.children, index, index+1)
	return nil
}

func (c *composition) SetChildren(children []Composable) error {
	const op = "set-children"
	incoming := make(map[Composable]struct{}, len(children))
	for i, child := range children {
		if child == nil {
			return invalidArgument(op, "child %d must not be nil", i)
		}
		if _, ok := incoming[child]; ok {
			return duplicateChild(op, "node %q appears twice in the new child list", child.Name())
		}
		incoming[child] = struct{}{}
		if parent := child.Parent(); parent != nil && parent != c.owner {
			return duplicateChild(op, "node %q belongs to another composition", child.Name())
		}
	}

	for _, child := range c.children {
		c.orphan(child)
	}
	c.children = slices.Clone(children)
	for _, child := range c.children {
		c.adopt(child)
	}
	return nil
}

func (c *composition) ClearChildren() {
	for _, child := range c.children {
		c.orphan(child)
	}
	c.children = nil
}

func (c *composition) IndexOfChild(child Composable) (int, error) {
	if child == nil || !c.HasChild(child) {
		return 0, notFound("index-of-child", "node is not a child of this composition")
	}
	for i, existing := range c.children {
		if existing == child {
			return i, nil
		}
	}
	// Unreachable while the list and set mutate in lockstep.
	return 0, notFound("index-of-child", "membership set and child list disagree")
}

func (c *composition) HasChild(child Composable) bool {
	_, ok := c.childSet[child]
	return ok
}

func (c *composition) IsParentOf(child Composable) bool {
	return child != nil && child.Parent() == c.owner
}

// RangeOfChild resolves the child to its index and delegates to the
// owner's layout.
func (c *composition) RangeOfChild(child Composable) (opentime.TimeRange, error) {
	index, err := c.IndexOfChild(child)
	if err != nil {
		return opentime.TimeRange{}, err
	}
	return c.owner.RangeOfChildAtIndex(index)
}

// TrimChildRange clips a child-space range against the composition's
// source range. Without a source range the input passes through.
func (c *composition) TrimChildRange(r opentime.TimeRange) (opentime.TimeRange, bool) {
	sourceRange, ok := c.SourceRange()
	if !ok {
		return r, true
	}
	pastEnd := !sourceRange.StartTime().Before(r.EndTimeExclusive())
	beforeStart := !r.StartTime().Before(sourceRange.EndTimeExclusive())
	if pastEnd || beforeStart {
		return opentime.TimeRange{}, false
	}
	if r.StartTime().Before(sourceRange.StartTime()) {
		r = opentime.RangeFromStartEndTime(sourceRange.StartTime(), r.EndTimeExclusive())
	}
	if sourceRange.EndTimeExclusive().Before(r.EndTimeExclusive()) {
		r = opentime.RangeFromStartEndTime(r.StartTime(), sourceRange.EndTimeExclusive())
	}
	return r, true
}

func (c *composition) TrimmedRangeOfChild(child Composable) (opentime.TimeRange, bool, error) {
	r, err := c.RangeOfChild(child)
	if err != nil {
		return opentime.TimeRange{}, false, err
	}
	trimmed, ok := c.TrimChildRange(r)
	return trimmed, ok, nil
}

func (c *composition) HasClips() bool {
	clips, _ := FindChildren[*Clip](c.owner, nil, false)
	return len(clips) > 0
}

// descendAtTime finishes a ChildAtTime probe: with a deep search, a
// matching child composition is entered at the transformed time, and
// the deepest match wins. A composition with no matching descendant
// is itself the result.
func descendAtTime(match Composable, searchTime opentime.RationalTime, matchRange opentime.TimeRange, shallow bool) (Composable, error) {
	if shallow {
		return match, nil
	}
	childComposition, ok := match.(Composition)
	if !ok {
		return match, nil
	}
	trimmed, err := childComposition.TrimmedRange()
	if err != nil {
		return nil, err
	}
	innerTime := searchTime.Sub(matchRange.StartTime()).Add(trimmed.StartTime())
	inner, err := childComposition.ChildAtTime(innerTime, false)
	if err != nil {
		return nil, err
	}
	if inner != nil {
		return inner, nil
	}
	return match, nil
}
