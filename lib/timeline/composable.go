// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package timeline

import (
	"github.com/montage-foundation/montage/lib/opentime"
)

// Composable is any node that can be placed inside a composition.
// Node identity is pointer identity: two nodes with equal fields are
// still distinct children.
//
// The interface is closed over this package's node types; the
// unexported parent hook keeps the membership invariants in one
// place.
type Composable interface {
	// Name returns the display name of the node.
	Name() string
	// SetName replaces the display name.
	SetName(name string)

	// Metadata returns the node's mutable metadata map, allocating
	// it on first use.
	Metadata() map[string]any

	// Parent returns the composition that currently holds the node,
	// or nil.
	Parent() Composition

	// Duration returns the time the node occupies in its parent's
	// layout.
	Duration() (opentime.RationalTime, error)

	// Visible reports whether the node contributes visible output.
	// Gaps report false.
	Visible() bool

	// Overlapping reports whether the node overlaps its siblings
	// instead of occupying its own span. No current node type does.
	Overlapping() bool

	// setParent wires the membership back-reference. Only composition
	// mutators call it.
	setParent(parent Composition)
}

// Item is a Composable with editorial state: an optional source range
// trimming it, markers, effects, and an enabled flag. Clips, gaps,
// tracks, and stacks are all Items.
type Item interface {
	Composable

	// SourceRange returns the trim applied to the item, if any.
	SourceRange() (opentime.TimeRange, bool)
	// SetSourceRange trims the item to the given range of its own
	// coordinate system.
	SetSourceRange(r opentime.TimeRange)
	// ClearSourceRange removes the trim; the item reverts to its
	// available range.
	ClearSourceRange()

	// AvailableRange returns the full range of material the item
	// could present.
	AvailableRange() (opentime.TimeRange, error)

	// TrimmedRange returns the range the item actually presents: the
	// source range when set, otherwise the available range.
	TrimmedRange() (opentime.TimeRange, error)

	// Markers returns the item's markers in insertion order. The
	// slice is shared with the item.
	Markers() []*Marker
	// AddMarker appends a marker.
	AddMarker(m *Marker)

	// Effects returns the item's effects in insertion order. The
	// slice is shared with the item.
	Effects() []Effect
	// AddEffect appends an effect.
	AddEffect(e Effect)

	// Enabled reports whether the item participates in output.
	Enabled() bool
	// SetEnabled toggles participation.
	SetEnabled(enabled bool)
}

// itemCore carries the state shared by every item type. Concrete
// types embed it and add AvailableRange, TrimmedRange, and Duration.
type itemCore struct {
	name     string
	metadata map[string]any
	parent   Composition

	sourceRange    opentime.TimeRange
	hasSourceRange bool

	markers []*Marker
	effects []Effect
	enabled bool
}

func newItemCore(name string) itemCore {
	return itemCore{name: name, enabled: true}
}

func (ic *itemCore) Name() string        { return ic.name }
func (ic *itemCore) SetName(name string) { ic.name = name }

func (ic *itemCore) Metadata() map[string]any {
	if ic.metadata == nil {
		ic.metadata = make(map[string]any)
	}
	return ic.metadata
}

func (ic *itemCore) Parent() Composition          { return ic.parent }
func (ic *itemCore) setParent(parent Composition) { ic.parent = parent }

func (ic *itemCore) SourceRange() (opentime.TimeRange, bool) {
	return ic.sourceRange, ic.hasSourceRange
}

func (ic *itemCore) SetSourceRange(r opentime.TimeRange) {
	ic.sourceRange = r
	ic.hasSourceRange = true
}

func (ic *itemCore) ClearSourceRange() {
	ic.sourceRange = opentime.TimeRange{}
	ic.hasSourceRange = false
}

func (ic *itemCore) Markers() []*Marker  { return ic.markers }
func (ic *itemCore) AddMarker(m *Marker) { ic.markers = append(ic.markers, m) }

func (ic *itemCore) Effects() []Effect  { return ic.effects }
func (ic *itemCore) AddEffect(e Effect) { ic.effects = append(ic.effects, e) }

func (ic *itemCore) Enabled() bool           { return ic.enabled }
func (ic *itemCore) SetEnabled(enabled bool) { ic.enabled = enabled }

func (ic *itemCore) Visible() bool     { return true }
func (ic *itemCore) Overlapping() bool { return false }

// trimmedRange implements the shared TrimmedRange contract: the
// source range when set, otherwise whatever the concrete type reports
// as available.
func trimmedRange(it Item) (opentime.TimeRange, error) {
	if r, ok := it.SourceRange(); ok {
		return r, nil
	}
	return it.AvailableRange()
}

// itemDuration implements the shared Duration contract: the length of
// the trimmed range.
func itemDuration(it Item) (opentime.RationalTime, error) {
	r, err := it.TrimmedRange()
	if err != nil {
		return opentime.RationalTime{}, err
	}
	return r.Duration(), nil
}

// RangeInParent returns the span the node occupies in its parent's
// coordinate system. Fails with a not-found error when the node has
// no parent.
func RangeInParent(child Composable) (opentime.TimeRange, error) {
	parent := child.Parent()
	if parent == nil {
		return opentime.TimeRange{}, notFound("range-in-parent", "node %q has no parent", child.Name())
	}
	return parent.RangeOfChild(child)
}

// TrimmedRangeInParent returns the span the node occupies in its
// parent after the parent's own trim is applied. The boolean is false
// when the parent's trim removes the node entirely.
func TrimmedRangeInParent(child Composable) (opentime.TimeRange, bool, error) {
	parent := child.Parent()
	if parent == nil {
		return opentime.TimeRange{}, false, notFound("trimmed-range-in-parent", "node %q has no parent", child.Name())
	}
	return parent.TrimmedRangeOfChild(child)
}
