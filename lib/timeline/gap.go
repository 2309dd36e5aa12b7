// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package timeline

import "github.com/montage-foundation/montage/lib/opentime"

// Gap is an invisible filler item: it occupies time in a track
// without presenting anything. Flattening and splicing insert gaps to
// keep later children in place.
type Gap struct {
	itemCore
}

// NewGap creates a gap of the given duration.
func NewGap(name string, duration opentime.RationalTime) *Gap {
	g := &Gap{itemCore: newItemCore(name)}
	g.SetSourceRange(opentime.NewTimeRange(opentime.NewRationalTime(0, duration.Rate()), duration))
	return g
}

// NewGapWithRange creates a gap covering an explicit source range.
func NewGapWithRange(name string, sourceRange opentime.TimeRange) *Gap {
	g := &Gap{itemCore: newItemCore(name)}
	g.SetSourceRange(sourceRange)
	return g
}

// Visible reports false: gaps present nothing.
func (g *Gap) Visible() bool { return false }

// AvailableRange returns the gap's span: a gap can "supply" exactly
// the time it was created to fill.
func (g *Gap) AvailableRange() (opentime.TimeRange, error) {
	if r, ok := g.SourceRange(); ok {
		return opentime.NewTimeRange(opentime.NewRationalTime(0, r.Duration().Rate()), r.Duration()), nil
	}
	return opentime.NewTimeRange(opentime.NewRationalTime(0, 1), opentime.NewRationalTime(0, 1)), nil
}

// TrimmedRange returns the source range when set, otherwise the
// available range.
func (g *Gap) TrimmedRange() (opentime.TimeRange, error) { return trimmedRange(g) }

// Duration returns the length of the trimmed range.
func (g *Gap) Duration() (opentime.RationalTime, error) { return itemDuration(g) }
