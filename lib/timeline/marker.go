// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package timeline

import "github.com/montage-foundation/montage/lib/opentime"

// MarkerColor is the display color of a marker. The set matches the
// colors editorial tools exchange.
type MarkerColor string

const (
	MarkerColorPink    MarkerColor = "PINK"
	MarkerColorRed     MarkerColor = "RED"
	MarkerColorOrange  MarkerColor = "ORANGE"
	MarkerColorYellow  MarkerColor = "YELLOW"
	MarkerColorGreen   MarkerColor = "GREEN"
	MarkerColorCyan    MarkerColor = "CYAN"
	MarkerColorBlue    MarkerColor = "BLUE"
	MarkerColorPurple  MarkerColor = "PURPLE"
	MarkerColorMagenta MarkerColor = "MAGENTA"
	MarkerColorBlack   MarkerColor = "BLACK"
	MarkerColorWhite   MarkerColor = "WHITE"
)

// Marker annotates a span of an item's own coordinate system: a note
// for a frame or range, carried through serialization.
type Marker struct {
	name        string
	color       MarkerColor
	markedRange opentime.TimeRange
	comment     string
	metadata    map[string]any
}

// NewMarker creates a marker over the given range of its item. An
// empty color defaults to green.
func NewMarker(name string, markedRange opentime.TimeRange, color MarkerColor) *Marker {
	if color == "" {
		color = MarkerColorGreen
	}
	return &Marker{name: name, color: color, markedRange: markedRange}
}

func (m *Marker) Name() string        { return m.name }
func (m *Marker) SetName(name string) { m.name = name }

func (m *Marker) Color() MarkerColor         { return m.color }
func (m *Marker) SetColor(color MarkerColor) { m.color = color }

// MarkedRange returns the annotated span, in the owning item's
// coordinate system.
func (m *Marker) MarkedRange() opentime.TimeRange     { return m.markedRange }
func (m *Marker) SetMarkedRange(r opentime.TimeRange) { m.markedRange = r }

// Comment returns the free-text note attached to the marker.
func (m *Marker) Comment() string           { return m.comment }
func (m *Marker) SetComment(comment string) { m.comment = comment }

func (m *Marker) Metadata() map[string]any {
	if m.metadata == nil {
		m.metadata = make(map[string]any)
	}
	return m.metadata
}
