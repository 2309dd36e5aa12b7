// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package edit

import (
	"slices"

	"github.com/montage-foundation/montage/lib/document"
	"github.com/montage-foundation/montage/lib/opentime"
	"github.com/montage-foundation/montage/lib/timeline"
)

// FlattenStack resolves a stack of tracks into one sequential track
// by topmost-visible selection: wherever the top track presents
// something it wins, and gaps or disabled items fall through to the
// layer below. Spans with nothing below them at all become gaps, so
// the flattened track always spans the stack's full trimmed extent
// and later content never slides out of place.
//
// The input is not modified; the result is built from deep copies.
// Every stack child must be a track.
func FlattenStack(stack *timeline.Stack) (*timeline.Track, error) {
	const op = "flatten-stack"
	if stack == nil {
		return nil, invalidArgument(op, "stack is required")
	}
	children := stack.Children()
	tracks := make([]*timeline.Track, 0, len(children))
	for _, child := range children {
		track, ok := child.(*timeline.Track)
		if !ok {
			return nil, invalidArgument(op, "stack child %q is a %T; flattening needs tracks", child.Name(), child)
		}
		tracks = append(tracks, track)
	}
	var window *opentime.TimeRange
	if r, ok := stack.SourceRange(); ok {
		window = &r
	}
	return flattenLayers(tracks, window)
}

// FlattenTracks flattens an ordered list of tracks, bottom first,
// exactly as FlattenStack would flatten a stack holding them.
func FlattenTracks(tracks []*timeline.Track) (*timeline.Track, error) {
	const op = "flatten-tracks"
	for i, track := range tracks {
		if track == nil {
			return nil, invalidArgument(op, "track %d is nil", i)
		}
	}
	return flattenLayers(tracks, nil)
}

// flattenLayers clones the tracks into a private scratch stack (the
// coordinate transforms need a common tree) and fills a fresh track
// from the top layer down. A nil window means the full stack extent.
func flattenLayers(tracks []*timeline.Track, window *opentime.TimeRange) (*timeline.Track, error) {
	scratch := timeline.NewStack("flatten scratch")
	layers := make([]*timeline.Track, len(tracks))
	for i, track := range tracks {
		clone, err := document.Clone(track)
		if err != nil {
			return nil, err
		}
		if err := scratch.AppendChild(clone); err != nil {
			return nil, err
		}
		layers[i] = clone
	}
	kind := timeline.TrackKindVideo
	if len(layers) > 0 {
		kind = layers[0].Kind()
	}
	flat := timeline.NewTrack("Flattened", kind)
	if len(layers) == 0 {
		return flat, nil
	}
	span := opentime.TimeRange{}
	if window != nil {
		span = *window
	} else {
		available, err := scratch.AvailableRange()
		if err != nil {
			return nil, err
		}
		span = available
	}
	if err := flattenWindow(flat, scratch, layers, len(layers)-1, span); err != nil {
		return nil, err
	}
	return flat, nil
}

// flattenWindow fills flat with the topmost-visible content of the
// stack window, consulting layers[index] first. The window is in the
// scratch stack's coordinate space.
func flattenWindow(flat *timeline.Track, scratch *timeline.Stack, layers []*timeline.Track, index int, window opentime.TimeRange) error {
	if window.Duration().Value() <= 0 {
		return nil
	}
	if index < 0 {
		return flat.AppendChild(timeline.NewGap("", window.Duration()))
	}
	layer := layers[index]
	internal, err := timeline.TransformedTimeRange(window, scratch, layer)
	if err != nil {
		return err
	}
	cursor := window.StartTime()
	// A layer trimmed to a negative start leaves a span ahead of its
	// content; that span falls through to the layer below.
	if internal.StartTime().Value() < 0 {
		lead := internal.StartTime().Neg()
		if window.Duration().Before(lead) {
			lead = window.Duration()
		}
		if err := flattenWindow(flat, scratch, layers, index-1, opentime.NewTimeRange(cursor, lead)); err != nil {
			return err
		}
		cursor = cursor.Add(lead)
	}
	trimmedLayer, err := TrackTrimmedToRange(layer, internal)
	if err != nil {
		return err
	}
	children := slices.Clone(trimmedLayer.Children())
	trimmedLayer.ClearChildren()
	for _, child := range children {
		duration, err := child.Duration()
		if err != nil {
			return err
		}
		if transparent(child) {
			if err := flattenWindow(flat, scratch, layers, index-1, opentime.NewTimeRange(cursor, duration)); err != nil {
				return err
			}
		} else {
			if err := flat.AppendChild(child); err != nil {
				return err
			}
		}
		cursor = cursor.Add(duration)
	}
	// The layer ran out of content before the window did; what is
	// left belongs to the layers below.
	if cursor.Before(window.EndTimeExclusive()) {
		rest := opentime.NewTimeRange(cursor, window.EndTimeExclusive().Sub(cursor))
		return flattenWindow(flat, scratch, layers, index-1, rest)
	}
	return nil
}

// transparent reports whether a node lets the layer below show
// through: gaps always do, and disabled items do.
func transparent(node timeline.Composable) bool {
	if !node.Visible() {
		return true
	}
	item, ok := node.(timeline.Item)
	return ok && !item.Enabled()
}
