// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package timeline

import "github.com/montage-foundation/montage/lib/opentime"

// Timeline is the root of an editorial document: a named stack of
// tracks plus presentation metadata. The timeline itself is not a
// Composable; its track stack is where composition begins.
//
// Not safe for concurrent use.
type Timeline struct {
	name               string
	metadata           map[string]any
	globalStartTime    opentime.RationalTime
	hasGlobalStartTime bool
	tracks             *Stack
}

// NewTimeline creates an empty timeline with a track stack named
// "tracks".
func NewTimeline(name string) *Timeline {
	return &Timeline{name: name, tracks: NewStack("tracks")}
}

func (t *Timeline) Name() string        { return t.name }
func (t *Timeline) SetName(name string) { t.name = name }

func (t *Timeline) Metadata() map[string]any {
	if t.metadata == nil {
		t.metadata = make(map[string]any)
	}
	return t.metadata
}

// GlobalStartTime returns the presentation start of the timeline
// (the instant frame zero plays at), when set.
func (t *Timeline) GlobalStartTime() (opentime.RationalTime, bool) {
	return t.globalStartTime, t.hasGlobalStartTime
}

func (t *Timeline) SetGlobalStartTime(start opentime.RationalTime) {
	t.globalStartTime = start
	t.hasGlobalStartTime = true
}

func (t *Timeline) ClearGlobalStartTime() {
	t.globalStartTime = opentime.RationalTime{}
	t.hasGlobalStartTime = false
}

// Tracks returns the timeline's track stack.
func (t *Timeline) Tracks() *Stack { return t.tracks }

// SetTracks replaces the track stack. A nil stack installs a fresh
// empty one.
func (t *Timeline) SetTracks(tracks *Stack) {
	if tracks == nil {
		tracks = NewStack("tracks")
	}
	t.tracks = tracks
}

// Duration returns the timeline's total duration: the duration of
// its track stack.
func (t *Timeline) Duration() (opentime.RationalTime, error) {
	return t.tracks.Duration()
}

// RangeOfChild returns the span any node under the timeline occupies
// in the timeline's own coordinate system, however deep it sits.
func (t *Timeline) RangeOfChild(child Composable) (opentime.TimeRange, error) {
	item, ok := child.(Item)
	if !ok || item == nil {
		return opentime.TimeRange{}, invalidArgument("range-of-child", "child is required")
	}
	trimmed, err := item.TrimmedRange()
	if err != nil {
		return opentime.TimeRange{}, err
	}
	return TransformedTimeRange(trimmed, item, t.tracks)
}

// VideoTracks returns the timeline's video tracks, bottom first.
func (t *Timeline) VideoTracks() []*Track { return t.tracksOfKind(TrackKindVideo) }

// AudioTracks returns the timeline's audio tracks, bottom first.
func (t *Timeline) AudioTracks() []*Track { return t.tracksOfKind(TrackKindAudio) }

func (t *Timeline) tracksOfKind(kind TrackKind) []*Track {
	var matched []*Track
	for _, child := range t.tracks.Children() {
		if track, ok := child.(*Track); ok && track.Kind() == kind {
			matched = append(matched, track)
		}
	}
	return matched
}

// FindClips returns every clip in the timeline in pre-order,
// optionally narrowed to a search range in timeline coordinates.
func (t *Timeline) FindClips(searchRange *opentime.TimeRange) ([]*Clip, error) {
	return FindChildren[*Clip](t.tracks, searchRange, false)
}
