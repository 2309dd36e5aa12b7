// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

// Package edit derives and mutates timelines: trims, splits, splices,
// and stack flattening. Everything goes through the composition layer
// of lib/timeline, so the membership and layout invariants hold after
// every edit.
//
// The deriving operations (FlattenStack, FlattenTracks,
// TrackTrimmedToRange) never touch their input; they work on deep
// copies made through the document codec and return fresh nodes. The
// splicing operations (SplitAt, InsertGap, RemoveSpan) edit the given
// track in place, and TrimTimeline adjusts the timeline's root trim
// in place.
//
// Failures carry the lib/timeline error taxonomy; callers test them
// with timeline.IsInvalidArgument and friends.
package edit
