// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

// Package timeline implements hierarchical editorial compositions:
// clips, gaps, tracks, and stacks arranged in a tree and addressed by
// rational time.
//
// # Structure
//
// Every node in the tree implements [Composable]. Interior nodes
// ([*Track], [*Stack]) additionally implement [Composition]: an
// ordered child list paired with an identity-keyed membership set, so
// duplicate detection and HasChild are O(1) while order stays
// meaningful. A node belongs to at most one composition at a time;
// inserting an already-parented node fails with a duplicate-child
// error, and reparenting is an explicit remove-then-insert.
//
// A [*Track] lays its children end to end: child i starts where child
// i-1 ends. A [*Stack] overlays its children: every child starts at
// time zero. All ranges are half-open [start, start+duration).
//
// # Time queries
//
// ChildAtTime finds the child (or, with a deep search, the leaf)
// containing an instant. ChildrenInRange returns the children whose
// ranges intersect a search range. [FindChildren] walks the tree in
// pre-order, filtered by concrete type and optionally narrowed by a
// search range that is re-expressed in each child's coordinate
// system on the way down. Track queries locate children by binary
// search over cumulative end times; the cumulative table is built per
// query and never cached across mutations.
//
// # Errors
//
// Fallible operations return (value, error) where the value is a
// usable fallback (zero index, nil node, empty slice). "No child at
// that time" is nil with a nil error, not a failure. The failure
// taxonomy is carried by [*Error] and testable through
// [IsInvalidArgument], [IsDuplicateChild], [IsNotFound], and
// [IsCannotComputeRange] regardless of wrapping.
//
// Compositions are not safe for concurrent use: one writer, or any
// number of readers, never both.
package timeline
