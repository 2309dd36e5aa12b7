// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

// Package mediadb maintains a local SQLite catalog of the media that
// timeline documents reference. The catalog maps each media source to
// its probed attributes (size, BLAKE3-256 content digest, duration
// from the reference's available range) and records which clips of
// which timelines reference it, so the media commands can answer
// "what does this cut use", "what is unreachable", and "rewrite these
// paths" without re-reading every document.
//
// [Catalog.RecordTimeline] walks a document's clips and upserts one
// media row per distinct resolved source. File-like targets (plain
// paths and file:// URLs, relative ones resolved against the
// document's directory) are stored as absolute paths and probed;
// other URL schemes are cataloged verbatim and never probed. The
// document itself is fingerprinted (BLAKE3 of its binary encoding) so
// a rescan can report whether the document changed since the last
// scan.
//
// [Catalog.Missing] re-checks the filesystem at call time rather than
// trusting scan-time probes: a file that vanished after the scan is
// reported, one that reappeared is not.
//
// [Catalog.Relink] rewrites a path prefix across a timeline's
// cataloged media (after files move to a new volume or directory) and
// re-probes the new locations. It updates the catalog only; rewriting
// the document is the caller's step.
//
// # Storage
//
// One database file, three tables: media (one row per distinct
// source), timelines (one row per scanned document, with its
// fingerprint), and the timeline_media join table carrying clip
// names. Foreign keys are ON with cascading deletes so dropping a
// timeline row cannot strand join rows.
//
// Connections come from a small fixed-size pool (see pool.go) with
// WAL journaling, NORMAL synchronous, and a 5 second busy timeout.
// The catalog is safe for concurrent use; each operation borrows a
// connection for its duration.
package mediadb
