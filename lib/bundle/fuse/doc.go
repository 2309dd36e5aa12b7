// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

// Package fuse mounts a bundle as a read-only FUSE filesystem, so
// editing tools can open bundled media without extracting the bundle
// to disk.
//
// The mount mirrors the bundle layout: the timeline document at the
// root under its manifest name (timeline.mtl by default) and media
// under media/. Entry content is decompressed lazily, one entry at a
// time on first open, and kept in memory while the mount lives; the
// kernel page cache is enabled since bundle content is immutable.
//
// [Mount] takes an open [bundle.Reader] (unlocked first, for
// encrypted bundles) and returns the go-fuse server. The reader must
// stay open until the server is unmounted.
package fuse
