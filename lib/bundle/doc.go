// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

// Package bundle reads and writes .mtz bundles: single-file archives
// carrying a timeline document together with the media it references,
// for transport between workstations.
//
// A bundle is a flat container:
//
//	[Magic: 4 bytes "MTZB"] [Version: 1 byte] [Manifest length: 4 bytes LE]
//	[CBOR manifest] [Entry payload streams, concatenated]
//
// The manifest names the document entry, records creation time, and
// carries one [Entry] per stored file: path, uncompressed size,
// BLAKE3-256 content digest, compression tag, stored offset and size.
// Entry digests use keyed BLAKE3 with an ASCII domain key, and the
// bundle ID is the manifest-domain hash of the Merkle root over all
// entry digests, so two bundles with the same content have the same
// ID regardless of compression or encryption settings.
//
// Entry streams are compressed independently: zstd for text-like
// content, LZ4 when the ratio is modest, raw when a probe of the
// leading block shows the data is incompressible (media files
// usually are). With recipients configured, each stream is also
// encrypted with XChaCha20-Poly1305 under a per-entry key derived
// from a random bundle key via HKDF-SHA256; the bundle key itself is
// sealed to the recipients' age x25519 public keys and stored in the
// manifest. The manifest stays in the clear so Info works without a
// key.
//
// [Create] collects media from the document's external references
// (file URLs only) according to a [MediaPolicy], rewrites the stored
// document to reference media by bundle-relative path, and writes the
// container. [Open] returns a [Reader] for incremental access;
// [Extract], [Verify], [Info], and [ReadDocument] are one-shot
// wrappers over it.
//
// The bundle/fuse subpackage mounts a bundle read-only via FUSE, with
// the document at /<document name> and media under /media/.
package bundle
