// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

// Package document reads and writes Montage timeline documents.
//
// The interchange format is JSON with a "SCHEMA" discriminator on
// every object, carrying the schema name and version ("Timeline.1",
// "Clip.2"). Files use the .mtl extension. On read, JSONC is
// accepted: // line comments, /* block comments */, and trailing
// commas are stripped before parsing, so documents can be authored
// by hand the same way pipeline files are elsewhere.
//
// The binary format is deterministic CBOR of the same logical
// structure via lib/codec, extension .mtlb. Both formats decode
// through one path, so a document round-trips between them without
// loss.
//
// The typical flow:
//
//	tl, err := document.ReadTimeline("cut.mtl")
//	...
//	err = document.Write("cut.mtlb", tl)
//
// Read returns whichever node the document's root schema names; use
// it for fragments (a bare Track, a Marker). ReadTimeline insists on
// a Timeline root.
//
// Unknown schema names are errors naming the schema. A version newer
// than this package supports is an error telling the caller the
// document requires a newer reader; older versions are accepted and
// decoded with current defaults for any missing fields.
package document
