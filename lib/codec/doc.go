// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides Montage's standard CBOR encoding
// configuration.
//
// Montage uses two serialization formats with a clear boundary:
//
//   - JSON for interchange: .mtl timeline documents, CLI --json
//     output, and anything another tool is expected to read or write.
//   - CBOR for binary artifacts: .mtlb binary documents, .mtz bundle
//     manifests, and the hashing envelopes of the media catalog.
//
// This package provides the shared CBOR encoding and decoding modes so
// that every Montage package encodes identically without duplicating
// configuration. The encoder uses Core Deterministic Encoding (RFC 8949
// §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items. Same logical data always produces identical
// bytes, which is what makes bundle identifiers and catalog content
// hashes stable.
//
// For buffer-oriented operations (documents, manifests):
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations (bundle entry streams):
//
//	encoder := codec.NewEncoder(w)
//	decoder := codec.NewDecoder(r)
//
// # Struct Tag Rules
//
// The struct tag on a type documents its serialization format:
//
//   - `cbor` tag: this type is ONLY ever serialized as CBOR. It will
//     never appear in a .mtl document or CLI output. Examples: bundle
//     manifest records, catalog hashing envelopes.
//   - `json` tag: this type may be serialized as BOTH JSON and CBOR.
//     fxamacker/cbor v2 reads `json` tags as fallback when `cbor`
//     tags are absent, so a single `json` tag controls field naming
//     and omitempty for both formats. Examples: the document schema
//     types, which serve .mtl (JSON) and .mtlb (CBOR) from one
//     definition.
//
// Never use both `cbor` and `json` tags on the same field. The tag
// choice documents the contract; doubling up is noise that obscures
// whether a type participates in JSON serialization.
package codec
