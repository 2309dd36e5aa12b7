// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/montage-foundation/montage/lib/codec"
	"github.com/montage-foundation/montage/lib/timeline"
)

// Document file extensions. Read and Write dispatch on them; any
// other extension is treated as the JSON form.
const (
	ExtDocument = ".mtl"
	ExtBinary   = ".mtlb"
)

// isBinaryPath reports whether a path names the CBOR form.
func isBinaryPath(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ExtBinary
}

// Read loads a document and returns its decoded root: a
// *timeline.Timeline for whole documents, or the concrete node a
// fragment roots. The format follows the extension.
func Read(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	var root any
	if isBinaryPath(path) {
		root, err = ReadBinary(data)
	} else {
		root, err = ReadBytes(data)
	}
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", path, err)
	}
	return root, nil
}

// ReadBytes decodes the JSON form. JSONC is accepted: comments and
// trailing commas are stripped before parsing.
func ReadBytes(data []byte) (any, error) {
	stripped := jsonc.ToJSON(data)
	var value any
	if err := json.Unmarshal(stripped, &value); err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}
	return decodeRoot(value)
}

// ReadTimeline loads a document whose root must be a timeline.
func ReadTimeline(path string) (*timeline.Timeline, error) {
	root, err := Read(path)
	if err != nil {
		return nil, err
	}
	tl, ok := root.(*timeline.Timeline)
	if !ok {
		return nil, fmt.Errorf("document %s: root is %T, not a timeline", path, root)
	}
	return tl, nil
}

// ReadBinary decodes the CBOR form.
func ReadBinary(data []byte) (any, error) {
	var value any
	if err := codec.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}
	return decodeRoot(value)
}

// Write stores root at path. A .mtlb extension selects the CBOR
// form and ignores indent; anything else writes JSON indented by
// indent spaces (0 or less writes compact JSON).
func Write(path string, root any, indent int) error {
	var data []byte
	var err error
	if isBinaryPath(path) {
		data, err = WriteBinary(root)
	} else {
		data, err = WriteBytes(root, indent)
		if err == nil {
			data = append(data, '\n')
		}
	}
	if err != nil {
		return fmt.Errorf("document %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}
	return nil
}

// WriteBytes encodes root as JSON, indented by indent spaces. Field
// order is fixed by the schema, so equal values produce equal bytes.
func WriteBytes(root any, indent int) ([]byte, error) {
	wire, err := encodeRoot(root)
	if err != nil {
		return nil, err
	}
	if indent <= 0 {
		return json.Marshal(wire)
	}
	return json.MarshalIndent(wire, "", strings.Repeat(" ", indent))
}

// WriteBinary encodes root as deterministic CBOR.
func WriteBinary(root any) ([]byte, error) {
	wire, err := encodeRoot(root)
	if err != nil {
		return nil, err
	}
	return codec.Marshal(wire)
}

// Clone deep-copies a serializable value by round-tripping it
// through the binary codec. The copy shares nothing with the
// original.
func Clone[T any](root T) (T, error) {
	var zero T
	data, err := WriteBinary(root)
	if err != nil {
		return zero, err
	}
	decoded, err := ReadBinary(data)
	if err != nil {
		return zero, err
	}
	typed, ok := decoded.(T)
	if !ok {
		return zero, fmt.Errorf("clone of %T decoded as %T", root, decoded)
	}
	return typed, nil
}
