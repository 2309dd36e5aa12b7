// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"fmt"
	"strconv"
	"strings"
)

// Schema names as they appear in the SCHEMA discriminator, without
// the version suffix.
const (
	schemaRationalTime       = "RationalTime"
	schemaTimeRange          = "TimeRange"
	schemaTimeTransform      = "TimeTransform"
	schemaClip               = "Clip"
	schemaGap                = "Gap"
	schemaStack              = "Stack"
	schemaTrack              = "Track"
	schemaTimeline           = "Timeline"
	schemaMarker             = "Marker"
	schemaEffect             = "Effect"
	schemaLinearTimeWarp     = "LinearTimeWarp"
	schemaFreezeFrame        = "FreezeFrame"
	schemaExternalReference  = "ExternalReference"
	schemaMissingReference   = "MissingReference"
	schemaGeneratorReference = "GeneratorReference"
)

// supportedVersions maps each schema name to the newest version this
// reader understands. Older versions decode with current defaults;
// newer ones are rejected.
var supportedVersions = map[string]int{
	schemaRationalTime:       1,
	schemaTimeRange:          1,
	schemaTimeTransform:      1,
	schemaClip:               2,
	schemaGap:                1,
	schemaStack:              1,
	schemaTrack:              1,
	schemaTimeline:           1,
	schemaMarker:             2,
	schemaEffect:             1,
	schemaLinearTimeWarp:     1,
	schemaFreezeFrame:        1,
	schemaExternalReference:  1,
	schemaMissingReference:   1,
	schemaGeneratorReference: 1,
}

// schemaTag renders a name and version as the wire discriminator.
func schemaTag(name string, version int) string {
	return name + "." + strconv.Itoa(version)
}

// currentTag renders the discriminator for the version this package
// writes, which is always the newest supported one.
func currentTag(name string) string {
	return schemaTag(name, supportedVersions[name])
}

// splitSchemaTag parses a "Name.version" discriminator. The version
// is everything after the last dot, so schema names themselves may
// not contain dots.
func splitSchemaTag(tag string) (name string, version int, err error) {
	dot := strings.LastIndexByte(tag, '.')
	if dot <= 0 || dot == len(tag)-1 {
		return "", 0, fmt.Errorf("malformed schema tag %q", tag)
	}
	version, err = strconv.Atoi(tag[dot+1:])
	if err != nil || version < 1 {
		return "", 0, fmt.Errorf("malformed schema version in %q", tag)
	}
	return tag[:dot], version, nil
}

// checkSchema validates a discriminator against the supported table
// and returns the bare schema name. Unknown names and versions newer
// than this reader supports are both errors.
func checkSchema(tag string) (string, error) {
	name, version, err := splitSchemaTag(tag)
	if err != nil {
		return "", err
	}
	supported, ok := supportedVersions[name]
	if !ok {
		return "", fmt.Errorf("unknown schema %q", tag)
	}
	if version > supported {
		return "", fmt.Errorf("document requires a newer reader: schema %q, newest supported is %q",
			tag, schemaTag(name, supported))
	}
	return name, nil
}
