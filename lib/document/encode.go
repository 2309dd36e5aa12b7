// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"fmt"

	"github.com/montage-foundation/montage/lib/opentime"
	"github.com/montage-foundation/montage/lib/timeline"
)

// Wire structs define the serialized shape of each schema. Field
// order in the output follows declaration order, SCHEMA first, so
// documents diff cleanly. The same structs feed both the JSON and
// the CBOR encoder; lib/codec reads the json tags.

type wireTime struct {
	Schema string  `json:"SCHEMA"`
	Value  float64 `json:"value"`
	Rate   float64 `json:"rate"`
}

type wireRange struct {
	Schema    string   `json:"SCHEMA"`
	StartTime wireTime `json:"start_time"`
	Duration  wireTime `json:"duration"`
}

type wireTransform struct {
	Schema string   `json:"SCHEMA"`
	Offset wireTime `json:"offset"`
	Scale  float64  `json:"scale"`
	Rate   float64  `json:"rate"`
}

type wireMarker struct {
	Schema      string         `json:"SCHEMA"`
	Name        string         `json:"name"`
	Color       string         `json:"color"`
	MarkedRange wireRange      `json:"marked_range"`
	Comment     string         `json:"comment,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// wireEffect covers all three effect schemas; only the retime
// schemas carry a time scalar.
type wireEffect struct {
	Schema     string         `json:"SCHEMA"`
	Name       string         `json:"name"`
	EffectName string         `json:"effect_name"`
	TimeScalar *float64       `json:"time_scalar,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

type wireExternalReference struct {
	Schema         string         `json:"SCHEMA"`
	Name           string         `json:"name,omitempty"`
	TargetURL      string         `json:"target_url"`
	AvailableRange *wireRange     `json:"available_range,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

type wireMissingReference struct {
	Schema         string         `json:"SCHEMA"`
	Name           string         `json:"name,omitempty"`
	AvailableRange *wireRange     `json:"available_range,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

type wireGeneratorReference struct {
	Schema         string         `json:"SCHEMA"`
	Name           string         `json:"name,omitempty"`
	GeneratorKind  string         `json:"generator_kind"`
	Parameters     map[string]any `json:"parameters,omitempty"`
	AvailableRange *wireRange     `json:"available_range,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// wireItem carries the fields every item schema shares. Embedding
// keeps the shared block in one place; the json encoder inlines it.
type wireItem struct {
	Name        string         `json:"name"`
	SourceRange *wireRange     `json:"source_range,omitempty"`
	Enabled     bool           `json:"enabled"`
	Markers     []wireMarker   `json:"markers,omitempty"`
	Effects     []wireEffect   `json:"effects,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type wireClip struct {
	Schema string `json:"SCHEMA"`
	wireItem
	MediaReferences map[string]any `json:"media_references"`
	ActiveMediaKey  string         `json:"active_media_reference_key"`
}

type wireGap struct {
	Schema string `json:"SCHEMA"`
	wireItem
}

type wireTrack struct {
	Schema string `json:"SCHEMA"`
	wireItem
	Kind     string `json:"kind"`
	Children []any  `json:"children"`
}

type wireStack struct {
	Schema string `json:"SCHEMA"`
	wireItem
	Children []any `json:"children"`
}

type wireTimeline struct {
	Schema          string         `json:"SCHEMA"`
	Name            string         `json:"name"`
	GlobalStartTime *wireTime      `json:"global_start_time,omitempty"`
	Tracks          any            `json:"tracks"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

func encodeTime(t opentime.RationalTime) wireTime {
	return wireTime{Schema: currentTag(schemaRationalTime), Value: t.Value(), Rate: t.Rate()}
}

func encodeRange(r opentime.TimeRange) wireRange {
	return wireRange{
		Schema:    currentTag(schemaTimeRange),
		StartTime: encodeTime(r.StartTime()),
		Duration:  encodeTime(r.Duration()),
	}
}

func encodeTransform(x opentime.TimeTransform) wireTransform {
	return wireTransform{
		Schema: currentTag(schemaTimeTransform),
		Offset: encodeTime(x.Offset()),
		Scale:  x.Scale(),
		Rate:   x.Rate(),
	}
}

// encodeMetadata drops the allocation the Metadata accessor performs
// for nodes that never carried metadata.
func encodeMetadata(metadata map[string]any) map[string]any {
	if len(metadata) == 0 {
		return nil
	}
	return metadata
}

func encodeMarker(m *timeline.Marker) wireMarker {
	return wireMarker{
		Schema:      currentTag(schemaMarker),
		Name:        m.Name(),
		Color:       string(m.Color()),
		MarkedRange: encodeRange(m.MarkedRange()),
		Comment:     m.Comment(),
		Metadata:    encodeMetadata(m.Metadata()),
	}
}

func encodeEffect(e timeline.Effect) wireEffect {
	wire := wireEffect{
		Name:       e.Name(),
		EffectName: e.EffectName(),
		Metadata:   encodeMetadata(e.Metadata()),
	}
	switch typed := e.(type) {
	case *timeline.FreezeFrame:
		wire.Schema = currentTag(schemaFreezeFrame)
		scalar := typed.TimeScalar()
		wire.TimeScalar = &scalar
	case *timeline.LinearTimeWarp:
		wire.Schema = currentTag(schemaLinearTimeWarp)
		scalar := typed.TimeScalar()
		wire.TimeScalar = &scalar
	default:
		wire.Schema = currentTag(schemaEffect)
	}
	return wire
}

func encodeAvailableRange(media timeline.MediaReference) *wireRange {
	if r, ok := media.AvailableRange(); ok {
		wire := encodeRange(r)
		return &wire
	}
	return nil
}

func encodeMediaReference(media timeline.MediaReference) (any, error) {
	switch typed := media.(type) {
	case *timeline.ExternalReference:
		return wireExternalReference{
			Schema:         currentTag(schemaExternalReference),
			Name:           typed.Name(),
			TargetURL:      typed.TargetURL(),
			AvailableRange: encodeAvailableRange(typed),
			Metadata:       encodeMetadata(typed.Metadata()),
		}, nil
	case *timeline.MissingReference:
		return wireMissingReference{
			Schema:         currentTag(schemaMissingReference),
			Name:           typed.Name(),
			AvailableRange: encodeAvailableRange(typed),
			Metadata:       encodeMetadata(typed.Metadata()),
		}, nil
	case *timeline.GeneratorReference:
		return wireGeneratorReference{
			Schema:         currentTag(schemaGeneratorReference),
			Name:           typed.Name(),
			GeneratorKind:  typed.GeneratorKind(),
			Parameters:     encodeMetadata(typed.Parameters()),
			AvailableRange: encodeAvailableRange(typed),
			Metadata:       encodeMetadata(typed.Metadata()),
		}, nil
	default:
		return nil, fmt.Errorf("media reference type %T has no schema", media)
	}
}

func encodeItem(it timeline.Item) wireItem {
	wire := wireItem{
		Name:     it.Name(),
		Enabled:  it.Enabled(),
		Metadata: encodeMetadata(it.Metadata()),
	}
	if r, ok := it.SourceRange(); ok {
		sourceRange := encodeRange(r)
		wire.SourceRange = &sourceRange
	}
	for _, m := range it.Markers() {
		wire.Markers = append(wire.Markers, encodeMarker(m))
	}
	for _, e := range it.Effects() {
		wire.Effects = append(wire.Effects, encodeEffect(e))
	}
	return wire
}

func encodeChildren(parent timeline.Composition) ([]any, error) {
	children := parent.Children()
	encoded := make([]any, 0, len(children))
	for _, child := range children {
		wire, err := encodeComposable(child)
		if err != nil {
			return nil, err
		}
		encoded = append(encoded, wire)
	}
	return encoded, nil
}

func encodeComposable(node timeline.Composable) (any, error) {
	switch typed := node.(type) {
	case *timeline.Clip:
		references := typed.MediaReferences()
		encodedReferences := make(map[string]any, len(references))
		for key, media := range references {
			wire, err := encodeMediaReference(media)
			if err != nil {
				return nil, fmt.Errorf("clip %q: %w", typed.Name(), err)
			}
			encodedReferences[key] = wire
		}
		return wireClip{
			Schema:          currentTag(schemaClip),
			wireItem:        encodeItem(typed),
			MediaReferences: encodedReferences,
			ActiveMediaKey:  typed.ActiveMediaKey(),
		}, nil
	case *timeline.Gap:
		return wireGap{Schema: currentTag(schemaGap), wireItem: encodeItem(typed)}, nil
	case *timeline.Track:
		children, err := encodeChildren(typed)
		if err != nil {
			return nil, err
		}
		return wireTrack{
			Schema:   currentTag(schemaTrack),
			wireItem: encodeItem(typed),
			Kind:     string(typed.Kind()),
			Children: children,
		}, nil
	case *timeline.Stack:
		children, err := encodeChildren(typed)
		if err != nil {
			return nil, err
		}
		return wireStack{
			Schema:   currentTag(schemaStack),
			wireItem: encodeItem(typed),
			Children: children,
		}, nil
	default:
		return nil, fmt.Errorf("node type %T has no schema", node)
	}
}

// encodeRoot maps any serializable value to its wire form. This is
// the top-level dispatch; documents usually root a Timeline but any
// schema can stand alone as a fragment.
func encodeRoot(root any) (any, error) {
	switch typed := root.(type) {
	case nil:
		return nil, fmt.Errorf("nothing to write: root is nil")
	case *timeline.Timeline:
		tracks, err := encodeComposable(typed.Tracks())
		if err != nil {
			return nil, err
		}
		wire := wireTimeline{
			Schema:   currentTag(schemaTimeline),
			Name:     typed.Name(),
			Tracks:   tracks,
			Metadata: encodeMetadata(typed.Metadata()),
		}
		if start, ok := typed.GlobalStartTime(); ok {
			wireStart := encodeTime(start)
			wire.GlobalStartTime = &wireStart
		}
		return wire, nil
	case timeline.Composable:
		return encodeComposable(typed)
	case *timeline.Marker:
		return encodeMarker(typed), nil
	case timeline.Effect:
		return encodeEffect(typed), nil
	case timeline.MediaReference:
		return encodeMediaReference(typed)
	case opentime.RationalTime:
		return encodeTime(typed), nil
	case opentime.TimeRange:
		return encodeRange(typed), nil
	case opentime.TimeTransform:
		return encodeTransform(typed), nil
	default:
		return nil, fmt.Errorf("value type %T has no schema", root)
	}
}
