// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"fmt"
	"maps"
	"sort"

	"github.com/montage-foundation/montage/lib/opentime"
	"github.com/montage-foundation/montage/lib/timeline"
)

// The decoder walks generic values (map[string]any trees) rather than
// unmarshaling into wire structs. Both parsers hand over the same
// shape, json directly and cbor via its string-keyed default map
// type, so one decode path serves both formats. Numbers differ
// between the two (json: float64; cbor: uint64/int64/float64) and
// asFloat absorbs that.
//
// Missing fields take the current default, which is also how
// documents written by older versions decode. Fields present with
// the wrong type are errors carrying a dotted path to the offending
// value.

func asFloat(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func getString(obj map[string]any, key, path string) (string, error) {
	value, ok := obj[key]
	if !ok || value == nil {
		return "", nil
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%s.%s: expected a string, got %T", path, key, value)
	}
	return s, nil
}

func getBool(obj map[string]any, key, path string, fallback bool) (bool, error) {
	value, ok := obj[key]
	if !ok || value == nil {
		return fallback, nil
	}
	b, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("%s.%s: expected a bool, got %T", path, key, value)
	}
	return b, nil
}

func getFloat(obj map[string]any, key, path string) (float64, error) {
	value, ok := obj[key]
	if !ok || value == nil {
		return 0, nil
	}
	n, ok := asFloat(value)
	if !ok {
		return 0, fmt.Errorf("%s.%s: expected a number, got %T", path, key, value)
	}
	return n, nil
}

func getMap(obj map[string]any, key, path string) (map[string]any, error) {
	value, ok := obj[key]
	if !ok || value == nil {
		return nil, nil
	}
	m, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s.%s: expected an object, got %T", path, key, value)
	}
	return m, nil
}

func getSlice(obj map[string]any, key, path string) ([]any, error) {
	value, ok := obj[key]
	if !ok || value == nil {
		return nil, nil
	}
	s, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("%s.%s: expected an array, got %T", path, key, value)
	}
	return s, nil
}

// schemaOf validates the discriminator of an object and returns the
// bare schema name.
func schemaOf(value any, path string) (map[string]any, string, error) {
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, "", fmt.Errorf("%s: expected an object, got %T", path, value)
	}
	tagValue, ok := obj["SCHEMA"]
	if !ok {
		return nil, "", fmt.Errorf("%s: missing SCHEMA discriminator", path)
	}
	tag, ok := tagValue.(string)
	if !ok {
		return nil, "", fmt.Errorf("%s: SCHEMA must be a string, got %T", path, tagValue)
	}
	name, err := checkSchema(tag)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return obj, name, nil
}

func decodeTime(value any, path string) (opentime.RationalTime, error) {
	obj, name, err := schemaOf(value, path)
	if err != nil {
		return opentime.RationalTime{}, err
	}
	if name != schemaRationalTime {
		return opentime.RationalTime{}, fmt.Errorf("%s: expected schema %s, got %s", path, schemaRationalTime, name)
	}
	v, err := getFloat(obj, "value", path)
	if err != nil {
		return opentime.RationalTime{}, err
	}
	rate, err := getFloat(obj, "rate", path)
	if err != nil {
		return opentime.RationalTime{}, err
	}
	return opentime.NewRationalTime(v, rate), nil
}

func decodeTimeField(obj map[string]any, key, path string) (opentime.RationalTime, bool, error) {
	value, ok := obj[key]
	if !ok || value == nil {
		return opentime.RationalTime{}, false, nil
	}
	t, err := decodeTime(value, path+"."+key)
	if err != nil {
		return opentime.RationalTime{}, false, err
	}
	return t, true, nil
}

func decodeRange(value any, path string) (opentime.TimeRange, error) {
	obj, name, err := schemaOf(value, path)
	if err != nil {
		return opentime.TimeRange{}, err
	}
	if name != schemaTimeRange {
		return opentime.TimeRange{}, fmt.Errorf("%s: expected schema %s, got %s", path, schemaTimeRange, name)
	}
	start, _, err := decodeTimeField(obj, "start_time", path)
	if err != nil {
		return opentime.TimeRange{}, err
	}
	duration, _, err := decodeTimeField(obj, "duration", path)
	if err != nil {
		return opentime.TimeRange{}, err
	}
	return opentime.NewTimeRange(start, duration), nil
}

func decodeRangeField(obj map[string]any, key, path string) (opentime.TimeRange, bool, error) {
	value, ok := obj[key]
	if !ok || value == nil {
		return opentime.TimeRange{}, false, nil
	}
	r, err := decodeRange(value, path+"."+key)
	if err != nil {
		return opentime.TimeRange{}, false, err
	}
	return r, true, nil
}

func decodeTransform(obj map[string]any, path string) (opentime.TimeTransform, error) {
	offset, _, err := decodeTimeField(obj, "offset", path)
	if err != nil {
		return opentime.TimeTransform{}, err
	}
	scale, err := getFloat(obj, "scale", path)
	if err != nil {
		return opentime.TimeTransform{}, err
	}
	rate, err := getFloat(obj, "rate", path)
	if err != nil {
		return opentime.TimeTransform{}, err
	}
	return opentime.NewTimeTransform(offset, scale, rate), nil
}

func decodeMetadataInto(target map[string]any, obj map[string]any, key, path string) error {
	metadata, err := getMap(obj, key, path)
	if err != nil {
		return err
	}
	if len(metadata) > 0 {
		maps.Copy(target, metadata)
	}
	return nil
}

func decodeMarker(obj map[string]any, path string) (*timeline.Marker, error) {
	name, err := getString(obj, "name", path)
	if err != nil {
		return nil, err
	}
	color, err := getString(obj, "color", path)
	if err != nil {
		return nil, err
	}
	markedRange, _, err := decodeRangeField(obj, "marked_range", path)
	if err != nil {
		return nil, err
	}
	comment, err := getString(obj, "comment", path)
	if err != nil {
		return nil, err
	}
	marker := timeline.NewMarker(name, markedRange, timeline.MarkerColor(color))
	marker.SetComment(comment)
	if err := decodeMetadataInto(marker.Metadata(), obj, "metadata", path); err != nil {
		return nil, err
	}
	return marker, nil
}

func decodeEffect(obj map[string]any, schemaName, path string) (timeline.Effect, error) {
	name, err := getString(obj, "name", path)
	if err != nil {
		return nil, err
	}
	var effect timeline.Effect
	switch schemaName {
	case schemaFreezeFrame:
		effect = timeline.NewFreezeFrame(name)
	case schemaLinearTimeWarp:
		scalar, err := getFloat(obj, "time_scalar", path)
		if err != nil {
			return nil, err
		}
		effect = timeline.NewLinearTimeWarp(name, scalar)
	default:
		effectName, err := getString(obj, "effect_name", path)
		if err != nil {
			return nil, err
		}
		effect = timeline.NewEffect(name, effectName)
	}
	if err := decodeMetadataInto(effect.Metadata(), obj, "metadata", path); err != nil {
		return nil, err
	}
	return effect, nil
}

func decodeMediaReference(obj map[string]any, schemaName, path string) (timeline.MediaReference, error) {
	name, err := getString(obj, "name", path)
	if err != nil {
		return nil, err
	}
	var media timeline.MediaReference
	switch schemaName {
	case schemaExternalReference:
		targetURL, err := getString(obj, "target_url", path)
		if err != nil {
			return nil, err
		}
		external := timeline.NewExternalReference(targetURL)
		external.SetName(name)
		media = external
	case schemaMissingReference:
		media = timeline.NewMissingReference()
		media.SetName(name)
	case schemaGeneratorReference:
		kind, err := getString(obj, "generator_kind", path)
		if err != nil {
			return nil, err
		}
		generator := timeline.NewGeneratorReference(name, kind)
		if err := decodeMetadataInto(generator.Parameters(), obj, "parameters", path); err != nil {
			return nil, err
		}
		media = generator
	default:
		return nil, fmt.Errorf("%s: schema %s is not a media reference", path, schemaName)
	}
	if available, ok, err := decodeRangeField(obj, "available_range", path); err != nil {
		return nil, err
	} else if ok {
		media.SetAvailableRange(available)
	}
	if err := decodeMetadataInto(media.Metadata(), obj, "metadata", path); err != nil {
		return nil, err
	}
	return media, nil
}

// applyItemFields decodes the shared item block (trim, enabled flag,
// markers, effects, metadata) onto an already constructed item.
func applyItemFields(it timeline.Item, obj map[string]any, path string) error {
	if sourceRange, ok, err := decodeRangeField(obj, "source_range", path); err != nil {
		return err
	} else if ok {
		it.SetSourceRange(sourceRange)
	}
	enabled, err := getBool(obj, "enabled", path, true)
	if err != nil {
		return err
	}
	it.SetEnabled(enabled)
	markers, err := getSlice(obj, "markers", path)
	if err != nil {
		return err
	}
	for i, value := range markers {
		markerPath := fmt.Sprintf("%s.markers[%d]", path, i)
		markerObj, name, err := schemaOf(value, markerPath)
		if err != nil {
			return err
		}
		if name != schemaMarker {
			return fmt.Errorf("%s: expected schema %s, got %s", markerPath, schemaMarker, name)
		}
		marker, err := decodeMarker(markerObj, markerPath)
		if err != nil {
			return err
		}
		it.AddMarker(marker)
	}
	effects, err := getSlice(obj, "effects", path)
	if err != nil {
		return err
	}
	for i, value := range effects {
		effectPath := fmt.Sprintf("%s.effects[%d]", path, i)
		effectObj, name, err := schemaOf(value, effectPath)
		if err != nil {
			return err
		}
		switch name {
		case schemaEffect, schemaLinearTimeWarp, schemaFreezeFrame:
		default:
			return fmt.Errorf("%s: schema %s is not an effect", effectPath, name)
		}
		effect, err := decodeEffect(effectObj, name, effectPath)
		if err != nil {
			return err
		}
		it.AddEffect(effect)
	}
	return decodeMetadataInto(it.Metadata(), obj, "metadata", path)
}

func decodeClip(obj map[string]any, path string) (*timeline.Clip, error) {
	name, err := getString(obj, "name", path)
	if err != nil {
		return nil, err
	}
	clip := timeline.NewClip(name, nil)
	referencesObj, err := getMap(obj, "media_references", path)
	if err != nil {
		return nil, err
	}
	if len(referencesObj) > 0 {
		references := make(map[string]timeline.MediaReference, len(referencesObj))
		keys := make([]string, 0, len(referencesObj))
		for key := range referencesObj {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			referencePath := fmt.Sprintf("%s.media_references[%q]", path, key)
			referenceObj, schemaName, err := schemaOf(referencesObj[key], referencePath)
			if err != nil {
				return nil, err
			}
			media, err := decodeMediaReference(referenceObj, schemaName, referencePath)
			if err != nil {
				return nil, err
			}
			references[key] = media
		}
		activeKey, err := getString(obj, "active_media_reference_key", path)
		if err != nil {
			return nil, err
		}
		if activeKey == "" {
			activeKey = timeline.DefaultMediaKey
		}
		if err := clip.SetMediaReferences(references, activeKey); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := applyItemFields(clip, obj, path); err != nil {
		return nil, err
	}
	return clip, nil
}

func decodeGap(obj map[string]any, path string) (*timeline.Gap, error) {
	name, err := getString(obj, "name", path)
	if err != nil {
		return nil, err
	}
	gap := timeline.NewGap(name, opentime.NewRationalTime(0, 1))
	gap.ClearSourceRange()
	if err := applyItemFields(gap, obj, path); err != nil {
		return nil, err
	}
	return gap, nil
}

func decodeChildrenInto(parent timeline.Composition, obj map[string]any, path string) error {
	children, err := getSlice(obj, "children", path)
	if err != nil {
		return err
	}
	for i, value := range children {
		childPath := fmt.Sprintf("%s.children[%d]", path, i)
		child, err := decodeComposable(value, childPath)
		if err != nil {
			return err
		}
		if err := parent.AppendChild(child); err != nil {
			return fmt.Errorf("%s: %w", childPath, err)
		}
	}
	return nil
}

func decodeTrack(obj map[string]any, path string) (*timeline.Track, error) {
	name, err := getString(obj, "name", path)
	if err != nil {
		return nil, err
	}
	kind, err := getString(obj, "kind", path)
	if err != nil {
		return nil, err
	}
	track := timeline.NewTrack(name, timeline.TrackKind(kind))
	if err := decodeChildrenInto(track, obj, path); err != nil {
		return nil, err
	}
	if err := applyItemFields(track, obj, path); err != nil {
		return nil, err
	}
	return track, nil
}

func decodeStack(obj map[string]any, path string) (*timeline.Stack, error) {
	name, err := getString(obj, "name", path)
	if err != nil {
		return nil, err
	}
	stack := timeline.NewStack(name)
	if err := decodeChildrenInto(stack, obj, path); err != nil {
		return nil, err
	}
	if err := applyItemFields(stack, obj, path); err != nil {
		return nil, err
	}
	return stack, nil
}

func decodeComposable(value any, path string) (timeline.Composable, error) {
	obj, name, err := schemaOf(value, path)
	if err != nil {
		return nil, err
	}
	switch name {
	case schemaClip:
		return decodeClip(obj, path)
	case schemaGap:
		return decodeGap(obj, path)
	case schemaTrack:
		return decodeTrack(obj, path)
	case schemaStack:
		return decodeStack(obj, path)
	default:
		return nil, fmt.Errorf("%s: schema %s cannot appear inside a composition", path, name)
	}
}

func decodeTimeline(obj map[string]any, path string) (*timeline.Timeline, error) {
	name, err := getString(obj, "name", path)
	if err != nil {
		return nil, err
	}
	tl := timeline.NewTimeline(name)
	if start, ok, err := decodeTimeField(obj, "global_start_time", path); err != nil {
		return nil, err
	} else if ok {
		tl.SetGlobalStartTime(start)
	}
	if tracksValue, ok := obj["tracks"]; ok && tracksValue != nil {
		tracksPath := path + ".tracks"
		tracksObj, schemaName, err := schemaOf(tracksValue, tracksPath)
		if err != nil {
			return nil, err
		}
		if schemaName != schemaStack {
			return nil, fmt.Errorf("%s: expected schema %s, got %s", tracksPath, schemaStack, schemaName)
		}
		tracks, err := decodeStack(tracksObj, tracksPath)
		if err != nil {
			return nil, err
		}
		tl.SetTracks(tracks)
	}
	if err := decodeMetadataInto(tl.Metadata(), obj, "metadata", path); err != nil {
		return nil, err
	}
	return tl, nil
}

// decodeRoot dispatches on the root object's schema. It returns the
// concrete decoded value: *timeline.Timeline, a Composable, a
// *Marker, an Effect, a MediaReference, or an opentime value.
func decodeRoot(value any) (any, error) {
	const path = "root"
	obj, name, err := schemaOf(value, path)
	if err != nil {
		return nil, err
	}
	switch name {
	case schemaTimeline:
		return decodeTimeline(obj, path)
	case schemaClip, schemaGap, schemaTrack, schemaStack:
		return decodeComposable(value, path)
	case schemaMarker:
		return decodeMarker(obj, path)
	case schemaEffect, schemaLinearTimeWarp, schemaFreezeFrame:
		return decodeEffect(obj, name, path)
	case schemaExternalReference, schemaMissingReference, schemaGeneratorReference:
		return decodeMediaReference(obj, name, path)
	case schemaRationalTime:
		return decodeTime(value, path)
	case schemaTimeRange:
		return decodeRange(value, path)
	case schemaTimeTransform:
		return decodeTransform(obj, path)
	default:
		return nil, fmt.Errorf("%s: schema %s cannot stand alone", path, name)
	}
}
