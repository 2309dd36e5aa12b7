// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package timeline

import "github.com/montage-foundation/montage/lib/opentime"

// DefaultMediaKey is the key of a clip's initial media reference.
const DefaultMediaKey = "DEFAULT_MEDIA"

// Clip is a leaf item presenting a span of media. A clip holds one or
// more media references keyed by name (proxy, online, ...) with one
// key active at a time; its available range comes from the active
// reference.
type Clip struct {
	itemCore
	mediaReferences map[string]MediaReference
	activeMediaKey  string
}

// NewClip creates a clip around the given media reference, stored
// under [DefaultMediaKey]. A nil media reference becomes a
// MissingReference.
func NewClip(name string, media MediaReference) *Clip {
	if media == nil {
		media = NewMissingReference()
	}
	return &Clip{
		itemCore:        newItemCore(name),
		mediaReferences: map[string]MediaReference{DefaultMediaKey: media},
		activeMediaKey:  DefaultMediaKey,
	}
}

// MediaReference returns the active media reference.
func (c *Clip) MediaReference() MediaReference {
	return c.mediaReferences[c.activeMediaKey]
}

// SetMediaReference replaces the reference under the active key. A
// nil reference becomes a MissingReference.
func (c *Clip) SetMediaReference(media MediaReference) {
	if media == nil {
		media = NewMissingReference()
	}
	c.mediaReferences[c.activeMediaKey] = media
}

// MediaReferences returns a copy of the key-to-reference map.
func (c *Clip) MediaReferences() map[string]MediaReference {
	references := make(map[string]MediaReference, len(c.mediaReferences))
	for key, media := range c.mediaReferences {
		references[key] = media
	}
	return references
}

// SetMediaReferences replaces the whole reference map and selects the
// active key, which must be present in the map.
func (c *Clip) SetMediaReferences(references map[string]MediaReference, activeKey string) error {
	const op = "set-media-references"
	if len(references) == 0 {
		return invalidArgument(op, "at least one media reference is required")
	}
	if _, ok := references[activeKey]; !ok {
		return notFound(op, "active key %q is not in the reference map", activeKey)
	}
	replacement := make(map[string]MediaReference, len(references))
	for key, media := range references {
		if key == "" {
			return invalidArgument(op, "media reference keys must not be empty")
		}
		if media == nil {
			return invalidArgument(op, "media reference %q must not be nil", key)
		}
		replacement[key] = media
	}
	c.mediaReferences = replacement
	c.activeMediaKey = activeKey
	return nil
}

// ActiveMediaKey returns the key of the active reference.
func (c *Clip) ActiveMediaKey() string { return c.activeMediaKey }

// SetActiveMediaKey switches the active reference to an existing key.
func (c *Clip) SetActiveMediaKey(key string) error {
	if _, ok := c.mediaReferences[key]; !ok {
		return notFound("set-active-media-key", "no media reference under key %q", key)
	}
	c.activeMediaKey = key
	return nil
}

// AvailableRange returns the active media reference's available
// range. A reference that does not declare one makes the clip's
// duration uncomputable.
func (c *Clip) AvailableRange() (opentime.TimeRange, error) {
	media := c.MediaReference()
	if media == nil {
		return opentime.TimeRange{}, cannotComputeRange("available-range", "clip %q has no media reference", c.name)
	}
	r, ok := media.AvailableRange()
	if !ok {
		return opentime.TimeRange{}, cannotComputeRange("available-range", "media reference of clip %q declares no available range", c.name)
	}
	return r, nil
}

// TrimmedRange returns the source range when set, otherwise the
// available range.
func (c *Clip) TrimmedRange() (opentime.TimeRange, error) { return trimmedRange(c) }

// Duration returns the length of the trimmed range.
func (c *Clip) Duration() (opentime.RationalTime, error) { return itemDuration(c) }
