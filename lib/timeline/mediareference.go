// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package timeline

import "github.com/montage-foundation/montage/lib/opentime"

// MediaReference points a clip at its material. Concrete references
// are [*ExternalReference] (a URL), [*MissingReference] (material
// known to be absent), and [*GeneratorReference] (synthesized
// material such as bars or black).
type MediaReference interface {
	Name() string
	SetName(name string)
	Metadata() map[string]any

	// AvailableRange returns the range of material the reference can
	// supply, when known.
	AvailableRange() (opentime.TimeRange, bool)
	// SetAvailableRange declares the supplied range.
	SetAvailableRange(r opentime.TimeRange)
	// ClearAvailableRange marks the supplied range unknown.
	ClearAvailableRange()
}

type mediaReferenceCore struct {
	name              string
	metadata          map[string]any
	availableRange    opentime.TimeRange
	hasAvailableRange bool
}

func (mr *mediaReferenceCore) Name() string        { return mr.name }
func (mr *mediaReferenceCore) SetName(name string) { mr.name = name }

func (mr *mediaReferenceCore) Metadata() map[string]any {
	if mr.metadata == nil {
		mr.metadata = make(map[string]any)
	}
	return mr.metadata
}

func (mr *mediaReferenceCore) AvailableRange() (opentime.TimeRange, bool) {
	return mr.availableRange, mr.hasAvailableRange
}

func (mr *mediaReferenceCore) SetAvailableRange(r opentime.TimeRange) {
	mr.availableRange = r
	mr.hasAvailableRange = true
}

func (mr *mediaReferenceCore) ClearAvailableRange() {
	mr.availableRange = opentime.TimeRange{}
	mr.hasAvailableRange = false
}

// ExternalReference is media addressed by URL. File URLs ("file://"
// or bare paths) are what bundling and the media catalog resolve.
type ExternalReference struct {
	mediaReferenceCore
	targetURL string
}

// NewExternalReference creates a reference to the given URL.
func NewExternalReference(targetURL string) *ExternalReference {
	return &ExternalReference{targetURL: targetURL}
}

// TargetURL returns the media location.
func (r *ExternalReference) TargetURL() string             { return r.targetURL }
func (r *ExternalReference) SetTargetURL(targetURL string) { r.targetURL = targetURL }

// MissingReference marks media that is known to be absent: the clip
// keeps its timing but nothing backs it.
type MissingReference struct {
	mediaReferenceCore
}

// NewMissingReference creates a placeholder reference.
func NewMissingReference() *MissingReference {
	return &MissingReference{}
}

// GeneratorReference is synthesized media: color bars, black, tone.
// The generator kind and parameters are interpreted by downstream
// tools.
type GeneratorReference struct {
	mediaReferenceCore
	generatorKind string
	parameters    map[string]any
}

// NewGeneratorReference creates a reference to synthesized material
// of the given kind.
func NewGeneratorReference(name, generatorKind string) *GeneratorReference {
	g := &GeneratorReference{generatorKind: generatorKind}
	g.name = name
	return g
}

// GeneratorKind identifies what to synthesize, e.g. "SMPTEBars".
func (r *GeneratorReference) GeneratorKind() string { return r.generatorKind }

func (r *GeneratorReference) SetGeneratorKind(generatorKind string) {
	r.generatorKind = generatorKind
}

// Parameters returns the generator's parameter map, allocating it on
// first use.
func (r *GeneratorReference) Parameters() map[string]any {
	if r.parameters == nil {
		r.parameters = make(map[string]any)
	}
	return r.parameters
}
