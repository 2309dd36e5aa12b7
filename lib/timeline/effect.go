// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package timeline

// Effect names a processing step applied to an item. The effect name
// identifies the operation to downstream tools; parameters travel in
// metadata. Montage carries effects through documents and queries but
// does not apply them.
//
// Concrete effects are [*BasicEffect], [*LinearTimeWarp], and
// [*FreezeFrame].
type Effect interface {
	Name() string
	SetName(name string)
	// EffectName identifies the operation, e.g. "Blur" or
	// "LinearTimeWarp".
	EffectName() string
	Metadata() map[string]any
}

type effectCore struct {
	name       string
	effectName string
	metadata   map[string]any
}

func (e *effectCore) Name() string        { return e.name }
func (e *effectCore) SetName(name string) { e.name = name }

func (e *effectCore) EffectName() string { return e.effectName }

func (e *effectCore) Metadata() map[string]any {
	if e.metadata == nil {
		e.metadata = make(map[string]any)
	}
	return e.metadata
}

// BasicEffect is an effect with no typed parameters beyond its
// operation name and metadata.
type BasicEffect struct {
	effectCore
}

// NewEffect creates a basic effect. name labels this instance,
// effectName identifies the operation.
func NewEffect(name, effectName string) *BasicEffect {
	return &BasicEffect{effectCore{name: name, effectName: effectName}}
}

// SetEffectName replaces the operation identifier.
func (e *BasicEffect) SetEffectName(effectName string) { e.effectName = effectName }

// LinearTimeWarp is an effect that retimes its item by a constant
// factor: 2 plays double speed, 0.5 half speed, -1 reverse.
type LinearTimeWarp struct {
	effectCore
	timeScalar float64
}

// NewLinearTimeWarp creates a retime effect with the given speed
// factor.
func NewLinearTimeWarp(name string, timeScalar float64) *LinearTimeWarp {
	return &LinearTimeWarp{
		effectCore: effectCore{name: name, effectName: "LinearTimeWarp"},
		timeScalar: timeScalar,
	}
}

// TimeScalar returns the speed factor.
func (w *LinearTimeWarp) TimeScalar() float64              { return w.timeScalar }
func (w *LinearTimeWarp) SetTimeScalar(timeScalar float64) { w.timeScalar = timeScalar }

// FreezeFrame is a retime that holds a single frame: a time scalar
// of zero.
type FreezeFrame struct {
	LinearTimeWarp
}

// NewFreezeFrame creates a hold-frame effect.
func NewFreezeFrame(name string) *FreezeFrame {
	return &FreezeFrame{LinearTimeWarp{
		effectCore: effectCore{name: name, effectName: "FreezeFrame"},
		timeScalar: 0,
	}}
}
