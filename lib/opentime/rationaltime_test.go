// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package opentime

import (
	"encoding/json"
	"math"
	"testing"
)

func TestRationalTimeValidity(t *testing.T) {
	tests := []struct {
		name string
		time RationalTime
		want bool
	}{
		{"whole frame", NewRationalTime(86400, 24), true},
		{"zero samples at real rate", NewRationalTime(0, 24), true},
		{"negative value", NewRationalTime(-12, 24), true},
		{"zero value (unset)", RationalTime{}, false},
		{"zero rate", NewRationalTime(5, 0), false},
		{"negative rate", NewRationalTime(5, -24), false},
		{"nan value", NewRationalTime(math.NaN(), 24), false},
		{"infinite rate", NewRationalTime(5, math.Inf(1)), false},
	}
	for _, test := range tests {
		if got := test.time.IsValid(); got != test.want {
			t.Errorf("%s: IsValid() = %v, want %v", test.name, got, test.want)
		}
	}

	if !(RationalTime{}).IsZero() {
		t.Error("zero value should be IsZero()")
	}
	if NewRationalTime(0, 24).IsZero() {
		t.Error("0 samples at 24 fps is a real time, not IsZero()")
	}
}

func TestRationalTimeRescale(t *testing.T) {
	oneSecond := NewRationalTime(24, 24)

	at48 := oneSecond.RescaledTo(48)
	if at48.Value() != 48 || at48.Rate() != 48 {
		t.Errorf("RescaledTo(48) = %s, want 48/48", at48)
	}
	if !at48.Equal(oneSecond) {
		t.Error("rescaling must preserve the instant")
	}
	if got := oneSecond.ValueRescaledTo(12); got != 12 {
		t.Errorf("ValueRescaledTo(12) = %v, want 12", got)
	}
}

func TestRationalTimeArithmetic(t *testing.T) {
	// Mixed-rate addition carries the result at the finer rate.
	sum := NewRationalTime(1, 24).Add(NewRationalTime(2, 48))
	if sum.Rate() != 48 {
		t.Fatalf("Add result rate = %v, want 48", sum.Rate())
	}
	if sum.Value() != 4 {
		t.Errorf("1/24 + 2/48 = %s, want 4/48", sum)
	}

	difference := NewRationalTime(4, 48).Sub(NewRationalTime(1, 24))
	if !difference.Equal(NewRationalTime(2, 48)) {
		t.Errorf("4/48 - 1/24 = %s, want 2/48", difference)
	}

	if got := NewRationalTime(3, 24).Neg(); got.Value() != -3 {
		t.Errorf("Neg = %s, want -3/24", got)
	}
}

func TestRationalTimeComparison(t *testing.T) {
	tests := []struct {
		a, b RationalTime
		want int
	}{
		{NewRationalTime(12, 24), NewRationalTime(12, 24), 0},
		// Same instant at different rates.
		{NewRationalTime(12, 24), NewRationalTime(24, 48), 0},
		{NewRationalTime(11, 24), NewRationalTime(12, 24), -1},
		{NewRationalTime(13, 24), NewRationalTime(24, 48), 1},
		{NewRationalTime(-1, 24), NewRationalTime(0, 24), -1},
	}
	for _, test := range tests {
		if got := test.a.Cmp(test.b); got != test.want {
			t.Errorf("Cmp(%s, %s) = %d, want %d", test.a, test.b, got, test.want)
		}
	}

	if !NewRationalTime(11, 24).Before(NewRationalTime(12, 24)) {
		t.Error("11/24 should be Before 12/24")
	}
	if NewRationalTime(12, 24).Before(NewRationalTime(12, 24)) {
		t.Error("a time is not Before itself")
	}
	if !NewRationalTime(1, 30).AlmostEqual(NewRationalTime(1, 30.000001), 1e-6) {
		t.Error("AlmostEqual should tolerate sub-delta drift")
	}
}

func TestRationalTimeSnapping(t *testing.T) {
	fractional := NewRationalTime(10.6, 24)
	if got := fractional.Floor().Value(); got != 10 {
		t.Errorf("Floor = %v, want 10", got)
	}
	if got := fractional.Ceil().Value(); got != 11 {
		t.Errorf("Ceil = %v, want 11", got)
	}
	if got := fractional.Round().Value(); got != 11 {
		t.Errorf("Round = %v, want 11", got)
	}
	if got := NewRationalTime(10.4, 24).Round().Value(); got != 10 {
		t.Errorf("Round(10.4) = %v, want 10", got)
	}
	if got := fractional.ToFrames(); got != 10 {
		t.Errorf("ToFrames = %v, want 10 (truncation)", got)
	}
}

func TestRationalTimeSeconds(t *testing.T) {
	half := FromSeconds(0.5, 48)
	if half.Value() != 24 || half.Rate() != 48 {
		t.Errorf("FromSeconds(0.5, 48) = %s, want 24/48", half)
	}
	if got := half.ToSeconds(); got != 0.5 {
		t.Errorf("ToSeconds = %v, want 0.5", got)
	}
	if got := FromFrames(100, 25); got.Value() != 100 || got.Rate() != 25 {
		t.Errorf("FromFrames(100, 25) = %s, want 100/25", got)
	}
}

func TestRationalTimeTextForm(t *testing.T) {
	tests := []struct {
		time RationalTime
		want string
	}{
		{NewRationalTime(86400, 24), "86400/24"},
		{NewRationalTime(0, 24), "0/24"},
		{NewRationalTime(-12, 24), "-12/24"},
		{NewRationalTime(0.5, 29.97), "0.5/29.97"},
		{RationalTime{}, "0/0"},
	}
	for _, test := range tests {
		if got := test.time.String(); got != test.want {
			t.Errorf("String(%v) = %q, want %q", test.time, got, test.want)
		}
		parsed, err := ParseRationalTime(test.want)
		if err != nil {
			t.Fatalf("ParseRationalTime(%q): %v", test.want, err)
		}
		if parsed != test.time {
			t.Errorf("round-trip of %q = %v, want %v", test.want, parsed, test.time)
		}
	}

	// JSON embedding via the text form.
	type wrapper struct {
		Start RationalTime `json:"start"`
	}
	data, err := json.Marshal(wrapper{Start: NewRationalTime(72, 24)})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"start":"72/24"}` {
		t.Errorf("Marshal = %s, want {\"start\":\"72/24\"}", data)
	}
	var decoded wrapper
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !decoded.Start.Equal(NewRationalTime(72, 24)) {
		t.Errorf("round-trip = %s, want 72/24", decoded.Start)
	}
}

func TestParseRationalTimeErrors(t *testing.T) {
	for _, input := range []string{"", "24", "a/24", "24/b", "1/2/3"} {
		if _, err := ParseRationalTime(input); err == nil {
			t.Errorf("ParseRationalTime(%q): want error", input)
		}
	}
}
