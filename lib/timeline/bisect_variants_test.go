// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package timeline

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/montage-foundation/montage/lib/opentime"
)

// Tuned bisection variants. The production code uses the plain scalar
// form in bisect.go; these exist to keep it honest. Both must return
// the same index as the reference for every input, which the grid
// test below checks before the benchmarks compare their speed.

// bisectRightMonobound is the offset form: the window is a base plus
// a shrinking span, the span halves unconditionally, and only the
// base update depends on the probe.
func bisectRightMonobound(seq []Composable, target opentime.RationalTime, key keyFunc, lower, upper int) (int, error) {
	if err := checkSearchBounds("bisect-right", len(seq), lower, upper); err != nil {
		return 0, err
	}
	base := lower
	span := upper - lower
	for span > 0 {
		half := span >> 1
		keyValue, err := key(seq[base+half])
		if err != nil {
			return 0, err
		}
		if !target.Before(keyValue) {
			base += span - half
		}
		span = half
	}
	return base, nil
}

// bisectRightUnrolled is the offset form with four halvings per
// iteration. A span of at least 8 guarantees the span is still
// positive at the fourth probe, so the unrolled body needs no
// interior emptiness checks.
func bisectRightUnrolled(seq []Composable, target opentime.RationalTime, key keyFunc, lower, upper int) (int, error) {
	if err := checkSearchBounds("bisect-right", len(seq), lower, upper); err != nil {
		return 0, err
	}
	base := lower
	span := upper - lower
	for span >= 8 {
		half := span >> 1
		keyValue, err := key(seq[base+half])
		if err != nil {
			return 0, err
		}
		if !target.Before(keyValue) {
			base += span - half
		}
		span = half

		half = span >> 1
		keyValue, err = key(seq[base+half])
		if err != nil {
			return 0, err
		}
		if !target.Before(keyValue) {
			base += span - half
		}
		span = half

		half = span >> 1
		keyValue, err = key(seq[base+half])
		if err != nil {
			return 0, err
		}
		if !target.Before(keyValue) {
			base += span - half
		}
		span = half

		half = span >> 1
		keyValue, err = key(seq[base+half])
		if err != nil {
			return 0, err
		}
		if !target.Before(keyValue) {
			base += span - half
		}
		span = half
	}
	for span > 0 {
		half := span >> 1
		keyValue, err := key(seq[base+half])
		if err != nil {
			return 0, err
		}
		if !target.Before(keyValue) {
			base += span - half
		}
		span = half
	}
	return base, nil
}

// --- Equivalence grid ---

// linearInsertionRight is the O(n) oracle: the first index whose key
// sorts strictly after the target.
func linearInsertionRight(t *testing.T, seq []Composable, target opentime.RationalTime) int {
	t.Helper()
	for i, node := range seq {
		keyValue, err := durationKey(node)
		if err != nil {
			t.Fatalf("key for oracle: %v", err)
		}
		if target.Before(keyValue) {
			return i
		}
	}
	return len(seq)
}

// targetGrid returns probes covering every key, points between
// adjacent keys, and points outside the key range.
func targetGrid(seq []Composable) []opentime.RationalTime {
	targets := []opentime.RationalTime{at24(-10)}
	for _, node := range seq {
		keyValue, _ := durationKey(node)
		targets = append(targets,
			keyValue.Sub(at24(0.5)),
			keyValue,
			keyValue.Add(at24(0.5)),
		)
	}
	var top float64
	if len(seq) > 0 {
		last, _ := durationKey(seq[len(seq)-1])
		top = last.Value()
	}
	return append(targets, at24(top+10))
}

// gridSequences builds the shared grid: the structured shapes plus
// sorted random key sets of increasing size. Random keys come from a
// fixed seed and include runs of equals (zero-sized steps).
func gridSequences() map[string][]Composable {
	sequences := map[string][]Composable{
		"empty":       nil,
		"single":      gapSeq(5),
		"all equal":   gapSeq(3, 3, 3, 3, 3, 3, 3),
		"increasing":  gapSeq(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16),
		"equal runs":  gapSeq(1, 1, 2, 2, 2, 8, 8, 9),
		"two element": gapSeq(4, 9),
	}
	rng := rand.New(rand.NewSource(1))
	for _, size := range []int{8, 64, 512, 4096, 8192} {
		values := make([]float64, size)
		var total float64
		for i := range values {
			total += float64(rng.Intn(4))
			values[i] = total
		}
		sequences[fmt.Sprintf("sorted random %d", size)] = gapSeq(values...)
	}
	return sequences
}

func TestBisectRightVariantsMatchReference(t *testing.T) {
	for name, seq := range gridSequences() {
		t.Run(name, func(t *testing.T) {
			for _, target := range targetGrid(seq) {
				want, err := bisectRight(seq, target, durationKey, 0, len(seq))
				if err != nil {
					t.Fatalf("reference bisectRight(%v): %v", target, err)
				}

				// The linear oracle is quadratic over the grid, so it
				// only backs the small shapes; the large random sets
				// check the variants against the reference.
				if len(seq) <= 64 {
					if oracle := linearInsertionRight(t, seq, target); want != oracle {
						t.Fatalf("bisectRight(%v) = %d, oracle %d", target, want, oracle)
					}
				}

				got, err := bisectRightMonobound(seq, target, durationKey, 0, len(seq))
				if err != nil {
					t.Fatalf("bisectRightMonobound(%v): %v", target, err)
				}
				if got != want {
					t.Errorf("bisectRightMonobound(%v) = %d, reference %d", target, got, want)
				}

				got, err = bisectRightUnrolled(seq, target, durationKey, 0, len(seq))
				if err != nil {
					t.Fatalf("bisectRightUnrolled(%v): %v", target, err)
				}
				if got != want {
					t.Errorf("bisectRightUnrolled(%v) = %d, reference %d", target, got, want)
				}
			}
		})
	}
}

func TestBisectRightVariantsWindowed(t *testing.T) {
	seq := gapSeq(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12)

	for lower := 0; lower <= len(seq); lower++ {
		for upper := lower; upper <= len(seq); upper++ {
			for _, target := range targetGrid(seq) {
				want, err := bisectRight(seq, target, durationKey, lower, upper)
				if err != nil {
					t.Fatalf("reference [%d, %d) target %v: %v", lower, upper, target, err)
				}
				got, err := bisectRightMonobound(seq, target, durationKey, lower, upper)
				if err != nil {
					t.Fatalf("monobound [%d, %d) target %v: %v", lower, upper, target, err)
				}
				if got != want {
					t.Errorf("monobound [%d, %d) target %v = %d, reference %d", lower, upper, target, got, want)
				}
				got, err = bisectRightUnrolled(seq, target, durationKey, lower, upper)
				if err != nil {
					t.Fatalf("unrolled [%d, %d) target %v: %v", lower, upper, target, err)
				}
				if got != want {
					t.Errorf("unrolled [%d, %d) target %v = %d, reference %d", lower, upper, target, got, want)
				}
			}
		}
	}
}

// --- Benchmarks ---

func benchmarkBisect(b *testing.B, search func([]Composable, opentime.RationalTime, keyFunc, int, int) (int, error)) {
	rng := rand.New(rand.NewSource(7))
	for _, size := range []int{8, 64, 512, 4096, 8192} {
		values := make([]float64, size)
		var total float64
		for i := range values {
			total += float64(rng.Intn(4) + 1)
			values[i] = total
		}
		seq := gapSeq(values...)
		targets := make([]opentime.RationalTime, 256)
		for i := range targets {
			targets[i] = at24(rng.Float64() * total)
		}

		b.Run(fmt.Sprintf("n=%d", size), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				target := targets[i%len(targets)]
				if _, err := search(seq, target, durationKey, 0, len(seq)); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkBisectRight(b *testing.B)          { benchmarkBisect(b, bisectRight) }
func BenchmarkBisectRightMonobound(b *testing.B) { benchmarkBisect(b, bisectRightMonobound) }
func BenchmarkBisectRightUnrolled(b *testing.B)  { benchmarkBisect(b, bisectRightUnrolled) }
