// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package timeline

import "github.com/montage-foundation/montage/lib/opentime"

// keyFunc extracts the ordering key for one node during a bisection.
// Keys must be monotone non-decreasing over the searched slice; the
// search does not verify this.
type keyFunc func(Composable) (opentime.RationalTime, error)

// checkSearchBounds validates an explicit [lower, upper] search
// window against the slice length. Passing 0 and len(seq) searches
// the whole slice.
func checkSearchBounds(op string, length, lower, upper int) error {
	if lower < 0 {
		return invalidArgument(op, "lower search bound %d must be non-negative", lower)
	}
	if upper > length {
		return invalidArgument(op, "upper search bound %d exceeds length %d", upper, length)
	}
	if upper < lower {
		return invalidArgument(op, "search bounds [%d, %d] are inverted", lower, upper)
	}
	return nil
}

// bisectRight returns the insertion index for target within
// seq[lower:upper]: the first index whose key is strictly greater
// than target, so equal keys land after their run. On error the
// returned index is 0.
func bisectRight(seq []Composable, target opentime.RationalTime, key keyFunc, lower, upper int) (int, error) {
	if err := checkSearchBounds("bisect-right", len(seq), lower, upper); err != nil {
		return 0, err
	}
	for lower < upper {
		mid := int(uint(lower+upper) >> 1)
		keyValue, err := key(seq[mid])
		if err != nil {
			return 0, err
		}
		if target.Before(keyValue) {
			upper = mid
		} else {
			lower = mid + 1
		}
	}
	return lower, nil
}

// bisectLeft returns the insertion index for target within
// seq[lower:upper]: the first index whose key is greater than or
// equal to target, so equal keys land before their run. On error the
// returned index is 0.
func bisectLeft(seq []Composable, target opentime.RationalTime, key keyFunc, lower, upper int) (int, error) {
	if err := checkSearchBounds("bisect-left", len(seq), lower, upper); err != nil {
		return 0, err
	}
	for lower < upper {
		mid := int(uint(lower+upper) >> 1)
		keyValue, err := key(seq[mid])
		if err != nil {
			return 0, err
		}
		if keyValue.Before(target) {
			lower = mid + 1
		} else {
			upper = mid
		}
	}
	return lower, nil
}
