// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"sync/atomic"
)

var uniqueCounter atomic.Uint64

// UniqueID returns a string of the form "prefix-N" where N is a
// monotonically increasing integer. Use this instead of time.Now()
// when parallel tests need distinct document or bundle names inside a
// shared directory.
//
//	name := testutil.UniqueID("cut")    // "cut-1", "cut-2", ...
//	tag := testutil.UniqueID("bundle")  // "bundle-3", ...
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, uniqueCounter.Add(1))
}
