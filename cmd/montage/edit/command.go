// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

// Package edit implements the commands that produce documents:
// "montage new" (scaffold), "montage convert" (format conversion),
// "montage trim" (cut a timeline to a range), and "montage flatten"
// (collapse video layers into one track).
package edit

import (
	"fmt"
	"path/filepath"

	"github.com/montage-foundation/montage/lib/document"
	"github.com/montage-foundation/montage/lib/timeline"
)

// ensureDocumentPath rejects paths whose extension is not a known
// document form before anything is written.
func ensureDocumentPath(path string) error {
	switch filepath.Ext(path) {
	case document.ExtDocument, document.ExtBinary:
		return nil
	}
	return fmt.Errorf("unsupported document extension %q: expected %s or %s",
		filepath.Ext(path), document.ExtDocument, document.ExtBinary)
}

// documentRate is the frame rate command-line times parse at: the
// rate of the global start time when set, else the rate of the
// timeline's duration, else 24.
func documentRate(t *timeline.Timeline) float64 {
	if start, ok := t.GlobalStartTime(); ok && start.Rate() > 0 {
		return start.Rate()
	}
	if duration, err := t.Duration(); err == nil && duration.Rate() > 0 {
		return duration.Rate()
	}
	return 24
}
