// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package timelineui

import (
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

// HighlightSource renders source text with ANSI syntax highlighting
// for the given chroma language name ("json", "yaml"). When
// highlighting fails the source comes back unchanged, so callers can
// always print the result.
func HighlightSource(source, language string) string {
	var highlighted strings.Builder
	if err := quick.Highlight(&highlighted, source, language, "terminal256", "monokai"); err != nil {
		return source
	}
	return highlighted.String()
}
