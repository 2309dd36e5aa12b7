// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package timelineui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// styleRenderer is pinned to the ANSI256 profile. Output always
// targets a terminal (direct CLI output or a bubbletea viewport), and
// auto-detection would strip all color when stdout is not a TTY, as
// in tests and pipes. SetColorProfile is needed on top of the termenv
// option because lipgloss re-detects from the environment otherwise.
var styleRenderer = func() *lipgloss.Renderer {
	renderer := lipgloss.NewRenderer(os.Stderr, termenv.WithProfile(termenv.ANSI256))
	renderer.SetColorProfile(termenv.ANSI256)
	return renderer
}()

// newStyle returns an empty style bound to the pinned renderer.
func newStyle() lipgloss.Style {
	return styleRenderer.NewStyle()
}
