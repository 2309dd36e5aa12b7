// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

// Package inspect implements the read-only document views: "montage
// inspect" (hierarchy tree), "montage stat" (summary counts), and
// "montage cat" (highlighted document source and notes).
//
// All three accept .mtl (JSON, with comments), and .mtlb (binary)
// documents.
package inspect

import (
	"os"

	"golang.org/x/term"

	"github.com/montage-foundation/montage/lib/config"
	"github.com/montage-foundation/montage/lib/timelineui"
)

// fallbackWidth is the render width when stdout is not a terminal
// and no --width was given.
const fallbackWidth = 100

// displayWidth resolves the render width: the flag when set, the
// terminal width when stdout is a TTY, fallbackWidth otherwise.
func displayWidth(flagWidth int) int {
	if flagWidth > 0 {
		return flagWidth
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return fallbackWidth
}

// displayTheme resolves the color theme from configuration. Unknown
// names and config errors fall back to the default theme; rendering
// should not fail over a cosmetic setting.
func displayTheme() timelineui.Theme {
	cfg, err := config.Load()
	if err != nil {
		return timelineui.DefaultTheme
	}
	if theme, ok := timelineui.ThemeNamed(cfg.Theme); ok {
		return theme
	}
	return timelineui.DefaultTheme
}
