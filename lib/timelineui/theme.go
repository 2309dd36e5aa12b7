// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package timelineui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/montage-foundation/montage/lib/timeline"
)

// Theme defines the color palette for Montage's terminal views. All
// colors use lipgloss ANSI 256-color codes for broad terminal
// compatibility.
//
// The fields cover universal chrome (text, selection, borders) and the
// editorial roles that recur across views: track labels by kind, clip
// boxes, gap dashes, and marker colors keyed by the document's marker
// color names.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Selected row or clip in the interactive viewer.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// Track label colors by kind.
	VideoTrack lipgloss.Color
	AudioTrack lipgloss.Color

	// Lane contents.
	ClipBox  lipgloss.Color // Clip box text and brackets.
	GapDash  lipgloss.Color // Dashes filling gap spans.
	StackBox lipgloss.Color // Nested stack boxes in lanes.

	// Marker colors keyed by the document marker color name. Names
	// absent from the map fall back to FaintText via [Theme.MarkerColor].
	MarkerColors map[timeline.MarkerColor]lipgloss.Color

	// UI chrome.
	HeaderForeground   lipgloss.Color
	BorderColor        lipgloss.Color
	FocusedBorderColor lipgloss.Color // Border of the focused viewer pane.
	HelpText           lipgloss.Color

	// Fuzzy match highlighting.
	SearchHighlightBackground lipgloss.Color // Background tint for matched characters.
	SearchCurrentBackground   lipgloss.Color // Background for the current match.

	// Inline links in rendered notes.
	LinkForeground lipgloss.Color
}

// TrackColor returns the label color for a track kind. Kinds other
// than video and audio return NormalText.
func (theme Theme) TrackColor(kind timeline.TrackKind) lipgloss.Color {
	switch kind {
	case timeline.TrackKindVideo:
		return theme.VideoTrack
	case timeline.TrackKindAudio:
		return theme.AudioTrack
	default:
		return theme.NormalText
	}
}

// MarkerColor returns the terminal color for a document marker color
// name. Unknown names return FaintText.
func (theme Theme) MarkerColor(color timeline.MarkerColor) lipgloss.Color {
	if ansiColor, ok := theme.MarkerColors[color]; ok {
		return ansiColor
	}
	return theme.FaintText
}

// DefaultTheme is the built-in dark-terminal color scheme, registered
// under the name "montage". Designed for 256-color terminals with a
// dark background.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	VideoTrack: lipgloss.Color("75"),  // blue
	AudioTrack: lipgloss.Color("114"), // green

	ClipBox:  lipgloss.Color("252"),
	GapDash:  lipgloss.Color("240"),
	StackBox: lipgloss.Color("141"), // light purple

	MarkerColors: map[timeline.MarkerColor]lipgloss.Color{
		timeline.MarkerColorPink:    lipgloss.Color("218"),
		timeline.MarkerColorRed:     lipgloss.Color("196"),
		timeline.MarkerColorOrange:  lipgloss.Color("208"),
		timeline.MarkerColorYellow:  lipgloss.Color("220"),
		timeline.MarkerColorGreen:   lipgloss.Color("114"),
		timeline.MarkerColorCyan:    lipgloss.Color("51"),
		timeline.MarkerColorBlue:    lipgloss.Color("75"),
		timeline.MarkerColorPurple:  lipgloss.Color("141"),
		timeline.MarkerColorMagenta: lipgloss.Color("201"),
		timeline.MarkerColorBlack:   lipgloss.Color("240"),
		timeline.MarkerColorWhite:   lipgloss.Color("255"),
	},

	HeaderForeground:   lipgloss.Color("255"),
	BorderColor:        lipgloss.Color("240"),
	FocusedBorderColor: lipgloss.Color("75"),
	HelpText:           lipgloss.Color("241"),

	SearchHighlightBackground: lipgloss.Color("58"),  // dark amber
	SearchCurrentBackground:   lipgloss.Color("100"), // brighter amber

	LinkForeground: lipgloss.Color("75"),
}

// HighContrastTheme trades the muted defaults for maximum legibility
// on washed-out displays and projectors. Registered under the name
// "high-contrast".
var HighContrastTheme = Theme{
	NormalText: lipgloss.Color("255"),
	FaintText:  lipgloss.Color("250"),

	SelectedBackground: lipgloss.Color("255"),
	SelectedForeground: lipgloss.Color("16"),

	VideoTrack: lipgloss.Color("39"),
	AudioTrack: lipgloss.Color("46"),

	ClipBox:  lipgloss.Color("255"),
	GapDash:  lipgloss.Color("244"),
	StackBox: lipgloss.Color("177"),

	MarkerColors: map[timeline.MarkerColor]lipgloss.Color{
		timeline.MarkerColorPink:    lipgloss.Color("213"),
		timeline.MarkerColorRed:     lipgloss.Color("196"),
		timeline.MarkerColorOrange:  lipgloss.Color("214"),
		timeline.MarkerColorYellow:  lipgloss.Color("226"),
		timeline.MarkerColorGreen:   lipgloss.Color("46"),
		timeline.MarkerColorCyan:    lipgloss.Color("51"),
		timeline.MarkerColorBlue:    lipgloss.Color("39"),
		timeline.MarkerColorPurple:  lipgloss.Color("177"),
		timeline.MarkerColorMagenta: lipgloss.Color("201"),
		timeline.MarkerColorBlack:   lipgloss.Color("244"),
		timeline.MarkerColorWhite:   lipgloss.Color("231"),
	},

	HeaderForeground:   lipgloss.Color("231"),
	BorderColor:        lipgloss.Color("250"),
	FocusedBorderColor: lipgloss.Color("39"),
	HelpText:           lipgloss.Color("250"),

	SearchHighlightBackground: lipgloss.Color("100"),
	SearchCurrentBackground:   lipgloss.Color("142"),

	LinkForeground: lipgloss.Color("39"),
}

// ThemeNamed looks up a built-in theme by the name used in the config
// file. The empty name selects the default. The boolean is false when
// the name is unknown; callers typically fall back to [DefaultTheme]
// and warn.
func ThemeNamed(name string) (Theme, bool) {
	switch name {
	case "", "montage":
		return DefaultTheme, true
	case "high-contrast":
		return HighContrastTheme, true
	default:
		return Theme{}, false
	}
}
