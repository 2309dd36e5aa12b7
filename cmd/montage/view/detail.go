// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package view

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/montage-foundation/montage/lib/opentime"
	"github.com/montage-foundation/montage/lib/timeline"
	"github.com/montage-foundation/montage/lib/timelineui"
)

// renderDetail builds the detail pane content for the selected node:
// its editorial ranges, media reference, markers, effects, and notes.
// Marker comments and "notes" metadata are markdown and render styled
// at the pane width.
func renderDetail(node timeline.Item, t *timeline.Timeline, theme timelineui.Theme, width int) string {
	if width < 20 {
		width = 20
	}

	faint := lipgloss.NewStyle().Foreground(theme.FaintText)
	normal := lipgloss.NewStyle().Foreground(theme.NormalText)
	heading := lipgloss.NewStyle().Bold(true).Foreground(theme.HeaderForeground)

	var lines []string
	row := func(label, value string) {
		lines = append(lines, faint.Render(fmt.Sprintf("%-11s", label))+" "+normal.Render(value))
	}
	section := func(title string) {
		lines = append(lines, "", heading.Render(title))
	}

	// Title line: name and kind, with the disabled state folded into
	// the kind text the way the tree rows show it.
	kind, nameColor := nodeKind(node, theme)
	if !node.Enabled() {
		kind = strings.TrimSuffix(kind, ")") + ", disabled)"
	}
	name := node.Name()
	if name == "" {
		name = "(unnamed)"
	}
	title := lipgloss.NewStyle().Bold(true).Foreground(nameColor).Render(name)
	lines = append(lines, title+" "+faint.Render(kind))
	lines = append(lines, "")

	if duration, err := node.Duration(); err == nil {
		row("duration", fmt.Sprintf("+%.1fs  (%g frames @ %g fps)",
			duration.ToSeconds(), duration.Value(), duration.Rate()))
	}
	if trimmed, err := node.TrimmedRange(); err == nil {
		row("trimmed", formatRange(trimmed))
	}
	if source, ok := node.SourceRange(); ok {
		row("source", formatRange(source))
	} else {
		row("source", "(full available range)")
	}
	if available, err := node.AvailableRange(); err == nil {
		row("available", formatRange(available))
	}

	root := t.Tracks()
	if timeline.Item(root) != node {
		if trimmed, err := node.TrimmedRange(); err == nil {
			if placed, err := timeline.TransformedTimeRange(trimmed, node, root); err == nil {
				row("in timeline", formatRange(placed))
			}
		}
	}

	if clip, ok := node.(*timeline.Clip); ok {
		section("Media")
		describeMediaReference(clip.MediaReference(), row)
		if references := clip.MediaReferences(); len(references) > 1 {
			keys := make([]string, 0, len(references))
			for key := range references {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			row("alternates", fmt.Sprintf("%s (active: %s)",
				strings.Join(keys, ", "), clip.ActiveMediaKey()))
		}
	}

	if markers := node.Markers(); len(markers) > 0 {
		section("Markers")
		for _, marker := range markers {
			dot := lipgloss.NewStyle().Foreground(theme.MarkerColor(marker.Color()))
			lines = append(lines, dot.Render("◆")+" "+normal.Render(marker.Name())+"  "+
				faint.Render(fmt.Sprintf("%s (%s)", formatRange(marker.MarkedRange()), marker.Color())))
			if strings.TrimSpace(marker.Comment()) != "" {
				rendered := timelineui.RenderMarkdown(marker.Comment(), theme, width-2)
				for _, commentLine := range strings.Split(strings.TrimRight(rendered, "\n"), "\n") {
					lines = append(lines, "  "+commentLine)
				}
			}
		}
	}

	if effects := node.Effects(); len(effects) > 0 {
		section("Effects")
		for _, effect := range effects {
			label := effect.Name()
			if label == "" {
				label = effect.EffectName()
			}
			detail := effect.EffectName()
			if warp, ok := effect.(*timeline.LinearTimeWarp); ok {
				detail = fmt.Sprintf("%s ×%g", detail, warp.TimeScalar())
			}
			lines = append(lines, normal.Render(label)+"  "+faint.Render("("+detail+")"))
		}
	}

	if note, ok := node.Metadata()["notes"].(string); ok && strings.TrimSpace(note) != "" {
		section("Notes")
		lines = append(lines, strings.TrimRight(timelineui.RenderMarkdown(note, theme, width), "\n"))
	}

	return strings.Join(lines, "\n")
}

// describeMediaReference emits the detail row for a clip's active
// media reference. The reference's available range already shows as
// the clip's "available" row, so only the target is new information.
func describeMediaReference(reference timeline.MediaReference, row func(label, value string)) {
	switch reference := reference.(type) {
	case *timeline.ExternalReference:
		row("target", reference.TargetURL())
	case *timeline.GeneratorReference:
		row("generator", reference.GeneratorKind())
	case *timeline.MissingReference:
		row("target", "(missing)")
	case nil:
	default:
		row("target", reference.Name())
	}
}

// formatRange renders a range as start and exclusive-end timecodes
// with the duration in seconds.
func formatRange(r opentime.TimeRange) string {
	return fmt.Sprintf("[%s, %s)  +%.1fs",
		timecode(r.StartTime()), timecode(r.EndTimeExclusive()), r.Duration().ToSeconds())
}
