// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package timelineui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/montage-foundation/montage/lib/opentime"
	"github.com/montage-foundation/montage/lib/timeline"
)

// TreeRenderer draws the composition hierarchy of a timeline as an
// indented tree with box-drawing connectors. Each node shows its name,
// its kind, marker dots colored by marker color, and two right-aligned
// time columns: the node's start in timeline coordinates (as timecode
// when the rate has one) and its duration in seconds.
//
// Layout for a one-video-one-audio cut:
//
//	picture lock                         24 fps  00:00:12:00
//	└─ tracks (stack)                00:00:00:00       +12.0s
//	   ├─ V1 (video)                 00:00:00:00       +12.0s
//	   │  ├─ slate (clip) ◆          00:00:00:00        +2.0s
//	   │  ├─ (gap)                   00:00:02:00        +1.0s
//	   │  └─ interview (clip)        00:00:03:00        +9.0s
//	   └─ A1 (audio)                 00:00:00:00       +12.0s
//	      └─ tone (clip)             00:00:00:00       +12.0s
//
// Nodes whose ranges cannot be computed render "?" time columns.
type TreeRenderer struct {
	theme Theme
	width int
}

// NewTreeRenderer creates a tree renderer for the given width.
func NewTreeRenderer(theme Theme, width int) TreeRenderer {
	return TreeRenderer{theme: theme, width: width}
}

// RenderTree renders the timeline hierarchy at the given width.
func RenderTree(t *timeline.Timeline, theme Theme, width int) string {
	return NewTreeRenderer(theme, width).Render(t)
}

// Render produces the tree view for a timeline.
func (renderer TreeRenderer) Render(t *timeline.Timeline) string {
	var lines []string
	lines = append(lines, renderer.headerLine(t))

	root := t.Tracks()
	lines = append(lines, renderer.nodeLine(root, root, "└─ "))

	children := root.Children()
	for index, child := range children {
		connector, continuation := treeConnectors(index == len(children)-1)
		lines = append(lines, renderer.renderSubtree(child, root, "   "+connector, "   "+continuation)...)
	}

	return strings.Join(lines, "\n")
}

// renderSubtree renders a node and its descendants. The prefix is the
// connector run for the node's own line; continuation is the run that
// lines of deeper descendants start with.
func (renderer TreeRenderer) renderSubtree(node timeline.Composable, root *timeline.Stack, prefix, continuation string) []string {
	item, ok := node.(timeline.Item)
	if !ok {
		return nil
	}
	lines := []string{renderer.nodeLine(item, root, prefix)}

	composition, ok := node.(timeline.Composition)
	if !ok {
		return lines
	}
	children := composition.Children()
	for index, child := range children {
		connector, deeper := treeConnectors(index == len(children)-1)
		lines = append(lines, renderer.renderSubtree(child, root, continuation+connector, continuation+deeper)...)
	}
	return lines
}

// treeConnectors returns the branch glyph for a child line and the
// continuation run for that child's own descendants.
func treeConnectors(last bool) (connector, continuation string) {
	if last {
		return "└─ ", "   "
	}
	return "├─ ", "│  "
}

// headerLine renders the timeline name with the frame rate and total
// duration right-aligned.
func (renderer TreeRenderer) headerLine(t *timeline.Timeline) string {
	name := t.Name()
	if name == "" {
		name = "(untitled)"
	}
	nameStyle := newStyle().Bold(true).Foreground(renderer.theme.HeaderForeground)

	info := ""
	if duration, err := t.Duration(); err == nil {
		info = fmt.Sprintf("%g fps  %s", duration.Rate(), timecodeOrRational(duration))
	}
	infoStyled := newStyle().Foreground(renderer.theme.FaintText).Render(info)

	return joinPadded(nameStyle.Render(name), infoStyled, renderer.width)
}

// nodeLine renders one tree row: connectors, styled label, marker
// dots, and right-aligned time columns.
func (renderer TreeRenderer) nodeLine(item timeline.Item, root *timeline.Stack, connectors string) string {
	connectorStyle := newStyle().Foreground(renderer.theme.BorderColor)
	left := connectorStyle.Render(connectors) + renderer.nodeLabel(item)
	right := renderer.timeColumns(item, root)
	return joinPadded(left, right, renderer.width)
}

// nodeLabel builds the styled name-and-kind portion of a row, with one
// colored dot per marker.
func (renderer TreeRenderer) nodeLabel(item timeline.Item) string {
	faint := newStyle().Foreground(renderer.theme.FaintText)

	var nameColor lipgloss.Color
	var kind string
	switch node := item.(type) {
	case *timeline.Track:
		nameColor = renderer.theme.TrackColor(node.Kind())
		kind = "(" + strings.ToLower(string(node.Kind())) + ")"
	case *timeline.Stack:
		nameColor = renderer.theme.StackBox
		kind = "(stack)"
	case *timeline.Clip:
		nameColor = renderer.theme.ClipBox
		kind = "(clip)"
		if _, missing := node.MediaReference().(*timeline.MissingReference); missing {
			kind = "(clip, media missing)"
		}
	case *timeline.Gap:
		nameColor = renderer.theme.GapDash
		kind = "(gap)"
	default:
		nameColor = renderer.theme.NormalText
	}
	if !item.Enabled() {
		nameColor = renderer.theme.FaintText
		kind = strings.TrimSuffix(kind, ")") + ", disabled)"
	}

	var label strings.Builder
	if name := item.Name(); name != "" {
		label.WriteString(newStyle().Foreground(nameColor).Render(name))
		label.WriteString(" ")
	}
	label.WriteString(faint.Render(kind))

	for _, marker := range item.Markers() {
		dot := newStyle().Foreground(renderer.theme.MarkerColor(marker.Color()))
		label.WriteString(" " + dot.Render("◆"))
	}
	if count := len(item.Effects()); count > 0 {
		label.WriteString(" " + faint.Render(fmt.Sprintf("+%dfx", count)))
	}
	return label.String()
}

// timeColumns renders "start  +duration" for an item, with the start
// expressed in the root stack's coordinates. Items whose ranges cannot
// be computed render a lone "?".
func (renderer TreeRenderer) timeColumns(item timeline.Item, root *timeline.Stack) string {
	faint := newStyle().Foreground(renderer.theme.FaintText)

	trimmed, err := item.TrimmedRange()
	if err != nil {
		return faint.Render("?")
	}
	placed := trimmed
	if timeline.Item(root) != item {
		placed, err = timeline.TransformedTimeRange(trimmed, item, root)
		if err != nil {
			return faint.Render("?")
		}
	}

	start := timecodeOrRational(placed.StartTime())
	duration := fmt.Sprintf("+%.1fs", placed.Duration().ToSeconds())
	return faint.Render(start) + "  " + newStyle().Foreground(renderer.theme.NormalText).Render(duration)
}

// timecodeOrRational formats a time as SMPTE timecode when its rate
// has a timecode form, falling back to the "value/rate" text form.
func timecodeOrRational(t opentime.RationalTime) string {
	if timecode, err := t.Timecode(); err == nil {
		return timecode
	}
	return t.String()
}

// joinPadded lays out a left and right part on one line of the given
// width: the right part is right-aligned, and the left part is
// truncated with an ellipsis when the two would collide.
func joinPadded(left, right string, width int) string {
	if right == "" {
		return ansi.Truncate(left, width, "…")
	}

	rightWidth := lipgloss.Width(right)
	padding := width - lipgloss.Width(left) - rightWidth
	if padding < 2 {
		available := width - rightWidth - 2
		if available < 1 {
			// Too narrow for columns at all; give the line to the left part.
			return ansi.Truncate(left, width, "…")
		}
		left = ansi.Truncate(left, available, "…")
		padding = width - lipgloss.Width(left) - rightWidth
	}
	return left + strings.Repeat(" ", padding) + right
}
