// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package timelineui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/montage-foundation/montage/lib/opentime"
	"github.com/montage-foundation/montage/lib/timeline"
)

// LaneRenderer draws each top-level track of a timeline as one
// horizontal strip. Clips render as bracketed boxes sized
// proportionally to their duration, gaps as dash runs, nested stacks
// as boxes in the stack color. A timecode ruler spans the top.
//
//	        00:00:00:00                        00:00:12:00
//	V1      [slate]╌╌╌╌[interview             ]
//	A1      [tone                             ]
//
// Video lanes appear topmost-first (the later sibling wins when
// layers overlap), with audio and any other lanes below in document
// order.
type LaneRenderer struct {
	theme Theme
	width int
}

// NewLaneRenderer creates a lane renderer for the given width.
func NewLaneRenderer(theme Theme, width int) LaneRenderer {
	return LaneRenderer{theme: theme, width: width}
}

// RenderLanes renders the timeline's tracks as proportional lanes at
// the given width, with no selection highlight.
func RenderLanes(t *timeline.Timeline, theme Theme, width int) string {
	return NewLaneRenderer(theme, width).Render(t, nil)
}

// Render produces the lane view. When selected is non-nil, the lane
// segment belonging to that node renders with the selection colors;
// the interactive viewer drives this as the user moves between clips.
func (renderer LaneRenderer) Render(t *timeline.Timeline, selected timeline.Composable) string {
	root := t.Tracks()
	children := root.Children()
	if len(children) == 0 {
		return newStyle().Foreground(renderer.theme.FaintText).Render("(no tracks)")
	}

	gutter := laneGutterWidth(children)
	bodyWidth := renderer.width - gutter - 1
	if bodyWidth < 8 {
		bodyWidth = 8
	}

	window, haveWindow := rootWindow(root)

	lines := []string{renderer.rulerLine(window, haveWindow, gutter, bodyWidth)}
	for _, lane := range laneOrder(children) {
		lines = append(lines, renderer.laneLine(lane, root, window, haveWindow, gutter, bodyWidth, selected))
	}
	return strings.Join(lines, "\n")
}

// laneOrder arranges lanes the way an editor expects: video tracks
// topmost first (a later sibling obscures earlier ones when they
// overlap), then audio and everything else in document order below.
func laneOrder(children []timeline.Composable) []timeline.Composable {
	var video, rest []timeline.Composable
	for _, child := range children {
		if track, ok := child.(*timeline.Track); ok && track.Kind() == timeline.TrackKindVideo {
			video = append(video, child)
			continue
		}
		rest = append(rest, child)
	}
	ordered := make([]timeline.Composable, 0, len(children))
	for index := len(video) - 1; index >= 0; index-- {
		ordered = append(ordered, video[index])
	}
	return append(ordered, rest...)
}

// rootWindow returns the span of root-stack coordinates the lanes map
// onto columns. False when the stack's range cannot be computed or is
// empty.
func rootWindow(root *timeline.Stack) (opentime.TimeRange, bool) {
	window, err := root.TrimmedRange()
	if err != nil || window.Duration().ToSeconds() <= 0 {
		return opentime.TimeRange{}, false
	}
	return window, true
}

// rulerLine renders the start and end timecodes above the lane
// bodies, indented past the label gutter.
func (renderer LaneRenderer) rulerLine(window opentime.TimeRange, haveWindow bool, gutter, bodyWidth int) string {
	faint := newStyle().Foreground(renderer.theme.FaintText)
	indent := strings.Repeat(" ", gutter+1)
	if !haveWindow {
		return indent + faint.Render("(duration unavailable)")
	}
	left := faint.Render(timecodeOrRational(window.StartTime()))
	right := faint.Render(timecodeOrRational(window.EndTimeExclusive()))
	return indent + joinPadded(left, right, bodyWidth)
}

// laneLine renders one lane: the padded label gutter and the
// proportional body.
func (renderer LaneRenderer) laneLine(lane timeline.Composable, root *timeline.Stack, window opentime.TimeRange, haveWindow bool, gutter, bodyWidth int, selected timeline.Composable) string {
	label, color := renderer.laneLabel(lane)
	gutterText := newStyle().Foreground(color).Render(padToWidth(label, gutter))
	if !haveWindow {
		return gutterText
	}
	return gutterText + " " + renderer.laneBody(lane, root, window, bodyWidth, selected)
}

// laneLabel returns the gutter text and color for a lane. Tracks show
// their name in the kind color; a track with no name falls back to
// the kind's initial.
func (renderer LaneRenderer) laneLabel(lane timeline.Composable) (string, lipgloss.Color) {
	switch node := lane.(type) {
	case *timeline.Track:
		label := node.Name()
		if label == "" && len(node.Kind()) > 0 {
			label = strings.ToUpper(string(node.Kind())[:1])
		}
		return label, renderer.theme.TrackColor(node.Kind())
	case *timeline.Stack:
		return node.Name(), renderer.theme.StackBox
	default:
		return lane.Name(), renderer.theme.NormalText
	}
}

// laneBody renders the proportional strip for a lane. Children whose
// placement cannot be computed leave a hole rather than failing the
// whole view.
func (renderer LaneRenderer) laneBody(lane timeline.Composable, root *timeline.Stack, window opentime.TimeRange, bodyWidth int, selected timeline.Composable) string {
	totalSeconds := window.Duration().ToSeconds()
	column := func(t opentime.RationalTime) int {
		position := t.Sub(window.StartTime()).ToSeconds() / totalSeconds
		col := int(math.Round(position * float64(bodyWidth)))
		if col < 0 {
			return 0
		}
		if col > bodyWidth {
			return bodyWidth
		}
		return col
	}

	var body strings.Builder
	cursor := 0
	for _, child := range laneChildren(lane) {
		item, ok := child.(timeline.Item)
		if !ok {
			continue
		}
		trimmed, err := item.TrimmedRange()
		if err != nil {
			continue
		}
		placed, err := timeline.TransformedTimeRange(trimmed, item, root)
		if err != nil {
			continue
		}

		startColumn := column(placed.StartTime())
		endColumn := column(placed.EndTimeExclusive())
		if startColumn > cursor {
			body.WriteString(strings.Repeat(" ", startColumn-cursor))
			cursor = startColumn
		}
		if endColumn <= cursor {
			continue
		}
		body.WriteString(renderer.laneSegment(item, endColumn-cursor, child == selected))
		cursor = endColumn
	}
	return body.String()
}

// laneChildren returns the nodes a lane lays out: the children of a
// composition lane, or the lane itself when a leaf item sits directly
// in the track stack.
func laneChildren(lane timeline.Composable) []timeline.Composable {
	if composition, ok := lane.(timeline.Composition); ok {
		return composition.Children()
	}
	return []timeline.Composable{lane}
}

// laneSegment renders one child's span of a lane body.
func (renderer LaneRenderer) laneSegment(item timeline.Item, span int, selected bool) string {
	if _, isGap := item.(*timeline.Gap); isGap && !selected {
		gapStyle := newStyle().Foreground(renderer.theme.GapDash)
		return gapStyle.Render(strings.Repeat("╌", span))
	}

	var color lipgloss.Color
	switch node := item.(type) {
	case *timeline.Gap:
		color = renderer.theme.GapDash
	case *timeline.Stack:
		color = renderer.theme.StackBox
	case *timeline.Track:
		color = renderer.theme.TrackColor(node.Kind())
	default:
		color = renderer.theme.ClipBox
	}
	if !item.Enabled() {
		color = renderer.theme.FaintText
	}

	style := newStyle().Foreground(color)
	if selected {
		style = newStyle().
			Background(renderer.theme.SelectedBackground).
			Foreground(renderer.theme.SelectedForeground)
	}

	switch {
	case span == 1:
		return style.Render("▏")
	case span == 2:
		return style.Render("[]")
	default:
		return style.Render("[" + padToWidth(item.Name(), span-2) + "]")
	}
}

// laneGutterWidth sizes the label column to the widest lane label,
// clamped so degenerate names cannot starve the lane bodies.
func laneGutterWidth(lanes []timeline.Composable) int {
	widest := 2
	for _, lane := range lanes {
		if width := lipgloss.Width(lane.Name()); width > widest {
			widest = width
		}
	}
	if widest > 12 {
		widest = 12
	}
	return widest
}

// padToWidth pads text with trailing spaces to exactly the given
// visible width, truncating with an ellipsis when it is too long.
func padToWidth(text string, width int) string {
	visible := lipgloss.Width(text)
	if visible > width {
		return ansi.Truncate(text, width, "…")
	}
	return text + strings.Repeat(" ", width-visible)
}
