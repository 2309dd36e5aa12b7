// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/montage-foundation/montage/lib/opentime"
	"github.com/montage-foundation/montage/lib/timeline"
	"github.com/montage-foundation/montage/lib/timelineui"
)

// FocusRegion identifies which part of the UI has keyboard focus.
type FocusRegion int

const (
	// FocusTree is the default region: keys move the tree cursor.
	FocusTree FocusRegion = iota
	// FocusDetail routes navigation keys to the detail viewport.
	FocusDetail
	// FocusJump routes all input to the fuzzy jump query.
	FocusJump
)

// Split ratio bounds for the tree/detail divider.
const (
	splitRatioDefault = 0.55
	splitRatioMin     = 0.25
	splitRatioMax     = 0.75
	splitRatioStep    = 0.05
)

// maxLaneLines caps the lane strip height (ruler plus lanes). Track
// stacks deeper than this hide the strip rather than squeeze the
// panes below it.
const maxLaneLines = 9

// treeItem is one visible row of the tree pane: a node of the
// composition hierarchy at its depth under the track stack.
type treeItem struct {
	node  timeline.Item
	depth int
}

// jumpState holds the fuzzy jump query. The query matches node names
// with the same fzf scoring "montage find --fuzzy" uses.
type jumpState struct {
	input  string // Current query text.
	active bool   // True while the jump bar has keyboard focus.
}

// Model is the bubbletea model for the interactive timeline viewer.
// Construct with NewModel; the zero value is not usable.
type Model struct {
	timeline *timeline.Timeline
	theme    timelineui.Theme
	keys     KeyMap

	// Terminal dimensions (set by WindowSizeMsg).
	width  int
	height int
	ready  bool

	// Tree state. items is the visible flattened hierarchy; a
	// collapsed composition contributes a single row.
	items        []treeItem
	cursor       int
	scrollOffset int
	collapsed    map[timeline.Composition]bool

	// Two-pane layout.
	focus      FocusRegion
	splitRatio float64 // Fraction of width for the tree pane.

	// Detail pane: a scrollable viewport over the selected node's
	// ranges, media, markers, and notes. detailNode tracks which
	// node the content was rendered for so resizes keep the scroll
	// position and selection changes reset it.
	detail     viewport.Model
	detailNode timeline.Item

	// Jump state. matches persists after Enter so n/N can cycle
	// through them; highlights maps nodes to the matched rune
	// positions in their names.
	jump       jumpState
	matches    []timelineui.NodeMatch
	matchIndex int
	highlights map[timeline.Composable][]int
}

// NewModel creates a viewer model over a loaded timeline.
func NewModel(t *timeline.Timeline, theme timelineui.Theme) Model {
	model := Model{
		timeline:   t,
		theme:      theme,
		keys:       DefaultKeyMap,
		splitRatio: splitRatioDefault,
		collapsed:  make(map[timeline.Composition]bool),
	}
	model.items = flattenItems(t.Tracks(), model.collapsed)
	return model
}

// flattenItems builds the visible rows: a depth-first walk of the
// track stack that stops at collapsed compositions.
func flattenItems(root *timeline.Stack, collapsed map[timeline.Composition]bool) []treeItem {
	var items []treeItem
	var walk func(node timeline.Composable, depth int)
	walk = func(node timeline.Composable, depth int) {
		item, ok := node.(timeline.Item)
		if !ok {
			return
		}
		items = append(items, treeItem{node: item, depth: depth})
		composition, ok := node.(timeline.Composition)
		if !ok || collapsed[composition] {
			return
		}
		for _, child := range composition.Children() {
			walk(child, depth+1)
		}
	}
	walk(root, 0)
	return items
}

// Init implements tea.Model. The document is static, so there is
// nothing to start.
func (model Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model. Routes keyboard events based on the
// current focus region and handles mouse and layout changes.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		// When the jump bar is active, route all input to it.
		if model.focus == FocusJump {
			return model.handleJumpKeys(message)
		}

		switch {
		case key.Matches(message, model.keys.Quit):
			return model, tea.Quit

		case key.Matches(message, model.keys.FocusToggle):
			if model.focus == FocusTree {
				model.focus = FocusDetail
			} else {
				model.focus = FocusTree
			}

		case key.Matches(message, model.keys.SplitGrow):
			model.splitRatio += splitRatioStep
			if model.splitRatio > splitRatioMax {
				model.splitRatio = splitRatioMax
			}
			model.updatePaneSizes()

		case key.Matches(message, model.keys.SplitShrink):
			model.splitRatio -= splitRatioStep
			if model.splitRatio < splitRatioMin {
				model.splitRatio = splitRatioMin
			}
			model.updatePaneSizes()

		case key.Matches(message, model.keys.JumpActivate):
			model.focus = FocusJump
			model.jump.active = true

		case key.Matches(message, model.keys.JumpClear):
			model.clearJump()

		case key.Matches(message, model.keys.MatchNext):
			model.cycleMatch(1)

		case key.Matches(message, model.keys.MatchPrevious):
			model.cycleMatch(-1)

		default:
			if model.focus == FocusTree {
				model.handleTreeKeys(message)
			} else {
				model.handleDetailKeys(message)
			}
		}

	case tea.MouseMsg:
		model.handleMouse(message)

	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ready = true
		model.updatePaneSizes()
		model.ensureCursorVisible()
		model.syncDetail()
	}
	return model, nil
}

// handleJumpKeys processes keystrokes while the jump bar has focus.
func (model Model) handleJumpKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Quit):
		// ctrl+c always quits, even in jump mode.
		if message.Type == tea.KeyCtrlC {
			return model, tea.Quit
		}
		// 'q' is a regular character in jump mode.
		model.jump.input += "q"
		model.applyJump()
		return model, nil

	case key.Matches(message, model.keys.JumpClear):
		// Esc: clear the query if there is one, otherwise exit jump
		// mode entirely.
		if model.jump.input != "" {
			model.jump.input = ""
			model.applyJump()
		} else {
			model.clearJump()
		}
		return model, nil

	case message.Type == tea.KeyEnter:
		// Confirm: keep the matches so n/N can cycle through them,
		// and return focus to the tree.
		model.jump.active = false
		model.focus = FocusTree
		return model, nil

	case message.Type == tea.KeyBackspace:
		if model.jump.handleBackspace() {
			model.applyJump()
		}
		return model, nil

	case message.Type == tea.KeyRunes || message.Type == tea.KeySpace:
		for _, r := range message.Runes {
			model.jump.input += string(r)
		}
		model.applyJump()
		return model, nil
	}
	return model, nil
}

// handleBackspace removes the last character from the query. Returns
// true if the query changed.
func (jump *jumpState) handleBackspace() bool {
	if len(jump.input) == 0 {
		return false
	}
	runes := []rune(jump.input)
	jump.input = string(runes[:len(runes)-1])
	return true
}

// applyJump recomputes the matches for the current query and moves
// the cursor to the best one.
func (model *Model) applyJump() {
	model.matches = timelineui.MatchNodes(model.timeline, model.jump.input)
	model.matchIndex = 0
	if len(model.matches) == 0 {
		model.highlights = nil
		return
	}
	model.highlights = make(map[timeline.Composable][]int, len(model.matches))
	for _, match := range model.matches {
		model.highlights[match.Node] = match.Positions
	}
	model.jumpToMatch()
}

// jumpToMatch moves the tree cursor to the current match, expanding
// collapsed ancestors so the node has a visible row.
func (model *Model) jumpToMatch() {
	if len(model.matches) == 0 {
		return
	}
	node := model.matches[model.matchIndex].Node
	model.revealNode(node)
	for index, item := range model.items {
		if timeline.Composable(item.node) == node {
			model.cursor = index
			break
		}
	}
	model.ensureCursorVisible()
	model.syncDetail()
}

// revealNode expands every collapsed ancestor of the node.
func (model *Model) revealNode(node timeline.Composable) {
	changed := false
	for parent := node.Parent(); parent != nil; parent = parent.Parent() {
		if model.collapsed[parent] {
			delete(model.collapsed, parent)
			changed = true
		}
	}
	if changed {
		model.rebuildItems()
	}
}

// cycleMatch moves the current match by delta, wrapping around.
func (model *Model) cycleMatch(delta int) {
	if len(model.matches) == 0 {
		return
	}
	model.matchIndex = (model.matchIndex + delta + len(model.matches)) % len(model.matches)
	model.jumpToMatch()
}

// clearJump drops the query, matches, and highlights, and returns
// focus to the tree.
func (model *Model) clearJump() {
	model.jump.input = ""
	model.jump.active = false
	model.matches = nil
	model.matchIndex = 0
	model.highlights = nil
	if model.focus == FocusJump {
		model.focus = FocusTree
	}
}

// handleTreeKeys processes navigation keys while the tree has focus.
func (model *Model) handleTreeKeys(message tea.KeyMsg) {
	previous := model.selectedNode()

	switch {
	case key.Matches(message, model.keys.Up):
		if model.cursor > 0 {
			model.cursor--
		}

	case key.Matches(message, model.keys.Down):
		if model.cursor < len(model.items)-1 {
			model.cursor++
		}

	case key.Matches(message, model.keys.PageUp):
		target := model.cursor - model.visibleHeight()
		if target < 0 {
			target = 0
		}
		model.cursor = target

	case key.Matches(message, model.keys.PageDown):
		if len(model.items) > 0 {
			target := model.cursor + model.visibleHeight()
			if target >= len(model.items) {
				target = len(model.items) - 1
			}
			model.cursor = target
		}

	case key.Matches(message, model.keys.Home):
		model.cursor = 0

	case key.Matches(message, model.keys.End):
		if len(model.items) > 0 {
			model.cursor = len(model.items) - 1
		}

	case key.Matches(message, model.keys.Left):
		model.collapseOrGoToParent()

	case key.Matches(message, model.keys.Right):
		model.expandOrEnterFirstChild()
	}

	model.ensureCursorVisible()
	if model.selectedNode() != previous {
		model.syncDetail()
	}
}

// selectedNode returns the node under the cursor, or nil when the
// tree is empty.
func (model Model) selectedNode() timeline.Item {
	if model.cursor < 0 || model.cursor >= len(model.items) {
		return nil
	}
	return model.items[model.cursor].node
}

// collapseOrGoToParent handles Left in the tree: collapse the current
// composition if it is expanded, otherwise move to the parent row.
func (model *Model) collapseOrGoToParent() {
	node := model.selectedNode()
	if node == nil {
		return
	}
	if composition, ok := node.(timeline.Composition); ok {
		if !model.collapsed[composition] && len(composition.Children()) > 0 {
			model.collapsed[composition] = true
			model.rebuildItems()
			return
		}
	}
	parent := node.Parent()
	if parent == nil {
		return
	}
	for index, item := range model.items {
		if item.node == timeline.Item(parent) {
			model.cursor = index
			return
		}
	}
}

// expandOrEnterFirstChild handles Right in the tree: expand the
// current composition if it is collapsed, otherwise move to its
// first child.
func (model *Model) expandOrEnterFirstChild() {
	node := model.selectedNode()
	if node == nil {
		return
	}
	composition, ok := node.(timeline.Composition)
	if !ok || len(composition.Children()) == 0 {
		return
	}
	if model.collapsed[composition] {
		delete(model.collapsed, composition)
		model.rebuildItems()
		return
	}
	// The first child is the next row in depth-first order.
	if model.cursor+1 < len(model.items) {
		model.cursor++
	}
}

// rebuildItems reflattens the hierarchy, keeping the cursor on the
// same node when it still has a row.
func (model *Model) rebuildItems() {
	selected := model.selectedNode()
	model.items = flattenItems(model.timeline.Tracks(), model.collapsed)
	if selected != nil {
		for index, item := range model.items {
			if item.node == selected {
				model.cursor = index
				model.ensureCursorVisible()
				return
			}
		}
	}
	if model.cursor >= len(model.items) {
		model.cursor = len(model.items) - 1
	}
	if model.cursor < 0 {
		model.cursor = 0
	}
	model.ensureCursorVisible()
}

// handleDetailKeys scrolls the detail viewport.
func (model *Model) handleDetailKeys(message tea.KeyMsg) {
	switch {
	case key.Matches(message, model.keys.Up):
		model.detail.LineUp(1)
	case key.Matches(message, model.keys.Down):
		model.detail.LineDown(1)
	case key.Matches(message, model.keys.PageUp):
		model.detail.HalfViewUp()
	case key.Matches(message, model.keys.PageDown):
		model.detail.HalfViewDown()
	case key.Matches(message, model.keys.Home):
		model.detail.GotoTop()
	case key.Matches(message, model.keys.End):
		model.detail.GotoBottom()
	}
}

// handleMouse routes wheel scrolling to the pane under the cursor and
// selects tree rows on click.
func (model *Model) handleMouse(message tea.MouseMsg) {
	contentStart := model.contentStartY()
	inContentArea := message.Y >= contentStart && message.Y < model.height-2
	inTreePane := message.X >= 0 && message.X < model.treeWidth()

	switch message.Button {
	case tea.MouseButtonWheelUp:
		if !inContentArea {
			return
		}
		if inTreePane {
			model.moveCursor(-1)
		} else {
			model.detail.LineUp(3)
		}

	case tea.MouseButtonWheelDown:
		if !inContentArea {
			return
		}
		if inTreePane {
			model.moveCursor(1)
		} else {
			model.detail.LineDown(3)
		}

	case tea.MouseButtonLeft:
		if message.Action != tea.MouseActionPress || !inContentArea {
			return
		}
		if inTreePane {
			model.focus = FocusTree
			index := model.scrollOffset + message.Y - contentStart
			if index < len(model.items) && index != model.cursor {
				model.cursor = index
				model.syncDetail()
			}
		} else {
			model.focus = FocusDetail
		}
	}
}

// moveCursor moves the tree cursor by delta rows, clamped to the
// list, and keeps the detail pane in sync.
func (model *Model) moveCursor(delta int) {
	target := model.cursor + delta
	if target < 0 {
		target = 0
	}
	if target >= len(model.items) {
		target = len(model.items) - 1
	}
	if target == model.cursor || target < 0 {
		return
	}
	model.cursor = target
	model.ensureCursorVisible()
	model.syncDetail()
}

// syncDetail re-renders the detail pane for the node under the
// cursor. The scroll position survives re-renders of the same node
// (resizes); selecting a different node goes back to the top.
func (model *Model) syncDetail() {
	node := model.selectedNode()
	if node == nil {
		model.detail.SetContent("")
		model.detailNode = nil
		return
	}
	content := renderDetail(node, model.timeline, model.theme, model.detail.Width)
	offset := model.detail.YOffset
	model.detail.SetContent(content)
	if node == model.detailNode {
		model.detail.SetYOffset(offset)
	} else {
		model.detail.GotoTop()
	}
	model.detailNode = node
}

// updatePaneSizes recalculates the detail viewport dimensions after a
// resize or split ratio change.
func (model *Model) updatePaneSizes() {
	detailWidth := model.width - model.treeWidth() - 1
	if detailWidth < 10 {
		detailWidth = 10
	}
	// One column of left padding inside the pane.
	model.detail.Width = detailWidth - 1
	height := model.visibleHeight()
	if height < 1 {
		height = 1
	}
	model.detail.Height = height
}

// treeWidth returns the width of the tree pane in columns.
func (model Model) treeWidth() int {
	return int(float64(model.width) * model.splitRatio)
}

// laneLines returns the height of the lane strip: the ruler plus one
// line per lane. The strip hides (0 lines) when the timeline has no
// lanes, when a deep stack would crowd out the panes, or when the
// terminal is too short for both.
func (model Model) laneLines() int {
	count := len(model.timeline.Tracks().Children())
	if count == 0 {
		return 0
	}
	lines := count + 1
	if lines > maxLaneLines || model.height-lines < 12 {
		return 0
	}
	return lines
}

// contentStartY returns the Y coordinate where the pane content
// begins: the header line, the lane strip when shown, and one
// separator line.
func (model Model) contentStartY() int {
	return 1 + model.laneLines() + 1
}

// visibleHeight returns the number of tree rows that fit between the
// top chrome and the bottom separator plus help bar.
func (model Model) visibleHeight() int {
	return model.height - model.contentStartY() - 2
}

// ensureCursorVisible adjusts scrollOffset so the cursor is within
// the visible window.
func (model *Model) ensureCursorVisible() {
	visible := model.visibleHeight()
	if visible <= 0 {
		return
	}
	maxOffset := len(model.items) - visible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if model.scrollOffset > maxOffset {
		model.scrollOffset = maxOffset
	}
	if model.cursor < model.scrollOffset {
		model.scrollOffset = model.cursor
	}
	if model.cursor >= model.scrollOffset+visible {
		model.scrollOffset = model.cursor - visible + 1
	}
}

// View implements tea.Model. Renders the full frame: header or jump
// bar, lane strip, the tree and detail panes, and the help bar.
func (model Model) View() string {
	if !model.ready {
		return "Loading..."
	}

	var sections []string

	// Top chrome line: either the header or the jump bar. The jump
	// bar replaces the header so the layout doesn't shift.
	jumpView := model.jump.view(model.theme, model.width, len(model.matches))
	if jumpView != "" {
		sections = append(sections, jumpView)
	} else {
		sections = append(sections, model.renderHeader())
	}

	// Lane strip with the selected node highlighted.
	if model.laneLines() > 0 {
		renderer := timelineui.NewLaneRenderer(model.theme, model.width)
		var selected timeline.Composable
		if node := model.selectedNode(); node != nil {
			selected = node
		}
		sections = append(sections, renderer.Render(model.timeline, selected))
	}

	separator := lipgloss.NewStyle().
		Foreground(model.theme.BorderColor).
		Render(strings.Repeat("─", model.width))
	sections = append(sections, separator)

	// Two-pane content area with vertical divider.
	treeView := model.renderTreePane()
	divider := model.renderDivider()
	detailView := lipgloss.NewStyle().PaddingLeft(1).Render(model.detail.View())
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, treeView, divider, detailView))

	sections = append(sections, separator)
	sections = append(sections, model.renderHelp())

	return strings.Join(sections, "\n")
}

// renderHeader renders the timeline name with the frame rate and
// total duration right-aligned.
func (model Model) renderHeader() string {
	name := model.timeline.Name()
	if name == "" {
		name = "(untitled)"
	}
	left := lipgloss.NewStyle().
		Bold(true).
		Foreground(model.theme.HeaderForeground).
		Render(" " + name)

	info := ""
	if duration, err := model.timeline.Duration(); err == nil {
		info = fmt.Sprintf("%g fps  %s ", duration.Rate(), timecode(duration))
	}
	right := lipgloss.NewStyle().Foreground(model.theme.FaintText).Render(info)

	padding := model.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		return ansi.Truncate(left, model.width, "…")
	}
	return left + strings.Repeat(" ", padding) + right
}

// view renders the jump bar. When active, shows the query with a
// cursor and the match count. When inactive with a retained query,
// shows a subtle indicator. Hidden (empty string) otherwise.
func (jump jumpState) view(theme timelineui.Theme, width, matchCount int) string {
	if !jump.active && jump.input == "" {
		return ""
	}

	style := lipgloss.NewStyle().Foreground(theme.NormalText).Width(width)

	if jump.active {
		cursor := lipgloss.NewStyle().
			Foreground(theme.HeaderForeground).
			Bold(true).
			Render("▎")
		count := ""
		if jump.input != "" {
			count = lipgloss.NewStyle().
				Foreground(theme.FaintText).
				Render(fmt.Sprintf("  matches: %d", matchCount))
		}
		return style.Render(" / " + jump.input + cursor + count)
	}

	dim := lipgloss.NewStyle().Foreground(theme.FaintText).Width(width)
	return dim.Render(" jump: " + jump.input)
}

// renderTreePane renders the visible window of tree rows, padded to
// the pane height so the divider column stays aligned.
func (model Model) renderTreePane() string {
	width := model.treeWidth()
	visible := model.visibleHeight()
	if visible < 0 {
		visible = 0
	}

	var rows []string
	for index := model.scrollOffset; index < model.scrollOffset+visible && index < len(model.items); index++ {
		rows = append(rows, model.renderTreeRow(model.items[index], index == model.cursor, width))
	}
	for len(rows) < visible {
		rows = append(rows, strings.Repeat(" ", width))
	}
	return strings.Join(rows, "\n")
}

// renderTreeRow renders one tree row: indentation, the expand glyph,
// the styled node label, and right-aligned time columns. The selected
// row inverts to the selection colors across its full width.
func (model Model) renderTreeRow(item treeItem, selected bool, width int) string {
	node := item.node

	glyph := "  "
	if composition, ok := node.(timeline.Composition); ok && len(composition.Children()) > 0 {
		if model.collapsed[composition] {
			glyph = "▸ "
		} else {
			glyph = "▾ "
		}
	}
	indent := strings.Repeat("  ", item.depth)

	name := node.Name()
	kind, nameColor := nodeKind(node, model.theme)
	if !node.Enabled() {
		nameColor = model.theme.FaintText
		kind = strings.TrimSuffix(kind, ")") + ", disabled)"
	}

	right := model.timeColumns(node) + " "

	if selected {
		// Uniform selection colors across the entire row.
		var plain strings.Builder
		plain.WriteString(" " + indent + glyph)
		if name != "" {
			plain.WriteString(name + " ")
		}
		plain.WriteString(kind)
		for range node.Markers() {
			plain.WriteString(" ◆")
		}
		if count := len(node.Effects()); count > 0 {
			fmt.Fprintf(&plain, " +%dfx", count)
		}
		row := joinPadded(plain.String(), right, width)
		return lipgloss.NewStyle().
			Background(model.theme.SelectedBackground).
			Foreground(model.theme.SelectedForeground).
			Render(row)
	}

	faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)
	var label strings.Builder
	label.WriteString(" " + faint.Render(indent+glyph))
	if name != "" {
		nameStyle := lipgloss.NewStyle().Foreground(nameColor)
		label.WriteString(model.highlightName(node, name, nameStyle) + " ")
	}
	label.WriteString(faint.Render(kind))
	for _, marker := range node.Markers() {
		dot := lipgloss.NewStyle().Foreground(model.theme.MarkerColor(marker.Color()))
		label.WriteString(" " + dot.Render("◆"))
	}
	if count := len(node.Effects()); count > 0 {
		label.WriteString(" " + faint.Render(fmt.Sprintf("+%dfx", count)))
	}
	return joinPadded(label.String(), faint.Render(right), width)
}

// highlightName renders a node name, drawing characters matched by
// the jump query in the search highlight colors. The current match
// uses the stronger current-match background.
func (model Model) highlightName(node timeline.Item, name string, base lipgloss.Style) string {
	positions, ok := model.highlights[node]
	if !ok || len(positions) == 0 {
		return base.Render(name)
	}
	background := model.theme.SearchHighlightBackground
	if len(model.matches) > 0 && model.matches[model.matchIndex].Node == timeline.Composable(node) {
		background = model.theme.SearchCurrentBackground
	}
	return timelineui.HighlightMatch(name, positions, base, base.Background(background))
}

// timeColumns returns the unstyled "start  +duration" columns for a
// node, with the start expressed in the root stack's coordinates.
// Nodes whose ranges cannot be computed return "?".
func (model Model) timeColumns(node timeline.Item) string {
	root := model.timeline.Tracks()
	trimmed, err := node.TrimmedRange()
	if err != nil {
		return "?"
	}
	placed := trimmed
	if timeline.Item(root) != node {
		placed, err = timeline.TransformedTimeRange(trimmed, node, root)
		if err != nil {
			return "?"
		}
	}
	return fmt.Sprintf("%s  +%.1fs", timecode(placed.StartTime()), placed.Duration().ToSeconds())
}

// nodeKind returns the parenthesized kind text and name color for a
// node, matching the static tree view's vocabulary.
func nodeKind(node timeline.Item, theme timelineui.Theme) (string, lipgloss.Color) {
	switch node := node.(type) {
	case *timeline.Track:
		return "(" + strings.ToLower(string(node.Kind())) + ")", theme.TrackColor(node.Kind())
	case *timeline.Stack:
		return "(stack)", theme.StackBox
	case *timeline.Clip:
		if _, missing := node.MediaReference().(*timeline.MissingReference); missing {
			return "(clip, media missing)", theme.ClipBox
		}
		return "(clip)", theme.ClipBox
	case *timeline.Gap:
		return "(gap)", theme.GapDash
	default:
		return "(item)", theme.NormalText
	}
}

// renderDivider renders the vertical line between the panes.
func (model Model) renderDivider() string {
	visible := model.visibleHeight()
	if visible < 0 {
		visible = 0
	}
	lines := make([]string, visible)
	for index := range lines {
		lines[index] = "│"
	}
	return lipgloss.NewStyle().
		Foreground(model.theme.BorderColor).
		Width(1).
		Height(visible).
		Render(strings.Join(lines, "\n"))
}

// renderHelp renders the bottom help bar with key hints and position.
func (model Model) renderHelp() string {
	style := lipgloss.NewStyle().Foreground(model.theme.HelpText)

	focusIndicator := "TREE"
	switch model.focus {
	case FocusDetail:
		focusIndicator = "DETAIL"
	case FocusJump:
		focusIndicator = "JUMP"
	}

	help := fmt.Sprintf(" [%s] q quit  ↑↓ navigate  ←→ collapse/expand  Tab focus  ]/[ resize  / jump",
		focusIndicator)

	if len(model.matches) > 0 {
		help += fmt.Sprintf("  n/N match (%d/%d)", model.matchIndex+1, len(model.matches))
	}
	if len(model.items) > 0 {
		help += fmt.Sprintf("  %d/%d", model.cursor+1, len(model.items))
	}

	return style.Render(help)
}

// timecode formats a time as SMPTE timecode when its rate has a
// timecode form, falling back to the "value/rate" text form.
func timecode(t opentime.RationalTime) string {
	if formatted, err := t.Timecode(); err == nil {
		return formatted
	}
	return t.String()
}

// joinPadded lays out a left and right part on one line of the given
// width: the right part is right-aligned, and the left part is
// truncated with an ellipsis when the two would collide.
func joinPadded(left, right string, width int) string {
	rightWidth := lipgloss.Width(right)
	padding := width - lipgloss.Width(left) - rightWidth
	if padding < 2 {
		available := width - rightWidth - 2
		if available < 1 {
			return ansi.Truncate(left, width, "…")
		}
		left = ansi.Truncate(left, available, "…")
		padding = width - lipgloss.Width(left) - rightWidth
	}
	return left + strings.Repeat(" ", padding) + right
}
