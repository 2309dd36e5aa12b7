// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package timelineui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/montage-foundation/montage/lib/timeline"
)

// wrapBreakpoints are the characters ansi.Wrap may break a line at in
// addition to spaces.
const wrapBreakpoints = " ,.;-+|"

// notesParser is initialized once and shared. Parsing creates
// per-call state, so the configured goldmark instance is safe to
// reuse across renders.
var (
	notesParser     goldmark.Markdown
	notesParserOnce sync.Once
)

func getNotesParser() goldmark.Markdown {
	notesParserOnce.Do(func() {
		notesParser = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		)
	})
	return notesParser
}

// RenderMarkdown renders GFM markdown (clip notes, marker notes, the
// documents behind "montage cat --notes") as styled terminal text.
// Soft line breaks become spaces so hard-wrapped source reflows at
// any terminal width; code blocks, lists, and tables keep their
// structure. Fenced code blocks with a language tag are highlighted
// with chroma.
func RenderMarkdown(input string, theme Theme, width int) string {
	if input == "" {
		return ""
	}
	source := []byte(input)
	document := getNotesParser().Parser().Parse(text.NewReader(source))

	renderer := &notesRenderer{
		source: source,
		theme:  theme,
		width:  width,
	}
	ast.Walk(document, renderer.walk)
	return strings.TrimRight(renderer.output.String(), "\n")
}

// notesRenderer walks a goldmark AST and accumulates styled terminal
// text. It walks the AST directly instead of implementing goldmark's
// renderer interface because terminal output needs
// accumulate-then-wrap semantics: inline content of a paragraph
// collects in a buffer and is word-wrapped as a unit when the
// paragraph closes.
type notesRenderer struct {
	source []byte
	theme  Theme
	width  int

	output strings.Builder

	// Inline accumulator, flushed with word-wrap when the enclosing
	// block closes.
	inline strings.Builder

	// Prefix stack for nested containers (blockquotes, list items).
	prefixStack     []notesPrefix
	linePrefix      string
	linePrefixWidth int

	// pendingBullet replaces linePrefix for the next emitted line
	// only. Set when a list item opens.
	pendingBullet string

	// Style counters rather than booleans so nested emphasis nests.
	boldCount          int
	italicCount        int
	strikethroughCount int

	listStack []notesListState

	// Trailing newline count of output, for blank-line management.
	trailingNewlines int
}

type notesPrefix struct {
	text  string
	width int
}

type notesListState struct {
	ordered bool
	counter int
	tight   bool
}

// contentWidth is the wrap width after nesting prefixes, clamped so
// deep nesting cannot produce degenerate wrapping.
func (renderer *notesRenderer) contentWidth() int {
	width := renderer.width - renderer.linePrefixWidth
	if width < 10 {
		width = 10
	}
	return width
}

func (renderer *notesRenderer) pushPrefix(text string, width int) {
	renderer.prefixStack = append(renderer.prefixStack, notesPrefix{text: text, width: width})
	renderer.linePrefix += text
	renderer.linePrefixWidth += width
}

func (renderer *notesRenderer) popPrefix() {
	if len(renderer.prefixStack) == 0 {
		return
	}
	top := renderer.prefixStack[len(renderer.prefixStack)-1]
	renderer.prefixStack = renderer.prefixStack[:len(renderer.prefixStack)-1]
	renderer.linePrefix = renderer.linePrefix[:len(renderer.linePrefix)-len(top.text)]
	renderer.linePrefixWidth -= top.width
}

func (renderer *notesRenderer) inTightList() bool {
	if len(renderer.listStack) == 0 {
		return false
	}
	return renderer.listStack[len(renderer.listStack)-1].tight
}

func (renderer *notesRenderer) write(s string) {
	if s == "" {
		return
	}
	renderer.output.WriteString(s)

	trailing := 0
	allNewlines := true
	for index := len(s) - 1; index >= 0; index-- {
		if s[index] == '\n' {
			trailing++
		} else {
			allNewlines = false
			break
		}
	}
	if allNewlines {
		renderer.trailingNewlines += trailing
	} else {
		renderer.trailingNewlines = trailing
	}
}

func (renderer *notesRenderer) ensureNewline() {
	if renderer.trailingNewlines < 1 {
		renderer.write("\n")
	}
}

func (renderer *notesRenderer) ensureBlankLine() {
	for renderer.trailingNewlines < 2 {
		renderer.write("\n")
	}
}

// consumeLinePrefix returns the prefix for the next line: the pending
// bullet once, then the regular prefix.
func (renderer *notesRenderer) consumeLinePrefix() string {
	if renderer.pendingBullet != "" {
		bullet := renderer.pendingBullet
		renderer.pendingBullet = ""
		return bullet
	}
	return renderer.linePrefix
}

// applyPrefixes prepends the line prefix to every line of content,
// with the pending bullet on the first.
func (renderer *notesRenderer) applyPrefixes(content string) string {
	lines := strings.Split(content, "\n")
	var result strings.Builder
	for index, line := range lines {
		if index == 0 {
			result.WriteString(renderer.consumeLinePrefix())
		} else {
			result.WriteString(renderer.linePrefix)
		}
		result.WriteString(line)
		if index < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// flushInline word-wraps the accumulated inline content and applies
// prefixes, resetting the accumulator.
func (renderer *notesRenderer) flushInline() string {
	content := renderer.inline.String()
	renderer.inline.Reset()
	if content == "" {
		return ""
	}
	return renderer.applyPrefixes(ansi.Wrap(content, renderer.contentWidth(), wrapBreakpoints))
}

// styledText applies the current emphasis state to a text fragment.
func (renderer *notesRenderer) styledText(content string) string {
	style := newStyle().Foreground(renderer.theme.NormalText)
	if renderer.boldCount > 0 {
		style = style.Bold(true)
	}
	if renderer.italicCount > 0 {
		style = style.Italic(true)
	}
	if renderer.strikethroughCount > 0 {
		style = style.Strikethrough(true)
	}
	return style.Render(content)
}

// inlineContent collects a node's children as a styled string without
// disturbing the caller's accumulator or emphasis state.
func (renderer *notesRenderer) inlineContent(node ast.Node) string {
	savedInline := renderer.inline.String()
	savedBold := renderer.boldCount
	savedItalic := renderer.italicCount
	savedStrikethrough := renderer.strikethroughCount

	renderer.inline.Reset()
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		ast.Walk(child, renderer.walk)
	}
	result := renderer.inline.String()

	renderer.inline.Reset()
	renderer.inline.WriteString(savedInline)
	renderer.boldCount = savedBold
	renderer.italicCount = savedItalic
	renderer.strikethroughCount = savedStrikethrough
	return result
}

func (renderer *notesRenderer) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node.Kind() {

	case ast.KindDocument:

	case ast.KindParagraph, ast.KindTextBlock:
		if entering {
			renderer.inline.Reset()
		} else if flushed := renderer.flushInline(); flushed != "" {
			renderer.write(flushed)
			renderer.ensureNewline()
			if !renderer.inTightList() {
				renderer.ensureBlankLine()
			}
		}

	case ast.KindHeading:
		if entering {
			renderer.inline.Reset()
		} else {
			renderer.leaveHeading(node.(*ast.Heading))
		}

	case ast.KindFencedCodeBlock:
		if entering {
			block := node.(*ast.FencedCodeBlock)
			renderer.renderCode(blockLines(block, renderer.source), string(block.Language(renderer.source)))
			return ast.WalkSkipChildren, nil
		}

	case ast.KindCodeBlock:
		if entering {
			renderer.renderCode(blockLines(node.(*ast.CodeBlock), renderer.source), "")
			return ast.WalkSkipChildren, nil
		}

	case ast.KindBlockquote:
		if entering {
			renderer.pushPrefix("│ ", 2)
		} else {
			renderer.popPrefix()
			renderer.ensureBlankLine()
		}

	case ast.KindList:
		if entering {
			list := node.(*ast.List)
			start := 0
			if list.IsOrdered() {
				start = list.Start
			}
			renderer.listStack = append(renderer.listStack, notesListState{
				ordered: list.IsOrdered(),
				counter: start,
				tight:   list.IsTight,
			})
		} else {
			if len(renderer.listStack) > 0 {
				renderer.listStack = renderer.listStack[:len(renderer.listStack)-1]
			}
			if !renderer.inTightList() {
				renderer.ensureBlankLine()
			}
		}

	case ast.KindListItem:
		if entering {
			renderer.enterListItem()
		} else {
			renderer.popPrefix()
			if renderer.inTightList() {
				renderer.ensureNewline()
			} else {
				renderer.ensureBlankLine()
			}
		}

	case ast.KindThematicBreak:
		if entering {
			rule := strings.Repeat("─", renderer.contentWidth())
			ruleStyle := newStyle().Foreground(renderer.theme.BorderColor)
			renderer.ensureBlankLine()
			renderer.write(renderer.applyPrefixes(ruleStyle.Render(rule)))
			renderer.ensureNewline()
			renderer.ensureBlankLine()
		}

	case ast.KindHTMLBlock:
		if entering {
			renderer.renderHTMLBlock(node.(*ast.HTMLBlock))
			return ast.WalkSkipChildren, nil
		}

	case ast.KindText:
		if entering {
			renderer.handleText(node.(*ast.Text))
		}

	case ast.KindString:
		if entering {
			renderer.inline.WriteString(renderer.styledText(string(node.(*ast.String).Value)))
		}

	case ast.KindEmphasis:
		renderer.handleEmphasis(node.(*ast.Emphasis), entering)

	case ast.KindCodeSpan:
		if entering {
			renderer.renderCodeSpan(node)
			return ast.WalkSkipChildren, nil
		}

	case ast.KindLink:
		if entering {
			renderer.renderLink(node.(*ast.Link))
			return ast.WalkSkipChildren, nil
		}

	case ast.KindAutoLink:
		if entering {
			url := string(node.(*ast.AutoLink).URL(renderer.source))
			linkStyle := newStyle().Foreground(renderer.theme.LinkForeground)
			renderer.inline.WriteString(linkStyle.Render(url))
		}

	case ast.KindImage:
		if entering {
			renderer.renderImage(node.(*ast.Image))
			return ast.WalkSkipChildren, nil
		}

	case ast.KindRawHTML:
		if entering {
			renderer.renderRawHTML(node.(*ast.RawHTML))
		}

	case extast.KindStrikethrough:
		if entering {
			renderer.strikethroughCount++
		} else {
			renderer.strikethroughCount--
		}

	case extast.KindTable:
		if entering {
			renderer.renderTable(node.(*extast.Table))
			return ast.WalkSkipChildren, nil
		}

	case extast.KindTaskCheckBox:
		if entering {
			if node.(*extast.TaskCheckBox).IsChecked {
				doneStyle := newStyle().
					Foreground(renderer.theme.MarkerColor(timeline.MarkerColorGreen))
				renderer.inline.WriteString(doneStyle.Render("[x]") + " ")
			} else {
				renderer.inline.WriteString(renderer.styledText("[ ] "))
			}
		}
	}

	return ast.WalkContinue, nil
}

func (renderer *notesRenderer) leaveHeading(heading *ast.Heading) {
	// Strip the inline styling: the heading's own style replaces the
	// NormalText foreground styledText applied.
	content := ansi.Strip(renderer.inline.String())
	renderer.inline.Reset()
	if content == "" {
		return
	}

	style := newStyle().Bold(true).Foreground(renderer.theme.NormalText)
	if heading.Level <= 2 {
		style = style.Foreground(renderer.theme.HeaderForeground)
	}

	wrapped := ansi.Wrap(style.Render(content), renderer.contentWidth(), wrapBreakpoints)
	renderer.ensureBlankLine()
	renderer.write(renderer.applyPrefixes(wrapped))
	renderer.ensureNewline()
	renderer.ensureBlankLine()
}

// blockLines joins the source segments of a code block node.
func blockLines(node interface{ Lines() *text.Segments }, source []byte) string {
	var code strings.Builder
	lines := node.Lines()
	for index := 0; index < lines.Len(); index++ {
		segment := lines.At(index)
		code.Write(segment.Value(source))
	}
	return code.String()
}

// renderCode emits a code block line by line, never reflowed. With a
// language it is chroma-highlighted; without one, or when chroma does
// not know the language, it renders in the faint color.
func (renderer *notesRenderer) renderCode(code, language string) {
	rendered := ""
	if language != "" {
		var highlighted strings.Builder
		if err := quick.Highlight(&highlighted, code, language, "terminal256", "monokai"); err == nil {
			rendered = highlighted.String()
		}
	}
	if rendered == "" {
		faint := newStyle().Foreground(renderer.theme.FaintText)
		var plain []string
		for _, line := range strings.Split(strings.TrimRight(code, "\n"), "\n") {
			plain = append(plain, faint.Render(line))
		}
		rendered = strings.Join(plain, "\n")
	}

	renderer.ensureBlankLine()
	for _, line := range strings.Split(strings.TrimRight(rendered, "\n"), "\n") {
		renderer.write(renderer.consumeLinePrefix() + line)
		renderer.ensureNewline()
	}
	renderer.ensureBlankLine()
}

func (renderer *notesRenderer) enterListItem() {
	if len(renderer.listStack) == 0 {
		return
	}
	top := &renderer.listStack[len(renderer.listStack)-1]

	var bullet string
	if top.ordered {
		bullet = fmt.Sprintf("%d. ", top.counter)
		top.counter++
	} else {
		bullet = "- "
	}

	// ASCII bullets, so byte length is visual width.
	continuation := strings.Repeat(" ", len(bullet))

	// The bullet replaces the entire prefix for the item's first line.
	renderer.pendingBullet = renderer.linePrefix + bullet
	renderer.pushPrefix(continuation, len(bullet))
}

func (renderer *notesRenderer) renderHTMLBlock(node *ast.HTMLBlock) {
	stripped := strings.TrimSpace(stripHTMLTags(blockLines(node, renderer.source)))
	if stripped == "" {
		return
	}
	faint := newStyle().Foreground(renderer.theme.FaintText)
	renderer.write(renderer.applyPrefixes(faint.Render(stripped)))
	renderer.ensureNewline()
	renderer.ensureBlankLine()
}

func (renderer *notesRenderer) handleText(node *ast.Text) {
	renderer.inline.WriteString(renderer.styledText(string(node.Segment.Value(renderer.source))))

	if node.SoftLineBreak() {
		// Soft breaks become spaces so hard-wrapped source reflows at
		// the terminal's width.
		renderer.inline.WriteString(" ")
	}
	if node.HardLineBreak() {
		renderer.inline.WriteString("\n")
	}
}

func (renderer *notesRenderer) handleEmphasis(node *ast.Emphasis, entering bool) {
	counter := &renderer.italicCount
	if node.Level >= 2 {
		counter = &renderer.boldCount
	}
	if entering {
		*counter++
	} else {
		*counter--
	}
}

func (renderer *notesRenderer) renderCodeSpan(node ast.Node) {
	var code strings.Builder
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch fragment := child.(type) {
		case *ast.Text:
			code.Write(fragment.Segment.Value(renderer.source))
		case *ast.String:
			code.Write(fragment.Value)
		}
	}
	codeStyle := newStyle().Foreground(renderer.theme.FaintText)
	renderer.inline.WriteString(codeStyle.Render(code.String()))
}

func (renderer *notesRenderer) renderLink(node *ast.Link) {
	// inlineContent already styles the link text; append the
	// destination in the link color.
	renderer.inline.WriteString(renderer.inlineContent(node))
	if url := string(node.Destination); url != "" {
		urlStyle := newStyle().Foreground(renderer.theme.LinkForeground)
		renderer.inline.WriteString(" " + urlStyle.Render("("+url+")"))
	}
}

func (renderer *notesRenderer) renderImage(node *ast.Image) {
	faint := newStyle().Foreground(renderer.theme.FaintText)
	renderer.inline.WriteString(faint.Render("[" + renderer.inlineContent(node) + "]"))
	if url := string(node.Destination); url != "" {
		renderer.inline.WriteString(" " + faint.Render("("+url+")"))
	}
}

func (renderer *notesRenderer) renderRawHTML(node *ast.RawHTML) {
	var html strings.Builder
	for index := 0; index < node.Segments.Len(); index++ {
		html.Write(node.Segments.At(index).Value(renderer.source))
	}
	if stripped := stripHTMLTags(html.String()); stripped != "" {
		faint := newStyle().Foreground(renderer.theme.FaintText)
		renderer.inline.WriteString(faint.Render(stripped))
	}
}

// renderTable lays a GFM table out with two-space column separators,
// columns sized to content and shrunk proportionally when the table
// exceeds the available width.
func (renderer *notesRenderer) renderTable(table *extast.Table) {
	const separator = "  "
	alignments := table.Alignments

	var headerCells []string
	var bodyRows [][]string
	for child := table.FirstChild(); child != nil; child = child.NextSibling() {
		switch child.Kind() {
		case extast.KindTableHeader:
			headerCells = renderer.collectTableRow(child)
		case extast.KindTableRow:
			bodyRows = append(bodyRows, renderer.collectTableRow(child))
		}
	}

	columnCount := len(headerCells)
	if columnCount == 0 && len(bodyRows) > 0 {
		columnCount = len(bodyRows[0])
	}
	if columnCount == 0 {
		return
	}

	columnWidths := make([]int, columnCount)
	widen := func(row []string) {
		for index, cell := range row {
			if index < columnCount && lipgloss.Width(cell) > columnWidths[index] {
				columnWidths[index] = lipgloss.Width(cell)
			}
		}
	}
	widen(headerCells)
	for _, row := range bodyRows {
		widen(row)
	}

	totalWidth := len(separator) * (columnCount - 1)
	for _, width := range columnWidths {
		totalWidth += width
	}
	if available := renderer.contentWidth(); totalWidth > available {
		usable := available - len(separator)*(columnCount-1)
		if usable < columnCount*3 {
			usable = columnCount * 3
		}
		for index := range columnWidths {
			columnWidths[index] = (columnWidths[index] * usable) / totalWidth
			if columnWidths[index] < 3 {
				columnWidths[index] = 3
			}
		}
	}

	renderer.ensureBlankLine()

	if len(headerCells) > 0 {
		bold := newStyle().Bold(true).Foreground(renderer.theme.NormalText)
		renderer.write(renderer.consumeLinePrefix() +
			renderer.formatTableRow(headerCells, columnWidths, alignments, bold))
		renderer.ensureNewline()

		rules := make([]string, len(columnWidths))
		for index, width := range columnWidths {
			rules[index] = strings.Repeat("─", width)
		}
		borderStyle := newStyle().Foreground(renderer.theme.BorderColor)
		renderer.write(renderer.linePrefix + borderStyle.Render(strings.Join(rules, separator)))
		renderer.ensureNewline()
	}

	for _, row := range bodyRows {
		renderer.write(renderer.linePrefix +
			renderer.formatTableRow(row, columnWidths, alignments, newStyle()))
		renderer.ensureNewline()
	}

	renderer.ensureBlankLine()
}

func (renderer *notesRenderer) collectTableRow(row ast.Node) []string {
	var cells []string
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		if cell.Kind() == extast.KindTableCell {
			cells = append(cells, renderer.inlineContent(cell))
		}
	}
	return cells
}

func (renderer *notesRenderer) formatTableRow(cells []string, columnWidths []int, alignments []extast.Alignment, baseStyle lipgloss.Style) string {
	const separator = "  "
	var parts []string
	for index, width := range columnWidths {
		var cell string
		if index < len(cells) {
			cell = cells[index]
		}

		if lipgloss.Width(cell) > width {
			cell = ansi.Truncate(cell, width, "…")
		}
		padding := width - lipgloss.Width(cell)
		if padding < 0 {
			padding = 0
		}

		var alignment extast.Alignment
		if index < len(alignments) {
			alignment = alignments[index]
		}
		switch alignment {
		case extast.AlignRight:
			cell = strings.Repeat(" ", padding) + cell
		case extast.AlignCenter:
			left := padding / 2
			cell = strings.Repeat(" ", left) + cell + strings.Repeat(" ", padding-left)
		default:
			cell = cell + strings.Repeat(" ", padding)
		}
		parts = append(parts, cell)
	}
	return baseStyle.Render(strings.Join(parts, separator))
}

// stripHTMLTags drops HTML tags, keeping only text content.
func stripHTMLTags(html string) string {
	var result strings.Builder
	inTag := false
	for _, character := range html {
		switch {
		case character == '<':
			inTag = true
		case character == '>':
			inTag = false
		case !inTag:
			result.WriteRune(character)
		}
	}
	return result.String()
}
