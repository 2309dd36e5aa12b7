// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package view

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the timeline viewer TUI.
type KeyMap struct {
	// Navigation (context-sensitive: tree movement or detail
	// scrolling depending on current focus).
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding // Tree: collapse node / go to parent.
	Right    key.Binding // Tree: expand node / enter first child.
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding

	// Focus switching.
	FocusToggle key.Binding

	// Splitter resize.
	SplitGrow   key.Binding // Grow tree pane (push detail right).
	SplitShrink key.Binding // Shrink tree pane (push detail left).

	// Fuzzy jump.
	JumpActivate key.Binding // Enter jump mode.
	JumpClear    key.Binding // Clear jump matches and exit jump mode.

	// Match cycling (active when a confirmed jump left matches behind).
	MatchNext     key.Binding // Move to the next matched node.
	MatchPrevious key.Binding // Move to the previous matched node.

	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set. Vim-style navigation
// (j/k) alongside standard arrow keys and page up/down.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h/←", "collapse"),
	),
	Right: key.NewBinding(
		key.WithKeys("l", "right"),
		key.WithHelp("l/→", "expand"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("ctrl+u", "pgup"),
		key.WithHelp("C-u", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("ctrl+d", "pgdown"),
		key.WithHelp("C-d", "page down"),
	),
	Home: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "top"),
	),
	End: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "bottom"),
	),
	FocusToggle: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "switch pane"),
	),
	SplitGrow: key.NewBinding(
		key.WithKeys("]"),
		key.WithHelp("]", "grow tree"),
	),
	SplitShrink: key.NewBinding(
		key.WithKeys("["),
		key.WithHelp("[", "shrink tree"),
	),
	JumpActivate: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "jump"),
	),
	JumpClear: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "clear jump"),
	),
	MatchNext: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "next match"),
	),
	MatchPrevious: key.NewBinding(
		key.WithKeys("N"),
		key.WithHelp("N", "prev match"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
