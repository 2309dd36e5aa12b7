// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

// Package timelineui renders editorial timelines for terminal display.
// It provides two static views over a [timeline.Timeline]: a tree view
// showing the composition hierarchy with ranges and durations
// ([RenderTree]), and a lane view drawing each track as a proportional
// strip of clip boxes and gap dashes ([RenderLanes]). Both are plain
// strings styled with lipgloss ANSI-256 sequences, suitable for
// one-shot CLI output or for embedding in a bubbletea viewport.
//
// The package also carries the supporting pieces the montage CLI and
// the interactive viewer share: the [Theme] palette, a GFM markdown
// renderer for clip and marker notes ([RenderMarkdown]), and fuzzy
// name matching over composition nodes ([MatchNodes]) backed by fzf's
// matcher.
//
// Rendering never fails: nodes whose ranges cannot be computed (a clip
// with no available range, for instance) render with placeholder time
// columns instead of aborting the whole view.
package timelineui
