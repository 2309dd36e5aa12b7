// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package timelineui

import (
	"sort"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"

	"github.com/montage-foundation/montage/lib/timeline"
)

// Slab scratch sizes, matching what fzf's own matcher allocates.
const (
	slab16Size = 100 * 1024
	slab32Size = 2048
)

// NewSlab allocates the scratch memory fzf's matcher reuses across
// calls. One slab serves any number of sequential FuzzyMatch calls; a
// nil slab is also accepted at the cost of per-call allocation.
func NewSlab() *util.Slab {
	return util.MakeSlab(slab16Size, slab32Size)
}

// FuzzyResult is the outcome of matching a pattern against one
// candidate string. A zero result means no match.
type FuzzyResult struct {
	// Score is fzf's match quality; higher is better, zero is no
	// match.
	Score int

	// Positions are the rune indices of the matched characters in the
	// candidate, ascending.
	Positions []int
}

// FuzzyMatch scores pattern against text with fzf's V2 algorithm.
// Matching is case-insensitive (the pattern is lowercased here, the
// text inside the matcher) and diacritic-insensitive, so "cafe" finds
// "Café". An empty pattern or text never matches.
func FuzzyMatch(text string, pattern []rune, slab *util.Slab) FuzzyResult {
	if len(pattern) == 0 || text == "" {
		return FuzzyResult{}
	}

	chars := util.ToChars([]byte(text))
	lowered := make([]rune, len(pattern))
	for index, r := range pattern {
		lowered[index] = unicode.ToLower(r)
	}
	lowered = algo.NormalizeRunes(lowered)

	result, positions := algo.FuzzyMatchV2(false, true, true, &chars, lowered, true, slab)
	if result.Start < 0 || result.Score <= 0 {
		return FuzzyResult{}
	}

	matched := FuzzyResult{Score: result.Score}
	if positions != nil {
		// fzf reports positions in backtrack order; callers want them
		// ascending for highlight rendering.
		matched.Positions = append(matched.Positions, *positions...)
		sort.Ints(matched.Positions)
	}
	return matched
}

// NodeMatch pairs a composition node with its fuzzy match against a
// query.
type NodeMatch struct {
	Node      timeline.Composable
	Score     int
	Positions []int
}

// MatchNodes fuzzy-matches a query against the name of every node
// under the timeline's track stack, returning matches sorted best
// first. Equal scores keep document order, so stable results come
// back for repeated queries. A blank query matches nothing.
func MatchNodes(t *timeline.Timeline, query string) []NodeMatch {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	nodes, err := timeline.FindChildren[timeline.Composable](t.Tracks(), nil, false)
	if err != nil {
		return nil
	}

	pattern := []rune(query)
	slab := NewSlab()
	var matches []NodeMatch
	for _, node := range nodes {
		result := FuzzyMatch(node.Name(), pattern, slab)
		if result.Score <= 0 {
			continue
		}
		matches = append(matches, NodeMatch{Node: node, Score: result.Score, Positions: result.Positions})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	return matches
}

// HighlightMatch renders text with the matched rune positions drawn
// in a highlight style and everything else in a base style. Runs of
// same-style characters batch into single Render calls to keep the
// ANSI output compact.
func HighlightMatch(text string, positions []int, base, highlight lipgloss.Style) string {
	if len(positions) == 0 {
		return base.Render(text)
	}

	positionSet := make(map[int]bool, len(positions))
	for _, position := range positions {
		positionSet[position] = true
	}

	runes := []rune(text)
	var result strings.Builder
	runStart := 0
	highlighted := positionSet[0]
	for index := 1; index <= len(runes); index++ {
		current := index < len(runes) && positionSet[index]
		if current != highlighted || index == len(runes) {
			chunk := string(runes[runStart:index])
			if highlighted {
				result.WriteString(highlight.Render(chunk))
			} else {
				result.WriteString(base.Render(chunk))
			}
			runStart = index
			highlighted = current
		}
	}
	return result.String()
}
