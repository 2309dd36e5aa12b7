// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package query

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/montage-foundation/montage/cmd/montage/cli"
	"github.com/montage-foundation/montage/lib/document"
	"github.com/montage-foundation/montage/lib/opentime"
	"github.com/montage-foundation/montage/lib/timeline"
	"github.com/montage-foundation/montage/lib/timelineui"
)

// FindCommand returns the "montage find" command.
func FindCommand() *cli.Command {
	var (
		kind     string
		rawRange string
		shallow  bool
		fuzzy    string
	)
	return &cli.Command{
		Name:        "find",
		Summary:     "Search a timeline for matching nodes",
		Description: "Find lists the nodes of a timeline document, narrowed by kind,\nby a search range in timeline coordinates, or by a fuzzy name\nquery. Each row shows the node's kind, name, and the span it\noccupies on the timeline.\n\nRange endpoints accept frames (86), seconds (3.5s), timecode\n(00:00:05:12), or rational times (137/24).",
		Usage:       "montage find <file> [flags]",
		Examples: []cli.Example{
			{
				Description: "Every clip in the cut",
				Command:     "montage find cut.mtl --type clip",
			},
			{
				Description: "Nodes touching the first four seconds",
				Command:     "montage find cut.mtl --range 0..4s",
			},
			{
				Description: "Fuzzy name search",
				Command:     "montage find cut.mtl --fuzzy intvw",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("find", pflag.ContinueOnError)
			flags.StringVar(&kind, "type", "", "node kind: clip, gap, track, or stack")
			flags.StringVar(&rawRange, "range", "", "search range in timeline coordinates (a..b)")
			flags.BoolVar(&shallow, "shallow", false, "do not descend into nested compositions")
			flags.StringVar(&fuzzy, "fuzzy", "", "fuzzy-match node names, best first")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one timeline document\n\nUsage: montage find <file> [flags]")
			}
			t, err := document.ReadTimeline(args[0])
			if err != nil {
				return err
			}

			var searchRange *opentime.TimeRange
			if rawRange != "" {
				parsed, err := cli.ParseRange(rawRange, documentRate(t))
				if err != nil {
					return fmt.Errorf("invalid --range: %w", err)
				}
				searchRange = &parsed
			}

			items, err := findItems(t, kind, searchRange, shallow)
			if err != nil {
				return err
			}
			if fuzzy != "" {
				items = fuzzyFilter(items, fuzzy)
			}
			return printMatches(t, items)
		},
	}
}

// findItems runs the kind-dispatched child search. An empty kind
// matches every node.
func findItems(t *timeline.Timeline, kind string, searchRange *opentime.TimeRange, shallow bool) ([]timeline.Item, error) {
	root := t.Tracks()
	switch kind {
	case "":
		return timeline.FindChildren[timeline.Item](root, searchRange, shallow)
	case "clip":
		return collectItems(timeline.FindChildren[*timeline.Clip](root, searchRange, shallow))
	case "gap":
		return collectItems(timeline.FindChildren[*timeline.Gap](root, searchRange, shallow))
	case "track":
		return collectItems(timeline.FindChildren[*timeline.Track](root, searchRange, shallow))
	case "stack":
		return collectItems(timeline.FindChildren[*timeline.Stack](root, searchRange, shallow))
	}
	return nil, fmt.Errorf("unknown node type %q: expected clip, gap, track, or stack", kind)
}

func collectItems[T timeline.Item](matched []T, err error) ([]timeline.Item, error) {
	if err != nil {
		return nil, err
	}
	items := make([]timeline.Item, len(matched))
	for index, item := range matched {
		items[index] = item
	}
	return items, nil
}

// fuzzyFilter keeps the items whose names fuzzy-match the query,
// best score first. Ties keep document order.
func fuzzyFilter(items []timeline.Item, query string) []timeline.Item {
	pattern := []rune(query)
	slab := timelineui.NewSlab()

	type scored struct {
		item  timeline.Item
		score int
	}
	var matched []scored
	for _, item := range items {
		result := timelineui.FuzzyMatch(item.Name(), pattern, slab)
		if result.Score > 0 {
			matched = append(matched, scored{item: item, score: result.Score})
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].score > matched[j].score
	})

	filtered := make([]timeline.Item, len(matched))
	for index, entry := range matched {
		filtered[index] = entry.item
	}
	return filtered
}

// printMatches writes one row per item with its span in timeline
// coordinates.
func printMatches(t *timeline.Timeline, items []timeline.Item) error {
	if len(items) == 0 {
		fmt.Println("No matches found.")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(writer, "KIND\tNAME\tSTART\tDURATION\n")
	for _, item := range items {
		name := item.Name()
		if name == "" {
			name = "(unnamed)"
		}
		start, duration := "-", "-"
		if span, err := t.RangeOfChild(item); err == nil {
			start = formatTime(span.StartTime())
			duration = formatTime(span.Duration())
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n", kindName(item), name, start, duration)
	}
	return writer.Flush()
}
