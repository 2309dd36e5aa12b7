// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"

	"github.com/montage-foundation/montage/cmd/montage/cli"
	"github.com/montage-foundation/montage/lib/document"
	"github.com/montage-foundation/montage/lib/opentime"
	"github.com/montage-foundation/montage/lib/timeline"
)

// AtCommand returns the "montage at" command.
func AtCommand() *cli.Command {
	var shallow bool
	return &cli.Command{
		Name:        "at",
		Summary:     "Show what plays at an instant",
		Description: "At resolves a time against a timeline document and prints the\nchain of nodes containing that instant, from the top-level track\ndown to the leaf, each with the time translated into its own\ncoordinate system.\n\nTimes accept frames (86), seconds (3.5s), timecode (00:00:05:12),\nor rational times (137/24), at the timeline's frame rate.",
		Usage:       "montage at <file> <time> [flags]",
		Examples: []cli.Example{
			{
				Description: "What plays five seconds in",
				Command:     "montage at cut.mtl 5s",
			},
			{
				Description: "Stop at the track level",
				Command:     "montage at cut.mtl 00:00:05:12 --shallow",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("at", pflag.ContinueOnError)
			flags.BoolVar(&shallow, "shallow", false, "stop at the first level instead of descending")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 2 {
				return fmt.Errorf("expected a timeline document and a time\n\nUsage: montage at <file> <time> [flags]")
			}
			t, err := document.ReadTimeline(args[0])
			if err != nil {
				return err
			}
			searchTime, err := cli.ParseTime(args[1], documentRate(t))
			if err != nil {
				return fmt.Errorf("invalid time %q: %w", args[1], err)
			}

			chain, err := descendAt(t, searchTime, shallow)
			if err != nil {
				return err
			}
			if len(chain) == 0 {
				fmt.Printf("Nothing at %s.\n", formatTime(searchTime))
				return nil
			}
			fmt.Println(strings.Join(chain, "\n"))
			return nil
		},
	}
}

// descendAt walks from the track stack to the deepest node containing
// searchTime, returning one rendered line per level. The time on each
// line is local to that node.
func descendAt(t *timeline.Timeline, searchTime opentime.RationalTime, shallow bool) ([]string, error) {
	var lines []string
	current := timeline.Composition(t.Tracks())
	localTime := searchTime
	for depth := 0; ; depth++ {
		child, err := current.ChildAtTime(localTime, true)
		if err != nil {
			return nil, err
		}
		if child == nil {
			break
		}
		item, ok := child.(timeline.Item)
		if !ok {
			break
		}
		childTime, err := timeline.TransformedTime(localTime, current, item)
		if err != nil {
			return nil, err
		}

		name := child.Name()
		if name == "" {
			name = "(unnamed)"
		}
		line := fmt.Sprintf("%s%s %q at %s", strings.Repeat("  ", depth), kindName(child), name, formatTime(childTime))
		if clip, ok := child.(*timeline.Clip); ok {
			if external, ok := clip.MediaReference().(*timeline.ExternalReference); ok {
				line += fmt.Sprintf("  (%s)", external.TargetURL())
			}
		}
		lines = append(lines, line)

		composition, ok := child.(timeline.Composition)
		if !ok || shallow {
			break
		}
		current, localTime = composition, childTime
	}
	return lines, nil
}
