// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package inspect

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/montage-foundation/montage/cmd/montage/cli"
	"github.com/montage-foundation/montage/lib/document"
	"github.com/montage-foundation/montage/lib/timeline"
)

// StatCommand returns the "montage stat" command.
func StatCommand() *cli.Command {
	return &cli.Command{
		Name:        "stat",
		Summary:     "Summarize a timeline document",
		Description: "Stat prints one-line counts for a timeline document: duration,\ntracks by kind, clips, gaps, nested stacks, markers, effects, and\nthe media reference breakdown.",
		Usage:       "montage stat <file>",
		Examples: []cli.Example{
			{
				Description: "Summarize a timeline",
				Command:     "montage stat cut.mtl",
			},
		},
		Flags: func() *pflag.FlagSet {
			return pflag.NewFlagSet("stat", pflag.ContinueOnError)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one timeline document\n\nUsage: montage stat <file>")
			}
			t, err := document.ReadTimeline(args[0])
			if err != nil {
				return err
			}
			return printStat(t)
		},
	}
}

func printStat(t *timeline.Timeline) error {
	duration, err := t.Duration()
	if err != nil {
		return fmt.Errorf("computing duration: %w", err)
	}

	tracks, err := timeline.FindChildren[*timeline.Track](t.Tracks(), nil, false)
	if err != nil {
		return err
	}
	clips, err := timeline.FindChildren[*timeline.Clip](t.Tracks(), nil, false)
	if err != nil {
		return err
	}
	gaps, err := timeline.FindChildren[*timeline.Gap](t.Tracks(), nil, false)
	if err != nil {
		return err
	}
	stacks, err := timeline.FindChildren[*timeline.Stack](t.Tracks(), nil, false)
	if err != nil {
		return err
	}

	// Markers and effects can sit on any item, including the track
	// stack itself.
	items, err := timeline.FindChildren[timeline.Item](t.Tracks(), nil, false)
	if err != nil {
		return err
	}
	markers := len(t.Tracks().Markers())
	effects := len(t.Tracks().Effects())
	for _, item := range items {
		markers += len(item.Markers())
		effects += len(item.Effects())
	}

	var external, missing, generator int
	for _, clip := range clips {
		switch clip.MediaReference().(type) {
		case *timeline.ExternalReference:
			external++
		case *timeline.GeneratorReference:
			generator++
		default:
			missing++
		}
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(writer, "Name:\t%s\n", t.Name())
	if timecode, err := duration.Timecode(); err == nil {
		fmt.Fprintf(writer, "Duration:\t%s (%g frames @ %g fps)\n", timecode, duration.Value(), duration.Rate())
	} else {
		fmt.Fprintf(writer, "Duration:\t%g frames @ %g fps\n", duration.Value(), duration.Rate())
	}
	if start, ok := t.GlobalStartTime(); ok {
		if timecode, err := start.Timecode(); err == nil {
			fmt.Fprintf(writer, "Start:\t%s\n", timecode)
		} else {
			fmt.Fprintf(writer, "Start:\t%s\n", start)
		}
	}
	fmt.Fprintf(writer, "Tracks:\t%d (%d video, %d audio)\n", len(tracks), len(t.VideoTracks()), len(t.AudioTracks()))
	fmt.Fprintf(writer, "Clips:\t%d\n", len(clips))
	fmt.Fprintf(writer, "Gaps:\t%d\n", len(gaps))
	if len(stacks) > 0 {
		fmt.Fprintf(writer, "Nested stacks:\t%d\n", len(stacks))
	}
	fmt.Fprintf(writer, "Markers:\t%d\n", markers)
	fmt.Fprintf(writer, "Effects:\t%d\n", effects)
	fmt.Fprintf(writer, "Media:\t%d external, %d generator, %d missing\n", external, generator, missing)
	return writer.Flush()
}
