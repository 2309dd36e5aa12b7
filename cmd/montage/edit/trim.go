// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package edit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/montage-foundation/montage/cmd/montage/cli"
	"github.com/montage-foundation/montage/lib/document"
	"github.com/montage-foundation/montage/lib/edit"
	"github.com/montage-foundation/montage/lib/opentime"
)

// TrimCommand returns the "montage trim" command.
func TrimCommand() *cli.Command {
	var (
		start    string
		duration string
		output   string
	)
	return &cli.Command{
		Name:        "trim",
		Summary:     "Trim a timeline to a range",
		Description: "Trim restricts a timeline to the given span of its own\ncoordinate system by trimming the root track stack. A trim on an\nalready trimmed timeline intersects with the existing one, so\nrepeated trims only ever narrow the cut.\n\nTimes accept frames (86), seconds (3.5s), timecode (00:00:05:12),\nor rational times (137/24). Without --output the file is\nrewritten in place.",
		Usage:       "montage trim <file> --duration <time> [flags]",
		Examples: []cli.Example{
			{
				Description: "Keep the first four seconds",
				Command:     "montage trim cut.mtl --duration 4s -o short.mtl",
			},
			{
				Description: "Cut from two seconds in, in place",
				Command:     "montage trim cut.mtl --start 2s --duration 00:00:06:00",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("trim", pflag.ContinueOnError)
			flags.StringVar(&start, "start", "0", "start of the kept range")
			flags.StringVar(&duration, "duration", "", "duration of the kept range")
			flags.StringVarP(&output, "output", "o", "", "output path (default: rewrite the input)")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one timeline document\n\nUsage: montage trim <file> --duration <time> [flags]")
			}
			if duration == "" {
				return fmt.Errorf("--duration is required\n\nUsage: montage trim <file> --duration <time> [flags]")
			}
			if output == "" {
				output = args[0]
			}
			if err := ensureDocumentPath(output); err != nil {
				return err
			}

			t, err := document.ReadTimeline(args[0])
			if err != nil {
				return err
			}
			rate := documentRate(t)
			startTime, err := cli.ParseTime(start, rate)
			if err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
			length, err := cli.ParseTime(duration, rate)
			if err != nil {
				return fmt.Errorf("invalid --duration: %w", err)
			}

			kept := opentime.NewTimeRange(startTime, length)
			if err := edit.TrimTimeline(t, kept); err != nil {
				return err
			}
			if err := document.Write(output, t, 2); err != nil {
				return err
			}
			fmt.Printf("Trimmed %s to %s\n", output, kept)
			return nil
		},
	}
}
