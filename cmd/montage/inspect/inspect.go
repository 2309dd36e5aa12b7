// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package inspect

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/montage-foundation/montage/cmd/montage/cli"
	"github.com/montage-foundation/montage/lib/document"
	"github.com/montage-foundation/montage/lib/timelineui"
)

// InspectCommand returns the "inspect" command: an indented hierarchy
// view of a timeline document.
func InspectCommand() *cli.Command {
	var rawJSON bool
	var lanes bool
	var width int

	return &cli.Command{
		Name:    "inspect",
		Summary: "Render a timeline document as a tree",
		Usage:   "montage inspect <file> [flags]",
		Description: `Render a timeline document's hierarchy.

Each row shows the node's name, kind, markers, and its trimmed range
alongside its position on the timeline. Tracks stack the way an NLE
draws them when --lanes is set: video above the ruler line, audio
below.

With --json the decoded document is re-encoded as indented JSON on
stdout instead, which normalizes comments, key order, and trailing
commas from hand-edited files.`,
		Examples: []cli.Example{
			{
				Description: "Inspect a timeline",
				Command:     "montage inspect cut.mtl",
			},
			{
				Description: "Tree plus proportional track lanes",
				Command:     "montage inspect cut.mtl --lanes",
			},
			{
				Description: "Dump normalized JSON",
				Command:     "montage inspect cut.mtlb --json",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
			flagSet.BoolVar(&rawJSON, "json", false, "print the document as normalized JSON")
			flagSet.BoolVar(&lanes, "lanes", false, "append a proportional lane strip")
			flagSet.IntVar(&width, "width", 0, "render width (default: terminal width)")
			return flagSet
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("exactly one document argument required\n\nUsage: montage inspect <file> [flags]")
			}

			if rawJSON {
				root, err := document.Read(args[0])
				if err != nil {
					return err
				}
				data, err := document.WriteBytes(root, 2)
				if err != nil {
					return err
				}
				os.Stdout.Write(data)
				fmt.Println()
				return nil
			}

			root, err := document.ReadTimeline(args[0])
			if err != nil {
				return err
			}

			theme := displayTheme()
			renderWidth := displayWidth(width)
			fmt.Println(timelineui.RenderTree(root, theme, renderWidth))
			if lanes {
				fmt.Println()
				fmt.Println(timelineui.RenderLanes(root, theme, renderWidth))
			}
			return nil
		},
	}
}
