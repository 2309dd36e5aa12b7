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
)

// FlattenCommand returns the "montage flatten" command.
func FlattenCommand() *cli.Command {
	var output string
	return &cli.Command{
		Name:        "flatten",
		Summary:     "Collapse video layers into one track",
		Description: "Flatten resolves the timeline's video tracks into a single track\nby topmost-visible selection: wherever an upper track presents\nsomething it wins, and gaps or disabled clips fall through to the\nlayer below. Audio tracks pass through untouched. Without\n--output the file is rewritten in place.",
		Usage:       "montage flatten <file> [flags]",
		Examples: []cli.Example{
			{
				Description: "Flatten a layered cut",
				Command:     "montage flatten layered.mtl -o flat.mtl",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("flatten", pflag.ContinueOnError)
			flags.StringVarP(&output, "output", "o", "", "output path (default: rewrite the input)")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one timeline document\n\nUsage: montage flatten <file> [flags]")
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
			video := t.VideoTracks()
			audio := t.AudioTracks()
			if len(video) == 0 {
				return fmt.Errorf("%s has no video tracks to flatten", args[0])
			}
			if skipped := len(t.Tracks().Children()) - len(video) - len(audio); skipped > 0 {
				logger.Warn("skipping non-track children of the track stack", "count", skipped)
			}

			flat, err := edit.FlattenTracks(video)
			if err != nil {
				return err
			}

			// FlattenTracks builds from copies, so the old children can
			// be orphaned and the survivors reattached. Reusing the
			// stack keeps its name, trim, markers, and metadata.
			stack := t.Tracks()
			stack.ClearChildren()
			if err := stack.AppendChild(flat); err != nil {
				return err
			}
			for _, track := range audio {
				if err := stack.AppendChild(track); err != nil {
					return err
				}
			}

			if err := document.Write(output, t, 2); err != nil {
				return err
			}
			fmt.Printf("Flattened %d video tracks into one; wrote %s\n", len(video), output)
			return nil
		},
	}
}
