// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package media

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/montage-foundation/montage/cmd/montage/cli"
	"github.com/montage-foundation/montage/lib/document"
)

func scanCommand() *cli.Command {
	var dbPath string
	return &cli.Command{
		Name:        "scan",
		Summary:     "Record a timeline's media in the catalog",
		Description: "Scan walks a timeline's clips and records every external\nreference in the catalog, probing each file target for its size\nand content digest. Relative targets resolve against the\ndocument's directory. Unreadable files are recorded without probe\ndata rather than failing the scan; 'media missing' lists them.\n\nRescanning replaces the timeline's previous associations, so the\ncatalog follows the cut as it changes.",
		Usage:       "montage media scan <file> [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("scan", pflag.ContinueOnError)
			flags.StringVar(&dbPath, "db", "", "catalog database path (default: per-user catalog)")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one timeline document\n\nUsage: montage media scan <file> [flags]")
			}

			t, err := document.ReadTimeline(args[0])
			if err != nil {
				return err
			}

			catalog, err := openCatalog(dbPath, logger)
			if err != nil {
				return err
			}
			defer catalog.Close()

			result, err := catalog.RecordTimeline(ctx, args[0], t)
			if err != nil {
				return err
			}

			fmt.Printf("Scanned %s: %d clips, %d media sources\n", args[0], result.Clips, result.Media)
			if result.Unreadable > 0 {
				fmt.Printf("Unreadable sources: %d ('montage media missing %s' lists them)\n",
					result.Unreadable, args[0])
			}
			return nil
		},
	}
}
