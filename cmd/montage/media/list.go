// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/montage-foundation/montage/cmd/montage/cli"
)

func listCommand() *cli.Command {
	var dbPath string
	return &cli.Command{
		Name:        "list",
		Summary:     "List a timeline's cataloged media",
		Description: "List prints what the catalog knows about a timeline's media,\none row per clip-to-source association: the clip, the probed size\nand content digest, and the source URL. A dash in the size and\ndigest columns means the file was unreadable at scan time.\n\nThe timeline must have been scanned first.",
		Usage:       "montage media list <file> [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("list", pflag.ContinueOnError)
			flags.StringVar(&dbPath, "db", "", "catalog database path (default: per-user catalog)")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one timeline document\n\nUsage: montage media list <file> [flags]")
			}

			catalog, err := openCatalog(dbPath, logger)
			if err != nil {
				return err
			}
			defer catalog.Close()

			rows, err := catalog.TimelineMedia(ctx, args[0])
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Println("No media found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CLIP\tSIZE\tDIGEST\tURL")
			for _, row := range rows {
				size := "-"
				if row.Media.Probed {
					size = formatSize(row.Media.SizeBytes)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					row.Clip, size, shortDigest(row.Media.Digest), row.Media.URL)
			}
			return w.Flush()
		},
	}
}
