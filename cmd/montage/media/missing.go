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

func missingCommand() *cli.Command {
	var dbPath string
	return &cli.Command{
		Name:        "missing",
		Summary:     "Report media files that are not readable",
		Description: "Missing checks a scanned timeline's file-backed media against\nthe filesystem right now and lists every source that is absent or\nunreadable. Exits 0 when everything is present and 1 otherwise,\nso render and delivery scripts can gate on it.\n\nThe filesystem is checked at call time, not trusted from the last\nscan: media deleted since the scan is reported, media restored\nsince is not.",
		Usage:       "montage media missing <file> [flags]",
		Examples: []cli.Example{
			{
				Description: "Gate a render on complete media",
				Command:     "montage media missing cut.mtl && render cut.mtl",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("missing", pflag.ContinueOnError)
			flags.StringVar(&dbPath, "db", "", "catalog database path (default: per-user catalog)")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one timeline document\n\nUsage: montage media missing <file> [flags]")
			}

			catalog, err := openCatalog(dbPath, logger)
			if err != nil {
				return err
			}
			defer catalog.Close()

			missing, err := catalog.Missing(ctx, args[0])
			if err != nil {
				return err
			}
			if len(missing) == 0 {
				fmt.Println("No missing media.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CLIP\tURL")
			for _, row := range missing {
				fmt.Fprintf(w, "%s\t%s\n", row.Clip, row.Media.URL)
			}
			w.Flush()
			return &cli.ExitError{Code: 1}
		},
	}
}
