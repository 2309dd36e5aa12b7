// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package media

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"

	"github.com/montage-foundation/montage/cmd/montage/cli"
	"github.com/montage-foundation/montage/lib/document"
	"github.com/montage-foundation/montage/lib/timeline"
)

func relinkCommand() *cli.Command {
	var (
		fromPrefix string
		toPrefix   string
		output     string
		dbPath     string
	)
	return &cli.Command{
		Name:        "relink",
		Summary:     "Rewrite media paths after a volume move",
		Description: "Relink rewrites every external reference whose target starts\nwith the --from prefix to start with --to instead, in both the\ndocument and the catalog. The catalog rows are re-probed at their\nnew locations, so a relink doubles as a scan of the moved files.\n\nOnly absolute targets (bare paths or file URLs) are rewritten;\nrelative targets travel with the document and are left alone.\nWithout --output the document is rewritten in place.",
		Usage:       "montage media relink <file> --from <prefix> --to <prefix> [flags]",
		Examples: []cli.Example{
			{
				Description: "The raid moved to the archive shelf",
				Command:     "montage media relink cut.mtl --from /mnt/raid --to /mnt/archive",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("relink", pflag.ContinueOnError)
			flags.StringVar(&fromPrefix, "from", "", "path prefix to replace")
			flags.StringVar(&toPrefix, "to", "", "replacement prefix")
			flags.StringVarP(&output, "output", "o", "", "output path (default: rewrite the input)")
			flags.StringVar(&dbPath, "db", "", "catalog database path (default: per-user catalog)")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one timeline document\n\nUsage: montage media relink <file> --from <prefix> --to <prefix> [flags]")
			}
			if fromPrefix == "" {
				return fmt.Errorf("--from is required\n\nUsage: montage media relink <file> --from <prefix> --to <prefix> [flags]")
			}
			if output == "" {
				output = args[0]
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

			// Catalog the document as it stands, then move the rows.
			// Recording first means relink works on a cut that was
			// never scanned, and the rows re-probe at the new paths.
			if _, err := catalog.RecordTimeline(ctx, args[0], t); err != nil {
				return err
			}
			sources, err := catalog.Relink(ctx, args[0], fromPrefix, toPrefix)
			if err != nil {
				return err
			}

			clips, err := t.FindClips(nil)
			if err != nil {
				return err
			}
			references := 0
			for _, clip := range clips {
				external, ok := clip.MediaReference().(*timeline.ExternalReference)
				if !ok {
					continue
				}
				if rewritten, ok := rewriteTarget(external.TargetURL(), fromPrefix, toPrefix); ok {
					external.SetTargetURL(rewritten)
					references++
				}
			}

			if sources == 0 && references == 0 {
				fmt.Printf("No media targets start with %s.\n", fromPrefix)
				return nil
			}

			if err := document.Write(output, t, 2); err != nil {
				return err
			}
			fmt.Printf("Relinked %d media sources (%d references); wrote %s\n",
				sources, references, output)
			return nil
		},
	}
}

// rewriteTarget swaps fromPrefix for toPrefix on a reference target,
// preserving its form (bare path or file URL). ok reports whether
// the target matched. Relative targets never match: fromPrefix is a
// path prefix and relative targets resolve against the document.
func rewriteTarget(target, fromPrefix, toPrefix string) (_ string, ok bool) {
	const fileScheme = "file://"
	scheme := ""
	path := target
	if strings.HasPrefix(target, fileScheme) {
		scheme = fileScheme
		path = strings.TrimPrefix(target, fileScheme)
	}
	if !strings.HasPrefix(path, fromPrefix) {
		return target, false
	}
	return scheme + toPrefix + strings.TrimPrefix(path, fromPrefix), true
}
