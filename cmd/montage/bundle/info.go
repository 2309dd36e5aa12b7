// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/montage-foundation/montage/cmd/montage/cli"
	"github.com/montage-foundation/montage/lib/bundle"
)

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:        "info",
		Summary:     "Show a bundle's manifest",
		Description: "Info prints the manifest of a bundle: identity, creation time,\nentry table, and sizes. The manifest is stored in the clear even\nfor encrypted bundles, so info never needs an identity.",
		Usage:       "montage bundle info <bundle>",
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one bundle\n\nUsage: montage bundle info <bundle>")
			}

			reader, err := bundle.Open(args[0])
			if err != nil {
				return err
			}
			defer reader.Close()
			manifest := reader.Manifest()

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "Bundle:\t%s\n", args[0])
			fmt.Fprintf(w, "ID:\t%s\n", bundle.FormatID(reader.ID()))
			fmt.Fprintf(w, "Created:\t%s\n", manifest.CreatedAt.UTC().Format(time.RFC3339))
			fmt.Fprintf(w, "Document:\t%s\n", manifest.Document)
			fmt.Fprintf(w, "Entries:\t%d (%d media)\n", len(manifest.Entries), len(manifest.MediaEntries()))
			fmt.Fprintf(w, "Content:\t%s\n", formatSize(manifest.ContentSize()))
			fmt.Fprintf(w, "Size:\t%s\n", formatSize(reader.Size()))
			if manifest.Encrypted() {
				fmt.Fprintf(w, "Encrypted:\tyes, to %s\n", strings.Join(manifest.Recipients, ", "))
			} else {
				fmt.Fprintf(w, "Encrypted:\tno\n")
			}
			w.Flush()

			fmt.Println()
			w = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PATH\tSIZE\tSTORED\tCOMPRESSION")
			for _, entry := range manifest.Entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					entry.Path,
					formatSize(entry.Size),
					formatSize(entry.StoredSize),
					entry.Compression,
				)
			}
			return w.Flush()
		},
	}
}
