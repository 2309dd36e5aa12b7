// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/montage-foundation/montage/cmd/montage/cli"
	"github.com/montage-foundation/montage/lib/bundle"
)

func verifyCommand() *cli.Command {
	var identityPath string
	return &cli.Command{
		Name:        "verify",
		Summary:     "Check every entry digest in a bundle",
		Description: "Verify reads every entry of a bundle and checks its content\ndigest against the manifest, without writing anything to disk.\nExits 0 when the bundle is intact and 1 when any entry is damaged,\nso it slots into scripts and transfer pipelines.\n\nEncrypted bundles need --identity: entry digests cover the\nplaintext, so verification has to decrypt.",
		Usage:       "montage bundle verify <bundle> [flags]",
		Examples: []cli.Example{
			{
				Description: "Verify after a transfer",
				Command:     "montage bundle verify cut.mtz",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("verify", pflag.ContinueOnError)
			flags.StringVar(&identityPath, "identity", "", "age identity file for encrypted bundles (\"-\" reads stdin)")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one bundle\n\nUsage: montage bundle verify <bundle> [flags]")
			}

			reader, err := openBundle(args[0], identityPath)
			if err != nil {
				return err
			}
			defer reader.Close()

			if err := reader.Verify(); err != nil {
				fmt.Printf("%s: FAILED\n%v\n", args[0], err)
				return &cli.ExitError{Code: 1}
			}

			fmt.Printf("%s: OK (%s, %d entries, %s)\n",
				args[0],
				bundle.FormatID(reader.ID()),
				len(reader.Manifest().Entries),
				formatSize(reader.Size()),
			)
			return nil
		},
	}
}
