// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/montage-foundation/montage/cmd/montage/cli"
	"github.com/montage-foundation/montage/lib/bundle"
)

func extractCommand() *cli.Command {
	var (
		destDir      string
		identityPath string
	)
	return &cli.Command{
		Name:        "extract",
		Summary:     "Unpack a bundle into a directory",
		Description: "Extract writes every bundle entry under a directory, the\ntimeline document at the top and media under media/, exactly as\nthe stored document references them. Every entry is digest checked\non the way out, so a successful extract is also a verification.",
		Usage:       "montage bundle extract <bundle> [flags]",
		Examples: []cli.Example{
			{
				Description: "Unpack next to the bundle",
				Command:     "montage bundle extract cut.mtz",
			},
			{
				Description: "Unpack an encrypted bundle",
				Command:     "montage bundle extract cut.mtz --identity ~/.config/montage/identity.txt -o /work/cut",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("extract", pflag.ContinueOnError)
			flags.StringVarP(&destDir, "output", "o", "", "destination directory (default: bundle name without extension)")
			flags.StringVar(&identityPath, "identity", "", "age identity file for encrypted bundles (\"-\" reads stdin)")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one bundle\n\nUsage: montage bundle extract <bundle> [flags]")
			}
			bundlePath := args[0]
			if destDir == "" {
				destDir = strings.TrimSuffix(bundlePath, filepath.Ext(bundlePath))
			}

			reader, err := openBundle(bundlePath, identityPath)
			if err != nil {
				return err
			}
			defer reader.Close()

			if err := reader.Extract(destDir); err != nil {
				return err
			}

			logger.Debug("bundle extracted",
				"bundle", bundle.FormatID(reader.ID()),
				"dest", destDir,
			)
			fmt.Printf("Extracted %d entries to %s\n", len(reader.Manifest().Entries), destDir)
			return nil
		},
	}
}
