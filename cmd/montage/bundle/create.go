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
	"github.com/montage-foundation/montage/lib/config"
)

func createCommand() *cli.Command {
	var (
		output      string
		mediaPolicy string
		recipients  []string
		compression string
	)
	return &cli.Command{
		Name:        "create",
		Summary:     "Bundle a timeline and its media",
		Description: "Create reads a timeline document, collects the media its\nexternal references point at, and writes everything into a single\n.mtz bundle next to the document. The stored copy of the document\nis rewritten so its references target the bundled media; the input\nfile is not modified.\n\nWith --recipient the bundle content is encrypted and only the\nnamed age keys can open it. The manifest stays readable either\nway, so 'bundle info' works without a key.",
		Usage:       "montage bundle create <file> [flags]",
		Examples: []cli.Example{
			{
				Description: "Bundle a cut, failing if any media is absent",
				Command:     "montage bundle create cut.mtl",
			},
			{
				Description: "Ship the document only, media marked missing",
				Command:     "montage bundle create cut.mtl --media all-missing -o review.mtz",
			},
			{
				Description: "Encrypt to two recipients",
				Command:     "montage bundle create cut.mtl --recipient age1ql3z... --recipient age1xmw2...",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("create", pflag.ContinueOnError)
			flags.StringVarP(&output, "output", "o", "", "bundle path (default: input with "+bundle.ExtBundle+")")
			flags.StringVar(&mediaPolicy, "media", "error-if-not-file", "absent media policy: error-if-not-file, missing-if-not-file, or all-missing")
			flags.StringArrayVar(&recipients, "recipient", nil, "age public key to encrypt to (repeatable)")
			flags.StringVar(&compression, "compression", "", "entry compression: auto, none, lz4, or zstd (default: from config)")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one timeline document\n\nUsage: montage bundle create <file> [flags]")
			}
			timelinePath := args[0]
			if output == "" {
				output = strings.TrimSuffix(timelinePath, filepath.Ext(timelinePath)) + bundle.ExtBundle
			}

			policy, err := bundle.ParseMediaPolicy(mediaPolicy)
			if err != nil {
				return fmt.Errorf("invalid --media: %w", err)
			}

			if compression == "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				compression = cfg.BundleCompression
			}
			var tag *bundle.CompressionTag
			if compression != "auto" {
				parsed, err := bundle.ParseCompressionTag(compression)
				if err != nil {
					return fmt.Errorf("invalid --compression: %w", err)
				}
				tag = &parsed
			}

			result, err := bundle.Create(timelinePath, output, bundle.CreateOptions{
				MediaPolicy: policy,
				Recipients:  recipients,
				Compression: tag,
				Logger:      logger,
			})
			if err != nil {
				return err
			}

			media := len(result.Manifest.MediaEntries())
			encrypted := ""
			if result.Manifest.Encrypted() {
				encrypted = ", encrypted"
			}
			fmt.Printf("Created %s: %d media entries, %s%s\n",
				output, media, formatSize(result.Size), encrypted)
			fmt.Printf("Bundle ID: %s\n", bundle.FormatID(result.ID))
			return nil
		},
	}
}
