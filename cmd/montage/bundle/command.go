// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

// Package bundle implements the "montage bundle" CLI subcommands for
// packing a timeline and its media into a single portable file and
// working with the result: extract, verify, info, a read-only FUSE
// mount, and keypair generation for encrypted bundles.
package bundle

import (
	"fmt"

	"github.com/montage-foundation/montage/cmd/montage/cli"
	"github.com/montage-foundation/montage/lib/bundle"
	"github.com/montage-foundation/montage/lib/secret"
)

// Command returns the top-level "bundle" command with all subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "bundle",
		Summary: "Pack a timeline with its media into one file",
		Description: `Work with montage bundles (.mtz).

A bundle is a single file carrying a timeline document plus the media
its external references point at, each entry compressed and digest
checked. Bundles travel well: one file to copy, verifiable on
arrival, optionally encrypted to age recipients so media never sits
on shared storage in the clear.`,
		Subcommands: []*cli.Command{
			createCommand(),
			extractCommand(),
			verifyCommand(),
			infoCommand(),
			mountCommand(),
			keygenCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Bundle a cut with its media",
				Command:     "montage bundle create cut.mtl",
			},
			{
				Description: "Encrypt to a reviewer's key",
				Command:     "montage bundle create cut.mtl --recipient age1ql3z...",
			},
			{
				Description: "Check a received bundle",
				Command:     "montage bundle verify cut.mtz",
			},
			{
				Description: "Browse bundled media without extracting",
				Command:     "montage bundle mount cut.mtz /mnt/cut",
			},
		},
	}
}

// openBundle opens a bundle for reading and, when it is encrypted,
// unlocks it with the age identity file at identityPath. The identity
// buffer only lives for the unlock; the derived bundle key stays with
// the reader.
func openBundle(path, identityPath string) (*bundle.Reader, error) {
	reader, err := bundle.Open(path)
	if err != nil {
		return nil, err
	}
	if reader.Encrypted() {
		if identityPath == "" {
			reader.Close()
			return nil, fmt.Errorf("bundle %s is encrypted: pass --identity with an age identity file", path)
		}
		identity, err := secret.ReadFromPath(identityPath)
		if err != nil {
			reader.Close()
			return nil, err
		}
		defer identity.Close()
		if err := reader.Unlock(identity); err != nil {
			reader.Close()
			return nil, fmt.Errorf("bundle %s: %w", path, err)
		}
	}
	return reader, nil
}

// formatSize returns a human-readable file size.
func formatSize(bytes int64) string {
	switch {
	case bytes >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(1<<30))
	case bytes >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(1<<20))
	case bytes >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
