// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

// Package media implements the "montage media" CLI subcommands on
// top of the media catalog: scan a timeline's external references
// into the catalog, list and check them, and relink them when a
// media volume moves.
//
// The catalog is a per-user SQLite database (override with --db).
// Scan is the only subcommand that writes timeline associations;
// list and missing read what a previous scan recorded.
package media

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/montage-foundation/montage/cmd/montage/cli"
	"github.com/montage-foundation/montage/lib/mediadb"
)

// Command returns the top-level "media" command with all subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "media",
		Summary: "Track, check, and relink timeline media",
		Description: `Work with the media catalog.

The catalog maps a timeline's external references to probed facts
about the files they target (size, content digest, availability), so
missing media is a query instead of a hunt. Scan a cut after
conforming, check it before a render, relink it after moving a
volume.`,
		Subcommands: []*cli.Command{
			scanCommand(),
			listCommand(),
			missingCommand(),
			relinkCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Record a cut's media in the catalog",
				Command:     "montage media scan cut.mtl",
			},
			{
				Description: "Fail a release script when media is absent",
				Command:     "montage media missing cut.mtl",
			},
			{
				Description: "Point a cut at a moved volume",
				Command:     "montage media relink cut.mtl --from /mnt/raid --to /mnt/archive",
			},
		},
	}
}

// openCatalog opens the catalog at dbPath, or the per-user default
// when dbPath is empty, creating the parent directory as needed.
func openCatalog(dbPath string, logger *slog.Logger) (*mediadb.Catalog, error) {
	if dbPath == "" {
		cacheDir, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("resolving the default catalog path: %w", err)
		}
		dbPath = filepath.Join(cacheDir, "montage", "catalog.db")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}
	return mediadb.Open(mediadb.Config{Path: dbPath, Logger: logger})
}

// shortDigest renders the first six bytes of a content digest, or a
// dash for media that has never been probed.
func shortDigest(digest []byte) string {
	if len(digest) == 0 {
		return "-"
	}
	if len(digest) > 6 {
		digest = digest[:6]
	}
	return hex.EncodeToString(digest)
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
