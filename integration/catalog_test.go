// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package integration_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/montage-foundation/montage/lib/testutil"
)

// TestCatalogConcurrentScans points several scans at one catalog
// database at once, the way parallel ingest jobs on a workstation
// would. The WAL and the pool's busy timeout absorb the write
// contention; afterwards every timeline's associations must be
// intact and unmixed.
func TestCatalogConcurrentScans(t *testing.T) {
	isolateConfig(t, "frame_rate: 24\n")

	const workers = 4
	names := make([]string, workers)
	files := make(map[string]string, workers)
	for i := range names {
		names[i] = testutil.UniqueID("cut")
		files["media/"+names[i]+".mov"] = names[i] + " footage\n"
	}
	root := testutil.WriteTree(t, files)
	for _, name := range names {
		buildCut(t, filepath.Join(root, name+".mtl"), name, []clipSpec{
			{name: name + " take", target: "media/" + name + ".mov", start: 0, frames: 48},
		})
	}
	catalogPath := filepath.Join(root, "catalog.db")

	// The workers skip runCLI: capturing output swaps the process-wide
	// os.Stdout, which parallel subtests cannot share. Scan output
	// goes to the test binary's stdout and is not asserted on.
	t.Run("scan", func(t *testing.T) {
		for i := range workers {
			docPath := filepath.Join(root, names[i]+".mtl")
			t.Run(fmt.Sprintf("worker%d", i), func(t *testing.T) {
				t.Parallel()
				if err := montage("media", "scan", docPath, "--db", catalogPath); err != nil {
					t.Errorf("first scan: %v", err)
				}
				// Rescanning replaces the timeline's associations, so
				// this also contends on the delete-and-insert path.
				if err := montage("media", "scan", docPath, "--db", catalogPath); err != nil {
					t.Errorf("rescan: %v", err)
				}
			})
		}
	})

	if _, err := os.Stat(catalogPath); err != nil {
		t.Fatalf("catalog database: %v", err)
	}

	for i, name := range names {
		docPath := filepath.Join(root, name+".mtl")
		output := runCLI(t, "media", "list", docPath, "--db", catalogPath)
		if !strings.Contains(output, name+" take") {
			t.Errorf("catalog lost %s:\n%s", name, output)
		}
		if !strings.Contains(output, "media/"+name+".mov") {
			t.Errorf("catalog lost the source for %s:\n%s", name, output)
		}
		other := names[(i+1)%workers]
		if strings.Contains(output, other+" take") {
			t.Errorf("associations for %s leaked into %s:\n%s", other, name, output)
		}
		output = runCLI(t, "media", "missing", docPath, "--db", catalogPath)
		if !strings.Contains(output, "No missing media.") {
			t.Errorf("scan of %s recorded missing media:\n%s", name, output)
		}
	}
}
