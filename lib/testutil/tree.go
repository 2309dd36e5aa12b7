// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteTree creates the given files under a fresh t.TempDir() and
// returns its root. Map keys are slash-separated relative paths;
// parent directories are created as needed. A key ending in "/"
// creates an empty directory, for tests that care about directories
// with no media in them.
//
//	root := testutil.WriteTree(t, map[string]string{
//		"footage/a0001.mov": "not really video",
//		"footage/audio/":    "",
//		"cut.mtl":           document,
//	})
//
// The tree is removed when the test completes.
func WriteTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for relative, content := range files {
		absolute := filepath.Join(root, filepath.FromSlash(relative))
		if strings.HasSuffix(relative, "/") {
			if err := os.MkdirAll(absolute, 0o755); err != nil {
				t.Fatalf("creating directory %s: %v", relative, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(absolute), 0o755); err != nil {
			t.Fatalf("creating parent of %s: %v", relative, err)
		}
		if err := os.WriteFile(absolute, []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", relative, err)
		}
	}
	return root
}
