// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for Montage packages.
//
// [WriteTree] scaffolds a directory tree from a path-to-content map
// inside t.TempDir(). Media catalog and command tests use it to lay
// out footage directories, config files, and timeline documents
// without repeating MkdirAll/WriteFile error plumbing.
//
// [UniqueID] generates monotonically increasing identifiers for test
// disambiguation. Use it instead of time.Now() when parallel tests
// need distinct document or bundle names inside a shared directory.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no Montage-internal dependencies.
package testutil
