// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package mediadb

import (
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// openPool opens a fixed-size SQLite connection pool for the catalog
// database at path. Every connection gets the standard pragmas and
// then the onConnect callback (schema creation). Connections are
// initialized lazily on first Take.
func openPool(path string, poolSize int, onConnect func(conn *sqlite.Conn) error) (*sqlitex.Pool, error) {
	pool, err := sqlitex.NewPool(path, sqlitex.PoolOptions{
		PoolSize: poolSize,
		PrepareConn: func(conn *sqlite.Conn) error {
			return prepareConnection(conn, onConnect)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return pool, nil
}

// prepareConnection applies the catalog's standard pragmas and then
// calls the optional onConnect callback. Runs once per connection in
// the pool, on first use.
//
//   - journal_mode=WAL: concurrent readers and a single writer;
//     reads never block writes.
//   - synchronous=NORMAL: transactions survive process crashes.
//     Catalog contents are rebuildable from the documents, so OS
//     crash durability is not worth fsync-per-commit.
//   - busy_timeout=5000: wait up to 5 seconds for a write lock
//     instead of returning SQLITE_BUSY immediately.
//   - foreign_keys=ON: timeline_media references cascade when a
//     timeline or media row is deleted.
//   - cache_size=-8192: 8 MB page cache per connection.
//   - temp_store=MEMORY: temporary indexes in memory.
func prepareConnection(conn *sqlite.Conn, onConnect func(*sqlite.Conn) error) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA cache_size=-8192",
		"PRAGMA temp_store=MEMORY",
	}

	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if onConnect != nil {
		if err := onConnect(conn); err != nil {
			return fmt.Errorf("preparing connection: %w", err)
		}
	}

	return nil
}
