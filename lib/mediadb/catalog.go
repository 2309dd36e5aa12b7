// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package mediadb

import (
	"fmt"
	"log/slog"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/montage-foundation/montage/lib/opentime"
)

// catalogSchema is applied to every new connection. All statements
// are idempotent so existing databases pass through unchanged.
const catalogSchema = `
	CREATE TABLE IF NOT EXISTS media (
		id             INTEGER PRIMARY KEY,
		url            TEXT NOT NULL UNIQUE,
		size_bytes     INTEGER,
		blake3         BLOB,
		duration_value REAL,
		duration_rate  REAL,
		added_at       INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_media_blake3 ON media(blake3);

	CREATE TABLE IF NOT EXISTS timelines (
		id         INTEGER PRIMARY KEY,
		path       TEXT NOT NULL UNIQUE,
		name       TEXT NOT NULL,
		doc_blake3 BLOB NOT NULL,
		scanned_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS timeline_media (
		timeline_id INTEGER NOT NULL REFERENCES timelines(id) ON DELETE CASCADE,
		media_id    INTEGER NOT NULL REFERENCES media(id) ON DELETE CASCADE,
		clip_name   TEXT NOT NULL,
		PRIMARY KEY (timeline_id, media_id, clip_name)
	) WITHOUT ROWID;
	CREATE INDEX IF NOT EXISTS idx_timeline_media_media ON timeline_media(media_id);
`

// Config holds the parameters for opening a media catalog. Path is
// required; all other fields have defaults.
type Config struct {
	// Path is the filesystem path to the catalog database file. The
	// parent directory must exist. The file is created if it does
	// not exist.
	Path string

	// PoolSize is the number of connections in the pool. Defaults
	// to 4 if zero or negative. SQLite serializes writes regardless
	// of pool size; extra connections only help concurrent reads.
	PoolSize int

	// Logger receives operational messages (open/close, scans,
	// relinks). If nil, a no-op logger is used.
	Logger *slog.Logger
}

// Catalog is a media catalog backed by a SQLite database. Safe for
// concurrent use.
type Catalog struct {
	pool   *sqlitex.Pool
	logger *slog.Logger
	path   string

	// now stamps added_at and scanned_at. Tests override it.
	now func() time.Time
}

// Open opens the catalog database at cfg.Path, creating it and its
// schema if needed. The caller must call Close when done.
func Open(cfg Config) (*Catalog, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("media catalog: Path is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 4
	}

	pool, err := openPool(cfg.Path, poolSize, func(conn *sqlite.Conn) error {
		return sqlitex.ExecuteScript(conn, catalogSchema, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("media catalog: %w", err)
	}

	logger.Info("media catalog opened",
		"path", cfg.Path,
		"pool_size", poolSize,
	)

	return &Catalog{
		pool:   pool,
		logger: logger,
		path:   cfg.Path,
		now:    time.Now,
	}, nil
}

// Close closes the underlying connection pool. Blocks until all
// borrowed connections are returned.
func (c *Catalog) Close() error {
	if err := c.pool.Close(); err != nil {
		return fmt.Errorf("media catalog: closing %s: %w", c.path, err)
	}
	c.logger.Info("media catalog closed", "path", c.path)
	return nil
}

// MediaRecord is one cataloged media source.
type MediaRecord struct {
	// URL identifies the source: the resolved absolute path for
	// file-like reference targets, the original URL for other
	// schemes.
	URL string

	// Probed reports whether the file was readable at the last
	// scan. Always false for non-file URLs.
	Probed bool

	// SizeBytes and Digest are the file size and BLAKE3-256 content
	// digest from the last successful probe. Zero and nil when the
	// source has never been probed.
	SizeBytes int64
	Digest    []byte

	// Duration is the reference's available-range duration, when
	// any scanned reference declared one. Zero otherwise.
	Duration opentime.RationalTime

	// AddedAt is when the source first entered the catalog.
	AddedAt time.Time
}

// ClipMedia ties a cataloged media record to a clip that references
// it.
type ClipMedia struct {
	// Clip is the referencing clip's name.
	Clip string

	Media MediaRecord
}

// ScanResult reports what RecordTimeline cataloged.
type ScanResult struct {
	// Clips is the number of clips holding at least one external
	// reference.
	Clips int

	// Media is the number of distinct media sources recorded.
	Media int

	// Unreadable is the number of file-like sources that could not
	// be probed (absent, unreadable, or not a regular file).
	Unreadable int

	// DocChanged reports whether the document's fingerprint differs
	// from the previous scan of the same path. True for a first
	// scan.
	DocChanged bool
}
