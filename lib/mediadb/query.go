// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package mediadb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/montage-foundation/montage/lib/opentime"
)

// Lookup returns the cataloged record for a media source, or nil if
// the source is not cataloged. The url must be in the catalog's
// stored form: an absolute path for file sources, the original URL
// for other schemes.
func (c *Catalog) Lookup(ctx context.Context, url string) (*MediaRecord, error) {
	conn, err := c.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("media catalog: lookup: %w", err)
	}
	defer c.pool.Put(conn)

	var record *MediaRecord
	err = sqlitex.Execute(conn, "SELECT url, size_bytes, blake3, duration_value, duration_rate, added_at FROM media WHERE url = ?", &sqlitex.ExecOptions{
		Args: []any{url},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			found := scanMediaRecord(stmt)
			record = &found
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("media catalog: lookup %s: %w", url, err)
	}
	return record, nil
}

// TimelineMedia returns the cataloged media for a scanned timeline,
// one row per clip-to-source association, ordered by clip name then
// source. Errors if the timeline has never been recorded.
func (c *Catalog) TimelineMedia(ctx context.Context, path string) ([]ClipMedia, error) {
	conn, err := c.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("media catalog: timeline media: %w", err)
	}
	defer c.pool.Put(conn)

	timelineID, err := c.timelineID(conn, path)
	if err != nil {
		return nil, err
	}

	var rows []ClipMedia
	err = sqlitex.Execute(conn, `SELECT m.url, m.size_bytes, m.blake3, m.duration_value, m.duration_rate, m.added_at, tm.clip_name
		FROM timeline_media tm JOIN media m ON m.id = tm.media_id
		WHERE tm.timeline_id = ?
		ORDER BY tm.clip_name, m.url`, &sqlitex.ExecOptions{
		Args: []any{timelineID},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			rows = append(rows, ClipMedia{
				Clip:  stmt.ColumnText(6),
				Media: scanMediaRecord(stmt),
			})
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("media catalog: timeline media: %w", err)
	}
	return rows, nil
}

// Missing returns the timeline's cataloged media whose files are not
// readable right now. The filesystem is checked at call time rather
// than trusted from scan-time probes, so a file deleted after the
// last scan is reported and one restored since is not. Non-file URLs
// are never reported.
func (c *Catalog) Missing(ctx context.Context, path string) ([]ClipMedia, error) {
	rows, err := c.TimelineMedia(ctx, path)
	if err != nil {
		return nil, err
	}

	var missing []ClipMedia
	for _, row := range rows {
		if !filepath.IsAbs(row.Media.URL) {
			continue
		}
		info, statErr := os.Stat(row.Media.URL)
		if statErr != nil || !info.Mode().IsRegular() {
			missing = append(missing, row)
		}
	}
	return missing, nil
}

// Relink rewrites a path prefix across a timeline's cataloged media
// and re-probes the rewritten sources at their new locations. Only
// rows whose current URL begins with fromPrefix change. Returns the
// number of sources rewritten.
//
// When the rewritten URL is already cataloged (typically by a scan
// of a document that already points at the new location), the
// timeline's associations move to the existing row instead of
// creating a duplicate.
//
// Relink updates the catalog only; rewriting the document's
// references is a separate step.
func (c *Catalog) Relink(ctx context.Context, path, fromPrefix, toPrefix string) (_ int, err error) {
	if fromPrefix == "" {
		return 0, fmt.Errorf("media catalog: relink: from prefix is empty")
	}

	conn, err := c.pool.Take(ctx)
	if err != nil {
		return 0, fmt.Errorf("media catalog: relink: %w", err)
	}
	defer c.pool.Put(conn)

	timelineID, err := c.timelineID(conn, path)
	if err != nil {
		return 0, err
	}

	// Plan first: collect matching rows and probe the new locations
	// before any write lock is taken. The prefix comparison happens
	// in Go so no LIKE escaping is needed.
	type relinkRow struct {
		id     int64
		newURL string
		probed bool
		size   int64
		digest []byte
	}
	var matches []relinkRow
	err = sqlitex.Execute(conn, `SELECT m.id, m.url FROM media m
		WHERE m.id IN (SELECT media_id FROM timeline_media WHERE timeline_id = ?)
		ORDER BY m.url`, &sqlitex.ExecOptions{
		Args: []any{timelineID},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			current := stmt.ColumnText(1)
			if !strings.HasPrefix(current, fromPrefix) {
				return nil
			}
			matches = append(matches, relinkRow{
				id:     stmt.ColumnInt64(0),
				newURL: toPrefix + strings.TrimPrefix(current, fromPrefix),
			})
			return nil
		},
	})
	if err != nil {
		return 0, fmt.Errorf("media catalog: listing timeline media: %w", err)
	}
	if len(matches) == 0 {
		return 0, nil
	}

	for i := range matches {
		if !filepath.IsAbs(matches[i].newURL) {
			continue
		}
		size, digest, probeErr := probeFile(matches[i].newURL)
		if probeErr != nil {
			c.logger.Debug("relinked media still unreadable",
				"url", matches[i].newURL,
				"error", probeErr,
			)
			continue
		}
		matches[i].probed = true
		matches[i].size = size
		matches[i].digest = digest
	}

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return 0, fmt.Errorf("media catalog: begin transaction: %w", err)
	}
	defer endTransaction(&err)

	for _, match := range matches {
		existingID := int64(-1)
		err = sqlitex.Execute(conn, "SELECT id FROM media WHERE url = ?", &sqlitex.ExecOptions{
			Args: []any{match.newURL},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				existingID = stmt.ColumnInt64(0)
				return nil
			},
		})
		if err != nil {
			return 0, fmt.Errorf("media catalog: checking %s: %w", match.newURL, err)
		}

		if existingID >= 0 && existingID != match.id {
			// The target row already exists: move this timeline's
			// associations over rather than renaming into a UNIQUE
			// collision. The old row may still serve other
			// timelines.
			err = sqlitex.Execute(conn, "UPDATE OR IGNORE timeline_media SET media_id = ? WHERE timeline_id = ? AND media_id = ?", &sqlitex.ExecOptions{
				Args: []any{existingID, timelineID, match.id},
			})
			if err != nil {
				return 0, fmt.Errorf("media catalog: moving associations to %s: %w", match.newURL, err)
			}
			err = sqlitex.Execute(conn, "DELETE FROM timeline_media WHERE timeline_id = ? AND media_id = ?", &sqlitex.ExecOptions{
				Args: []any{timelineID, match.id},
			})
			if err != nil {
				return 0, fmt.Errorf("media catalog: clearing stale associations: %w", err)
			}
			continue
		}

		var sizeArg, digestArg any
		if match.probed {
			sizeArg = match.size
			digestArg = match.digest
		}
		err = sqlitex.Execute(conn, "UPDATE media SET url = ?, size_bytes = ?, blake3 = ? WHERE id = ?", &sqlitex.ExecOptions{
			Args: []any{match.newURL, sizeArg, digestArg, match.id},
		})
		if err != nil {
			return 0, fmt.Errorf("media catalog: rewriting to %s: %w", match.newURL, err)
		}
	}

	c.logger.Info("media relinked",
		"timeline", path,
		"from", fromPrefix,
		"to", toPrefix,
		"sources", len(matches),
	)
	return len(matches), nil
}

// timelineID resolves a document path to its catalog row id.
func (c *Catalog) timelineID(conn *sqlite.Conn, path string) (int64, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return 0, fmt.Errorf("media catalog: resolving %s: %w", path, err)
	}

	id := int64(-1)
	err = sqlitex.Execute(conn, "SELECT id FROM timelines WHERE path = ?", &sqlitex.ExecOptions{
		Args: []any{absPath},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			id = stmt.ColumnInt64(0)
			return nil
		},
	})
	if err != nil {
		return 0, fmt.Errorf("media catalog: looking up timeline %s: %w", absPath, err)
	}
	if id < 0 {
		return 0, fmt.Errorf("media catalog: timeline %s has not been scanned", absPath)
	}
	return id, nil
}

// scanMediaRecord reads a MediaRecord from a result row with columns
// url(0), size_bytes(1), blake3(2), duration_value(3),
// duration_rate(4), added_at(5).
func scanMediaRecord(stmt *sqlite.Stmt) MediaRecord {
	record := MediaRecord{
		URL:     stmt.ColumnText(0),
		AddedAt: time.Unix(stmt.ColumnInt64(5), 0),
	}
	if !stmt.ColumnIsNull(1) && !stmt.ColumnIsNull(2) {
		record.Probed = true
		record.SizeBytes = stmt.ColumnInt64(1)
		record.Digest = make([]byte, stmt.ColumnLen(2))
		stmt.ColumnBytes(2, record.Digest)
	}
	if !stmt.ColumnIsNull(3) && !stmt.ColumnIsNull(4) {
		record.Duration = opentime.NewRationalTime(stmt.ColumnFloat(3), stmt.ColumnFloat(4))
	}
	return record
}
