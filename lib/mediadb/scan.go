// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package mediadb

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"slices"

	"github.com/zeebo/blake3"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/montage-foundation/montage/lib/document"
	"github.com/montage-foundation/montage/lib/opentime"
	"github.com/montage-foundation/montage/lib/timeline"
)

// sourceRow accumulates the catalog row for one distinct media
// source while a scan walks the document.
type sourceRow struct {
	url         string
	probed      bool
	sizeBytes   int64
	digest      []byte
	duration    opentime.RationalTime
	hasDuration bool
}

// RecordTimeline catalogs the media referenced by the timeline
// document rooted at root, which was read from path. Every external
// reference of every clip is recorded; file-like targets are probed
// (size and BLAKE3-256 digest) with relative targets resolved
// against the document's directory. The timeline's previous media
// associations are replaced.
//
// Unreadable files are cataloged without probe data and counted in
// the result; they are not errors. Probing happens before the write
// transaction opens, so slow media volumes do not hold the write
// lock.
func (c *Catalog) RecordTimeline(ctx context.Context, path string, root *timeline.Timeline) (_ *ScanResult, err error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("media catalog: resolving %s: %w", path, err)
	}
	baseDir := filepath.Dir(absPath)

	encoded, err := document.WriteBinary(root)
	if err != nil {
		return nil, fmt.Errorf("media catalog: fingerprinting document: %w", err)
	}
	fingerprint := blake3.Sum256(encoded)

	clips, err := root.FindClips(nil)
	if err != nil {
		return nil, fmt.Errorf("media catalog: walking clips: %w", err)
	}

	type link struct {
		url  string
		clip string
	}
	sources := make(map[string]*sourceRow)
	var links []link
	result := &ScanResult{}

	for _, clip := range clips {
		references := clip.MediaReferences()
		counted := false
		keys := make([]string, 0, len(references))
		for key := range references {
			keys = append(keys, key)
		}
		slices.Sort(keys)
		for _, key := range keys {
			external, ok := references[key].(*timeline.ExternalReference)
			if !ok {
				continue
			}
			target := external.TargetURL()
			if target == "" {
				c.logger.Debug("skipping reference with empty target",
					"clip", clip.Name(),
					"key", key,
				)
				continue
			}
			if !counted {
				result.Clips++
				counted = true
			}

			sourceURL, isFile := resolveTarget(baseDir, target)
			row := sources[sourceURL]
			if row == nil {
				row = &sourceRow{url: sourceURL}
				if isFile {
					size, digest, probeErr := probeFile(sourceURL)
					if probeErr != nil {
						result.Unreadable++
						c.logger.Debug("media source unreadable",
							"url", sourceURL,
							"error", probeErr,
						)
					} else {
						row.probed = true
						row.sizeBytes = size
						row.digest = digest
					}
				}
				sources[sourceURL] = row
			}
			if r, ok := external.AvailableRange(); ok && !row.hasDuration {
				row.duration = r.Duration()
				row.hasDuration = true
			}
			links = append(links, link{url: sourceURL, clip: clip.Name()})
		}
	}
	result.Media = len(sources)

	conn, err := c.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("media catalog: record timeline: %w", err)
	}
	defer c.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return nil, fmt.Errorf("media catalog: begin transaction: %w", err)
	}
	defer endTransaction(&err)

	// Upsert the timeline row, comparing fingerprints against the
	// previous scan of the same path.
	var timelineID int64
	var previous []byte
	foundTimeline := false
	err = sqlitex.Execute(conn, "SELECT id, doc_blake3 FROM timelines WHERE path = ?", &sqlitex.ExecOptions{
		Args: []any{absPath},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			foundTimeline = true
			timelineID = stmt.ColumnInt64(0)
			previous = make([]byte, stmt.ColumnLen(1))
			stmt.ColumnBytes(1, previous)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("media catalog: looking up timeline: %w", err)
	}
	result.DocChanged = !foundTimeline || !bytes.Equal(previous, fingerprint[:])

	now := c.now().Unix()
	if foundTimeline {
		err = sqlitex.Execute(conn, "UPDATE timelines SET name = ?, doc_blake3 = ?, scanned_at = ? WHERE id = ?", &sqlitex.ExecOptions{
			Args: []any{root.Name(), fingerprint[:], now, timelineID},
		})
		if err != nil {
			return nil, fmt.Errorf("media catalog: updating timeline: %w", err)
		}
	} else {
		err = sqlitex.Execute(conn, "INSERT INTO timelines (path, name, doc_blake3, scanned_at) VALUES (?, ?, ?, ?)", &sqlitex.ExecOptions{
			Args: []any{absPath, root.Name(), fingerprint[:], now},
		})
		if err != nil {
			return nil, fmt.Errorf("media catalog: inserting timeline: %w", err)
		}
		timelineID = conn.LastInsertRowID()
	}

	// Replace the timeline's associations wholesale: a rescan is
	// authoritative for what the document references now.
	err = sqlitex.Execute(conn, "DELETE FROM timeline_media WHERE timeline_id = ?", &sqlitex.ExecOptions{
		Args: []any{timelineID},
	})
	if err != nil {
		return nil, fmt.Errorf("media catalog: clearing associations: %w", err)
	}

	mediaIDs := make(map[string]int64, len(sources))
	sourceURLs := make([]string, 0, len(sources))
	for sourceURL := range sources {
		sourceURLs = append(sourceURLs, sourceURL)
	}
	slices.Sort(sourceURLs)
	for _, sourceURL := range sourceURLs {
		mediaIDs[sourceURL], err = c.upsertMedia(conn, sources[sourceURL], now)
		if err != nil {
			return nil, err
		}
	}

	for _, l := range links {
		err = sqlitex.Execute(conn, "INSERT OR IGNORE INTO timeline_media (timeline_id, media_id, clip_name) VALUES (?, ?, ?)", &sqlitex.ExecOptions{
			Args: []any{timelineID, mediaIDs[l.url], l.clip},
		})
		if err != nil {
			return nil, fmt.Errorf("media catalog: linking clip %q: %w", l.clip, err)
		}
	}

	c.logger.Info("timeline recorded",
		"path", absPath,
		"clips", result.Clips,
		"media", result.Media,
		"unreadable", result.Unreadable,
	)
	return result, nil
}

// upsertMedia inserts or refreshes one media row and returns its id.
// Probe columns reflect the current scan (a vanished file clears
// them); a known duration survives a scan whose references dropped
// their available range.
func (c *Catalog) upsertMedia(conn *sqlite.Conn, row *sourceRow, now int64) (int64, error) {
	var sizeArg, digestArg any
	if row.probed {
		sizeArg = row.sizeBytes
		digestArg = row.digest
	}
	var durationValueArg, durationRateArg any
	if row.hasDuration {
		durationValueArg = row.duration.Value()
		durationRateArg = row.duration.Rate()
	}

	err := sqlitex.Execute(conn, `INSERT INTO media (url, size_bytes, blake3, duration_value, duration_rate, added_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (url) DO UPDATE SET
			size_bytes = excluded.size_bytes,
			blake3 = excluded.blake3,
			duration_value = COALESCE(excluded.duration_value, media.duration_value),
			duration_rate = COALESCE(excluded.duration_rate, media.duration_rate)`, &sqlitex.ExecOptions{
		Args: []any{row.url, sizeArg, digestArg, durationValueArg, durationRateArg, now},
	})
	if err != nil {
		return 0, fmt.Errorf("media catalog: upserting media %s: %w", row.url, err)
	}

	var id int64
	err = sqlitex.Execute(conn, "SELECT id FROM media WHERE url = ?", &sqlitex.ExecOptions{
		Args: []any{row.url},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			id = stmt.ColumnInt64(0)
			return nil
		},
	})
	if err != nil {
		return 0, fmt.Errorf("media catalog: reading media id for %s: %w", row.url, err)
	}
	return id, nil
}

// resolveTarget classifies an external reference target. File-like
// targets (plain paths, and file:// URLs with an empty or localhost
// host) resolve to a cleaned absolute path, relative ones against
// baseDir. Anything else is cataloged verbatim and never probed.
func resolveTarget(baseDir, target string) (source string, isFile bool) {
	parsed, err := url.Parse(target)
	if err == nil && parsed.Scheme != "" && len(parsed.Scheme) > 1 {
		if parsed.Scheme != "file" {
			return target, false
		}
		if parsed.Host != "" && parsed.Host != "localhost" {
			return target, false
		}
		if parsed.Path == "" {
			return target, false
		}
		return filepath.Clean(filepath.FromSlash(parsed.Path)), true
	}

	path := filepath.FromSlash(target)
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	return filepath.Clean(path), true
}

// probeFile stats and hashes a media file. Errors when the path is
// absent, unreadable, or not a regular file.
func probeFile(path string) (int64, []byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, nil, err
	}
	if !info.Mode().IsRegular() {
		return 0, nil, fmt.Errorf("%s is not a regular file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return 0, nil, err
	}
	defer file.Close()

	hasher := blake3.New()
	size, err := io.Copy(hasher, file)
	if err != nil {
		return 0, nil, fmt.Errorf("hashing %s: %w", path, err)
	}
	return size, hasher.Sum(nil), nil
}
