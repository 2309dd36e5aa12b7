// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package mediadb_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/montage-foundation/montage/lib/document"
	"github.com/montage-foundation/montage/lib/mediadb"
	"github.com/montage-foundation/montage/lib/opentime"
	"github.com/montage-foundation/montage/lib/testutil"
	"github.com/montage-foundation/montage/lib/timeline"
)

func openTestCatalog(t *testing.T) *mediadb.Catalog {
	t.Helper()

	catalog, err := mediadb.Open(mediadb.Config{
		Path: filepath.Join(t.TempDir(), "catalog.db"),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := catalog.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return catalog
}

// writeFixtureTimeline builds a footage tree and a document with four
// clips: two distinct file sources (one referenced relatively, once
// more through a file:// URL for dedup), and one remote https
// reference. Returns the tree root, the document path, and its parsed
// root.
func writeFixtureTimeline(t *testing.T) (string, string, *timeline.Timeline) {
	t.Helper()

	dir := testutil.WriteTree(t, map[string]string{
		"footage/shot_a.mov": "shot a raw frames",
		"footage/shot_b.mov": "shot b raw frames, somewhat longer",
	})
	shotA := filepath.Join(dir, "footage", "shot_a.mov")
	shotB := filepath.Join(dir, "footage", "shot_b.mov")

	available := opentime.NewTimeRange(opentime.NewRationalTime(0, 24), opentime.NewRationalTime(24, 24))

	refA := timeline.NewExternalReference("footage/shot_a.mov")
	refA.SetAvailableRange(available)
	refB := timeline.NewExternalReference(shotB)
	refADupe := timeline.NewExternalReference("file://" + shotA)
	refStock := timeline.NewExternalReference("https://example.com/stock/clouds.mov")

	track := timeline.NewTrack("V1", timeline.TrackKindVideo)
	for _, clip := range []*timeline.Clip{
		timeline.NewClip("one", refA),
		timeline.NewClip("two", refB),
		timeline.NewClip("one again", refADupe),
		timeline.NewClip("stock", refStock),
	} {
		clip.SetSourceRange(available)
		if err := track.AppendChild(clip); err != nil {
			t.Fatalf("AppendChild(%q): %v", clip.Name(), err)
		}
	}

	root := timeline.NewTimeline("catalog fixture")
	if err := root.Tracks().AppendChild(track); err != nil {
		t.Fatalf("appending track: %v", err)
	}

	path := filepath.Join(dir, "cut.mtl")
	if err := document.Write(path, root, 2); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return dir, path, root
}

// writeSmallTimeline builds a single-track document whose clips and
// reference targets come from the refs map.
func writeSmallTimeline(t *testing.T, path string, refs map[string]string) *timeline.Timeline {
	t.Helper()

	available := opentime.NewTimeRange(opentime.NewRationalTime(0, 24), opentime.NewRationalTime(24, 24))
	track := timeline.NewTrack("V1", timeline.TrackKindVideo)
	for clipName, target := range refs {
		clip := timeline.NewClip(clipName, timeline.NewExternalReference(target))
		clip.SetSourceRange(available)
		if err := track.AppendChild(clip); err != nil {
			t.Fatalf("AppendChild(%q): %v", clipName, err)
		}
	}

	root := timeline.NewTimeline("small fixture")
	if err := root.Tracks().AppendChild(track); err != nil {
		t.Fatalf("appending track: %v", err)
	}
	if err := document.Write(path, root, 2); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return root
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := mediadb.Open(mediadb.Config{}); err == nil {
		t.Fatal("expected error for empty Path")
	}
}

func TestRecordTimeline(t *testing.T) {
	catalog := openTestCatalog(t)
	dir, path, root := writeFixtureTimeline(t)
	ctx := context.Background()

	result, err := catalog.RecordTimeline(ctx, path, root)
	if err != nil {
		t.Fatalf("RecordTimeline: %v", err)
	}
	if result.Clips != 4 {
		t.Errorf("Clips = %d, want 4", result.Clips)
	}
	if result.Media != 3 {
		t.Errorf("Media = %d, want 3 (shot_a deduplicated)", result.Media)
	}
	if result.Unreadable != 0 {
		t.Errorf("Unreadable = %d, want 0", result.Unreadable)
	}
	if !result.DocChanged {
		t.Error("first scan should report DocChanged")
	}

	// The file source is probed, with the reference's duration.
	shotA := filepath.Join(dir, "footage", "shot_a.mov")
	record, err := catalog.Lookup(ctx, shotA)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if record == nil {
		t.Fatalf("Lookup(%s) = nil, want a record", shotA)
	}
	if !record.Probed {
		t.Error("file source should be probed")
	}
	if record.SizeBytes != int64(len("shot a raw frames")) {
		t.Errorf("SizeBytes = %d, want %d", record.SizeBytes, len("shot a raw frames"))
	}
	if len(record.Digest) != 32 {
		t.Errorf("digest length = %d, want 32", len(record.Digest))
	}
	if record.Duration != opentime.NewRationalTime(24, 24) {
		t.Errorf("Duration = %v, want 24/24", record.Duration)
	}
	if record.AddedAt.IsZero() {
		t.Error("AddedAt is zero")
	}

	// The remote source is cataloged verbatim and never probed.
	stock, err := catalog.Lookup(ctx, "https://example.com/stock/clouds.mov")
	if err != nil {
		t.Fatalf("Lookup(stock): %v", err)
	}
	if stock == nil {
		t.Fatal("remote source should be cataloged")
	}
	if stock.Probed {
		t.Error("remote source should not be probed")
	}

	// Unknown sources return nil without error.
	absent, err := catalog.Lookup(ctx, "/no/such/source.mov")
	if err != nil {
		t.Fatalf("Lookup(absent): %v", err)
	}
	if absent != nil {
		t.Errorf("Lookup(absent) = %+v, want nil", absent)
	}
}

func TestRescanIsStable(t *testing.T) {
	catalog := openTestCatalog(t)
	_, path, root := writeFixtureTimeline(t)
	ctx := context.Background()

	if _, err := catalog.RecordTimeline(ctx, path, root); err != nil {
		t.Fatalf("first RecordTimeline: %v", err)
	}
	second, err := catalog.RecordTimeline(ctx, path, root)
	if err != nil {
		t.Fatalf("second RecordTimeline: %v", err)
	}
	if second.DocChanged {
		t.Error("identical document should not report DocChanged")
	}

	rows, err := catalog.TimelineMedia(ctx, path)
	if err != nil {
		t.Fatalf("TimelineMedia: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("association count = %d, want 4 (no duplicates)", len(rows))
	}

	// Ordered by clip name, then source.
	wantClips := []string{"one", "one again", "stock", "two"}
	for i, row := range rows {
		if row.Clip != wantClips[i] {
			t.Errorf("row %d clip = %q, want %q", i, row.Clip, wantClips[i])
		}
	}

	// Both "one" clips share a single media row.
	if rows[0].Media.URL != rows[1].Media.URL {
		t.Errorf("deduplicated source differs: %q vs %q", rows[0].Media.URL, rows[1].Media.URL)
	}
}

func TestUnreadableSource(t *testing.T) {
	catalog := openTestCatalog(t)
	dir := t.TempDir()
	ghost := filepath.Join(dir, "gone.mov")
	path := filepath.Join(dir, "cut.mtl")
	root := writeSmallTimeline(t, path, map[string]string{"ghost": ghost})
	ctx := context.Background()

	result, err := catalog.RecordTimeline(ctx, path, root)
	if err != nil {
		t.Fatalf("RecordTimeline: %v", err)
	}
	if result.Unreadable != 1 {
		t.Errorf("Unreadable = %d, want 1", result.Unreadable)
	}

	record, err := catalog.Lookup(ctx, ghost)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if record == nil {
		t.Fatal("unreadable source should still be cataloged")
	}
	if record.Probed {
		t.Error("unreadable source should not be probed")
	}

	missing, err := catalog.Missing(ctx, path)
	if err != nil {
		t.Fatalf("Missing: %v", err)
	}
	if len(missing) != 1 || missing[0].Clip != "ghost" {
		t.Errorf("Missing = %+v, want one row for clip ghost", missing)
	}
}

func TestMissingChecksLive(t *testing.T) {
	catalog := openTestCatalog(t)
	dir, path, root := writeFixtureTimeline(t)
	ctx := context.Background()

	if _, err := catalog.RecordTimeline(ctx, path, root); err != nil {
		t.Fatalf("RecordTimeline: %v", err)
	}

	missing, err := catalog.Missing(ctx, path)
	if err != nil {
		t.Fatalf("Missing: %v", err)
	}
	if len(missing) != 0 {
		t.Fatalf("Missing = %+v, want none", missing)
	}

	// Deleting a file after the scan makes it missing, without a
	// rescan. The remote https source is never reported.
	if err := os.Remove(filepath.Join(dir, "footage", "shot_b.mov")); err != nil {
		t.Fatalf("removing shot_b: %v", err)
	}
	missing, err = catalog.Missing(ctx, path)
	if err != nil {
		t.Fatalf("Missing after delete: %v", err)
	}
	if len(missing) != 1 || missing[0].Clip != "two" {
		t.Errorf("Missing = %+v, want one row for clip two", missing)
	}
}

func TestMissingRequiresScan(t *testing.T) {
	catalog := openTestCatalog(t)
	_, err := catalog.Missing(context.Background(), filepath.Join(t.TempDir(), "never.mtl"))
	if err == nil {
		t.Fatal("expected error for an unscanned timeline")
	}
	if !strings.Contains(err.Error(), "not been scanned") {
		t.Errorf("error %q does not mention the missing scan", err)
	}
}

func TestRelink(t *testing.T) {
	catalog := openTestCatalog(t)
	dir, path, root := writeFixtureTimeline(t)
	ctx := context.Background()

	if _, err := catalog.RecordTimeline(ctx, path, root); err != nil {
		t.Fatalf("RecordTimeline: %v", err)
	}
	before, err := catalog.Lookup(ctx, filepath.Join(dir, "footage", "shot_a.mov"))
	if err != nil || before == nil {
		t.Fatalf("Lookup before relink: record=%v err=%v", before, err)
	}

	// The footage volume moves.
	oldDir := filepath.Join(dir, "footage")
	newDir := filepath.Join(dir, "relinked")
	if err := os.Rename(oldDir, newDir); err != nil {
		t.Fatalf("moving footage: %v", err)
	}

	count, err := catalog.Relink(ctx, path, oldDir, newDir)
	if err != nil {
		t.Fatalf("Relink: %v", err)
	}
	if count != 2 {
		t.Errorf("relinked count = %d, want 2", count)
	}

	// The catalog now points at the new location, re-probed, with
	// the duration carried over.
	after, err := catalog.Lookup(ctx, filepath.Join(newDir, "shot_a.mov"))
	if err != nil {
		t.Fatalf("Lookup after relink: %v", err)
	}
	if after == nil {
		t.Fatal("relinked source is not cataloged")
	}
	if !after.Probed {
		t.Error("relinked source should be re-probed")
	}
	if string(after.Digest) != string(before.Digest) {
		t.Error("content digest changed across a pure move")
	}
	if after.Duration != before.Duration {
		t.Errorf("Duration = %v, want %v", after.Duration, before.Duration)
	}

	stale, err := catalog.Lookup(ctx, filepath.Join(oldDir, "shot_a.mov"))
	if err != nil {
		t.Fatalf("Lookup stale: %v", err)
	}
	if stale != nil {
		t.Errorf("old URL still cataloged: %+v", stale)
	}

	missing, err := catalog.Missing(ctx, path)
	if err != nil {
		t.Fatalf("Missing: %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("Missing after relink = %+v, want none", missing)
	}
}

func TestRelinkMergesExistingRow(t *testing.T) {
	catalog := openTestCatalog(t)
	ctx := context.Background()

	dir := testutil.WriteTree(t, map[string]string{
		"old/shot.mov": "payload",
		"new/shot.mov": "payload",
	})
	oldDir := filepath.Join(dir, "old")
	newDir := filepath.Join(dir, "new")

	oldDoc := filepath.Join(dir, "old_cut.mtl")
	newDoc := filepath.Join(dir, "new_cut.mtl")
	oldRoot := writeSmallTimeline(t, oldDoc, map[string]string{"shot": filepath.Join(oldDir, "shot.mov")})
	newRoot := writeSmallTimeline(t, newDoc, map[string]string{"shot": filepath.Join(newDir, "shot.mov")})

	if _, err := catalog.RecordTimeline(ctx, oldDoc, oldRoot); err != nil {
		t.Fatalf("recording old cut: %v", err)
	}
	if _, err := catalog.RecordTimeline(ctx, newDoc, newRoot); err != nil {
		t.Fatalf("recording new cut: %v", err)
	}

	// Both URLs are cataloged; relinking the old cut must reuse the
	// existing row for the new URL rather than colliding with it.
	count, err := catalog.Relink(ctx, oldDoc, oldDir, newDir)
	if err != nil {
		t.Fatalf("Relink: %v", err)
	}
	if count != 1 {
		t.Errorf("relinked count = %d, want 1", count)
	}

	rows, err := catalog.TimelineMedia(ctx, oldDoc)
	if err != nil {
		t.Fatalf("TimelineMedia: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("association count = %d, want 1", len(rows))
	}
	if want := filepath.Join(newDir, "shot.mov"); rows[0].Media.URL != want {
		t.Errorf("relinked URL = %q, want %q", rows[0].Media.URL, want)
	}
}

func TestRelinkRequiresPrefix(t *testing.T) {
	catalog := openTestCatalog(t)
	_, err := catalog.Relink(context.Background(), "whatever.mtl", "", "/new")
	if err == nil {
		t.Fatal("expected error for empty from prefix")
	}
}
