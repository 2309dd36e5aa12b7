// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

// Package integration_test exercises complete montage workflows
// through the production command tree: every invocation goes through
// commands.Root and real dispatch, flag parsing, and file I/O, the
// same path the installed binary takes. The per-command packages test
// one command at a time; these tests chain them the way an editor
// would across a session.
//
// Everything here is hermetic: documents, media, catalogs, and
// bundles live in per-test temp directories, and MONTAGE_CONFIG
// points at a test-owned file so the developer's real configuration
// never leaks in.
package integration_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/montage-foundation/montage/cmd/montage/commands"
	"github.com/montage-foundation/montage/lib/document"
	"github.com/montage-foundation/montage/lib/opentime"
	"github.com/montage-foundation/montage/lib/testutil"
	"github.com/montage-foundation/montage/lib/timeline"
)

// isolateConfig points MONTAGE_CONFIG at a fresh file with the given
// content, so defaults (frame rate, track layout, compression) are
// fixed for the test.
func isolateConfig(t *testing.T, content string) {
	t.Helper()
	root := testutil.WriteTree(t, map[string]string{"config.yaml": content})
	t.Setenv("MONTAGE_CONFIG", filepath.Join(root, "config.yaml"))
}

// montage dispatches one invocation through a fresh command tree.
// Flag values live in closures captured at construction, so every
// invocation builds its own tree the way a new process would.
func montage(args ...string) error {
	return commands.Root().Execute(context.Background(), args)
}

// runCLI runs a montage invocation, capturing stdout. The command
// must succeed.
func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	output, err := runCLIErr(t, args...)
	if err != nil {
		t.Fatalf("montage %v: %v", args, err)
	}
	return output
}

// runCLIErr runs a montage invocation, capturing stdout, and returns
// the command's error for tests where a non-zero exit is the point.
// Not safe to call from parallel subtests: capturing swaps the
// process-wide os.Stdout.
func runCLIErr(t *testing.T, args ...string) (string, error) {
	t.Helper()

	original := os.Stdout
	reader, writer, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = writer

	runErr := montage(args...)

	writer.Close()
	os.Stdout = original

	var buffer bytes.Buffer
	io.Copy(&buffer, reader)
	reader.Close()

	return ansi.Strip(buffer.String()), runErr
}

// clipSpec describes one clip on the fixture timeline: its name, its
// media target, and its source range in frames at 24 fps.
type clipSpec struct {
	name   string
	target string
	start  float64
	frames float64
}

// buildCut writes a timeline document with one video track holding
// the given clips back to back, above an audio track with a gap-only
// bed matching the video duration. Video sits on top of the stack so
// time probes resolve to picture. Targets resolve relative to the
// document's directory.
func buildCut(t *testing.T, path, name string, clips []clipSpec) *timeline.Timeline {
	t.Helper()

	video := timeline.NewTrack("V1", timeline.TrackKindVideo)
	var total float64
	for _, spec := range clips {
		available := opentime.NewTimeRange(
			opentime.NewRationalTime(0, 24),
			opentime.NewRationalTime(spec.start+spec.frames, 24),
		)
		ref := timeline.NewExternalReference(spec.target)
		ref.SetAvailableRange(available)
		clip := timeline.NewClip(spec.name, ref)
		clip.SetSourceRange(opentime.NewTimeRange(
			opentime.NewRationalTime(spec.start, 24),
			opentime.NewRationalTime(spec.frames, 24),
		))
		if err := video.AppendChild(clip); err != nil {
			t.Fatalf("AppendChild(%q): %v", spec.name, err)
		}
		total += spec.frames
	}

	audio := timeline.NewTrack("A1", timeline.TrackKindAudio)
	bed := timeline.NewGap("room tone", opentime.NewRationalTime(total, 24))
	if err := audio.AppendChild(bed); err != nil {
		t.Fatalf("appending audio bed: %v", err)
	}

	cut := timeline.NewTimeline(name)
	for _, err := range []error{
		cut.Tracks().AppendChild(audio),
		cut.Tracks().AppendChild(video),
	} {
		if err != nil {
			t.Fatalf("building fixture timeline: %v", err)
		}
	}

	if err := document.Write(path, cut, 2); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return cut
}
