// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package query

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/montage-foundation/montage/lib/document"
	"github.com/montage-foundation/montage/lib/opentime"
	"github.com/montage-foundation/montage/lib/timeline"
)

// writeCut builds a 24 fps document with an overlay stack on top and
// writes it to a temp .mtl. Bottom to top: A1 carries a 96 frame tone
// with missing media; V1 carries intro [0,48), a 24 frame gap, and
// interview [72,144); the "overlays" stack holds track fg with the 48
// frame logo clip.
func writeCut(t *testing.T) string {
	t.Helper()
	frames := func(count float64) opentime.RationalTime {
		return opentime.NewRationalTime(count, 24)
	}
	spans := func(start, duration float64) opentime.TimeRange {
		return opentime.NewTimeRange(frames(start), frames(duration))
	}

	tone := timeline.NewClip("tone", timeline.NewMissingReference())
	tone.SetSourceRange(spans(0, 96))
	audio := timeline.NewTrack("A1", timeline.TrackKindAudio)

	intro := timeline.NewClip("intro", timeline.NewExternalReference("file:///footage/intro.mov"))
	intro.SetSourceRange(spans(0, 48))
	interview := timeline.NewClip("interview", timeline.NewExternalReference("file:///footage/interview.mov"))
	interview.SetSourceRange(spans(0, 72))
	video := timeline.NewTrack("V1", timeline.TrackKindVideo)

	logo := timeline.NewClip("logo", timeline.NewExternalReference("file:///footage/logo.png"))
	logo.SetSourceRange(spans(0, 48))
	foreground := timeline.NewTrack("fg", timeline.TrackKindVideo)
	overlays := timeline.NewStack("overlays")

	cut := timeline.NewTimeline("layered cut")
	for _, err := range []error{
		audio.AppendChild(tone),
		video.AppendChild(intro),
		video.AppendChild(timeline.NewGap("spacer", frames(24))),
		video.AppendChild(interview),
		foreground.AppendChild(logo),
		overlays.AppendChild(foreground),
		cut.Tracks().AppendChild(audio),
		cut.Tracks().AppendChild(video),
		cut.Tracks().AppendChild(overlays),
	} {
		if err != nil {
			t.Fatalf("building fixture timeline: %v", err)
		}
	}

	path := filepath.Join(t.TempDir(), "cut.mtl")
	if err := document.Write(path, cut, 2); err != nil {
		t.Fatalf("writing fixture document: %v", err)
	}
	return path
}

// captureStdout captures stdout output during fn execution.
func captureStdout(t *testing.T, fn func() error) string {
	t.Helper()

	original := os.Stdout
	reader, writer, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = writer

	runErr := fn()

	writer.Close()
	os.Stdout = original

	var buffer bytes.Buffer
	io.Copy(&buffer, reader)
	reader.Close()

	if runErr != nil {
		t.Fatalf("command failed: %v", runErr)
	}
	return ansi.Strip(buffer.String())
}

func TestFindCommand_Clips(t *testing.T) {
	path := writeCut(t)

	output := captureStdout(t, func() error {
		return FindCommand().Execute(context.Background(), []string{path, "--type", "clip"})
	})

	for _, want := range []string{"intro", "interview", "tone", "logo"} {
		if !strings.Contains(output, want) {
			t.Errorf("clip search missing %q:\n%s", want, output)
		}
	}
	if strings.Contains(output, "spacer") {
		t.Errorf("clip search returned a gap:\n%s", output)
	}
}

func TestFindCommand_Gaps(t *testing.T) {
	path := writeCut(t)

	output := captureStdout(t, func() error {
		return FindCommand().Execute(context.Background(), []string{path, "--type", "gap"})
	})

	if !strings.Contains(output, "spacer") {
		t.Errorf("gap search missing the gap:\n%s", output)
	}
	if strings.Contains(output, "intro") {
		t.Errorf("gap search returned a clip:\n%s", output)
	}
	// The gap starts after intro, two seconds in.
	if !strings.Contains(output, "00:00:02:00") {
		t.Errorf("gap row missing its timeline start:\n%s", output)
	}
}

func TestFindCommand_Stacks(t *testing.T) {
	path := writeCut(t)

	output := captureStdout(t, func() error {
		return FindCommand().Execute(context.Background(), []string{path, "--type", "stack"})
	})

	if !strings.Contains(output, "overlays") {
		t.Errorf("stack search missing the overlay stack:\n%s", output)
	}
	if strings.Contains(output, "intro") {
		t.Errorf("stack search returned a clip:\n%s", output)
	}
}

func TestFindCommand_Range(t *testing.T) {
	path := writeCut(t)

	output := captureStdout(t, func() error {
		return FindCommand().Execute(context.Background(), []string{path, "--range", "0..48"})
	})

	if !strings.Contains(output, "intro") {
		t.Errorf("range search missing intro:\n%s", output)
	}
	for _, excluded := range []string{"spacer", "interview"} {
		if strings.Contains(output, excluded) {
			t.Errorf("range search returned %q outside [0, 48):\n%s", excluded, output)
		}
	}
}

func TestFindCommand_Fuzzy(t *testing.T) {
	path := writeCut(t)

	output := captureStdout(t, func() error {
		return FindCommand().Execute(context.Background(), []string{path, "--fuzzy", "int"})
	})

	introRow := strings.Index(output, "intro")
	interviewRow := strings.Index(output, "interview")
	if introRow < 0 || interviewRow < 0 {
		t.Fatalf("fuzzy search missing a match:\n%s", output)
	}
	if introRow > interviewRow {
		t.Errorf("equal scores should keep document order:\n%s", output)
	}
	for _, excluded := range []string{"tone", "logo", "spacer"} {
		if strings.Contains(output, excluded) {
			t.Errorf("fuzzy search returned non-match %q:\n%s", excluded, output)
		}
	}
}

func TestFindCommand_NoMatches(t *testing.T) {
	path := writeCut(t)

	output := captureStdout(t, func() error {
		return FindCommand().Execute(context.Background(), []string{path, "--fuzzy", "zzzzzz"})
	})

	if !strings.Contains(output, "No matches found.") {
		t.Errorf("output = %q, want the empty message", output)
	}
}

func TestFindCommand_UnknownType(t *testing.T) {
	path := writeCut(t)

	err := FindCommand().Execute(context.Background(), []string{path, "--type", "marker"})
	if err == nil || !strings.Contains(err.Error(), "unknown node type") {
		t.Fatalf("err = %v, want unknown node type", err)
	}
}

func TestFindCommand_BadRange(t *testing.T) {
	path := writeCut(t)

	err := FindCommand().Execute(context.Background(), []string{path, "--range", "96..24"})
	if err == nil || !strings.Contains(err.Error(), "invalid --range") {
		t.Fatalf("err = %v, want invalid --range", err)
	}
}

func TestAtCommand_DescendsToClip(t *testing.T) {
	path := writeCut(t)

	output := captureStdout(t, func() error {
		return AtCommand().Execute(context.Background(), []string{path, "84"})
	})

	// Frame 84 sits in interview, 12 frames past its cut. The overlay
	// stack ended at 48, so the search falls through to V1.
	if !strings.Contains(output, `track "V1" at 00:00:03:12`) {
		t.Errorf("missing the track level:\n%s", output)
	}
	if !strings.Contains(output, `clip "interview" at 00:00:00:12`) {
		t.Errorf("missing the clip level:\n%s", output)
	}
	if !strings.Contains(output, "(file:///footage/interview.mov)") {
		t.Errorf("missing the media target:\n%s", output)
	}
}

func TestAtCommand_TopmostStackWins(t *testing.T) {
	path := writeCut(t)

	output := captureStdout(t, func() error {
		return AtCommand().Execute(context.Background(), []string{path, "12"})
	})

	for _, want := range []string{`stack "overlays"`, `track "fg"`, `clip "logo"`} {
		if !strings.Contains(output, want) {
			t.Errorf("chain missing %q:\n%s", want, output)
		}
	}
}

func TestAtCommand_Shallow(t *testing.T) {
	path := writeCut(t)

	output := captureStdout(t, func() error {
		return AtCommand().Execute(context.Background(), []string{path, "84", "--shallow"})
	})

	if !strings.Contains(output, `track "V1"`) {
		t.Errorf("missing the first level:\n%s", output)
	}
	if strings.Contains(output, "clip") {
		t.Errorf("shallow search descended:\n%s", output)
	}
}

func TestAtCommand_NothingThere(t *testing.T) {
	path := writeCut(t)

	output := captureStdout(t, func() error {
		return AtCommand().Execute(context.Background(), []string{path, "200"})
	})

	if !strings.Contains(output, "Nothing at 00:00:08:08.") {
		t.Errorf("output = %q, want the empty message", output)
	}
}

func TestAtCommand_BadTime(t *testing.T) {
	path := writeCut(t)

	err := AtCommand().Execute(context.Background(), []string{path, "12:xx"})
	if err == nil || !strings.Contains(err.Error(), "invalid time") {
		t.Fatalf("err = %v, want invalid time", err)
	}
}

func TestAtCommand_ArgumentCount(t *testing.T) {
	err := AtCommand().Execute(context.Background(), []string{"cut.mtl"})
	if err == nil || !strings.Contains(err.Error(), "montage at") {
		t.Fatalf("err = %v, want usage hint", err)
	}
}
