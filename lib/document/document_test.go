// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/montage-foundation/montage/lib/opentime"
	"github.com/montage-foundation/montage/lib/timeline"
)

func at24(value float64) opentime.RationalTime {
	return opentime.NewRationalTime(value, 24)
}

func range24(start, duration float64) opentime.TimeRange {
	return opentime.NewTimeRange(at24(start), at24(duration))
}

// fullTimeline builds a timeline that touches every schema: nested
// compositions, all media reference kinds, markers, every effect
// kind, trims, a disabled item, and metadata at several levels.
func fullTimeline(t *testing.T) *timeline.Timeline {
	t.Helper()

	online := timeline.NewExternalReference("file:///media/intro.mov")
	online.SetAvailableRange(range24(0, 72))
	proxy := timeline.NewExternalReference("file:///proxies/intro.mov")
	proxy.SetName("quarter res")
	proxy.SetAvailableRange(range24(0, 72))
	intro := timeline.NewClip("intro", online)
	if err := intro.SetMediaReferences(map[string]timeline.MediaReference{
		timeline.DefaultMediaKey: online,
		"proxy":                  proxy,
	}, "proxy"); err != nil {
		t.Fatalf("SetMediaReferences: %v", err)
	}
	intro.SetSourceRange(range24(12, 24))
	marker := timeline.NewMarker("fix color", range24(0, 6), timeline.MarkerColorRed)
	marker.SetComment("sky is magenta")
	intro.AddMarker(marker)
	intro.AddEffect(timeline.NewLinearTimeWarp("half speed", 0.5))

	spacer := timeline.NewGap("spacer", at24(24))
	spacer.SetEnabled(false)

	bars := timeline.NewGeneratorReference("bars", "SMPTEBars")
	bars.SetAvailableRange(range24(0, 48))
	bars.Parameters()["intensity"] = 0.8
	title := timeline.NewClip("title", bars)
	title.AddEffect(timeline.NewFreezeFrame("hold"))

	video := timeline.NewTrack("V1", timeline.TrackKindVideo)
	for _, child := range []timeline.Composable{intro, spacer, title} {
		if err := video.AppendChild(child); err != nil {
			t.Fatalf("AppendChild: %v", err)
		}
	}

	tone := timeline.NewClip("tone", timeline.NewMissingReference())
	tone.SetSourceRange(range24(0, 96))
	audio := timeline.NewTrack("A1", timeline.TrackKindAudio)
	if err := audio.AppendChild(tone); err != nil {
		t.Fatalf("AppendChild: %v", err)
	}

	overlayClip := timeline.NewClip("logo", timeline.NewExternalReference("file:///media/logo.png"))
	overlayClip.SetSourceRange(range24(0, 48))
	overlayTrack := timeline.NewTrack("fg", timeline.TrackKindVideo)
	if err := overlayTrack.AppendChild(overlayClip); err != nil {
		t.Fatalf("AppendChild: %v", err)
	}
	overlays := timeline.NewStack("overlays")
	if err := overlays.AppendChild(overlayTrack); err != nil {
		t.Fatalf("AppendChild: %v", err)
	}

	tl := timeline.NewTimeline("directors cut")
	tl.SetGlobalStartTime(at24(86400))
	tl.Metadata()["montage"] = map[string]any{"revision": "a"}
	for _, child := range []timeline.Composable{video, audio, overlays} {
		if err := tl.Tracks().AppendChild(child); err != nil {
			t.Fatalf("AppendChild: %v", err)
		}
	}
	return tl
}

// checkFullTimeline spot-checks the structure fullTimeline builds
// after a round trip.
func checkFullTimeline(t *testing.T, tl *timeline.Timeline) {
	t.Helper()

	if tl.Name() != "directors cut" {
		t.Errorf("name = %q", tl.Name())
	}
	start, ok := tl.GlobalStartTime()
	if !ok || !start.Equal(at24(86400)) {
		t.Errorf("global start = %v (set %t)", start, ok)
	}
	montage, ok := tl.Metadata()["montage"].(map[string]any)
	if !ok || montage["revision"] != "a" {
		t.Errorf("metadata = %#v", tl.Metadata())
	}

	children := tl.Tracks().Children()
	if len(children) != 3 {
		t.Fatalf("got %d top-level children, want 3", len(children))
	}
	video, ok := children[0].(*timeline.Track)
	if !ok {
		t.Fatalf("children[0] = %T, want track", children[0])
	}
	if video.Kind() != timeline.TrackKindVideo {
		t.Fatalf("children[0] kind = %v", video.Kind())
	}
	audio, ok := children[1].(*timeline.Track)
	if !ok {
		t.Fatalf("children[1] = %T, want track", children[1])
	}
	if audio.Kind() != timeline.TrackKindAudio {
		t.Fatalf("children[1] kind = %v", audio.Kind())
	}
	if _, ok := children[2].(*timeline.Stack); !ok {
		t.Fatalf("children[2] = %T, want stack", children[2])
	}

	intro, ok := video.Children()[0].(*timeline.Clip)
	if !ok {
		t.Fatalf("video child 0 = %T", video.Children()[0])
	}
	if intro.ActiveMediaKey() != "proxy" {
		t.Errorf("active media key = %q", intro.ActiveMediaKey())
	}
	proxy, ok := intro.MediaReference().(*timeline.ExternalReference)
	if !ok || proxy.TargetURL() != "file:///proxies/intro.mov" {
		t.Fatalf("active reference = %#v", intro.MediaReference())
	}
	if proxy.Name() != "quarter res" {
		t.Errorf("proxy name = %q", proxy.Name())
	}
	sourceRange, ok := intro.SourceRange()
	if !ok || !sourceRange.Equal(range24(12, 24)) {
		t.Errorf("intro source range = %v", sourceRange)
	}
	markers := intro.Markers()
	if len(markers) != 1 || markers[0].Comment() != "sky is magenta" || markers[0].Color() != timeline.MarkerColorRed {
		t.Errorf("intro markers = %#v", markers)
	}
	warp, ok := intro.Effects()[0].(*timeline.LinearTimeWarp)
	if !ok || warp.TimeScalar() != 0.5 {
		t.Errorf("intro effect = %#v", intro.Effects()[0])
	}

	spacer, ok := video.Children()[1].(*timeline.Gap)
	if !ok {
		t.Fatalf("video child 1 = %T", video.Children()[1])
	}
	if spacer.Enabled() {
		t.Error("spacer should be disabled")
	}
	duration, err := spacer.Duration()
	if err != nil || !duration.Equal(at24(24)) {
		t.Errorf("spacer duration = %v, %v", duration, err)
	}

	title, ok := video.Children()[2].(*timeline.Clip)
	if !ok {
		t.Fatalf("video child 2 = %T", video.Children()[2])
	}
	bars, ok := title.MediaReference().(*timeline.GeneratorReference)
	if !ok || bars.GeneratorKind() != "SMPTEBars" {
		t.Fatalf("title reference = %#v", title.MediaReference())
	}
	if intensity, ok := bars.Parameters()["intensity"].(float64); !ok || intensity != 0.8 {
		t.Errorf("bars parameters = %#v", bars.Parameters())
	}
	if _, ok := title.Effects()[0].(*timeline.FreezeFrame); !ok {
		t.Errorf("title effect = %T", title.Effects()[0])
	}

	tone := audio.Children()[0].(*timeline.Clip)
	if _, ok := tone.MediaReference().(*timeline.MissingReference); !ok {
		t.Errorf("tone reference = %T", tone.MediaReference())
	}
}

// --- Round trips ---

func TestRoundTripJSON(t *testing.T) {
	t.Parallel()

	original := fullTimeline(t)
	data, err := WriteBytes(original, 2)
	if err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}
	root, err := ReadBytes(data)
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	decoded, ok := root.(*timeline.Timeline)
	if !ok {
		t.Fatalf("decoded root = %T, want *timeline.Timeline", root)
	}
	checkFullTimeline(t, decoded)

	again, err := WriteBytes(decoded, 2)
	if err != nil {
		t.Fatalf("WriteBytes after round trip: %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Error("JSON bytes changed across a round trip")
	}
}

func TestRoundTripBinary(t *testing.T) {
	t.Parallel()

	original := fullTimeline(t)
	data, err := WriteBinary(original)
	if err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}
	root, err := ReadBinary(data)
	if err != nil {
		t.Fatalf("ReadBinary: %v", err)
	}
	decoded, ok := root.(*timeline.Timeline)
	if !ok {
		t.Fatalf("decoded root = %T, want *timeline.Timeline", root)
	}
	checkFullTimeline(t, decoded)

	again, err := WriteBinary(decoded)
	if err != nil {
		t.Fatalf("WriteBinary after round trip: %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Error("CBOR bytes changed across a round trip")
	}
}

func TestFileRoundTrip(t *testing.T) {
	t.Parallel()

	original := fullTimeline(t)
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "cut.mtl")
	if err := Write(jsonPath, original, 4); err != nil {
		t.Fatalf("Write .mtl: %v", err)
	}
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.HasSuffix(raw, []byte("\n")) {
		t.Error(".mtl output does not end with a newline")
	}
	if !bytes.Contains(raw, []byte(`"SCHEMA": "Timeline.1"`)) {
		t.Error(".mtl output is missing the root discriminator")
	}
	fromJSON, err := ReadTimeline(jsonPath)
	if err != nil {
		t.Fatalf("ReadTimeline .mtl: %v", err)
	}
	checkFullTimeline(t, fromJSON)

	binaryPath := filepath.Join(dir, "cut.mtlb")
	if err := Write(binaryPath, original, 0); err != nil {
		t.Fatalf("Write .mtlb: %v", err)
	}
	fromBinary, err := ReadTimeline(binaryPath)
	if err != nil {
		t.Fatalf("ReadTimeline .mtlb: %v", err)
	}
	checkFullTimeline(t, fromBinary)

	jsonBytes, err := WriteBytes(fromJSON, 0)
	if err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}
	binaryBytes, err := WriteBytes(fromBinary, 0)
	if err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}
	if !bytes.Equal(jsonBytes, binaryBytes) {
		t.Error("JSON and CBOR forms decoded to different timelines")
	}
}

// --- Hand-authored input ---

func TestReadBytesJSONC(t *testing.T) {
	t.Parallel()

	doc := `{
		// a hand-written cut
		"SCHEMA": "Timeline.1",
		"name": "scratch",
		"tracks": {
			"SCHEMA": "Stack.1",
			"name": "tracks",
			"children": [
				{
					"SCHEMA": "Track.1",
					"name": "V1",
					"kind": "Video",
					"children": [
						{
							"SCHEMA": "Clip.2",
							"name": "slate",
							/* the slate is generated, not shot */
							"media_references": {
								"DEFAULT_MEDIA": {
									"SCHEMA": "GeneratorReference.1",
									"generator_kind": "Slate",
									"available_range": {
										"SCHEMA": "TimeRange.1",
										"start_time": {"SCHEMA": "RationalTime.1", "value": 0, "rate": 24},
										"duration": {"SCHEMA": "RationalTime.1", "value": 48, "rate": 24},
									},
								},
							},
							"active_media_reference_key": "DEFAULT_MEDIA",
						},
					],
				},
			],
		},
	}`
	root, err := ReadBytes([]byte(doc))
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	tl, ok := root.(*timeline.Timeline)
	if !ok {
		t.Fatalf("root = %T", root)
	}
	if tl.Name() != "scratch" {
		t.Errorf("name = %q", tl.Name())
	}
	clips, err := tl.FindClips(nil)
	if err != nil {
		t.Fatalf("FindClips: %v", err)
	}
	if len(clips) != 1 || clips[0].Name() != "slate" {
		t.Fatalf("clips = %v", clips)
	}
	duration, err := clips[0].Duration()
	if err != nil || !duration.Equal(at24(48)) {
		t.Errorf("slate duration = %v, %v", duration, err)
	}
}

func TestEnabledDefaultsTrue(t *testing.T) {
	t.Parallel()

	root, err := ReadBytes([]byte(`{"SCHEMA": "Gap.1", "name": "g"}`))
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if gap := root.(*timeline.Gap); !gap.Enabled() {
		t.Error("missing enabled field should default to true")
	}

	root, err = ReadBytes([]byte(`{"SCHEMA": "Gap.1", "name": "g", "enabled": false}`))
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if gap := root.(*timeline.Gap); gap.Enabled() {
		t.Error("enabled false was not honored")
	}
}

// --- Schema validation ---

func TestSchemaErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		want []string
	}{
		{
			name: "unknown root schema",
			doc:  `{"SCHEMA": "Blooper.1"}`,
			want: []string{`unknown schema "Blooper.1"`},
		},
		{
			name: "newer version",
			doc:  `{"SCHEMA": "Clip.3", "name": "x"}`,
			want: []string{"requires a newer reader", `"Clip.3"`, `"Clip.2"`},
		},
		{
			name: "newer version nested",
			doc: `{"SCHEMA": "Timeline.1", "name": "x", "tracks": {"SCHEMA": "Stack.1",
				"children": [{"SCHEMA": "Track.2", "name": "V1"}]}}`,
			want: []string{"root.tracks.children[0]", "requires a newer reader"},
		},
		{
			name: "unversioned tag",
			doc:  `{"SCHEMA": "Clip"}`,
			want: []string{"malformed schema tag"},
		},
		{
			name: "missing discriminator",
			doc:  `{"name": "x"}`,
			want: []string{"missing SCHEMA discriminator"},
		},
		{
			name: "root not an object",
			doc:  `[1, 2, 3]`,
			want: []string{"expected an object"},
		},
		{
			name: "wrong field type",
			doc:  `{"SCHEMA": "Gap.1", "name": 3}`,
			want: []string{"root.name", "expected a string"},
		},
		{
			name: "marker where composable expected",
			doc: `{"SCHEMA": "Track.1", "name": "V1",
				"children": [{"SCHEMA": "Marker.2", "name": "note"}]}`,
			want: []string{"root.children[0]", "cannot appear inside a composition"},
		},
		{
			name: "active key not in reference map",
			doc: `{"SCHEMA": "Clip.2", "name": "x",
				"media_references": {"online": {"SCHEMA": "MissingReference.1"}},
				"active_media_reference_key": "offline"}`,
			want: []string{`"offline"`},
		},
		{
			name: "timeline tracks must be a stack",
			doc:  `{"SCHEMA": "Timeline.1", "name": "x", "tracks": {"SCHEMA": "Track.1", "name": "V1"}}`,
			want: []string{"root.tracks", "expected schema Stack"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ReadBytes([]byte(tt.doc))
			if err == nil {
				t.Fatal("expected an error")
			}
			for _, want := range tt.want {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error %q does not mention %q", err, want)
				}
			}
		})
	}
}

func TestOlderVersionAccepted(t *testing.T) {
	t.Parallel()

	doc := `{"SCHEMA": "Marker.1", "name": "legacy", "color": "BLUE",
		"marked_range": {"SCHEMA": "TimeRange.1",
			"start_time": {"SCHEMA": "RationalTime.1", "value": 6, "rate": 24},
			"duration": {"SCHEMA": "RationalTime.1", "value": 2, "rate": 24}}}`
	root, err := ReadBytes([]byte(doc))
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	marker, ok := root.(*timeline.Marker)
	if !ok {
		t.Fatalf("root = %T", root)
	}
	if marker.Name() != "legacy" || marker.Color() != timeline.MarkerColorBlue {
		t.Errorf("marker = %q %q", marker.Name(), marker.Color())
	}
	if !marker.MarkedRange().Equal(range24(6, 2)) {
		t.Errorf("marked range = %v", marker.MarkedRange())
	}
}

// --- Fragments ---

func TestFragmentRoots(t *testing.T) {
	t.Parallel()

	t.Run("rational time", func(t *testing.T) {
		t.Parallel()
		root, err := ReadBytes([]byte(`{"SCHEMA": "RationalTime.1", "value": 12, "rate": 24}`))
		if err != nil {
			t.Fatalf("ReadBytes: %v", err)
		}
		if tm, ok := root.(opentime.RationalTime); !ok || !tm.Equal(at24(12)) {
			t.Errorf("root = %#v", root)
		}
	})

	t.Run("time transform", func(t *testing.T) {
		t.Parallel()
		doc := `{"SCHEMA": "TimeTransform.1",
			"offset": {"SCHEMA": "RationalTime.1", "value": 10, "rate": 24},
			"scale": 2, "rate": 0}`
		root, err := ReadBytes([]byte(doc))
		if err != nil {
			t.Fatalf("ReadBytes: %v", err)
		}
		transform, ok := root.(opentime.TimeTransform)
		if !ok || !transform.Equal(opentime.NewTimeTransform(at24(10), 2, 0)) {
			t.Errorf("root = %#v", root)
		}
	})

	t.Run("track", func(t *testing.T) {
		t.Parallel()
		track := timeline.NewTrack("V9", timeline.TrackKindVideo)
		if err := track.AppendChild(timeline.NewGap("g", at24(12))); err != nil {
			t.Fatalf("AppendChild: %v", err)
		}
		data, err := WriteBytes(track, 0)
		if err != nil {
			t.Fatalf("WriteBytes: %v", err)
		}
		root, err := ReadBytes(data)
		if err != nil {
			t.Fatalf("ReadBytes: %v", err)
		}
		decoded, ok := root.(*timeline.Track)
		if !ok || decoded.Name() != "V9" || len(decoded.Children()) != 1 {
			t.Errorf("root = %#v", root)
		}
	})

	t.Run("media reference", func(t *testing.T) {
		t.Parallel()
		data, err := WriteBytes(timeline.NewExternalReference("file:///a.mov"), 0)
		if err != nil {
			t.Fatalf("WriteBytes: %v", err)
		}
		root, err := ReadBytes(data)
		if err != nil {
			t.Fatalf("ReadBytes: %v", err)
		}
		external, ok := root.(*timeline.ExternalReference)
		if !ok || external.TargetURL() != "file:///a.mov" {
			t.Errorf("root = %#v", root)
		}
	})
}

func TestReadTimelineRejectsFragments(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "fragment.mtl")
	if err := Write(path, timeline.NewTrack("V1", timeline.TrackKindVideo), 2); err != nil {
		t.Fatalf("Write: %v", err)
	}
	_, err := ReadTimeline(path)
	if err == nil || !strings.Contains(err.Error(), "not a timeline") {
		t.Fatalf("err = %v", err)
	}
}

// --- Clone ---

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	original := fullTimeline(t)
	clone, err := Clone(original)
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	checkFullTimeline(t, clone)

	clone.SetName("mangled")
	clone.Metadata()["montage"].(map[string]any)["revision"] = "b"
	video := clone.Tracks().Children()[0].(*timeline.Track)
	if err := video.AppendChild(timeline.NewGap("extra", at24(1))); err != nil {
		t.Fatalf("AppendChild: %v", err)
	}

	if original.Name() != "directors cut" {
		t.Errorf("original name changed to %q", original.Name())
	}
	if revision := original.Metadata()["montage"].(map[string]any)["revision"]; revision != "a" {
		t.Errorf("original metadata changed to %v", revision)
	}
	if got := len(original.Tracks().Children()[0].(*timeline.Track).Children()); got != 3 {
		t.Errorf("original track grew to %d children", got)
	}
}

func TestCloneFragment(t *testing.T) {
	t.Parallel()

	clip := timeline.NewClip("c", timeline.NewExternalReference("file:///a.mov"))
	clip.SetSourceRange(range24(0, 10))
	clone, err := Clone(clip)
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	if clone == clip {
		t.Fatal("clone returned the same pointer")
	}
	clone.SetName("renamed")
	if clip.Name() != "c" {
		t.Errorf("original clip renamed to %q", clip.Name())
	}
}
