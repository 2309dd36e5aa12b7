// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/montage-foundation/montage/cmd/montage/cli"
	"github.com/montage-foundation/montage/lib/bundle"
	"github.com/montage-foundation/montage/lib/document"
	"github.com/montage-foundation/montage/lib/opentime"
	"github.com/montage-foundation/montage/lib/testutil"
	"github.com/montage-foundation/montage/lib/timeline"
)

// writeCut builds a one-clip timeline whose external reference
// targets shot.mov next to the document, writes both to a temp dir,
// and returns the document path plus the media bytes. With withMedia
// false the media file is not written, so the reference dangles.
func writeCut(t *testing.T, withMedia bool) (timelinePath string, media []byte) {
	t.Helper()
	dir := t.TempDir()

	media = []byte(strings.Repeat("frame payload\n", 64))
	if withMedia {
		if err := os.WriteFile(filepath.Join(dir, "shot.mov"), media, 0o644); err != nil {
			t.Fatalf("writing media: %v", err)
		}
	}

	available := opentime.NewTimeRange(opentime.NewRationalTime(0, 24), opentime.NewRationalTime(48, 24))
	ref := timeline.NewExternalReference("shot.mov")
	ref.SetAvailableRange(available)
	clip := timeline.NewClip("shot", ref)
	clip.SetSourceRange(available)

	track := timeline.NewTrack("V1", timeline.TrackKindVideo)
	cut := timeline.NewTimeline("bundle cut")
	for _, err := range []error{
		track.AppendChild(clip),
		cut.Tracks().AppendChild(track),
	} {
		if err != nil {
			t.Fatalf("building fixture timeline: %v", err)
		}
	}

	timelinePath = filepath.Join(dir, "cut"+document.ExtDocument)
	if err := document.Write(timelinePath, cut, 2); err != nil {
		t.Fatalf("writing fixture document: %v", err)
	}
	return timelinePath, media
}

// isolateConfig points MONTAGE_CONFIG at a minimal file so create's
// compression default never depends on the developer's real config.
func isolateConfig(t *testing.T) {
	t.Helper()
	root := testutil.WriteTree(t, map[string]string{"config.yaml": "frame_rate: 24\n"})
	t.Setenv("MONTAGE_CONFIG", filepath.Join(root, "config.yaml"))
}

// captureStdoutErr captures stdout during fn and returns the output
// alongside fn's error, for commands whose non-zero exit is the point
// of the test.
func captureStdoutErr(t *testing.T, fn func() error) (string, error) {
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

	return ansi.Strip(buffer.String()), runErr
}

// captureStdout captures stdout output during fn execution.
func captureStdout(t *testing.T, fn func() error) string {
	t.Helper()
	output, err := captureStdoutErr(t, fn)
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	return output
}

// mustCreate runs "bundle create" on the fixture document and returns
// the default bundle path.
func mustCreate(t *testing.T, timelinePath string, extraArgs ...string) string {
	t.Helper()
	args := append([]string{"create", timelinePath}, extraArgs...)
	captureStdout(t, func() error {
		return Command().Execute(context.Background(), args)
	})
	return strings.TrimSuffix(timelinePath, document.ExtDocument) + bundle.ExtBundle
}

func TestCreateCommand_Defaults(t *testing.T) {
	isolateConfig(t)
	timelinePath, _ := writeCut(t, true)

	output := captureStdout(t, func() error {
		return Command().Execute(context.Background(), []string{"create", timelinePath})
	})
	if !strings.Contains(output, "Created ") || !strings.Contains(output, "Bundle ID: mtz-") {
		t.Errorf("unexpected create output:\n%s", output)
	}

	bundlePath := strings.TrimSuffix(timelinePath, document.ExtDocument) + bundle.ExtBundle
	manifest, err := bundle.Info(bundlePath)
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if manifest.Document != bundle.DefaultDocumentName {
		t.Errorf("document entry = %q, want %q", manifest.Document, bundle.DefaultDocumentName)
	}
	mediaEntries := manifest.MediaEntries()
	if len(mediaEntries) != 1 || mediaEntries[0].Path != "media/shot.mov" {
		t.Errorf("media entries = %+v, want exactly media/shot.mov", mediaEntries)
	}
}

func TestCreateCommand_ConfigCompression(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"config.yaml": "bundle_compression: none\n",
	})
	t.Setenv("MONTAGE_CONFIG", filepath.Join(root, "config.yaml"))
	timelinePath, _ := writeCut(t, true)

	bundlePath := mustCreate(t, timelinePath)

	manifest, err := bundle.Info(bundlePath)
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	for _, entry := range manifest.Entries {
		if entry.Compression != bundle.CompressionNone {
			t.Errorf("entry %q compression = %s, want none", entry.Path, entry.Compression)
		}
	}
}

func TestCreateCommand_MissingMedia(t *testing.T) {
	isolateConfig(t)
	timelinePath, _ := writeCut(t, false)

	err := Command().Execute(context.Background(), []string{"create", timelinePath})
	if err == nil {
		t.Fatal("create with dangling media should fail under the default policy")
	}

	// all-missing ships the document alone.
	bundlePath := mustCreate(t, timelinePath, "--media", "all-missing")
	manifest, err := bundle.Info(bundlePath)
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if got := len(manifest.MediaEntries()); got != 0 {
		t.Errorf("media entries = %d, want 0", got)
	}
}

func TestCreateCommand_UnknownPolicy(t *testing.T) {
	timelinePath, _ := writeCut(t, true)

	err := Command().Execute(context.Background(), []string{"create", timelinePath, "--media", "hope"})
	if err == nil || !strings.Contains(err.Error(), "invalid --media") {
		t.Errorf("err = %v, want an invalid --media error", err)
	}
}

func TestExtractCommand(t *testing.T) {
	isolateConfig(t)
	timelinePath, media := writeCut(t, true)
	bundlePath := mustCreate(t, timelinePath)

	destDir := filepath.Join(t.TempDir(), "out")
	output := captureStdout(t, func() error {
		return Command().Execute(context.Background(), []string{"extract", bundlePath, "-o", destDir})
	})
	if !strings.Contains(output, "Extracted 2 entries") {
		t.Errorf("unexpected extract output:\n%s", output)
	}

	got, err := os.ReadFile(filepath.Join(destDir, "media", "shot.mov"))
	if err != nil {
		t.Fatalf("reading extracted media: %v", err)
	}
	if !bytes.Equal(got, media) {
		t.Errorf("extracted media differs from source: got %d bytes, want %d", len(got), len(media))
	}

	extracted, err := document.ReadTimeline(filepath.Join(destDir, bundle.DefaultDocumentName))
	if err != nil {
		t.Fatalf("reading extracted document: %v", err)
	}
	if extracted.Name() != "bundle cut" {
		t.Errorf("extracted timeline name = %q", extracted.Name())
	}
}

func TestVerifyCommand(t *testing.T) {
	isolateConfig(t)
	timelinePath, _ := writeCut(t, true)
	bundlePath := mustCreate(t, timelinePath)

	output := captureStdout(t, func() error {
		return Command().Execute(context.Background(), []string{"verify", bundlePath})
	})
	if !strings.Contains(output, ": OK (") || !strings.Contains(output, "2 entries") {
		t.Errorf("unexpected verify output:\n%s", output)
	}
}

func TestVerifyCommand_Corrupt(t *testing.T) {
	isolateConfig(t)
	timelinePath, _ := writeCut(t, true)
	bundlePath := mustCreate(t, timelinePath)

	// Flip the final payload byte. The manifest still parses, so the
	// damage must be caught by the entry digest check.
	data, err := os.ReadFile(bundlePath)
	if err != nil {
		t.Fatalf("reading bundle: %v", err)
	}
	data[len(data)-1] ^= 0xFF
	if err := os.WriteFile(bundlePath, data, 0o644); err != nil {
		t.Fatalf("writing corrupted bundle: %v", err)
	}

	output, err := captureStdoutErr(t, func() error {
		return Command().Execute(context.Background(), []string{"verify", bundlePath})
	})
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 1 {
		t.Fatalf("err = %v, want ExitError with code 1", err)
	}
	if !strings.Contains(output, "FAILED") {
		t.Errorf("unexpected verify output:\n%s", output)
	}
}

func TestEncryptedRoundTrip(t *testing.T) {
	isolateConfig(t)
	identityPath := filepath.Join(t.TempDir(), "identity.txt")

	keygenOut := captureStdout(t, func() error {
		return Command().Execute(context.Background(), []string{"keygen", identityPath})
	})
	var publicKey string
	for _, line := range strings.Split(keygenOut, "\n") {
		if rest, ok := strings.CutPrefix(line, "Public key: "); ok {
			publicKey = rest
		}
	}
	if !strings.HasPrefix(publicKey, "age1") {
		t.Fatalf("keygen output has no public key:\n%s", keygenOut)
	}

	info, err := os.Stat(identityPath)
	if err != nil {
		t.Fatalf("stat identity: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("identity file mode = %v, want 0600", info.Mode().Perm())
	}

	timelinePath, _ := writeCut(t, true)
	bundlePath := mustCreate(t, timelinePath, "--recipient", publicKey)

	// Without the identity, verify must refuse up front.
	err = Command().Execute(context.Background(), []string{"verify", bundlePath})
	if err == nil || !strings.Contains(err.Error(), "--identity") {
		t.Errorf("verify without identity: err = %v, want a pointer to --identity", err)
	}

	output := captureStdout(t, func() error {
		return Command().Execute(context.Background(), []string{"verify", bundlePath, "--identity", identityPath})
	})
	if !strings.Contains(output, ": OK (") {
		t.Errorf("unexpected verify output:\n%s", output)
	}

	// The manifest stays in the clear: info works without a key.
	infoOut := captureStdout(t, func() error {
		return Command().Execute(context.Background(), []string{"info", bundlePath})
	})
	if !regexp.MustCompile(`Encrypted:\s+yes`).MatchString(infoOut) {
		t.Errorf("info output missing encrypted marker:\n%s", infoOut)
	}
	if !strings.Contains(infoOut, publicKey) {
		t.Errorf("info output missing the recipient key:\n%s", infoOut)
	}
}

func TestKeygenCommand_RefusesOverwrite(t *testing.T) {
	identityPath := filepath.Join(t.TempDir(), "identity.txt")
	captureStdout(t, func() error {
		return Command().Execute(context.Background(), []string{"keygen", identityPath})
	})

	err := Command().Execute(context.Background(), []string{"keygen", identityPath})
	if err == nil {
		t.Fatal("keygen over an existing identity should fail")
	}
}

func TestInfoCommand(t *testing.T) {
	isolateConfig(t)
	timelinePath, _ := writeCut(t, true)
	bundlePath := mustCreate(t, timelinePath)

	output := captureStdout(t, func() error {
		return Command().Execute(context.Background(), []string{"info", bundlePath})
	})

	for _, pattern := range []string{
		`ID:\s+mtz-`,
		`Document:\s+timeline\.mtl`,
		`Entries:\s+2 \(1 media\)`,
		`Encrypted:\s+no`,
	} {
		if !regexp.MustCompile(pattern).MatchString(output) {
			t.Errorf("info output missing %s:\n%s", pattern, output)
		}
	}
	if !strings.Contains(output, "media/shot.mov") {
		t.Errorf("info output missing the entry table:\n%s", output)
	}
}

func TestMountCommand_ArgumentCount(t *testing.T) {
	err := Command().Execute(context.Background(), []string{"mount", "only.mtz"})
	if err == nil || !strings.Contains(err.Error(), "mountpoint") {
		t.Errorf("err = %v, want a usage error naming the mountpoint", err)
	}
}
