// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package integration_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/montage-foundation/montage/cmd/montage/cli"
	"github.com/montage-foundation/montage/lib/document"
	"github.com/montage-foundation/montage/lib/testutil"
	"github.com/montage-foundation/montage/lib/timeline"
)

// TestBundleWorkflow walks the delivery path: catalog a cut's media,
// confirm nothing is missing, pack cut and footage into a bundle,
// verify and unpack it elsewhere, and finally watch "media missing"
// catch a file deleted after the scan.
func TestBundleWorkflow(t *testing.T) {
	isolateConfig(t, "frame_rate: 24\n")
	root := testutil.WriteTree(t, map[string]string{
		"media/shot_a.mov": strings.Repeat("wide shot footage ", 200),
		"media/shot_b.mov": strings.Repeat("closeup footage ", 200),
	})
	cutPath := filepath.Join(root, "cut.mtl")
	buildCut(t, cutPath, "festival cut", []clipSpec{
		{name: "shot a", target: "media/shot_a.mov", start: 0, frames: 96},
		{name: "shot b", target: "media/shot_b.mov", start: 12, frames: 72},
	})
	catalogPath := filepath.Join(root, "catalog.db")

	// --- Catalog the media ---
	output := runCLI(t, "media", "scan", cutPath, "--db", catalogPath)
	if !strings.Contains(output, "2 clips, 2 media sources") {
		t.Fatalf("unexpected scan output:\n%s", output)
	}
	if strings.Contains(output, "Unreadable") {
		t.Fatalf("scan reported unreadable sources:\n%s", output)
	}
	output = runCLI(t, "media", "list", cutPath, "--db", catalogPath)
	for _, want := range []string{"shot a", "shot b", "media/shot_a.mov"} {
		if !strings.Contains(output, want) {
			t.Errorf("media list missing %q:\n%s", want, output)
		}
	}
	output = runCLI(t, "media", "missing", cutPath, "--db", catalogPath)
	if !strings.Contains(output, "No missing media.") {
		t.Fatalf("expected a clean media report:\n%s", output)
	}

	// Relative targets travel with the document, so a volume-move
	// relink has nothing to rewrite here.
	output = runCLI(t, "media", "relink", cutPath,
		"--from", "/mnt/raid", "--to", "/mnt/archive", "--db", catalogPath)
	if !strings.Contains(output, "No media targets start with /mnt/raid.") {
		t.Errorf("relink should not touch relative targets:\n%s", output)
	}

	// --- Pack ---
	bundlePath := filepath.Join(root, "festival.mtz")
	output = runCLI(t, "bundle", "create", cutPath, "-o", bundlePath)
	if !strings.Contains(output, "2 media entries") {
		t.Fatalf("unexpected create output:\n%s", output)
	}
	if !strings.Contains(output, "Bundle ID: mtz-") {
		t.Fatalf("create output missing the bundle ID:\n%s", output)
	}

	output = runCLI(t, "bundle", "verify", bundlePath)
	if !strings.Contains(output, ": OK (") || !strings.Contains(output, "3 entries") {
		t.Fatalf("unexpected verify output:\n%s", output)
	}

	output = runCLI(t, "bundle", "info", bundlePath)
	for _, pattern := range []string{`ID:\s+mtz-`, `Encrypted:\s+no`, `Entries:\s+3 \(2 media\)`} {
		if !regexp.MustCompile(pattern).MatchString(output) {
			t.Errorf("info output missing %s:\n%s", pattern, output)
		}
	}
	for _, want := range []string{"timeline.mtl", "media/shot_a.mov", "media/shot_b.mov"} {
		if !strings.Contains(output, want) {
			t.Errorf("info entry table missing %q:\n%s", want, output)
		}
	}

	// --- Unpack elsewhere ---
	destDir := filepath.Join(t.TempDir(), "unpacked")
	output = runCLI(t, "bundle", "extract", bundlePath, "-o", destDir)
	if !strings.Contains(output, "Extracted 3 entries to ") {
		t.Fatalf("unexpected extract output:\n%s", output)
	}

	extracted, err := document.ReadTimeline(filepath.Join(destDir, "timeline.mtl"))
	if err != nil {
		t.Fatalf("reading extracted document: %v", err)
	}
	targets := externalTargets(t, extracted)
	if targets["shot a"] != "media/shot_a.mov" || targets["shot b"] != "media/shot_b.mov" {
		t.Errorf("extracted document targets = %v", targets)
	}
	for _, name := range []string{"shot_a.mov", "shot_b.mov"} {
		original, err := os.ReadFile(filepath.Join(root, "media", name))
		if err != nil {
			t.Fatalf("reading original %s: %v", name, err)
		}
		unpacked, err := os.ReadFile(filepath.Join(destDir, "media", name))
		if err != nil {
			t.Fatalf("reading extracted %s: %v", name, err)
		}
		if !bytes.Equal(original, unpacked) {
			t.Errorf("%s changed in transit", name)
		}
	}

	// The unpacked cut goes straight back through the normal tooling.
	output = runCLI(t, "stat", filepath.Join(destDir, "timeline.mtl"))
	if !regexp.MustCompile(`Clips:\s+2`).MatchString(output) {
		t.Errorf("extracted document lost clips:\n%s", output)
	}
	if !regexp.MustCompile(`Media:\s+2 external, 0 generator, 0 missing`).MatchString(output) {
		t.Errorf("extracted document media breakdown wrong:\n%s", output)
	}

	// --- A file vanishes after the scan ---
	if err := os.Remove(filepath.Join(root, "media", "shot_b.mov")); err != nil {
		t.Fatalf("removing shot_b: %v", err)
	}
	output, err = runCLIErr(t, "media", "missing", cutPath, "--db", catalogPath)
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 1 {
		t.Fatalf("missing should exit 1 after a deletion, got %v", err)
	}
	if !strings.Contains(output, "shot_b.mov") {
		t.Errorf("missing report does not name the lost file:\n%s", output)
	}
}

// TestEncryptedBundleWorkflow covers the sealed path: generate an age
// identity, encrypt a bundle to it, and confirm that the manifest
// stays readable while content operations demand the key.
func TestEncryptedBundleWorkflow(t *testing.T) {
	isolateConfig(t, "frame_rate: 24\n")
	root := testutil.WriteTree(t, map[string]string{
		"media/take_1.mov": strings.Repeat("dailies ", 300),
	})
	cutPath := filepath.Join(root, "cut.mtl")
	buildCut(t, cutPath, "sealed cut", []clipSpec{
		{name: "take 1", target: "media/take_1.mov", start: 0, frames: 120},
	})

	// --- Keygen ---
	identityPath := filepath.Join(root, "identity.txt")
	output := runCLI(t, "bundle", "keygen", identityPath)
	publicKey := ""
	for _, line := range strings.Split(output, "\n") {
		if key, ok := strings.CutPrefix(line, "Public key: "); ok {
			publicKey = strings.TrimSpace(key)
		}
	}
	if !strings.HasPrefix(publicKey, "age1") {
		t.Fatalf("keygen did not print an age public key:\n%s", output)
	}
	info, err := os.Stat(identityPath)
	if err != nil {
		t.Fatalf("identity file: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("identity file mode = %v, want 0600", info.Mode().Perm())
	}
	if _, err := runCLIErr(t, "bundle", "keygen", identityPath); err == nil {
		t.Error("keygen should refuse to clobber an existing identity")
	}

	// --- Encrypt ---
	bundlePath := filepath.Join(root, "sealed.mtz")
	output = runCLI(t, "bundle", "create", cutPath, "--recipient", publicKey, "-o", bundlePath)
	if !strings.Contains(output, "encrypted") {
		t.Fatalf("create output does not report encryption:\n%s", output)
	}

	// The manifest is in the clear; the content is not.
	output = runCLI(t, "bundle", "info", bundlePath)
	if !regexp.MustCompile(`Encrypted:\s+yes`).MatchString(output) {
		t.Errorf("info should report encryption:\n%s", output)
	}
	if !strings.Contains(output, publicKey) {
		t.Errorf("info should name the recipient:\n%s", output)
	}
	if _, err := runCLIErr(t, "bundle", "verify", bundlePath); err == nil {
		t.Error("verify without an identity should fail")
	}
	if _, err := runCLIErr(t, "bundle", "extract", bundlePath, "-o", filepath.Join(root, "nope")); err == nil {
		t.Error("extract without an identity should fail")
	}

	// --- Open with the key ---
	output = runCLI(t, "bundle", "verify", bundlePath, "--identity", identityPath)
	if !strings.Contains(output, ": OK (") {
		t.Fatalf("verify with identity failed:\n%s", output)
	}

	destDir := filepath.Join(root, "opened")
	output = runCLI(t, "bundle", "extract", bundlePath, "--identity", identityPath, "-o", destDir)
	if !strings.Contains(output, "Extracted 2 entries to ") {
		t.Fatalf("unexpected extract output:\n%s", output)
	}
	original, err := os.ReadFile(filepath.Join(root, "media", "take_1.mov"))
	if err != nil {
		t.Fatalf("reading original media: %v", err)
	}
	opened, err := os.ReadFile(filepath.Join(destDir, "media", "take_1.mov"))
	if err != nil {
		t.Fatalf("reading decrypted media: %v", err)
	}
	if !bytes.Equal(original, opened) {
		t.Error("media changed through the encrypt and decrypt round trip")
	}
	extracted, err := document.ReadTimeline(filepath.Join(destDir, "timeline.mtl"))
	if err != nil {
		t.Fatalf("reading decrypted document: %v", err)
	}
	if extracted.Name() != "sealed cut" {
		t.Errorf("decrypted document name = %q", extracted.Name())
	}
}

// externalTargets maps clip names to their external reference targets.
func externalTargets(t *testing.T, tl *timeline.Timeline) map[string]string {
	t.Helper()
	clips, err := tl.FindClips(nil)
	if err != nil {
		t.Fatalf("FindClips: %v", err)
	}
	targets := make(map[string]string, len(clips))
	for _, clip := range clips {
		if external, ok := clip.MediaReference().(*timeline.ExternalReference); ok {
			targets[clip.Name()] = external.TargetURL()
		}
	}
	return targets
}
