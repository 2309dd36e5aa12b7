// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"fmt"
	"log/slog"
	"maps"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/montage-foundation/montage/lib/document"
	"github.com/montage-foundation/montage/lib/sealed"
	"github.com/montage-foundation/montage/lib/secret"
	"github.com/montage-foundation/montage/lib/timeline"
)

// MediaPolicy controls what Create does with external references
// whose targets are not readable local files.
type MediaPolicy int

const (
	// MediaPolicyErrorIfNotFile fails the whole Create when any
	// external reference does not resolve to a readable local file.
	// The default: a bundle that silently drops media is worse than
	// no bundle.
	MediaPolicyErrorIfNotFile MediaPolicy = iota

	// MediaPolicyMissingIfNotFile bundles the references that do
	// resolve and replaces the rest with missing references,
	// preserving name and available range.
	MediaPolicyMissingIfNotFile

	// MediaPolicyAllMissing replaces every external reference with a
	// missing reference and bundles no media at all. Produces a
	// document-only bundle for review workflows where the recipient
	// has their own media.
	MediaPolicyAllMissing
)

// String returns the CLI name of a media policy.
func (p MediaPolicy) String() string {
	switch p {
	case MediaPolicyErrorIfNotFile:
		return "error-if-not-file"
	case MediaPolicyMissingIfNotFile:
		return "missing-if-not-file"
	case MediaPolicyAllMissing:
		return "all-missing"
	default:
		return fmt.Sprintf("unknown(%d)", int(p))
	}
}

// ParseMediaPolicy parses a media policy from its CLI name.
func ParseMediaPolicy(name string) (MediaPolicy, error) {
	switch name {
	case "error-if-not-file":
		return MediaPolicyErrorIfNotFile, nil
	case "missing-if-not-file":
		return MediaPolicyMissingIfNotFile, nil
	case "all-missing":
		return MediaPolicyAllMissing, nil
	default:
		return 0, fmt.Errorf("unknown media policy %q (want error-if-not-file, missing-if-not-file, or all-missing)", name)
	}
}

// DefaultDocumentName is the entry path used for the timeline
// document when CreateOptions does not override it.
const DefaultDocumentName = "timeline" + document.ExtDocument

// CreateOptions configures bundle creation.
type CreateOptions struct {
	// DocumentName is the entry path for the timeline document at
	// the bundle root. Must be a bare file name (no slashes).
	// Defaults to DefaultDocumentName.
	DocumentName string

	// MediaPolicy controls handling of external references that are
	// not readable local files. Defaults to
	// MediaPolicyErrorIfNotFile.
	MediaPolicy MediaPolicy

	// Recipients are age x25519 public keys. When non-empty, every
	// entry stream is encrypted and the bundle key is sealed to
	// these recipients in the manifest.
	Recipients []string

	// Compression, when non-nil, applies one compression tag to
	// every entry instead of probing each entry with
	// [SelectCompression].
	Compression *CompressionTag

	// Logger receives diagnostic messages. If nil, an error-level
	// stderr logger is used.
	Logger *slog.Logger
}

// CreateResult reports what Create wrote.
type CreateResult struct {
	// ID is the content-derived bundle ID.
	ID Hash

	// Manifest is the manifest as written, document entry first.
	Manifest *Manifest

	// Size is the total bundle file size in bytes.
	Size int64
}

// Create reads the timeline document at timelinePath, collects the
// media its external references point at, and writes a bundle to
// bundlePath. The stored document is rewritten so every bundled
// external reference targets its bundle-relative media path; the file
// at timelinePath is not modified.
//
// Relative reference targets resolve against the timeline document's
// directory. Media files are deduplicated by resolved path and stored
// flat under media/, so two distinct files with the same base name
// are an error.
//
// The bundle is written atomically: a temp file in the destination
// directory, renamed into place on success.
func Create(timelinePath, bundlePath string, options CreateOptions) (*CreateResult, error) {
	if options.DocumentName == "" {
		options.DocumentName = DefaultDocumentName
	}
	if strings.ContainsRune(options.DocumentName, '/') {
		return nil, fmt.Errorf("document name %q must be a bare file name", options.DocumentName)
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))
	}
	for _, recipient := range options.Recipients {
		if err := sealed.ParsePublicKey(recipient); err != nil {
			return nil, fmt.Errorf("recipient %q: %w", recipient, err)
		}
	}

	root, err := document.ReadTimeline(timelinePath)
	if err != nil {
		return nil, err
	}

	media, err := collectMedia(root, timelinePath, options.MediaPolicy, options.Logger)
	if err != nil {
		return nil, err
	}

	documentBytes, err := document.WriteBytes(root, 2)
	if err != nil {
		return nil, fmt.Errorf("encoding bundle document: %w", err)
	}
	// Write adds a trailing newline to JSON files; match it so an
	// extracted document is byte-identical to a written one.
	documentBytes = append(documentBytes, '\n')

	// Encryption setup. One random bundle key per bundle, sealed to
	// every recipient.
	var bundleKey *secret.Buffer
	manifest := &Manifest{
		Document:  options.DocumentName,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	if len(options.Recipients) > 0 {
		bundleKey, err = NewBundleKey()
		if err != nil {
			return nil, err
		}
		defer bundleKey.Close()

		manifest.SealedKey, err = SealBundleKey(bundleKey, options.Recipients)
		if err != nil {
			return nil, err
		}
		manifest.Recipients = slices.Clone(options.Recipients)
	}

	// Document entry first, then media in path order.
	streams := make([][]byte, 0, 1+len(media))
	appendEntry := func(path string, content []byte) error {
		entry, stream, err := prepareEntry(path, content, bundleKey, options.Compression)
		if err != nil {
			return err
		}
		entry.Offset = manifest.StoredSize()
		manifest.Entries = append(manifest.Entries, entry)
		streams = append(streams, stream)
		options.Logger.Debug("bundle entry prepared",
			"path", path,
			"size", entry.Size,
			"stored_size", entry.StoredSize,
			"compression", entry.Compression.String(),
		)
		return nil
	}

	if err := appendEntry(options.DocumentName, documentBytes); err != nil {
		return nil, err
	}
	for _, file := range media {
		content, err := os.ReadFile(file.sourcePath)
		if err != nil {
			return nil, fmt.Errorf("reading media %s: %w", file.sourcePath, err)
		}
		if err := appendEntry(file.entryPath, content); err != nil {
			return nil, err
		}
	}

	size, err := writeBundleFile(bundlePath, manifest, streams)
	if err != nil {
		return nil, err
	}

	result := &CreateResult{
		ID:       manifest.ID(),
		Manifest: manifest,
		Size:     size,
	}
	options.Logger.Info("bundle created",
		"path", bundlePath,
		"id", FormatID(result.ID),
		"entries", len(manifest.Entries),
		"size", size,
	)
	return result, nil
}

// prepareEntry compresses and (when bundleKey is non-nil) encrypts
// entry content, returning the manifest entry and the stored stream.
// The entry's Offset is left for the caller to assign. A non-nil
// forced tag overrides per-entry probing; incompressible content
// still falls back to an uncompressed stream.
func prepareEntry(path string, content []byte, bundleKey *secret.Buffer, forced *CompressionTag) (Entry, []byte, error) {
	entry := Entry{
		Path:   path,
		Size:   int64(len(content)),
		Digest: HashEntry(content),
	}

	var stream []byte
	var tag CompressionTag
	var err error
	if forced != nil {
		tag = *forced
		stream, err = CompressEntry(content, tag)
		if IsIncompressible(err) {
			tag = CompressionNone
			stream, err = content, nil
		}
	} else {
		stream, tag, err = CompressEntryAuto(content)
	}
	if err != nil {
		return Entry{}, nil, fmt.Errorf("compressing entry %q: %w", path, err)
	}
	entry.Compression = tag

	if bundleKey != nil {
		entryKey, err := DeriveEntryKey(bundleKey, entry.Digest)
		if err != nil {
			return Entry{}, nil, fmt.Errorf("deriving key for entry %q: %w", path, err)
		}
		stream, err = EncryptEntry(stream, entryKey, entry.Digest)
		entryKey.Close()
		if err != nil {
			return Entry{}, nil, fmt.Errorf("encrypting entry %q: %w", path, err)
		}
		entry.Encrypted = true
	}

	entry.StoredSize = int64(len(stream))
	return entry, stream, nil
}

// mediaFile pairs a resolved source path with its bundle entry path.
type mediaFile struct {
	sourcePath string
	entryPath  string
}

// collectMedia walks every clip's media references, rewrites bundled
// external references to their bundle-relative paths, applies the
// media policy to the rest, and returns the files to store sorted by
// entry path.
func collectMedia(root *timeline.Timeline, timelinePath string, policy MediaPolicy, logger *slog.Logger) ([]mediaFile, error) {
	clips, err := root.FindClips(nil)
	if err != nil {
		return nil, fmt.Errorf("walking timeline clips: %w", err)
	}

	baseDir := filepath.Dir(timelinePath)
	bySource := make(map[string]string) // resolved source path -> entry path
	byEntry := make(map[string]string)  // entry path -> resolved source path

	for _, clip := range clips {
		references := clip.MediaReferences()
		changed := false

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

			if policy == MediaPolicyAllMissing {
				references[key] = replaceWithMissing(external)
				changed = true
				continue
			}

			sourcePath, err := resolveFileTarget(external.TargetURL(), baseDir)
			if err == nil {
				info, statErr := os.Stat(sourcePath)
				switch {
				case statErr != nil:
					err = statErr
				case !info.Mode().IsRegular():
					err = fmt.Errorf("%s is not a regular file", sourcePath)
				}
			}
			if err != nil {
				if policy == MediaPolicyErrorIfNotFile {
					return nil, fmt.Errorf("clip %q media %q: %w", clip.Name(), key, err)
				}
				logger.Debug("replacing unreachable media with missing reference",
					"clip", clip.Name(),
					"key", key,
					"target", external.TargetURL(),
				)
				references[key] = replaceWithMissing(external)
				changed = true
				continue
			}

			entryPath, ok := bySource[sourcePath]
			if !ok {
				entryPath = "media/" + filepath.Base(sourcePath)
				if existing, taken := byEntry[entryPath]; taken {
					return nil, fmt.Errorf("media file name collision: %s and %s both bundle as %s",
						existing, sourcePath, entryPath)
				}
				bySource[sourcePath] = entryPath
				byEntry[entryPath] = sourcePath
			}
			external.SetTargetURL(entryPath)
		}

		if changed {
			if err := clip.SetMediaReferences(references, clip.ActiveMediaKey()); err != nil {
				return nil, fmt.Errorf("updating clip %q media references: %w", clip.Name(), err)
			}
		}
	}

	files := make([]mediaFile, 0, len(bySource))
	for sourcePath, entryPath := range bySource {
		files = append(files, mediaFile{sourcePath: sourcePath, entryPath: entryPath})
	}
	slices.SortFunc(files, func(a, b mediaFile) int {
		return strings.Compare(a.entryPath, b.entryPath)
	})
	return files, nil
}

// replaceWithMissing builds a missing reference carrying over the
// external reference's name, available range, and metadata.
func replaceWithMissing(external *timeline.ExternalReference) *timeline.MissingReference {
	missing := timeline.NewMissingReference()
	missing.SetName(external.Name())
	if available, ok := external.AvailableRange(); ok {
		missing.SetAvailableRange(available)
	}
	maps.Copy(missing.Metadata(), external.Metadata())
	return missing
}

// resolveFileTarget turns an external reference target into a local
// filesystem path. Accepts file:// URLs (empty or localhost host
// only) and plain paths; relative paths resolve against baseDir.
// Remote schemes are not files.
func resolveFileTarget(target string, baseDir string) (string, error) {
	if target == "" {
		return "", fmt.Errorf("external reference has no target URL")
	}

	parsed, err := url.Parse(target)
	if err == nil && parsed.Scheme != "" && len(parsed.Scheme) > 1 {
		if parsed.Scheme != "file" {
			return "", fmt.Errorf("target %q is not a file URL", target)
		}
		if parsed.Host != "" && parsed.Host != "localhost" {
			return "", fmt.Errorf("file URL %q has a remote host", target)
		}
		unescaped := parsed.Path
		if unescaped == "" {
			return "", fmt.Errorf("file URL %q has no path", target)
		}
		return filepath.Clean(filepath.FromSlash(unescaped)), nil
	}

	// Plain path. Single-letter schemes fall through to here so
	// Windows-style drive paths in documents fail on Stat rather
	// than on parsing.
	path := filepath.FromSlash(target)
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	return filepath.Clean(path), nil
}

// writeBundleFile writes the container atomically: temp file in the
// destination directory, fsync, rename into place.
func writeBundleFile(bundlePath string, manifest *Manifest, streams [][]byte) (int64, error) {
	directory := filepath.Dir(bundlePath)
	tmpFile, err := os.CreateTemp(directory, ".mtz-*")
	if err != nil {
		return 0, fmt.Errorf("creating temp bundle file: %w", err)
	}
	tmpPath := tmpFile.Name()
	cleanup := func() {
		tmpFile.Close()
		os.Remove(tmpPath)
	}

	size, err := writeContainer(tmpFile, manifest, streams)
	if err != nil {
		cleanup()
		return 0, err
	}
	if err := tmpFile.Sync(); err != nil {
		cleanup()
		return 0, fmt.Errorf("syncing bundle file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("closing bundle file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("setting bundle permissions: %w", err)
	}
	if err := os.Rename(tmpPath, bundlePath); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("publishing bundle: %w", err)
	}
	return size, nil
}
