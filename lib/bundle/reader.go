// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/montage-foundation/montage/lib/document"
	"github.com/montage-foundation/montage/lib/secret"
	"github.com/montage-foundation/montage/lib/timeline"
)

// Reader provides incremental access to a bundle file. Entry content
// is read on demand with positional reads, so holding a Reader open
// costs one file descriptor regardless of bundle size. A Reader is
// safe for concurrent use once opened (and, for encrypted bundles,
// unlocked).
type Reader struct {
	file          *os.File
	manifest      *Manifest
	payloadOffset int64
	size          int64

	// bundleKey is nil until Unlock succeeds. Borrowed by every
	// entry read; owned and closed by the Reader.
	bundleKey *secret.Buffer
}

// Open opens a bundle file and parses its manifest. Entry content is
// not read. For encrypted bundles, call Unlock before reading
// entries. The caller must call Close when done.
func Open(bundlePath string) (*Reader, error) {
	file, err := os.Open(bundlePath)
	if err != nil {
		return nil, fmt.Errorf("opening bundle: %w", err)
	}

	manifest, payloadOffset, err := readContainerHeader(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("bundle %s: %w", bundlePath, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("bundle %s: %w", bundlePath, err)
	}

	payloadSize := info.Size() - payloadOffset
	for _, entry := range manifest.Entries {
		if entry.Offset+entry.StoredSize > payloadSize {
			file.Close()
			return nil, fmt.Errorf("bundle %s: entry %q extends past the end of the file (bundle is truncated)",
				bundlePath, entry.Path)
		}
	}

	return &Reader{
		file:          file,
		manifest:      manifest,
		payloadOffset: payloadOffset,
		size:          info.Size(),
	}, nil
}

// Close releases the bundle file and, if the reader was unlocked,
// the bundle key.
func (r *Reader) Close() error {
	var keyErr error
	if r.bundleKey != nil {
		keyErr = r.bundleKey.Close()
		r.bundleKey = nil
	}
	fileErr := r.file.Close()
	if fileErr != nil {
		return fileErr
	}
	return keyErr
}

// Manifest returns the bundle's manifest.
func (r *Reader) Manifest() *Manifest { return r.manifest }

// ID returns the content-derived bundle ID.
func (r *Reader) ID() Hash { return r.manifest.ID() }

// Encrypted reports whether entry content is sealed to recipients.
func (r *Reader) Encrypted() bool { return r.manifest.Encrypted() }

// Unlocked reports whether entry reads are possible: true for
// unencrypted bundles, and for encrypted bundles after a successful
// Unlock.
func (r *Reader) Unlocked() bool {
	return !r.Encrypted() || r.bundleKey != nil
}

// Size returns the bundle file size in bytes.
func (r *Reader) Size() int64 { return r.size }

// Unlock unseals the bundle key with an age private key, enabling
// entry reads on an encrypted bundle. The identity is borrowed and
// NOT closed. Returns an error if the bundle is not encrypted or the
// identity is not one of the sealed recipients.
func (r *Reader) Unlock(identity *secret.Buffer) error {
	if !r.Encrypted() {
		return fmt.Errorf("bundle is not encrypted")
	}
	if r.bundleKey != nil {
		return nil
	}
	bundleKey, err := UnsealBundleKey(r.manifest.SealedKey, identity)
	if err != nil {
		return err
	}
	r.bundleKey = bundleKey
	return nil
}

// EntryBytes reads, decrypts, decompresses, and digest-verifies one
// entry, returning the original content.
func (r *Reader) EntryBytes(path string) ([]byte, error) {
	entry, ok := r.manifest.Entry(path)
	if !ok {
		return nil, fmt.Errorf("bundle has no entry %q", path)
	}

	stored := make([]byte, entry.StoredSize)
	if _, err := r.file.ReadAt(stored, r.payloadOffset+entry.Offset); err != nil {
		return nil, fmt.Errorf("reading entry %q: %w", path, err)
	}

	if entry.Encrypted {
		if r.bundleKey == nil {
			return nil, fmt.Errorf("entry %q is encrypted: unlock the bundle with a recipient identity first", path)
		}
		entryKey, err := DeriveEntryKey(r.bundleKey, entry.Digest)
		if err != nil {
			return nil, fmt.Errorf("deriving key for entry %q: %w", path, err)
		}
		stored, err = DecryptEntry(stored, entryKey, entry.Digest)
		entryKey.Close()
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", path, err)
		}
	}

	content, err := DecompressEntry(stored, entry.Compression, int(entry.Size))
	if err != nil {
		return nil, fmt.Errorf("entry %q: %w", path, err)
	}

	if HashEntry(content) != entry.Digest {
		return nil, fmt.Errorf("entry %q: content digest mismatch (bundle is corrupt)", path)
	}
	return content, nil
}

// ReadDocument reads the bundle's timeline document without
// extracting anything to disk.
func (r *Reader) ReadDocument() (*timeline.Timeline, error) {
	data, err := r.EntryBytes(r.manifest.Document)
	if err != nil {
		return nil, err
	}
	root, err := document.ReadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("bundle document %s: %w", r.manifest.Document, err)
	}
	result, ok := root.(*timeline.Timeline)
	if !ok {
		return nil, fmt.Errorf("bundle document %s: root is %T, not a timeline", r.manifest.Document, root)
	}
	return result, nil
}

// Extract writes every entry under destDir, preserving bundle paths.
// The destination directory is created if it does not exist.
func (r *Reader) Extract(destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("creating extraction directory: %w", err)
	}

	for _, entry := range r.manifest.Entries {
		content, err := r.EntryBytes(entry.Path)
		if err != nil {
			return err
		}

		// Manifest validation guarantees entry paths are clean and
		// relative, so the join cannot escape destDir.
		target := filepath.Join(destDir, filepath.FromSlash(entry.Path))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("creating directory for %q: %w", entry.Path, err)
		}
		if err := os.WriteFile(target, content, 0o644); err != nil {
			return fmt.Errorf("extracting %q: %w", entry.Path, err)
		}
	}
	return nil
}

// Verify reads every entry and checks its content digest. Returns
// nil when the whole bundle is intact; otherwise an error joining
// one failure per damaged entry.
func (r *Reader) Verify() error {
	var problems []error
	for _, entry := range r.manifest.Entries {
		if _, err := r.EntryBytes(entry.Path); err != nil {
			problems = append(problems, err)
		}
	}
	return errors.Join(problems...)
}

// openUnlocked opens a bundle and, when it is encrypted, unlocks it
// with the given identity. Shared plumbing for the one-shot package
// functions.
func openUnlocked(bundlePath string, identity *secret.Buffer) (*Reader, error) {
	reader, err := Open(bundlePath)
	if err != nil {
		return nil, err
	}
	if reader.Encrypted() {
		if identity == nil {
			reader.Close()
			return nil, fmt.Errorf("bundle %s is encrypted: a recipient identity is required", bundlePath)
		}
		if err := reader.Unlock(identity); err != nil {
			reader.Close()
			return nil, fmt.Errorf("bundle %s: %w", bundlePath, err)
		}
	}
	return reader, nil
}

// Extract writes every entry of the bundle at bundlePath under
// destDir. identity may be nil for unencrypted bundles.
func Extract(bundlePath, destDir string, identity *secret.Buffer) error {
	reader, err := openUnlocked(bundlePath, identity)
	if err != nil {
		return err
	}
	defer reader.Close()
	return reader.Extract(destDir)
}

// Verify checks every entry digest in the bundle at bundlePath.
// identity may be nil for unencrypted bundles.
func Verify(bundlePath string, identity *secret.Buffer) error {
	reader, err := openUnlocked(bundlePath, identity)
	if err != nil {
		return err
	}
	defer reader.Close()
	return reader.Verify()
}

// Info returns the manifest of the bundle at bundlePath without
// reading entry content. Works on encrypted bundles without an
// identity: the manifest is stored in the clear.
func Info(bundlePath string) (*Manifest, error) {
	reader, err := Open(bundlePath)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return reader.Manifest(), nil
}

// ReadDocument reads the timeline document from the bundle at
// bundlePath without extracting. identity may be nil for unencrypted
// bundles.
func ReadDocument(bundlePath string, identity *secret.Buffer) (*timeline.Timeline, error) {
	reader, err := openUnlocked(bundlePath, identity)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return reader.ReadDocument()
}
