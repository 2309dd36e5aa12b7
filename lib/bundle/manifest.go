// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"fmt"
	"io/fs"
	"time"

	"github.com/montage-foundation/montage/lib/codec"
)

// Entry describes a single stored file within a bundle.
type Entry struct {
	// Path is the bundle-relative location of the entry, using
	// forward slashes: the document name at the root, media under
	// "media/". Paths are validated with fs.ValidPath, so they can
	// never escape an extraction directory.
	Path string `cbor:"path"`

	// Size is the byte length of the original content, before
	// compression and encryption.
	Size int64 `cbor:"size"`

	// StoredSize is the byte length of the entry's stream in the
	// bundle payload.
	StoredSize int64 `cbor:"stored_size"`

	// Offset is the entry stream's position in bytes from the start
	// of the payload region (the byte after the manifest).
	Offset int64 `cbor:"offset"`

	// Digest is the entry-domain BLAKE3 keyed hash of the original
	// content. Computed before compression and encryption, so it
	// identifies what a reader receives, not how it is stored.
	Digest Hash `cbor:"digest"`

	// Compression is the algorithm applied to the content before
	// storage (and before encryption, when enabled).
	Compression CompressionTag `cbor:"compression"`

	// Encrypted reports whether the stored stream is sealed with
	// XChaCha20-Poly1305 under a key derived from the bundle key.
	Encrypted bool `cbor:"encrypted"`
}

// Manifest is the bundle's CBOR-encoded table of contents. It is
// stored in the clear even for encrypted bundles, so Info and entry
// listing work without a recipient identity; only entry content is
// sealed.
type Manifest struct {
	// Document is the entry path of the timeline document.
	Document string `cbor:"document"`

	// CreatedAt is when the bundle was written, truncated to whole
	// seconds (CBOR epoch time carries second precision).
	CreatedAt time.Time `cbor:"created_at"`

	// Entries lists every stored file. The document entry comes
	// first, then media in path order.
	Entries []Entry `cbor:"entries"`

	// SealedKey is the base64 age ciphertext of the bundle key.
	// Empty for unencrypted bundles.
	SealedKey string `cbor:"sealed_key,omitempty"`

	// Recipients are the age public keys the bundle key is sealed
	// to. Informational: decryption needs only the matching private
	// key, but listing recipients lets Info say who can open the
	// bundle.
	Recipients []string `cbor:"recipients,omitempty"`
}

// ID computes the bundle ID from the manifest's entry digests.
func (m *Manifest) ID() Hash {
	digests := make([]Hash, len(m.Entries))
	for i, entry := range m.Entries {
		digests[i] = entry.Digest
	}
	return ComputeID(digests)
}

// Encrypted reports whether entry content is sealed to recipients.
func (m *Manifest) Encrypted() bool {
	return m.SealedKey != ""
}

// Entry returns the entry with the given path, or false if the
// bundle has no such entry.
func (m *Manifest) Entry(path string) (Entry, bool) {
	for _, entry := range m.Entries {
		if entry.Path == path {
			return entry, true
		}
	}
	return Entry{}, false
}

// DocumentEntry returns the entry holding the timeline document.
func (m *Manifest) DocumentEntry() (Entry, bool) {
	return m.Entry(m.Document)
}

// MediaEntries returns the entries under media/, in manifest order.
func (m *Manifest) MediaEntries() []Entry {
	var media []Entry
	for _, entry := range m.Entries {
		if entry.Path != m.Document {
			media = append(media, entry)
		}
	}
	return media
}

// ContentSize returns the total uncompressed size of all entries.
func (m *Manifest) ContentSize() int64 {
	var total int64
	for _, entry := range m.Entries {
		total += entry.Size
	}
	return total
}

// StoredSize returns the total payload size of all entry streams.
func (m *Manifest) StoredSize() int64 {
	var total int64
	for _, entry := range m.Entries {
		total += entry.StoredSize
	}
	return total
}

// encode serializes the manifest to deterministic CBOR.
func (m *Manifest) encode() ([]byte, error) {
	data, err := codec.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	return data, nil
}

// decodeManifest parses and validates a CBOR manifest.
func decodeManifest(data []byte) (*Manifest, error) {
	var manifest Manifest
	if err := codec.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	if err := manifest.validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return &manifest, nil
}

// validate checks the structural invariants every well-formed
// manifest holds. Called on read so a crafted bundle cannot push
// traversal paths or nonsense geometry into Extract and the FUSE
// mount.
func (m *Manifest) validate() error {
	if m.Document == "" {
		return fmt.Errorf("manifest has no document entry name")
	}
	if len(m.Entries) == 0 {
		return fmt.Errorf("manifest has no entries")
	}

	seen := make(map[string]bool, len(m.Entries))
	for _, entry := range m.Entries {
		if !fs.ValidPath(entry.Path) {
			return fmt.Errorf("entry path %q is not a valid relative path", entry.Path)
		}
		if seen[entry.Path] {
			return fmt.Errorf("duplicate entry path %q", entry.Path)
		}
		seen[entry.Path] = true

		if entry.Size < 0 || entry.StoredSize < 0 || entry.Offset < 0 {
			return fmt.Errorf("entry %q has negative size or offset", entry.Path)
		}
		if entry.Encrypted && m.SealedKey == "" {
			return fmt.Errorf("entry %q is encrypted but the manifest carries no sealed key", entry.Path)
		}
	}

	if !seen[m.Document] {
		return fmt.Errorf("document entry %q is not in the entry table", m.Document)
	}
	return nil
}
