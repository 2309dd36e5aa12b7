// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Container format constants.
const (
	// ExtBundle is the conventional file extension for bundles.
	ExtBundle = ".mtz"

	// FormatVersion is the bundle container version this code reads
	// and writes.
	FormatVersion = 1

	// headerSize is the fixed header: 4-byte magic + 1-byte version
	// + 4-byte manifest length.
	headerSize = 9

	// maxManifestSize bounds the manifest allocation when reading an
	// untrusted bundle. A manifest entry is well under a kilobyte,
	// so 64 MiB of manifest already means tens of thousands of
	// entries.
	maxManifestSize = 64 << 20
)

// bundleMagic is the 4-byte bundle file signature.
var bundleMagic = [4]byte{'M', 'T', 'Z', 'B'}

// writeContainer writes a complete bundle to w: header, manifest,
// then the entry streams in manifest order. The streams slice must
// parallel manifest.Entries, with each stream's length equal to the
// entry's StoredSize. Returns the total bytes written.
func writeContainer(w io.Writer, manifest *Manifest, streams [][]byte) (int64, error) {
	if len(streams) != len(manifest.Entries) {
		return 0, fmt.Errorf("stream count %d does not match entry count %d",
			len(streams), len(manifest.Entries))
	}
	for i, entry := range manifest.Entries {
		if int64(len(streams[i])) != entry.StoredSize {
			return 0, fmt.Errorf("entry %q stream is %d bytes, manifest says %d",
				entry.Path, len(streams[i]), entry.StoredSize)
		}
	}

	manifestBytes, err := manifest.encode()
	if err != nil {
		return 0, err
	}
	if len(manifestBytes) > maxManifestSize {
		return 0, fmt.Errorf("manifest is %d bytes, limit is %d", len(manifestBytes), maxManifestSize)
	}

	var header [headerSize]byte
	copy(header[:4], bundleMagic[:])
	header[4] = FormatVersion
	binary.LittleEndian.PutUint32(header[5:], uint32(len(manifestBytes)))

	var written int64
	for _, block := range [][]byte{header[:], manifestBytes} {
		n, err := w.Write(block)
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("writing bundle header: %w", err)
		}
	}
	for i, stream := range streams {
		n, err := w.Write(stream)
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("writing entry %q: %w", manifest.Entries[i].Path, err)
		}
	}
	return written, nil
}

// readContainerHeader reads and validates the bundle header and
// manifest from r. Returns the parsed manifest and the byte offset
// where the payload region begins.
func readContainerHeader(r io.Reader) (*Manifest, int64, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, 0, fmt.Errorf("reading bundle header: %w", err)
	}

	if [4]byte(header[:4]) != bundleMagic {
		return nil, 0, fmt.Errorf("not a montage bundle (invalid magic bytes)")
	}
	if header[4] != FormatVersion {
		return nil, 0, fmt.Errorf("bundle version %d is not supported (this code supports version %d)",
			header[4], FormatVersion)
	}

	manifestLength := binary.LittleEndian.Uint32(header[5:])
	if manifestLength == 0 {
		return nil, 0, fmt.Errorf("bundle has an empty manifest")
	}
	if manifestLength > maxManifestSize {
		return nil, 0, fmt.Errorf("manifest length %d exceeds limit %d", manifestLength, maxManifestSize)
	}

	manifestBytes := make([]byte, manifestLength)
	if _, err := io.ReadFull(r, manifestBytes); err != nil {
		return nil, 0, fmt.Errorf("reading manifest: %w", err)
	}

	manifest, err := decodeManifest(manifestBytes)
	if err != nil {
		return nil, 0, err
	}
	return manifest, int64(headerSize) + int64(manifestLength), nil
}
