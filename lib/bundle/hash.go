// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Hash is a 32-byte BLAKE3 digest. Entry digests and bundle IDs are
// this size.
type Hash [32]byte

// domainKey is a 32-byte key for BLAKE3 keyed hashing. Domain
// separation ensures that the same input bytes produce different
// hashes in different contexts, preventing cross-domain collisions.
type domainKey [32]byte

// Domain separation keys. These are fixed constants; changing them
// invalidates every existing bundle's digests. The byte values are
// the ASCII encoding of the domain name, zero-padded to 32 bytes.
// Readable ASCII keeps the keys inspectable in hex dumps without
// sacrificing any cryptographic property (BLAKE3 keyed mode treats
// the key as an opaque 32-byte value).
var (
	entryDomainKey = domainKey{
		'm', 'o', 'n', 't', 'a', 'g', 'e', '.', 'b', 'u', 'n', 'd', 'l', 'e', '.',
		'e', 'n', 't', 'r', 'y', '.', 'v', '1', 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}

	manifestDomainKey = domainKey{
		'm', 'o', 'n', 't', 'a', 'g', 'e', '.', 'b', 'u', 'n', 'd', 'l', 'e', '.',
		'm', 'a', 'n', 'i', 'f', 'e', 's', 't', '.', 'v', '1', 0, 0, 0, 0, 0, 0,
	}
)

// HashEntry computes the entry-domain BLAKE3 keyed hash of entry
// content. Digests are always computed on the original bytes, before
// compression and encryption, so Verify checks what the reader will
// actually consume and the bundle ID is independent of storage
// settings.
func HashEntry(data []byte) Hash {
	return keyedHash(entryDomainKey, data)
}

// ComputeID computes the bundle ID from the entry digests in manifest
// order: the manifest-domain hash of the Merkle root over the
// digests. Hashing the root once more keeps single-entry bundle IDs
// from aliasing the entry digest itself.
//
// Panics if digests is empty. A well-formed bundle always has at
// least the document entry.
func ComputeID(digests []Hash) Hash {
	root := merkleRoot(manifestDomainKey, digests)
	return keyedHash(manifestDomainKey, root[:])
}

// merkleRoot computes a binary Merkle tree over the given hashes and
// returns the root. The tree is constructed bottom-up: adjacent pairs
// are concatenated and hashed with the domain key. If a level has an
// odd number of nodes, the last node is promoted to the next level
// without hashing (it is NOT duplicated; duplicating would mean two
// different inputs produce the same root when one is a prefix of the
// other).
//
// Panics if hashes is empty.
func merkleRoot(key domainKey, hashes []Hash) Hash {
	if len(hashes) == 0 {
		panic("bundle.merkleRoot: empty hash list")
	}
	if len(hashes) == 1 {
		return hashes[0]
	}

	// Pre-create a single keyed hasher and reuse it via Reset() for
	// each pair. This avoids allocating a new Hasher per pair, the
	// dominant allocation source for large trees. Reset() preserves
	// the key; it returns the hasher to its initial keyed state.
	hasher, err := blake3.NewKeyed(key[:])
	if err != nil {
		panic("bundle: BLAKE3 keyed hash initialization failed: " + err.Error())
	}

	// Scratch buffer for concatenating two hashes.
	var combined [64]byte

	hashPair := func(left, right Hash) Hash {
		copy(combined[:32], left[:])
		copy(combined[32:], right[:])
		hasher.Reset()
		hasher.Write(combined[:])
		var result Hash
		copy(result[:], hasher.Sum(nil))
		return result
	}

	// Work on a copy to avoid mutating the caller's slice.
	level := make([]Hash, len(hashes))
	copy(level, hashes)

	for len(level) > 1 {
		nextLength := (len(level) + 1) / 2
		next := make([]Hash, nextLength)

		for i := 0; i < len(level)-1; i += 2 {
			next[i/2] = hashPair(level[i], level[i+1])
		}

		// Odd node: promote without hashing.
		if len(level)%2 == 1 {
			next[nextLength-1] = level[len(level)-1]
		}

		level = next
	}

	return level[0]
}

// FormatHash returns the hex-encoded string representation of a hash.
// This is the canonical format used in manifests, logs, and CLI
// output.
func FormatHash(hash Hash) string {
	return hex.EncodeToString(hash[:])
}

// ParseHash parses a 64-character hex string into a Hash.
func ParseHash(hexString string) (Hash, error) {
	var hash Hash
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return hash, fmt.Errorf("parsing bundle hash: %w", err)
	}
	if len(decoded) != 32 {
		return hash, fmt.Errorf("bundle hash is %d bytes, want 32", len(decoded))
	}
	copy(hash[:], decoded)
	return hash, nil
}

// FormatID returns the short display form of a bundle ID: the "mtz-"
// prefix followed by the first 12 hex characters.
func FormatID(id Hash) string {
	return "mtz-" + hex.EncodeToString(id[:6])
}

// keyedHash computes the BLAKE3 keyed hash with the given domain key.
func keyedHash(key domainKey, data []byte) Hash {
	// NewKeyed requires exactly 32 bytes, which domainKey guarantees.
	hasher, err := blake3.NewKeyed(key[:])
	if err != nil {
		panic("bundle: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var hash Hash
	copy(hash[:], hasher.Sum(nil))
	return hash
}
