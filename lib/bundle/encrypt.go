// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/montage-foundation/montage/lib/sealed"
	"github.com/montage-foundation/montage/lib/secret"
)

// KeySize is the size in bytes of all symmetric keys in bundle
// encryption: the bundle key (random, sealed to recipients) and the
// per-entry keys derived from it.
const KeySize = 32

// EncryptedEntryVersion is the version byte prepended to every
// encrypted entry stream. Included as additional authenticated data
// (AAD) in the AEAD Seal/Open call, so tampering with the version
// byte causes authentication failure.
const EncryptedEntryVersion byte = 0x01

// EncryptedEntryOverhead is the total byte overhead per encrypted
// entry stream: 1 (version) + 24 (XChaCha20-Poly1305 nonce) + 16
// (Poly1305 tag).
const EncryptedEntryOverhead = 1 + chacha20poly1305.NonceSizeX + chacha20poly1305.Overhead

// hkdfInfoEntry is the "info" parameter to HKDF-SHA256 when deriving
// a per-entry key from the bundle key, providing domain separation
// from any future derivation path. Changing it invalidates every
// encrypted bundle.
var hkdfInfoEntry = []byte("montage.bundle.entry.enc.v1")

// NewBundleKey generates a random bundle key in guarded memory. One
// bundle key is generated per encrypted bundle; per-entry keys are
// derived from it. The caller must close the returned buffer.
func NewBundleKey() (*secret.Buffer, error) {
	keyBytes := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, keyBytes); err != nil {
		secret.Zero(keyBytes)
		return nil, fmt.Errorf("generating bundle key: %w", err)
	}
	// NewFromBytes copies into mmap and zeros the heap slice.
	return secret.NewFromBytes(keyBytes)
}

// DeriveEntryKey derives the encryption key for one entry from the
// bundle key and the entry's content digest. Binding the key to the
// digest gives every entry a unique key and ties the ciphertext to
// the content the manifest promises.
//
// The bundleKey is borrowed (read via .Bytes()) and is NOT closed by
// this function. The returned buffer must be closed by the caller.
func DeriveEntryKey(bundleKey *secret.Buffer, digest Hash) (*secret.Buffer, error) {
	info := make([]byte, len(hkdfInfoEntry)+len(digest))
	copy(info, hkdfInfoEntry)
	copy(info[len(hkdfInfoEntry):], digest[:])
	return deriveKey(bundleKey.Bytes(), info)
}

// EncryptEntry encrypts an entry stream using XChaCha20-Poly1305 and
// returns the encrypted stream in the standard format:
//
//	[Version: 1 byte (0x01)] [Nonce: 24 bytes (random)] [Ciphertext+Tag: N+16 bytes]
//
// The version byte and the entry's content digest are included as
// additional authenticated data. The digest binds the ciphertext to
// the manifest entry it belongs to, preventing stream swapping within
// a bundle.
//
// The entryKey is borrowed and NOT closed. It must be exactly 32
// bytes (the output of [DeriveEntryKey]).
func EncryptEntry(plaintext []byte, entryKey *secret.Buffer, digest Hash) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(entryKey.Bytes())
	if err != nil {
		return nil, fmt.Errorf("creating XChaCha20-Poly1305 cipher: %w", err)
	}

	// Generate a random 24-byte nonce.
	var nonce [chacha20poly1305.NonceSizeX]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("generating random nonce: %w", err)
	}

	aad := buildAAD(EncryptedEntryVersion, digest)

	// Allocate output: version + nonce + ciphertext + tag.
	output := make([]byte, 1+chacha20poly1305.NonceSizeX, 1+chacha20poly1305.NonceSizeX+len(plaintext)+aead.Overhead())
	output[0] = EncryptedEntryVersion
	copy(output[1:], nonce[:])

	// Seal appends the ciphertext+tag to output.
	output = aead.Seal(output, nonce[:], plaintext, aad)
	return output, nil
}

// DecryptEntry decrypts an entry stream produced by EncryptEntry. It
// verifies the version byte, extracts the nonce, and authenticates
// the ciphertext against the AAD (version byte + entry digest).
//
// Returns an error if:
//   - The stream is too short to contain version + nonce + tag
//   - The version byte is not EncryptedEntryVersion
//   - AEAD authentication fails (wrong key, tampered ciphertext,
//     wrong entry digest)
//
// The entryKey is borrowed and NOT closed.
func DecryptEntry(encrypted []byte, entryKey *secret.Buffer, digest Hash) ([]byte, error) {
	if len(encrypted) < EncryptedEntryOverhead {
		return nil, fmt.Errorf("encrypted entry is %d bytes, minimum is %d (version + nonce + tag)",
			len(encrypted), EncryptedEntryOverhead)
	}

	version := encrypted[0]
	if version != EncryptedEntryVersion {
		return nil, fmt.Errorf("encrypted entry version %d is not supported (expected %d)",
			version, EncryptedEntryVersion)
	}

	nonce := encrypted[1 : 1+chacha20poly1305.NonceSizeX]
	ciphertext := encrypted[1+chacha20poly1305.NonceSizeX:]

	aead, err := chacha20poly1305.NewX(entryKey.Bytes())
	if err != nil {
		return nil, fmt.Errorf("creating XChaCha20-Poly1305 cipher: %w", err)
	}

	aad := buildAAD(version, digest)

	plaintext, err := aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("AEAD decryption failed (wrong key, tampered data, or mismatched entry): %w", err)
	}

	return plaintext, nil
}

// SealBundleKey encrypts the bundle key to the given age x25519
// recipient public keys and returns base64 ciphertext for the
// manifest. At least one recipient is required.
//
// The bundleKey is borrowed and NOT closed.
func SealBundleKey(bundleKey *secret.Buffer, recipientKeys []string) (string, error) {
	sealedKey, err := sealed.Encrypt(bundleKey.Bytes(), recipientKeys)
	if err != nil {
		return "", fmt.Errorf("sealing bundle key: %w", err)
	}
	return sealedKey, nil
}

// UnsealBundleKey decrypts a sealed bundle key from the manifest
// using an age private key. The identity is borrowed and NOT closed.
// The returned buffer must be closed by the caller.
func UnsealBundleKey(sealedKey string, identity *secret.Buffer) (*secret.Buffer, error) {
	bundleKey, err := sealed.Decrypt(sealedKey, identity)
	if err != nil {
		return nil, fmt.Errorf("unsealing bundle key: %w", err)
	}
	if bundleKey.Len() != KeySize {
		bundleKey.Close()
		return nil, fmt.Errorf("unsealed bundle key is %d bytes, want %d", bundleKey.Len(), KeySize)
	}
	return bundleKey, nil
}

// buildAAD constructs the additional authenticated data for entry
// encryption: the version byte followed by the entry digest.
func buildAAD(version byte, digest Hash) []byte {
	aad := make([]byte, 1+len(digest))
	aad[0] = version
	copy(aad[1:], digest[:])
	return aad
}

// deriveKey runs HKDF-SHA256 over the input key material with the
// given info string and returns a KeySize guarded buffer.
func deriveKey(inputKeyMaterial []byte, info []byte) (*secret.Buffer, error) {
	reader := hkdf.New(sha256.New, inputKeyMaterial, nil, info)
	derived := make([]byte, KeySize)
	if _, err := io.ReadFull(reader, derived); err != nil {
		secret.Zero(derived)
		return nil, fmt.Errorf("HKDF key derivation failed: %w", err)
	}
	// NewFromBytes copies into mmap and zeros the heap slice.
	return secret.NewFromBytes(derived)
}
