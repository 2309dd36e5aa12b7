// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"bytes"
	"testing"

	"github.com/montage-foundation/montage/lib/sealed"
	"github.com/montage-foundation/montage/lib/secret"
)

// testBundleKey returns a fresh bundle key, closed at test cleanup.
func testBundleKey(t *testing.T) *secret.Buffer {
	t.Helper()
	key, err := NewBundleKey()
	if err != nil {
		t.Fatalf("NewBundleKey() error: %v", err)
	}
	t.Cleanup(func() { key.Close() })
	return key
}

func TestNewBundleKey(t *testing.T) {
	key1 := testBundleKey(t)
	key2 := testBundleKey(t)

	if key1.Len() != KeySize {
		t.Errorf("bundle key is %d bytes, want %d", key1.Len(), KeySize)
	}
	if bytes.Equal(key1.Bytes(), key2.Bytes()) {
		t.Error("two bundle keys are identical")
	}
}

func TestDeriveEntryKeyPerDigest(t *testing.T) {
	bundleKey := testBundleKey(t)
	digestA := HashEntry([]byte("entry a"))
	digestB := HashEntry([]byte("entry b"))

	keyA, err := DeriveEntryKey(bundleKey, digestA)
	if err != nil {
		t.Fatalf("DeriveEntryKey(a) error: %v", err)
	}
	defer keyA.Close()
	keyB, err := DeriveEntryKey(bundleKey, digestB)
	if err != nil {
		t.Fatalf("DeriveEntryKey(b) error: %v", err)
	}
	defer keyB.Close()
	keyA2, err := DeriveEntryKey(bundleKey, digestA)
	if err != nil {
		t.Fatalf("DeriveEntryKey(a) again error: %v", err)
	}
	defer keyA2.Close()

	if bytes.Equal(keyA.Bytes(), keyB.Bytes()) {
		t.Error("different digests derived the same entry key")
	}
	if !bytes.Equal(keyA.Bytes(), keyA2.Bytes()) {
		t.Error("same digest derived different entry keys")
	}
	if keyA.Len() != KeySize {
		t.Errorf("derived key is %d bytes, want %d", keyA.Len(), KeySize)
	}
}

func TestEncryptDecryptEntry(t *testing.T) {
	bundleKey := testBundleKey(t)
	plaintext := []byte("compressed entry stream bytes")
	digest := HashEntry(plaintext)

	entryKey, err := DeriveEntryKey(bundleKey, digest)
	if err != nil {
		t.Fatalf("DeriveEntryKey() error: %v", err)
	}
	defer entryKey.Close()

	encrypted, err := EncryptEntry(plaintext, entryKey, digest)
	if err != nil {
		t.Fatalf("EncryptEntry() error: %v", err)
	}

	if len(encrypted) != len(plaintext)+EncryptedEntryOverhead {
		t.Errorf("encrypted length = %d, want %d", len(encrypted), len(plaintext)+EncryptedEntryOverhead)
	}
	if encrypted[0] != EncryptedEntryVersion {
		t.Errorf("version byte = %d, want %d", encrypted[0], EncryptedEntryVersion)
	}

	decrypted, err := DecryptEntry(encrypted, entryKey, digest)
	if err != nil {
		t.Fatalf("DecryptEntry() error: %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Error("round trip did not recover the plaintext")
	}
}

func TestDecryptEntryTamperDetection(t *testing.T) {
	bundleKey := testBundleKey(t)
	plaintext := []byte("authenticated entry content")
	digest := HashEntry(plaintext)

	entryKey, err := DeriveEntryKey(bundleKey, digest)
	if err != nil {
		t.Fatalf("DeriveEntryKey() error: %v", err)
	}
	defer entryKey.Close()

	encrypted, err := EncryptEntry(plaintext, entryKey, digest)
	if err != nil {
		t.Fatalf("EncryptEntry() error: %v", err)
	}

	// Flip one ciphertext byte.
	tampered := append([]byte(nil), encrypted...)
	tampered[len(tampered)-1] ^= 0x01
	if _, err := DecryptEntry(tampered, entryKey, digest); err == nil {
		t.Error("DecryptEntry should reject tampered ciphertext")
	}

	// Wrong digest in the AAD.
	wrongDigest := HashEntry([]byte("some other entry"))
	if _, err := DecryptEntry(encrypted, entryKey, wrongDigest); err == nil {
		t.Error("DecryptEntry should reject a mismatched entry digest")
	}

	// Unsupported version byte.
	versioned := append([]byte(nil), encrypted...)
	versioned[0] = 0x7f
	if _, err := DecryptEntry(versioned, entryKey, digest); err == nil {
		t.Error("DecryptEntry should reject an unknown version byte")
	}

	// Truncated below the fixed overhead.
	if _, err := DecryptEntry(encrypted[:EncryptedEntryOverhead-1], entryKey, digest); err == nil {
		t.Error("DecryptEntry should reject a truncated stream")
	}
}

func TestSealUnsealBundleKey(t *testing.T) {
	keypair, err := sealed.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair() error: %v", err)
	}
	defer keypair.Close()

	bundleKey := testBundleKey(t)
	original := append([]byte(nil), bundleKey.Bytes()...)

	sealedKey, err := SealBundleKey(bundleKey, []string{keypair.PublicKey})
	if err != nil {
		t.Fatalf("SealBundleKey() error: %v", err)
	}

	unsealed, err := UnsealBundleKey(sealedKey, keypair.PrivateKey)
	if err != nil {
		t.Fatalf("UnsealBundleKey() error: %v", err)
	}
	defer unsealed.Close()

	if !bytes.Equal(unsealed.Bytes(), original) {
		t.Error("unsealed bundle key does not match the original")
	}
}

func TestUnsealBundleKeyWrongIdentity(t *testing.T) {
	recipient, err := sealed.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair() error: %v", err)
	}
	defer recipient.Close()
	stranger, err := sealed.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair() error: %v", err)
	}
	defer stranger.Close()

	bundleKey := testBundleKey(t)
	sealedKey, err := SealBundleKey(bundleKey, []string{recipient.PublicKey})
	if err != nil {
		t.Fatalf("SealBundleKey() error: %v", err)
	}

	if _, err := UnsealBundleKey(sealedKey, stranger.PrivateKey); err == nil {
		t.Error("UnsealBundleKey should fail with a non-recipient identity")
	}
}
