// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealed provides age encryption and decryption for Montage
// bundle keys. It wraps filippo.io/age for the specific operations
// bundle encryption needs: generate x25519 keypairs, encrypt a key to
// multiple recipients, and decrypt with a private key.
//
// Ciphertext is base64-encoded for storage in bundle manifest fields.
// Callers pass plaintext []byte to [Encrypt] and receive a base64
// string; [Decrypt] accepts a base64 string and returns plaintext.
// Private keys and decrypted plaintext are returned as [secret.Buffer]
// values backed by mmap memory outside the Go heap (locked against
// swap, excluded from core dumps, zeroed on Close).
//
// Key exports:
//
//   - [GenerateKeypair] -- new age x25519 keypair in a secret.Buffer
//   - [Encrypt] -- encrypt to age public key recipients
//   - [Decrypt] -- decrypt with a secret.Buffer private key
//   - [ParsePublicKey] / [ParsePrivateKey] -- key validation
//
// Used by lib/bundle (seal the bundle key into the manifest, unseal
// it on read) and the montage bundle commands (keygen, key files).
//
// Depends on lib/secret for secure memory allocation.
package sealed
