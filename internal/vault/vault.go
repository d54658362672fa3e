// Package vault provides symmetric encryption for sensitive payloads at
// rest (identity display names, attendance proof images).
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// CorruptionSentinel is returned by Decrypt in place of plaintext when a
// ciphertext cannot be decrypted (malformed, truncated, or produced under a
// different key).  Audit-log readers must always get a row back even when
// one field is unreadable, so Decrypt never surfaces an error.
const CorruptionSentinel = "[ENCRYPTED_DATA_CORRUPTION]"

// Key derivation parameters.  The salt and iteration count are fixed so the
// same passphrase derives the same key across restarts; key rotation is out
// of scope.  In production the passphrase should come from a secret manager.
const kdfIterations = 480000

var kdfSalt = []byte("facewarden_static_salt")

type Vault struct {
	aead cipher.AEAD
}

// New derives a 256-bit key from the passphrase via PBKDF2-SHA256 and
// returns a Vault sealing with AES-GCM.
func New(passphrase string) (*Vault, error) {
	key := pbkdf2.Key([]byte(passphrase), kdfSalt, kdfIterations, 32, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("vault cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("vault gcm: %w", err)
	}

	return &Vault{aead: aead}, nil
}

// Encrypt seals plaintext and returns base64url(nonce || ciphertext).
// Empty input is a no-op: absent data is not encrypted.
func (v *Vault) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, v.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("vault nonce: %w", err)
	}

	sealed := v.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.URLEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt.  Empty input returns empty output; anything
// undecryptable returns CorruptionSentinel rather than an error.
func (v *Vault) Decrypt(ciphertext string) string {
	if ciphertext == "" {
		return ""
	}

	raw, err := base64.URLEncoding.DecodeString(ciphertext)
	if err != nil {
		return CorruptionSentinel
	}

	ns := v.aead.NonceSize()
	if len(raw) < ns {
		return CorruptionSentinel
	}

	plaintext, err := v.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return CorruptionSentinel
	}
	return string(plaintext)
}
