package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	// CiphertextPrefix tags a stored value as ciphertext. It is part of the
	// persisted format and must never change.
	CiphertextPrefix = "ENC:"
	// NonceSize is the GCM IV length in bytes.
	NonceSize = 12
	// TagSize is the GCM authentication tag length in bytes.
	TagSize = 16
)

var (
	// ErrNilKey is returned when Seal or Open is called without a key.
	ErrNilKey = errors.New("nil key")
	// ErrDecryptionFailed marks any failure to open a tagged value: wrong
	// key, corrupted encoding, truncated or tampered ciphertext.
	ErrDecryptionFailed = errors.New("decryption failed")
)

// randReader is a test seam for crypto/rand.
var randReader io.Reader = rand.Reader

// IsEncrypted reports whether text carries the ciphertext prefix.
func IsEncrypted(text string) bool {
	return strings.HasPrefix(text, CiphertextPrefix)
}

// Seal encrypts plaintext under key with a fresh random IV and returns
// CiphertextPrefix + base64(IV || ciphertext || tag). An empty plaintext is
// returned unchanged.
func Seal(plaintext string, key *Key) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	if key == nil {
		return "", ErrNilKey
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(randReader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	// nonce doubles as the output prefix
	sealed := key.aead.Seal(nonce, nonce, []byte(plaintext), nil)

	return CiphertextPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal. Empty and untagged input is legacy plaintext and is
// returned as is. Every failure on tagged input wraps ErrDecryptionFailed.
func Open(text string, key *Key) (string, error) {
	if text == "" || !IsEncrypted(text) {
		return text, nil
	}
	if key == nil {
		return "", fmt.Errorf("%w: %w", ErrDecryptionFailed, ErrNilKey)
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(text, CiphertextPrefix))
	if err != nil {
		return "", fmt.Errorf("%w: invalid base64: %w", ErrDecryptionFailed, err)
	}
	if len(data) < NonceSize+TagSize {
		return "", fmt.Errorf("%w: ciphertext too short", ErrDecryptionFailed)
	}

	plaintext, err := key.aead.Open(nil, data[:NonceSize], data[NonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}
	return string(plaintext), nil
}
