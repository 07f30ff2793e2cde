// Package cryptox implements the family-code key derivation and the
// self-describing AES-GCM field format used for user content.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"sync"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32
	// KeyIterations is the PBKDF2 work factor. Changing it makes all
	// previously stored ciphertext unreadable.
	KeyIterations = 100000
)

// keySalt is shared by every installation so that any device holding the
// same family code derives the same key.
var keySalt = []byte("kidkeeper:family-code:v1")

// ErrEmptyFamilyCode is returned when a key is requested for an empty code.
var ErrEmptyFamilyCode = errors.New("empty family code")

// KeyDerivationError reports a failure of the underlying crypto provider while
// turning a family code into a key. The code itself is never included.
type KeyDerivationError struct {
	Err error
}

func (e *KeyDerivationError) Error() string {
	return "key derivation failed: " + e.Err.Error()
}

func (e *KeyDerivationError) Unwrap() error {
	return e.Err
}

// Key is a derived symmetric key bound to an AES-GCM instance.
// It is never serialized.
type Key struct {
	raw  []byte
	aead cipher.AEAD
}

// Equal reports whether two keys hold identical key material.
func (k *Key) Equal(other *Key) bool {
	if k == nil || other == nil {
		return k == other
	}
	return subtle.ConstantTimeCompare(k.raw, other.raw) == 1
}

// DeriveKey runs PBKDF2-SHA256 over familyCode with the fixed application
// salt and returns a ready-to-use AES-256-GCM key. The result is a pure
// function of familyCode.
func DeriveKey(familyCode string) (*Key, error) {
	if familyCode == "" {
		return nil, ErrEmptyFamilyCode
	}
	raw := pbkdf2.Key([]byte(familyCode), keySalt, KeyIterations, KeySize, sha256.New)
	return newKey(raw)
}

func newKey(raw []byte) (*Key, error) {
	block, err := aes.NewCipher(raw)
	if err != nil {
		return nil, &KeyDerivationError{Err: err}
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, &KeyDerivationError{Err: err}
	}
	return &Key{raw: raw, aead: aead}, nil
}

// DeriveFunc turns a family code into a key.
type DeriveFunc func(familyCode string) (*Key, error)

// KeyCache memoizes derived keys per exact family code (case and byte
// sensitive) for the lifetime of the owning application context.
//
// Concurrent misses for the same code may derive the key twice; both results
// are identical, so the later cache write is harmless.
type KeyCache struct {
	mu     sync.RWMutex
	keys   map[string]*Key
	derive DeriveFunc
}

// KeyCacheOption configures a KeyCache.
type KeyCacheOption func(*KeyCache)

// WithDeriveFunc replaces the derivation function (DeriveKey by default).
func WithDeriveFunc(fn DeriveFunc) KeyCacheOption {
	return func(c *KeyCache) {
		c.derive = fn
	}
}

// NewKeyCache returns an empty cache.
func NewKeyCache(opts ...KeyCacheOption) *KeyCache {
	c := &KeyCache{
		keys:   make(map[string]*Key),
		derive: DeriveKey,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Get returns the cached key for familyCode, deriving it on a miss.
// Provider failures come back as *KeyDerivationError.
func (c *KeyCache) Get(familyCode string) (*Key, error) {
	if familyCode == "" {
		return nil, ErrEmptyFamilyCode
	}

	c.mu.RLock()
	k, ok := c.keys[familyCode]
	c.mu.RUnlock()
	if ok {
		return k, nil
	}

	k, err := c.derive(familyCode)
	if err != nil {
		var kdErr *KeyDerivationError
		if errors.As(err, &kdErr) {
			return nil, err
		}
		return nil, &KeyDerivationError{Err: err}
	}
	if k == nil {
		return nil, &KeyDerivationError{Err: errors.New("provider returned no key")}
	}

	c.mu.Lock()
	c.keys[familyCode] = k
	c.mu.Unlock()

	return k, nil
}

// Clear drops every cached key. Used when the family code is abandoned or
// switched.
func (c *KeyCache) Clear() {
	c.mu.Lock()
	c.keys = make(map[string]*Key)
	c.mu.Unlock()
}

// Len returns the number of cached keys.
func (c *KeyCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.keys)
}
