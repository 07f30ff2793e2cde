package cryptox

import (
	"encoding/hex"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	key1, err := DeriveKey("abcd")
	require.NoError(t, err)
	key2, err := DeriveKey("abcd")
	require.NoError(t, err)

	assert.True(t, key1.Equal(key2))

	// snapshot: PBKDF2-SHA256("abcd", keySalt, 100000, 32)
	expectedHex := "07cf0605955d766922ba38645e631d42022d299bd3acdc26922f712939da3a88"
	assert.Equal(t, expectedHex, hex.EncodeToString(key1.raw))
}

func TestDeriveKey_DifferentCodes(t *testing.T) {
	key1, err := DeriveKey("abcd")
	require.NoError(t, err)
	key2, err := DeriveKey("wxyz")
	require.NoError(t, err)
	key3, err := DeriveKey("ABCD")
	require.NoError(t, err)

	assert.False(t, key1.Equal(key2))
	assert.False(t, key1.Equal(key3), "derivation must be case sensitive")
	assert.Equal(t, "3bba0fc1ce00d8506338aefa8ea77625d6d57232d7046fc274e73d8ef2fac5da", hex.EncodeToString(key2.raw))
}

func TestDeriveKey_Empty(t *testing.T) {
	_, err := DeriveKey("")
	require.ErrorIs(t, err, ErrEmptyFamilyCode)
}

func TestKey_EqualNil(t *testing.T) {
	var a, b *Key
	assert.True(t, a.Equal(b))

	k, err := DeriveKey("abcd")
	require.NoError(t, err)
	assert.False(t, k.Equal(nil))
	assert.False(t, a.Equal(k))
}

func TestNewKey_BadMaterial(t *testing.T) {
	_, err := newKey([]byte("short"))

	var kdErr *KeyDerivationError
	require.ErrorAs(t, err, &kdErr)
	assert.Contains(t, err.Error(), "key derivation failed")
}

func TestKeyCache_HitAfterMiss(t *testing.T) {
	var calls atomic.Int32
	c := NewKeyCache(WithDeriveFunc(func(code string) (*Key, error) {
		calls.Add(1)
		return DeriveKey(code)
	}))

	k1, err := c.Get("abcd")
	require.NoError(t, err)
	k2, err := c.Get("abcd")
	require.NoError(t, err)

	assert.Same(t, k1, k2)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, c.Len())
}

func TestKeyCache_ClearForcesRederive(t *testing.T) {
	var calls atomic.Int32
	c := NewKeyCache(WithDeriveFunc(func(code string) (*Key, error) {
		calls.Add(1)
		return DeriveKey(code)
	}))

	k1, err := c.Get("abcd")
	require.NoError(t, err)

	c.Clear()
	assert.Equal(t, 0, c.Len())

	k2, err := c.Get("abcd")
	require.NoError(t, err)

	assert.NotSame(t, k1, k2)
	assert.True(t, k1.Equal(k2))
	assert.Equal(t, int32(2), calls.Load())
}

func TestKeyCache_EmptyCode(t *testing.T) {
	c := NewKeyCache()
	_, err := c.Get("")
	require.ErrorIs(t, err, ErrEmptyFamilyCode)
	assert.Equal(t, 0, c.Len())
}

func TestKeyCache_ProviderFailure(t *testing.T) {
	boom := errors.New("provider unavailable")
	c := NewKeyCache(WithDeriveFunc(func(string) (*Key, error) {
		return nil, boom
	}))

	_, err := c.Get("abcd")

	var kdErr *KeyDerivationError
	require.ErrorAs(t, err, &kdErr)
	assert.ErrorIs(t, err, boom)
	assert.NotContains(t, err.Error(), "abcd")
	assert.Equal(t, 0, c.Len(), "failed derivations are not cached")
}

func TestKeyCache_ProviderReturnsTypedError(t *testing.T) {
	orig := &KeyDerivationError{Err: errors.New("no aes")}
	c := NewKeyCache(WithDeriveFunc(func(string) (*Key, error) {
		return nil, orig
	}))

	_, err := c.Get("abcd")
	assert.Same(t, orig, err)
}

func TestKeyCache_ProviderReturnsNilKey(t *testing.T) {
	c := NewKeyCache(WithDeriveFunc(func(string) (*Key, error) {
		return nil, nil
	}))

	_, err := c.Get("abcd")
	var kdErr *KeyDerivationError
	require.ErrorAs(t, err, &kdErr)
}

func TestKeyCache_ConcurrentGet(t *testing.T) {
	c := NewKeyCache()

	const n = 8
	keys := make([]*Key, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			k, err := c.Get("race-code")
			if err == nil {
				keys[i] = k
			}
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		require.NotNil(t, keys[i])
		assert.True(t, keys[0].Equal(keys[i]))
	}
	assert.Equal(t, 1, c.Len())
}
