// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func directHMAC(data, key string) string {
	h := hmac.New(sha256.New, []byte(key))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

func TestHasher_HashMatchesHMAC(t *testing.T) {
	h := NewHasher("secret-key")

	sum1 := h.HashHex([]byte("test-data"))
	sum2 := h.HashHex([]byte("test-data"))

	require.NotEmpty(t, sum1)
	assert.Equal(t, sum1, sum2, "hash must be deterministic for the same input")
	assert.Equal(t, directHMAC("test-data", "secret-key"), sum1)
}

func TestHasher_DifferentKeys(t *testing.T) {
	a := NewHasher("key-a").HashHex([]byte("payload"))
	b := NewHasher("key-b").HashHex([]byte("payload"))
	assert.NotEqual(t, a, b)
}

func TestHasher_Verify(t *testing.T) {
	h := NewHasher("secret-key")
	body := []byte(`{"id":"p1"}`)

	assert.True(t, h.Verify(body, h.HashHex(body)))
	assert.False(t, h.Verify(body, h.HashHex([]byte("other"))))
	assert.False(t, h.Verify(body, "not-hex"))
}

func TestHasher_Enabled(t *testing.T) {
	var nilHasher *Hasher
	assert.False(t, nilHasher.Enabled())
	assert.False(t, NewHasher("").Enabled())
	assert.True(t, NewHasher("k").Enabled())
}

func TestHasher_ConcurrentUse(t *testing.T) {
	h := NewHasher("secret-key")
	want := directHMAC("payload", "secret-key")

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, h.HashHex([]byte("payload")))
		}()
	}
	wg.Wait()
}

func TestHashString(t *testing.T) {
	assert.Equal(t, directHMAC("data", "key"), HashString("data", "key"))
}
