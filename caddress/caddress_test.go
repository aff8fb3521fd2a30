package caddress

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashKnownValue(t *testing.T) {
	require.Equal(t, "sha256:2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", Hash([]byte("hello")))
}

func TestHashDeterministicAndDistinct(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	assert.Equal(t, h1, h2)

	h3 := Hash([]byte("world"))
	assert.NotEqual(t, h1, h3)
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("sha256:"+strings.Repeat("a", 64)))
	assert.False(t, IsValid(strings.Repeat("a", 64)))
	assert.False(t, IsValid("sha256:abc123"))
	assert.False(t, IsValid("sha256:"+strings.Repeat("g", 64)))
	assert.False(t, IsValid("sha256:"+strings.Repeat("a", 65)))
}

func TestVerify(t *testing.T) {
	content := []byte("test content")
	h := Hash(content)

	assert.True(t, Verify(content, h))
	assert.False(t, Verify([]byte("wrong content"), h))
	assert.False(t, Verify(content, "sha256:wrongvalue"))
}

func TestKeyBuilders(t *testing.T) {
	d := "sha256:abc123def456789"

	assert.Equal(t, "blobs/sha256/abc123def456789", BlobKey(d))
	assert.Equal(t, "manifests/sha256/abc123def456789", ManifestKey(d))
	assert.Equal(t, "data/sha256/abc123def456789", DataKey(d))
	assert.Equal(t, "pdfs/sha256/abc123def456789", PdfKey(d))

	assert.Equal(t, "refs/john/invoice/latest", RefKey("john/invoice", "latest"))
	assert.Equal(t, "refs/invoice/latest", RefKey("invoice", "latest"))
	assert.Equal(t, "refs/acme-corp/letterhead/stable", RefKey("acme-corp/letterhead", "stable"))
}
