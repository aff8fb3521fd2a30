package manifest

import (
	"testing"

	"github.com/rkstgr/papermake-sub000/bundle"
	"github.com/rkstgr/papermake-sub000/caddress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validFiles() map[string]string {
	return map[string]string{
		bundle.Entrypoint: caddress.Hash([]byte("= Invoice\n")),
	}
}

func TestNewRequiresEntrypoint(t *testing.T) {
	_, err := New(map[string]string{"header.typ": caddress.Hash([]byte("x"))}, Metadata{Name: "n", Author: "a"})
	require.Error(t, err)
}

func TestNewRejectsEmptyFiles(t *testing.T) {
	_, err := New(map[string]string{}, Metadata{Name: "n", Author: "a"})
	require.Error(t, err)
}

func TestNewRejectsBadDigest(t *testing.T) {
	_, err := New(map[string]string{bundle.Entrypoint: "not-a-digest"}, Metadata{Name: "n", Author: "a"})
	require.Error(t, err)
}

func TestNewRejectsBlankMetadata(t *testing.T) {
	_, err := New(validFiles(), Metadata{Name: "", Author: "a"})
	require.Error(t, err)
}

func TestSerializeIsDeterministic(t *testing.T) {
	files := validFiles()
	m1, err := New(files, Metadata{Name: "Invoice", Author: "alice"})
	require.NoError(t, err)
	m2, err := New(files, Metadata{Name: "Invoice", Author: "alice"})
	require.NoError(t, err)

	assert.Equal(t, m1.Serialize(), m2.Serialize())
	assert.Equal(t, m1.Digest(), m2.Digest())
}

func TestDeserializeRoundTrips(t *testing.T) {
	m, err := New(validFiles(), Metadata{Name: "Invoice", Author: "alice"})
	require.NoError(t, err)

	back, err := Deserialize(m.Serialize())
	require.NoError(t, err)
	assert.Equal(t, m.Entrypoint, back.Entrypoint)
	assert.Equal(t, m.Files, back.Files)
	assert.Equal(t, m.Metadata, back.Metadata)
	assert.Equal(t, m.Digest(), back.Digest())
}

func TestDeserializeRejectsUnknownKeys(t *testing.T) {
	tampered := `{"entrypoint":"main.typ","files":{"main.typ":"sha256:` +
		"0000000000000000000000000000000000000000000000000000000000000000" +
		`"},"metadata":{"name":"n","author":"a"},"extra":"nope"}`
	_, err := Deserialize([]byte(tampered))
	require.Error(t, err)
}

func TestDeserializeRejectsMissingEntrypointFile(t *testing.T) {
	tampered := `{"entrypoint":"main.typ","files":{"other.typ":"sha256:` +
		"0000000000000000000000000000000000000000000000000000000000000000" +
		`"},"metadata":{"name":"n","author":"a"}}`
	_, err := Deserialize([]byte(tampered))
	require.Error(t, err)
}

func TestAddFileRevalidates(t *testing.T) {
	m, err := New(validFiles(), Metadata{Name: "n", Author: "a"})
	require.NoError(t, err)

	m2, err := m.AddFile("header.typ", caddress.Hash([]byte("header")))
	require.NoError(t, err)
	assert.Contains(t, m2.Files, "header.typ")

	_, err = m.AddFile("bad.typ", "not-a-digest")
	require.Error(t, err)
}

func TestRemoveFileRefusesEntrypoint(t *testing.T) {
	m, err := New(validFiles(), Metadata{Name: "n", Author: "a"})
	require.NoError(t, err)

	_, err = m.RemoveFile(bundle.Entrypoint)
	require.Error(t, err)
}

func TestRemoveFileDropsExtra(t *testing.T) {
	m, err := New(validFiles(), Metadata{Name: "n", Author: "a"})
	require.NoError(t, err)
	m, err = m.AddFile("header.typ", caddress.Hash([]byte("header")))
	require.NoError(t, err)

	m2, err := m.RemoveFile("header.typ")
	require.NoError(t, err)
	assert.NotContains(t, m2.Files, "header.typ")
}
