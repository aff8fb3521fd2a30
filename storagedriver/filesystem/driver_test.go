package filesystem

import (
	"context"
	"testing"

	"github.com/rkstgr/papermake-sub000/storagedriver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	d, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, d.Put(ctx, "blobs/sha256/abc", []byte("hello")))

	got, err := d.Get(ctx, "blobs/sha256/abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)
}

func TestGetMissingIsNotFound(t *testing.T) {
	ctx := context.Background()
	d, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = d.Get(ctx, "nope")
	require.Error(t, err)
	assert.True(t, storagedriver.IsNotFound(err))
}

func TestListByPrefix(t *testing.T) {
	ctx := context.Background()
	d, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, d.Put(ctx, "refs/john/invoice/latest", []byte("x")))
	require.NoError(t, d.Put(ctx, "blobs/sha256/abc", []byte("z")))

	keys, err := d.List(ctx, "refs/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"refs/john/invoice/latest"}, keys)
}

func TestRejectsDotDotKey(t *testing.T) {
	ctx := context.Background()
	d, err := New(t.TempDir())
	require.NoError(t, err)

	err = d.Put(ctx, "../escape", []byte("x"))
	require.Error(t, err)
}
