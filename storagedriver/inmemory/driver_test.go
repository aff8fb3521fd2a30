package inmemory

import (
	"context"
	"testing"

	"github.com/rkstgr/papermake-sub000/storagedriver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	d := New()

	require.NoError(t, d.Put(ctx, "blobs/sha256/abc", []byte("hello")))

	got, err := d.Get(ctx, "blobs/sha256/abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)
}

func TestGetMissingIsNotFound(t *testing.T) {
	ctx := context.Background()
	d := New()

	_, err := d.Get(ctx, "nope")
	require.Error(t, err)
	assert.True(t, storagedriver.IsNotFound(err))
}

func TestPutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	d := New()

	require.NoError(t, d.Put(ctx, "k", []byte("v")))
	require.NoError(t, d.Put(ctx, "k", []byte("v")))

	exists, err := d.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestDeleteAbsentKeyIsNoop(t *testing.T) {
	ctx := context.Background()
	d := New()

	require.NoError(t, d.Delete(ctx, "absent"))
}

func TestListByPrefix(t *testing.T) {
	ctx := context.Background()
	d := New()

	require.NoError(t, d.Put(ctx, "refs/john/invoice/latest", []byte("x")))
	require.NoError(t, d.Put(ctx, "refs/alice/invoice/v1", []byte("y")))
	require.NoError(t, d.Put(ctx, "blobs/sha256/abc", []byte("z")))

	keys, err := d.List(ctx, "refs/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"refs/john/invoice/latest", "refs/alice/invoice/v1"}, keys)
}
