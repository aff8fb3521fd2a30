package registry

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rkstgr/papermake-sub000/bundle"
	"github.com/rkstgr/papermake-sub000/caddress"
	"github.com/rkstgr/papermake-sub000/storagedriver/inmemory"
)

func newBundle() *bundle.Bundle {
	return bundle.New([]byte("= Invoice\n"), bundle.Metadata{Name: "Invoice", Author: "alice"})
}

func TestPublishThenResolve(t *testing.T) {
	ctx := context.Background()
	reg := New(inmemory.New())

	digest, err := reg.Publish(ctx, newBundle(), "john/invoice", "latest")
	require.NoError(t, err)
	assert.True(t, caddress.IsValid(digest))

	resolved, err := reg.Resolve(ctx, "john/invoice:latest")
	require.NoError(t, err)
	assert.Equal(t, digest, resolved)

	m, err := reg.LoadManifest(ctx, digest)
	require.NoError(t, err)
	assert.Equal(t, caddress.Hash([]byte("= Invoice\n")), m.Files["main.typ"])
}

func TestPublishDedupAcrossNamespaces(t *testing.T) {
	ctx := context.Background()
	reg := New(inmemory.New())

	d1, err := reg.Publish(ctx, newBundle(), "john/invoice", "latest")
	require.NoError(t, err)
	d2, err := reg.Publish(ctx, newBundle(), "alice/invoice", "v1")
	require.NoError(t, err)

	assert.Equal(t, d1, d2)

	r1, err := reg.Resolve(ctx, "john/invoice:latest")
	require.NoError(t, err)
	r2, err := reg.Resolve(ctx, "alice/invoice:v1")
	require.NoError(t, err)
	assert.Equal(t, d1, r1)
	assert.Equal(t, d1, r2)
}

func TestResolveWithDigestPin(t *testing.T) {
	ctx := context.Background()
	reg := New(inmemory.New())

	digest, err := reg.Publish(ctx, newBundle(), "john/invoice", "latest")
	require.NoError(t, err)

	_, err = reg.Resolve(ctx, "john/invoice:latest@"+digest)
	require.NoError(t, err)

	wrong := "sha256:" + strings.Repeat("1", 64)
	_, err = reg.Resolve(ctx, "john/invoice:latest@"+wrong)
	require.Error(t, err)
	var mismatch *HashMismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestResolveMissingTemplate(t *testing.T) {
	ctx := context.Background()
	reg := New(inmemory.New())

	_, err := reg.Resolve(ctx, "nope/nothing:latest")
	require.Error(t, err)
	var notFound *TemplateNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestResolveInvalidReference(t *testing.T) {
	ctx := context.Background()
	reg := New(inmemory.New())

	_, err := reg.Resolve(ctx, "x:")
	require.Error(t, err)
	var invalid *InvalidReferenceError
	require.ErrorAs(t, err, &invalid)
}

func TestListTemplatesSortedWithTags(t *testing.T) {
	ctx := context.Background()
	reg := New(inmemory.New())

	_, err := reg.Publish(ctx, newBundle(), "john/invoice", "latest")
	require.NoError(t, err)
	_, err = reg.Publish(ctx, newBundle(), "alice/invoice", "v1")
	require.NoError(t, err)

	summaries, err := reg.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, "alice/invoice", summaries[0].FullName)
	assert.Equal(t, []string{"v1"}, summaries[0].Tags)
	assert.Equal(t, "john/invoice", summaries[1].FullName)
	assert.Equal(t, []string{"latest"}, summaries[1].Tags)
	assert.Equal(t, "Invoice", summaries[0].Metadata.Name)
}

func TestListTemplatesSkipsBrokenManifest(t *testing.T) {
	ctx := context.Background()
	driver := inmemory.New()
	reg := New(driver)

	require.NoError(t, driver.Put(ctx, "refs/broken/template/latest", []byte("sha256:"+strings.Repeat("0", 64))))
	_, err := reg.Publish(ctx, newBundle(), "john/invoice", "latest")
	require.NoError(t, err)

	summaries, err := reg.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "john/invoice", summaries[0].FullName)
}
