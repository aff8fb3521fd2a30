package renderlog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStoreAppendGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLiteStore(ctx, ":memory:")
	require.NoError(t, err)
	defer s.Close()

	r := NewSuccess("john/invoice:latest", "invoice", "latest", "sha256:manifest", "sha256:data", "sha256:pdf", 1000, 2048)
	require.NoError(t, s.Append(ctx, r))

	got, err := s.Get(ctx, r.RenderID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, r.ReferenceText, got.ReferenceText)
	assert.True(t, got.Success)
	assert.Equal(t, r.Timestamp.Unix(), got.Timestamp.Unix())
}

func TestSQLiteStoreListRecentAndForName(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLiteStore(ctx, ":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Append(ctx, NewSuccess("invoice:latest", "invoice", "latest", "m", "d", "p", 1, 1)))
	require.NoError(t, s.Append(ctx, NewSuccess("letterhead:v1", "letterhead", "v1", "m", "d", "p", 1, 1)))

	recent, err := s.ListRecent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	invoices, err := s.ListForName(ctx, "invoice", 10)
	require.NoError(t, err)
	assert.Len(t, invoices, 1)
}

func TestSQLiteStorePerTemplateCounts(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLiteStore(ctx, ":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Append(ctx, NewSuccess("invoice:latest", "invoice", "latest", "m", "d", "p", 1, 1)))
	require.NoError(t, s.Append(ctx, NewSuccess("invoice:v2", "invoice", "v2", "m", "d", "p", 1, 1)))
	require.NoError(t, s.Append(ctx, NewSuccess("letterhead:v1", "letterhead", "v1", "m", "d", "p", 1, 1)))

	counts, err := s.PerTemplateCounts(ctx)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, "invoice", counts[0].TemplateName)
	assert.EqualValues(t, 2, counts[0].TotalRenders)
}

func TestSQLiteStoreAvgDurationOnlySuccess(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLiteStore(ctx, ":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Append(ctx, NewSuccess("t:latest", "t", "latest", "m", "d", "p", 1000, 1)))
	require.NoError(t, s.Append(ctx, NewSuccess("t:latest", "t", "latest", "m", "d", "p", 3000, 1)))
	require.NoError(t, s.Append(ctx, NewFailure("t:latest", "t", "latest", "m", "d", "boom", 9999)))

	points, err := s.AvgDurationOverTime(ctx, 7)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.InDelta(t, 2000.0, points[0].AvgDurationMS, 0.001)
}
