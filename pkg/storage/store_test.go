package storage_test

import (
	"context"
	"testing"

	"github.com/herohde/xiangzero/pkg/search"
	"github.com/herohde/xiangzero/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()

	store, err := storage.Open(ctx, t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	records := []*storage.Record{
		{Steps: 2, Outcome: 1, Samples: []search.Sample{
			{State: "s0", Policy: []float32{0.5, 0.5}, Z: 1},
			{State: "s1", Policy: []float32{1, 0}, Z: -1},
		}},
		{Steps: 1, Outcome: 0, Samples: []search.Sample{
			{State: "s0", Policy: []float32{0, 1}},
		}},
	}
	for _, rec := range records {
		require.NoError(t, store.Put(ctx, rec))
	}

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var got []*storage.Record
	require.NoError(t, store.Games(ctx, func(rec *storage.Record) error {
		got = append(got, rec)
		return nil
	}))
	require.Len(t, got, 2)
	assert.Equal(t, records[0], got[0])
	assert.Equal(t, records[1], got[1])
}

func TestStoreEmpty(t *testing.T) {
	ctx := context.Background()

	store, err := storage.Open(ctx, t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
