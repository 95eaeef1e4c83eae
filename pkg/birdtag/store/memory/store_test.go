package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanagerlabs/birdtag/pkg/birdtag"
	"github.com/tanagerlabs/birdtag/pkg/birdtag/store/memory"
)

func TestPutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	rec := &birdtag.MediaRecord{
		FileID:       "f1",
		OriginalPath: "s3://media/crow.jpg",
		Kind:         birdtag.KindImage,
		Tags:         birdtag.TagMap{"Crow": 2},
	}
	require.NoError(t, store.Put(ctx, rec))

	got, err := store.Get(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, rec.OriginalPath, got.OriginalPath)
	assert.Equal(t, rec.Tags, got.Tags)
}

func TestGetReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Put(ctx, &birdtag.MediaRecord{FileID: "f1", Tags: birdtag.TagMap{"Crow": 2}}))

	got, err := store.Get(ctx, "f1")
	require.NoError(t, err)
	got.Tags["Crow"] = 99

	again, err := store.Get(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, 2, again.Tags["Crow"])
}

func TestGetMissing(t *testing.T) {
	store := memory.New()
	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, birdtag.ErrRecordNotFound)
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Put(ctx, &birdtag.MediaRecord{FileID: "f1"}))

	require.NoError(t, store.Delete(ctx, "f1"))
	require.NoError(t, store.Delete(ctx, "f1"))
}

func TestScanVisitsEverything(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Put(ctx, &birdtag.MediaRecord{FileID: id}))
	}

	var seen []string
	require.NoError(t, store.Scan(ctx, func(rec *birdtag.MediaRecord) error {
		seen = append(seen, rec.FileID)
		return nil
	}))
	assert.ElementsMatch(t, []string{"a", "b", "c"}, seen)
}

func TestScanStopsOnCallbackError(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Put(ctx, &birdtag.MediaRecord{FileID: id}))
	}

	calls := 0
	err := store.Scan(ctx, func(rec *birdtag.MediaRecord) error {
		calls++
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, calls)
}
