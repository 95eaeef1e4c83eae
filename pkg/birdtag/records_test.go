package birdtag_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanagerlabs/birdtag/pkg/birdtag"
	memorystore "github.com/tanagerlabs/birdtag/pkg/birdtag/store/memory"
)

func setupRecordStore(t *testing.T, recs ...*birdtag.MediaRecord) *birdtag.RecordStore {
	t.Helper()
	store := birdtag.NewRecordStore(memorystore.New())
	for _, rec := range recs {
		require.NoError(t, store.Upsert(context.Background(), rec))
	}
	return store
}

func TestRecordStoreFindByID(t *testing.T) {
	ctx := context.Background()
	store := setupRecordStore(t, &birdtag.MediaRecord{
		FileID:       "f1",
		OriginalPath: "s3://media/crow.jpg",
		Kind:         birdtag.KindImage,
		UploadTime:   time.Now().UTC(),
		Tags:         birdtag.TagMap{"Crow": 1},
	})

	rec, err := store.FindByID(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "s3://media/crow.jpg", rec.OriginalPath)

	_, err = store.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, birdtag.ErrRecordNotFound)
}

func TestRecordStoreFindByLocationPriority(t *testing.T) {
	ctx := context.Background()
	// One record's result blob URI collides with another record's
	// original URI; the original must win.
	store := setupRecordStore(t,
		&birdtag.MediaRecord{
			FileID:       "by-result",
			OriginalPath: "s3://media/other.jpg",
			ResultPath:   "s3://media/shared.json",
		},
		&birdtag.MediaRecord{
			FileID:       "by-original",
			OriginalPath: "s3://media/shared.json",
		},
	)

	rec, err := store.FindByLocation(ctx, "s3://media/shared.json")
	require.NoError(t, err)
	assert.Equal(t, "by-original", rec.FileID)
}

func TestRecordStoreFindByLocationAnyField(t *testing.T) {
	ctx := context.Background()
	store := setupRecordStore(t, &birdtag.MediaRecord{
		FileID:        "f1",
		OriginalPath:  "s3://media/crow.jpg",
		ThumbnailPath: "s3://thumbs/thumbnails/f1_crow.jpg",
		ResultPath:    "s3://results/results/crow.json",
	})

	for _, uri := range []string{
		"s3://media/crow.jpg",
		"s3://thumbs/thumbnails/f1_crow.jpg",
		"s3://results/results/crow.json",
	} {
		rec, err := store.FindByLocation(ctx, uri)
		require.NoError(t, err, uri)
		assert.Equal(t, "f1", rec.FileID)
	}

	_, err := store.FindByLocation(ctx, "s3://media/unknown.jpg")
	assert.ErrorIs(t, err, birdtag.ErrRecordNotFound)
}

func TestRecordStoreFindByBasename(t *testing.T) {
	ctx := context.Background()
	store := setupRecordStore(t,
		&birdtag.MediaRecord{FileID: "f1", OriginalPath: "s3://media/temp/crow.jpg"},
		&birdtag.MediaRecord{FileID: "f2", OriginalPath: "s3://media/hummingbird.jpg"},
	)

	rec, err := store.FindByBasename(ctx, "crow.jpg")
	require.NoError(t, err)
	assert.Equal(t, "f1", rec.FileID)

	// Suffix of a longer file name must not match.
	_, err = store.FindByBasename(ctx, "bird.jpg")
	assert.ErrorIs(t, err, birdtag.ErrRecordNotFound)
}

func TestRecordStoreEachPermanentExcludesTemp(t *testing.T) {
	ctx := context.Background()
	store := setupRecordStore(t,
		&birdtag.MediaRecord{FileID: "perm", OriginalPath: "s3://media/crow.jpg"},
		&birdtag.MediaRecord{FileID: "temp", OriginalPath: "s3://media/temp/sample.jpg"},
	)

	var all, permanent []string
	require.NoError(t, store.Each(ctx, func(rec *birdtag.MediaRecord) error {
		all = append(all, rec.FileID)
		return nil
	}))
	require.NoError(t, store.EachPermanent(ctx, func(rec *birdtag.MediaRecord) error {
		permanent = append(permanent, rec.FileID)
		return nil
	}))

	assert.ElementsMatch(t, []string{"perm", "temp"}, all)
	assert.Equal(t, []string{"perm"}, permanent)
}

func TestRecordStoreDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := setupRecordStore(t, &birdtag.MediaRecord{FileID: "f1", OriginalPath: "s3://media/a.jpg"})

	require.NoError(t, store.Delete(ctx, "f1"))
	require.NoError(t, store.Delete(ctx, "f1"))
	_, err := store.FindByID(ctx, "f1")
	assert.ErrorIs(t, err, birdtag.ErrRecordNotFound)
}
