package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanagerlabs/birdtag/pkg/birdtag/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "memory", cfg.Database.Type)
	assert.Equal(t, "memory", cfg.Storage.Type)
	assert.Equal(t, 5*time.Hour, cfg.LinkTTL)
	assert.Equal(t, 15, cfg.Sample.Attempts)
	assert.Equal(t, 2*time.Second, cfg.Sample.Interval)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_TYPE", "dynamo")
	t.Setenv("DYNAMO_TABLE", "MediaTable")
	t.Setenv("MEDIA_BUCKET", "uploads")
	t.Setenv("SAMPLE_POLL_INTERVAL", "500ms")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "dynamo", cfg.Database.Type)
	assert.Equal(t, "MediaTable", cfg.Database.Table)
	assert.Equal(t, "uploads", cfg.Storage.MediaBucket)
	assert.Equal(t, 500*time.Millisecond, cfg.Sample.Interval)
}

func TestValidate(t *testing.T) {
	t.Run("postgres requires url", func(t *testing.T) {
		t.Setenv("DATABASE_TYPE", "postgres")
		_, err := config.Load()
		assert.Error(t, err)
	})

	t.Run("unknown database type", func(t *testing.T) {
		t.Setenv("DATABASE_TYPE", "cassandra")
		_, err := config.Load()
		assert.Error(t, err)
	})

	t.Run("unknown storage type", func(t *testing.T) {
		t.Setenv("STORAGE_TYPE", "tape")
		_, err := config.Load()
		assert.Error(t, err)
	})
}

func TestBuildServiceMemory(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	svc, err := cfg.BuildService()
	require.NoError(t, err)
	require.NotNil(t, svc)

	// All three buckets are registered.
	for _, bucket := range []string{"birdtag-media", "birdtag-thumbnails", "birdtag-results"} {
		store, err := svc.BlobStore(bucket)
		require.NoError(t, err, bucket)
		assert.NotNil(t, store)
	}
}
